package tournamentservice

import (
	"encoding/json"
	"errors"
	"fmt"

	tournamentdomain "github.com/parkside-league/league-hub/app/modules/tournament/domain"
)

// ErrInvalidTournament is returned when an imported document fails
// structural validation.
var ErrInvalidTournament = errors.New("invalid tournament document")

// ImportTournament parses and validates a tournament JSON document.
// Validation is structural only; scores already present in the document are
// trusted as entered.
func ImportTournament(raw []byte) (*tournamentdomain.Tournament, error) {
	var t tournamentdomain.Tournament
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTournament, err)
	}
	if err := validateTournament(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

func validateTournament(t *tournamentdomain.Tournament) error {
	if t.TournamentName == "" {
		return fmt.Errorf("%w: tournamentName is required", ErrInvalidTournament)
	}
	if t.Format.GroupStage && len(t.Groups) == 0 {
		return fmt.Errorf("%w: group stage enabled but no groups defined", ErrInvalidTournament)
	}

	seenGroups := map[string]bool{}
	for _, g := range t.Groups {
		if g.Name == "" {
			return fmt.Errorf("%w: group without a name", ErrInvalidTournament)
		}
		if seenGroups[g.Name] {
			return fmt.Errorf("%w: duplicate group %q", ErrInvalidTournament, g.Name)
		}
		seenGroups[g.Name] = true

		members := map[string]bool{}
		for _, team := range g.Teams {
			members[team] = true
		}
		for _, m := range g.Matches {
			if !members[m.Team1] || !members[m.Team2] {
				return fmt.Errorf("%w: group %q match %s vs %s references a team outside the group",
					ErrInvalidTournament, g.Name, m.Team1, m.Team2)
			}
		}
	}

	seenIDs := map[string]bool{}
	for _, r := range t.Bracket.Rounds {
		for _, m := range r.Matches {
			if m.ID == "" {
				return fmt.Errorf("%w: bracket match without an id in round %q", ErrInvalidTournament, r.Name)
			}
			if seenIDs[m.ID] {
				return fmt.Errorf("%w: duplicate bracket match id %q", ErrInvalidTournament, m.ID)
			}
			seenIDs[m.ID] = true
		}
	}
	if tp := t.ThirdPlaceMatch; tp != nil && seenIDs[tp.ID] {
		return fmt.Errorf("%w: third-place match reuses id %q", ErrInvalidTournament, tp.ID)
	}
	return nil
}

// ExportTournament serializes the full tournament state, suitable for
// re-import.
func ExportTournament(t *tournamentdomain.Tournament) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// ResultsExport is the compact results-only document: final placements,
// group tables, and decided bracket matches, without format or schedule
// metadata.
type ResultsExport struct {
	TournamentName string                                         `json:"tournamentName"`
	Date           string                                         `json:"date"`
	Location       string                                         `json:"location,omitempty"`
	Champion       string                                         `json:"champion,omitempty"`
	RunnerUp       string                                         `json:"runnerUp,omitempty"`
	ThirdPlace     string                                         `json:"thirdPlace,omitempty"`
	GroupStandings map[string][]tournamentdomain.GroupStandingRow `json:"groupStandings,omitempty"`
	BracketResults []BracketResult                                `json:"bracketResults,omitempty"`
}

// BracketResult is one decided knockout match in the compact export.
type BracketResult struct {
	Round  string `json:"round"`
	Team1  string `json:"team1"`
	Team2  string `json:"team2"`
	Score1 int    `json:"score1"`
	Score2 int    `json:"score2"`
	Winner string `json:"winner"`
}

// ExportResults builds the results-only document.
func ExportResults(t *tournamentdomain.Tournament) ([]byte, error) {
	out := ResultsExport{
		TournamentName: t.TournamentName,
		Date:           t.Date,
		Location:       t.Location,
	}

	if len(t.Groups) > 0 {
		out.GroupStandings = make(map[string][]tournamentdomain.GroupStandingRow, len(t.Groups))
		for _, g := range t.Groups {
			out.GroupStandings[g.Name] = GroupStandings(g)
		}
	}

	appendResult := func(round string, m *tournamentdomain.BracketMatch) {
		if m == nil || m.Winner == "" || m.Score1 == nil || m.Score2 == nil {
			return
		}
		out.BracketResults = append(out.BracketResults, BracketResult{
			Round:  round,
			Team1:  m.Team1,
			Team2:  m.Team2,
			Score1: *m.Score1,
			Score2: *m.Score2,
			Winner: m.Winner,
		})
	}
	for _, r := range t.Bracket.Rounds {
		for _, m := range r.Matches {
			appendResult(r.Name, m)
		}
	}
	appendResult("Third Place", t.ThirdPlaceMatch)

	if n := len(t.Bracket.Rounds); n > 0 {
		finals := t.Bracket.Rounds[n-1].Matches
		if len(finals) == 1 && finals[0].Winner != "" {
			out.Champion = finals[0].Winner
			out.RunnerUp = finals[0].Loser()
		}
	}
	if tp := t.ThirdPlaceMatch; tp != nil && tp.Winner != "" {
		out.ThirdPlace = tp.Winner
	}

	return json.MarshalIndent(out, "", "  ")
}
