package scheduleservice

import (
	"fmt"

	leaguedomain "github.com/parkside-league/league-hub/app/modules/league/domain"
	"github.com/parkside-league/league-hub/internal/randgen"
)

// maxSelectionIterations bounds the phase-2 fill loop. Hitting the bound is
// a constraint-exhaustion condition, not an error: the week is simply
// under-scheduled.
const maxSelectionIterations = 1000

// selection tracks the matches chosen so far and the per-team bookkeeping
// the shared-player constraint needs.
type selection struct {
	teams     map[string]leaguedomain.Team
	scheduled map[string]int
	opponents map[string][]string
	chosen    []leaguedomain.Match
	chosenIDs map[leaguedomain.MatchID]bool
}

func newSelection(teams []leaguedomain.Team) *selection {
	byName := make(map[string]leaguedomain.Team, len(teams))
	for _, t := range teams {
		byName[t.Name] = t
	}
	return &selection{
		teams:     byName,
		scheduled: map[string]int{},
		opponents: map[string][]string{},
		chosenIDs: map[leaguedomain.MatchID]bool{},
	}
}

func (s *selection) take(m leaguedomain.Match) {
	s.chosen = append(s.chosen, m)
	s.chosenIDs[m.ID()] = true
	s.scheduled[m.Team1]++
	s.scheduled[m.Team2]++
	s.opponents[m.Team1] = append(s.opponents[m.Team1], m.Team2)
	s.opponents[m.Team2] = append(s.opponents[m.Team2], m.Team1)
}

// allowed reports whether adding the match keeps the shared-player
// constraint: a team may not face two different opponents in the same week
// if those opponents share a player.
func (s *selection) allowed(m leaguedomain.Match) bool {
	return s.allowedSide(m.Team1, m.Team2) && s.allowedSide(m.Team2, m.Team1)
}

func (s *selection) allowedSide(team, newOpponent string) bool {
	opp := s.teams[newOpponent]
	for _, existing := range s.opponents[team] {
		if existing == newOpponent {
			// Same opponent twice (both legs) is fine; only different
			// opponents sharing a player are barred.
			continue
		}
		if s.teams[existing].SharesPlayer(opp) {
			return false
		}
	}
	return true
}

// SelectMatches picks the concrete matches for the week given the quotas.
//
// Phase 1 builds a maximal matching over a shuffled scan of the unplayed
// matches, using each team at most once; an odd team count leaves one team
// unmatched, which gets its game as a second match for some opponent.
// Phase 2 iteratively fills the remaining quota with uniformly drawn valid
// candidates until quotas are met, no candidate remains, or the iteration
// bound trips. Returns the chosen matches plus any under-scheduling
// warnings.
func SelectMatches(data *leaguedomain.LeagueData, quotas map[string]int, rng *randgen.Source) ([]leaguedomain.Match, []string) {
	unplayed := data.UnplayedMatches()
	shuffled := make([]leaguedomain.Match, len(unplayed))
	copy(shuffled, unplayed)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	state := newSelection(data.Teams)
	var warnings []string

	// Phase 1: one match per team.
	matchedOnce := map[string]bool{}
	for _, m := range shuffled {
		if matchedOnce[m.Team1] || matchedOnce[m.Team2] {
			continue
		}
		if quotas[m.Team1] < 1 || quotas[m.Team2] < 1 {
			continue
		}
		state.take(m)
		matchedOnce[m.Team1] = true
		matchedOnce[m.Team2] = true
	}

	// Odd team count: the leftover team gets its game as a second match for
	// one of its opponents.
	for _, t := range data.Teams {
		if quotas[t.Name] < 1 || matchedOnce[t.Name] {
			continue
		}
		for _, m := range shuffled {
			if state.chosenIDs[m.ID()] || !m.Involves(t.Name) {
				continue
			}
			if !state.allowed(m) {
				continue
			}
			state.take(m)
			matchedOnce[t.Name] = true
			break
		}
		if !matchedOnce[t.Name] {
			warnings = append(warnings, fmt.Sprintf("no valid opening-round match for %s", t.Name))
		}
	}

	// Phase 2: fill remaining quota.
	for iter := 0; iter < maxSelectionIterations; iter++ {
		if !anyBelowQuota(data.Teams, quotas, state.scheduled) {
			break
		}

		var candidates []leaguedomain.Match
		for _, m := range shuffled {
			if state.chosenIDs[m.ID()] {
				continue
			}
			if state.scheduled[m.Team1] >= quotas[m.Team1] || state.scheduled[m.Team2] >= quotas[m.Team2] {
				continue
			}
			if !state.allowed(m) {
				continue
			}
			candidates = append(candidates, m)
		}

		if len(candidates) == 0 {
			under := underQuotaTeams(data.Teams, quotas, state.scheduled)
			warnings = append(warnings, fmt.Sprintf("no valid candidate matches remain; under quota: %v", under))
			break
		}

		state.take(candidates[rng.Intn(len(candidates))])
	}

	return state.chosen, warnings
}

func anyBelowQuota(teams []leaguedomain.Team, quotas, scheduled map[string]int) bool {
	for _, t := range teams {
		if scheduled[t.Name] < quotas[t.Name] {
			return true
		}
	}
	return false
}

func underQuotaTeams(teams []leaguedomain.Team, quotas, scheduled map[string]int) []string {
	var under []string
	for _, t := range teams {
		if scheduled[t.Name] < quotas[t.Name] {
			under = append(under, t.Name)
		}
	}
	return under
}
