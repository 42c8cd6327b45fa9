package tournamentservice

import (
	"errors"
	"fmt"

	tournamentdomain "github.com/parkside-league/league-hub/app/modules/tournament/domain"
)

// ErrGroupMatchNotFound is returned when a score targets a group pairing
// that does not exist.
var ErrGroupMatchNotFound = errors.New("group match not found")

// findGroupMatch locates the pairing in either orientation.
func findGroupMatch(t *tournamentdomain.Tournament, group, team1, team2 string) (*tournamentdomain.GroupMatch, bool) {
	for gi := range t.Groups {
		if t.Groups[gi].Name != group {
			continue
		}
		for mi := range t.Groups[gi].Matches {
			m := &t.Groups[gi].Matches[mi]
			if (m.Team1 == team1 && m.Team2 == team2) || (m.Team1 == team2 && m.Team2 == team1) {
				return m, true
			}
		}
	}
	return nil, false
}

// RecordGroupScore enters a group-stage result. Scores are stored in the
// match's own orientation even when the request names the teams reversed.
func RecordGroupScore(t *tournamentdomain.Tournament, group, team1, team2 string, score1, score2 int) error {
	m, ok := findGroupMatch(t, group, team1, team2)
	if !ok {
		return fmt.Errorf("%w: %s vs %s in group %s", ErrGroupMatchNotFound, team1, team2, group)
	}
	if m.Team1 != team1 {
		score1, score2 = score2, score1
	}
	s1, s2 := score1, score2
	m.Score1, m.Score2 = &s1, &s2
	m.Completed = true
	return nil
}

// ClearGroupScore removes a group-stage result.
func ClearGroupScore(t *tournamentdomain.Tournament, group, team1, team2 string) error {
	m, ok := findGroupMatch(t, group, team1, team2)
	if !ok {
		return fmt.Errorf("%w: %s vs %s in group %s", ErrGroupMatchNotFound, team1, team2, group)
	}
	m.Score1, m.Score2 = nil, nil
	m.Completed = false
	return nil
}
