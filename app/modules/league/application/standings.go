package leagueservice

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	leaguedomain "github.com/parkside-league/league-hub/app/modules/league/domain"
)

// ErrTiedSeries is returned when both legs of a series are played and the
// combined margin is zero. The league's shootout rule makes a tied series
// impossible in valid data, so this is a hard failure rather than a state to
// score.
var ErrTiedSeries = errors.New("tied series")

// ComputeStandings derives the full standings table from a loaded workbook
// and the optional tournament bonus points. It is a complete recomputation
// on every call; nothing is updated incrementally.
func ComputeStandings(data *leaguedomain.LeagueData, tournamentPoints map[string]int) ([]leaguedomain.TeamStanding, error) {
	standings := make([]leaguedomain.TeamStanding, 0, len(data.Teams))

	for _, team := range data.Teams {
		homeCells, ok := data.Home[team.Name]
		if !ok {
			return nil, fmt.Errorf("team %q missing from home results table", team.Name)
		}
		awayCells, ok := data.Away[team.Name]
		if !ok {
			return nil, fmt.Errorf("team %q missing from away results table", team.Name)
		}

		s := leaguedomain.TeamStanding{
			Name:             team.Name,
			Players:          team.Players,
			TournamentPoints: tournamentPoints[team.Name],
		}

		for _, opp := range data.Teams {
			if opp.Name == team.Name {
				continue
			}
			homeLeg, ok := homeCells[opp.Name]
			if !ok {
				return nil, fmt.Errorf("team %q missing from home results table", opp.Name)
			}
			awayLeg, ok := awayCells[opp.Name]
			if !ok {
				return nil, fmt.Errorf("team %q missing from away results table", opp.Name)
			}

			tallyLeg(&s, homeLeg)
			tallyLeg(&s, awayLeg)

			// A series outcome exists only when both legs were played.
			if homeLeg.Played() && awayLeg.Played() {
				switch combined := homeLeg.Margin + awayLeg.Margin; {
				case combined > 0:
					s.SeriesWins++
				case combined < 0:
					s.SeriesLosses++
				default:
					return nil, fmt.Errorf("%w between %q and %q", ErrTiedSeries, team.Name, opp.Name)
				}
			}
		}

		s.GamesPlayed = s.Wins + s.Losses + s.Draws
		s.Score = 2*s.Wins + s.Draws + s.SeriesWins + s.TournamentPoints
		standings = append(standings, s)
	}

	rankStandings(standings)
	return standings, nil
}

func tallyLeg(s *leaguedomain.TeamStanding, leg leaguedomain.Leg) {
	if !leg.Played() {
		return
	}
	s.PointDiff += leg.Margin
	switch {
	case leg.Margin > 0:
		s.Wins++
	case leg.Margin < 0:
		s.Losses++
	default:
		s.Draws++
	}
}

// rankStandings sorts in place and assigns 1-based rankings. Fewer games
// played ranks higher on exact score/diff ties, rewarding efficiency.
func rankStandings(standings []leaguedomain.TeamStanding) {
	slices.SortStableFunc(standings, func(a, b leaguedomain.TeamStanding) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(b.PointDiff, a.PointDiff); c != 0 {
			return c
		}
		return cmp.Compare(a.GamesPlayed, b.GamesPlayed)
	})
	for i := range standings {
		standings[i].Ranking = i + 1
	}
}
