package leagueservice

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	leaguedomain "github.com/parkside-league/league-hub/app/modules/league/domain"
)

func played(margin int) leaguedomain.Leg {
	return leaguedomain.Leg{Margin: margin, Status: leaguedomain.LegPlayed}
}

var (
	unplayed = leaguedomain.Leg{Status: leaguedomain.LegUnplayed}
	wontPlay = leaguedomain.Leg{Status: leaguedomain.LegWontPlay}
)

// seriesResult describes both legs of one pairing from team1's perspective.
type seriesResult struct {
	team1, team2 string
	home, away   leaguedomain.Leg
}

// buildData fills both mirrored result tables from a list of series results.
func buildData(teams []string, series []seriesResult) *leaguedomain.LeagueData {
	data := &leaguedomain.LeagueData{
		Home: leaguedomain.ResultTable{},
		Away: leaguedomain.ResultTable{},
	}
	for _, name := range teams {
		data.Teams = append(data.Teams, leaguedomain.Team{Name: name})
		data.Home[name] = map[string]leaguedomain.Leg{}
		data.Away[name] = map[string]leaguedomain.Leg{}
	}
	// The production parser fills a cell for every header column, so a real
	// grid is never sparse; mirror that here so fixtures listing only some
	// pairings stay valid.
	for _, a := range teams {
		for _, b := range teams {
			if a == b {
				continue
			}
			data.Home[a][b] = unplayed
			data.Away[a][b] = unplayed
		}
	}
	mirror := func(l leaguedomain.Leg) leaguedomain.Leg {
		if l.Played() {
			return played(-l.Margin)
		}
		return l
	}
	for _, s := range series {
		data.Home[s.team1][s.team2] = s.home
		data.Home[s.team2][s.team1] = mirror(s.home)
		data.Away[s.team1][s.team2] = s.away
		data.Away[s.team2][s.team1] = mirror(s.away)
		data.Matches = append(data.Matches,
			leaguedomain.Match{Team1: s.team1, Team2: s.team2, IsHome: true, Leg: s.home},
			leaguedomain.Match{Team1: s.team1, Team2: s.team2, IsHome: false, Leg: s.away},
		)
	}
	return data
}

func TestComputeStandings_ScoreFormula(t *testing.T) {
	data := buildData([]string{"A", "B", "C"}, []seriesResult{
		{team1: "A", team2: "B", home: played(10), away: played(10)},
		{team1: "A", team2: "C", home: played(20), away: unplayed},
		{team1: "B", team2: "C", home: played(5), away: unplayed},
	})

	standings, err := ComputeStandings(data, nil)
	require.NoError(t, err)
	require.Len(t, standings, 3)

	byName := map[string]leaguedomain.TeamStanding{}
	for _, s := range standings {
		byName[s.Name] = s
	}

	a := byName["A"]
	require.Equal(t, 3, a.Wins)
	require.Equal(t, 0, a.Losses)
	require.Equal(t, 1, a.SeriesWins)
	require.Equal(t, 40, a.PointDiff)
	require.Equal(t, 7, a.Score) // 2*3 + 0 + 1

	b := byName["B"]
	require.Equal(t, 1, b.Wins)
	require.Equal(t, 2, b.Losses)
	require.Equal(t, 1, b.SeriesLosses)
	require.Equal(t, 2, b.Score) // 2*1 + 0 + 0

	require.Less(t, a.Ranking, b.Ranking)

	// Invariant: wins + losses + draws == gamesPlayed for every team.
	for _, s := range standings {
		require.Equal(t, s.GamesPlayed, s.Wins+s.Losses+s.Draws, "team %s", s.Name)
		require.Equal(t, 2*s.Wins+s.Draws+s.SeriesWins+s.TournamentPoints, s.Score, "team %s", s.Name)
	}
}

func TestComputeStandings_DrawsAndSentinels(t *testing.T) {
	data := buildData([]string{"A", "B"}, []seriesResult{
		{team1: "A", team2: "B", home: played(0), away: wontPlay},
	})

	standings, err := ComputeStandings(data, nil)
	require.NoError(t, err)

	for _, s := range standings {
		require.Equal(t, 1, s.Draws)
		require.Equal(t, 1, s.GamesPlayed)
		require.Equal(t, 0, s.SeriesWins, "one sentinel leg means no series outcome")
		require.Equal(t, 0, s.SeriesLosses)
		require.Equal(t, 1, s.Score)
	}
}

func TestComputeStandings_TiedSeriesIsFatal(t *testing.T) {
	data := buildData([]string{"A", "B"}, []seriesResult{
		{team1: "A", team2: "B", home: played(7), away: played(-7)},
	})

	_, err := ComputeStandings(data, nil)
	require.ErrorIs(t, err, ErrTiedSeries)
}

func TestComputeStandings_MissingTeamIsFatal(t *testing.T) {
	data := buildData([]string{"A", "B"}, []seriesResult{
		{team1: "A", team2: "B", home: played(3), away: unplayed},
	})
	delete(data.Away, "B")

	_, err := ComputeStandings(data, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing from away results table")
}

func TestComputeStandings_MissingOpponentCellIsFatal(t *testing.T) {
	data := buildData([]string{"A", "B"}, []seriesResult{
		{team1: "A", team2: "B", home: played(3), away: unplayed},
	})
	// B's column is gone from A's home row. An absent cell must never be
	// read as a played zero-margin game.
	delete(data.Home["A"], "B")

	_, err := ComputeStandings(data, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing from home results table")
}

func TestComputeStandings_TournamentPoints(t *testing.T) {
	data := buildData([]string{"A", "B"}, []seriesResult{
		{team1: "A", team2: "B", home: played(-2), away: unplayed},
	})

	standings, err := ComputeStandings(data, map[string]int{"A": 5})
	require.NoError(t, err)

	byName := map[string]leaguedomain.TeamStanding{}
	for _, s := range standings {
		byName[s.Name] = s
	}
	// A lost its only game but the tournament bonus outweighs B's win.
	require.Equal(t, 5, byName["A"].Score)
	require.Equal(t, 2, byName["B"].Score)
	require.Equal(t, 1, byName["A"].Ranking)
}

func TestComputeStandings_RankingTieBreaks(t *testing.T) {
	// Everyone finishes 2-2; scores separate on series wins and the
	// ordering must follow (score desc, diff desc, gamesPlayed asc).
	data := buildData([]string{"D", "E", "F"}, []seriesResult{
		{team1: "D", team2: "E", home: played(12), away: played(-3)},
		{team1: "E", team2: "F", home: played(3), away: played(-12)},
		{team1: "D", team2: "F", home: played(-9), away: played(10)},
	})

	standings, err := ComputeStandings(data, nil)
	require.NoError(t, err)
	for i := 1; i < len(standings); i++ {
		prev, cur := standings[i-1], standings[i]
		require.True(t,
			prev.Score > cur.Score ||
				(prev.Score == cur.Score && prev.PointDiff > cur.PointDiff) ||
				(prev.Score == cur.Score && prev.PointDiff == cur.PointDiff && prev.GamesPlayed <= cur.GamesPlayed),
			"ordering violated between %s and %s", prev.Name, cur.Name)
		require.Equal(t, prev.Ranking+1, cur.Ranking)
	}
}

func TestComputeStandings_Deterministic(t *testing.T) {
	data := buildData([]string{"A", "B", "C", "D"}, []seriesResult{
		{team1: "A", team2: "B", home: played(4), away: played(2)},
		{team1: "A", team2: "C", home: played(-1), away: unplayed},
		{team1: "B", team2: "D", home: played(0), away: played(6)},
		{team1: "C", team2: "D", home: wontPlay, away: played(-3)},
	})

	first, err := ComputeStandings(data, map[string]int{"C": 2})
	require.NoError(t, err)
	second, err := ComputeStandings(data, map[string]int{"C": 2})
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("standings not deterministic (-first +second):\n%s", diff)
	}
}
