package tournamentservice

import (
	"testing"

	"github.com/stretchr/testify/require"

	tournamentdomain "github.com/parkside-league/league-hub/app/modules/tournament/domain"
)

func intp(v int) *int { return &v }

func groupMatch(t1, t2 string, s1, s2 int) tournamentdomain.GroupMatch {
	return tournamentdomain.GroupMatch{
		Team1: t1, Team2: t2,
		Score1: intp(s1), Score2: intp(s2),
		Completed: true,
	}
}

// completedGroup builds a fully played round robin where earlier-listed
// teams beat later-listed teams, with the margin growing by seed distance.
// The resulting standings order matches the team order.
func completedGroup(name string, teams ...string) tournamentdomain.Group {
	g := tournamentdomain.Group{Name: name, Teams: teams}
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			g.Matches = append(g.Matches, groupMatch(teams[i], teams[j], 10+j-i, 10-(j-i)))
		}
	}
	return g
}

func singleGroupTournament(adv int, teams ...string) *tournamentdomain.Tournament {
	return &tournamentdomain.Tournament{
		TournamentName: "Club Open",
		Date:           "2026-09-05",
		Format: tournamentdomain.Format{
			GroupStage:       true,
			KnockoutStage:    true,
			GroupAdvancement: adv,
		},
		Groups: []tournamentdomain.Group{completedGroup("Group A", teams...)},
	}
}

func TestGroupStandings_Ordering(t *testing.T) {
	g := tournamentdomain.Group{
		Name:  "Group A",
		Teams: []string{"Aces", "Bandits", "Comets", "Drifters"},
		Matches: []tournamentdomain.GroupMatch{
			groupMatch("Aces", "Bandits", 11, 5),
			groupMatch("Comets", "Drifters", 11, 9),
			groupMatch("Aces", "Comets", 11, 7),
			groupMatch("Bandits", "Drifters", 11, 3),
			groupMatch("Aces", "Drifters", 11, 9),
			groupMatch("Bandits", "Comets", 11, 6),
		},
	}

	rows := GroupStandings(g)
	require.Len(t, rows, 4)

	require.Equal(t, "Aces", rows[0].Team)
	require.Equal(t, 3, rows[0].Wins)
	require.Equal(t, 0, rows[0].Losses)

	// Bandits and Comets both finish 2-1 and 1-2; differential decides.
	require.Equal(t, "Bandits", rows[1].Team)
	require.Equal(t, "Comets", rows[2].Team)
	require.Equal(t, "Drifters", rows[3].Team)

	for _, r := range rows {
		require.Equal(t, 3, r.Wins+r.Losses)
	}
}

func TestGroupStandings_IgnoresIncompleteMatches(t *testing.T) {
	g := tournamentdomain.Group{
		Name:  "Group A",
		Teams: []string{"Aces", "Bandits"},
		Matches: []tournamentdomain.GroupMatch{
			{Team1: "Aces", Team2: "Bandits"},
		},
	}

	rows := GroupStandings(g)
	require.Len(t, rows, 2)
	for _, r := range rows {
		require.Zero(t, r.Wins)
		require.Zero(t, r.Losses)
		require.Zero(t, r.PointsFor)
	}
}

func TestPopulateBracket_WaitsForGroupStage(t *testing.T) {
	trn := singleGroupTournament(4, "A", "B", "C", "D")
	trn.Groups[0].Matches[0].Completed = false

	require.NoError(t, PopulateBracket(trn))
	require.Empty(t, trn.Bracket.Rounds)
}

func TestPopulateBracket_TopFourSeeding(t *testing.T) {
	trn := singleGroupTournament(4, "A", "B", "C", "D")
	require.NoError(t, PopulateBracket(trn))

	require.Len(t, trn.Bracket.Rounds, 2)
	sf := trn.Bracket.Rounds[0].Matches
	require.Len(t, sf, 2)
	require.Equal(t, "A", sf[0].Team1)
	require.Equal(t, "D", sf[0].Team2)
	require.Equal(t, "B", sf[1].Team1)
	require.Equal(t, "C", sf[1].Team2)

	final := trn.Bracket.Rounds[1].Matches
	require.Len(t, final, 1)
	require.Equal(t, tournamentdomain.TBD, final[0].Team1)
	require.Equal(t, tournamentdomain.TBD, final[0].Team2)

	require.NotNil(t, trn.ThirdPlaceMatch)
}

func TestPopulateBracket_TopSixByes(t *testing.T) {
	trn := singleGroupTournament(6, "A", "B", "C", "D", "E", "F")
	require.NoError(t, PopulateBracket(trn))

	require.Len(t, trn.Bracket.Rounds, 3)
	qf := trn.Bracket.Rounds[0].Matches
	require.Equal(t, "C", qf[0].Team1)
	require.Equal(t, "F", qf[0].Team2)
	require.Equal(t, "D", qf[1].Team1)
	require.Equal(t, "E", qf[1].Team2)

	sf := trn.Bracket.Rounds[1].Matches
	require.Equal(t, "A", sf[0].Team1)
	require.Equal(t, tournamentdomain.TBD, sf[0].Team2)
	require.Equal(t, "B", sf[1].Team1)
	require.Equal(t, tournamentdomain.TBD, sf[1].Team2)
}

func TestPopulateBracket_TopTwoFinalOnly(t *testing.T) {
	trn := singleGroupTournament(2, "A", "B", "C")
	require.NoError(t, PopulateBracket(trn))

	require.Len(t, trn.Bracket.Rounds, 1)
	final := trn.Bracket.Rounds[0].Matches[0]
	require.Equal(t, "A", final.Team1)
	require.Equal(t, "B", final.Team2)
	require.Nil(t, trn.ThirdPlaceMatch)
}

func TestPopulateBracket_CrossGroupSemis(t *testing.T) {
	trn := &tournamentdomain.Tournament{
		TournamentName: "Club Open",
		Format: tournamentdomain.Format{
			GroupStage:       true,
			KnockoutStage:    true,
			GroupAdvancement: 2,
		},
		Groups: []tournamentdomain.Group{
			completedGroup("Group A", "A1", "A2", "A3"),
			completedGroup("Group B", "B1", "B2", "B3"),
		},
	}
	require.NoError(t, PopulateBracket(trn))

	sf := trn.Bracket.Rounds[0].Matches
	require.Len(t, sf, 2)
	require.Equal(t, "A1", sf[0].Team1)
	require.Equal(t, "B2", sf[0].Team2)
	require.Equal(t, "B1", sf[1].Team1)
	require.Equal(t, "A2", sf[1].Team2)
}

func TestPopulateBracket_KeepsImportedSkeleton(t *testing.T) {
	trn := singleGroupTournament(4, "A", "B", "C", "D")
	trn.Bracket.Rounds = []tournamentdomain.Round{
		{Name: "Semifinals", Matches: []*tournamentdomain.BracketMatch{
			{ID: "sf1", Team1: tournamentdomain.TBD, Team2: tournamentdomain.TBD},
			{ID: "sf2", Team1: tournamentdomain.TBD, Team2: tournamentdomain.TBD},
		}},
		{Name: "Final", Matches: []*tournamentdomain.BracketMatch{
			{ID: "final", Team1: tournamentdomain.TBD, Team2: tournamentdomain.TBD},
		}},
	}

	require.NoError(t, PopulateBracket(trn))
	require.Equal(t, "sf1", trn.Bracket.Rounds[0].Matches[0].ID)
	require.Equal(t, "A", trn.Bracket.Rounds[0].Matches[0].Team1)
}

func TestRecordBracketScore_PropagatesByFolding(t *testing.T) {
	trn := singleGroupTournament(4, "A", "B", "C", "D")
	require.NoError(t, PopulateBracket(trn))

	sf := trn.Bracket.Rounds[0].Matches
	require.NoError(t, RecordBracketScore(trn, sf[0].ID, 11, 7))
	require.NoError(t, RecordBracketScore(trn, sf[1].ID, 6, 11))

	final := trn.Bracket.Rounds[1].Matches[0]
	require.Equal(t, "A", final.Team1)
	require.Equal(t, "C", final.Team2)
	require.Equal(t, tournamentdomain.StateReady, final.State())
}

func TestRecordBracketScore_ByeStructureTargetsTeamTwo(t *testing.T) {
	trn := singleGroupTournament(6, "A", "B", "C", "D", "E", "F")
	require.NoError(t, PopulateBracket(trn))

	// Two quarterfinals feed two semifinals: equal round sizes, so each
	// winner lands in the team2 slot of the same-index semifinal.
	qf := trn.Bracket.Rounds[0].Matches
	require.NoError(t, RecordBracketScore(trn, qf[0].ID, 11, 2))
	require.NoError(t, RecordBracketScore(trn, qf[1].ID, 4, 11))

	sf := trn.Bracket.Rounds[1].Matches
	require.Equal(t, "A", sf[0].Team1)
	require.Equal(t, "C", sf[0].Team2)
	require.Equal(t, "B", sf[1].Team1)
	require.Equal(t, "E", sf[1].Team2)
}

func TestRecordBracketScore_UnresolvedMatchRejected(t *testing.T) {
	trn := singleGroupTournament(4, "A", "B", "C", "D")
	require.NoError(t, PopulateBracket(trn))

	final := trn.Bracket.Rounds[1].Matches[0]
	err := RecordBracketScore(trn, final.ID, 11, 9)
	require.ErrorIs(t, err, ErrMatchNotReady)
}

func TestRecordBracketScore_TieLeavesWinnerUnset(t *testing.T) {
	trn := singleGroupTournament(4, "A", "B", "C", "D")
	require.NoError(t, PopulateBracket(trn))

	sf := trn.Bracket.Rounds[0].Matches[0]
	require.NoError(t, RecordBracketScore(trn, sf.ID, 8, 8))
	require.Empty(t, sf.Winner)
	require.Equal(t, tournamentdomain.StateReady, sf.State())

	final := trn.Bracket.Rounds[1].Matches[0]
	require.Equal(t, tournamentdomain.TBD, final.Team1)
}

func TestRecordBracketScore_UnknownMatch(t *testing.T) {
	trn := singleGroupTournament(4, "A", "B", "C", "D")
	require.NoError(t, PopulateBracket(trn))

	err := RecordBracketScore(trn, "nope", 1, 0)
	require.ErrorIs(t, err, ErrMatchNotFound)
}

func TestThirdPlace_RecomputedFromSemifinalLosers(t *testing.T) {
	trn := singleGroupTournament(4, "A", "B", "C", "D")
	require.NoError(t, PopulateBracket(trn))
	sf := trn.Bracket.Rounds[0].Matches

	require.NoError(t, RecordBracketScore(trn, sf[0].ID, 11, 7))
	require.Equal(t, "D", trn.ThirdPlaceMatch.Team1)
	require.Equal(t, tournamentdomain.TBD, trn.ThirdPlaceMatch.Team2)

	require.NoError(t, RecordBracketScore(trn, sf[1].ID, 5, 11))
	require.Equal(t, "D", trn.ThirdPlaceMatch.Team1)
	require.Equal(t, "B", trn.ThirdPlaceMatch.Team2)

	// Re-entering a semifinal with the opposite outcome replaces the
	// participant and wipes any recorded third-place result.
	require.NoError(t, RecordBracketScore(trn, trn.ThirdPlaceMatch.ID, 11, 6))
	require.Equal(t, "D", trn.ThirdPlaceMatch.Winner)

	require.NoError(t, RecordBracketScore(trn, sf[0].ID, 3, 11))
	require.Equal(t, "A", trn.ThirdPlaceMatch.Team1)
	require.Empty(t, trn.ThirdPlaceMatch.Winner)
	require.Nil(t, trn.ThirdPlaceMatch.Score1)
}

func TestClearBracketScore_NoCascadeLeavesDownstream(t *testing.T) {
	trn := singleGroupTournament(4, "A", "B", "C", "D")
	require.NoError(t, PopulateBracket(trn))
	sf := trn.Bracket.Rounds[0].Matches

	require.NoError(t, RecordBracketScore(trn, sf[0].ID, 11, 7))
	require.NoError(t, ClearBracketScore(trn, sf[0].ID, false))

	require.Empty(t, sf[0].Winner)
	require.Nil(t, sf[0].Score1)
	// The already-propagated finalist stays.
	require.Equal(t, "A", trn.Bracket.Rounds[1].Matches[0].Team1)
}

func TestClearBracketScore_CascadeRetractsDownstream(t *testing.T) {
	trn := singleGroupTournament(4, "A", "B", "C", "D")
	require.NoError(t, PopulateBracket(trn))
	sf := trn.Bracket.Rounds[0].Matches

	require.NoError(t, RecordBracketScore(trn, sf[0].ID, 11, 7))
	require.NoError(t, RecordBracketScore(trn, sf[1].ID, 11, 7))
	final := trn.Bracket.Rounds[1].Matches[0]
	require.NoError(t, RecordBracketScore(trn, final.ID, 11, 9))
	require.Equal(t, "A", final.Winner)

	require.NoError(t, ClearBracketScore(trn, sf[0].ID, true))

	require.Equal(t, tournamentdomain.TBD, final.Team1)
	require.Equal(t, "B", final.Team2)
	require.Empty(t, final.Winner)
	require.Nil(t, final.Score1)
	// The semifinal loser slot in the third-place match is retracted too.
	require.Equal(t, tournamentdomain.TBD, trn.ThirdPlaceMatch.Team1)
	require.Equal(t, "C", trn.ThirdPlaceMatch.Team2)
}

func TestPopulateBracket_ReseedKeepsCompletedResults(t *testing.T) {
	trn := singleGroupTournament(6, "A", "B", "C", "D", "E", "F")
	require.NoError(t, PopulateBracket(trn))

	qf := trn.Bracket.Rounds[0].Matches
	require.NoError(t, RecordBracketScore(trn, qf[0].ID, 11, 2))
	sf := trn.Bracket.Rounds[1].Matches
	require.Equal(t, "C", sf[0].Team2)

	// Correcting a group score with the same outcome reseeds the bracket;
	// the recorded quarterfinal must keep feeding its semifinal slot.
	m := &trn.Groups[0].Matches[0]
	require.NoError(t, ClearGroupScore(trn, "Group A", m.Team1, m.Team2))
	require.NoError(t, RecordGroupScore(trn, "Group A", m.Team1, m.Team2, 11, 9))
	require.NoError(t, PopulateBracket(trn))

	qf = trn.Bracket.Rounds[0].Matches
	sf = trn.Bracket.Rounds[1].Matches
	require.Equal(t, "C", qf[0].Winner)
	require.Equal(t, "C", sf[0].Team2)
	require.Equal(t, "A", sf[0].Team1)
}

func TestPopulateBracket_ReseedDropsStaleWinners(t *testing.T) {
	trn := singleGroupTournament(4, "A", "B", "C", "D")
	require.NoError(t, PopulateBracket(trn))

	sf := trn.Bracket.Rounds[0].Matches
	require.NoError(t, RecordBracketScore(trn, sf[0].ID, 3, 11))
	final := trn.Bracket.Rounds[1].Matches[0]
	require.Equal(t, "D", final.Team1)

	// Corrections lift D to second seed: the old 1v4 pairing no longer
	// exists, so its result and the propagated finalist are dropped.
	require.NoError(t, RecordGroupScore(trn, "Group A", "D", "B", 11, 2))
	require.NoError(t, RecordGroupScore(trn, "Group A", "D", "C", 11, 2))
	require.NoError(t, PopulateBracket(trn))

	sf = trn.Bracket.Rounds[0].Matches
	require.Equal(t, "A", sf[0].Team1)
	require.Equal(t, "C", sf[0].Team2)
	require.Empty(t, sf[0].Winner)
	require.Nil(t, sf[0].Score1)
	require.Equal(t, tournamentdomain.TBD, final.Team1)
}

func TestRecordGroupScore_EitherOrientation(t *testing.T) {
	trn := singleGroupTournament(4, "A", "B", "C", "D")
	trn.Groups[0].Matches[0].Completed = false
	trn.Groups[0].Matches[0].Score1 = nil
	trn.Groups[0].Matches[0].Score2 = nil

	m := &trn.Groups[0].Matches[0]
	require.NoError(t, RecordGroupScore(trn, "Group A", m.Team2, m.Team1, 4, 11))
	require.True(t, m.Completed)
	require.Equal(t, 11, *m.Score1)
	require.Equal(t, 4, *m.Score2)

	require.NoError(t, ClearGroupScore(trn, "Group A", m.Team1, m.Team2))
	require.False(t, m.Completed)
	require.Nil(t, m.Score1)

	err := RecordGroupScore(trn, "Group A", "A", "Z", 1, 0)
	require.ErrorIs(t, err, ErrGroupMatchNotFound)
}
