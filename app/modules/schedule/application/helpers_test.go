package scheduleservice

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v7"

	leaguedomain "github.com/parkside-league/league-hub/app/modules/league/domain"
)

// team builds a roster entry with two players derived from the name unless
// given explicitly.
func team(name string, players ...string) leaguedomain.Team {
	t := leaguedomain.Team{Name: name}
	switch len(players) {
	case 0:
		t.Players = [2]string{name + "-p1", name + "-p2"}
	case 1:
		t.Players = [2]string{players[0], name + "-p2"}
	default:
		t.Players = [2]string{players[0], players[1]}
	}
	return t
}

// leagueWith builds a LeagueData whose match list is a full double round
// robin with every leg unplayed.
func leagueWith(teams ...leaguedomain.Team) *leaguedomain.LeagueData {
	data := &leaguedomain.LeagueData{Teams: teams}
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			data.Matches = append(data.Matches,
				leaguedomain.Match{Team1: teams[i].Name, Team2: teams[j].Name, IsHome: true,
					Leg: leaguedomain.Leg{Status: leaguedomain.LegUnplayed}},
				leaguedomain.Match{Team1: teams[i].Name, Team2: teams[j].Name, IsHome: false,
					Leg: leaguedomain.Leg{Status: leaguedomain.LegUnplayed}},
			)
		}
	}
	return data
}

// randomLeague generates a roster of the given size with unique player
// names, for property-style checks.
func randomLeague(seed uint64, teams int) *leaguedomain.LeagueData {
	faker := gofakeit.New(seed)
	roster := make([]leaguedomain.Team, teams)
	for i := range roster {
		roster[i] = leaguedomain.Team{
			Name:    fmt.Sprintf("%s-%d", faker.PetName(), i),
			Players: [2]string{fmt.Sprintf("p%d-a", i), fmt.Sprintf("p%d-b", i)},
		}
	}
	return leagueWith(roster...)
}

// markPlayed flips the first n matches of the league to played.
func markPlayed(data *leaguedomain.LeagueData, n int) {
	for i := 0; i < n && i < len(data.Matches); i++ {
		data.Matches[i].Leg = leaguedomain.Leg{Margin: 1, Status: leaguedomain.LegPlayed}
	}
}
