package leaguedomain

import "fmt"

// LegStatus describes the state of a single result cell.
type LegStatus int

const (
	// LegUnplayed means the game has not happened yet. It is the zero value
	// so that an absent cell never reads as a played result.
	LegUnplayed LegStatus = iota
	// LegPlayed means the cell holds a signed margin.
	LegPlayed
	// LegWontPlay means the game was cancelled and will never count.
	LegWontPlay
)

// Leg is one of the two scheduled games between a pair of teams, parsed from
// a single spreadsheet cell. Margin is only meaningful when Status is
// LegPlayed; the sentinel states are mutually exclusive with a numeric
// result.
type Leg struct {
	Margin int
	Status LegStatus
}

// Played reports whether the leg counts toward standings.
func (l Leg) Played() bool {
	return l.Status == LegPlayed
}

// Team is a roster entry: a unique name and its two players.
type Team struct {
	Name    string
	Players [2]string
}

// SharesPlayer reports whether two teams have a player in common.
func (t Team) SharesPlayer(other Team) bool {
	for _, p := range t.Players {
		for _, q := range other.Players {
			if p != "" && p == q {
				return true
			}
		}
	}
	return false
}

// Match is one leg of a season series from the league schedule. Matches are
// constructed once per load and never mutated afterwards; scores come from
// the source workbook.
type Match struct {
	Team1  string
	Team2  string
	IsHome bool
	Leg    Leg
}

// ID returns the stable identifier for the match: the (team1, team2, isHome)
// tuple.
func (m Match) ID() MatchID {
	side := "away"
	if m.IsHome {
		side = "home"
	}
	return MatchID(fmt.Sprintf("%s|%s|%s", m.Team1, m.Team2, side))
}

// Involves reports whether the named team plays in this match.
func (m Match) Involves(team string) bool {
	return m.Team1 == team || m.Team2 == team
}

// Opponent returns the other team of the match, or "" if team does not play
// in it.
func (m Match) Opponent(team string) string {
	switch team {
	case m.Team1:
		return m.Team2
	case m.Team2:
		return m.Team1
	default:
		return ""
	}
}

// MatchID is the derived stable identifier of a match.
type MatchID string

// ResultTable holds one perspective (home or away) of the season results:
// row team -> column team -> leg.
type ResultTable map[string]map[string]Leg

// LeagueData is everything the computations need from one workbook load:
// the roster, both result perspectives, and the flattened match list (one
// entry per home game, so each pairing appears exactly twice across the
// season: once per venue).
type LeagueData struct {
	Teams   []Team
	Home    ResultTable
	Away    ResultTable
	Matches []Match
}

// TeamByName returns the roster entry for a team name.
func (d *LeagueData) TeamByName(name string) (Team, bool) {
	for _, t := range d.Teams {
		if t.Name == name {
			return t, true
		}
	}
	return Team{}, false
}

// UnplayedMatches returns the matches still to be scheduled. WONT_PLAY games
// are excluded: they will never be played and must not feed the scheduler.
func (d *LeagueData) UnplayedMatches() []Match {
	var out []Match
	for _, m := range d.Matches {
		if m.Leg.Status == LegUnplayed {
			out = append(out, m)
		}
	}
	return out
}

// TeamStanding is the per-team output of a standings computation.
type TeamStanding struct {
	Name             string    `json:"name"`
	Players          [2]string `json:"players"`
	Wins             int       `json:"wins"`
	Losses           int       `json:"losses"`
	Draws            int       `json:"draws"`
	SeriesWins       int       `json:"seriesWins"`
	SeriesLosses     int       `json:"seriesLosses"`
	PointDiff        int       `json:"pointDiff"`
	TournamentPoints int       `json:"tournamentPoints"`
	GamesPlayed      int       `json:"gamesPlayed"`
	Score            int       `json:"score"`
	Ranking          int       `json:"ranking"`
}
