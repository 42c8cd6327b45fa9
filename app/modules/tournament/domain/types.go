package tournamentdomain

// TBD marks a bracket slot whose participant is still unresolved, pending an
// earlier match's outcome.
const TBD = "TBD"

// MatchState is the lifecycle of a bracket match.
type MatchState string

const (
	// StateUnresolved means at least one participant slot is still TBD.
	StateUnresolved MatchState = "unresolved"
	// StateReady means both participants are known and no winner is set.
	StateReady MatchState = "ready"
	// StateCompleted means a winner has been recorded.
	StateCompleted MatchState = "completed"
)

// GroupMatch is a round-robin game inside a group. Scores are entered by
// the organizer during the event.
type GroupMatch struct {
	Team1     string `json:"team1"`
	Team2     string `json:"team2"`
	Score1    *int   `json:"score1"`
	Score2    *int   `json:"score2"`
	Completed bool   `json:"completed"`
}

// Group is one pool of the group stage.
type Group struct {
	Name    string       `json:"name"`
	Teams   []string     `json:"teams"`
	Matches []GroupMatch `json:"matches"`
}

// Completed reports whether every group match has a result.
func (g Group) Completed() bool {
	for _, m := range g.Matches {
		if !m.Completed {
			return false
		}
	}
	return len(g.Matches) > 0
}

// BracketMatch is a knockout-stage match. Team refs are either concrete
// team names or TBD placeholders pending propagation.
type BracketMatch struct {
	ID     string `json:"id"`
	Team1  string `json:"team1"`
	Team2  string `json:"team2"`
	Score1 *int   `json:"score1"`
	Score2 *int   `json:"score2"`
	Winner string `json:"winner,omitempty"`
}

// State derives the match's lifecycle state.
func (m *BracketMatch) State() MatchState {
	switch {
	case m.Winner != "":
		return StateCompleted
	case m.Resolved():
		return StateReady
	default:
		return StateUnresolved
	}
}

// Resolved reports whether both participant slots are concrete teams. Only
// resolved matches are editable.
func (m *BracketMatch) Resolved() bool {
	return m.Team1 != "" && m.Team1 != TBD && m.Team2 != "" && m.Team2 != TBD
}

// Loser returns the losing side of a completed match, or "".
func (m *BracketMatch) Loser() string {
	switch m.Winner {
	case m.Team1:
		return m.Team2
	case m.Team2:
		return m.Team1
	default:
		return ""
	}
}

// Round is one column of the bracket.
type Round struct {
	Name    string          `json:"name"`
	Matches []*BracketMatch `json:"matches"`
}

// Bracket is the knockout stage: rounds ordered from the opening round to
// the final.
type Bracket struct {
	Rounds []Round `json:"rounds"`
}

// Format describes which stages the tournament runs and how many teams
// advance from each group.
type Format struct {
	GroupStage       bool `json:"groupStage"`
	KnockoutStage    bool `json:"knockoutStage"`
	GroupAdvancement int  `json:"groupAdvancement"`
}

// BoardAssignment is one board's pairing in a schedule slot: either a group
// matchup or a bracket match reference.
type BoardAssignment struct {
	Group   string `json:"group,omitempty"`
	Team1   string `json:"team1,omitempty"`
	Team2   string `json:"team2,omitempty"`
	MatchID string `json:"matchId,omitempty"`
}

// TimeSlot maps boards to assignments for one block of the event.
type TimeSlot struct {
	Time   string                     `json:"time"`
	Boards map[string]BoardAssignment `json:"boards"`
}

// Tournament is the full event document, matching the site's JSON format.
type Tournament struct {
	TournamentName  string        `json:"tournamentName"`
	Date            string        `json:"date"`
	Location        string        `json:"location"`
	Format          Format        `json:"format"`
	Groups          []Group       `json:"groups"`
	Bracket         Bracket       `json:"bracket"`
	ThirdPlaceMatch *BracketMatch `json:"thirdPlaceMatch,omitempty"`
	Schedule        []TimeSlot    `json:"schedule,omitempty"`
}

// FindBracketMatch locates a bracket match by id, also checking the
// third-place match. Returns the round index, or -1 for the third-place
// match.
func (t *Tournament) FindBracketMatch(id string) (*BracketMatch, int, bool) {
	for r := range t.Bracket.Rounds {
		for _, m := range t.Bracket.Rounds[r].Matches {
			if m.ID == id {
				return m, r, true
			}
		}
	}
	if t.ThirdPlaceMatch != nil && t.ThirdPlaceMatch.ID == id {
		return t.ThirdPlaceMatch, -1, true
	}
	return nil, 0, false
}

// GroupStageComplete reports whether every group has finished.
func (t *Tournament) GroupStageComplete() bool {
	if len(t.Groups) == 0 {
		return false
	}
	for _, g := range t.Groups {
		if !g.Completed() {
			return false
		}
	}
	return true
}

// GroupStandingRow is a team's line in the group table.
type GroupStandingRow struct {
	Team          string `json:"team"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	PointsFor     int    `json:"pointsFor"`
	PointsAgainst int    `json:"pointsAgainst"`
}

// Diff is the group-stage point differential.
func (r GroupStandingRow) Diff() int {
	return r.PointsFor - r.PointsAgainst
}
