package scheduledomain

import (
	leaguedomain "github.com/parkside-league/league-hub/app/modules/league/domain"
)

// WeeklyPlan is the output of one scheduling pass: how many games each team
// plays this week and the concrete matches chosen. Plans are immutable
// results; rebalancing produces a new plan.
type WeeklyPlan struct {
	Seed       uint32                 `json:"seed"`
	Quotas     map[string]int         `json:"quotas"`
	Selected   []leaguedomain.Match   `json:"selected"`
	Rebalanced []leaguedomain.MatchID `json:"rebalanced,omitempty"`
	Hidden     []string               `json:"hidden,omitempty"`
	Warnings   []string               `json:"warnings,omitempty"`
}

// SelectedIDs returns the identifier set of all chosen matches.
func (p *WeeklyPlan) SelectedIDs() map[leaguedomain.MatchID]bool {
	ids := make(map[leaguedomain.MatchID]bool, len(p.Selected))
	for _, m := range p.Selected {
		ids[m.ID()] = true
	}
	return ids
}

// GamesFor counts the matches the plan assigns to a team.
func (p *WeeklyPlan) GamesFor(team string) int {
	n := 0
	for _, m := range p.Selected {
		if m.Involves(team) {
			n++
		}
	}
	return n
}

// FlexEntry is one row of the rebalancing priority order. Lower priority
// numbers receive replacement games first.
type FlexEntry struct {
	Team     string `json:"team"`
	Priority int    `json:"priority"`
}
