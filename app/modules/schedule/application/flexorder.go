package scheduleservice

import (
	"cmp"
	"slices"

	leaguedomain "github.com/parkside-league/league-hub/app/modules/league/domain"
	scheduledomain "github.com/parkside-league/league-hub/app/modules/schedule/domain"
	"github.com/parkside-league/league-hub/internal/randgen"
)

// AssignFlexOrder ranks teams by rebalancing priority: teams that got fewer
// games this week, or have more season games left to fit in, are first in
// line for a replacement game. Exact ties break on a seeded random draw so
// the order is distinct yet reproducible.
func AssignFlexOrder(teams []leaguedomain.Team, scheduled, remaining map[string]int, rng *randgen.Source) []scheduledomain.FlexEntry {
	type ranked struct {
		name      string
		scheduled int
		remaining int
		tiebreak  float64
	}

	rows := make([]ranked, len(teams))
	for i, t := range teams {
		rows[i] = ranked{
			name:      t.Name,
			scheduled: scheduled[t.Name],
			remaining: remaining[t.Name],
			tiebreak:  rng.Float64(),
		}
	}

	slices.SortFunc(rows, func(a, b ranked) int {
		if c := cmp.Compare(a.scheduled, b.scheduled); c != 0 {
			return c
		}
		if c := cmp.Compare(b.remaining, a.remaining); c != 0 {
			return c
		}
		return cmp.Compare(a.tiebreak, b.tiebreak)
	})

	order := make([]scheduledomain.FlexEntry, len(rows))
	for i, r := range rows {
		order[i] = scheduledomain.FlexEntry{Team: r.name, Priority: i + 1}
	}
	return order
}
