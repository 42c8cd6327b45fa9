package scheduleservice

import (
	"fmt"

	leaguedomain "github.com/parkside-league/league-hub/app/modules/league/domain"
	scheduledomain "github.com/parkside-league/league-hub/app/modules/schedule/domain"
	"github.com/parkside-league/league-hub/internal/randgen"
)

// Rebalance rebuilds a weekly plan after the user hides teams. Matches
// touching a hidden team are dropped, then visible teams receive replacement
// matches in flex order, still subject to quotas and the shared-player
// constraint. Replacement matches are tracked separately so the UI can mark
// them.
func Rebalance(data *leaguedomain.LeagueData, plan *scheduledomain.WeeklyPlan, hidden []string, rng *randgen.Source) *scheduledomain.WeeklyPlan {
	hiddenSet := make(map[string]bool, len(hidden))
	for _, h := range hidden {
		hiddenSet[h] = true
	}

	state := newSelection(data.Teams)
	for _, m := range plan.Selected {
		if hiddenSet[m.Team1] || hiddenSet[m.Team2] {
			continue
		}
		state.take(m)
	}

	remaining := remainingGames(data)
	flexRng := rng.Derive(1)
	order := AssignFlexOrder(visibleTeams(data.Teams, hiddenSet), state.scheduled, remaining, flexRng)

	next := &scheduledomain.WeeklyPlan{
		Seed:   plan.Seed,
		Quotas: plan.Quotas,
		Hidden: hidden,
	}

	for _, entry := range order {
		for state.scheduled[entry.Team] < plan.Quotas[entry.Team] {
			var candidates []leaguedomain.Match
			for _, m := range data.UnplayedMatches() {
				if state.chosenIDs[m.ID()] || !m.Involves(entry.Team) {
					continue
				}
				opp := m.Opponent(entry.Team)
				if hiddenSet[opp] || hiddenSet[entry.Team] {
					continue
				}
				if state.scheduled[opp] >= plan.Quotas[opp] {
					continue
				}
				if !state.allowed(m) {
					continue
				}
				candidates = append(candidates, m)
			}
			if len(candidates) == 0 {
				if state.scheduled[entry.Team] < plan.Quotas[entry.Team] && !hiddenSet[entry.Team] {
					next.Warnings = append(next.Warnings,
						fmt.Sprintf("no replacement match available for %s", entry.Team))
				}
				break
			}

			m := candidates[rng.Intn(len(candidates))]
			state.take(m)
			next.Rebalanced = append(next.Rebalanced, m.ID())
		}
	}

	next.Selected = state.chosen
	return next
}

func visibleTeams(teams []leaguedomain.Team, hidden map[string]bool) []leaguedomain.Team {
	var out []leaguedomain.Team
	for _, t := range teams {
		if !hidden[t.Name] {
			out = append(out, t)
		}
	}
	return out
}
