package scheduleservice

import (
	"math"
	"sort"

	leaguedomain "github.com/parkside-league/league-hub/app/modules/league/domain"
	"github.com/parkside-league/league-hub/internal/randgen"
)

// Settings are the season parameters the quota computation depends on.
type Settings struct {
	SessionsRemaining int
	// QuotaAdjustment is the small constant added to each team's per-week
	// target before randomized rounding, nudging weekly totals upward so the
	// season finishes on time.
	QuotaAdjustment float64
	// LastResortTeam absorbs parity fixes and is never reduced by the
	// dual-team player cap. Empty means the last roster team is used.
	LastResortTeam string
}

// maxCombinedGames is the weekly floor of the cap for a player holding two
// teams.
const maxCombinedGames = 3

// ComputeQuotas decides how many games each team plays this week.
//
// Each team's target is remaining/sessionsRemaining plus the adjustment
// constant; randomized rounding keeps quotas integral while converging on
// the target in the long-run average. Teams with remaining games always get
// at least one. Players holding two teams are capped, and the grand total is
// forced even so every game can be paired.
func ComputeQuotas(data *leaguedomain.LeagueData, settings Settings, rng *randgen.Source) map[string]int {
	remaining := remainingGames(data)

	quotas := make(map[string]int, len(data.Teams))
	targets := make(map[string]float64, len(data.Teams))

	// Roster order, so the rounding draws consume the stream identically on
	// every run with the same seed.
	for _, t := range data.Teams {
		rem := remaining[t.Name]
		if rem == 0 {
			quotas[t.Name] = 0
			continue
		}

		target := float64(rem) / float64(settings.SessionsRemaining)
		targets[t.Name] = target

		adjusted := target + settings.QuotaAdjustment
		quota := int(math.Floor(adjusted))
		if frac := adjusted - math.Floor(adjusted); rng.Float64() < frac {
			quota++
		}
		if quota < 1 {
			quota = 1
		}
		quotas[t.Name] = quota
	}

	lastResort := settings.LastResortTeam
	if lastResort == "" && len(data.Teams) > 0 {
		lastResort = data.Teams[len(data.Teams)-1].Name
	}

	applyDualTeamCaps(data, quotas, targets, lastResort)
	forceEvenTotal(quotas, remaining, lastResort)

	return quotas
}

// remainingGames counts unplayed season games per team.
func remainingGames(data *leaguedomain.LeagueData) map[string]int {
	remaining := map[string]int{}
	for _, m := range data.UnplayedMatches() {
		remaining[m.Team1]++
		remaining[m.Team2]++
	}
	return remaining
}

// applyDualTeamCaps limits the combined weekly games of any player holding
// two teams to max(3, ceil of the summed targets), reducing the
// lower-target team first. The last-resort team is never reduced.
func applyDualTeamCaps(data *leaguedomain.LeagueData, quotas map[string]int, targets map[string]float64, lastResort string) {
	type pair struct{ a, b string }
	var pairs []pair
	seen := map[pair]bool{}

	// Walk the roster in order and pair up teams sharing a player.
	for i := 0; i < len(data.Teams); i++ {
		for j := i + 1; j < len(data.Teams); j++ {
			if !data.Teams[i].SharesPlayer(data.Teams[j]) {
				continue
			}
			p := pair{data.Teams[i].Name, data.Teams[j].Name}
			if !seen[p] {
				seen[p] = true
				pairs = append(pairs, p)
			}
		}
	}

	for _, p := range pairs {
		limit := int(math.Ceil(targets[p.a] + targets[p.b]))
		if limit < maxCombinedGames {
			limit = maxCombinedGames
		}

		for quotas[p.a]+quotas[p.b] > limit {
			lower, higher := p.a, p.b
			if targets[p.b] < targets[p.a] {
				lower, higher = p.b, p.a
			}

			switch {
			case lower != lastResort && quotas[lower] > 0:
				quotas[lower]--
			case higher != lastResort && quotas[higher] > 0:
				quotas[higher]--
			default:
				return // nothing reducible left
			}
		}
	}
}

// forceEvenTotal nudges the last-resort team by one in either direction when
// the grand total is odd; an odd team-total cannot be fully paired.
func forceEvenTotal(quotas map[string]int, remaining map[string]int, lastResort string) {
	total := 0
	for _, q := range quotas {
		total += q
	}
	if total%2 == 0 {
		return
	}

	if _, ok := quotas[lastResort]; !ok || remaining[lastResort] == 0 {
		// Configured team has nothing left this season; fall back to the
		// alphabetically last team that does.
		var names []string
		for name, q := range quotas {
			if q > 0 || remaining[name] > 0 {
				names = append(names, name)
			}
		}
		if len(names) == 0 {
			return
		}
		sort.Strings(names)
		lastResort = names[len(names)-1]
	}

	if quotas[lastResort] > 1 {
		quotas[lastResort]--
	} else {
		quotas[lastResort]++
	}
}
