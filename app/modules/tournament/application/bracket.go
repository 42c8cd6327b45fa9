package tournamentservice

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	tournamentdomain "github.com/parkside-league/league-hub/app/modules/tournament/domain"
)

var (
	// ErrMatchNotFound is returned when a score targets an unknown match id.
	ErrMatchNotFound = errors.New("bracket match not found")
	// ErrMatchNotReady is returned when a score targets a match that still
	// has a TBD participant.
	ErrMatchNotReady = errors.New("bracket match not editable until both teams are known")
	// ErrBracketShape is returned when the bracket skeleton cannot hold the
	// qualifiers the format advances.
	ErrBracketShape = errors.New("bracket shape does not fit the advancing teams")
)

// GroupStandings ranks a group's teams by wins, then point differential,
// then points scored, with the team name as a stable final tiebreak.
func GroupStandings(g tournamentdomain.Group) []tournamentdomain.GroupStandingRow {
	rows := map[string]*tournamentdomain.GroupStandingRow{}
	for _, team := range g.Teams {
		rows[team] = &tournamentdomain.GroupStandingRow{Team: team}
	}

	for _, m := range g.Matches {
		if !m.Completed || m.Score1 == nil || m.Score2 == nil {
			continue
		}
		r1, r2 := rows[m.Team1], rows[m.Team2]
		if r1 == nil || r2 == nil {
			continue
		}
		r1.PointsFor += *m.Score1
		r1.PointsAgainst += *m.Score2
		r2.PointsFor += *m.Score2
		r2.PointsAgainst += *m.Score1
		if *m.Score1 > *m.Score2 {
			r1.Wins++
			r2.Losses++
		} else if *m.Score2 > *m.Score1 {
			r2.Wins++
			r1.Losses++
		}
	}

	out := make([]tournamentdomain.GroupStandingRow, 0, len(g.Teams))
	for _, team := range g.Teams {
		out = append(out, *rows[team])
	}
	slices.SortFunc(out, func(a, b tournamentdomain.GroupStandingRow) int {
		if c := cmp.Compare(b.Wins, a.Wins); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Diff(), a.Diff()); c != 0 {
			return c
		}
		if c := cmp.Compare(b.PointsFor, a.PointsFor); c != 0 {
			return c
		}
		return cmp.Compare(a.Team, b.Team)
	})
	return out
}

// PopulateBracket seeds the knockout bracket from the final group
// standings. It is a no-op unless the tournament has a knockout stage and
// every group match is completed. Missing bracket skeletons are built.
func PopulateBracket(t *tournamentdomain.Tournament) error {
	if !t.Format.KnockoutStage {
		return nil
	}
	if t.Format.GroupStage && !t.GroupStageComplete() {
		return nil
	}

	adv := t.Format.GroupAdvancement
	if adv < 1 {
		return fmt.Errorf("%w: groupAdvancement %d", ErrBracketShape, adv)
	}

	var err error
	switch {
	case len(t.Groups) == 1:
		err = seedSingleGroup(t, GroupStandings(t.Groups[0]), adv)
	case len(t.Groups) == 2 && adv == 2:
		err = seedCrossGroups(t)
	default:
		err = seedGeneric(t, adv)
	}
	if err != nil {
		return err
	}

	reapplyBracketResults(t)
	return nil
}

// reapplyBracketResults walks the bracket after a reseed and feeds every
// recorded winner back into its downstream slot, since seeding rewrites
// those slots from the standings alone. A winner that is no longer a
// participant of its match belongs to a superseded seeding; its result is
// dropped and retracted from later rounds.
func reapplyBracketResults(t *tournamentdomain.Tournament) {
	for r := range t.Bracket.Rounds {
		for _, m := range t.Bracket.Rounds[r].Matches {
			if m.Winner == "" {
				continue
			}
			if m.Winner != m.Team1 && m.Winner != m.Team2 {
				stale := m.Winner
				m.Score1, m.Score2 = nil, nil
				m.Winner = ""
				retractDownstream(t, r, m, stale)
				continue
			}
			propagateWinner(t, r, m)
		}
	}
	recomputeThirdPlace(t)
}

// seedSingleGroup handles the one-pool layouts.
//
// Top 6 uses quarterfinals 3v6 and 4v5 with the top two seeds getting byes
// straight into the semifinals; top 4 is the standard 1v4 / 2v3; top 2 goes
// straight to a final.
func seedSingleGroup(t *tournamentdomain.Tournament, standings []tournamentdomain.GroupStandingRow, adv int) error {
	if len(standings) < adv {
		return fmt.Errorf("%w: %d teams for top-%d advancement", ErrBracketShape, len(standings), adv)
	}
	seed := func(i int) string { return standings[i-1].Team }

	switch adv {
	case 6:
		ensureBracket(t, []int{2, 2, 1}, []string{"Quarterfinals", "Semifinals", "Final"})
		qf, sf := t.Bracket.Rounds[0].Matches, t.Bracket.Rounds[1].Matches
		qf[0].Team1, qf[0].Team2 = seed(3), seed(6)
		qf[1].Team1, qf[1].Team2 = seed(4), seed(5)
		sf[0].Team1, sf[0].Team2 = seed(1), tournamentdomain.TBD
		sf[1].Team1, sf[1].Team2 = seed(2), tournamentdomain.TBD
	case 4:
		ensureBracket(t, []int{2, 1}, []string{"Semifinals", "Final"})
		sf := t.Bracket.Rounds[0].Matches
		sf[0].Team1, sf[0].Team2 = seed(1), seed(4)
		sf[1].Team1, sf[1].Team2 = seed(2), seed(3)
	case 2:
		ensureBracket(t, []int{1}, []string{"Final"})
		final := t.Bracket.Rounds[0].Matches[0]
		final.Team1, final.Team2 = seed(1), seed(2)
	default:
		return seedGeneric(t, adv)
	}
	ensureThirdPlace(t)
	return nil
}

// seedCrossGroups seeds the classic two-pool semifinals: A1 v B2, B1 v A2.
func seedCrossGroups(t *tournamentdomain.Tournament) error {
	a := GroupStandings(t.Groups[0])
	b := GroupStandings(t.Groups[1])
	if len(a) < 2 || len(b) < 2 {
		return fmt.Errorf("%w: both groups need two qualifiers", ErrBracketShape)
	}

	ensureBracket(t, []int{2, 1}, []string{"Semifinals", "Final"})
	sf := t.Bracket.Rounds[0].Matches
	sf[0].Team1, sf[0].Team2 = a[0].Team, b[1].Team
	sf[1].Team1, sf[1].Team2 = b[0].Team, a[1].Team
	ensureThirdPlace(t)
	return nil
}

// seedGeneric fills the opening round position-by-position in group order.
// Less rigorously seeded than the dedicated layouts, but it works for any
// group count.
func seedGeneric(t *tournamentdomain.Tournament, adv int) error {
	var qualifiers []string
	for pos := 0; pos < adv; pos++ {
		for _, g := range t.Groups {
			standings := GroupStandings(g)
			if pos >= len(standings) {
				return fmt.Errorf("%w: group %s has only %d teams", ErrBracketShape, g.Name, len(standings))
			}
			qualifiers = append(qualifiers, standings[pos].Team)
		}
	}
	if len(qualifiers)%2 != 0 {
		return fmt.Errorf("%w: %d qualifiers cannot pair up", ErrBracketShape, len(qualifiers))
	}

	sizes := []int{len(qualifiers) / 2}
	for sizes[len(sizes)-1] > 1 {
		sizes = append(sizes, sizes[len(sizes)-1]/2)
	}
	ensureBracket(t, sizes, roundNames(sizes))

	first := t.Bracket.Rounds[0].Matches
	for i, q := range qualifiers {
		m := first[i/2]
		if i%2 == 0 {
			m.Team1 = q
		} else {
			m.Team2 = q
		}
	}
	ensureThirdPlace(t)
	return nil
}

// ensureBracket keeps an imported skeleton when it matches the expected
// round sizes and builds a fresh one otherwise.
func ensureBracket(t *tournamentdomain.Tournament, sizes []int, names []string) {
	if bracketMatchesShape(&t.Bracket, sizes) {
		return
	}
	rounds := make([]tournamentdomain.Round, len(sizes))
	for r, size := range sizes {
		round := tournamentdomain.Round{Name: names[r]}
		for i := 0; i < size; i++ {
			round.Matches = append(round.Matches, &tournamentdomain.BracketMatch{
				ID:    fmt.Sprintf("r%dm%d", r+1, i+1),
				Team1: tournamentdomain.TBD,
				Team2: tournamentdomain.TBD,
			})
		}
		rounds[r] = round
	}
	t.Bracket.Rounds = rounds
}

func bracketMatchesShape(b *tournamentdomain.Bracket, sizes []int) bool {
	if len(b.Rounds) != len(sizes) {
		return false
	}
	for i, r := range b.Rounds {
		if len(r.Matches) != sizes[i] {
			return false
		}
	}
	return true
}

func roundNames(sizes []int) []string {
	names := make([]string, len(sizes))
	for i, size := range sizes {
		switch size {
		case 1:
			names[i] = "Final"
		case 2:
			names[i] = "Semifinals"
		case 4:
			names[i] = "Quarterfinals"
		default:
			names[i] = fmt.Sprintf("Round of %d", size*2)
		}
	}
	return names
}

func ensureThirdPlace(t *tournamentdomain.Tournament) {
	if t.ThirdPlaceMatch != nil || len(t.Bracket.Rounds) < 2 {
		return
	}
	t.ThirdPlaceMatch = &tournamentdomain.BracketMatch{
		ID:    "third-place",
		Team1: tournamentdomain.TBD,
		Team2: tournamentdomain.TBD,
	}
}

// RecordBracketScore enters a score for a resolved bracket match. Unequal
// scores set the winner and propagate it forward; equal scores are stored
// but leave the winner unset, since the domain requires a decisive result
// before the bracket can advance.
func RecordBracketScore(t *tournamentdomain.Tournament, id string, score1, score2 int) error {
	m, roundIdx, ok := t.FindBracketMatch(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrMatchNotFound, id)
	}
	if !m.Resolved() {
		return fmt.Errorf("%w: %q", ErrMatchNotReady, id)
	}

	s1, s2 := score1, score2
	m.Score1, m.Score2 = &s1, &s2
	m.Winner = ""
	if s1 > s2 {
		m.Winner = m.Team1
	} else if s2 > s1 {
		m.Winner = m.Team2
	}

	if m.Winner != "" && roundIdx >= 0 {
		propagateWinner(t, roundIdx, m)
	}
	if roundIdx == semifinalRound(t) {
		recomputeThirdPlace(t)
	}
	return nil
}

// ClearBracketScore resets a match to its pre-score state. Without cascade
// this intentionally leaves already-propagated winners in later rounds
// untouched, matching the site's historical behavior; with cascade every
// downstream slot fed by this match is retracted as well.
func ClearBracketScore(t *tournamentdomain.Tournament, id string, cascade bool) error {
	m, roundIdx, ok := t.FindBracketMatch(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrMatchNotFound, id)
	}

	hadWinner := m.Winner
	m.Score1, m.Score2 = nil, nil
	m.Winner = ""

	if !cascade || hadWinner == "" || roundIdx < 0 {
		return nil
	}

	retractDownstream(t, roundIdx, m, hadWinner)
	if roundIdx == semifinalRound(t) {
		recomputeThirdPlace(t)
	}
	return nil
}

// propagateWinner writes the winner into its slot in the next round. Equal
// round sizes model a bye structure: the winner always lands in the team2
// slot of the same-index match. Otherwise standard bracket folding applies:
// match i feeds match i/2, slot i%2.
func propagateWinner(t *tournamentdomain.Tournament, roundIdx int, m *tournamentdomain.BracketMatch) {
	next := nextSlot(t, roundIdx, m)
	if next == nil {
		return
	}
	if next.slot == 0 {
		next.match.Team1 = m.Winner
	} else {
		next.match.Team2 = m.Winner
	}
}

type slotRef struct {
	match *tournamentdomain.BracketMatch
	slot  int
}

func nextSlot(t *tournamentdomain.Tournament, roundIdx int, m *tournamentdomain.BracketMatch) *slotRef {
	if roundIdx+1 >= len(t.Bracket.Rounds) {
		return nil
	}
	cur := t.Bracket.Rounds[roundIdx].Matches
	nxt := t.Bracket.Rounds[roundIdx+1].Matches

	idx := slices.Index(cur, m)
	if idx < 0 {
		return nil
	}
	if len(cur) == len(nxt) {
		return &slotRef{match: nxt[idx], slot: 1}
	}
	return &slotRef{match: nxt[idx/2], slot: idx % 2}
}

// retractDownstream clears the cleared match's winner out of every slot it
// reached, recursively clearing matches that thereby lose a participant.
func retractDownstream(t *tournamentdomain.Tournament, roundIdx int, m *tournamentdomain.BracketMatch, winner string) {
	next := nextSlot(t, roundIdx, m)
	if next == nil {
		return
	}

	occupant := next.match.Team1
	if next.slot == 1 {
		occupant = next.match.Team2
	}
	if occupant != winner {
		return
	}

	downstreamWinner := next.match.Winner
	if next.slot == 0 {
		next.match.Team1 = tournamentdomain.TBD
	} else {
		next.match.Team2 = tournamentdomain.TBD
	}
	next.match.Score1, next.match.Score2 = nil, nil
	next.match.Winner = ""

	if downstreamWinner != "" {
		retractDownstream(t, roundIdx+1, next.match, downstreamWinner)
	}
}

// semifinalRound returns the round index feeding the final, or -2 when the
// bracket has no such round.
func semifinalRound(t *tournamentdomain.Tournament) int {
	if len(t.Bracket.Rounds) < 2 {
		return -2
	}
	return len(t.Bracket.Rounds) - 2
}

// recomputeThirdPlace rebuilds the third-place participants from the
// semifinal losers. Recomputed fully on every semifinal change, never
// incrementally.
func recomputeThirdPlace(t *tournamentdomain.Tournament) {
	if t.ThirdPlaceMatch == nil {
		return
	}
	sfIdx := semifinalRound(t)
	if sfIdx < 0 {
		return
	}

	sf := t.Bracket.Rounds[sfIdx].Matches
	prev1, prev2 := t.ThirdPlaceMatch.Team1, t.ThirdPlaceMatch.Team2

	teams := []string{tournamentdomain.TBD, tournamentdomain.TBD}
	for i, m := range sf {
		if i > 1 {
			break
		}
		if loser := m.Loser(); loser != "" {
			teams[i] = loser
		}
	}
	t.ThirdPlaceMatch.Team1, t.ThirdPlaceMatch.Team2 = teams[0], teams[1]

	// A participant change invalidates any recorded result.
	if prev1 != teams[0] || prev2 != teams[1] {
		t.ThirdPlaceMatch.Score1, t.ThirdPlaceMatch.Score2 = nil, nil
		t.ThirdPlaceMatch.Winner = ""
	}
}
