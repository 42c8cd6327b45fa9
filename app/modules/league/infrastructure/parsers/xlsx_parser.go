// Package parsers reads the league results workbook into typed records.
// Field access is validated here at the parse boundary so the computations
// never see a loosely-typed row: a missing or renamed sheet/column fails
// fast instead of propagating zero values.
package parsers

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	leaguedomain "github.com/parkside-league/league-hub/app/modules/league/domain"
)

// Sheet names expected in the results workbook.
const (
	SheetHomeGames = "HomeGames"
	SheetAwayGames = "AwayGames"
	SheetTeamInfo  = "TeamInfo"
)

// Sentinel cell values. Team-name matching and sentinel matching are both
// case-insensitive.
const (
	cellUnplayed = "U"
	cellWontPlay = "WP"
)

// ParseWorkbookFile reads a workbook from disk. See ParseWorkbook.
func ParseWorkbookFile(path string) (*leaguedomain.LeagueData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook %q: %w", path, err)
	}
	return ParseWorkbook(data)
}

// ParseWorkbook parses the results workbook: a TeamInfo roster sheet plus
// mirrored HomeGames/AwayGames result grids (row label = team, column
// header = opponent, cell = signed margin or a sentinel).
func ParseWorkbook(data []byte) (*leaguedomain.LeagueData, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	teams, err := parseTeamInfo(f)
	if err != nil {
		return nil, err
	}

	canonical := make(map[string]string, len(teams))
	for _, t := range teams {
		canonical[strings.ToLower(t.Name)] = t.Name
	}

	home, err := parseResultGrid(f, SheetHomeGames, canonical)
	if err != nil {
		return nil, err
	}
	away, err := parseResultGrid(f, SheetAwayGames, canonical)
	if err != nil {
		return nil, err
	}

	matches := buildMatches(teams, home, away)

	return &leaguedomain.LeagueData{
		Teams:   teams,
		Home:    home,
		Away:    away,
		Matches: matches,
	}, nil
}

// parseTeamInfo reads the roster sheet. Required columns: Team, Player1,
// Player2 (header-keyed, any order).
func parseTeamInfo(f *excelize.File) ([]leaguedomain.Team, error) {
	rows, err := f.GetRows(SheetTeamInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", SheetTeamInfo, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q has no roster rows", SheetTeamInfo)
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	teamCol, ok1 := cols["team"]
	p1Col, ok2 := cols["player1"]
	p2Col, ok3 := cols["player2"]
	if !ok1 || !ok2 || !ok3 {
		return nil, fmt.Errorf("sheet %q is missing one of the required columns Team/Player1/Player2 (got %v)", SheetTeamInfo, rows[0])
	}

	var teams []leaguedomain.Team
	seen := map[string]bool{}
	for i, row := range rows[1:] {
		name := cellAt(row, teamCol)
		if name == "" {
			continue
		}
		if seen[strings.ToLower(name)] {
			return nil, fmt.Errorf("duplicate team %q in sheet %q (row %d)", name, SheetTeamInfo, i+2)
		}
		seen[strings.ToLower(name)] = true

		teams = append(teams, leaguedomain.Team{
			Name:    name,
			Players: [2]string{cellAt(row, p1Col), cellAt(row, p2Col)},
		})
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("sheet %q has no teams", SheetTeamInfo)
	}
	return teams, nil
}

// parseResultGrid reads one perspective of the season results. Every row
// label and column header must resolve to a roster team; a miss is a
// data-integrity error that aborts the load.
func parseResultGrid(f *excelize.File, sheet string, canonical map[string]string) (leaguedomain.ResultTable, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q has no result rows", sheet)
	}

	// Header row: first cell is a corner label, the rest are opponent names.
	header := rows[0]
	colTeams := make([]string, len(header))
	for i := 1; i < len(header); i++ {
		name := strings.TrimSpace(header[i])
		if name == "" {
			continue
		}
		resolved, ok := canonical[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("sheet %q: column header %q does not match any roster team", sheet, name)
		}
		colTeams[i] = resolved
	}

	table := leaguedomain.ResultTable{}
	for r := 1; r < len(rows); r++ {
		row := rows[r]
		label := cellAt(row, 0)
		if label == "" {
			continue
		}
		team, ok := canonical[strings.ToLower(label)]
		if !ok {
			return nil, fmt.Errorf("sheet %q: row label %q does not match any roster team", sheet, label)
		}

		cells := map[string]leaguedomain.Leg{}
		for c := 1; c < len(colTeams); c++ {
			opp := colTeams[c]
			if opp == "" || opp == team {
				continue
			}
			leg, err := parseCell(cellAt(row, c))
			if err != nil {
				return nil, fmt.Errorf("sheet %q: cell %s vs %s: %w", sheet, team, opp, err)
			}
			cells[opp] = leg
		}
		table[team] = cells
	}
	return table, nil
}

// parseCell converts one grid cell into a typed leg. Empty cells count as
// unplayed.
func parseCell(raw string) (leaguedomain.Leg, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch s {
	case "", cellUnplayed:
		return leaguedomain.Leg{Status: leaguedomain.LegUnplayed}, nil
	case cellWontPlay:
		return leaguedomain.Leg{Status: leaguedomain.LegWontPlay}, nil
	}

	margin, err := strconv.Atoi(s)
	if err != nil {
		// Spreadsheets love to hand back "3.0" for integer cells.
		if v, ferr := strconv.ParseFloat(s, 64); ferr == nil && v == float64(int(v)) {
			return leaguedomain.Leg{Margin: int(v), Status: leaguedomain.LegPlayed}, nil
		}
		return leaguedomain.Leg{}, fmt.Errorf("undefined result cell %q", raw)
	}
	return leaguedomain.Leg{Margin: margin, Status: leaguedomain.LegPlayed}, nil
}

// buildMatches flattens the two grids into the season match list. Each
// unordered pair of teams has two legs: the home leg from HomeGames and the
// away leg from AwayGames, both stored under the lower-roster-index team so
// the (team1, team2, isHome) tuple is a stable identifier.
func buildMatches(teams []leaguedomain.Team, home, away leaguedomain.ResultTable) []leaguedomain.Match {
	var matches []leaguedomain.Match
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			t1, t2 := teams[i].Name, teams[j].Name
			if leg, ok := home[t1][t2]; ok {
				matches = append(matches, leaguedomain.Match{Team1: t1, Team2: t2, IsHome: true, Leg: leg})
			}
			if leg, ok := away[t1][t2]; ok {
				matches = append(matches, leaguedomain.Match{Team1: t1, Team2: t2, IsHome: false, Leg: leg})
			}
		}
	}
	return matches
}

func cellAt(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
