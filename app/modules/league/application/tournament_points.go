package leagueservice

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// LoadTournamentPoints reads the bonus-points JSON keyed by team name. A
// missing file is tolerated and treated as an empty map; a malformed file is
// not.
func LoadTournamentPoints(path string) (map[string]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]int{}, nil
		}
		return nil, fmt.Errorf("failed to read tournament points %q: %w", path, err)
	}

	points := map[string]int{}
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("failed to parse tournament points %q: %w", path, err)
	}
	return points, nil
}
