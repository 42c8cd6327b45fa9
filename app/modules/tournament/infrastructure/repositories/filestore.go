package tournamentdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	tournamentdomain "github.com/parkside-league/league-hub/app/modules/tournament/domain"
)

// FileStore is a Repository backed by a single JSON file, used when no
// database DSN is configured. Saves go through a temp file and rename so a
// crash mid-write never leaves a truncated document.
type FileStore struct {
	Path string
}

func (s *FileStore) Load(_ context.Context) (*tournamentdomain.Tournament, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read tournament file: %w", err)
	}

	var t tournamentdomain.Tournament
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("failed to decode tournament file: %w", err)
	}
	return &t, nil
}

func (s *FileStore) Save(_ context.Context, t *tournamentdomain.Tournament) error {
	doc, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tournament: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create tournament data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "tournament-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write tournament file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close tournament file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace tournament file: %w", err)
	}
	return nil
}
