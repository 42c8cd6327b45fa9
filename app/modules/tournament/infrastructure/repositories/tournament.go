package tournamentdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	tournamentdomain "github.com/parkside-league/league-hub/app/modules/tournament/domain"
)

// TournamentDBImpl is a bun-backed implementation of Repository.
type TournamentDBImpl struct {
	DB *bun.DB
}

// Load returns the most recently saved tournament snapshot.
func (db *TournamentDBImpl) Load(ctx context.Context) (*tournamentdomain.Tournament, error) {
	snapshot := &Snapshot{}
	err := db.DB.NewSelect().
		Model(snapshot).
		Order("updated_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load tournament snapshot: %w", err)
	}

	var t tournamentdomain.Tournament
	if err := json.Unmarshal(snapshot.Document, &t); err != nil {
		return nil, fmt.Errorf("failed to decode tournament snapshot: %w", err)
	}
	return &t, nil
}

// Save upserts the tournament document, keyed by name.
func (db *TournamentDBImpl) Save(ctx context.Context, t *tournamentdomain.Tournament) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode tournament: %w", err)
	}

	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	snapshot := &Snapshot{
		Name:      t.TournamentName,
		Document:  doc,
		UpdatedAt: time.Now().UTC(),
	}
	_, err = tx.NewInsert().
		Model(snapshot).
		On("CONFLICT (name) DO UPDATE").
		Set("document = EXCLUDED.document").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save tournament snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
