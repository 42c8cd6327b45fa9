package tournamentmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating tournaments table...")

		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS tournaments (
				id BIGSERIAL PRIMARY KEY,
				name TEXT NOT NULL UNIQUE,
				document JSONB NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`)
		if err != nil {
			return fmt.Errorf("failed to create tournaments table: %w", err)
		}

		fmt.Println("Tournaments table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping tournaments table...")

		_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS tournaments;`)
		if err != nil {
			return fmt.Errorf("failed to drop tournaments table: %w", err)
		}

		fmt.Println("Tournaments table dropped successfully!")
		return nil
	})
}
