package tournamentdb

import (
	"context"

	tournamentdomain "github.com/parkside-league/league-hub/app/modules/tournament/domain"
)

// Repository defines the persistence contract for tournament state.
//
// Error semantics:
//   - ErrNotFound: no snapshot exists yet (Load)
//   - other errors: infrastructure failures
type Repository interface {
	// Load returns the most recently saved tournament.
	Load(ctx context.Context) (*tournamentdomain.Tournament, error)
	// Save upserts the tournament, keyed by its name.
	Save(ctx context.Context, t *tournamentdomain.Tournament) error
}
