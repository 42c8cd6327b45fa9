package tournamentdb

import (
	"context"

	tournamentdomain "github.com/parkside-league/league-hub/app/modules/tournament/domain"
)

// FakeRepository is a fake implementation of Repository for testing.
type FakeRepository struct {
	LoadFn func(ctx context.Context) (*tournamentdomain.Tournament, error)
	SaveFn func(ctx context.Context, t *tournamentdomain.Tournament) error

	Saved []*tournamentdomain.Tournament
}

func (f *FakeRepository) Load(ctx context.Context) (*tournamentdomain.Tournament, error) {
	if f.LoadFn != nil {
		return f.LoadFn(ctx)
	}
	if n := len(f.Saved); n > 0 {
		return f.Saved[n-1], nil
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) Save(ctx context.Context, t *tournamentdomain.Tournament) error {
	if f.SaveFn != nil {
		return f.SaveFn(ctx, t)
	}
	f.Saved = append(f.Saved, t)
	return nil
}
