package tournamentservice

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	tournamentdomain "github.com/parkside-league/league-hub/app/modules/tournament/domain"
	tournamentdb "github.com/parkside-league/league-hub/app/modules/tournament/infrastructure/repositories"
	"github.com/parkside-league/league-hub/internal/eventbus"
)

// ErrNoTournament is returned when an operation needs a tournament and none
// has been imported or restored.
var ErrNoTournament = errors.New("no tournament loaded")

// TournamentService owns the live tournament document. Every mutation goes
// through the same path: apply to a working copy, reseed the bracket when
// the group stage flips to complete, persist, swap the snapshot, publish.
type TournamentService struct {
	repo     tournamentdb.Repository
	logger   *slog.Logger
	tracer   trace.Tracer
	eventBus eventbus.EventBus

	mu      sync.RWMutex
	current *tournamentdomain.Tournament
}

// NewTournamentService creates a new TournamentService.
func NewTournamentService(repo tournamentdb.Repository, logger *slog.Logger, bus eventbus.EventBus) *TournamentService {
	return &TournamentService{
		repo:     repo,
		logger:   logger,
		tracer:   otel.Tracer("tournament"),
		eventBus: bus,
	}
}

// TournamentUpdatedPayload is published on eventbus.TopicTournamentUpdated
// after every successful mutation.
type TournamentUpdatedPayload struct {
	UpdatedAt      time.Time `json:"updatedAt"`
	TournamentName string    `json:"tournamentName"`
	Operation      string    `json:"operation"`
}

// Restore loads the persisted tournament snapshot, if any. A missing
// snapshot is not an error; the service just starts empty.
func (s *TournamentService) Restore(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "TournamentService.Restore")
	defer span.End()

	t, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, tournamentdb.ErrNotFound) {
			s.logger.InfoContext(ctx, "no stored tournament to restore")
			return nil
		}
		return err
	}

	s.mu.Lock()
	s.current = t
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "tournament restored",
		slog.String("tournament", t.TournamentName),
	)
	return nil
}

// Import validates and installs a tournament JSON document, replacing any
// current tournament. A document whose group stage is already complete gets
// its bracket seeded immediately.
func (s *TournamentService) Import(ctx context.Context, raw []byte) (*tournamentdomain.Tournament, error) {
	ctx, span := s.tracer.Start(ctx, "TournamentService.Import")
	defer span.End()

	t, err := ImportTournament(raw)
	if err != nil {
		return nil, err
	}
	if err := PopulateBracket(t); err != nil {
		return nil, err
	}

	if err := s.commit(ctx, t, "import"); err != nil {
		return nil, err
	}
	return snapshotCopy(t)
}

// Current returns a deep copy of the live tournament.
func (s *TournamentService) Current(ctx context.Context) (*tournamentdomain.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoTournament
	}
	return snapshotCopy(s.current)
}

// RecordGroupScore enters a group-stage result. Completing the last group
// match seeds the knockout bracket from the final standings.
func (s *TournamentService) RecordGroupScore(ctx context.Context, group, team1, team2 string, score1, score2 int) (*tournamentdomain.Tournament, error) {
	return s.mutate(ctx, "group_score", func(t *tournamentdomain.Tournament) error {
		if err := RecordGroupScore(t, group, team1, team2, score1, score2); err != nil {
			return err
		}
		return PopulateBracket(t)
	})
}

// ClearGroupScore removes a group-stage result. Already-seeded bracket
// slots are left as they are; reseeding only happens when the stage
// completes again.
func (s *TournamentService) ClearGroupScore(ctx context.Context, group, team1, team2 string) (*tournamentdomain.Tournament, error) {
	return s.mutate(ctx, "group_clear", func(t *tournamentdomain.Tournament) error {
		return ClearGroupScore(t, group, team1, team2)
	})
}

// RecordBracketScore enters a knockout result and propagates the winner.
func (s *TournamentService) RecordBracketScore(ctx context.Context, matchID string, score1, score2 int) (*tournamentdomain.Tournament, error) {
	return s.mutate(ctx, "bracket_score", func(t *tournamentdomain.Tournament) error {
		return RecordBracketScore(t, matchID, score1, score2)
	})
}

// ClearBracketScore resets a knockout result, cascading to downstream
// rounds only when asked to.
func (s *TournamentService) ClearBracketScore(ctx context.Context, matchID string, cascade bool) (*tournamentdomain.Tournament, error) {
	return s.mutate(ctx, "bracket_clear", func(t *tournamentdomain.Tournament) error {
		return ClearBracketScore(t, matchID, cascade)
	})
}

// ExportJSON returns the full tournament document.
func (s *TournamentService) ExportJSON(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoTournament
	}
	return ExportTournament(s.current)
}

// ExportResultsJSON returns the compact results-only document.
func (s *TournamentService) ExportResultsJSON(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoTournament
	}
	return ExportResults(s.current)
}

// mutate runs fn against a working copy of the current tournament and
// commits the copy on success, so a failed validation never leaves the live
// snapshot half-edited.
func (s *TournamentService) mutate(ctx context.Context, operation string, fn func(*tournamentdomain.Tournament) error) (*tournamentdomain.Tournament, error) {
	ctx, span := s.tracer.Start(ctx, "TournamentService."+operation)
	defer span.End()

	s.mu.RLock()
	cur := s.current
	s.mu.RUnlock()
	if cur == nil {
		return nil, ErrNoTournament
	}

	working, err := snapshotCopy(cur)
	if err != nil {
		return nil, err
	}
	if err := fn(working); err != nil {
		return nil, err
	}

	if err := s.commit(ctx, working, operation); err != nil {
		return nil, err
	}
	return snapshotCopy(working)
}

func (s *TournamentService) commit(ctx context.Context, t *tournamentdomain.Tournament, operation string) error {
	if err := s.repo.Save(ctx, t); err != nil {
		s.logger.ErrorContext(ctx, "tournament save failed",
			slog.String("tournament", t.TournamentName),
			slog.Any("error", err),
		)
		return err
	}

	s.mu.Lock()
	s.current = t
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "tournament updated",
		slog.String("tournament", t.TournamentName),
		slog.String("operation", operation),
	)

	payload, err := json.Marshal(TournamentUpdatedPayload{
		UpdatedAt:      time.Now().UTC(),
		TournamentName: t.TournamentName,
		Operation:      operation,
	})
	if err != nil {
		return err
	}
	return s.eventBus.Publish(eventbus.TopicTournamentUpdated, eventbus.NewMessage(payload))
}

// snapshotCopy deep-copies a tournament document through its JSON form.
func snapshotCopy(t *tournamentdomain.Tournament) (*tournamentdomain.Tournament, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	var out tournamentdomain.Tournament
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
