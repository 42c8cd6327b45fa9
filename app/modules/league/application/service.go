package leagueservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	leaguedomain "github.com/parkside-league/league-hub/app/modules/league/domain"
	"github.com/parkside-league/league-hub/app/modules/league/infrastructure/parsers"
	"github.com/parkside-league/league-hub/config"
	"github.com/parkside-league/league-hub/internal/eventbus"
)

// ErrNotLoaded is returned when standings are requested before a workbook
// has been loaded.
var ErrNotLoaded = errors.New("league data not loaded")

// LeagueService owns the loaded league session state. Computations never
// mutate shared state in place: a reload replaces the whole snapshot, and
// readers get the derived standings for the current snapshot.
type LeagueService struct {
	cfg      config.LeagueConfig
	logger   *slog.Logger
	tracer   trace.Tracer
	eventBus eventbus.EventBus

	mu        sync.RWMutex
	data      *leaguedomain.LeagueData
	points    map[string]int
	standings []leaguedomain.TeamStanding
}

// NewLeagueService creates a new LeagueService.
func NewLeagueService(cfg config.LeagueConfig, logger *slog.Logger, bus eventbus.EventBus) *LeagueService {
	return &LeagueService{
		cfg:      cfg,
		logger:   logger,
		tracer:   otel.Tracer("league"),
		eventBus: bus,
		points:   map[string]int{},
	}
}

// StandingsComputedPayload is published on eventbus.TopicStandingsComputed
// after every successful recomputation.
type StandingsComputedPayload struct {
	ComputedAt time.Time `json:"computedAt"`
	Teams      int       `json:"teams"`
	Played     int       `json:"played"`
}

// Reload reads the configured workbook and tournament-points file from disk
// and recomputes the standings snapshot.
func (s *LeagueService) Reload(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "LeagueService.Reload")
	defer span.End()

	data, err := parsers.ParseWorkbookFile(s.cfg.WorkbookPath)
	if err != nil {
		s.logger.ErrorContext(ctx, "workbook load failed",
			slog.String("path", s.cfg.WorkbookPath),
			slog.Any("error", err),
		)
		return err
	}

	points := map[string]int{}
	if s.cfg.TournamentPointsPath != "" {
		points, err = LoadTournamentPoints(s.cfg.TournamentPointsPath)
		if err != nil {
			return err
		}
	}

	return s.install(ctx, data, points)
}

// LoadWorkbook installs a workbook from raw bytes (upload path).
func (s *LeagueService) LoadWorkbook(ctx context.Context, raw []byte) error {
	ctx, span := s.tracer.Start(ctx, "LeagueService.LoadWorkbook")
	defer span.End()

	data, err := parsers.ParseWorkbook(raw)
	if err != nil {
		return err
	}

	s.mu.RLock()
	points := s.points
	s.mu.RUnlock()

	return s.install(ctx, data, points)
}

func (s *LeagueService) install(ctx context.Context, data *leaguedomain.LeagueData, points map[string]int) error {
	standings, err := ComputeStandings(data, points)
	if err != nil {
		return fmt.Errorf("standings computation failed: %w", err)
	}

	played := 0
	for _, m := range data.Matches {
		if m.Leg.Played() {
			played++
		}
	}

	s.mu.Lock()
	s.data = data
	s.points = points
	s.standings = standings
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "standings computed",
		slog.Int("teams", len(data.Teams)),
		slog.Int("matches", len(data.Matches)),
		slog.Int("played", played),
	)

	payload, err := json.Marshal(StandingsComputedPayload{
		ComputedAt: time.Now().UTC(),
		Teams:      len(data.Teams),
		Played:     played,
	})
	if err != nil {
		return err
	}
	return s.eventBus.Publish(eventbus.TopicStandingsComputed, eventbus.NewMessage(payload))
}

// Standings returns the current ranked standings snapshot.
func (s *LeagueService) Standings(ctx context.Context) ([]leaguedomain.TeamStanding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.standings == nil {
		return nil, ErrNotLoaded
	}
	out := make([]leaguedomain.TeamStanding, len(s.standings))
	copy(out, s.standings)
	return out, nil
}

// Data returns the current league snapshot for downstream computations.
func (s *LeagueService) Data(ctx context.Context) (*leaguedomain.LeagueData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, ErrNotLoaded
	}
	return s.data, nil
}
