package scheduleservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	leagueservice "github.com/parkside-league/league-hub/app/modules/league/application"
	scheduledomain "github.com/parkside-league/league-hub/app/modules/schedule/domain"
	"github.com/parkside-league/league-hub/config"
	"github.com/parkside-league/league-hub/internal/eventbus"
	"github.com/parkside-league/league-hub/internal/randgen"
)

// ScheduleService computes weekly plans on demand. The latest plan is kept
// so a rebalance call operates on what the user is looking at.
type ScheduleService struct {
	league   *leagueservice.LeagueService
	settings Settings
	logger   *slog.Logger
	tracer   trace.Tracer
	eventBus eventbus.EventBus

	mu       sync.Mutex
	lastPlan *scheduledomain.WeeklyPlan
}

// NewScheduleService creates a new ScheduleService.
func NewScheduleService(cfg config.LeagueConfig, league *leagueservice.LeagueService, logger *slog.Logger, bus eventbus.EventBus) *ScheduleService {
	return &ScheduleService{
		league: league,
		settings: Settings{
			SessionsRemaining: cfg.SessionsRemaining,
			QuotaAdjustment:   cfg.QuotaAdjustment,
			LastResortTeam:    cfg.LastResortTeam,
		},
		logger:   logger,
		tracer:   otel.Tracer("schedule"),
		eventBus: bus,
	}
}

// WeeklyPlanPayload is published on eventbus.TopicWeeklyPlanCreated.
type WeeklyPlanPayload struct {
	CreatedAt time.Time `json:"createdAt"`
	Seed      uint32    `json:"seed"`
	Matches   int       `json:"matches"`
	Warnings  int       `json:"warnings"`
}

// ComputeWeeklyPlan runs quota computation, match selection, and flex
// ordering for the week. A nil seed derives the seed from the upcoming
// Thursday, which is what makes the plan stable across reloads within one
// week.
func (s *ScheduleService) ComputeWeeklyPlan(ctx context.Context, seed *uint32) (*scheduledomain.WeeklyPlan, []scheduledomain.FlexEntry, error) {
	ctx, span := s.tracer.Start(ctx, "ScheduleService.ComputeWeeklyPlan")
	defer span.End()

	data, err := s.league.Data(ctx)
	if err != nil {
		return nil, nil, err
	}

	planSeed := randgen.WeeklySeed(time.Now())
	if seed != nil {
		planSeed = *seed
	}

	// Three independently seeded streams so one phase consuming more draws
	// never perturbs another.
	base := randgen.New(planSeed)
	quotaRng := base.Derive(0)
	selectRng := base.Derive(1)
	flexRng := base.Derive(2)

	quotas := ComputeQuotas(data, s.settings, quotaRng)
	selected, warnings := SelectMatches(data, quotas, selectRng)

	plan := &scheduledomain.WeeklyPlan{
		Seed:     planSeed,
		Quotas:   quotas,
		Selected: selected,
		Warnings: warnings,
	}

	scheduled := map[string]int{}
	for _, m := range selected {
		scheduled[m.Team1]++
		scheduled[m.Team2]++
	}
	order := AssignFlexOrder(data.Teams, scheduled, remainingGames(data), flexRng)

	for _, w := range warnings {
		s.logger.WarnContext(ctx, "weekly scheduling fell short", slog.String("detail", w))
	}
	s.logger.InfoContext(ctx, "weekly plan computed",
		slog.Uint64("seed", uint64(planSeed)),
		slog.Int("matches", len(selected)),
	)

	s.mu.Lock()
	s.lastPlan = plan
	s.mu.Unlock()

	payload, err := json.Marshal(WeeklyPlanPayload{
		CreatedAt: time.Now().UTC(),
		Seed:      planSeed,
		Matches:   len(selected),
		Warnings:  len(warnings),
	})
	if err != nil {
		return nil, nil, err
	}
	if err := s.eventBus.Publish(eventbus.TopicWeeklyPlanCreated, eventbus.NewMessage(payload)); err != nil {
		return nil, nil, err
	}

	return plan, order, nil
}

// RebalancePlan drops hidden teams from the latest plan and redistributes
// their games. When no plan exists yet one is computed first.
func (s *ScheduleService) RebalancePlan(ctx context.Context, hidden []string) (*scheduledomain.WeeklyPlan, error) {
	ctx, span := s.tracer.Start(ctx, "ScheduleService.RebalancePlan")
	defer span.End()

	s.mu.Lock()
	plan := s.lastPlan
	s.mu.Unlock()

	if plan == nil {
		var err error
		plan, _, err = s.ComputeWeeklyPlan(ctx, nil)
		if err != nil {
			return nil, err
		}
	}

	data, err := s.league.Data(ctx)
	if err != nil {
		return nil, err
	}

	// A distinct stream keyed off the plan seed keeps rebalancing
	// reproducible too.
	rng := randgen.New(plan.Seed).Derive(3)
	next := Rebalance(data, plan, hidden, rng)

	s.mu.Lock()
	s.lastPlan = next
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "plan rebalanced",
		slog.Int("hidden", len(hidden)),
		slog.Int("matches", len(next.Selected)),
		slog.Int("replacements", len(next.Rebalanced)),
	)
	return next, nil
}
