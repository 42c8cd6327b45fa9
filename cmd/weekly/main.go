// Command weekly runs the scheduling pipeline offline: it loads the
// workbook, computes quotas, selects the week's matches, and prints the
// flex order, without starting the server.
package main

import (
	"fmt"
	"log"
	"os"
	"slices"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/urfave/cli/v2"

	leagueservice "github.com/parkside-league/league-hub/app/modules/league/application"
	scheduleservice "github.com/parkside-league/league-hub/app/modules/schedule/application"
	"github.com/parkside-league/league-hub/config"
	"github.com/parkside-league/league-hub/internal/eventbus"
	"github.com/parkside-league/league-hub/internal/observability"
	"github.com/parkside-league/league-hub/internal/randgen"
)

func main() {
	app := &cli.App{
		Name:  "weekly",
		Usage: "compute the weekly match plan from the results workbook",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "config.yaml",
				Usage: "path to the config file",
			},
			&cli.StringFlag{
				Name:  "week",
				Usage: `week to plan for, in natural language ("next thursday")`,
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "explicit seed, overriding --week",
			},
			&cli.StringSliceFlag{
				Name:  "hide",
				Usage: "teams to hide; triggers a rebalance after selection",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := observability.NewLogger(&cfg.Observability)
	bus := eventbus.NewPubSub(logger)
	defer bus.Close()

	league := leagueservice.NewLeagueService(cfg.League, logger, bus)
	if err := league.Reload(c.Context); err != nil {
		return err
	}
	schedule := scheduleservice.NewScheduleService(cfg.League, league, logger, bus)

	seed, err := resolveSeed(c)
	if err != nil {
		return err
	}

	plan, flex, err := schedule.ComputeWeeklyPlan(c.Context, seed)
	if err != nil {
		return err
	}
	if hidden := c.StringSlice("hide"); len(hidden) > 0 {
		plan, err = schedule.RebalancePlan(c.Context, hidden)
		if err != nil {
			return err
		}
	}

	fmt.Printf("Week seed: %d\n\n", plan.Seed)

	fmt.Println("Quotas:")
	for _, f := range flex {
		fmt.Printf("  %-20s quota %d\n", f.Team, plan.Quotas[f.Team])
	}

	fmt.Println("\nSelected matches:")
	for _, m := range plan.Selected {
		marker := ""
		if slices.Contains(plan.Rebalanced, m.ID()) {
			marker = "  (rebalanced)"
		}
		fmt.Printf("  %s vs %s%s\n", m.Team1, m.Team2, marker)
	}

	fmt.Println("\nFlex order:")
	for _, f := range flex {
		fmt.Printf("  %2d. %s\n", f.Priority, f.Team)
	}

	for _, warning := range plan.Warnings {
		fmt.Printf("\nWarning: %s\n", warning)
	}
	return nil
}

// resolveSeed prefers an explicit --seed, then a --week phrase, then the
// upcoming league night.
func resolveSeed(c *cli.Context) (*uint32, error) {
	if c.IsSet("seed") {
		seed := uint32(c.Uint64("seed"))
		return &seed, nil
	}

	phrase := c.String("week")
	if phrase == "" {
		return nil, nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(phrase, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to parse week %q: %w", phrase, err)
	}
	if r == nil {
		return nil, fmt.Errorf("could not recognize week %q", phrase)
	}

	seed := randgen.WeeklySeed(r.Time)
	return &seed, nil
}
