// Command simulator drives a running yatube API with simulated users.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"yatube/internal/logging"
	"yatube/simulator"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	defaults := simulator.DefaultConfig()
	return &cli.Command{
		Name:  "simulator",
		Usage: "Generate load against the yatube API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Usage: "Base URL of the API server",
				Value: defaults.EngineURL,
			},
			&cli.IntFlag{
				Name:  "users",
				Usage: "Number of simulated users",
				Value: defaults.NumUsers,
			},
			&cli.IntFlag{
				Name:  "groups",
				Usage: "Number of groups to create",
				Value: defaults.NumGroups,
			},
			&cli.DurationFlag{
				Name:  "duration",
				Usage: "How long to run",
				Value: 10 * time.Minute,
			},
			&cli.StringFlag{
				Name:      "log-level",
				Aliases:   []string{"l"},
				Usage:     "The level of the logs",
				Value:     "info",
				Validator: logging.ValidateLevel,
			},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, c *cli.Command) error {
	logger, err := logging.New(c.String("log-level"), os.Stdout)
	if err != nil {
		return err
	}

	config := simulator.DefaultConfig()
	config.EngineURL = c.String("url")
	config.NumUsers = c.Int("users")
	config.NumGroups = c.Int("groups")
	config.SimulationTime = c.Duration("duration")

	logger.Info("starting simulation",
		"url", config.EngineURL,
		"users", config.NumUsers,
		"groups", config.NumGroups,
		"duration", config.SimulationTime,
		"post_frequency", config.PostFrequency,
		"zipf_s", config.ZipfS,
	)

	sim := simulator.New(config, logger)
	ctx, cancel := context.WithTimeout(ctx, config.SimulationTime)
	defer cancel()

	if err := sim.Run(ctx); err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	metrics := sim.GetMetrics()
	logger.Info("simulation completed",
		"users", metrics.TotalUsers,
		"posts", metrics.TotalPosts,
		"comments", metrics.TotalComments,
		"reactions", metrics.TotalReactions,
		"follows", metrics.TotalFollows,
		"messages", metrics.TotalMessages,
		"errors", metrics.ErrorCount,
	)
	return nil
}
