// Command engine runs the yatube API server and its maintenance tasks.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"yatube/internal/config"
	"yatube/internal/logging"

	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

var logLevelFlag = &cli.StringFlag{
	Name:      "log-level",
	Aliases:   []string{"l"},
	Usage:     "The level of the logs, defaults to LOG_LEVEL from the configuration",
	Validator: logging.ValidateLevel,
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "yatube",
		Usage:   "Social blogging backend: groups, posts, follows and chats",
		Version: version,
		Flags:   []cli.Flag{logLevelFlag},
		Action:  serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP API (default)",
				Action: serveAction,
			},
			{
				Name:  "migrate",
				Usage: "Apply or roll back the PostgreSQL schema",
				Commands: []*cli.Command{
					{
						Name:   "up",
						Usage:  "Apply every pending migration",
						Action: migrateUpAction,
					},
					{
						Name:      "down",
						Usage:     "Roll back migrations",
						ArgsUsage: "[steps]",
						Action:    migrateDownAction,
					},
				},
			},
			{
				Name:      "createadmin",
				Usage:     "Create an administrator account",
				ArgsUsage: "<username> <password>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "Email of the administrator"},
				},
				Action: createAdminAction,
			},
		},
	}
}

// setup loads the configuration and builds the process logger. The
// --log-level flag wins over LOG_LEVEL.
func setup(c *cli.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	level := c.String("log-level")
	if level == "" {
		level = cfg.LogLevel
	}
	if cfg.Debug && level == "info" {
		level = "debug"
	}
	logger, err := logging.New(level, os.Stdout)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func serveAction(ctx context.Context, c *cli.Command) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	return serve(ctx, cfg, logger)
}
