package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/engine/actors"
	"yatube/internal/models"

	"github.com/urfave/cli/v3"
)

var errNeedsPostgres = errors.New("migrations need DB_TYPE=postgres")

func postgresConfig(cfg *config.Config) (string, error) {
	if cfg.Database.Type != "postgres" {
		return "", errNeedsPostgres
	}
	return cfg.Database.URI, nil
}

func migrateUpAction(ctx context.Context, c *cli.Command) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	dsn, err := postgresConfig(cfg)
	if err != nil {
		return err
	}
	return database.MigrateUp(dsn, logger)
}

func migrateDownAction(ctx context.Context, c *cli.Command) error {
	steps := 1
	if arg := c.Args().First(); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return fmt.Errorf("steps must be a positive number, got %q", arg)
		}
		steps = n
	}

	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	dsn, err := postgresConfig(cfg)
	if err != nil {
		return err
	}
	return database.MigrateDown(dsn, steps, logger)
}

// createAdminAction registers an administrator through the user supervisor,
// so the account gets a profile like any other.
func createAdminAction(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("usage: createadmin <username> <password>")
	}

	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.close(context.Background())

	user, err := actors.Ask[*models.User](app.engine.Root(), app.engine.GetUserSupervisor(), &actors.RegisterUserMsg{
		Username: c.Args().Get(0),
		Password: c.Args().Get(1),
		Email:    c.String("email"),
		IsAdmin:  true,
	}, app.engine.RequestTimeout())
	if err != nil {
		return fmt.Errorf("failed to create administrator: %w", err)
	}
	logger.Info("administrator created", "user", user.ID, "username", user.Username)
	return nil
}
