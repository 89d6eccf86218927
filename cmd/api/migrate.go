package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/socialvote/socialvote/internal/auth"
	"github.com/socialvote/socialvote/internal/repository"
)

func migrateCommand() *cli.Command {
	dbFlag := &cli.StringFlag{
		Name:     "database-url",
		Usage:    "PostgreSQL connection URL",
		EnvVars:  []string{"DATABASE_URL"},
		Required: true,
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "apply or roll back the embedded schema migrations",
		Subcommands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "apply all pending migrations",
				Flags:  []cli.Flag{dbFlag},
				Action: runMigrate(repository.MigrateUp),
			},
			{
				Name:   "down",
				Usage:  "roll back every migration",
				Flags:  []cli.Flag{dbFlag},
				Action: runMigrate(repository.MigrateDown),
			},
		},
	}
}

func runMigrate(direction repository.MigrationDirection) cli.ActionFunc {
	return func(c *cli.Context) error {
		databaseURL := c.String("database-url")

		result, err := repository.RunMigrations(databaseURL, direction)
		if err != nil {
			return errors.New(sanitizeError(err, databaseURL))
		}

		state := "unchanged"
		if result.Changed {
			state = "migrated"
		}
		_, err = fmt.Fprintf(c.App.Writer, "%s %s: version %d dirty=%t\n", state, direction, result.Version, result.Dirty)
		return err
	}
}

func genSecretCommand() *cli.Command {
	return &cli.Command{
		Name:  "gen-secret",
		Usage: "print a random value suitable for JWT_SECRET",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "bytes",
				Usage: fmt.Sprintf("random bytes before encoding (minimum %d)", auth.MinSecretBytes),
				Value: auth.MinSecretBytes,
			},
		},
		Action: func(c *cli.Context) error {
			secret, err := auth.GenerateSecret(c.Int("bytes"))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, secret)
			return err
		},
	}
}
