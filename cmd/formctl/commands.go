package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/formcraft/formcraft-backend/config"
	"github.com/formcraft/formcraft-backend/db"
	"github.com/formcraft/formcraft-backend/internal/formdef"
	"github.com/formcraft/formcraft-backend/models/embed"
	"github.com/urfave/cli/v3"
)

var errLintFailed = errors.New("form definition has problems")

// migrator is swapped in tests.
type migrator struct {
	up        func(dbURL string) error
	down      func(dbURL string, steps int) error
	version   func(dbURL string) (uint, bool, error)
	resolveDB func(configPath string) (string, error)
}

func defaultMigrator() migrator {
	return migrator{
		up:      db.RunMigrations,
		down:    db.RollbackMigrations,
		version: db.MigrationVersion,
		resolveDB: func(configPath string) (string, error) {
			load := config.LoadConfig
			if configPath != "" {
				load = func() (*config.Config, error) { return config.LoadConfigFromFile(configPath) }
			}
			cfg, err := load()
			if err != nil {
				return "", fmt.Errorf("load config: %w", err)
			}
			return cfg.Database.URL(), nil
		},
	}
}

func newApp(out io.Writer) *cli.Command {
	return newAppWith(out, defaultMigrator())
}

func newAppWith(out io.Writer, m migrator) *cli.Command {
	return &cli.Command{
		Name:  "formctl",
		Usage: "FormCraft operator tool",
		Commands: []*cli.Command{
			newMigrateCommand(out, m),
			newLintCommand(out),
			newSchemaCommand(out),
			newEmbedCodeCommand(out),
		},
	}
}

func databaseURL(command *cli.Command, m migrator) (string, error) {
	if u := command.String("database-url"); u != "" {
		return u, nil
	}
	return m.resolveDB(command.String("config"))
}

func connectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "database-url",
			Usage: "postgres URL; defaults to the DATABASE section of the server config",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "YAML config file read instead of the environment alone",
		},
	}
}

func newMigrateCommand(out io.Writer, m migrator) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply or roll back schema migrations",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Flags: connectionFlags(),
				Action: func(ctx context.Context, command *cli.Command) error {
					u, err := databaseURL(command, m)
					if err != nil {
						return err
					}
					if err := m.up(u); err != nil {
						return err
					}
					_, _ = fmt.Fprintln(out, "migrations applied")
					return nil
				},
			},
			{
				Name:  "down",
				Usage: "Roll back the last N migrations",
				Flags: append(connectionFlags(),
					&cli.IntFlag{Name: "steps", Aliases: []string{"n"}, Value: 1, Usage: "number of migrations to roll back"},
				),
				Action: func(ctx context.Context, command *cli.Command) error {
					steps := int(command.Int("steps"))
					if steps < 1 {
						return fmt.Errorf("steps must be at least 1")
					}
					u, err := databaseURL(command, m)
					if err != nil {
						return err
					}
					if err := m.down(u, steps); err != nil {
						return err
					}
					_, _ = fmt.Fprintf(out, "rolled back %d migration(s)\n", steps)
					return nil
				},
			},
			{
				Name:  "version",
				Usage: "Print the current schema version",
				Flags: connectionFlags(),
				Action: func(ctx context.Context, command *cli.Command) error {
					u, err := databaseURL(command, m)
					if err != nil {
						return err
					}
					v, dirty, err := m.version(u)
					if err != nil {
						return err
					}
					if dirty {
						_, _ = fmt.Fprintf(out, "%d (dirty)\n", v)
						return nil
					}
					_, _ = fmt.Fprintf(out, "%d\n", v)
					return nil
				},
			},
		},
	}
}

func newLintCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "lint",
		Usage:     "Check a form definition file (YAML or JSON)",
		ArgsUsage: "<file>",
		Action: func(ctx context.Context, command *cli.Command) error {
			path := command.Args().First()
			if path == "" {
				return fmt.Errorf("lint: a file argument is required")
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			draft, err := formdef.Decode(path, data)
			if err != nil {
				return err
			}
			problems := formdef.Lint(draft)
			for _, p := range problems {
				_, _ = fmt.Fprintf(out, "%s: %s\n", path, p)
			}
			if len(problems) > 0 {
				return errLintFailed
			}
			_, _ = fmt.Fprintf(out, "%s: ok (%d fields)\n", path, len(draft.Fields))
			return nil
		},
	}
}

func newSchemaCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON Schema for form definition files",
		Action: func(ctx context.Context, command *cli.Command) error {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(formdef.Schema())
		},
	}
}

func newEmbedCodeCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "embed-code",
		Usage:     "Print the iframe snippet for an embedding key",
		ArgsUsage: "<embedding-key>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "base-url", Value: "http://localhost:8080", Usage: "public origin of the API"},
			&cli.StringFlag{Name: "height", Usage: "iframe height"},
			&cli.StringFlag{Name: "width", Usage: "iframe width"},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			key := command.Args().First()
			if key == "" {
				return fmt.Errorf("embed-code: an embedding key is required")
			}
			_, err := fmt.Fprintln(out, embed.GenerateEmbedCode(key, command.String("base-url"), command.String("height"), command.String("width")))
			return err
		},
	}
}
