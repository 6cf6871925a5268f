package main

import (
	"fmt"
	"io"
	"os"

	"cricketbook/internal/auth"
	"cricketbook/internal/config"
	"cricketbook/internal/database/migrations"
	"cricketbook/internal/feed"
	"cricketbook/internal/logger"
	"cricketbook/internal/matches"
	"cricketbook/internal/sse"
	"cricketbook/internal/store"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load()

	app := newApp(os.Stdout)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "cricketctl:", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:     "cricketctl",
		Usage:    "CricketBook maintenance commands",
		Writer:   out,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "print service logs"},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			seedCommand(),
			promoteAdminCommand(),
		},
	}
}

func cliLogger(c *cli.Context) *logger.Logger {
	if c.Bool("verbose") {
		return logger.New(c.App.ErrWriter)
	}
	return logger.New(io.Discard)
}

func openStore(c *cli.Context) (*store.Repositories, error) {
	return store.Open(c.Context, config.Load(), cliLogger(c))
}

func migrateCommand() *cli.Command {
	withRunner := func(fn func(c *cli.Context, r *migrations.Runner) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			cfg := config.Load()
			if cfg.Store.Driver != store.DriverPostgres {
				return fmt.Errorf("migrations only apply to the postgres store (STORE_DRIVER=%s)", cfg.Store.Driver)
			}
			repos, err := store.Open(c.Context, cfg, cliLogger(c))
			if err != nil {
				return err
			}
			defer repos.Close()

			runner := migrations.NewRunner(repos.Bun.DB)
			defer runner.Close()
			return fn(c, runner)
		}
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "database schema migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: withRunner(func(c *cli.Context, r *migrations.Runner) error {
					if err := r.MigrateUp(); err != nil {
						return err
					}
					return printVersion(c, r)
				}),
			},
			{
				Name:  "down",
				Usage: "roll back every migration",
				Action: withRunner(func(c *cli.Context, r *migrations.Runner) error {
					if err := r.MigrateDown(); err != nil {
						return err
					}
					return printVersion(c, r)
				}),
			},
			{
				Name:   "version",
				Usage:  "print the applied schema version",
				Action: withRunner(printVersion),
			},
		},
	}
}

func printVersion(c *cli.Context, r *migrations.Runner) error {
	version, dirty, err := r.Version()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "schema version %d (dirty: %t)\n", version, dirty)
	return nil
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "add the sample fixtures to the match catalog",
		Action: func(c *cli.Context) error {
			repos, err := openStore(c)
			if err != nil {
				return err
			}
			defer repos.Close()

			log := cliLogger(c)
			svc := matches.NewMatchService(repos.Matches, feed.NewBroadcaster(sse.NewHub(), nil, "cricketctl", log), log)
			return seed(c, svc)
		},
	}
}

func seed(c *cli.Context, svc *matches.MatchService) error {
	for _, input := range sampleMatches() {
		match, err := svc.CreateMatch(c.Context, input)
		if err != nil {
			return fmt.Errorf("seed %s vs %s: %w", input.Team1, input.Team2, err)
		}
		fmt.Fprintf(c.App.Writer, "added %s (%s)\n", match.Name(), match.ID)
	}
	return nil
}

func promoteAdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "promote-admin",
		Usage: "grant the admin role to an existing account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true, Usage: "account email"},
		},
		Action: func(c *cli.Context) error {
			repos, err := openStore(c)
			if err != nil {
				return err
			}
			defer repos.Close()

			cfg := config.Load()
			svc := auth.NewAuthService(repos.Users, nil, cfg.Auth, cliLogger(c))
			return promote(c, svc, c.String("email"))
		},
	}
}

func promote(c *cli.Context, svc *auth.AuthService, email string) error {
	user, err := svc.PromoteAdmin(c.Context, email)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s is now an admin; the change applies on their next request\n", user.Email)
	return nil
}
