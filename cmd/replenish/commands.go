package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/supplyflow/internal/app"
	"github.com/andresuchdata/supplyflow/internal/config"
	"github.com/andresuchdata/supplyflow/internal/domain"
	"github.com/andresuchdata/supplyflow/internal/repository/postgres"
	"github.com/andresuchdata/supplyflow/internal/seed"
)

type appKey struct{}

func newCLI(load func() *config.Config) *cli.App {
	openApp := func(c *cli.Context) error {
		a, err := app.New(c.Context, load())
		if err != nil {
			return err
		}
		c.Context = context.WithValue(c.Context, appKey{}, a)
		return nil
	}
	closeApp := func(c *cli.Context) error {
		if a, ok := c.Context.Value(appKey{}).(*app.App); ok && a != nil {
			return a.Close()
		}
		return nil
	}

	withApp := func(cmd *cli.Command) *cli.Command {
		cmd.Before = openApp
		cmd.After = closeApp
		return cmd
	}

	return &cli.App{
		Name:  "replenish",
		Usage: "Run replenishment checks, planning and analytics from the command line",
		Commands: []*cli.Command{
			withApp(&cli.Command{
				Name:   "check",
				Usage:  "List products at or below their reorder point and publish an alert",
				Action: runCheck,
			}),
			withApp(&cli.Command{
				Name:  "plan",
				Usage: "Create one reorder plan per supplier for every product that needs stock",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "origin",
						Usage: "Plan origin (manual or auto-generated)",
						Value: string(domain.OriginAutoGenerated),
					},
				},
				Action: runPlan,
			}),
			withApp(&cli.Command{
				Name:  "receive",
				Usage: "Mark a plan delivered and restock its products",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "plan", Usage: "Plan ID", Required: true},
					&cli.TimestampFlag{
						Name:   "delivered-at",
						Usage:  "Delivery time, used to score the supplier's punctuality",
						Layout: time.RFC3339,
					},
				},
				Action: runReceive,
			}),
			withApp(&cli.Command{
				Name:   "abc",
				Usage:  "Classify the active catalog into A, B and C buckets",
				Action: runABC,
			}),
			withApp(&cli.Command{
				Name:  "forecast",
				Usage: "Project daily demand for one product or the whole catalog",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "product", Usage: "Product ID (all active products when empty)"},
					&cli.IntFlag{Name: "days", Usage: "Forecast horizon in days", Value: 30},
					&cli.Int64Flag{Name: "seed", Usage: "Seed for reproducible noise (0 = time-seeded)"},
				},
				Action: runForecast,
			}),
			withApp(&cli.Command{
				Name:   "exports",
				Usage:  "List exported plan files",
				Action: runExports,
			}),
			{
				Name:  "seed",
				Usage: "Load suppliers.csv and products.csv into Postgres",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db-url",
						Usage:   "Database connection string (defaults to the DB_* settings)",
						EnvVars: []string{"DATABASE_URL"},
					},
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing the seed CSV files",
						Value:   "./data/seeds",
						EnvVars: []string{"SEED_DATA_DIR"},
					},
					&cli.BoolFlag{
						Name:  "init-schema",
						Usage: "Create the tables before seeding",
						Value: true,
					},
				},
				Action: func(c *cli.Context) error {
					return runSeed(c, load)
				},
			},
		},
	}
}

func appFrom(c *cli.Context) *app.App {
	return c.Context.Value(appKey{}).(*app.App)
}

func printJSON(c *cli.Context, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(data))
	return err
}

func runCheck(c *cli.Context) error {
	candidates, err := appFrom(c).Service.CheckReorderPoints(c.Context)
	if err != nil {
		return err
	}
	return printJSON(c, candidates)
}

func runPlan(c *cli.Context) error {
	plans, err := appFrom(c).Service.PlanAutoReorder(c.Context, domain.PlanOrigin(c.String("origin")))
	if err != nil {
		return err
	}
	return printJSON(c, plans)
}

func runReceive(c *cli.Context) error {
	plan, err := appFrom(c).Service.ReceivePlan(c.Context, c.String("plan"), c.Timestamp("delivered-at"))
	if err != nil {
		return err
	}
	return printJSON(c, plan)
}

func runABC(c *cli.Context) error {
	result, err := appFrom(c).Service.ClassifyABC(c.Context)
	if err != nil {
		return err
	}
	return printJSON(c, result)
}

func runForecast(c *cli.Context) error {
	svc := appFrom(c).Service

	var seed *int64
	if c.IsSet("seed") {
		v := c.Int64("seed")
		seed = &v
	}

	if product := c.String("product"); product != "" {
		series, err := svc.Forecast(c.Context, product, c.Int("days"), seed)
		if err != nil {
			return err
		}
		return printJSON(c, series)
	}

	all, err := svc.ForecastCatalog(c.Context, c.Int("days"), seed)
	if err != nil {
		return err
	}
	return printJSON(c, all)
}

func runExports(c *cli.Context) error {
	exporter := appFrom(c).Exporter
	if exporter == nil {
		return fmt.Errorf("plan export is disabled (set EXPORT_ENABLED=true)")
	}
	objects, err := exporter.List(c.Context)
	if err != nil {
		return err
	}
	return printJSON(c, objects)
}

func runSeed(c *cli.Context, load func() *config.Config) error {
	catalog, err := seed.LoadDir(c.String("data-dir"))
	if err != nil {
		return err
	}

	dbURL := c.String("db-url")
	if dbURL == "" {
		dbURL = postgres.DSN(&load().Database)
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(c.Context); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if c.Bool("init-schema") {
		if _, err := db.ExecContext(c.Context, postgres.Schema()); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	tx, err := db.BeginTx(c.Context, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Defer a rollback in case anything fails.
	defer tx.Rollback()

	if err := catalog.Insert(c.Context, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().Str("data_dir", c.String("data-dir")).Msg("Database seeding completed")
	return nil
}
