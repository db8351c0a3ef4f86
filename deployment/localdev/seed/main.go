// Command seed loads a BOM file into a local Postgres so fmeda-engine has data to serve.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/miradorstack/mirador-fmeda/internal/bom"
	"github.com/miradorstack/mirador-fmeda/internal/config"
	"github.com/miradorstack/mirador-fmeda/internal/repo"
	"github.com/miradorstack/mirador-fmeda/internal/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var (
		bomPath    string
		dsn        string
		migrations string
	)
	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Seed a local FMEDA database from a BOM file",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := utils.NewLogger("info", false)
			store, err := bom.Load(bomPath)
			if err != nil {
				return err
			}

			db, err := repo.Open(cmd.Context(), config.DatabaseConfig{DSN: dsn, MaxOpenConns: 2, ConnectTimeout: 10 * time.Second})
			if err != nil {
				return err
			}
			defer db.Close()

			if migrations != "" {
				ddl, err := os.ReadFile(migrations)
				if err != nil {
					return fmt.Errorf("read migrations: %w", err)
				}
				if _, err := db.ExecContext(cmd.Context(), string(ddl)); err != nil {
					return fmt.Errorf("apply migrations: %w", err)
				}
				logger.Info("migrations applied", "path", migrations)
			}

			r := repo.NewPostgresRepo(db, nil, 0, logger)
			seed := repo.Seed{
				ProjectID:    store.ProjectID(),
				Name:         store.ProjectName(),
				Profiles:     store.Profiles(),
				Variants:     store.Variants(),
				Components:   store.Components(),
				FailureModes: store.FailureModes(),
			}
			if err := r.SeedProject(cmd.Context(), seed); err != nil {
				return err
			}
			logger.Info("project seeded",
				"project_id", seed.ProjectID,
				"components", len(seed.Components),
				"failure_modes", len(seed.FailureModes))
			return nil
		},
	}
	cmd.Flags().StringVar(&bomPath, "bom", "configs/bom.example.yaml", "BOM file to load")
	cmd.Flags().StringVar(&dsn, "dsn", os.Getenv("DATABASE_URL"), "Postgres connection string")
	cmd.Flags().StringVar(&migrations, "migrations", "", "SQL file applied before seeding")
	return cmd
}
