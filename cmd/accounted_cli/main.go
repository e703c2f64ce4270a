package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/accounted-hq/accounted-app/internal/core/services"
	"github.com/accounted-hq/accounted-app/internal/platform/config"
	"github.com/accounted-hq/accounted-app/internal/repositories/database/pgsql"
	"github.com/accounted-hq/accounted-app/pkg/database"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	rootCmd := &cobra.Command{
		Use:   "accounted_cli",
		Short: "Operator tooling for the accounted ledger",
	}

	rootCmd.AddCommand(verifyChainCmd(logger))
	rootCmd.AddCommand(migrateCmd(logger))
	rootCmd.AddCommand(sweepIdempotencyCmd(logger))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func verifyChainCmd(logger *slog.Logger) *cobra.Command {
	var orgID string

	cmd := &cobra.Command{
		Use:   "verify-chain",
		Short: "Walk an organization's hash chain from genesis and verify every link",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			pool, err := database.NewPgxPool(cmd.Context(), cfg.DatabaseURL, true)
			if err != nil {
				return err
			}
			defer pool.Close()

			repos := pgsql.NewRepositoryProvider(pool)
			container := services.NewServiceContainer(repos, cfg.ChainVerifyBatchSize)

			result, err := container.Hash.VerifyOrganizationChain(cmd.Context(), orgID)
			if err != nil {
				return err
			}

			fmt.Printf("organization: %s\n", orgID)
			fmt.Printf("journals:     %d\n", result.TotalJournals)
			fmt.Printf("valid:        %t\n", result.IsValid)
			if len(result.InvalidJournalIDs) > 0 {
				fmt.Printf("invalid:      %v\n", result.InvalidJournalIDs)
			}
			if result.BrokenChainAt != nil {
				fmt.Printf("broken at:    %s\n", *result.BrokenChainAt)
			}

			if !result.IsValid {
				return fmt.Errorf("hash chain verification failed for organization %s", orgID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&orgID, "org", "", "organization id to verify")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}

func migrateCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply all pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer migrationDB.Close()

			driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
			if err != nil {
				return err
			}

			m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
			if err != nil {
				return err
			}

			err = m.Up()
			if err != nil && err != migrate.ErrNoChange {
				return err
			}
			logger.Info("Migrations applied")
			return nil
		},
	}
}

func sweepIdempotencyCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-idempotency",
		Short: "Delete expired idempotency key reservations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			pool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, true)
			if err != nil {
				return err
			}
			defer pool.Close()

			repos := pgsql.NewRepositoryProvider(pool)
			removed, err := repos.IdempotencyRepo.DeleteExpired(cmd.Context(), time.Now().UTC())
			if err != nil {
				return err
			}

			logger.Info("Swept expired idempotency keys", slog.Int64("removed", removed))
			return nil
		},
	}
}
