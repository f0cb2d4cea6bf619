package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/Olbrasoft/cr/migrations"
	"github.com/Olbrasoft/cr/pkg/logging"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations to DATABASE_URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

type migrateSummary struct {
	Status  string             `json:"status"`
	Backend migrations.Dialect `json:"backend"`
	Applied []int64            `json:"applied"`
	Version int64              `json:"version"`
}

func runMigrate(ctx context.Context, stdout, stderr io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, stderr)

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	applied, err := migrateBackend(ctx, b)
	if err != nil {
		return err
	}
	version, err := migrations.Version(ctx, b.DB, b.Dialect)
	if err != nil {
		return withCode(exitDB, err)
	}
	if applied == nil {
		applied = []int64{}
	}
	logger.WithField("applied", len(applied)).WithField("version", version).Info("migrations up to date")

	return writeJSONLine(stdout, migrateSummary{
		Status:  "ok",
		Backend: b.Dialect,
		Applied: applied,
		Version: version,
	})
}
