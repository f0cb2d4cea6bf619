package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Olbrasoft/cr/modules/territory/domain/territory"
	"github.com/Olbrasoft/cr/modules/territory/infrastructure/persistence"
	"github.com/Olbrasoft/cr/pkg/configuration"
)

var errNoDatabaseURL = errors.New("DATABASE_URL is required")

func loadConfig() (*configuration.Configuration, error) {
	cfg, err := configuration.Load(envFiles)
	if err != nil {
		return nil, withCode(exitUsage, err)
	}
	return cfg, nil
}

func requireDatabaseURL(cfg *configuration.Configuration) error {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return &territory.ImportError{Kind: territory.KindConfiguration, Err: errNoDatabaseURL}
	}
	return nil
}

func openBackend(ctx context.Context, cfg *configuration.Configuration) (*persistence.Backend, error) {
	if err := requireDatabaseURL(cfg); err != nil {
		return nil, err
	}
	b, err := persistence.Open(ctx, cfg.DatabaseURL, cfg.ConnectTimeout)
	if err != nil {
		if errors.Is(err, persistence.ErrUnsupportedURL) {
			return nil, &territory.ImportError{Kind: territory.KindConfiguration, Err: err}
		}
		return nil, &territory.ImportError{Kind: territory.KindPersistence, Err: fmt.Errorf("connect: %w", err)}
	}
	return b, nil
}

func migrateBackend(ctx context.Context, b *persistence.Backend) ([]int64, error) {
	applied, err := b.Migrate(ctx)
	if err != nil {
		return nil, &territory.ImportError{Kind: territory.KindPersistence, Err: fmt.Errorf("migrate: %w", err)}
	}
	return applied, nil
}
