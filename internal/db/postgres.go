package db

import (
	"context"
	"fmt"
	"time"

	"eventdesk/pkg/types"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	applicationName = "eventdesk"
	draftSchema     = "eventdesk"
	pingTimeout     = 5 * time.Second
)

// Connect opens the draft pool and pings it once before handing it out.
func Connect(ctx context.Context, config *types.Config) (*pgxpool.Pool, error) {
	cfg, err := poolConfig(config)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// poolConfig parses DATABASE_URL. Runtime params already present in the URL
// win over the defaults set here.
func poolConfig(config *types.Config) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	params := cfg.ConnConfig.RuntimeParams
	if _, ok := params["search_path"]; !ok {
		params["search_path"] = draftSchema
	}
	if _, ok := params["application_name"]; !ok {
		params["application_name"] = applicationName
	}

	// drafts are small and written once per wizard step
	if config.DatabaseMaxConns > 0 {
		cfg.MaxConns = config.DatabaseMaxConns
	}
	cfg.MaxConnIdleTime = 15 * time.Minute
	cfg.MaxConnLifetime = 45 * time.Minute

	return cfg, nil
}
