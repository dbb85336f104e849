// Command stoke-check verifies connectivity to every store named in the
// configuration: it connects each provider, issues a round trip, and exits
// non-zero on the first failure. Useful as a deployment smoke test.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/stokehq/stoke/pkg/config"
	"github.com/stokehq/stoke/pkg/mariadb"
	"github.com/stokehq/stoke/pkg/postgres"
	"github.com/stokehq/stoke/pkg/redisdb"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (environment only when empty)")
	timeout := flag.Duration("timeout", 30*time.Second, "overall deadline for all checks")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(*configPath, *timeout, logger); err != nil {
		logger.Error("connectivity check failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("all stores reachable")
}

func run(configPath string, timeout time.Duration, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := checkRedis(ctx, cfg, logger); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if err := checkMariaDB(ctx, cfg, logger); err != nil {
		return fmt.Errorf("mariadb: %w", err)
	}
	if err := checkPostgres(ctx, cfg, logger); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	return nil
}

func checkRedis(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	p := redisdb.NewProvider(cfg.RedisCredentials(), redisdb.WithLogger(logger))
	if err := p.Connect(ctx); err != nil {
		return err
	}
	defer p.Disconnect(ctx) //nolint:errcheck

	r, err := p.Conn(ctx)
	if err != nil {
		return err
	}
	defer p.Pool().Return(r)

	if _, err := r.Do(ctx, "ping"); err != nil {
		return err
	}
	return nil
}

func checkMariaDB(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.MariaDB.Database == "" {
		logger.Info("mariadb not configured, skipping")
		return nil
	}

	p := mariadb.NewProvider(cfg.MariaDBCredentials(), mariadb.WithLogger(logger))
	if err := p.Connect(ctx); err != nil {
		return err
	}
	defer p.Disconnect(ctx) //nolint:errcheck

	conn, err := p.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	var one int
	return conn.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}

func checkPostgres(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.Postgres.Database == "" {
		logger.Info("postgres not configured, skipping")
		return nil
	}

	p := postgres.NewProvider(cfg.PostgresCredentials(), postgres.WithLogger(logger))
	if err := p.Connect(ctx); err != nil {
		return err
	}
	defer p.Disconnect(ctx) //nolint:errcheck

	conn, err := p.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	var one int
	return conn.QueryRow(ctx, "SELECT 1").Scan(&one)
}
