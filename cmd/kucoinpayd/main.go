// Command kucoinpayd runs the merchant HTTP API and the KuCoin Pay webhook
// endpoint.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	kucoinpay "github.com/goliatone/go-kucoinpay"
	"github.com/goliatone/go-kucoinpay/core"
	kucoinmigrations "github.com/goliatone/go-kucoinpay/migrations"
	glog "github.com/goliatone/go-logger/glog"
	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger := newLogger(*debug)
	if err := run(*configPath, logger); err != nil {
		logger.Error("kucoinpayd stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(debug bool) core.Logger {
	level := glog.Info
	if debug {
		level = glog.Debug
	}
	return glog.NewLogger(
		glog.WithName("kucoinpayd"),
		glog.WithLevel(level),
		glog.WithLoggerTypeJSON(),
		glog.WithWriter(os.Stderr),
	)
}

func run(configPath string, logger core.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := kucoinpay.LoadConfig(ctx, configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	opts := []kucoinpay.AppOption{kucoinpay.WithAppLogger(logger)}
	if strings.TrimSpace(cfg.Persistence.DSN) != "" {
		client, sqlDB, err := openPersistence(ctx, cfg.Persistence)
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		opts = append(opts, kucoinpay.WithPersistence(client))
	} else {
		logger.Warn("persistence disabled, webhook deduplication is in memory only")
	}

	app, err := kucoinpay.Setup(cfg, opts...)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           app.HTTP,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Provider.Timeout() + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openPersistence(ctx context.Context, cfg core.PersistenceConfig) (*persistence.Client, *sql.DB, error) {
	driver, dialect, migrationDialect, err := resolveDialect(cfg.Driver)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite3" {
		sqlDB.SetMaxOpenConns(1)
	}

	client, err := persistence.New(cfg, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("persistence client: %w", err)
	}
	if err := kucoinmigrations.Register(ctx, func(_ context.Context, _ string, fsys fs.FS) error {
		client.RegisterSQLMigrations(fsys)
		return nil
	}, migrationDialect); err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}
	if err := client.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return client, sqlDB, nil
}

func resolveDialect(driver string) (string, schema.Dialect, string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres":
		return "postgres", pgdialect.New(), kucoinmigrations.DialectPostgres, nil
	case "sqlite3", "":
		return "sqlite3", sqlitedialect.New(), kucoinmigrations.DialectSQLite, nil
	default:
		return "", nil, "", fmt.Errorf("unsupported persistence driver %q", driver)
	}
}
