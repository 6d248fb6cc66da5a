package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/risk_analysis_bot/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

const (
	registryConnAttempts = 3
	registryRetryDelay   = time.Second
	registryPingTimeout  = 3 * time.Second
)

// NewPostgresClient opens the chat registry and applies its migrations.
// The registry is optional, so failures are returned rather than fatal.
func NewPostgresClient(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	for attempt := 1; attempt <= registryConnAttempts; attempt++ {
		db, err = connectRegistry(ctx, cfg)
		if err == nil {
			break
		}

		slog.Warn(
			"registry postgres is not reachable",
			slog.Int("attempt", attempt),
			slog.Int("attempts", registryConnAttempts),
			slog.String("err", err.Error()),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(registryRetryDelay):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect registry: %w", err)
	}

	if err = migrateRegistry(db, cfg.Postgres.MigrationDir); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate registry: %w", err)
	}

	slog.Info("registry postgres ready", slog.String("host", cfg.Postgres.Host), slog.String("db", cfg.Postgres.DbName))

	return db, nil
}

func dataSourceName(pg config.Postgres) string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable password=%s",
		pg.Host,
		pg.Port,
		pg.User,
		pg.DbName,
		pg.Password,
	)
}

func connectRegistry(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", dataSourceName(cfg.Postgres))
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxIdleTime(time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, registryPingTimeout)
	defer cancel()

	if err = db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func migrateRegistry(db *sqlx.DB, migrationDir string) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("postgres.WithInstance: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationDir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrate.NewWithDatabaseInstance: %w", err)
	}

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("m.Up: %w", err)
	}

	return nil
}
