package main

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/busesamerica/buses-america-inventory/internal/platform/config"
	"github.com/busesamerica/buses-america-inventory/internal/platform/logger"
	"github.com/busesamerica/buses-america-inventory/migrations"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const advisoryLockKey = 48151623

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("[CONNECT] failed to open database")
	}
	defer db.Close()

	ctx := context.Background()
	if err := run(ctx, db, migrations.FS, log); err != nil {
		log.WithError(err).Error("migration failed")
		db.Close()
		os.Exit(1)
	}
	log.Info("[DONE] all migrations processed")
}

func run(ctx context.Context, db *sql.DB, files fs.FS, log *logrus.Logger) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("[CONNECT] ping: %w", err)
	}
	log.Info("[CONNECT] success")

	// Advisory locks are per session, so hold one connection for the whole run.
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("[LOCK] acquire connection: %w", err)
	}
	defer conn.Close()

	var locked bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", advisoryLockKey).Scan(&locked); err != nil {
		return fmt.Errorf("[LOCK] query advisory lock: %w", err)
	}
	if !locked {
		return errors.New("[LOCK] another migrator is currently running")
	}
	defer conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", advisoryLockKey)
	log.Info("[LOCK] success")

	if _, err := conn.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	filename   TEXT NOT NULL,
	checksum   TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	names, err := discoverMigrations(files)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := applyMigration(ctx, conn, files, name, log); err != nil {
			return err
		}
	}
	return nil
}

// discoverMigrations returns the .sql files in version order, rejecting
// duplicate versions and names without a NNN_ prefix.
func discoverMigrations(files fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, fmt.Errorf("[DISCOVER] read migrations: %w", err)
	}
	seen := make(map[string]string)
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version, err := extractVersion(entry.Name())
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("[DISCOVER] duplicate version %s in %s and %s", version, prev, entry.Name())
		}
		seen[version] = entry.Name()
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func extractVersion(filename string) (string, error) {
	parts := strings.SplitN(filename, "_", 2)
	if len(parts) < 2 || parts[0] == "" {
		return "", fmt.Errorf("[DISCOVER] invalid migration filename %s, expected NNN_description.sql", filename)
	}
	return parts[0], nil
}

func checksum(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func applyMigration(ctx context.Context, conn *sql.Conn, files fs.FS, filename string, log *logrus.Logger) error {
	version, err := extractVersion(filename)
	if err != nil {
		return err
	}
	body, err := fs.ReadFile(files, filename)
	if err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}
	sum := checksum(body)

	var existing string
	err = conn.QueryRowContext(ctx, "SELECT checksum FROM schema_migrations WHERE version = $1", version).Scan(&existing)
	switch {
	case err == nil:
		if existing != sum {
			return fmt.Errorf("checksum mismatch for %s: recorded %s, file %s", filename, existing, sum)
		}
		log.WithField("file", filename).Info("[SKIP]")
		return nil
	case errors.Is(err, sql.ErrNoRows):
	default:
		return fmt.Errorf("query schema_migrations for %s: %w", filename, err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", filename, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		return fmt.Errorf("execute %s: %w", filename, err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, filename, checksum) VALUES ($1, $2, $3)",
		version, filename, sum); err != nil {
		return fmt.Errorf("record %s: %w", filename, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", filename, err)
	}
	log.WithField("file", filename).Info("[APPLY]")
	return nil
}
