// Package storage provides the usage counter persistence layer.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/oib/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage keeps usage counters and their event history in SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	now    func() time.Time
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections, and :memory: needs
	// exactly one so every query sees the same database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Path returns the database location.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Health checks that the database still answers.
func (s *SQLiteStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Increment adds one to the counter, records the event and returns the new total.
func (s *SQLiteStorage) Increment(ctx context.Context, kind model.CounterKind) (int64, error) {
	return s.Add(ctx, kind, 1)
}

// Add adds delta to the counter in one transaction together with its event row.
func (s *SQLiteStorage) Add(ctx context.Context, kind model.CounterKind, delta int64) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateKind(kind); err != nil {
		return 0, err
	}
	if err := validateDelta(delta); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO counters (kind, total, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET total = total + excluded.total, updated_at = excluded.updated_at
	`, string(kind), delta, now); err != nil {
		return 0, fmt.Errorf("failed to increment %s counter: %w", kind, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO usage_events (kind, delta, created_at) VALUES (?, ?, ?)`,
		string(kind), delta, now); err != nil {
		return 0, fmt.Errorf("failed to record %s event: %w", kind, err)
	}

	var total int64
	if err := tx.QueryRowContext(ctx,
		`SELECT total FROM counters WHERE kind = ?`, string(kind)).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to read %s counter: %w", kind, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit counter update: %w", err)
	}
	return total, nil
}

// Stats returns all counter totals.
func (s *SQLiteStorage) Stats(ctx context.Context) (*model.Stats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT kind, total, updated_at FROM counters`)
	if err != nil {
		return nil, fmt.Errorf("failed to query counters: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stats := &model.Stats{}
	for rows.Next() {
		var (
			kind      string
			total     int64
			updatedAt sql.NullTime
		)
		if err := rows.Scan(&kind, &total, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan counter: %w", err)
		}
		applyTotal(stats, model.CounterKind(kind), total)
		if updatedAt.Valid && updatedAt.Time.After(stats.UpdatedAt) {
			stats.UpdatedAt = updatedAt.Time
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate counters: %w", err)
	}
	return stats, nil
}

// StatsSince counts the events recorded at or after since.
func (s *SQLiteStorage) StatsSince(ctx context.Context, since time.Time) (*model.Stats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, SUM(delta), MAX(created_at) FROM usage_events
		WHERE created_at >= ?
		GROUP BY kind
	`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query usage events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stats := &model.Stats{}
	for rows.Next() {
		var (
			kind   string
			total  int64
			latest sql.NullString
		)
		if err := rows.Scan(&kind, &total, &latest); err != nil {
			return nil, fmt.Errorf("failed to scan usage events: %w", err)
		}
		applyTotal(stats, model.CounterKind(kind), total)
		if latest.Valid {
			if t, err := parseSQLiteTime(latest.String); err == nil && t.After(stats.UpdatedAt) {
				stats.UpdatedAt = t
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate usage events: %w", err)
	}
	return stats, nil
}

// Reset zeroes every counter and clears the event history.
func (s *SQLiteStorage) Reset(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE counters SET total = 0, updated_at = ?`, s.now()); err != nil {
		return fmt.Errorf("failed to reset counters: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM usage_events`); err != nil {
		return fmt.Errorf("failed to clear usage events: %w", err)
	}

	return tx.Commit()
}

func applyTotal(stats *model.Stats, kind model.CounterKind, total int64) {
	switch kind {
	case model.CounterGenerated:
		stats.Generated = total
	case model.CounterValidated:
		stats.Validated = total
	}
}

// sqliteTimeFormats are the layouts go-sqlite3 writes time.Time values in.
var sqliteTimeFormats = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

var errUnparsableTime = errors.New("unparsable sqlite timestamp")

// parseSQLiteTime is needed for aggregate columns, which lose the DATETIME
// declared type and come back as text.
func parseSQLiteTime(s string) (time.Time, error) {
	for _, layout := range sqliteTimeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", errUnparsableTime, s)
}
