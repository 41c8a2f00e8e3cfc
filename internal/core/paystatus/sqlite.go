package paystatus

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"chitfund-service/internal/domain"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at dbPath, creating parent directories and the
// schema as needed.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; toggles are read-then-write.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, paid_on FROM payment_status`)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment status: %w", err)
	}
	defer rows.Close()

	snap := Snapshot{}
	for rows.Next() {
		var id string
		var paidOn sql.NullString
		if err := rows.Scan(&id, &paidOn); err != nil {
			return nil, fmt.Errorf("failed to scan payment status: %w", err)
		}
		snap[id] = Entry{PaidOn: paidOn.String}
	}
	return snap, rows.Err()
}

func (s *SQLiteStore) Toggle(ctx context.Context, id string, now time.Time) (domain.ToggleResult, error) {
	if id == "" {
		return domain.ToggleResult{}, ErrEmptyID
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.ToggleResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := s.toggle(ctx, tx, id, now)
	if err != nil {
		return domain.ToggleResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.ToggleResult{}, fmt.Errorf("failed to commit toggle: %w", err)
	}
	return res, nil
}

func (s *SQLiteStore) toggle(ctx context.Context, tx *sql.Tx, id string, now time.Time) (domain.ToggleResult, error) {
	result, err := tx.ExecContext(ctx, `DELETE FROM payment_status WHERE id = ?`, id)
	if err != nil {
		return domain.ToggleResult{}, fmt.Errorf("failed to delete payment status: %w", err)
	}
	if n, _ := result.RowsAffected(); n > 0 {
		return toggledOff(), nil
	}

	res, stamp := toggledOn(now)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO payment_status (id, paid_on) VALUES (?, ?)`, id, stamp,
	); err != nil {
		return domain.ToggleResult{}, fmt.Errorf("failed to insert payment status: %w", err)
	}
	return res, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
