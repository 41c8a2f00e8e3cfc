package paystatus

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chitfund-service/internal/domain"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to connString, checks the connection and creates the
// schema.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Load(ctx context.Context) (Snapshot, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, paid_on FROM payment_status`)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment status: %w", err)
	}
	defer rows.Close()

	snap := Snapshot{}
	for rows.Next() {
		var id string
		var paidOn *string
		if err := rows.Scan(&id, &paidOn); err != nil {
			return nil, fmt.Errorf("failed to scan payment status: %w", err)
		}
		e := Entry{}
		if paidOn != nil {
			e.PaidOn = *paidOn
		}
		snap[id] = e
	}
	return snap, rows.Err()
}

func (s *PostgresStore) Toggle(ctx context.Context, id string, now time.Time) (domain.ToggleResult, error) {
	if id == "" {
		return domain.ToggleResult{}, ErrEmptyID
	}
	var res domain.ToggleResult
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM payment_status WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete payment status: %w", err)
		}
		if tag.RowsAffected() > 0 {
			res = toggledOff()
			return nil
		}
		var stamp string
		res, stamp = toggledOn(now)
		if _, err := tx.Exec(ctx,
			`INSERT INTO payment_status (id, paid_on) VALUES ($1, $2)`, id, stamp,
		); err != nil {
			return fmt.Errorf("failed to insert payment status: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.ToggleResult{}, err
	}
	return res, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
