package rental

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps rental records in a PostgreSQL table of
// key/JSON-value rows.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ ExclusiveStore = (*PostgresStore)(nil)

const createRentalsTable = `
CREATE TABLE IF NOT EXISTS rentals (
	key   TEXT PRIMARY KEY,
	value JSONB NOT NULL
)`

// OpenPostgresStore connects to dsn and creates the rentals table if needed.
func OpenPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("rental: open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("rental: ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, createRentalsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("rental: create table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() { s.pool.Close() }

// Put upserts rec for propertyID.
func (s *PostgresStore) Put(ctx context.Context, propertyID uint64, rec Record) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO rentals(key, value) VALUES($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, Key(propertyID), string(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}
	return nil
}

// Get returns the record for propertyID, or Absent().
func (s *PostgresStore) Get(ctx context.Context, propertyID uint64) (Record, error) {
	var data string
	err := s.pool.QueryRow(ctx, `SELECT value::text FROM rentals WHERE key = $1`, Key(propertyID)).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return Absent(), nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrStoreRead, err)
	}
	return decode([]byte(data))
}

// List returns every record ordered by property id.
func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `SELECT key, value::text FROM rentals WHERE key LIKE 'rental\_%'`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreRead, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var key, data string
		if err := rows.Scan(&key, &data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStoreRead, err)
		}
		rec, err := decode([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", key, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreRead, err)
	}
	sortByProperty(out)
	return out, nil
}

// PutIfVacant writes rec only when no row exists or the stored rental is
// inactive or ended by now. The check and write are one statement.
func (s *PostgresStore) PutIfVacant(ctx context.Context, propertyID uint64, rec Record, now int64) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO rentals(key, value) VALUES($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
		WHERE NOT (rentals.value->>'isActive')::boolean
		   OR (rentals.value->>'endDate')::bigint <= $3
	`, Key(propertyID), string(data), now)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRentalActive
	}
	return nil
}
