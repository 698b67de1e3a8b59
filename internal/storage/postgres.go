package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresStore keeps every collection in a single kv_items table with
// a (collection, key) primary key and a JSON value column.
type PostgresStore struct {
	db *sqlx.DB
}

// ConnectPostgres initializes the database connection and runs migrations.
func ConnectPostgres(dsn string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS kv_items (
            collection TEXT NOT NULL,
            key TEXT NOT NULL,
            value JSONB NOT NULL,
            updated_at TIMESTAMPTZ DEFAULT NOW(),
            PRIMARY KEY(collection, key)
        );`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}

var _ KV = (*PostgresStore)(nil)

func (s *PostgresStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	var value []byte
	err := s.db.GetContext(ctx, &value, `SELECT value FROM kv_items WHERE collection=$1 AND key=$2`, collection, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	return value, err
}

func (s *PostgresStore) Put(ctx context.Context, collection, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO kv_items (collection, key, value) VALUES ($1, $2, $3)
        ON CONFLICT (collection, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`, collection, key, value)
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, collection, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_items WHERE collection=$1 AND key=$2`, collection, key)
	return err
}

// Update runs fn against the current value under a row lock, so
// concurrent updates of the same key serialize.
func (s *PostgresStore) Update(ctx context.Context, collection, key string, fn UpdateFunc) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var current []byte
	err = tx.GetContext(ctx, &current, `SELECT value FROM kv_items WHERE collection=$1 AND key=$2 FOR UPDATE`, collection, key)
	if errors.Is(err, sql.ErrNoRows) {
		current = nil
		err = nil
	}
	if err != nil {
		return err
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO kv_items (collection, key, value) VALUES ($1, $2, $3)
        ON CONFLICT (collection, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`, collection, key, next); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *PostgresStore) Scan(ctx context.Context, collection string, fn ScanFunc) error {
	rows, err := s.db.QueryxContext(ctx, `SELECT key, value FROM kv_items WHERE collection=$1`, collection)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
