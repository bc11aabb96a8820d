// Package sqlite implements db.Store on an embedded SQLite database.
// Hashes and sets live in two tables keyed like their Redis counterparts,
// so repositories work unchanged against either backend.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/kailas-cloud/newsrec/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS hashes (
	key   TEXT NOT NULL,
	field TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (key, field)
);

CREATE TABLE IF NOT EXISTS sets (
	key    TEXT NOT NULL,
	member TEXT NOT NULL,
	PRIMARY KEY (key, member)
);
`

type kind int

const (
	kindNone kind = iota
	kindHash
	kindSet
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements db.Store via database/sql and modernc.org/sqlite.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at path and applies the schema.
// Use MemoryPath for a throwaway store.
func NewStore(path string) (*Store, error) {
	dsn := MemoryPath
	if path != MemoryPath {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Single connection: SQLite serializes writers, and :memory: is per-connection.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	return &Store{db: conn}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady pings once within timeout. A local file needs no polling.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.Ping(ctx); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	return nil
}

// HSet sets hash fields, keeping fields not mentioned.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		return hset(ctx, tx, key, fields)
	})
	if err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HSetMulti stores multiple hashes in one transaction.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, item := range items {
			if err := hset(ctx, tx, item.Key, item.Fields); err != nil {
				return fmt.Errorf("key %s: %w", item.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HGetAll returns all fields of a hash. A missing key is an empty map.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m, err := hgetall(ctx, s.db, key)
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return m, nil
}

// HGetAllMulti fetches several hashes, in key order.
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	out := make([]map[string]string, len(keys))
	for i, key := range keys {
		m, err := hgetall(ctx, s.db, key)
		if err != nil {
			return nil, &db.Error{Op: db.OpHGetAll, Err: fmt.Errorf("key %s: %w", key, err)}
		}
		out[i] = m
	}
	return out, nil
}

// HIncrBy adds delta to an integer hash field, creating it at zero, and returns the new value.
func (s *Store) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	var n int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := expectKind(ctx, tx, key, kindHash); err != nil {
			return err
		}
		var raw string
		err := tx.QueryRowContext(ctx,
			`SELECT value FROM hashes WHERE key = ? AND field = ?`, key, field,
		).Scan(&raw)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return err
		default:
			if n, err = strconv.ParseInt(raw, 10, 64); err != nil {
				return fmt.Errorf("hash value is not an integer: %s %s", key, field)
			}
		}
		n += delta
		return hset(ctx, tx, key, map[string]string{field: strconv.FormatInt(n, 10)})
	})
	if err != nil {
		return 0, &db.Error{Op: db.OpHIncrBy, Err: err}
	}
	return n, nil
}

// Del deletes a key of any kind.
func (s *Store) Del(ctx context.Context, key string) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM hashes WHERE key = ?`, key); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM sets WHERE key = ?`, key)
		return err
	})
	if err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// Exists checks if a key exists.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	k, err := kindOf(ctx, s.db, key)
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return k != kindNone, nil
}

// Scan returns keys matching a glob pattern, sorted.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM hashes WHERE key GLOB ?1
		 UNION
		 SELECT key FROM sets WHERE key GLOB ?1`,
		pattern,
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpScan, Err: err}
	}
	keys, err := collectStrings(rows)
	if err != nil {
		return nil, &db.Error{Op: db.OpScan, Err: err}
	}
	sort.Strings(keys)
	return keys, nil
}

// SAdd adds members to a set.
func (s *Store) SAdd(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := expectKind(ctx, tx, key, kindSet); err != nil {
			return err
		}
		for _, m := range members {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO sets (key, member) VALUES (?, ?)`, key, m,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &db.Error{Op: db.OpSAdd, Err: err}
	}
	return nil
}

// SRem removes members from a set.
func (s *Store) SRem(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := expectKind(ctx, tx, key, kindSet); err != nil {
			return err
		}
		for _, m := range members {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM sets WHERE key = ? AND member = ?`, key, m,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &db.Error{Op: db.OpSRem, Err: err}
	}
	return nil
}

// SMembers returns all members of a set, sorted. A missing key is an empty set.
func (s *Store) SMembers(ctx context.Context, key string) ([]string, error) {
	if err := expectKind(ctx, s.db, key, kindSet); err != nil {
		return nil, &db.Error{Op: db.OpSMembers, Err: err}
	}
	rows, err := s.db.QueryContext(ctx, `SELECT member FROM sets WHERE key = ? ORDER BY member`, key)
	if err != nil {
		return nil, &db.Error{Op: db.OpSMembers, Err: err}
	}
	members, err := collectStrings(rows)
	if err != nil {
		return nil, &db.Error{Op: db.OpSMembers, Err: err}
	}
	return members, nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func hset(ctx context.Context, q querier, key string, fields map[string]string) error {
	if err := expectKind(ctx, q, key, kindHash); err != nil {
		return err
	}
	for f, v := range fields {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO hashes (key, field, value) VALUES (?, ?, ?)
			 ON CONFLICT (key, field) DO UPDATE SET value = excluded.value`,
			key, f, v,
		); err != nil {
			return err
		}
	}
	return nil
}

func hgetall(ctx context.Context, q querier, key string) (map[string]string, error) {
	if err := expectKind(ctx, q, key, kindHash); err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, `SELECT field, value FROM hashes WHERE key = ?`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var f, v string
		if err := rows.Scan(&f, &v); err != nil {
			return nil, err
		}
		m[f] = v
	}
	return m, rows.Err()
}

// kindOf reports which table holds key.
func kindOf(ctx context.Context, q querier, key string) (kind, error) {
	var k kind
	err := q.QueryRowContext(ctx,
		`SELECT CASE
			WHEN EXISTS (SELECT 1 FROM hashes WHERE key = ?1) THEN 1
			WHEN EXISTS (SELECT 1 FROM sets WHERE key = ?1) THEN 2
			ELSE 0
		 END`,
		key,
	).Scan(&k)
	if err != nil {
		return kindNone, err
	}
	return k, nil
}

// expectKind fails with db.ErrWrongType if key exists with another kind.
func expectKind(ctx context.Context, q querier, key string, want kind) error {
	got, err := kindOf(ctx, q, key)
	if err != nil {
		return err
	}
	if got != kindNone && got != want {
		return fmt.Errorf("%w: %s", db.ErrWrongType, key)
	}
	return nil
}

func collectStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
