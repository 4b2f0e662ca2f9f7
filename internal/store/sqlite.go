package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/albapepper/career-analyzer/internal/roster"
)

// MemoryPath opens a private in-memory SQLite database.
const MemoryPath = ":memory:"

// SQLite is the single-file local backend.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path and applies the
// schema.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path != MemoryPath {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: SQLite serializes writers, and :memory: is per-connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	schema, err := migration("sqlite.sql")
	if err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// UpsertPlayers implements Gateway.
func (s *SQLite) UpsertPlayers(ctx context.Context, run ImportRun, players []roster.Player) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertSQL(dialectSQLite))
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range players {
		if _, err = stmt.ExecContext(ctx, playerArgs(p)...); err != nil {
			return fmt.Errorf("upsert player %d: %w", p.PlayerID, err)
		}
	}

	if _, err = tx.ExecContext(ctx, insertRunSQL(dialectSQLite), runArgs(run)...); err != nil {
		return fmt.Errorf("record import run: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Players implements Gateway.
func (s *SQLite) Players(ctx context.Context, q Query) ([]roster.Player, error) {
	query, args, err := q.selectSQL(dialectSQLite)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	players := []roster.Player{}
	for rows.Next() {
		p, err := scanPlayer(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// Count implements Gateway.
func (s *SQLite) Count(ctx context.Context, q Query) (int, error) {
	query, args, err := q.countSQL(dialectSQLite)
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count players: %w", err)
	}
	return n, nil
}

// Scalar implements Gateway.
func (s *SQLite) Scalar(ctx context.Context, agg Aggregate, column string, q Query) (float64, bool, error) {
	query, args, err := q.scalarSQL(dialectSQLite, agg, column)
	if err != nil {
		return 0, false, err
	}
	var v sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&v); err != nil {
		return 0, false, fmt.Errorf("aggregate %s(%s): %w", agg, column, err)
	}
	return v.Float64, v.Valid, nil
}

// LastImport implements Gateway.
func (s *SQLite) LastImport(ctx context.Context) (*ImportRun, error) {
	var (
		run ImportRun
		id  string
	)
	err := s.db.QueryRowContext(ctx, lastRunSQL).Scan(
		&id, &run.Source, &run.StartedAt, &run.FinishedAt,
		&run.PlayersWritten, &run.Orphaned, &run.Unnamed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last import: %w", err)
	}
	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse import id: %w", err)
	}
	return &run, nil
}

// Ping implements Gateway.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements Gateway.
func (s *SQLite) Close() {
	s.db.Close()
}
