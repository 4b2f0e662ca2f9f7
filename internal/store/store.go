// Package store is the persistence gateway for canonical players.
//
// Two backends implement Gateway: SQLite (local single-file database, the
// default) and Postgres via pgxpool. Both render reads through the same query
// builder so handlers never see dialect differences.
package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/albapepper/career-analyzer/internal/config"
	"github.com/albapepper/career-analyzer/internal/roster"
)

// ErrUnknownColumn is returned when a query references a column outside the
// players schema.
var ErrUnknownColumn = errors.New("unknown column")

// ImportRun is the audit record written in the same transaction as the
// players of one import.
type ImportRun struct {
	ID             uuid.UUID `json:"id"`
	Source         string    `json:"source"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	PlayersWritten int       `json:"players_written"`
	Orphaned       int       `json:"orphaned"`
	Unnamed        int       `json:"unnamed"`
}

// Gateway is the persistence boundary consumed by the importer and the query
// engine.
type Gateway interface {
	// UpsertPlayers writes every player keyed by playerid, fully replacing
	// the mutable fields of existing rows, and records run. All writes happen
	// in one transaction: either everything is committed or nothing is.
	UpsertPlayers(ctx context.Context, run ImportRun, players []roster.Player) error

	// Players returns the players matching q in q's order. Ties are broken by
	// playerid ascending.
	Players(ctx context.Context, q Query) ([]roster.Player, error)

	// Count returns the number of players matching q's filters.
	Count(ctx context.Context, q Query) (int, error)

	// Scalar computes an aggregate over a column for players matching q's
	// filters. ok is false when no row contributed.
	Scalar(ctx context.Context, agg Aggregate, column string, q Query) (value float64, ok bool, err error)

	// LastImport returns the most recent import run, or nil when none exists.
	LastImport(ctx context.Context) (*ImportRun, error)

	Ping(ctx context.Context) error
	Close()
}

// Open connects to the backend selected by cfg.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.UsesPostgres() {
		logger.Info("Connecting to Postgres", "max_conns", cfg.DBPoolMaxConns)
		return NewPostgres(ctx, cfg)
	}
	logger.Info("Opening SQLite database", "path", cfg.SQLitePath)
	return NewSQLite(ctx, cfg.SQLitePath)
}
