// Package importer orchestrates one save import: parse, resolve names,
// normalize and persist in a single transaction.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/albapepper/career-analyzer/internal/config"
	"github.com/albapepper/career-analyzer/internal/names"
	"github.com/albapepper/career-analyzer/internal/parser"
	"github.com/albapepper/career-analyzer/internal/roster"
	"github.com/albapepper/career-analyzer/internal/store"
)

// Result tracks counts and non-fatal problems from an import.
type Result struct {
	RunID           uuid.UUID
	PlayersUpserted int
	IdentityRows    int
	AttributeRows   int
	WithAttributes  int
	Orphaned        int
	Unnamed         int
	GenericNames    int
	EditedNames     int
	NoIdentityData  bool
	Errors          []string
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the import.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"players=%d identity_rows=%d attribute_rows=%d orphaned=%d unnamed=%d generic_names=%d edited_names=%d errors=%d",
		r.PlayersUpserted, r.IdentityRows, r.AttributeRows,
		r.Orphaned, r.Unnamed, r.GenericNames, r.EditedNames,
		len(r.Errors),
	)
}

// Importer wires a parser to the persistence gateway.
type Importer struct {
	parser  parser.Parser
	gateway store.Gateway
	logger  *slog.Logger
	now     func() time.Time
}

// New creates an Importer.
func New(p parser.Parser, gw store.Gateway, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{parser: p, gateway: gw, logger: logger, now: time.Now}
}

// Import runs the full pipeline for savePath. A returned error means nothing
// was written. An empty identity table is reported through
// Result.NoIdentityData and also writes nothing.
func (im *Importer) Import(ctx context.Context, savePath string) (Result, error) {
	var result Result
	started := im.now()

	im.logger.Info("Phase 1/3: Parsing save file...", "save", savePath)
	dump, err := im.parser.Parse(ctx, savePath)
	if err != nil {
		return result, fmt.Errorf("parse save: %w", err)
	}

	im.logger.Info("Phase 2/3: Resolving names and merging attributes...")
	resolver := names.Build(dump, im.logger)
	result.GenericNames, result.EditedNames = resolver.Sizes()

	norm := roster.Normalize(dump.Rows(config.IdentityTable), dump.Rows(config.AttributesTable), resolver)
	result.IdentityRows = norm.IdentityRows
	result.AttributeRows = norm.AttributeRows
	result.WithAttributes = norm.WithAttributes
	result.Orphaned = norm.Orphaned
	result.Unnamed = norm.Unnamed
	if norm.SkippedNoID > 0 {
		result.AddErrorf("skipped %d identity rows without playerid", norm.SkippedNoID)
	}
	im.logger.Info("Normalized players", "summary", norm.Summary())

	if norm.NoIdentityData {
		result.NoIdentityData = true
		im.logger.Warn("No player identity data found in save", "table", config.IdentityTable)
		return result, nil
	}

	im.logger.Info("Phase 3/3: Writing players...", "count", len(norm.Players))
	run := store.ImportRun{
		ID:             uuid.New(),
		Source:         sourceLabel(savePath),
		StartedAt:      started,
		FinishedAt:     im.now(),
		PlayersWritten: len(norm.Players),
		Orphaned:       norm.Orphaned,
		Unnamed:        norm.Unnamed,
	}
	if err := im.gateway.UpsertPlayers(ctx, run, norm.Players); err != nil {
		return result, fmt.Errorf("write players: %w", err)
	}
	result.RunID = run.ID
	result.PlayersUpserted = len(norm.Players)

	im.logger.Info("Import finished", "run_id", run.ID, "summary", result.Summary())
	return result, nil
}

func sourceLabel(savePath string) string {
	if savePath == "" {
		return "default"
	}
	return savePath
}
