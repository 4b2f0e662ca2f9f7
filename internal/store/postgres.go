package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/career-analyzer/internal/config"
	"github.com/albapepper/career-analyzer/internal/roster"
)

// Postgres is the pgxpool-backed gateway.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates and validates a connection pool and applies the schema.
func NewPostgres(ctx context.Context, cfg *config.Config) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Tables must exist before AfterConnect prepares statements against them.
	if err := migrate(ctx, poolCfg.ConnConfig); err != nil {
		return nil, err
	}

	poolCfg.AfterConnect = registerPreparedStatements

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

func migrate(ctx context.Context, connCfg *pgx.ConnConfig) error {
	schema, err := migration("postgres.sql")
	if err != nil {
		return err
	}
	conn, err := pgx.ConnectConfig(ctx, connCfg)
	if err != nil {
		return fmt.Errorf("connect for migration: %w", err)
	}
	defer conn.Close(ctx)
	if _, err := conn.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// registerPreparedStatements registers the fixed statements the importer and
// health checks use. Filtered reads are built dynamically.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		"health_check":      "SELECT 1",
		"upsert_player":     upsertSQL(dialectPostgres),
		"insert_import_run": insertRunSQL(dialectPostgres),
		"last_import_run":   lastRunSQL,
	}
	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}

// UpsertPlayers implements Gateway.
func (p *Postgres) UpsertPlayers(ctx context.Context, run ImportRun, players []roster.Player) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	batch := &pgx.Batch{}
	for _, pl := range players {
		batch.Queue("upsert_player", playerArgs(pl)...)
	}
	batch.Queue("insert_import_run", runArgs(run)...)

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			if i < len(players) {
				return fmt.Errorf("upsert player %d: %w", players[i].PlayerID, err)
			}
			return fmt.Errorf("record import run: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Players implements Gateway.
func (p *Postgres) Players(ctx context.Context, q Query) ([]roster.Player, error) {
	query, args, err := q.selectSQL(dialectPostgres)
	if err != nil {
		return nil, err
	}
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	players := []roster.Player{}
	for rows.Next() {
		pl, err := scanPlayer(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, pl)
	}
	return players, rows.Err()
}

// Count implements Gateway.
func (p *Postgres) Count(ctx context.Context, q Query) (int, error) {
	query, args, err := q.countSQL(dialectPostgres)
	if err != nil {
		return 0, err
	}
	var n int
	if err := p.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count players: %w", err)
	}
	return n, nil
}

// Scalar implements Gateway.
func (p *Postgres) Scalar(ctx context.Context, agg Aggregate, column string, q Query) (float64, bool, error) {
	query, args, err := q.scalarSQL(dialectPostgres, agg, column)
	if err != nil {
		return 0, false, err
	}
	var v *float64
	if err := p.pool.QueryRow(ctx, query, args...).Scan(&v); err != nil {
		return 0, false, fmt.Errorf("aggregate %s(%s): %w", agg, column, err)
	}
	if v == nil {
		return 0, false, nil
	}
	return *v, true, nil
}

// LastImport implements Gateway.
func (p *Postgres) LastImport(ctx context.Context) (*ImportRun, error) {
	var (
		run ImportRun
		id  string
	)
	err := p.pool.QueryRow(ctx, "last_import_run").Scan(
		&id, &run.Source, &run.StartedAt, &run.FinishedAt,
		&run.PlayersWritten, &run.Orphaned, &run.Unnamed,
	)
	if errors.Is(err, pgx.ErrNoRows) {
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
func (p *Postgres) Ping(ctx context.Context) error {
	var n int
	return p.pool.QueryRow(ctx, "health_check").Scan(&n)
}

// Close implements Gateway.
func (p *Postgres) Close() {
	p.pool.Close()
}
