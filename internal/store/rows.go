package store

import (
	"embed"
	"fmt"
	"strings"

	"github.com/albapepper/career-analyzer/internal/config"
	"github.com/albapepper/career-analyzer/internal/roster"
)

//go:embed migrations/*.sql
var migrations embed.FS

func migration(name string) (string, error) {
	b, err := migrations.ReadFile("migrations/" + name)
	if err != nil {
		return "", fmt.Errorf("read migration %s: %w", name, err)
	}
	return string(b), nil
}

// upsertSQL renders the player upsert. Every mutable column is replaced so a
// re-import fully supersedes the previous row.
func upsertSQL(d dialect) string {
	placeholders := make([]string, len(playerColumns))
	updates := make([]string, 0, len(playerColumns))
	for i, c := range playerColumns {
		placeholders[i] = d.placeholder(i + 1)
		if c != "playerid" {
			updates = append(updates, fmt.Sprintf("%s = excluded.%s", c, c))
		}
	}
	updates = append(updates, "updated_at = CURRENT_TIMESTAMP")
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (playerid) DO UPDATE SET %s",
		config.PlayersTable,
		strings.Join(playerColumns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)
}

func insertRunSQL(d dialect) string {
	ph := make([]string, 7)
	for i := range ph {
		ph[i] = d.placeholder(i + 1)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (id, source, started_at, finished_at, players_written, orphaned, unnamed) VALUES (%s)",
		config.ImportRunsTable, strings.Join(ph, ", "),
	)
}

var lastRunSQL = fmt.Sprintf(
	"SELECT CAST(id AS TEXT), source, started_at, finished_at, players_written, orphaned, unnamed FROM %s ORDER BY started_at DESC LIMIT 1",
	config.ImportRunsTable,
)

// playerArgs returns p's values in playerColumns order.
func playerArgs(p roster.Player) []any {
	return []any{
		p.PlayerID, p.FirstName, p.Surname, p.CommonName,
		p.OverallRating, p.Potential, p.Age, p.Height, p.Weight,
		p.PreferredPosition1, p.WeakFoot, p.SkillMoves, p.Value,
		p.Nationality, p.Birthdate,
	}
}

func runArgs(run ImportRun) []any {
	return []any{
		run.ID.String(), run.Source, run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.PlayersWritten, run.Orphaned, run.Unnamed,
	}
}

// scanPlayer reads one row in playerColumns order. scan is rows.Scan from
// either database/sql or pgx.
func scanPlayer(scan func(dest ...any) error) (roster.Player, error) {
	var p roster.Player
	err := scan(
		&p.PlayerID, &p.FirstName, &p.Surname, &p.CommonName,
		&p.OverallRating, &p.Potential, &p.Age, &p.Height, &p.Weight,
		&p.PreferredPosition1, &p.WeakFoot, &p.SkillMoves, &p.Value,
		&p.Nationality, &p.Birthdate,
	)
	return p, err
}
