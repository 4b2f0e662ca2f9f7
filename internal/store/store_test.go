package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/career-analyzer/internal/config"
	"github.com/albapepper/career-analyzer/internal/roster"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func samplePlayers() []roster.Player {
	return []roster.Player{
		{PlayerID: 1, FirstName: "Ana", Surname: "Silva", OverallRating: 80, Potential: 88, Age: 20, PreferredPosition1: strPtr("ST"), Height: intPtr(170)},
		{PlayerID: 2, FirstName: "Bruno", Surname: "Costa", CommonName: strPtr("Bruninho"), OverallRating: 85, Potential: 86, Age: 31},
		{PlayerID: 3, FirstName: roster.UnknownName(3), OverallRating: 80, Potential: 90, Age: 18},
		{PlayerID: 4, FirstName: "Carla", Surname: "100%_Real", OverallRating: 60, Potential: 60, Age: 36, Value: intPtr(2500000)},
	}
}

func newRun(n int) ImportRun {
	now := time.Now().UTC().Truncate(time.Second)
	return ImportRun{ID: uuid.New(), Source: "save.bin", StartedAt: now, FinishedAt: now.Add(time.Second), PlayersWritten: n}
}

func newSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "data", "career.db"))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestSQLite_Gateway(t *testing.T) {
	exerciseGateway(t, newSQLite(t))
}

func TestPostgres_Gateway(t *testing.T) {
	url := os.Getenv("CAREER_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("CAREER_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	cfg := &config.Config{DatabaseURL: url, DBPoolMinConns: 1, DBPoolMaxConns: 2, DBPoolMaxLife: time.Minute}
	pg, err := NewPostgres(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pg.Close)

	_, err = pg.pool.Exec(ctx, "TRUNCATE players, import_runs")
	require.NoError(t, err)

	exerciseGateway(t, pg)
}

// exerciseGateway runs the shared behavioural checks against a backend.
func exerciseGateway(t *testing.T, g Gateway) {
	ctx := context.Background()
	require.NoError(t, g.Ping(ctx))

	last, err := g.LastImport(ctx)
	require.NoError(t, err)
	require.Nil(t, last)

	run := newRun(4)
	require.NoError(t, g.UpsertPlayers(ctx, run, samplePlayers()))

	t.Run("count", func(t *testing.T) {
		n, err := g.Count(ctx, Select())
		require.NoError(t, err)
		require.Equal(t, 4, n)

		n, err = g.Count(ctx, Select().Where("age", OpLT, 21))
		require.NoError(t, err)
		require.Equal(t, 2, n)
	})

	t.Run("order with playerid tie-break", func(t *testing.T) {
		got, err := g.Players(ctx, Select().OrderByDesc("overallrating").Limit(3))
		require.NoError(t, err)
		require.Equal(t, []int{2, 1, 3}, ids(got))
	})

	t.Run("nullable round trip", func(t *testing.T) {
		got, err := g.Players(ctx, Select().Where("playerid", OpEq, 1))
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, samplePlayers()[0], got[0])

		got, err = g.Players(ctx, Select().Where("value", OpNotNull, nil))
		require.NoError(t, err)
		require.Equal(t, []int{4}, ids(got))
	})

	t.Run("display name containment", func(t *testing.T) {
		got, err := g.Players(ctx, Select().Where(DisplayNameColumn, OpContains, "BRUNI"))
		require.NoError(t, err)
		require.Equal(t, []int{2}, ids(got))

		got, err = g.Players(ctx, Select().Where(DisplayNameColumn, OpContains, "player #3"))
		require.NoError(t, err)
		require.Equal(t, []int{3}, ids(got))

		got, err = g.Players(ctx, Select().Where(DisplayNameColumn, OpContains, "unknown"))
		require.NoError(t, err)
		require.Empty(t, got, "placeholder names never match their raw text")

		got, err = g.Players(ctx, Select().Where(DisplayNameColumn, OpContains, "100%_"))
		require.NoError(t, err)
		require.Equal(t, []int{4}, ids(got))
	})

	t.Run("scalar", func(t *testing.T) {
		avg, ok, err := g.Scalar(ctx, AggAvg, "overallrating", Select())
		require.NoError(t, err)
		require.True(t, ok)
		require.InDelta(t, 76.25, avg, 0.001)

		_, ok, err = g.Scalar(ctx, AggMax, "age", Select().Where("age", OpGT, 90))
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := g.Players(ctx, Select().Where("password", OpEq, 1))
		require.True(t, errors.Is(err, ErrUnknownColumn))
		_, _, err = g.Scalar(ctx, AggAvg, DisplayNameColumn, Select())
		require.ErrorIs(t, err, ErrUnknownColumn)
	})

	t.Run("reimport supersedes", func(t *testing.T) {
		updated := samplePlayers()[:1]
		updated[0].OverallRating = 83
		updated[0].Height = nil
		second := newRun(1)
		second.StartedAt = run.StartedAt.Add(time.Minute)
		second.FinishedAt = second.StartedAt.Add(time.Second)
		require.NoError(t, g.UpsertPlayers(ctx, second, updated))

		got, err := g.Players(ctx, Select().Where("playerid", OpEq, 1))
		require.NoError(t, err)
		require.Equal(t, 83, got[0].OverallRating)
		require.Nil(t, got[0].Height)

		n, err := g.Count(ctx, Select())
		require.NoError(t, err)
		require.Equal(t, 4, n)

		last, err := g.LastImport(ctx)
		require.NoError(t, err)
		require.NotNil(t, last)
		require.Equal(t, second.ID, last.ID)
		require.Equal(t, 1, last.PlayersWritten)
	})

	t.Run("failed import commits nothing", func(t *testing.T) {
		bad := []roster.Player{
			{PlayerID: 50, FirstName: "Ok", OverallRating: 70, Potential: 70, Age: 20},
			{PlayerID: 51, FirstName: "Broken", OverallRating: 10, Potential: 70, Age: 20},
		}
		require.Error(t, g.UpsertPlayers(ctx, newRun(2), bad))

		n, err := g.Count(ctx, Select().Where("playerid", OpGTE, 50))
		require.NoError(t, err)
		require.Zero(t, n)
	})
}

func ids(players []roster.Player) []int {
	out := make([]int, len(players))
	for i, p := range players {
		out[i] = p.PlayerID
	}
	return out
}

func TestQuery_Rendering(t *testing.T) {
	q := Select().Where("age", OpLTE, 21).Where(DisplayNameColumn, OpContains, "a_b").OrderByDesc("potential").Limit(10)

	sql, args, err := q.selectSQL(dialectPostgres)
	require.NoError(t, err)
	require.Contains(t, sql, "age <= $1")
	require.Contains(t, sql, "LIKE $2")
	require.Contains(t, sql, "ORDER BY potential DESC, playerid ASC LIMIT 10")
	require.Equal(t, []any{21, `%a\_b%`}, args)

	sql, _, err = q.countSQL(dialectSQLite)
	require.NoError(t, err)
	require.Contains(t, sql, "age <= ?")
	require.NotContains(t, sql, "ORDER BY")
}

func TestQuery_BuilderDoesNotAlias(t *testing.T) {
	base := Select().Where("age", OpGT, 20)
	a := base.Where("potential", OpGT, 80)
	b := base.Where("overallrating", OpGT, 70)
	require.Len(t, a.Filters(), 2)
	require.Len(t, b.Filters(), 2)
	require.Equal(t, "potential", a.Filters()[1].Column)
	require.Equal(t, "overallrating", b.Filters()[1].Column)
}
