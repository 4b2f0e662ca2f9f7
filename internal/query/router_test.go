package query

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/career-analyzer/internal/llm"
	"github.com/albapepper/career-analyzer/internal/roster"
	"github.com/albapepper/career-analyzer/internal/store"
)

// recordingBackend answers every prompt with a fixed reply and remembers
// what it was asked.
type recordingBackend struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (b *recordingBackend) Generate(_ context.Context, system, prompt string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prompts = append(b.prompts, prompt)
	return b.reply, b.err
}

func (b *recordingBackend) Name() string { return "recording" }

func (b *recordingBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.prompts)
}

func (b *recordingBackend) lastPrompt() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.prompts) == 0 {
		return ""
	}
	return b.prompts[len(b.prompts)-1]
}

func seededStore(t *testing.T, players []roster.Player) *store.SQLite {
	t.Helper()
	gw, err := store.NewSQLite(context.Background(), filepath.Join(t.TempDir(), "career.db"))
	require.NoError(t, err)
	t.Cleanup(gw.Close)
	if len(players) > 0 {
		now := time.Now()
		run := store.ImportRun{ID: uuid.New(), Source: "test", StartedAt: now, FinishedAt: now, PlayersWritten: len(players)}
		require.NoError(t, gw.UpsertPlayers(context.Background(), run, players))
	}
	return gw
}

func pos(s string) *string { return &s }

// veterans returns seven players aged 30 or more.
func veterans() []roster.Player {
	return []roster.Player{
		{PlayerID: 1, FirstName: "Ana", Surname: "Silva", OverallRating: 84, Potential: 85, Age: 30, PreferredPosition1: pos("ST")},
		{PlayerID: 2, FirstName: "Bruno", Surname: "Costa", OverallRating: 88, Potential: 88, Age: 33, PreferredPosition1: pos("CB")},
		{PlayerID: 3, FirstName: "Caio", Surname: "Lima", OverallRating: 75, Potential: 75, Age: 35},
		{PlayerID: 4, FirstName: "Davi", Surname: "Rocha", OverallRating: 70, Potential: 70, Age: 37, PreferredPosition1: pos("GK")},
		{PlayerID: 5, FirstName: roster.UnknownName(5), OverallRating: 88, Potential: 89, Age: 31},
		{PlayerID: 6, FirstName: "Eva", Surname: "Neves", OverallRating: 66, Potential: 66, Age: 32},
		{PlayerID: 7, FirstName: "Fábio", Surname: "Reis", OverallRating: 79, Potential: 80, Age: 34},
	}
}

func newRouter(gw store.Gateway, backend llm.Backend) *Router {
	client := llm.NewClient(backend, nil, llm.WithTimeout(time.Second), llm.WithRetryDelay(time.Millisecond))
	return NewRouter(gw, client, 4000, nil)
}

func TestRoute_ScenarioC_Count(t *testing.T) {
	backend := &recordingBackend{reply: "unused"}
	res := newRouter(seededStore(t, veterans()), backend).Route(context.Background(), "quantos jogadores tenho?")

	require.Equal(t, SourceSQL, res.Source)
	require.True(t, res.Success)
	require.Equal(t, CategoryCount, res.Category)
	require.Contains(t, res.Answer, "7")
	require.Equal(t, "Você tem **7 jogadores** no seu elenco.", res.Answer)
	require.Zero(t, res.CostUnits)
	require.Zero(t, backend.calls())
}

func TestRoute_ScenarioD_NoYoungPlayersStaysSQL(t *testing.T) {
	backend := &recordingBackend{reply: "unused"}
	res := newRouter(seededStore(t, veterans()), backend).Route(context.Background(), "jogadores jovens")

	require.Equal(t, SourceSQL, res.Source)
	require.True(t, res.Success)
	require.Contains(t, res.Answer, "Nenhum jogador jovem encontrado.")
	require.Zero(t, backend.calls())
}

func TestRoute_PlayerInfoMissFallsBackToGenerative(t *testing.T) {
	backend := &recordingBackend{reply: "Não tenho esses dados no momento"}
	res := newRouter(seededStore(t, veterans()), backend).Route(context.Background(), "informações sobre zzzz")

	require.Equal(t, SourceGenerative, res.Source)
	require.Equal(t, CategoryComplex, res.Category)
	require.True(t, res.Success)
	require.Equal(t, "Não tenho esses dados no momento", res.Answer)
	require.Positive(t, res.CostUnits)
	require.Equal(t, 1, backend.calls())
	require.Contains(t, backend.lastPrompt(), "Career save data:")
}

func TestRoute_PlayerInfoHit(t *testing.T) {
	backend := &recordingBackend{}
	res := newRouter(seededStore(t, veterans()), backend).Route(context.Background(), "dados do SILVA")

	require.Equal(t, SourceSQL, res.Source)
	require.Equal(t, CategoryPlayerInfo, res.Category)
	require.True(t, strings.HasPrefix(res.Answer, "**Ana Silva** (ID 1) - ST, 30 anos, OVR 84 → POT 85"))
}

func TestRoute_SQLErrorFallsBackToGenerative(t *testing.T) {
	backend := &recordingBackend{reply: "ok"}
	gw := failingCount{Gateway: seededStore(t, veterans())}
	res := newRouter(gw, backend).Route(context.Background(), "quantos jogadores tenho?")

	require.Equal(t, SourceGenerative, res.Source)
	require.Equal(t, CategoryComplex, res.Category)
	require.Equal(t, 1, backend.calls())
}

func TestRoute_BackendFailureIsErrorEnvelope(t *testing.T) {
	backend := &recordingBackend{err: errors.New("HTTP 503")}
	res := newRouter(seededStore(t, veterans()), backend).Route(context.Background(), "quem devo contratar?")

	require.Equal(t, SourceError, res.Source)
	require.False(t, res.Success)
	require.Equal(t, CategoryRecommendation, res.Category)
	require.Contains(t, res.Answer, "HTTP 503")
	require.Zero(t, res.CostUnits)
}

func TestRoute_MissingCredentialsKeepsSQLPath(t *testing.T) {
	backend := llm.Unavailable{Err: fmt.Errorf("%w: ANTHROPIC_API_KEY not set", llm.ErrMissingCredentials)}
	r := newRouter(seededStore(t, veterans()), backend)

	res := r.Route(context.Background(), "jogadores mais velhos")
	require.Equal(t, SourceSQL, res.Source)

	res = r.Route(context.Background(), "como está meu time?")
	require.Equal(t, SourceError, res.Source)
	require.Contains(t, res.Answer, "ANTHROPIC_API_KEY")
}

func TestRoute_EmptyQuestion(t *testing.T) {
	backend := &recordingBackend{}
	res := newRouter(seededStore(t, nil), backend).Route(context.Background(), "  ")
	require.Equal(t, SourceError, res.Source)
	require.False(t, res.Success)
	require.Zero(t, backend.calls())
}

func TestRoute_GenerativeContextSelection(t *testing.T) {
	backend := &recordingBackend{reply: "ok"}
	r := newRouter(seededStore(t, veterans()), backend)
	ctx := context.Background()

	r.Route(ctx, "compare Ana vs Bruno")
	require.Contains(t, backend.lastPrompt(), "Context for comparison:")
	require.Contains(t, backend.lastPrompt(), "Total de jogadores: 7")

	r.Generate(ctx, "top jogadores?", CategoryTopN)
	require.Contains(t, backend.lastPrompt(), "Context about players:")
	require.Contains(t, backend.lastPrompt(), "Top 20 jogadores por overallrating:")

	r.Generate(ctx, "estatísticas", CategoryCount)
	require.Contains(t, backend.lastPrompt(), "Statistical data:")
	require.Contains(t, backend.lastPrompt(), "Overall médio: 78.6")
	require.Contains(t, backend.lastPrompt(), "Melhor jogador: Bruno Costa (OVR 88, CB)")
}

// failingCount breaks Count so handlers that rely on it error out.
type failingCount struct {
	store.Gateway
}

func (failingCount) Count(context.Context, store.Query) (int, error) {
	return 0, errors.New("database is locked")
}

func TestHandlers_Outputs(t *testing.T) {
	h := NewHandlers(seededStore(t, veterans()))
	ctx := context.Background()

	answer := func(q string) string {
		t.Helper()
		got, ok, err := h.Answer(ctx, Classify(q))
		require.NoError(t, err)
		require.True(t, ok)
		return got
	}

	top := answer("top 3 jogadores")
	require.Equal(t, "**Top 3 Jogadores por Overall:**\n\n"+
		"1. Bruno Costa - OVR 88 (CB)\n"+
		"2. Player #5 - OVR 88 (N/A)\n"+
		"3. Ana Silva - OVR 84 (ST)\n", top)

	require.Contains(t, answer("top 99 jogadores"), "**Top 50 Jogadores por Overall:**")
	require.Contains(t, answer("piores 2 jogadores"), "1. Eva Neves - OVR 66 (N/A)")

	require.Equal(t, "Há **2 jogadores** com menos de 32 anos.", answer("jogadores com menos de 32 anos"))
	require.Equal(t, "Há **3 jogadores** com potencial ≥ 85.", answer("jogadores com potencial acima de 85"))

	old := answer("jogadores mais velhos")
	require.Contains(t, old, "- Davi Rocha: 37 anos, OVR 70\n- Caio Lima: 35 anos, OVR 75\n")

	hp := answer("alto potencial")
	require.Contains(t, hp, "- Player #5: OVR 88 → POT 89 (+1)")

	above := answer("jogadores acima de 80")
	require.Contains(t, above, "**Jogadores com OVR ≥ 80:** (3 encontrados)")
	require.NotContains(t, above, "e mais")
}

func TestHandlers_RatingAboveTruncatesList(t *testing.T) {
	players := make([]roster.Player, 0, 13)
	for i := 1; i <= 13; i++ {
		players = append(players, roster.Player{PlayerID: i, FirstName: fmt.Sprintf("P%d", i), OverallRating: 60 + i, Potential: 80, Age: 20})
	}
	h := NewHandlers(seededStore(t, players))

	got, ok, err := h.Answer(context.Background(), Classify("jogadores acima de 61"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, got, "(13 encontrados)")
	require.Equal(t, 10, strings.Count(got, "\n- "))
	require.True(t, strings.HasSuffix(got, "_... e mais 3 jogadores_"))

	young, _, err := h.Answer(context.Background(), Classify("jogadores jovens"))
	require.NoError(t, err)
	require.Contains(t, young, "(20 anos): OVR 61 → POT 80 (+19)")
}

func TestContextBuilder_Truncation(t *testing.T) {
	gw := seededStore(t, veterans())
	b := NewContextBuilder(gw, 10)

	got, err := b.Roster(context.Background(), 50)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(got, "\n\n"+TruncatedMarker))
	require.Equal(t, 40, utf8.RuneCountInString(strings.TrimSuffix(got, "\n\n"+TruncatedMarker)))

	full, err := NewContextBuilder(gw, 4000).Roster(context.Background(), 50)
	require.NoError(t, err)
	require.NotContains(t, full, TruncatedMarker)
}

func TestContextBuilder_EmptyStore(t *testing.T) {
	b := NewContextBuilder(seededStore(t, nil), 4000)
	ctx := context.Background()

	s, err := b.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, "Nenhum dado carregado.", s)

	r, err := b.Roster(ctx, 30)
	require.NoError(t, err)
	require.Equal(t, "Nenhum jogador encontrado com os critérios especificados.", r)
}
