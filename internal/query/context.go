package query

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/albapepper/career-analyzer/internal/store"
)

// TruncatedMarker is appended to a context cut at the character budget.
const TruncatedMarker = "[context truncated]"

// ContextBuilder renders roster data into text for the generative backend.
type ContextBuilder struct {
	gw        store.Gateway
	maxTokens int
}

// NewContextBuilder creates a builder whose output is capped at maxTokens*4
// characters.
func NewContextBuilder(gw store.Gateway, maxTokens int) *ContextBuilder {
	if maxTokens <= 0 {
		maxTokens = 4000
	}
	return &ContextBuilder{gw: gw, maxTokens: maxTokens}
}

// Roster lists up to limit players, best rated first.
func (b *ContextBuilder) Roster(ctx context.Context, limit int) (string, error) {
	players, err := b.gw.Players(ctx, store.Select().OrderByDesc("overallrating").Limit(limit))
	if err != nil {
		return "", fmt.Errorf("roster context: %w", err)
	}
	if len(players) == 0 {
		return "Nenhum jogador encontrado com os critérios especificados.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Total de jogadores: %d\n", len(players))
	for _, p := range players {
		fmt.Fprintf(&sb, "\n• %s\n  ID: %d, Age: %d, Potential: %d", p.DetailedDisplay(), p.PlayerID, p.Age, p.Potential)
	}
	return b.truncate(sb.String()), nil
}

// Top lists the n best rated players.
func (b *ContextBuilder) Top(ctx context.Context, n int) (string, error) {
	players, err := b.gw.Players(ctx, store.Select().
		Where("overallrating", store.OpNotNull, nil).
		OrderByDesc("overallrating").
		Limit(n))
	if err != nil {
		return "", fmt.Errorf("top context: %w", err)
	}
	if len(players) == 0 {
		return "Nenhum jogador encontrado.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Top %d jogadores por overallrating:\n", n)
	for i, p := range players {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, p.DetailedDisplay())
	}
	return b.truncate(sb.String()), nil
}

// Summary renders save-wide totals and averages.
func (b *ContextBuilder) Summary(ctx context.Context) (string, error) {
	total, err := b.gw.Count(ctx, store.Select())
	if err != nil {
		return "", fmt.Errorf("summary context: %w", err)
	}
	if total == 0 {
		return "Nenhum dado carregado.", nil
	}

	avgOVR, _, err := b.gw.Scalar(ctx, store.AggAvg, "overallrating", store.Select())
	if err != nil {
		return "", fmt.Errorf("summary context: %w", err)
	}
	avgAge, _, err := b.gw.Scalar(ctx, store.AggAvg, "age", store.Select())
	if err != nil {
		return "", fmt.Errorf("summary context: %w", err)
	}
	best := "N/A"
	top, err := b.gw.Players(ctx, store.Select().OrderByDesc("overallrating").Limit(1))
	if err != nil {
		return "", fmt.Errorf("summary context: %w", err)
	}
	if len(top) > 0 {
		best = top[0].DetailedDisplay()
	}

	s := fmt.Sprintf("Resumo da Carreira:\n- Total de jogadores: %d\n- Overall médio: %.1f\n- Idade média: %.1f anos\n- Melhor jogador: %s\n",
		total, avgOVR, avgAge, best)
	return b.truncate(s), nil
}

// truncate cuts s to maxTokens*4 characters and appends TruncatedMarker.
func (b *ContextBuilder) truncate(s string) string {
	limit := b.maxTokens * 4
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "\n\n" + TruncatedMarker
}
