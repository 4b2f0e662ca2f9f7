package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/albapepper/career-analyzer/internal/store"
)

const (
	defaultTopN   = 10
	maxTopN       = 50
	listLimit     = 10
	youngMaxAge   = 21
	veteranMinAge = 35
	highPotential = 85
)

// Handlers answers deterministic questions straight from the gateway.
type Handlers struct {
	gw store.Gateway
}

// NewHandlers creates the deterministic handler set.
func NewHandlers(gw store.Gateway) *Handlers {
	return &Handlers{gw: gw}
}

// Answer runs the handler named by c. ok is false when the handler has no
// usable answer and the question should go to the generative path.
func (h *Handlers) Answer(ctx context.Context, c Classification) (answer string, ok bool, err error) {
	switch c.Handler {
	case HandlerCount:
		return h.count(ctx)
	case HandlerTop:
		return h.top(ctx, c)
	case HandlerRatingAbove:
		return h.ratingAbove(ctx, c)
	case HandlerYoung:
		return h.young(ctx)
	case HandlerAgeBelow:
		return h.ageBelow(ctx, c)
	case HandlerOld:
		return h.old(ctx)
	case HandlerHighPotential:
		return h.highPotential(ctx)
	case HandlerPotentialAbove:
		return h.potentialAbove(ctx, c)
	case HandlerPlayerInfo:
		return h.playerInfo(ctx, c)
	default:
		return "", false, fmt.Errorf("no handler %q", c.Handler)
	}
}

func (h *Handlers) count(ctx context.Context) (string, bool, error) {
	n, err := h.gw.Count(ctx, store.Select())
	if err != nil {
		return "", false, err
	}
	return fmt.Sprintf("Você tem **%d jogadores** no seu elenco.", n), true, nil
}

func (h *Handlers) top(ctx context.Context, c Classification) (string, bool, error) {
	n := defaultTopN
	if c.HasNum && c.Number > 0 {
		n = c.Number
	}
	n = min(n, maxTopN)

	q := store.Select().Where("overallrating", store.OpNotNull, nil).Limit(n)
	title := "Top"
	if c.Worst {
		q = q.OrderBy("overallrating")
		title = "Piores"
	} else {
		q = q.OrderByDesc("overallrating")
	}
	players, err := h.gw.Players(ctx, q)
	if err != nil {
		return "", false, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s %d Jogadores por Overall:**\n\n", title, n)
	for i, p := range players {
		fmt.Fprintf(&b, "%d. %s - OVR %d (%s)\n", i+1, p.DisplayName(), p.OverallRating, p.Position("N/A"))
	}
	return b.String(), true, nil
}

func (h *Handlers) ratingAbove(ctx context.Context, c Classification) (string, bool, error) {
	if !c.HasNum {
		return "", false, nil
	}
	q := store.Select().Where("overallrating", store.OpGTE, c.Number)
	total, err := h.gw.Count(ctx, q)
	if err != nil {
		return "", false, err
	}
	players, err := h.gw.Players(ctx, q.OrderByDesc("overallrating").Limit(listLimit))
	if err != nil {
		return "", false, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Jogadores com OVR ≥ %d:** (%d encontrados)\n\n", c.Number, total)
	for _, p := range players {
		fmt.Fprintf(&b, "- %s: OVR %d\n", p.DisplayName(), p.OverallRating)
	}
	if total > listLimit {
		fmt.Fprintf(&b, "\n_... e mais %d jogadores_", total-listLimit)
	}
	return b.String(), true, nil
}

func (h *Handlers) young(ctx context.Context) (string, bool, error) {
	players, err := h.gw.Players(ctx, store.Select().
		Where("age", store.OpLTE, youngMaxAge).
		OrderByDesc("potential").
		Limit(listLimit))
	if err != nil {
		return "", false, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Jogadores Jovens (≤%d anos) com Alto Potencial:**\n\n", youngMaxAge)
	if len(players) == 0 {
		b.WriteString("Nenhum jogador jovem encontrado.")
	}
	for _, p := range players {
		fmt.Fprintf(&b, "- %s (%d anos): OVR %d → POT %d (+%d)\n",
			p.DisplayName(), p.Age, p.OverallRating, p.Potential, p.Growth())
	}
	return b.String(), true, nil
}

func (h *Handlers) ageBelow(ctx context.Context, c Classification) (string, bool, error) {
	if !c.HasNum {
		return "", false, nil
	}
	n, err := h.gw.Count(ctx, store.Select().Where("age", store.OpLT, c.Number))
	if err != nil {
		return "", false, err
	}
	return fmt.Sprintf("Há **%d jogadores** com menos de %d anos.", n, c.Number), true, nil
}

func (h *Handlers) old(ctx context.Context) (string, bool, error) {
	players, err := h.gw.Players(ctx, store.Select().
		Where("age", store.OpGTE, veteranMinAge).
		OrderByDesc("age").
		Limit(listLimit))
	if err != nil {
		return "", false, err
	}
	if len(players) == 0 {
		return fmt.Sprintf("Nenhum jogador com %d+ anos encontrado.", veteranMinAge), true, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Jogadores Veteranos (≥%d anos):**\n\n", veteranMinAge)
	for _, p := range players {
		fmt.Fprintf(&b, "- %s: %d anos, OVR %d\n", p.DisplayName(), p.Age, p.OverallRating)
	}
	return b.String(), true, nil
}

func (h *Handlers) highPotential(ctx context.Context) (string, bool, error) {
	players, err := h.gw.Players(ctx, store.Select().
		Where("potential", store.OpGTE, highPotential).
		OrderByDesc("potential").
		Limit(listLimit))
	if err != nil {
		return "", false, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Jogadores com Alto Potencial (≥%d):**\n\n", highPotential)
	if len(players) == 0 {
		b.WriteString("Nenhum jogador com alto potencial encontrado.")
	}
	for _, p := range players {
		fmt.Fprintf(&b, "- %s: OVR %d → POT %d (+%d)\n",
			p.DisplayName(), p.OverallRating, p.Potential, p.Growth())
	}
	return b.String(), true, nil
}

func (h *Handlers) potentialAbove(ctx context.Context, c Classification) (string, bool, error) {
	if !c.HasNum {
		return "", false, nil
	}
	n, err := h.gw.Count(ctx, store.Select().Where("potential", store.OpGTE, c.Number))
	if err != nil {
		return "", false, err
	}
	return fmt.Sprintf("Há **%d jogadores** com potencial ≥ %d.", n, c.Number), true, nil
}

func (h *Handlers) playerInfo(ctx context.Context, c Classification) (string, bool, error) {
	if c.Name == "" {
		return "", false, nil
	}
	players, err := h.gw.Players(ctx, store.Select().
		Where(store.DisplayNameColumn, store.OpContains, c.Name).
		OrderBy("playerid").
		Limit(1))
	if err != nil {
		return "", false, err
	}
	if len(players) == 0 {
		return "", false, nil
	}
	return players[0].Summary(), true, nil
}
