package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/albapepper/career-analyzer/internal/llm"
	"github.com/albapepper/career-analyzer/internal/store"
)

// Source identifies which path produced an answer.
type Source string

const (
	SourceSQL        Source = "sql"
	SourceGenerative Source = "generative"
	SourceError      Source = "error"
)

// Result is the uniform response envelope for one question.
type Result struct {
	Answer    string   `json:"answer"`
	Source    Source   `json:"source"`
	Category  Category `json:"category"`
	CostUnits int      `json:"tokens_used"`
	Success   bool     `json:"success"`
}

// Router classifies questions and dispatches them to the deterministic
// handlers or the generative path.
type Router struct {
	handlers *Handlers
	contexts *ContextBuilder
	client   *llm.Client
	logger   *slog.Logger
}

// NewRouter wires the router's collaborators.
func NewRouter(gw store.Gateway, client *llm.Client, contextMaxTokens int, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		handlers: NewHandlers(gw),
		contexts: NewContextBuilder(gw, contextMaxTokens),
		client:   client,
		logger:   logger,
	}
}

// Route answers question. It never returns an error: failures become an
// envelope with Source "error".
func (r *Router) Route(ctx context.Context, question string) Result {
	start := time.Now()
	if strings.TrimSpace(question) == "" {
		return Result{Answer: "Pergunta vazia.", Source: SourceError, Category: CategoryComplex}
	}

	c := Classify(question)
	logger := r.logger.With("category", c.Category, "rule", c.Rule)

	if c.Deterministic() {
		answer, ok, err := r.handlers.Answer(ctx, c)
		switch {
		case err != nil:
			logger.Warn("Handler failed, falling back to generative path", "handler", c.Handler, "error", err)
		case !ok:
			logger.Debug("Handler had no answer, falling back to generative path", "handler", c.Handler)
		default:
			logger.Debug("Answered from database", "handler", c.Handler, "elapsed", time.Since(start))
			return Result{Answer: answer, Source: SourceSQL, Category: c.Category, Success: true}
		}
		return r.Generate(ctx, question, CategoryComplex)
	}

	return r.Generate(ctx, question, c.Category)
}

// Generate answers question through the generative backend with the context
// and template selected by category.
func (r *Router) Generate(ctx context.Context, question string, category Category) Result {
	var (
		text string
		kind PromptKind
		err  error
	)
	switch category {
	case CategoryTopN:
		text, err = r.contexts.Top(ctx, 20)
		kind = PromptPlayer
	case CategoryComparison:
		text, err = r.contexts.Roster(ctx, 50)
		kind = PromptComparison
	case CategoryRecommendation, CategoryComplex:
		text, err = r.contexts.Roster(ctx, 30)
		kind = PromptGeneral
	default:
		text, err = r.contexts.Summary(ctx)
		kind = PromptStatistics
	}
	if err != nil {
		r.logger.Error("Building context failed", "category", category, "error", err)
		return Result{Answer: fmt.Sprintf("Erro inesperado: %v", err), Source: SourceError, Category: category}
	}

	prompt := BuildPrompt(kind, question, text)
	resp := r.client.Query(ctx, SystemInstruction, prompt)
	if !resp.Success {
		return Result{
			Answer:   fmt.Sprintf("Erro ao consultar o modelo: %v", resp.Err),
			Source:   SourceError,
			Category: category,
		}
	}
	return Result{
		Answer:    resp.Text,
		Source:    SourceGenerative,
		Category:  category,
		CostUnits: resp.CostUnits,
		Success:   true,
	}
}
