package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/albapepper/career-analyzer/internal/api/respond"
	"github.com/albapepper/career-analyzer/internal/cache"
	"github.com/albapepper/career-analyzer/internal/query"
)

// QueryRequest is the body of POST /api/v1/query.
type QueryRequest struct {
	Question string `json:"question" example:"quantos jogadores tenho?"`
}

// maxQuestionBytes caps the request body.
const maxQuestionBytes = 8 << 10

// PostQuery answers a natural-language question about the loaded save.
// @Summary Ask a question
// @Description Classifies the question and answers it from the database when possible, otherwise through the generative backend. The envelope is always returned with status 200; success=false and source=error signal a failed answer. Successful generative answers are cached per question until the next import; cached replays report tokens_used=0.
// @Tags query
// @Accept json
// @Produce json
// @Param body body QueryRequest true "Question"
// @Success 200 {object} query.Result
// @Failure 400 {object} respond.ErrorResponse
// @Router /query [post]
func (h *Handler) PostQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQuestionBytes)).Decode(&req); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be JSON with a question field", err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_QUESTION", "question is required")
		return
	}

	if err := h.syncRun(r.Context()); err != nil {
		h.logger.Warn("Reading last import failed", "error", err)
	}

	key := cache.QuestionKey(req.Question)
	if data, etag, ok := h.cache.Get(key); ok {
		respond.WriteAnswer(w, respond.Answer{
			Body:     data,
			Source:   string(query.SourceGenerative),
			ETag:     etag,
			Replayed: true,
		}, cache.TTLAnswer)
		return
	}

	res := h.router.Route(r.Context(), req.Question)
	h.logger.Info("Question answered",
		"source", res.Source,
		"category", res.Category,
		"tokens_used", res.CostUnits)

	data, err := json.Marshal(res)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_FAILED", "Could not encode answer")
		return
	}
	if res.Source != query.SourceGenerative || !res.Success {
		respond.WriteAnswer(w, respond.Answer{Body: data, Source: string(res.Source)}, 0)
		return
	}

	// A replay makes no backend call, so the cached copy reports zero tokens.
	replay := res
	replay.CostUnits = 0
	cached, err := json.Marshal(replay)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_FAILED", "Could not encode answer")
		return
	}
	h.cache.Set(key, cached, cache.TTLAnswer)
	respond.WriteAnswer(w, respond.Answer{
		Body:   data,
		Source: string(res.Source),
		ETag:   cache.ComputeETag(data),
	}, cache.TTLAnswer)
}
