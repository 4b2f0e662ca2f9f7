// Package respond writes the JSON bodies and cache headers shared by the
// career analyzer API handlers.
package respond

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ErrorResponse is the standard error shape for all API errors.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Detail  string `json:"detail,omitempty"`
	} `json:"error"`
}

// WriteJSON writes raw JSON bytes to the response with cache and ETag headers.
func WriteJSON(w http.ResponseWriter, data []byte, etag string, ttl time.Duration, cacheHit bool) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", etag)
	w.Header().Set("Vary", "Accept-Encoding")
	setCacheHeaders(w, ttl, cacheHit)
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

// WriteNotModified sends a 304 with the matching ETag.
func WriteNotModified(w http.ResponseWriter, etag string) {
	w.Header().Set("ETag", etag)
	w.WriteHeader(http.StatusNotModified)
}

// WriteError sends a structured JSON error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteErrorDetail(w, status, code, message, "")
}

// WriteErrorDetail sends a structured error with additional detail.
func WriteErrorDetail(w http.ResponseWriter, status int, code, message, detail string) {
	resp := ErrorResponse{}
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Detail = detail
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}

// AnswerSourceHeader reports which path produced a query answer.
const AnswerSourceHeader = "X-Answer-Source"

// Answer is an encoded query envelope ready to send.
type Answer struct {
	Body     []byte
	Source   string
	ETag     string // empty for answers that are never cached
	Replayed bool   // served from the answer cache
}

// WriteAnswer sends a query envelope with status 200. Failed answers still use
// 200; the envelope's success flag carries the outcome. Cacheable answers get
// an ETag and the answer cache headers, others are marked no-cache.
func WriteAnswer(w http.ResponseWriter, a Answer, ttl time.Duration) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(AnswerSourceHeader, a.Source)
	if a.ETag == "" {
		w.Header().Set("Cache-Control", "no-cache")
	} else {
		w.Header().Set("ETag", a.ETag)
		setCacheHeaders(w, ttl, a.Replayed)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(a.Body) //nolint:errcheck
}

// WriteJSONObject marshals a Go value to JSON and writes it uncached.
func WriteJSONObject(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// setCacheHeaders marks the response private: answers and summaries depend on
// the save loaded into this server, so shared caches must not keep them.
func setCacheHeaders(w http.ResponseWriter, ttl time.Duration, cacheHit bool) {
	status := "MISS"
	if cacheHit {
		status = "HIT"
	}
	w.Header().Set("X-Cache", status)
	maxAge := int(ttl.Seconds())
	w.Header().Set("Cache-Control",
		fmt.Sprintf("private, max-age=%d, stale-while-revalidate=%d", maxAge, maxAge/2))
}
