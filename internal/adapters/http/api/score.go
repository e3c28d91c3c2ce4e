// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/promptelo/promptelo/internal/domain/types"
	"github.com/promptelo/promptelo/pkg/logger"
)

// ScoreHandler handles novelty scoring requests.
type ScoreHandler struct {
	deps         Dependencies
	maxPromptLen int
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps Dependencies, maxPromptLen int) *ScoreHandler {
	return &ScoreHandler{deps: deps, maxPromptLen: maxPromptLen}
}

// HandleScore handles POST /api/v1/score requests.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req types.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validateScoreRequest(req, h.maxPromptLen); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	result, err := h.deps.Evaluate(r.Context(), req.Prompt, req.UserID)
	if err != nil {
		logger.Get().Error(r.Context(), "scoring failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	total, err := h.deps.Count(r.Context())
	if err != nil {
		logger.Get().Warn(r.Context(), "counting corpus failed", logger.Error(err))
	}

	writeJSON(w, http.StatusOK, types.ScoreResponse{
		Novelty:      result,
		TotalPrompts: total,
		Timestamp:    time.Now().UTC(),
	})
}
