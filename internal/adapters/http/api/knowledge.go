package api

import (
	"context"
	"net/http"

	"github.com/okian/mission-control/internal/adapters/knowledge"
	"github.com/okian/mission-control/pkg/logger"
)

// KnowledgeDependencies defines the interface for knowledge lookups.
type KnowledgeDependencies interface {
	SearchKnowledge(ctx context.Context, query string) (knowledge.Result, error)
}

// KnowledgeHandler handles /api/knowledge requests.
type KnowledgeHandler struct {
	deps   KnowledgeDependencies
	logger logger.Logger
}

// NewKnowledgeHandler creates a new knowledge handler.
func NewKnowledgeHandler(deps KnowledgeDependencies, l logger.Logger) *KnowledgeHandler {
	return &KnowledgeHandler{deps: deps, logger: l}
}

type knowledgeRequest struct {
	Query string `json:"query"`
}

// HandleSearch handles POST /api/knowledge/search.
func (h *KnowledgeHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	const op = "api.knowledge_search"
	var req knowledgeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err), "")
		return
	}
	res, err := h.deps.SearchKnowledge(r.Context(), req.Query)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err), "")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
