package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/okian/mission-control/internal/domain/model"
	"github.com/okian/mission-control/pkg/logger"
)

// InteractionDependencies defines the interface for interaction operations.
type InteractionDependencies interface {
	ListInteractions(ctx context.Context, params url.Values) ([]model.Interaction, error)
	CreateInteraction(ctx context.Context, in model.Interaction) (model.Interaction, error)
}

// InteractionHandler handles /api/interactions requests.
type InteractionHandler struct {
	deps   InteractionDependencies
	logger logger.Logger
}

// NewInteractionHandler creates a new interaction handler.
func NewInteractionHandler(deps InteractionDependencies, l logger.Logger) *InteractionHandler {
	return &InteractionHandler{deps: deps, logger: l}
}

type interactionsResponse struct {
	Interactions []model.Interaction `json:"interactions"`
}

// HandleList handles GET /api/interactions.
func (h *InteractionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_interactions"
	out, err := h.deps.ListInteractions(r.Context(), r.URL.Query())
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err), "interactions")
		return
	}
	writeJSON(w, http.StatusOK, interactionsResponse{Interactions: out})
}

// HandleCreate handles POST /api/interactions.
func (h *InteractionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_interaction"
	var in model.Interaction
	if err := decodeBody(r, &in); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err), "")
		return
	}
	out, err := h.deps.CreateInteraction(r.Context(), in)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err), "")
		return
	}
	writeJSON(w, http.StatusCreated, out)
}
