package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/okian/mission-control/internal/domain/model"
	"github.com/okian/mission-control/pkg/logger"
)

// ActionItemDependencies defines the interface for action item operations.
type ActionItemDependencies interface {
	ListActionItems(ctx context.Context, params url.Values) ([]model.ActionItem, error)
	CreateActionItem(ctx context.Context, a model.ActionItem) (model.ActionItem, error)
	UpdateActionItem(ctx context.Context, id string, patch map[string]any) (model.ActionItem, error)
	DeleteActionItem(ctx context.Context, id string) error
}

// ActionItemHandler handles /api/action-items requests.
type ActionItemHandler struct {
	deps   ActionItemDependencies
	logger logger.Logger
}

// NewActionItemHandler creates a new action item handler.
func NewActionItemHandler(deps ActionItemDependencies, l logger.Logger) *ActionItemHandler {
	return &ActionItemHandler{deps: deps, logger: l}
}

type actionItemsResponse struct {
	ActionItems []model.ActionItem `json:"action_items"`
}

// HandleList handles GET /api/action-items.
func (h *ActionItemHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_action_items"
	out, err := h.deps.ListActionItems(r.Context(), r.URL.Query())
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err), "action_items")
		return
	}
	writeJSON(w, http.StatusOK, actionItemsResponse{ActionItems: out})
}

// HandleCreate handles POST /api/action-items.
func (h *ActionItemHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_action_item"
	var a model.ActionItem
	if err := decodeBody(r, &a); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err), "")
		return
	}
	out, err := h.deps.CreateActionItem(r.Context(), a)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err), "")
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// HandleUpdate handles PATCH /api/action-items/{id}.
func (h *ActionItemHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_action_item"
	var patch map[string]any
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err), "")
		return
	}
	out, err := h.deps.UpdateActionItem(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err), "")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleDelete handles DELETE /api/action-items/{id}.
func (h *ActionItemHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_action_item"
	if err := h.deps.DeleteActionItem(r.Context(), r.PathValue("id")); err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err), "")
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
