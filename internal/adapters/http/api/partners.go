package api

import (
	"context"
	"net/http"
	"net/url"

	service "github.com/okian/mission-control/internal/app"
	"github.com/okian/mission-control/internal/domain/model"
	"github.com/okian/mission-control/pkg/logger"
)

// PartnerDependencies defines the interface for partner operations.
type PartnerDependencies interface {
	ListPartners(ctx context.Context, params url.Values) ([]model.Partner, error)
	CreatePartner(ctx context.Context, p model.Partner) (model.Partner, error)
	PartnerDetail(ctx context.Context, id string) (service.PartnerDetail, error)
	UpdatePartner(ctx context.Context, id string, patch map[string]any) (model.Partner, error)
	DeletePartner(ctx context.Context, id string) error
}

// PartnerHandler handles /api/partners requests.
type PartnerHandler struct {
	deps   PartnerDependencies
	logger logger.Logger
}

// NewPartnerHandler creates a new partner handler.
func NewPartnerHandler(deps PartnerDependencies, l logger.Logger) *PartnerHandler {
	return &PartnerHandler{deps: deps, logger: l}
}

type partnersResponse struct {
	Partners []model.Partner `json:"partners"`
}

// HandleList handles GET /api/partners.
func (h *PartnerHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_partners"
	ps, err := h.deps.ListPartners(r.Context(), r.URL.Query())
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err), "partners")
		return
	}
	writeJSON(w, http.StatusOK, partnersResponse{Partners: ps})
}

// HandleCreate handles POST /api/partners.
func (h *PartnerHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_partner"
	var p model.Partner
	if err := decodeBody(r, &p); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err), "")
		return
	}
	out, err := h.deps.CreatePartner(r.Context(), p)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err), "")
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// HandleDetail handles GET /api/partners/{id}.
func (h *PartnerHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	const op = "api.partner_detail"
	d, err := h.deps.PartnerDetail(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err), "")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleUpdate handles PATCH /api/partners/{id}.
func (h *PartnerHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_partner"
	var patch map[string]any
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err), "")
		return
	}
	out, err := h.deps.UpdatePartner(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err), "")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleDelete handles DELETE /api/partners/{id}.
func (h *PartnerHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_partner"
	if err := h.deps.DeletePartner(r.Context(), r.PathValue("id")); err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err), "")
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
