package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/okian/mission-control/internal/domain/model"
	"github.com/okian/mission-control/pkg/logger"
)

// ContactDependencies defines the interface for contact operations.
type ContactDependencies interface {
	ListContacts(ctx context.Context, params url.Values) ([]model.Contact, error)
	CreateContact(ctx context.Context, c model.Contact) (model.Contact, error)
	UpdateContact(ctx context.Context, id string, patch map[string]any) (model.Contact, error)
	DeleteContact(ctx context.Context, id string) error
}

// ContactHandler handles /api/contacts requests.
type ContactHandler struct {
	deps   ContactDependencies
	logger logger.Logger
}

// NewContactHandler creates a new contact handler.
func NewContactHandler(deps ContactDependencies, l logger.Logger) *ContactHandler {
	return &ContactHandler{deps: deps, logger: l}
}

type contactsResponse struct {
	Contacts []model.Contact `json:"contacts"`
}

// HandleList handles GET /api/contacts.
func (h *ContactHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_contacts"
	cs, err := h.deps.ListContacts(r.Context(), r.URL.Query())
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err), "contacts")
		return
	}
	writeJSON(w, http.StatusOK, contactsResponse{Contacts: cs})
}

// HandleCreate handles POST /api/contacts.
func (h *ContactHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_contact"
	var c model.Contact
	if err := decodeBody(r, &c); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err), "")
		return
	}
	out, err := h.deps.CreateContact(r.Context(), c)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err), "")
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// HandleUpdate handles PATCH /api/contacts/{id}.
func (h *ContactHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_contact"
	var patch map[string]any
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err), "")
		return
	}
	out, err := h.deps.UpdateContact(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err), "")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleDelete handles DELETE /api/contacts/{id} and DELETE /api/contacts?id=.
func (h *ContactHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_contact"
	id := r.PathValue("id")
	if id == "" {
		id = r.URL.Query().Get("id")
	}
	if err := h.deps.DeleteContact(r.Context(), id); err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err), "")
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
