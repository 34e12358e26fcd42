package api

import (
	"context"
	"net/http"

	"github.com/okian/mission-control/internal/adapters/workspace"
	"github.com/okian/mission-control/pkg/logger"
)

// WorkspaceDependencies defines the interface for workspace files.
type WorkspaceDependencies interface {
	WorkspaceFiles() ([]workspace.FileInfo, error)
	ReadWorkspaceFile(name string) (workspace.Document, error)
	AppendWorkspaceFile(ctx context.Context, name string, e workspace.Entry) error
}

// WorkspaceHandler handles /api/workspace requests.
type WorkspaceHandler struct {
	deps   WorkspaceDependencies
	logger logger.Logger
}

// NewWorkspaceHandler creates a new workspace handler.
func NewWorkspaceHandler(deps WorkspaceDependencies, l logger.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{deps: deps, logger: l}
}

type filesResponse struct {
	Files []workspace.FileInfo `json:"files"`
}

// HandleList handles GET /api/workspace.
func (h *WorkspaceHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.workspace_list"
	files, err := h.deps.WorkspaceFiles()
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err), "files")
		return
	}
	writeJSON(w, http.StatusOK, filesResponse{Files: files})
}

// HandleRead handles GET /api/workspace/{name}.
func (h *WorkspaceHandler) HandleRead(w http.ResponseWriter, r *http.Request) {
	const op = "api.workspace_read"
	doc, err := h.deps.ReadWorkspaceFile(r.PathValue("name"))
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err), "")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// HandleAppend handles POST /api/workspace/{name}.
func (h *WorkspaceHandler) HandleAppend(w http.ResponseWriter, r *http.Request) {
	const op = "api.workspace_append"
	var e workspace.Entry
	if err := decodeBody(r, &e); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err), "")
		return
	}
	if err := h.deps.AppendWorkspaceFile(r.Context(), r.PathValue("name"), e); err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err), "")
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
