package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/mission-control/internal/domain/pipeline"
	"github.com/okian/mission-control/pkg/logger"
)

// PipelineDependencies defines the interface for the funnel view.
type PipelineDependencies interface {
	Pipeline(ctx context.Context, hideInactive bool) (pipeline.Result, error)
}

// PipelineHandler handles /api/pipeline requests.
type PipelineHandler struct {
	deps   PipelineDependencies
	logger logger.Logger
}

// NewPipelineHandler creates a new pipeline handler.
func NewPipelineHandler(deps PipelineDependencies, l logger.Logger) *PipelineHandler {
	return &PipelineHandler{deps: deps, logger: l}
}

type pipelineErrorResponse struct {
	Error string `json:"error"`
	pipeline.Result
}

// HandleGet handles GET /api/pipeline?hide_inactive=true.
func (h *PipelineHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.pipeline"
	hide := false
	if raw := r.URL.Query().Get("hide_inactive"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, WrapKind(op, ErrBadRequest, err), "")
			return
		}
		hide = v
	}
	res, err := h.deps.Pipeline(r.Context(), hide)
	if err != nil {
		werr := Wrap(op, err)
		h.logger.Error(r.Context(), "pipeline read failed", logger.Error(werr))
		writeJSON(w, statusFor(werr), pipelineErrorResponse{Error: publicMessage(werr), Result: res})
		return
	}
	writeJSON(w, http.StatusOK, res)
}
