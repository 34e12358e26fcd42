package api

import (
	"context"
	"net/http"
	"net/url"

	service "github.com/okian/mission-control/internal/app"
	"github.com/okian/mission-control/internal/domain/model"
	"github.com/okian/mission-control/pkg/logger"
)

// RevenueDependencies defines the interface for revenue reads.
type RevenueDependencies interface {
	Revenue(ctx context.Context) (service.RevenueReport, error)
	RevenueSnapshots(ctx context.Context, params url.Values) ([]model.RevenueSnapshot, error)
}

// RevenueHandler handles /api/revenue requests.
type RevenueHandler struct {
	deps   RevenueDependencies
	logger logger.Logger
}

// NewRevenueHandler creates a new revenue handler.
func NewRevenueHandler(deps RevenueDependencies, l logger.Logger) *RevenueHandler {
	return &RevenueHandler{deps: deps, logger: l}
}

type snapshotsResponse struct {
	Snapshots []model.RevenueSnapshot `json:"snapshots"`
}

// HandleGet handles GET /api/revenue.
func (h *RevenueHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.revenue"
	report, err := h.deps.Revenue(r.Context())
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err), "revenue_by_month")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleSnapshots handles GET /api/revenue/snapshots.
func (h *RevenueHandler) HandleSnapshots(w http.ResponseWriter, r *http.Request) {
	const op = "api.revenue_snapshots"
	snaps, err := h.deps.RevenueSnapshots(r.Context(), r.URL.Query())
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err), "snapshots")
		return
	}
	writeJSON(w, http.StatusOK, snapshotsResponse{Snapshots: snaps})
}
