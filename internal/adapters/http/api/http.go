// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/mission-control/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PartnerDependencies
	ContactDependencies
	InteractionDependencies
	ActionItemDependencies
	PipelineDependencies
	RevenueDependencies
	KnowledgeDependencies
	WorkspaceDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	partnerHandler     *PartnerHandler
	contactHandler     *ContactHandler
	interactionHandler *InteractionHandler
	actionItemHandler  *ActionItemHandler
	pipelineHandler    *PipelineHandler
	revenueHandler     *RevenueHandler
	knowledgeHandler   *KnowledgeHandler
	workspaceHandler   *WorkspaceHandler
	logger             logger.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the logger used for server-side failures.
func WithLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	s := &Server{logger: logger.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.partnerHandler = NewPartnerHandler(deps, s.logger)
	s.contactHandler = NewContactHandler(deps, s.logger)
	s.interactionHandler = NewInteractionHandler(deps, s.logger)
	s.actionItemHandler = NewActionItemHandler(deps, s.logger)
	s.pipelineHandler = NewPipelineHandler(deps, s.logger)
	s.revenueHandler = NewRevenueHandler(deps, s.logger)
	s.knowledgeHandler = NewKnowledgeHandler(deps, s.logger)
	s.workspaceHandler = NewWorkspaceHandler(deps, s.logger)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	handle := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(h, endpoint))
	}

	handle("GET /healthz", "healthz", s.healthHandler.HandleHealth)

	handle("GET /api/partners", "partners", s.partnerHandler.HandleList)
	handle("POST /api/partners", "partners", s.partnerHandler.HandleCreate)
	handle("GET /api/partners/{id}", "partner", s.partnerHandler.HandleDetail)
	handle("PATCH /api/partners/{id}", "partner", s.partnerHandler.HandleUpdate)
	handle("DELETE /api/partners/{id}", "partner", s.partnerHandler.HandleDelete)

	handle("GET /api/contacts", "contacts", s.contactHandler.HandleList)
	handle("POST /api/contacts", "contacts", s.contactHandler.HandleCreate)
	handle("DELETE /api/contacts", "contacts", s.contactHandler.HandleDelete)
	handle("PATCH /api/contacts/{id}", "contact", s.contactHandler.HandleUpdate)
	handle("DELETE /api/contacts/{id}", "contact", s.contactHandler.HandleDelete)

	handle("GET /api/interactions", "interactions", s.interactionHandler.HandleList)
	handle("POST /api/interactions", "interactions", s.interactionHandler.HandleCreate)

	handle("GET /api/action-items", "action_items", s.actionItemHandler.HandleList)
	handle("POST /api/action-items", "action_items", s.actionItemHandler.HandleCreate)
	handle("PATCH /api/action-items/{id}", "action_item", s.actionItemHandler.HandleUpdate)
	handle("DELETE /api/action-items/{id}", "action_item", s.actionItemHandler.HandleDelete)

	handle("GET /api/pipeline", "pipeline", s.pipelineHandler.HandleGet)

	handle("GET /api/revenue", "revenue", s.revenueHandler.HandleGet)
	handle("GET /api/revenue/snapshots", "revenue_snapshots", s.revenueHandler.HandleSnapshots)

	handle("POST /api/knowledge/search", "knowledge", s.knowledgeHandler.HandleSearch)

	handle("GET /api/workspace", "workspace", s.workspaceHandler.HandleList)
	handle("GET /api/workspace/{name}", "workspace_file", s.workspaceHandler.HandleRead)
	handle("POST /api/workspace/{name}", "workspace_file", s.workspaceHandler.HandleAppend)
}

type successResponse struct {
	Success bool `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes {"error": msg}. When collection is set the body also
// carries an empty array under that key.
func writeError(w http.ResponseWriter, err error, collection string) {
	body := map[string]any{"error": publicMessage(err)}
	if collection != "" {
		body[collection] = []struct{}{}
	}
	writeJSON(w, statusFor(err), body)
}

// fail logs server-side failures and writes the error body.
func fail(ctx context.Context, l logger.Logger, w http.ResponseWriter, err error, collection string) {
	if statusFor(err) >= http.StatusInternalServerError {
		l.Error(ctx, "request failed", logger.Error(err))
	}
	writeError(w, err, collection)
}

func publicMessage(err error) string {
	var oe *opError
	if errors.As(err, &oe) {
		if oe.err != nil {
			return oe.err.Error()
		}
		if oe.kind != nil {
			return oe.kind.Error()
		}
	}
	if err == nil {
		return http.StatusText(http.StatusInternalServerError)
	}
	return err.Error()
}

// decodeBody decodes a JSON object body into v.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	return nil
}
