// Package site renders the dashboard pages from embedded templates.
package site

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/mission-control/internal/adapters/repository"
	service "github.com/okian/mission-control/internal/app"
	"github.com/okian/mission-control/internal/domain/health"
	"github.com/okian/mission-control/internal/domain/model"
	"github.com/okian/mission-control/internal/domain/pipeline"
	"github.com/okian/mission-control/pkg/logger"
)

// Error constants
var (
	ErrTemplates = errors.New("site templates failed to parse")
	ErrRender    = errors.New("site page render failed")
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

var pageNames = []string{"pipeline", "partners", "partner"}

// Dependencies are the reads the pages need.
type Dependencies interface {
	Pipeline(ctx context.Context, hideInactive bool) (pipeline.Result, error)
	ListPartners(ctx context.Context, params url.Values) ([]model.Partner, error)
	PartnerDetail(ctx context.Context, id string) (service.PartnerDetail, error)
}

// Handler serves the HTML pages.
type Handler struct {
	deps   Dependencies
	pages  map[string]*template.Template
	logger logger.Logger
}

// New parses the embedded templates.
func New(deps Dependencies, l logger.Logger) (*Handler, error) {
	if l == nil {
		l = logger.NewNop()
	}
	funcs := template.FuncMap{
		"healthLabel": health.Label,
		"stageLabel":  func(s model.Stage) string { return s.Label() },
		"when":        formatTime,
		"money":       func(v float64) string { return "$" + strconv.FormatFloat(v, 'f', 2, 64) },
	}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTemplates, name, err)
		}
		pages[name] = t
	}
	return &Handler{deps: deps, pages: pages, logger: l}, nil
}

// Register attaches the page routes to mux.
func (h *Handler) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	mux.HandleFunc("GET /{$}", h.HandlePipeline)
	mux.HandleFunc("GET /pipeline", h.HandlePipeline)
	mux.HandleFunc("GET /partners", h.HandlePartners)
	mux.HandleFunc("GET /partners/{id}", h.HandlePartner)
}

type pageData struct {
	Title  string
	Active string
	Error  string
	Data   any
}

type pipelineView struct {
	Result       pipeline.Result
	HideInactive bool
}

// HandlePipeline renders the funnel board.
func (h *Handler) HandlePipeline(w http.ResponseWriter, r *http.Request) {
	hide := r.URL.Query().Get("hide_inactive") == "true"
	res, err := h.deps.Pipeline(r.Context(), hide)
	h.render(w, r, "pipeline", pageData{
		Title:  "Pipeline",
		Active: "pipeline",
		Error:  errText(err),
		Data:   pipelineView{Result: res, HideInactive: hide},
	}, err)
}

type partnersView struct {
	Partners []model.Partner
	Search   string
}

// HandlePartners renders the partner list.
func (h *Handler) HandlePartners(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ps, err := h.deps.ListPartners(r.Context(), q)
	if ps == nil {
		ps = []model.Partner{}
	}
	h.render(w, r, "partners", pageData{
		Title:  "Partners",
		Active: "partners",
		Error:  errText(err),
		Data:   partnersView{Partners: ps, Search: q.Get("search")},
	}, err)
}

// HandlePartner renders one partner with its related records.
func (h *Handler) HandlePartner(w http.ResponseWriter, r *http.Request) {
	d, err := h.deps.PartnerDetail(r.Context(), r.PathValue("id"))
	title := d.Partner.Name
	if title == "" {
		title = "Partner"
	}
	h.render(w, r, "partner", pageData{
		Title:  title,
		Active: "partners",
		Error:  errText(err),
		Data:   d,
	}, err)
}

// render executes a page into a buffer so template failures never produce
// a half-written response. A read error still renders the page with a banner.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, page string, data pageData, readErr error) {
	var buf bytes.Buffer
	if err := h.pages[page].ExecuteTemplate(&buf, "layout.html", data); err != nil {
		h.logger.Error(r.Context(), "page render failed", logger.String("page", page), logger.Error(err))
		http.Error(w, ErrRender.Error(), http.StatusInternalServerError)
		return
	}
	status := http.StatusOK
	if readErr != nil {
		h.logger.Warn(r.Context(), "page rendered with errors", logger.String("page", page), logger.Error(readErr))
		status = http.StatusInternalServerError
		if errors.Is(readErr, repository.ErrNotFound) {
			status = http.StatusNotFound
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.UTC().Format("Jan 2, 2006 15:04")
}
