// Package knowledge answers free-text questions against the knowledge table.
// Semantic matching and generated answers are best effort; a plain
// substring search is always available.
package knowledge

import (
	"context"
	"errors"
	"strings"

	"github.com/okian/mission-control/internal/adapters/postgrest"
	"github.com/okian/mission-control/internal/adapters/repository"
	"github.com/okian/mission-control/internal/domain/model"
	"github.com/okian/mission-control/pkg/logger"
	"github.com/okian/mission-control/pkg/metrics"
)

// Lookup modes.
const (
	ModeAI       = "ai"
	ModeSearch   = "search"
	ModeFallback = "fallback"
)

// MatchFunction is the stored function used for vector matching.
const MatchFunction = "match_knowledge"

const defaultMatchCount = 5

// Result is the answer to one query.
type Result struct {
	Answer  string                 `json:"answer"`
	Sources []model.KnowledgeEntry `json:"sources"`
	Mode    string                 `json:"mode"`
}

// Searcher runs knowledge lookups.
type Searcher struct {
	store      repository.Store
	entries    *repository.Collection[model.KnowledgeEntry]
	embedder   Embedder
	answerer   Answerer
	matchCount int
	logger     logger.Logger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithEmbedder enables semantic matching.
func WithEmbedder(e Embedder) Option {
	return func(s *Searcher) { s.embedder = e }
}

// WithAnswerer enables generated answers.
func WithAnswerer(a Answerer) Option {
	return func(s *Searcher) { s.answerer = a }
}

// WithMatchCount sets how many entries are matched.
func WithMatchCount(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.matchCount = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Searcher) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Searcher over store.
func New(store repository.Store, opts ...Option) *Searcher {
	s := &Searcher{
		store:      store,
		entries:    repository.Knowledge(store),
		matchCount: defaultMatchCount,
		logger:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search answers query. It fails only for an empty query.
func (s *Searcher) Search(ctx context.Context, query string) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, ErrEmptyQuery
	}

	mode := ModeFallback
	entries, err := s.semantic(ctx, query)
	if err == nil {
		mode = ModeSearch
	} else {
		switch {
		case errors.Is(err, ErrNotAvailable):
		case postgrest.IsNotFound(err):
			s.logger.Warn(ctx, "knowledge match function is missing", logger.String("function", MatchFunction))
		default:
			s.logger.Warn(ctx, "semantic knowledge match failed", logger.Error(err))
		}
		entries = s.substring(ctx, query)
	}

	answer := ""
	if s.answerer != nil {
		a, aerr := s.answerer.Answer(ctx, query, entries)
		if aerr == nil {
			answer, mode = a, ModeAI
		} else {
			s.logger.Warn(ctx, "knowledge answer failed", logger.Error(aerr))
		}
	}
	if answer == "" {
		answer = Summarize(entries)
	}

	metrics.RecordKnowledgeLookup(mode)
	return Result{Answer: answer, Sources: entries, Mode: mode}, nil
}

func (s *Searcher) semantic(ctx context.Context, query string) ([]model.KnowledgeEntry, error) {
	if s.embedder == nil {
		return nil, ErrNotAvailable
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	out := []model.KnowledgeEntry{}
	args := map[string]any{"query_embedding": vec, "match_count": s.matchCount}
	if err := s.store.RPC(ctx, MatchFunction, args, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// substring matches title or content. Failures yield no entries.
func (s *Searcher) substring(ctx context.Context, query string) []model.KnowledgeEntry {
	seen := map[string]bool{}
	out := []model.KnowledgeEntry{}
	for _, field := range []string{"title", "content"} {
		rows, err := s.entries.Query(ctx, func(q *postgrest.Query) {
			q.ILike(field, query).Order("title", true).Limit(s.matchCount)
		})
		if err != nil {
			s.logger.Warn(ctx, "knowledge substring search failed",
				logger.String("field", field), logger.Error(err))
			continue
		}
		for _, r := range rows {
			if seen[r.ID] || len(out) >= s.matchCount {
				continue
			}
			seen[r.ID] = true
			out = append(out, r)
		}
	}
	return out
}

// Summarize produces the non-generated answer listing entry titles.
func Summarize(entries []model.KnowledgeEntry) string {
	if len(entries) == 0 {
		return "No matching knowledge entries found."
	}
	titles := make([]string, 0, len(entries))
	for _, e := range entries {
		titles = append(titles, e.Title)
	}
	return "Relevant entries: " + strings.Join(titles, "; ")
}
