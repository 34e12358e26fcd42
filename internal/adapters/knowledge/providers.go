package knowledge

import (
	"context"
	"fmt"
	"strings"
	"time"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"

	"github.com/okian/mission-control/internal/domain/model"
	"github.com/okian/mission-control/pkg/metrics"
)

const answerMaxTokens = 800

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Answerer writes an answer to question grounded on entries.
type Answerer interface {
	Answer(ctx context.Context, question string, entries []model.KnowledgeEntry) (string, error)
}

// OpenAIEmbedder embeds text with the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEmbedder returns nil when key is empty. baseURL may be empty.
func NewOpenAIEmbedder(key, embeddingModel, baseURL string) *OpenAIEmbedder {
	if key == "" {
		return nil
	}
	cfg := openai.DefaultConfig(key)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	return &OpenAIEmbedder{client: openai.NewClientWithConfig(cfg), model: embeddingModel}
}

// Embed implements Embedder.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	observe("embedding", "create_embedding", start, err)
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, ErrNoEmbedding
	}
	return resp.Data[0].Embedding, nil
}

// AnthropicAnswerer answers with the Anthropic messages API.
type AnthropicAnswerer struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicAnswerer returns nil when key is empty. baseURL may be empty.
func NewAnthropicAnswerer(key, llmModel, baseURL string) *AnthropicAnswerer {
	if key == "" {
		return nil
	}
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &AnthropicAnswerer{client: anthropic.NewClient(key, opts...), model: llmModel}
}

// Answer implements Answerer.
func (a *AnthropicAnswerer) Answer(ctx context.Context, question string, entries []model.KnowledgeEntry) (string, error) {
	prompt := BuildPrompt(question, entries)
	start := time.Now()
	resp, err := a.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(a.model),
		MaxTokens: answerMaxTokens,
		System:    "You answer questions for an operations team using only the provided knowledge entries. Be brief. Say so when the entries do not cover the question.",
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	observe("llm", "create_message", start, err)
	if err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil && strings.TrimSpace(*block.Text) != "" {
			return strings.TrimSpace(*block.Text), nil
		}
	}
	return "", ErrEmptyAnswer
}

// BuildPrompt renders the question and numbered entries.
func BuildPrompt(question string, entries []model.KnowledgeEntry) string {
	var b strings.Builder
	b.WriteString("Knowledge entries:\n")
	if len(entries) == 0 {
		b.WriteString("(none)\n")
	}
	for i, e := range entries {
		fmt.Fprintf(&b, "\n[%d] %s\n%s\n", i+1, e.Title, e.Content)
	}
	fmt.Fprintf(&b, "\nQuestion: %s\n", question)
	return b.String()
}

func observe(target, op string, start time.Time, err error) {
	metrics.RecordUpstreamLatency(target, op, float64(time.Since(start).Milliseconds()))
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.RecordUpstreamCall(target, op, outcome)
}
