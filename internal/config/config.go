// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreURL is the base URL of the relational store's REST interface,
	// e.g. "https://xyz.supabase.co/rest/v1".
	StoreURL string `koanf:"store_url"`

	// StoreKey is the static bearer credential for the store.
	StoreKey string `koanf:"store_key"`

	// DatabaseURL is the direct Postgres URL used only by cmd/migrate.
	DatabaseURL string `koanf:"database_url"`

	// StripeKey is the payments provider secret key. Empty disables revenue rollups.
	StripeKey string `koanf:"stripe_key"`

	// RevenueMonths is the number of calendar months in the revenue history.
	RevenueMonths int `koanf:"revenue_months"`

	// OpenAIKey enables embedding search for knowledge lookups.
	OpenAIKey      string `koanf:"openai_api_key"`
	EmbeddingModel string `koanf:"embedding_model"`

	// AnthropicKey enables generated answers for knowledge lookups.
	AnthropicKey string `koanf:"anthropic_api_key"`
	LLMModel     string `koanf:"llm_model"`

	// KnowledgeMatchCount bounds the number of knowledge entries used per answer.
	KnowledgeMatchCount int `koanf:"knowledge_match_count"`

	// AuthUser and AuthPassword form the shared Basic-Auth credential.
	AuthUser     string `koanf:"auth_user"`
	AuthPassword string `koanf:"auth_password"`

	// AuthDisabled turns the Basic-Auth check off (local development only).
	AuthDisabled bool `koanf:"auth_disabled"`

	// WorkspaceDir holds the markdown/CSV files exposed by the workspace endpoints.
	WorkspaceDir string `koanf:"workspace_dir"`

	// WorkspaceFiles is the allowlist of file names inside WorkspaceDir.
	WorkspaceFiles []string `koanf:"workspace_files"`

	// DefaultListLimit applies when a list request carries no limit.
	DefaultListLimit int `koanf:"default_list_limit"`

	// MaxListLimit caps ?limit on list endpoints.
	MaxListLimit int `koanf:"max_list_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":3000",
		RevenueMonths:       12,
		EmbeddingModel:      "text-embedding-3-small",
		LLMModel:            "claude-sonnet-4-5-20250929",
		KnowledgeMatchCount: 5,
		WorkspaceDir:        "./workspace",
		WorkspaceFiles: []string{
			"notes.md",
			"todo.md",
			"leads.csv",
		},
		DefaultListLimit: 100,
		MaxListLimit:     500,
	}
}

// AIEnabled reports whether any AI provider is configured.
func (c *Config) AIEnabled() bool {
	return c.OpenAIKey != "" || c.AnthropicKey != ""
}
