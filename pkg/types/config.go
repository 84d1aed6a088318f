// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// HTTPConfig holds shared HTTP settings used by collaborators that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout" validate:"gte=0"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-assistant/0.1").
	UserAgent string `mapstructure:"user_agent" json:"user_agent" yaml:"user_agent"`
}

// Search backend names accepted in SearchConfig.Sources.
const (
	SourceSemanticScholar = "semantic_scholar"
	SourceSciELO          = "scielo"
	SourceOpenAlex        = "openalex"
	SourceArxiv           = "arxiv"
)

// SearchConfig holds settings for the reference search.
type SearchConfig struct {
	HTTPConfig `mapstructure:",squash" yaml:",inline"`

	// MaxResults is the number of references requested from each backend (default 5).
	MaxResults int `mapstructure:"max_results" json:"max_results" yaml:"max_results" validate:"gte=1,lte=200"`

	// Sources lists the enabled backends in query order.
	Sources []string `mapstructure:"sources" json:"sources" yaml:"sources" validate:"dive,oneof=semantic_scholar scielo openalex arxiv"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `mapstructure:"semantic_scholar_api_key" json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// OpenAlexEmail is sent as mailto for the OpenAlex polite pool.
	OpenAlexEmail string `mapstructure:"openalex_email" json:"openalex_email,omitempty" yaml:"openalex_email,omitempty"`

	// InterBackendDelay staggers the start of consecutive backends (default 500ms).
	InterBackendDelay time.Duration `mapstructure:"inter_backend_delay" json:"inter_backend_delay" yaml:"inter_backend_delay" validate:"gte=0"`

	// CacheTTL is how long identical queries are answered from memory (0 disables).
	CacheTTL time.Duration `mapstructure:"cache_ttl" json:"cache_ttl" yaml:"cache_ttl" validate:"gte=0"`
}

// Generation providers accepted in AIConfig.Provider.
const (
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
	ProviderNone   = "none"
)

// AIConfig holds settings for the generation backend.
type AIConfig struct {
	// Provider selects the backend: gemini, claude, or none (offline only).
	Provider string `mapstructure:"provider" json:"provider" yaml:"provider" validate:"oneof=gemini claude none"`

	// Model is the model identifier (e.g. "gemini-2.5-flash").
	Model string `mapstructure:"model" json:"model" yaml:"model"`

	// APIKey is the authentication key for the provider.
	APIKey string `mapstructure:"api_key" json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Temperature is the sampling temperature (default 0.3).
	Temperature float32 `mapstructure:"temperature" json:"temperature" yaml:"temperature" validate:"gte=0,lte=2"`

	// MaxRetries is the number of retry attempts before falling back offline (default 2).
	MaxRetries int `mapstructure:"max_retries" json:"max_retries" yaml:"max_retries" validate:"gte=0,lte=10"`

	// Timeout bounds a single generation call.
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout" validate:"gte=0"`
}

// GenerationConfig holds settings for document composition.
type GenerationConfig struct {
	AIConfig `mapstructure:",squash" yaml:",inline"`

	// Language selects the offline template set: es or en.
	Language Language `mapstructure:"language" json:"language" yaml:"language" validate:"oneof=es en"`

	// Offline skips the generation backend entirely.
	Offline bool `mapstructure:"offline" json:"offline" yaml:"offline"`
}

// BibliographyConfig holds settings for citation formatting.
type BibliographyConfig struct {
	// Style is the default citation style: APA, UPEL, or anything else for the minimal form.
	Style string `mapstructure:"style" json:"style" yaml:"style" validate:"required"`

	// ReferencesFile is the default references.yaml path.
	ReferencesFile string `mapstructure:"references_file" json:"references_file" yaml:"references_file"`
}

// HistoryConfig holds settings for the session history store.
type HistoryConfig struct {
	// Enabled turns on the SQLite journal.
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`

	// DBPath is the SQLite database file.
	DBPath string `mapstructure:"db_path" json:"db_path" yaml:"db_path" validate:"required_if=Enabled true"`

	// MaxResults is the default limit for history searches (default 20).
	MaxResults int `mapstructure:"max_results" json:"max_results" yaml:"max_results" validate:"gte=0"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	Level string `mapstructure:"level" json:"level" yaml:"level" validate:"oneof=debug info warn error"`

	// File, when set, receives JSON logs with rotation.
	File string `mapstructure:"file" json:"file,omitempty" yaml:"file,omitempty"`
}

// AssistantConfig groups every section of research-assistant.yaml.
type AssistantConfig struct {
	Search       SearchConfig       `mapstructure:"search" json:"search" yaml:"search"`
	Generation   GenerationConfig   `mapstructure:"generation" json:"generation" yaml:"generation"`
	Bibliography BibliographyConfig `mapstructure:"bibliography" json:"bibliography" yaml:"bibliography"`
	History      HistoryConfig      `mapstructure:"history" json:"history" yaml:"history"`
	Log          LogConfig          `mapstructure:"log" json:"log" yaml:"log"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and returns one error listing every
// violation.
func (c AssistantConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// DefaultAssistantConfig returns the settings used when no config file or
// environment override is present.
func DefaultAssistantConfig() AssistantConfig {
	return AssistantConfig{
		Search: SearchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "research-assistant/0.1",
			},
			MaxResults:        5,
			Sources:           []string{SourceSemanticScholar, SourceSciELO},
			InterBackendDelay: 500 * time.Millisecond,
			CacheTTL:          30 * time.Minute,
		},
		Generation: GenerationConfig{
			AIConfig: AIConfig{
				Provider:    ProviderGemini,
				Model:       "gemini-2.5-flash",
				Temperature: 0.3,
				MaxRetries:  2,
				Timeout:     90 * time.Second,
			},
			Language: LanguageSpanish,
		},
		Bibliography: BibliographyConfig{
			Style:          "APA",
			ReferencesFile: "references.yaml",
		},
		History: HistoryConfig{
			DBPath:     "research-assistant.db",
			MaxResults: 20,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}
