// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/internal/secrets"
	"github.com/pdiddy/research-assistant/pkg/types"
)

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-assistant")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-assistant"))
		}
	}

	viper.SetEnvPrefix("RESEARCH_ASSISTANT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	registerDefaults(types.DefaultAssistantConfig())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// registerDefaults makes every key known to viper so AutomaticEnv can
// override it and Unmarshal sees the defaults.
func registerDefaults(d types.AssistantConfig) {
	viper.SetDefault("search.timeout", d.Search.Timeout)
	viper.SetDefault("search.user_agent", d.Search.UserAgent)
	viper.SetDefault("search.max_results", d.Search.MaxResults)
	viper.SetDefault("search.sources", d.Search.Sources)
	viper.SetDefault("search.semantic_scholar_api_key", "")
	viper.SetDefault("search.openalex_email", "")
	viper.SetDefault("search.inter_backend_delay", d.Search.InterBackendDelay)
	viper.SetDefault("search.cache_ttl", d.Search.CacheTTL)

	viper.SetDefault("generation.provider", d.Generation.Provider)
	viper.SetDefault("generation.model", d.Generation.Model)
	viper.SetDefault("generation.api_key", "")
	viper.SetDefault("generation.temperature", d.Generation.Temperature)
	viper.SetDefault("generation.max_retries", d.Generation.MaxRetries)
	viper.SetDefault("generation.timeout", d.Generation.Timeout)
	viper.SetDefault("generation.language", string(d.Generation.Language))
	viper.SetDefault("generation.offline", d.Generation.Offline)

	viper.SetDefault("bibliography.style", d.Bibliography.Style)
	viper.SetDefault("bibliography.references_file", d.Bibliography.ReferencesFile)

	viper.SetDefault("history.enabled", d.History.Enabled)
	viper.SetDefault("history.db_path", d.History.DBPath)
	viper.SetDefault("history.max_results", d.History.MaxResults)

	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.file", d.Log.File)
}

// loadConfig decodes viper state, fills credentials from secrets, and
// validates the result.
func loadConfig() (types.AssistantConfig, error) {
	var cfg types.AssistantConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	applySecrets(&cfg, loadedSecrets)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applySecrets fills credentials the config left empty.
func applySecrets(cfg *types.AssistantConfig, s secrets.Store) {
	if cfg.Generation.APIKey == "" {
		switch cfg.Generation.Provider {
		case types.ProviderGemini:
			cfg.Generation.APIKey = s.Get(secrets.KeyGemini)
		case types.ProviderClaude:
			cfg.Generation.APIKey = s.Get(secrets.KeyAnthropic)
		}
	}
	if cfg.Search.SemanticScholarAPIKey == "" {
		cfg.Search.SemanticScholarAPIKey = s.Get(secrets.KeySemanticScholar)
	}
	if cfg.Search.OpenAlexEmail == "" {
		cfg.Search.OpenAlexEmail = s.Get(secrets.KeyOpenAlexEmail)
	}
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Config prints the configuration after merging defaults, the config
file, and RESEARCH_ASSISTANT_* environment variables. Credentials are
redacted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig
		cfg.Generation.APIKey = redact(cfg.Generation.APIKey)
		cfg.Search.SemanticScholarAPIKey = redact(cfg.Search.SemanticScholarAPIKey)

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	},
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}

func init() {
	rootCmd.AddCommand(configCmd)
}
