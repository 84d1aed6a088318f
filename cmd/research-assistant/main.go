// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-assistant CLI.
// Commands: ask, classify, search, bib, chat, history, config, version.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/logging"
	"github.com/pdiddy/research-assistant/internal/secrets"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Loaded once per invocation by the root PersistentPreRunE.
var (
	loadedSecrets secrets.Store
	appConfig     types.AssistantConfig
	logger        = zap.NewNop()
)

// rootCmd is the base command for the research-assistant CLI.
var rootCmd = &cobra.Command{
	Use:   "research-assistant",
	Short: "Asistente de investigación académica en español",
	Long: `research-assistant turns research requests written in Spanish (or English)
into structured academic drafts: problem statements, objectives,
methodology, variables, and summaries. It searches Semantic Scholar, SciELO,
OpenAlex, and arXiv for references and formats bibliographies in APA or UPEL.

When no generation backend is reachable every document falls back to an
offline template, marked with source "offline".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		envFile, _ := cmd.Flags().GetString("env-file")
		s, err := secrets.Resolve(secretsDir, envFile)
		if err != nil {
			return err
		}
		loadedSecrets = s

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		appConfig = cfg

		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := logging.New(logging.FromConfig(cfg.Log, verbose))
		if err != nil {
			return err
		}
		logger = l

		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./research-assistant.yaml or ~/.config/research-assistant/research-assistant.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of key files (gemini-api-key, anthropic-api-key, ...)")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file with API keys")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging on stderr")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
