// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/assistant"
	"github.com/pdiddy/research-assistant/internal/history"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var askCmd = &cobra.Command{
	Use:   "ask [text...]",
	Short: "Answer one research request",
	Long: `Ask classifies a request (problem statement, objectives, methodology,
variables, summary, or general), extracts its topic, and prints the
generated Markdown document.

Example:
  research-assistant ask "Formula el planteamiento del problema sobre competencias digitales"

With --session the turn is appended to a stored session and the session's
context and references feed the generation prompt.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := appConfig
	applyGenerationFlags(cmd, &cfg.Generation)

	researchContext, _ := cmd.Flags().GetString("context")
	sessionID, _ := cmd.Flags().GetString("session")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	raw, _ := cmd.Flags().GetBool("raw")

	var journal *history.Store
	closeJournal := func() {}
	if sessionID != "" {
		cfg.History.Enabled = true
		journal, closeJournal = openJournal(cfg.History)
	}
	defer closeJournal()

	sess := assistant.NewSession(cfg.Generation.Language, cfg.Bibliography.Style, researchContext)
	if journal != nil {
		loaded, err := journal.Load(ctx, sessionID)
		switch {
		case err == nil:
			sess = loaded
			if researchContext != "" {
				sess.Context = researchContext
			}
			if cmd.Flags().Changed("lang") {
				sess.Language = cfg.Generation.Language
			}
		case errors.Is(err, history.ErrNotFound):
			sess.ID = sessionID
			if err := journal.SaveSession(ctx, sess); err != nil {
				logger.Warn("saving new session failed", zap.Error(err))
			}
		default:
			return err
		}
	}

	a := newAssistant(ctx, cfg, journal)
	doc := a.Ask(ctx, sess, strings.Join(args, " "))

	if doc.Degraded() {
		fmt.Fprintf(os.Stderr, "nota: documento generado con plantilla offline (%s)\n", doc.FallbackReason)
	}

	switch {
	case jsonOutput:
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case raw:
		fmt.Fprintln(cmd.OutOrStdout(), doc.Markdown)
	default:
		fmt.Fprint(cmd.OutOrStdout(), renderMarkdown(doc.Markdown, 100))
	}
	return nil
}

// applyGenerationFlags lets per-command flags override the config file.
func applyGenerationFlags(cmd *cobra.Command, g *types.GenerationConfig) {
	if cmd.Flags().Changed("lang") {
		lang, _ := cmd.Flags().GetString("lang")
		g.Language = types.Language(lang)
	}
	if cmd.Flags().Changed("offline") {
		g.Offline, _ = cmd.Flags().GetBool("offline")
	}
	if cmd.Flags().Changed("provider") {
		g.Provider, _ = cmd.Flags().GetString("provider")
		g.APIKey = ""
		g.Model = ""
		cfg := types.AssistantConfig{Generation: *g}
		applySecrets(&cfg, loadedSecrets)
		*g = cfg.Generation
	}
}

func addGenerationFlags(cmd *cobra.Command) {
	cmd.Flags().String("lang", "es", "template language: es or en")
	cmd.Flags().Bool("offline", false, "skip the generation backend and use offline templates")
	cmd.Flags().String("provider", "", "generation backend: gemini, claude, or none")
}

func init() {
	askCmd.Flags().String("context", "", "research context, e.g. \"educación superior\"")
	askCmd.Flags().String("session", "", "append to a stored session (creates it if missing)")
	askCmd.Flags().Bool("json", false, "print the document as JSON, including source and fallback reason")
	askCmd.Flags().Bool("raw", false, "print plain Markdown without terminal styling")
	addGenerationFlags(askCmd)

	rootCmd.AddCommand(askCmd)
}
