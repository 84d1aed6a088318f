// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/bibliography"
	"github.com/pdiddy/research-assistant/internal/history"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse, search, and export stored sessions",
	Long: `History reads the SQLite journal written by chat and ask --session.
Turns are indexed for full-text search when sqlite3 is built with FTS5.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		sessions, err := store.Sessions(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return writeJSON(cmd, sessions)
		}
		if len(sessions) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No hay sesiones guardadas.")
			return nil
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-36s  %-20s  %-6s  %s\n", "ID", "Actualizada", "Turnos", "Primera solicitud")
		fmt.Fprintln(w, strings.Repeat("-", 110))
		for _, s := range sessions {
			fmt.Fprintf(w, "%-36s  %-20s  %-6d  %s\n", s.ID, shortTime(s.UpdatedAt), s.Turns, clip(s.FirstUtterance, 45))
		}
		return nil
	},
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print a session's conversation and references",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		sess, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		var b strings.Builder
		fmt.Fprintf(&b, "# Sesión %s\n\n", sess.ID)
		if sess.Context != "" {
			fmt.Fprintf(&b, "**Contexto:** %s\n\n", sess.Context)
		}
		for _, t := range sess.Turns {
			switch t.Role {
			case types.RoleUser:
				fmt.Fprintf(&b, "> %s\n\n", t.Content)
			default:
				fmt.Fprintf(&b, "%s\n\n---\n\n", t.Content)
			}
		}
		if len(sess.References) > 0 {
			b.WriteString("## Referencias\n\n")
			b.WriteString(bibliography.FormatBibliography(sess.References, sess.Style))
			b.WriteString("\n")
		}

		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			fmt.Fprint(cmd.OutOrStdout(), b.String())
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), renderMarkdown(b.String(), 100))
		return nil
	},
}

// --- search subcommand ---

var historySearchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Full-text search over stored turns",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		role, _ := cmd.Flags().GetString("role")
		category, _ := cmd.Flags().GetString("category")
		sessionID, _ := cmd.Flags().GetString("session")
		limit, _ := cmd.Flags().GetInt("limit")

		results, err := store.Search(cmd.Context(), history.QueryOptions{
			Query:      strings.Join(args, " "),
			SessionID:  sessionID,
			Role:       types.Role(role),
			Category:   types.Category(category),
			MaxResults: limit,
		})
		if err != nil {
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return writeJSON(cmd, results)
		}
		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Sin resultados.")
			return nil
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-36s  %-4s  %-9s  %-17s  %s\n", "Sesión", "#", "Rol", "Categoría", "Contenido")
		fmt.Fprintln(w, strings.Repeat("-", 120))
		for _, r := range results {
			fmt.Fprintf(w, "%-36s  %-4d  %-9s  %-17s  %s\n",
				r.SessionID, r.Seq, r.Role, r.Category, clip(firstLine(r.Content), 45))
		}
		fmt.Fprintf(w, "\n%d resultados\n", len(results))
		return nil
	},
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export ID",
	Short: "Export a session to YAML or JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		w := cmd.OutOrStdout()
		if outPath, _ := cmd.Flags().GetString("out"); outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating output: %w", err)
			}
			defer f.Close()
			w = f
		}

		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "yaml", "":
			return store.ExportYAML(cmd.Context(), w, args[0])
		case "json":
			return store.ExportJSON(cmd.Context(), w, args[0])
		default:
			return fmt.Errorf("unsupported format %q: use yaml or json", format)
		}
	},
}

// --- delete subcommand ---

var historyDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Remove a session and its turns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Sesión eliminada:", args[0])
		return nil
	},
}

// --- shared helpers ---

func openHistory(cmd *cobra.Command) (*history.Store, error) {
	cfg := appConfig.History
	if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	cfg.Enabled = true
	return history.Open(cfg)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// shortTime trims a stored timestamp to minutes.
func shortTime(ts string) string {
	if len(ts) >= 16 {
		return strings.Replace(ts[:16], "T", " ", 1)
	}
	return ts
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}

// clip shortens s to max runes.
func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func init() {
	historyCmd.PersistentFlags().String("db", "", "history database (default from config)")

	historyListCmd.Flags().Int("limit", 0, "maximum sessions (0 = use default)")
	historyListCmd.Flags().Bool("json", false, "output as JSON")

	historyShowCmd.Flags().Bool("raw", false, "print plain Markdown")

	historySearchCmd.Flags().String("role", "", "filter by role: user or assistant")
	historySearchCmd.Flags().String("category", "", "filter by category, e.g. problem_statement")
	historySearchCmd.Flags().String("session", "", "restrict to one session ID")
	historySearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	historySearchCmd.Flags().Bool("json", false, "output as JSON")

	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	historyExportCmd.Flags().String("out", "", "write to this file instead of stdout")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyDeleteCmd)

	rootCmd.AddCommand(historyCmd)
}
