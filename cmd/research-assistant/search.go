// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/bibliography"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search academic sources for references",
	Long: `Search queries Semantic Scholar and SciELO (and optionally OpenAlex and
arXiv) concurrently. Results are interleaved across sources, deduplicated by
URL and title, and truncated to --max-results.

Use --save to append the results to a references file that bib can format.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := appConfig.Search

	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}
	author, _ := cmd.Flags().GetString("author")
	keywords, _ := cmd.Flags().GetString("keywords")

	q := search.Query{FreeText: queryText, Author: author}
	if keywords != "" {
		for _, kw := range strings.Split(keywords, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				q.Keywords = append(q.Keywords, kw)
			}
		}
	}
	if q.IsEmpty() {
		return fmt.Errorf("query required: provide a search query, --author, or --keywords")
	}

	if cmd.Flags().Changed("sources") {
		cfg.Sources, _ = cmd.Flags().GetStringSlice("sources")
	}
	if cmd.Flags().Changed("max-results") {
		cfg.MaxResults, _ = cmd.Flags().GetInt("max-results")
	}
	q.Limit = cfg.MaxResults

	backends, err := search.NewBackends(cfg, logger)
	if err != nil {
		return err
	}

	out, err := search.Search(cmd.Context(), q, backends, cfg, os.Stderr)
	if err != nil {
		return err
	}

	if savePath, _ := cmd.Flags().GetString("save"); savePath != "" {
		n, err := appendReferences(savePath, out.References)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%d referencias guardadas en %s (total: %d)\n", len(out.References), savePath, n)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	cslOutput, _ := cmd.Flags().GetBool("csl")
	switch {
	case jsonOutput:
		return search.FormatJSON(out, cmd.OutOrStdout())
	case cslOutput:
		return bibliography.FormatCSL(cmd.OutOrStdout(), out.References)
	default:
		search.FormatTable(out, cmd.OutOrStdout())
	}
	return nil
}

// appendReferences adds refs to the references file at path, creating it if
// needed, and returns the new total.
func appendReferences(path string, refs []types.Reference) (int, error) {
	file, err := bibliography.LoadReferences(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return 0, err
		}
		file = &types.ReferencesFile{Style: appConfig.Bibliography.Style}
	}
	file.References = append(file.References, refs...)
	if err := bibliography.SaveReferences(path, file); err != nil {
		return 0, err
	}
	return len(file.References), nil
}

func init() {
	searchCmd.Flags().String("query", "", "free-text research question")
	searchCmd.Flags().String("author", "", "filter by author name")
	searchCmd.Flags().String("keywords", "", "additional keywords (comma-separated)")
	searchCmd.Flags().StringSlice("sources", nil, "backends to query: semantic_scholar, scielo, openalex, arxiv")
	searchCmd.Flags().Int("max-results", 5, "maximum number of results per backend and overall")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("csl", false, "output results as CSL YAML for Pandoc")
	searchCmd.Flags().String("save", "", "append results to this references YAML file")

	rootCmd.AddCommand(searchCmd)
}
