// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries academic sources and returns merged, deduplicated
// references.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// Backend searches a single academic source.
type Backend interface {
	Name() string
	Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.Reference, error)
}

// Query holds the search parameters.
type Query struct {
	FreeText string
	Author   string
	Keywords []string

	// Limit caps the merged result list. Zero keeps everything.
	Limit int
}

// IsEmpty reports whether the query contains no searchable terms.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.Text()) == ""
}

// Text combines the query fields into one search string.
func (q Query) Text() string {
	var parts []string
	if s := strings.TrimSpace(q.FreeText); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(q.Author); s != "" {
		parts = append(parts, s)
	}
	for _, kw := range q.Keywords {
		if s := strings.TrimSpace(kw); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Output holds the merged references and per-backend failures.
type Output struct {
	References    []types.Reference `json:"references"`
	DupsRemoved   int               `json:"dups_removed"`
	BackendErrors []string          `json:"backend_errors,omitempty"`
}

// Search fans the query out to all backends concurrently, interleaves their
// results in backend order, deduplicates, and truncates to query.Limit. A
// failing backend is reported in BackendErrors and as a warning on w; the
// other backends' results are still returned.
func Search(ctx context.Context, query Query, backends []Backend, cfg types.SearchConfig, w io.Writer) (Output, error) {
	if query.IsEmpty() {
		return Output{}, fmt.Errorf("query is empty: provide a topic or keywords")
	}
	if len(backends) == 0 {
		return Output{}, fmt.Errorf("no search backends configured")
	}

	results := make([][]types.Reference, len(backends))
	errs := make([]error, len(backends))

	var g errgroup.Group
	for i, b := range backends {
		if i > 0 && cfg.InterBackendDelay > 0 {
			select {
			case <-ctx.Done():
				errs[i] = ctx.Err()
				continue
			case <-time.After(cfg.InterBackendDelay):
			}
		}
		g.Go(func() error {
			results[i], errs[i] = b.Search(ctx, query, cfg)
			return nil
		})
	}
	_ = g.Wait()

	var out Output
	for i, err := range errs {
		if err != nil {
			name := backends[i].Name()
			out.BackendErrors = append(out.BackendErrors, fmt.Sprintf("%s: %v", name, err))
			fmt.Fprintf(w, "warning: backend %s failed: %v\n", name, err)
			results[i] = nil
		}
	}

	merged, removed := deduplicate(interleave(results))
	if query.Limit > 0 && len(merged) > query.Limit {
		merged = merged[:query.Limit]
	}
	out.References = merged
	out.DupsRemoved = removed
	return out, nil
}

// interleave takes one result from each backend in turn so a truncated list
// still represents every source.
func interleave(lists [][]types.Reference) []types.Reference {
	var out []types.Reference
	for i := 0; ; i++ {
		added := false
		for _, l := range lists {
			if i < len(l) {
				out = append(out, l[i])
				added = true
			}
		}
		if !added {
			return out
		}
	}
}

// deduplicate merges references that share a URL or normalized title.
func deduplicate(refs []types.Reference) ([]types.Reference, int) {
	seen := make(map[string]int) // dedup key → index in deduped
	var deduped []types.Reference
	removed := 0

	for _, r := range refs {
		keys := dedupKeys(r)
		dup := -1
		for _, k := range keys {
			if idx, ok := seen[k]; ok {
				dup = idx
				break
			}
		}
		if dup >= 0 {
			mergeInto(&deduped[dup], r)
			removed++
			for _, k := range dedupKeys(deduped[dup]) {
				seen[k] = dup
			}
			continue
		}

		idx := len(deduped)
		deduped = append(deduped, r)
		for _, k := range keys {
			seen[k] = idx
		}
	}
	return deduped, removed
}

func dedupKeys(r types.Reference) []string {
	var keys []string
	if u := normalizeURL(r.URL); u != "" {
		keys = append(keys, "url:"+u)
	}
	if t := normalizeTitle(r.Title); t != "" {
		keys = append(keys, "title:"+t)
	}
	return keys
}

// mergeInto fills empty fields of dst from src and records both sources.
func mergeInto(dst *types.Reference, src types.Reference) {
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if dst.Author == "" {
		dst.Author = src.Author
	}
	if (dst.Year == "" || dst.Year == types.NoDate) && src.Year != "" {
		dst.Year = src.Year
	}
	if dst.Venue == "" {
		dst.Venue = src.Venue
	}
	if dst.URL == "" {
		dst.URL = src.URL
	}
	if src.SourceName != "" && !strings.Contains(dst.SourceName, src.SourceName) {
		if dst.SourceName == "" {
			dst.SourceName = src.SourceName
		} else {
			dst.SourceName += ", " + src.SourceName
		}
	}
}

// normalizeTitle returns a lowercased, punctuation-stripped version of the title.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func normalizeURL(u string) string {
	u = strings.ToLower(strings.TrimSpace(u))
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	return strings.TrimSuffix(u, "/")
}

// FormatTable writes references as a human-readable table to w.
func FormatTable(out Output, w io.Writer) {
	if len(out.References) == 0 {
		fmt.Fprintln(w, "No se encontraron referencias.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-50s  %-24s  %-6s  %s\n",
		"#", "Título", "Autor", "Año", "Fuente")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, r := range out.References {
		fmt.Fprintf(w, "%-4d  %-50s  %-24s  %-6s  %s\n",
			i+1, truncate(r.Title, 50), truncate(r.Author, 24), r.YearOrNoDate(), r.SourceName)
	}

	fmt.Fprintf(w, "\n%d referencias", len(out.References))
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicados eliminados)", out.DupsRemoved)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes the references as indented JSON to w.
func FormatJSON(out Output, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out.References)
}

// truncate shortens s to max runes, marking the cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
