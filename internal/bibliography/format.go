// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bibliography formats references as citations and reads and
// writes reference files.
//
// The formatters never fail. Missing fields are omitted and a missing year
// becomes "n.d.". FormatBibliography keeps the input order; callers that
// need alphabetical order call SortByAuthor first.
package bibliography

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// Citation styles with dedicated formats. Any other value gets the minimal
// "Author, Year, Title" form.
const (
	StyleAPA  = "APA"
	StyleUPEL = "UPEL"
)

// FormatCitation renders one reference in the given style. Style matching
// is case-insensitive.
func FormatCitation(ref types.Reference, style string) string {
	author := strings.TrimSpace(ref.Author)
	year := ref.YearOrNoDate()
	title := strings.TrimSpace(ref.Title)
	venue := strings.TrimSpace(ref.Venue)
	url := strings.TrimSpace(ref.URL)

	var parts []string
	switch strings.ToUpper(strings.TrimSpace(style)) {
	case StyleAPA:
		parts = append(parts, author+" ("+year+")")
		if title != "" {
			parts = append(parts, title+".")
		}
		if venue != "" {
			parts = append(parts, venue+".")
		}
		if url != "" {
			parts = append(parts, "Recuperado de "+url)
		}
	case StyleUPEL:
		parts = append(parts, author+". ("+year+").")
		if title != "" {
			parts = append(parts, title+".")
		}
		if venue != "" {
			parts = append(parts, venue+".")
		}
		if url != "" {
			parts = append(parts, "Disponible en: "+url)
		}
	default:
		var fields []string
		for _, f := range []string{author, year, title} {
			if f != "" {
				fields = append(fields, f)
			}
		}
		parts = append(parts, strings.Join(fields, ", "))
	}
	return collapseSpace(strings.Join(parts, " "))
}

// FormatBibliography renders refs in order, separated by a blank line. An
// empty list yields "".
func FormatBibliography(refs []types.Reference, style string) string {
	citations := make([]string, 0, len(refs))
	for _, r := range refs {
		citations = append(citations, FormatCitation(r, style))
	}
	return strings.Join(citations, "\n\n")
}

// SortByAuthor returns a copy of refs ordered by author with Spanish
// collation, so "Álvarez" sorts between "Alonso" and "Amaya". Ties keep
// their input order.
func SortByAuthor(refs []types.Reference) []types.Reference {
	out := make([]types.Reference, len(refs))
	copy(out, refs)
	col := collate.New(language.Spanish, collate.IgnoreCase, collate.IgnoreDiacritics)
	sort.SliceStable(out, func(i, j int) bool {
		return col.CompareString(strings.TrimSpace(out[i].Author), strings.TrimSpace(out[j].Author)) < 0
	})
	return out
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
