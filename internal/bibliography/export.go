// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibliography

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"go.yaml.in/yaml/v3"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// csvHeader matches the column names of the spreadsheet exports users
// already keep.
var csvHeader = []string{"titulo", "autor", "año", "publicacion", "url", "fuente"}

// WriteCSV writes refs as CSV with a header row.
func WriteCSV(w io.Writer, refs []types.Reference) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range refs {
		row := []string{r.Title, r.Author, r.YearOrNoDate(), r.Venue, r.URL, r.SourceName}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatBibTeX produces BibTeX entries for refs. Keys are the first
// author's family name plus year, with a letter suffix on collisions.
func FormatBibTeX(refs []types.Reference) string {
	var b strings.Builder
	used := make(map[string]int)
	for _, r := range refs {
		key := citationKey(r)
		used[key]++
		if n := used[key]; n > 1 {
			key += string(rune('a' + n - 2))
		}

		fmt.Fprintf(&b, "@article{%s,\n", key)
		fmt.Fprintf(&b, "  title = {%s},\n", r.Title)
		if authors := SplitAuthors(r.Author); len(authors) > 0 {
			fmt.Fprintf(&b, "  author = {%s},\n", strings.Join(authors, " and "))
		}
		if y := r.YearOrNoDate(); y != types.NoDate {
			fmt.Fprintf(&b, "  year = {%s},\n", y)
		}
		if r.Venue != "" {
			fmt.Fprintf(&b, "  journal = {%s},\n", r.Venue)
		}
		if r.URL != "" {
			fmt.Fprintf(&b, "  url = {%s},\n", r.URL)
		}
		fmt.Fprintf(&b, "}\n\n")
	}
	return b.String()
}

// citationKey builds an ASCII AuthorYear key, e.g. "Garcia2023".
func citationKey(r types.Reference) string {
	family := "Anon"
	if authors := SplitAuthors(r.Author); len(authors) > 0 {
		if f, _ := SplitName(authors[0]); f != "" {
			family = f
		}
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, family); err == nil {
		family = folded
	}
	family = strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return -1
	}, family)
	if family == "" {
		family = "Anon"
	}
	if y := r.YearOrNoDate(); y != types.NoDate {
		return family + y
	}
	return family + "ND"
}

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format, consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes refs as a CSL-YAML list to w.
func FormatCSL(w io.Writer, refs []types.Reference) error {
	items := make([]CSLItem, len(refs))
	for i, r := range refs {
		items[i] = toCSLItem(r, i)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

func toCSLItem(r types.Reference, idx int) CSLItem {
	item := CSLItem{
		ID:             fmt.Sprintf("ref%d", idx+1),
		Type:           "article-journal",
		Title:          r.Title,
		ContainerTitle: r.Venue,
		URL:            r.URL,
	}
	for _, a := range SplitAuthors(r.Author) {
		item.Author = append(item.Author, parseAuthorName(a))
	}
	if year, err := strconv.Atoi(r.YearOrNoDate()); err == nil {
		item.Issued = &CSLDate{DateParts: [][]int{{year}}}
	}
	if i := strings.Index(r.URL, "doi.org/"); i >= 0 {
		item.DOI = r.URL[i+len("doi.org/"):]
	}
	return item
}

// parseAuthorName splits one author into CSL family/given parts. "Family, I."
// splits on the comma; "Given Family" splits on the last space; a single
// token uses the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	if i := strings.Index(name, ","); i >= 0 {
		return CSLName{
			Family: strings.TrimSpace(name[:i]),
			Given:  strings.TrimSpace(name[i+1:]),
		}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
