// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibliography

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

var garcia = types.Reference{
	Author: "García, M.",
	Year:   "2023",
	Title:  "Estudio X",
	Venue:  "Revista Y",
	URL:    "https://example.com/a",
}

func TestFormatCitationAPAOrder(t *testing.T) {
	got := FormatCitation(garcia, "APA")
	assert.Equal(t, "García, M. (2023) Estudio X. Revista Y. Recuperado de https://example.com/a", got)

	author := strings.Index(got, "García, M. (2023)")
	title := strings.Index(got, "Estudio X.")
	venue := strings.Index(got, "Revista Y.")
	url := strings.Index(got, "Recuperado de https://example.com/a")
	assert.True(t, author == 0 && author < title && title < venue && venue < url)
}

func TestFormatBibliographyUPELScenario(t *testing.T) {
	got := FormatBibliography([]types.Reference{garcia}, "UPEL")
	assert.Equal(t, "García, M.. (2023). Estudio X. Revista Y. Disponible en: https://example.com/a", got)
}

func TestFormatCitationStyles(t *testing.T) {
	tests := []struct {
		name  string
		ref   types.Reference
		style string
		want  string
	}{
		{"apa lowercase style", garcia, "apa", "García, M. (2023) Estudio X. Revista Y. Recuperado de https://example.com/a"},
		{"apa missing year", types.Reference{Author: "Pérez, A.", Title: "T"}, "APA", "Pérez, A. (n.d.) T."},
		{"apa only author", types.Reference{Author: "Pérez, A.", Year: "2020"}, "APA", "Pérez, A. (2020)"},
		{"upel no url", types.Reference{Author: "Ruiz, L.", Year: "2019", Title: "T", Venue: "V"}, "UPEL", "Ruiz, L.. (2019). T. V."},
		{"minimal", garcia, "MLA", "García, M., 2023, Estudio X"},
		{"minimal no title", types.Reference{Author: "Ruiz, L."}, "", "Ruiz, L., n.d."},
		{"whitespace collapsed", types.Reference{Author: "  García,   M. ", Year: " 2023 ", Title: "Estudio\n  X"}, "APA", "García, M. (2023) Estudio X."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCitation(tt.ref, tt.style))
		})
	}
}

func TestFormatBibliographyEmpty(t *testing.T) {
	for _, style := range []string{"APA", "UPEL", "other", ""} {
		assert.Equal(t, "", FormatBibliography(nil, style))
		assert.Equal(t, "", FormatBibliography([]types.Reference{}, style))
	}
}

func TestFormatBibliographyKeepsOrder(t *testing.T) {
	refs := []types.Reference{
		{Author: "Zambrano, P.", Year: "2020"},
		{Author: "Alonso, R.", Year: "2021"},
	}
	got := FormatBibliography(refs, "APA")
	assert.Equal(t, "Zambrano, P. (2020)\n\nAlonso, R. (2021)", got)
}

func TestSortByAuthor(t *testing.T) {
	refs := []types.Reference{
		{Author: "Amaya, C."},
		{Author: "Álvarez, B."},
		{Author: "alonso, A."},
		{Author: "Zambrano, D."},
	}
	sorted := SortByAuthor(refs)

	var got []string
	for _, r := range sorted {
		got = append(got, r.Author)
	}
	assert.Equal(t, []string{"alonso, A.", "Álvarez, B.", "Amaya, C.", "Zambrano, D."}, got)
	assert.Equal(t, "Amaya, C.", refs[0].Author, "input must not be reordered")
}

func TestJoinAuthors(t *testing.T) {
	assert.Equal(t, "", JoinAuthors(nil))
	assert.Equal(t, "Pérez, A.", JoinAuthors([]string{"Ana Pérez"}))
	assert.Equal(t, "Pérez, A., & Gómez, J. L.", JoinAuthors([]string{"Ana Pérez", "Gómez, José Luis"}))
	assert.Equal(t, "Pérez, A., Gómez, J., & Smith", JoinAuthors([]string{"Ana Pérez", "Juan Gómez", "Smith", "  "}))

	var many []string
	for i := 0; i < 25; i++ {
		many = append(many, "Author"+string(rune('A'+i))+" X")
	}
	got := JoinAuthors(many)
	assert.True(t, strings.HasSuffix(got, ", ... X, A."), got)
	assert.Equal(t, 19, strings.Count(strings.Split(got, "...")[0], "X, "))
}

func TestSplitAuthors(t *testing.T) {
	assert.Equal(t, []string{"Pérez, A.", "Gómez, J. L."}, SplitAuthors("Pérez, A., & Gómez, J. L."))
	assert.Equal(t, []string{"Juan Pérez", "María Gómez"}, SplitAuthors("Juan Pérez; María Gómez"))
	assert.Equal(t, []string{"García, M."}, SplitAuthors("García, M."))
	assert.Empty(t, SplitAuthors(""))
}

func TestReferencesRoundTripFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "references.yaml")
	in := &types.ReferencesFile{Style: "UPEL", References: []types.Reference{garcia}}

	require.NoError(t, SaveReferences(path, in))
	out, err := LoadReferences(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadReferencesErrors(t *testing.T) {
	_, err := LoadReferences(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading references")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	refs := []types.Reference{garcia, {Title: "Sin año, con coma", SourceName: "SciELO"}}
	require.NoError(t, WriteCSV(&buf, refs))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"titulo", "autor", "año", "publicacion", "url", "fuente"}, rows[0])
	assert.Equal(t, []string{"Estudio X", "García, M.", "2023", "Revista Y", "https://example.com/a", ""}, rows[1])
	assert.Equal(t, []string{"Sin año, con coma", "", "n.d.", "", "", "SciELO"}, rows[2])
}

func TestFormatBibTeX(t *testing.T) {
	refs := []types.Reference{
		garcia,
		{Author: "García, L.", Year: "2023", Title: "Otro"},
		{Title: "Anónimo"},
	}
	got := FormatBibTeX(refs)

	assert.Contains(t, got, "@article{Garcia2023,")
	assert.Contains(t, got, "@article{Garcia2023a,")
	assert.Contains(t, got, "@article{AnonND,")
	assert.Contains(t, got, "author = {García, M.},")
	assert.Contains(t, got, "journal = {Revista Y},")
	assert.Equal(t, 2, strings.Count(got, "year = {2023}"))
}

func TestFormatCSL(t *testing.T) {
	refs := []types.Reference{
		{Author: "Pérez, A., & Gómez, J.", Year: "2021", Title: "T", Venue: "V", URL: "https://doi.org/10.1/xyz"},
		{Author: "Colectivo", Title: "U"},
	}
	var buf bytes.Buffer
	require.NoError(t, FormatCSL(&buf, refs))

	var items []CSLItem
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &items))
	require.Len(t, items, 2)

	assert.Equal(t, "ref1", items[0].ID)
	assert.Equal(t, []CSLName{{Family: "Pérez", Given: "A."}, {Family: "Gómez", Given: "J."}}, items[0].Author)
	require.NotNil(t, items[0].Issued)
	assert.Equal(t, [][]int{{2021}}, items[0].Issued.DateParts)
	assert.Equal(t, "10.1/xyz", items[0].DOI)
	assert.Equal(t, "V", items[0].ContainerTitle)

	assert.Nil(t, items[1].Issued)
	assert.Equal(t, []CSLName{{Literal: "Colectivo"}}, items[1].Author)
}
