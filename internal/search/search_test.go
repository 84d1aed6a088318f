// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// --- mock backend ---

type mockBackend struct {
	name    string
	results []types.Reference
	err     error
	delay   time.Duration
	calls   atomic.Int32
}

func (m *mockBackend) Name() string { return m.name }

func (m *mockBackend) Search(ctx context.Context, _ Query, _ types.SearchConfig) ([]types.Reference, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.delay):
		}
	}
	return m.results, m.err
}

func testCfg() types.SearchConfig {
	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "test/0.1",
		},
		MaxResults:        5,
		InterBackendDelay: 0,
	}
}

func testClient(ts *httptest.Server) *httputil.Client {
	return &httputil.Client{HTTP: ts.Client(), UserAgent: "test/0.1"}
}

// --- Query ---

func TestQueryIsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  bool
	}{
		{"completely empty", Query{}, true},
		{"whitespace only", Query{FreeText: "   ", Keywords: []string{" "}}, true},
		{"free text only", Query{FreeText: "competencias digitales"}, false},
		{"author only", Query{Author: "Freire"}, false},
		{"keywords only", Query{Keywords: []string{"TIC"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQueryText(t *testing.T) {
	q := Query{FreeText: " lectura ", Author: "Freire", Keywords: []string{"alfabetización", ""}}
	if got := q.Text(); got != "lectura Freire alfabetización" {
		t.Errorf("Text() = %q", got)
	}
}

// --- Dedup and merge ---

func TestDeduplicateByTitle(t *testing.T) {
	refs := []types.Reference{
		{Title: "Competencias Digitales en Docentes", Author: "Pérez, A.", Year: types.NoDate, SourceName: "SciELO"},
		{Title: "competencias digitales en docentes.", Year: "2021", Venue: "Revista X", SourceName: "Semantic Scholar"},
	}
	deduped, removed := deduplicate(refs)
	if removed != 1 || len(deduped) != 1 {
		t.Fatalf("removed=%d len=%d, want 1/1", removed, len(deduped))
	}
	got := deduped[0]
	if got.Year != "2021" {
		t.Errorf("Year = %q, want merged 2021", got.Year)
	}
	if got.Venue != "Revista X" || got.Author != "Pérez, A." {
		t.Errorf("merge lost fields: %+v", got)
	}
	if got.SourceName != "SciELO, Semantic Scholar" {
		t.Errorf("SourceName = %q", got.SourceName)
	}
}

func TestDeduplicateByURL(t *testing.T) {
	refs := []types.Reference{
		{Title: "A", URL: "https://doi.org/10.1/abc"},
		{Title: "A (preprint)", URL: "http://doi.org/10.1/ABC/"},
	}
	deduped, removed := deduplicate(refs)
	if removed != 1 || len(deduped) != 1 {
		t.Fatalf("removed=%d len=%d, want 1/1", removed, len(deduped))
	}
}

func TestDeduplicateNoDuplicates(t *testing.T) {
	refs := []types.Reference{{Title: "Uno"}, {Title: "Dos"}, {Title: ""}, {Title: ""}}
	deduped, removed := deduplicate(refs)
	if removed != 0 || len(deduped) != 4 {
		t.Errorf("removed=%d len=%d, want 0/4", removed, len(deduped))
	}
}

func TestInterleave(t *testing.T) {
	got := interleave([][]types.Reference{
		{{Title: "a1"}, {Title: "a2"}, {Title: "a3"}},
		nil,
		{{Title: "b1"}},
	})
	var titles []string
	for _, r := range got {
		titles = append(titles, r.Title)
	}
	if strings.Join(titles, ",") != "a1,b1,a2,a3" {
		t.Errorf("interleave order = %v", titles)
	}
}

func TestNormalizeTitle(t *testing.T) {
	if got := normalizeTitle("  ¿Qué es la Educación?  "); got != "qué es la educación" {
		t.Errorf("normalizeTitle = %q", got)
	}
}

// --- Search fan-out ---

func TestSearchEmptyQuery(t *testing.T) {
	_, err := Search(context.Background(), Query{}, []Backend{&mockBackend{name: "m"}}, testCfg(), &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestSearchNoBackends(t *testing.T) {
	_, err := Search(context.Background(), Query{FreeText: "x"}, nil, testCfg(), &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for no backends")
	}
}

func TestSearchContinuesAfterBackendFailure(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	good := &mockBackend{name: "semantic_scholar", results: []types.Reference{{Title: "Uno"}, {Title: "Dos"}}}
	bad := &mockBackend{name: "scielo", err: fmt.Errorf("connection refused"), delay: 5 * time.Millisecond}

	var w bytes.Buffer
	out, err := Search(context.Background(), Query{FreeText: "tic"}, []Backend{good, bad}, testCfg(), &w)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(out.References) != 2 {
		t.Errorf("len(References) = %d, want 2", len(out.References))
	}
	if len(out.BackendErrors) != 1 || !strings.Contains(out.BackendErrors[0], "scielo") {
		t.Errorf("BackendErrors = %v", out.BackendErrors)
	}
	if !strings.Contains(w.String(), "warning: backend scielo failed") {
		t.Errorf("warning not written: %q", w.String())
	}
}

func TestSearchMergesAndLimits(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	a := &mockBackend{name: "a", results: []types.Reference{{Title: "Shared"}, {Title: "A2"}, {Title: "A3"}}}
	b := &mockBackend{name: "b", results: []types.Reference{{Title: "shared"}, {Title: "B2"}}}

	cfg := testCfg()
	cfg.InterBackendDelay = time.Millisecond
	out, err := Search(context.Background(), Query{FreeText: "x", Limit: 3}, []Backend{a, b}, cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if out.DupsRemoved != 1 {
		t.Errorf("DupsRemoved = %d, want 1", out.DupsRemoved)
	}
	var titles []string
	for _, r := range out.References {
		titles = append(titles, r.Title)
	}
	if strings.Join(titles, ",") != "Shared,A2,B2" {
		t.Errorf("titles = %v, want [Shared A2 B2]", titles)
	}
}

func TestSearchCancelledDuringStagger(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	a := &mockBackend{name: "a", results: []types.Reference{{Title: "A"}}}
	b := &mockBackend{name: "b", results: []types.Reference{{Title: "B"}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := testCfg()
	cfg.InterBackendDelay = time.Hour

	out, err := Search(ctx, Query{FreeText: "x"}, []Backend{a, b}, cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if b.calls.Load() != 0 {
		t.Errorf("backend b should not start after cancellation")
	}
	if len(out.BackendErrors) != 1 {
		t.Errorf("BackendErrors = %v, want one cancellation", out.BackendErrors)
	}
}

// --- Cache ---

func TestCachedBackend(t *testing.T) {
	inner := &mockBackend{name: "m", results: []types.Reference{{Title: "Uno"}}}
	c := NewCachedBackend(inner, NewCache(time.Minute))

	for i := 0; i < 3; i++ {
		refs, err := c.Search(context.Background(), Query{FreeText: "TIC"}, testCfg())
		if err != nil || len(refs) != 1 {
			t.Fatalf("Search = %v, %v", refs, err)
		}
		refs[0].Title = "mutated"
	}
	// Different case hits the same entry.
	if _, err := c.Search(context.Background(), Query{FreeText: "tic"}, testCfg()); err != nil {
		t.Fatal(err)
	}
	if got := inner.calls.Load(); got != 1 {
		t.Errorf("inner calls = %d, want 1", got)
	}
	if c.Name() != "m" {
		t.Errorf("Name() = %q", c.Name())
	}
}

func TestCachedBackendDoesNotCacheErrors(t *testing.T) {
	inner := &mockBackend{name: "m", err: fmt.Errorf("boom")}
	c := NewCachedBackend(inner, NewCache(time.Minute))
	c.Search(context.Background(), Query{FreeText: "x"}, testCfg())
	c.Search(context.Background(), Query{FreeText: "x"}, testCfg())
	if got := inner.calls.Load(); got != 2 {
		t.Errorf("inner calls = %d, want 2", got)
	}
}

// --- Factory ---

func TestNewBackends(t *testing.T) {
	cfg := testCfg()
	cfg.Sources = []string{types.SourceSemanticScholar, types.SourceSciELO, types.SourceOpenAlex, types.SourceArxiv}
	backends, err := NewBackends(cfg, nil)
	if err != nil {
		t.Fatalf("NewBackends: %v", err)
	}
	var names []string
	for _, b := range backends {
		if _, ok := b.(*CachedBackend); ok {
			t.Errorf("backend %s cached with zero TTL", b.Name())
		}
		names = append(names, b.Name())
	}
	if strings.Join(names, ",") != "semantic_scholar,scielo,openalex,arxiv" {
		t.Errorf("names = %v", names)
	}

	cfg.CacheTTL = time.Minute
	backends, err = NewBackends(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := backends[0].(*CachedBackend); !ok {
		t.Errorf("expected CachedBackend with positive TTL")
	}

	cfg.Sources = []string{"google"}
	if _, err := NewBackends(cfg, nil); err == nil {
		t.Error("expected error for unknown source")
	}
	cfg.Sources = nil
	if _, err := NewBackends(cfg, nil); err == nil {
		t.Error("expected error for no sources")
	}
}

// --- Output ---

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(Output{
		References:  []types.Reference{{Title: "Competencias digitales", Author: "Pérez, A.", SourceName: "SciELO"}},
		DupsRemoved: 2,
	}, &buf)
	out := buf.String()
	for _, want := range []string{"Competencias digitales", "Pérez, A.", "n.d.", "SciELO", "1 referencias", "2 duplicados"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(Output{}, &buf)
	if !strings.Contains(buf.String(), "No se encontraron") {
		t.Errorf("got %q", buf.String())
	}
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	refs := []types.Reference{{Title: "Uno", Year: "2020", SourceName: "OpenAlex"}}
	if err := FormatJSON(Output{References: refs}, &buf); err != nil {
		t.Fatal(err)
	}
	var got []types.Reference
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].SourceName != "OpenAlex" {
		t.Errorf("got %+v", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("educación", 6); got != "edu..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("corto", 10); got != "corto" {
		t.Errorf("truncate = %q", got)
	}
}
