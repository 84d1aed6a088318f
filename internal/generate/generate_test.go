// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/internal/render"
	"github.com/pdiddy/research-assistant/pkg/types"
)

func TestMain(m *testing.M) {
	// Override backoff to avoid real sleeps in retry tests.
	backoffBase = time.Millisecond
	os.Exit(m.Run())
}

// --- mock generators ---

type fixedGenerator struct {
	text    string
	err     error
	calls   int
	prompts []string
}

func (f *fixedGenerator) Name() string { return "mock" }

func (f *fixedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

// failNTimes fails the first n calls, then answers.
type failNTimes struct {
	n     int
	calls int
}

func (f *failNTimes) Name() string { return "flaky" }

func (f *failNTimes) Generate(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.calls <= f.n {
		return "", fmt.Errorf("transient error (call %d)", f.calls)
	}
	return "## Respuesta", nil
}

var req = Request{
	Category: types.CategoryProblemStatement,
	Topic:    "competencias digitales",
	Context:  "docentes universitarios",
}

func TestComposeLLM(t *testing.T) {
	gen := &fixedGenerator{text: "  ## Planteamiento generado\n"}
	c := NewComposer(gen, ComposerConfig{MaxRetries: 2}, nil)

	doc := c.Compose(context.Background(), req)
	assert.Equal(t, types.SourceLLM, doc.Source)
	assert.Equal(t, "## Planteamiento generado", doc.Markdown)
	assert.Empty(t, doc.FallbackReason)
	assert.False(t, doc.Degraded())
	assert.Equal(t, req.Topic, doc.Topic)
	assert.Equal(t, 1, gen.calls)
	assert.Contains(t, gen.prompts[0], "competencias digitales")
	assert.Contains(t, gen.prompts[0], "docentes universitarios")
}

func TestComposeNoGenerator(t *testing.T) {
	c := NewComposer(nil, ComposerConfig{}, nil)
	assert.Equal(t, "offline", c.Backend())

	doc := c.Compose(context.Background(), req)
	assert.Equal(t, types.SourceOffline, doc.Source)
	assert.True(t, doc.Degraded())
	assert.Equal(t, render.Render(req.Category, req.Topic, req.Context), doc.Markdown)
	assert.Contains(t, doc.FallbackReason, "no generation backend")
}

func TestComposeRequestLanguageOverridesConfig(t *testing.T) {
	c := NewComposer(nil, ComposerConfig{Language: types.LanguageSpanish}, nil)

	doc := c.Compose(context.Background(), Request{
		Category: types.CategoryObjectives,
		Topic:    "digital competencies",
		Language: types.LanguageEnglish,
	})
	assert.Equal(t, types.LanguageEnglish, doc.Language)
	assert.Contains(t, doc.Markdown, "General Objective")

	doc = c.Compose(context.Background(), Request{Category: types.CategoryObjectives, Topic: "lectura"})
	assert.Equal(t, types.LanguageSpanish, doc.Language)
	assert.NotContains(t, doc.Markdown, "General Objective")
}

func TestComposePromptUsesRequestLanguage(t *testing.T) {
	gen := &fixedGenerator{text: "ok"}
	c := NewComposer(gen, ComposerConfig{Language: types.LanguageSpanish}, nil)

	c.Compose(context.Background(), Request{Category: types.CategoryObjectives, Topic: "reading", Language: types.LanguageEnglish})
	want, err := RenderPrompt(types.CategoryObjectives, "reading", "", "", types.LanguageEnglish)
	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)
	assert.Equal(t, want, gen.prompts[0])
}

func TestComposeFallsBackAfterRetries(t *testing.T) {
	gen := &fixedGenerator{err: fmt.Errorf("quota exceeded")}
	c := NewComposer(gen, ComposerConfig{MaxRetries: 2, Language: types.LanguageEnglish}, nil)

	doc := c.Compose(context.Background(), Request{Category: types.CategoryObjectives, Topic: "digital competencies"})
	assert.Equal(t, 3, gen.calls)
	assert.Equal(t, types.SourceOffline, doc.Source)
	assert.Contains(t, doc.Markdown, "General Objective")
	assert.Contains(t, doc.FallbackReason, "quota exceeded")
	assert.Contains(t, doc.FallbackReason, "mock")
}

func TestComposeEmptyAnswerIsFailure(t *testing.T) {
	gen := &fixedGenerator{text: "   "}
	c := NewComposer(gen, ComposerConfig{MaxRetries: 0}, nil)

	doc := c.Compose(context.Background(), req)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, types.SourceOffline, doc.Source)
	assert.Contains(t, doc.FallbackReason, "empty response")
}

func TestComposeRetrySucceeds(t *testing.T) {
	gen := &failNTimes{n: 2}
	c := NewComposer(gen, ComposerConfig{MaxRetries: 2}, nil)

	doc := c.Compose(context.Background(), req)
	assert.Equal(t, types.SourceLLM, doc.Source)
	assert.Equal(t, 3, gen.calls)
}

func TestComposeCancelledContext(t *testing.T) {
	gen := &fixedGenerator{err: fmt.Errorf("boom")}
	c := NewComposer(gen, ComposerConfig{MaxRetries: 5}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc := c.Compose(ctx, req)
	assert.Equal(t, types.SourceOffline, doc.Source)
	assert.Equal(t, 1, gen.calls)
}

func TestRenderPrompt(t *testing.T) {
	lit := Synthesize([]types.Reference{{Author: "García, M.", Year: "2023", Title: "Estudio X"}})
	p, err := RenderPrompt(types.CategoryObjectives, "lectura", "educación media", lit, types.LanguageSpanish)
	require.NoError(t, err)

	assert.Contains(t, p, "síntesis de literatura científica")
	assert.Contains(t, p, "- García, M. (2023) Estudio X.")
	assert.Contains(t, p, "Considerando que el investigador se interesa en: educación media")
	assert.Contains(t, p, "Tres a cinco objetivos específicos")
	assert.Contains(t, p, "Responde en español.")

	p, err = RenderPrompt(types.Category("unknown"), "lectura", "", "", types.LanguageEnglish)
	require.NoError(t, err)
	assert.NotContains(t, p, "síntesis de literatura")
	assert.NotContains(t, p, "Considerando")
	assert.Contains(t, p, "orientación académica")
	assert.Contains(t, p, "Respond in English.")
}

func TestSynthesize(t *testing.T) {
	assert.Equal(t, "", Synthesize(nil))

	refs := make([]types.Reference, 15)
	for i := range refs {
		refs[i] = types.Reference{Author: fmt.Sprintf("Autor %d", i), Year: "2020"}
	}
	assert.Equal(t, maxSynthesized, len(strings.Split(Synthesize(refs), "\n")))
}

func TestClaudeBackend(t *testing.T) {
	var got claudeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"content":[{"type":"text","text":"## Hola"},{"type":"text","text":" mundo"}]}`)
	}))
	defer srv.Close()

	orig := claudeAPIURL
	claudeAPIURL = srv.URL
	defer func() { claudeAPIURL = orig }()

	b := &ClaudeBackend{APIKey: "test-key", Temperature: 0.3}
	text, err := b.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "## Hola mundo", text)
	assert.Equal(t, DefaultClaudeModel, got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "prompt", got.Messages[0].Content)
}

func TestClaudeBackendErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	orig := claudeAPIURL
	claudeAPIURL = srv.URL
	defer func() { claudeAPIURL = orig }()

	_, err := (&ClaudeBackend{APIKey: "k"}).Generate(context.Background(), "p")
	assert.ErrorContains(t, err, "503")

	_, err = (&ClaudeBackend{}).Generate(context.Background(), "p")
	assert.ErrorContains(t, err, "API key is required")
}

func TestGeminiBackend(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"## Objetivos"}],"role":"model"}}]}`)
	}))
	defer srv.Close()

	ctx := context.Background()
	b, err := NewGeminiBackend(ctx, GeminiConfig{APIKey: "test-key", BaseURL: srv.URL, Temperature: 0.3})
	require.NoError(t, err)
	assert.Equal(t, "gemini", b.Name())

	text, err := b.Generate(ctx, "prompt")
	require.NoError(t, err)
	assert.Equal(t, "## Objetivos", text)
	assert.Contains(t, path, DefaultGeminiModel+":generateContent")
}

func TestGeminiBackendRequiresKey(t *testing.T) {
	_, err := NewGeminiBackend(context.Background(), GeminiConfig{})
	assert.ErrorContains(t, err, "API key is required")
}
