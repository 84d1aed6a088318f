// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate produces the document for one classified request. A
// Composer first asks a Generator (an LLM backend) and falls back to the
// offline templates on any failure, so callers always get a document.
package generate

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/render"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Generator sends a prompt to a text-generation backend.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Request is the input to Compose.
type Request struct {
	Category types.Category
	Topic    string
	Context  string
	// Language selects the prompt and template language. Empty means the
	// composer's configured language.
	Language types.Language

	// References, when present, are synthesized into the prompt.
	References []types.Reference
}

// ComposerConfig tunes a Composer.
type ComposerConfig struct {
	Language   types.Language
	MaxRetries int
	// Timeout bounds each generation attempt. Zero means no extra bound.
	Timeout time.Duration
}

// Composer produces documents, preferring the Generator when one is set.
type Composer struct {
	gen      Generator
	renderer *render.Renderer
	cfg      ComposerConfig
	logger   *zap.Logger
}

// NewComposer creates a Composer. gen may be nil for offline-only use.
func NewComposer(gen Generator, cfg ComposerConfig, logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Composer{
		gen:      gen,
		renderer: render.New(cfg.Language),
		cfg:      cfg,
		logger:   logger,
	}
}

// Backend returns the configured generator name, or "offline".
func (c *Composer) Backend() string {
	if c.gen == nil {
		return string(types.SourceOffline)
	}
	return c.gen.Name()
}

// Compose returns the document for req. It never fails: generator errors
// and empty answers produce the offline template with Source set to
// offline and FallbackReason explaining why.
func (c *Composer) Compose(ctx context.Context, req Request) types.Document {
	doc := types.Document{
		Category: req.Category,
		Topic:    req.Topic,
		Context:  req.Context,
	}

	renderer := c.renderer
	if req.Language != "" {
		renderer = render.New(req.Language)
	}
	doc.Language = renderer.Language()

	if c.gen == nil {
		return c.offline(renderer, doc, "no generation backend configured")
	}

	prompt, err := RenderPrompt(req.Category, req.Topic, req.Context, Synthesize(req.References), renderer.Language())
	if err != nil {
		return c.offline(renderer, doc, err.Error())
	}

	text, err := c.callWithRetry(ctx, prompt)
	if err != nil {
		c.logger.Warn("generation failed, using offline template",
			zap.String("backend", c.gen.Name()),
			zap.String("category", string(req.Category)),
			zap.Error(err))
		return c.offline(renderer, doc, fmt.Sprintf("%s: %v", c.gen.Name(), err))
	}

	doc.Markdown = text
	doc.Source = types.SourceLLM
	return doc
}

func (c *Composer) offline(r *render.Renderer, doc types.Document, reason string) types.Document {
	doc.Markdown = r.Render(doc.Category, doc.Topic, doc.Context)
	doc.Source = types.SourceOffline
	doc.FallbackReason = reason
	return doc
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// callWithRetry calls the generator with exponential backoff. An empty
// answer counts as a failure.
func (c *Composer) callWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := c.attempt(ctx, prompt)
		if err == nil {
			return text, nil
		}
		c.logger.Debug("generation attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", c.cfg.MaxRetries, lastErr)
}

func (c *Composer) attempt(ctx context.Context, prompt string) (string, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}
	text, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty response")
	}
	return text, nil
}
