// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/assistant"
	"github.com/pdiddy/research-assistant/internal/generate"
	"github.com/pdiddy/research-assistant/internal/history"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// newGenerator returns the configured generation backend, or nil when the
// assistant should stay offline. A missing key is not an error: the
// composer then records why it fell back.
func newGenerator(ctx context.Context, cfg types.GenerationConfig) generate.Generator {
	if cfg.Offline || cfg.Provider == types.ProviderNone {
		return nil
	}
	if cfg.APIKey == "" {
		logger.Warn("no API key for generation backend, using offline templates",
			zap.String("provider", cfg.Provider))
		return nil
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	switch cfg.Provider {
	case types.ProviderClaude:
		model := cfg.Model
		if model == "" || strings.HasPrefix(model, "gemini") {
			model = generate.DefaultClaudeModel
		}
		return &generate.ClaudeBackend{
			APIKey:      cfg.APIKey,
			Model:       model,
			Temperature: cfg.Temperature,
			Client:      httpClient,
		}
	default:
		g, err := generate.NewGeminiBackend(ctx, generate.GeminiConfig{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			HTTPClient:  httpClient,
		})
		if err != nil {
			logger.Warn("gemini backend unavailable, using offline templates", zap.Error(err))
			return nil
		}
		return g
	}
}

func newComposer(ctx context.Context, cfg types.GenerationConfig) *generate.Composer {
	return generate.NewComposer(newGenerator(ctx, cfg), generate.ComposerConfig{
		Language:   cfg.Language,
		MaxRetries: cfg.MaxRetries,
		Timeout:    cfg.Timeout,
	}, logger)
}

// openJournal opens the history store when enabled. The returned close
// function is always safe to call.
func openJournal(cfg types.HistoryConfig) (*history.Store, func()) {
	if !cfg.Enabled {
		return nil, func() {}
	}
	store, err := history.Open(cfg)
	if err != nil {
		logger.Warn("history disabled", zap.String("db_path", cfg.DBPath), zap.Error(err))
		return nil, func() {}
	}
	return store, func() { store.Close() }
}

// newAssistant wires the assistant from appConfig. Search backends that
// cannot be built only disable /buscar.
func newAssistant(ctx context.Context, cfg types.AssistantConfig, journal *history.Store) *assistant.Assistant {
	backends, err := search.NewBackends(cfg.Search, logger)
	if err != nil {
		logger.Warn("search disabled", zap.Error(err))
	}
	ac := assistant.Config{
		Composer: newComposer(ctx, cfg.Generation),
		Backends: backends,
		Search:   cfg.Search,
		Logger:   logger,
	}
	if journal != nil {
		ac.Journal = journal
	}
	return assistant.New(ac)
}
