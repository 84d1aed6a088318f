// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// NewBackends builds the backends named in cfg.Sources, in order, sharing
// one HTTP client. When cfg.CacheTTL is positive every backend is wrapped
// in a CachedBackend over a shared cache.
func NewBackends(cfg types.SearchConfig, logger *zap.Logger) ([]Backend, error) {
	client := httputil.NewClient(cfg.HTTPConfig, logger)

	var shared *cache.Cache
	if cfg.CacheTTL > 0 {
		shared = NewCache(cfg.CacheTTL)
	}
	var backends []Backend
	for _, name := range cfg.Sources {
		var b Backend
		switch name {
		case types.SourceSemanticScholar:
			b = &SemanticScholarBackend{Client: client, APIKey: cfg.SemanticScholarAPIKey}
		case types.SourceSciELO:
			b = &SciELOBackend{Client: client}
		case types.SourceOpenAlex:
			b = &OpenAlexBackend{Client: client, Email: cfg.OpenAlexEmail}
		case types.SourceArxiv:
			b = &ArxivBackend{Client: client}
		default:
			return nil, fmt.Errorf("unknown search source %q", name)
		}
		if shared != nil {
			b = NewCachedBackend(b, shared)
		}
		backends = append(backends, b)
	}
	if len(backends) == 0 {
		return nil, fmt.Errorf("no search sources configured")
	}
	return backends, nil
}
