// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assistant runs one conversational turn: classify the utterance,
// extract its topic, compose a document, and record both sides in the
// session. Sessions are passed in explicitly; the assistant keeps no
// per-conversation state of its own.
package assistant

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/bibliography"
	"github.com/pdiddy/research-assistant/internal/generate"
	"github.com/pdiddy/research-assistant/internal/intent"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Journal records sessions. The history store satisfies it.
type Journal interface {
	SaveSession(ctx context.Context, sess *types.Session) error
	AppendTurn(ctx context.Context, sessionID string, t types.Turn) error
	AddReferences(ctx context.Context, sessionID string, refs []types.Reference) error
}

// Config wires an Assistant. Only Composer is required.
type Config struct {
	Composer *generate.Composer

	// Backends and Search drive /buscar. No backends disables it.
	Backends []search.Backend
	Search   types.SearchConfig

	// Journal, when set, receives every turn and reference. Its errors are
	// logged and never interrupt the conversation.
	Journal Journal

	// Extractor defaults to intent.NewExtractor().
	Extractor *intent.Extractor

	Logger *zap.Logger
}

// Assistant answers utterances against a caller-owned session.
type Assistant struct {
	composer  *generate.Composer
	backends  []search.Backend
	searchCfg types.SearchConfig
	journal   Journal
	extractor *intent.Extractor
	logger    *zap.Logger
}

// Reply is the outcome of one call to Respond.
type Reply struct {
	// Document is set when the utterance produced a generated document.
	Document *types.Document

	// Text is what to show the user: the document Markdown or a command
	// response.
	Text string

	// References holds the results of a /buscar command.
	References []types.Reference

	// Cleared is set by /limpiar after the session was emptied.
	Cleared bool

	// Quit is set by /salir.
	Quit bool
}

// New creates an Assistant.
func New(cfg Config) *Assistant {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	composer := cfg.Composer
	if composer == nil {
		composer = generate.NewComposer(nil, generate.ComposerConfig{}, logger)
	}
	extractor := cfg.Extractor
	if extractor == nil {
		extractor = intent.NewExtractor()
	}
	return &Assistant{
		composer:  composer,
		backends:  cfg.Backends,
		searchCfg: cfg.Search,
		journal:   cfg.Journal,
		extractor: extractor,
		logger:    logger,
	}
}

// NewSession returns an empty session with a fresh ID.
func NewSession(lang types.Language, style, researchContext string) *types.Session {
	if lang == "" {
		lang = types.LanguageSpanish
	}
	if style == "" {
		style = bibliography.StyleAPA
	}
	return &types.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Context:   researchContext,
		Style:     style,
		Language:  lang,
	}
}

// Respond handles one utterance. Lines starting with "/" are commands;
// anything else is classified and answered with a document. Respond never
// fails: generation problems surface as an offline document.
func (a *Assistant) Respond(ctx context.Context, sess *types.Session, utterance string) Reply {
	text := strings.TrimSpace(utterance)
	if text == "" {
		return Reply{Text: msgEmpty}
	}
	if strings.HasPrefix(text, "/") {
		return a.command(ctx, sess, text)
	}
	doc := a.Ask(ctx, sess, text)
	return Reply{Document: &doc, Text: doc.Markdown}
}

// Ask classifies the utterance, composes the document, and appends the
// user and assistant turns to the session.
func (a *Assistant) Ask(ctx context.Context, sess *types.Session, utterance string) types.Document {
	user := sess.Append(types.Turn{Role: types.RoleUser, Content: utterance})
	a.record(ctx, sess.ID, user)

	category := intent.Classify(utterance)
	topic := a.extractor.Extract(utterance)
	a.logger.Debug("classified utterance",
		zap.String("session", sess.ID),
		zap.String("category", string(category)),
		zap.String("topic", topic))

	doc := a.composer.Compose(ctx, generate.Request{
		Category:   category,
		Topic:      topic,
		Context:    sess.Context,
		Language:   sess.Language,
		References: sess.References,
	})

	reply := sess.Append(types.Turn{
		Role:     types.RoleAssistant,
		Content:  doc.Markdown,
		Category: doc.Category,
		Source:   doc.Source,
	})
	a.record(ctx, sess.ID, reply)
	return doc
}

// Search runs the configured backends and adds the results to the session.
func (a *Assistant) Search(ctx context.Context, sess *types.Session, query string) (search.Output, string, error) {
	var warnings bytes.Buffer
	out, err := search.Search(ctx, search.Query{FreeText: query, Limit: a.searchCfg.MaxResults}, a.backends, a.searchCfg, &warnings)
	if err != nil {
		return out, warnings.String(), err
	}
	sess.AddReferences(out.References...)
	if a.journal != nil && len(out.References) > 0 {
		if err := a.journal.AddReferences(ctx, sess.ID, out.References); err != nil {
			a.logger.Warn("recording references failed", zap.String("session", sess.ID), zap.Error(err))
		}
	}
	return out, warnings.String(), nil
}

func (a *Assistant) record(ctx context.Context, sessionID string, t types.Turn) {
	if a.journal == nil {
		return
	}
	if err := a.journal.AppendTurn(ctx, sessionID, t); err != nil {
		a.logger.Warn("recording turn failed", zap.String("session", sessionID), zap.Error(err))
	}
}

func (a *Assistant) save(ctx context.Context, sess *types.Session) {
	if a.journal == nil {
		return
	}
	if err := a.journal.SaveSession(ctx, sess); err != nil {
		a.logger.Warn("saving session failed", zap.String("session", sess.ID), zap.Error(err))
	}
}
