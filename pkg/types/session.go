// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in a session's append-only conversation log.
type Turn struct {
	Role      Role           `json:"role" yaml:"role"`
	Content   string         `json:"content" yaml:"content"`
	Category  Category       `json:"category,omitempty" yaml:"category,omitempty"`
	Source    DocumentSource `json:"source,omitempty" yaml:"source,omitempty"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
}

// Session is the explicit per-conversation state handed to the assistant on
// every turn. Nothing in the core keeps ambient session state.
type Session struct {
	// ID identifies the session in the history store.
	ID string `json:"id" yaml:"id"`

	// CreatedAt is when the session was first opened.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// Context narrows every generated document (e.g. "educación superior").
	Context string `json:"context,omitempty" yaml:"context,omitempty"`

	// Style is the citation style used for bibliographies.
	Style string `json:"style" yaml:"style"`

	// Language selects the offline template set.
	Language Language `json:"language" yaml:"language"`

	// Turns is the conversation log in order.
	Turns []Turn `json:"turns" yaml:"turns"`

	// References holds every reference collected during the session.
	References []Reference `json:"references" yaml:"references"`
}

// Append adds a turn to the log, stamping it when CreatedAt is zero.
func (s *Session) Append(t Turn) Turn {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	s.Turns = append(s.Turns, t)
	return t
}

// AddReferences appends references in order. No deduplication is done.
func (s *Session) AddReferences(refs ...Reference) {
	s.References = append(s.References, refs...)
}

// Clear drops the conversation log and collected references. ID, context,
// style, and language survive.
func (s *Session) Clear() {
	s.Turns = nil
	s.References = nil
}
