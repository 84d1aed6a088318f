// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Category is the coarse kind of research-writing help a user asks for.
type Category string

const (
	CategoryProblemStatement Category = "problem_statement"
	CategoryObjectives       Category = "objectives"
	CategoryMethodology      Category = "methodology"
	CategoryVariables        Category = "variables"
	CategorySummary          Category = "summary"
	CategoryGeneral          Category = "general"
)

// Categories lists every category in classification priority order.
var Categories = []Category{
	CategoryProblemStatement,
	CategoryObjectives,
	CategoryMethodology,
	CategoryVariables,
	CategorySummary,
	CategoryGeneral,
}

// Language selects the template set used for offline rendering.
type Language string

const (
	LanguageSpanish Language = "es"
	LanguageEnglish Language = "en"
)

// DocumentSource records which path produced a Document.
type DocumentSource string

const (
	// SourceLLM marks a document returned verbatim by the generation backend.
	SourceLLM DocumentSource = "llm"

	// SourceOffline marks a document rendered from the built-in templates.
	SourceOffline DocumentSource = "offline"
)

// Document is the Markdown answer produced for one user request.
type Document struct {
	// Category is the classified intent of the request.
	Category Category `json:"category" yaml:"category"`

	// Topic is the research topic extracted from the request.
	Topic string `json:"topic" yaml:"topic"`

	// Context is the optional narrowing context supplied by the user.
	Context string `json:"context,omitempty" yaml:"context,omitempty"`

	// Language is the language the document was written in.
	Language Language `json:"language,omitempty" yaml:"language,omitempty"`

	// Markdown is the rendered document.
	Markdown string `json:"markdown" yaml:"markdown"`

	// Source is SourceLLM or SourceOffline.
	Source DocumentSource `json:"source" yaml:"source"`

	// FallbackReason explains why an offline document was produced when a
	// generation backend was expected. Empty for LLM documents.
	FallbackReason string `json:"fallback_reason,omitempty" yaml:"fallback_reason,omitempty"`
}

// Degraded reports whether the document came from the offline fallback.
func (d Document) Degraded() bool {
	return d.Source == SourceOffline
}
