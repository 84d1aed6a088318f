// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render fills the offline Markdown templates for each request
// category. Rendering is a pure function of category, topic, and context.
package render

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// templateData is the value passed to every document template.
type templateData struct {
	Topic   string
	Context string
	// InContext is the context as a trailing phrase (" en <context>"), or
	// empty when no context was given.
	InContext string
}

// Renderer renders documents in one language.
type Renderer struct {
	lang  types.Language
	tmpls map[types.Category]*template.Template
}

var (
	spanish = mustParse(types.LanguageSpanish, spanishTemplates)
	english = mustParse(types.LanguageEnglish, englishTemplates)
)

func mustParse(lang types.Language, src map[types.Category]string) *Renderer {
	r := &Renderer{lang: lang, tmpls: make(map[types.Category]*template.Template, len(src))}
	for cat, text := range src {
		r.tmpls[cat] = template.Must(template.New(string(lang) + "/" + string(cat)).Parse(text))
	}
	return r
}

// New returns the renderer for lang. Unknown languages get Spanish.
func New(lang types.Language) *Renderer {
	if lang == types.LanguageEnglish {
		return english
	}
	return spanish
}

// Language reports the template set in use.
func (r *Renderer) Language() types.Language { return r.lang }

// Render returns the Markdown document for category. Unknown categories use
// the general template.
func (r *Renderer) Render(category types.Category, topic, context string) string {
	tmpl, ok := r.tmpls[category]
	if !ok {
		tmpl = r.tmpls[types.CategoryGeneral]
	}

	data := templateData{Topic: topic, Context: context}
	if context != "" {
		if r.lang == types.LanguageEnglish {
			data.InContext = " in " + context
		} else {
			data.InContext = " en " + context
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "# " + topic + "\n"
	}
	return buf.String()
}

// Render renders with the Spanish templates.
func Render(category types.Category, topic, context string) string {
	return spanish.Render(category, topic, context)
}
