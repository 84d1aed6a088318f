// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package intent maps a free-text research request to a category and a
// research topic. Both operations are pure functions of the input text and
// never fail: an unmatched request is general, and a topic that cannot be
// isolated is the request itself.
package intent

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// Rule selects Category when any of Keywords occurs as a substring of the
// normalized request.
type Rule struct {
	Category types.Category
	Keywords []string
}

// Matches reports whether any keyword occurs in the normalized text.
func (r Rule) Matches(normalized string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(normalized, Normalize(kw)) {
			return true
		}
	}
	return false
}

// Rules is evaluated in order and the first match wins. The order is the
// tie-break policy for requests that mention several categories.
var Rules = []Rule{
	{
		Category: types.CategoryProblemStatement,
		Keywords: []string{"planteamiento", "problema", "problem statement"},
	},
	{
		Category: types.CategoryObjectives,
		Keywords: []string{"objetivo", "objective"},
	},
	{
		Category: types.CategoryMethodology,
		Keywords: []string{"metodología", "método", "diseño de investigación", "enfoque de investigación", "methodology", "method"},
	},
	{
		Category: types.CategoryVariables,
		Keywords: []string{"variable", "operacionalización", "operationaliz"},
	},
	{
		Category: types.CategorySummary,
		Keywords: []string{"resumen", "resume", "síntesis", "sintetiza", "summary", "summari"},
	},
}

// Classify returns the category of the first rule that matches the
// utterance, or CategoryGeneral.
func Classify(utterance string) types.Category {
	text := Normalize(utterance)
	for _, r := range Rules {
		if r.Matches(text) {
			return r.Category
		}
	}
	return types.CategoryGeneral
}

// Normalize lower-cases s and strips combining marks, so "Metodología"
// and "metodologia" compare equal.
func Normalize(s string) string {
	lower := strings.ToLower(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, lower)
	if err != nil {
		return lower
	}
	return folded
}
