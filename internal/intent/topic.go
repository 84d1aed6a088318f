// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package intent

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// interrogativeRe captures the clause that follows a leading question word
// in a request phrased as a question. The clause never keeps the closing
// question mark, so feeding the capture back in does not match again.
var interrogativeRe = regexp.MustCompile(`(?is)^\s*¿?\s*(?:por\s+qué|para\s+qué|qué|que|cómo|como|cuál(?:es)?|cual(?:es)?|quién(?:es)?|quien(?:es)?|dónde|donde|cuándo|cuando|cuánt[oa]s?|cuant[oa]s?|what|how|which|why)\s+(.+?)\s*\?+\s*$`)

// requestTerms are the verbs and scaffolding phrases users wrap around a
// topic. They are removed wherever they appear.
var requestTerms = []string{
	"formula", "formular", "formúlame", "planteamiento", "problema",
	"genera", "generar", "genérame", "redacta", "redactar", "redáctame",
	"escribe", "escríbeme", "elabora", "elabórame", "crea", "créame",
	"haz", "hazme", "dame", "quiero", "necesito", "ayúdame", "puedes",
	"podrías", "por favor", "objetivos", "objetivo", "metodología",
	"variables", "resumen", "resume", "sintetiza", "síntesis",
	"sobre", "acerca de", "respecto a", "con respecto a", "referente a",
	"relacionado con", "tema", "mi", "mis",
	"write", "generate", "create", "give me", "about", "problem statement",
	"objectives", "methodology", "summary", "summarize", "please",
}

// connectors are articles and prepositions. Inside a topic they carry
// meaning ("rendimiento en matemáticas"), so they are only trimmed from
// the edges.
var connectors = []string{
	"el", "la", "los", "las", "lo", "un", "una", "unos", "unas",
	"del", "de", "al", "a", "en", "y", "o", "para", "por", "con", "que",
	"the", "a", "an", "of", "for", "on", "in", "to", "and",
}

// legacyStopwords is the list removed by raw substring replacement in
// legacy mode. Short connectors match inside other words there.
var legacyStopwords = []string{
	"formula", "planteamiento", "problema", "genera", "sobre", "acerca de",
	"del", "de", "el", "la", "los", "las",
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSubstringStripping switches the extractor to raw substring removal
// of the stoplist. "de" is removed from inside "desarrollo" in this mode.
func WithSubstringStripping() Option {
	return func(e *Extractor) { e.substring = true }
}

// WithExtraStopwords adds request terms to remove.
func WithExtraStopwords(words ...string) Option {
	return func(e *Extractor) { e.extra = append(e.extra, words...) }
}

// Extractor isolates the research topic in a request.
type Extractor struct {
	substring bool
	extra     []string

	phrases    [][]string
	connectors map[string]bool
	legacy     []string
}

// NewExtractor builds an Extractor. The default strips on word boundaries.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{connectors: make(map[string]bool)}
	for _, opt := range opts {
		opt(e)
	}

	terms := append(append([]string{}, requestTerms...), e.extra...)
	for _, t := range terms {
		words := strings.Fields(Normalize(t))
		if len(words) > 0 {
			e.phrases = append(e.phrases, words)
		}
	}
	// Longest phrases first so "con respecto a" wins over "respecto a".
	sort.SliceStable(e.phrases, func(i, j int) bool {
		return len(e.phrases[i]) > len(e.phrases[j])
	})

	for _, c := range connectors {
		e.connectors[Normalize(c)] = true
	}

	e.legacy = append(append([]string{}, legacyStopwords...), e.extra...)
	sort.SliceStable(e.legacy, func(i, j int) bool {
		return len(e.legacy[i]) > len(e.legacy[j])
	})
	return e
}

var defaultExtractor = NewExtractor()

// ExtractTopic returns the research topic of an utterance using the
// default word-boundary extractor. It never returns an empty string.
func ExtractTopic(utterance string) string {
	return defaultExtractor.Extract(utterance)
}

// InterrogativeClause returns the clause after a leading question word when
// the utterance is a question, e.g. "¿Qué es la brecha digital?" yields
// "es la brecha digital".
func InterrogativeClause(utterance string) (string, bool) {
	m := interrogativeRe.FindStringSubmatch(utterance)
	if m == nil {
		return "", false
	}
	clause := strings.TrimSpace(m[1])
	if clause == "" {
		return "", false
	}
	return clause, true
}

// Extract returns the topic of utterance. A question is narrowed to its
// interrogative clause before stripping. When nothing is left after
// stripping, the clause or the utterance comes back unchanged.
func (e *Extractor) Extract(utterance string) (topic string) {
	defer func() {
		if r := recover(); r != nil {
			topic = utterance
		}
	}()

	source := utterance
	if clause, ok := InterrogativeClause(utterance); ok {
		source = clause
	}

	stripped := e.strip(source)
	if stripped == "" {
		return source
	}
	return stripped
}

// maxStripPasses bounds the fixed-point loop in strip.
const maxStripPasses = 8

// strip removes request terms until nothing more comes off. A single pass
// can bring two kept words together into a new request phrase, so the
// result of one pass is not always stable under another.
func (e *Extractor) strip(text string) string {
	for range maxStripPasses {
		var next string
		if e.substring {
			next = e.stripSubstrings(text)
		} else {
			next = e.stripTokens(text)
		}
		if next == text || next == "" {
			return next
		}
		text = next
	}
	return text
}

func (e *Extractor) stripSubstrings(utterance string) string {
	text := strings.ToLower(utterance)
	for _, w := range e.legacy {
		text = strings.ReplaceAll(text, strings.ToLower(w), " ")
	}
	return strings.Join(strings.Fields(text), " ")
}

func (e *Extractor) stripTokens(utterance string) string {
	tokens := strings.Fields(strings.ToLower(utterance))
	keys := make([]string, len(tokens))
	for i, tok := range tokens {
		keys[i] = Normalize(trimPunct(tok))
	}

	var kept []int
	for i := 0; i < len(tokens); {
		if n := e.matchPhrase(keys[i:]); n > 0 {
			i += n
			continue
		}
		kept = append(kept, i)
		i++
	}

	// Trim connectors and bare punctuation from both edges.
	start, end := 0, len(kept)
	for start < end && e.isEdgeNoise(keys[kept[start]]) {
		start++
	}
	for end > start && e.isEdgeNoise(keys[kept[end-1]]) {
		end--
	}

	words := make([]string, 0, end-start)
	for _, idx := range kept[start:end] {
		words = append(words, tokens[idx])
	}
	return trimPunct(strings.Join(words, " "))
}

// matchPhrase returns the number of leading keys covered by a request
// phrase, or 0.
func (e *Extractor) matchPhrase(keys []string) int {
	for _, p := range e.phrases {
		if len(p) > len(keys) {
			continue
		}
		match := true
		for j, w := range p {
			if keys[j] != w {
				match = false
				break
			}
		}
		if match {
			return len(p)
		}
	}
	return 0
}

func (e *Extractor) isEdgeNoise(key string) bool {
	return key == "" || e.connectors[key]
}

func trimPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
	})
}
