// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      types.Category
	}{
		{"planteamiento", "Formula el planteamiento sobre lectura", types.CategoryProblemStatement},
		{"problema", "¿Cuál es el problema de la deserción?", types.CategoryProblemStatement},
		{"uppercase", "PLANTEAMIENTO DEL PROBLEMA", types.CategoryProblemStatement},
		{"objectives", "Redacta los objetivos para mi tesis", types.CategoryObjectives},
		{"methodology accent folded", "que metodologia uso", types.CategoryMethodology},
		{"methodology accented", "Propón una Metodología", types.CategoryMethodology},
		{"variables", "Define las variables del estudio", types.CategoryVariables},
		{"summary", "Dame un resumen sobre aprendizaje", types.CategorySummary},
		{"english summary", "Please summarize this", types.CategorySummary},
		{"general", "Hola, ¿cómo estás?", types.CategoryGeneral},
		{"empty", "", types.CategoryGeneral},
		{"priority problem over objectives", "objetivos y planteamiento", types.CategoryProblemStatement},
		{"priority objectives over methodology", "metodología y objetivos", types.CategoryObjectives},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.utterance))
		})
	}
}

func TestRulesOrder(t *testing.T) {
	want := []types.Category{
		types.CategoryProblemStatement,
		types.CategoryObjectives,
		types.CategoryMethodology,
		types.CategoryVariables,
		types.CategorySummary,
	}
	got := make([]types.Category, 0, len(Rules))
	for _, r := range Rules {
		got = append(got, r.Category)
	}
	assert.Equal(t, want, got)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "metodologia", Normalize("Metodología"))
	assert.Equal(t, "operacionalizacion", Normalize("OPERACIONALIZACIÓN"))
	assert.Equal(t, "nino", Normalize("niño"))
}

func TestExtractTopic(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      string
	}{
		{"scenario", "Formula el planteamiento del problema sobre competencias digitales", "competencias digitales"},
		{"acerca de", "Dame un resumen acerca de la inteligencia artificial en educación", "inteligencia artificial en educación"},
		{"keeps inner de", "Planteamiento del problema sobre desarrollo sostenible", "desarrollo sostenible"},
		{"trailing punctuation", "Genera objetivos sobre lectura crítica.", "lectura crítica"},
		{"interrogative", "¿Qué es la brecha digital?", "es la brecha digital"},
		{"interrogative without opening mark", "Cómo influye el clima escolar?", "influye el clima escolar"},
		{"english interrogative", "What drives teacher burnout?", "drives teacher burnout"},
		{"nothing left", "Formula el planteamiento del problema", "Formula el planteamiento del problema"},
		{"only stopwords", "sobre", "sobre"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTopic(tt.utterance))
		})
	}
}

func TestExtractTopicNeverEmpty(t *testing.T) {
	for _, u := range []string{"", " ", "de", "el la los", "?", "¿?", "por favor"} {
		got := ExtractTopic(u)
		if got == "" && u != "" {
			t.Errorf("ExtractTopic(%q) returned empty", u)
		}
		if u == "" {
			assert.Equal(t, "", got)
		}
	}
}

func TestInterrogativeIdempotent(t *testing.T) {
	for _, q := range []string{
		"¿Cómo influye el uso de redes sociales en el rendimiento académico?",
		"¿por qué abandonan los estudiantes??",
		"which factors predict retention?",
	} {
		first, ok := InterrogativeClause(q)
		assert.True(t, ok, q)
		_, again := InterrogativeClause(first)
		assert.False(t, again, "clause %q matched again", first)
		assert.Equal(t, first, ExtractTopic(first))
	}
}

func TestExtractTopicIsFixedPoint(t *testing.T) {
	tests := []struct {
		utterance string
		want      string
	}{
		{"¿Qué es el planteamiento del problema?", "es"},
		{"¿Cómo se formula el problema de investigación?", "se el de investigación"},
		{"¿Cuál es el objetivo de la tesis?", "es el de la tesis"},
		{"¿Qué objetivos tiene el estudio sobre lectura?", "tiene el estudio lectura"},
		{"Formula el planteamiento del problema sobre competencias digitales", "competencias digitales"},
		{"Formula el planteamiento del problema", "Formula el planteamiento del problema"},
	}
	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			first := ExtractTopic(tt.utterance)
			assert.Equal(t, tt.want, first)
			assert.Equal(t, first, ExtractTopic(first), "second pass changed the topic")
		})
	}
}

func TestExtractTopicFixedPointLegacy(t *testing.T) {
	e := NewExtractor(WithSubstringStripping())
	for _, q := range []string{
		"¿Qué es el planteamiento del problema?",
		"¿Cómo se formula el problema de investigación?",
	} {
		first := e.Extract(q)
		assert.NotEmpty(t, first)
		assert.Equal(t, first, e.Extract(first), q)
	}
}

func TestSubstringStripping(t *testing.T) {
	e := NewExtractor(WithSubstringStripping())

	assert.Equal(t, "competencias digita es",
		e.Extract("Formula el planteamiento del problema sobre competencias digitales"))
	assert.Equal(t, "sarrollo sostenible",
		e.Extract("Planteamiento del problema sobre desarrollo sostenible"))
	assert.Equal(t, "el la", e.Extract("el la"), "all stripped returns the original")
}

func TestWithExtraStopwords(t *testing.T) {
	e := NewExtractor(WithExtraStopwords("investiga"))
	assert.Equal(t, "bullying escolar", e.Extract("Investiga sobre bullying escolar"))
}
