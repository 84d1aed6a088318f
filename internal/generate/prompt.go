// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/research-assistant/internal/bibliography"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// promptData is the value passed to every prompt template.
type promptData struct {
	Topic      string
	Context    string
	Literature string
	Reply      string
}

// promptHeader introduces the literature synthesis and researcher context
// shared by every category prompt.
const promptHeader = `{{if .Literature}}Con base en la siguiente síntesis de literatura científica:
{{.Literature}}

{{end}}Tema de investigación: {{.Topic}}
{{if .Context}}Considerando que el investigador se interesa en: {{.Context}}
{{end}}`

// promptBodies holds the category-specific instructions. Each is appended
// to promptHeader and followed by the reply-language line.
var promptBodies = map[types.Category]string{
	types.CategoryProblemStatement: `Genera un planteamiento del problema estructurado para un proyecto de investigación que incluya:
- Descripción clara del problema
- Justificación de la investigación
- Delimitación del campo o población
- Preguntas de investigación bien formuladas`,

	types.CategoryObjectives: `Genera los objetivos de investigación para un proyecto académico que incluyan:
- Un objetivo general
- Tres a cinco objetivos específicos coherentes con el problema y la justificación`,

	types.CategoryMethodology: `Propón la metodología de un proyecto de investigación que incluya:
- Enfoque, tipo y diseño de investigación
- Población y muestra
- Técnicas e instrumentos de recolección de datos
- Procedimiento de análisis de datos`,

	types.CategoryVariables: `Identifica las variables de estudio e incluye:
- Variable independiente y variable dependiente
- Definición conceptual y operacional de cada una
- Una tabla de operacionalización con dimensiones e indicadores`,

	types.CategorySummary: `Redacta un resumen académico que incluya:
- Las ideas principales sobre el tema
- Los hallazgos más relevantes de la literatura
- Una breve conclusión`,

	types.CategoryGeneral: `Ofrece una orientación académica breve sobre el tema y sugiere los siguientes pasos para desarrollar el proyecto de investigación.`,
}

var promptTmpls = func() map[types.Category]*template.Template {
	m := make(map[types.Category]*template.Template, len(promptBodies))
	for cat, body := range promptBodies {
		text := promptHeader + body + "\n\nFormato: Markdown con encabezados.\n{{.Reply}}\n"
		m[cat] = template.Must(template.New(string(cat)).Parse(text))
	}
	return m
}()

// RenderPrompt builds the generation prompt for a category. Unknown
// categories use the general prompt.
func RenderPrompt(category types.Category, topic, context, literature string, lang types.Language) (string, error) {
	tmpl, ok := promptTmpls[category]
	if !ok {
		tmpl = promptTmpls[types.CategoryGeneral]
	}
	data := promptData{
		Topic:      topic,
		Context:    context,
		Literature: literature,
		Reply:      "Responde en español.",
	}
	if lang == types.LanguageEnglish {
		data.Reply = "Respond in English."
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", category, err)
	}
	return buf.String(), nil
}

// maxSynthesized bounds how many references go into a prompt.
const maxSynthesized = 10

// Synthesize condenses collected references into the literature block of a
// prompt, one APA citation per line. It returns "" when refs is empty.
func Synthesize(refs []types.Reference) string {
	if len(refs) > maxSynthesized {
		refs = refs[:maxSynthesized]
	}
	lines := make([]string, 0, len(refs))
	for _, r := range refs {
		lines = append(lines, "- "+bibliography.FormatCitation(r, bibliography.StyleAPA))
	}
	return strings.Join(lines, "\n")
}
