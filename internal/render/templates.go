// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import "github.com/pdiddy/research-assistant/pkg/types"

// spanishTemplates are the default offline documents. Topic and context are
// inserted verbatim.
var spanishTemplates = map[types.Category]string{
	types.CategoryProblemStatement: `# Planteamiento del problema: {{.Topic}}

## DESCRIPCIÓN DEL PROBLEMA

En los últimos años, {{.Topic}} se ha convertido en un tema de creciente interés{{.InContext}}. Sin embargo, persisten vacíos en la comprensión de sus causas, manifestaciones y consecuencias, lo que limita la toma de decisiones informadas.

## JUSTIFICACIÓN

- **Relevancia teórica:** el estudio de {{.Topic}} permitirá ampliar el cuerpo de conocimiento existente.
- **Relevancia práctica:** los resultados orientarán acciones concretas para atender {{.Topic}}.
- **Relevancia social:** la investigación beneficiará a los actores involucrados{{.InContext}}.

## DELIMITACIÓN

- **Temática:** {{.Topic}}
- **Espacial:** {{if .Context}}{{.Context}}{{else}}por definir según la población de estudio{{end}}
- **Temporal:** período académico en curso

## PREGUNTAS DE INVESTIGACIÓN

1. ¿Cuál es la situación actual de {{.Topic}}{{.InContext}}?
2. ¿Qué factores inciden en {{.Topic}}?
3. ¿Qué estrategias permitirían atender {{.Topic}} de manera efectiva?
`,

	types.CategoryObjectives: `# Objetivos de investigación: {{.Topic}}

## OBJETIVO GENERAL

Analizar {{.Topic}}{{.InContext}} con el fin de proponer lineamientos que contribuyan a su comprensión y mejora.

## OBJETIVOS ESPECÍFICOS

1. Diagnosticar la situación actual de {{.Topic}}.
2. Identificar los factores asociados a {{.Topic}}.
3. Describir las percepciones de los actores involucrados sobre {{.Topic}}.
4. Proponer estrategias orientadas a fortalecer {{.Topic}}.
`,

	types.CategoryMethodology: `# Metodología: {{.Topic}}

## ENFOQUE Y DISEÑO

- **Enfoque:** mixto (cuantitativo y cualitativo)
- **Tipo de investigación:** descriptiva y correlacional
- **Diseño:** no experimental, transversal

## POBLACIÓN Y MUESTRA

- **Población:** actores vinculados a {{.Topic}}{{.InContext}}
- **Muestra:** muestreo intencional o probabilístico según el acceso a la población

## TÉCNICAS E INSTRUMENTOS

- Encuesta con cuestionario estructurado
- Entrevista semiestructurada
- Revisión documental sobre {{.Topic}}

## ANÁLISIS DE DATOS

- Estadística descriptiva e inferencial
- Análisis de contenido para los datos cualitativos
`,

	types.CategoryVariables: `# Variables de estudio: {{.Topic}}

## VARIABLE INDEPENDIENTE

- Factores asociados a {{.Topic}}

## VARIABLE DEPENDIENTE

- Nivel o grado de {{.Topic}}{{.InContext}}

## OPERACIONALIZACIÓN

| Variable | Dimensión | Indicador |
|---|---|---|
| Factores asociados | Institucional | Recursos disponibles |
| Factores asociados | Personal | Formación previa |
| {{.Topic}} | Desempeño | Resultados observados |
`,

	types.CategorySummary: `# Resumen: {{.Topic}}

## IDEAS PRINCIPALES

- {{.Topic}} es un objeto de estudio relevante{{.InContext}}.
- La literatura señala múltiples factores que inciden en {{.Topic}}.
- Se requieren investigaciones contextualizadas para orientar la práctica.

## CONCLUSIÓN

El estudio de {{.Topic}} ofrece oportunidades para generar conocimiento útil y transferible.
`,

	types.CategoryGeneral: `# {{.Topic}}

## ORIENTACIÓN GENERAL

- **Tema:** {{.Topic}}
{{- if .Context}}
- **Contexto:** {{.Context}}
{{- end}}
- **Siguiente paso sugerido:** formular el planteamiento del problema.

Puedo ayudarte con el planteamiento del problema, los objetivos, la metodología, las variables o un resumen sobre {{.Topic}}.
`,
}

var englishTemplates = map[types.Category]string{
	types.CategoryProblemStatement: `# Problem Statement: {{.Topic}}

## Problem Description

In recent years, {{.Topic}} has drawn growing attention{{.InContext}}. Gaps remain in understanding its causes, manifestations, and consequences.

## Justification

- **Theoretical relevance:** studying {{.Topic}} extends the existing body of knowledge.
- **Practical relevance:** the results will guide concrete actions on {{.Topic}}.

## Delimitation

- **Subject:** {{.Topic}}
- **Setting:** {{if .Context}}{{.Context}}{{else}}to be defined by the study population{{end}}

## Research Questions

1. What is the current state of {{.Topic}}{{.InContext}}?
2. Which factors influence {{.Topic}}?
3. Which strategies would address {{.Topic}} effectively?
`,

	types.CategoryObjectives: `# Research Objectives: {{.Topic}}

## General Objective

To analyze {{.Topic}}{{.InContext}} in order to propose guidelines that contribute to its understanding and improvement.

## Specific Objectives

1. To diagnose the current state of {{.Topic}}.
2. To identify the factors associated with {{.Topic}}.
3. To describe stakeholder perceptions of {{.Topic}}.
4. To propose strategies that strengthen {{.Topic}}.
`,

	types.CategoryMethodology: `# Methodology: {{.Topic}}

## Approach and Design

- **Approach:** mixed methods
- **Type:** descriptive and correlational
- **Design:** non-experimental, cross-sectional

## Population and Sample

- **Population:** stakeholders related to {{.Topic}}{{.InContext}}
- **Sample:** purposive or probabilistic sampling

## Techniques and Instruments

- Structured questionnaire
- Semi-structured interview
- Document review on {{.Topic}}
`,

	types.CategoryVariables: `# Study Variables: {{.Topic}}

## Independent Variable

- Factors associated with {{.Topic}}

## Dependent Variable

- Level of {{.Topic}}{{.InContext}}
`,

	types.CategorySummary: `# Summary: {{.Topic}}

- {{.Topic}} is a relevant object of study{{.InContext}}.
- The literature points to several factors that influence {{.Topic}}.
- Context-specific research is needed to guide practice.
`,

	types.CategoryGeneral: `# {{.Topic}}

- **Topic:** {{.Topic}}
{{- if .Context}}
- **Context:** {{.Context}}
{{- end}}
- **Suggested next step:** write the problem statement.

I can help with the problem statement, objectives, methodology, variables, or a summary on {{.Topic}}.
`,
}
