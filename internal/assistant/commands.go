// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/research-assistant/internal/bibliography"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Slash commands accepted by Respond.
const (
	CmdSearch       = "/buscar"
	CmdBibliography = "/bibliografia"
	CmdContext      = "/contexto"
	CmdStyle        = "/estilo"
	CmdReferences   = "/referencias"
	CmdClear        = "/limpiar"
	CmdHelp         = "/ayuda"
	CmdQuit         = "/salir"
)

const (
	msgEmpty  = "Escribe una solicitud de investigación o /ayuda para ver los comandos."
	msgBye    = "¡Hasta luego!"
	msgNoRefs = "No hay referencias en la sesión. Usa /buscar <consulta> para agregarlas."
)

// HelpText lists the commands in Spanish.
const HelpText = `Comandos disponibles:
  /buscar <consulta>        busca literatura y agrega las referencias a la sesión
  /bibliografia [APA|UPEL]  genera la bibliografía de la sesión
  /contexto <texto>         fija el contexto de la investigación
  /estilo <APA|UPEL>        cambia el estilo de citación
  /referencias              lista las referencias recopiladas
  /limpiar                  borra la conversación y las referencias
  /ayuda                    muestra esta ayuda
  /salir                    termina la sesión

Cualquier otro texto se interpreta como una solicitud, por ejemplo:
  Formula el planteamiento del problema sobre competencias digitales`

func (a *Assistant) command(ctx context.Context, sess *types.Session, line string) Reply {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case CmdSearch:
		return a.cmdSearch(ctx, sess, arg)
	case CmdBibliography:
		return a.cmdBibliography(sess, arg)
	case CmdContext:
		return a.cmdContext(ctx, sess, arg)
	case CmdStyle:
		return a.cmdStyle(ctx, sess, arg)
	case CmdReferences:
		return cmdReferences(sess)
	case CmdClear:
		sess.Clear()
		a.save(ctx, sess)
		return Reply{Text: "Sesión reiniciada: conversación y referencias borradas.", Cleared: true}
	case CmdHelp:
		return Reply{Text: HelpText}
	case CmdQuit:
		return Reply{Text: msgBye, Quit: true}
	default:
		return Reply{Text: fmt.Sprintf("Comando desconocido: %s. Escribe /ayuda para ver los comandos.", name)}
	}
}

func (a *Assistant) cmdSearch(ctx context.Context, sess *types.Session, query string) Reply {
	if query == "" {
		return Reply{Text: "Uso: /buscar <consulta>"}
	}
	if len(a.backends) == 0 {
		return Reply{Text: "La búsqueda bibliográfica no está configurada."}
	}

	out, warnings, err := a.Search(ctx, sess, query)
	if err != nil {
		return Reply{Text: fmt.Sprintf("Error en la búsqueda: %v", err)}
	}

	var b strings.Builder
	b.WriteString(warnings)
	search.FormatTable(out, &b)
	if n := len(out.References); n > 0 {
		fmt.Fprintf(&b, "\n%d referencias agregadas a la sesión (total: %d).", n, len(sess.References))
	}
	return Reply{Text: strings.TrimRight(b.String(), "\n"), References: out.References}
}

func (a *Assistant) cmdBibliography(sess *types.Session, style string) Reply {
	if style == "" {
		style = sess.Style
	}
	if len(sess.References) == 0 {
		return Reply{Text: msgNoRefs}
	}
	refs := bibliography.SortByAuthor(sess.References)
	return Reply{Text: bibliography.FormatBibliography(refs, style)}
}

func (a *Assistant) cmdContext(ctx context.Context, sess *types.Session, text string) Reply {
	if text == "" {
		if sess.Context == "" {
			return Reply{Text: "No hay contexto definido. Uso: /contexto <texto>"}
		}
		return Reply{Text: "Contexto actual: " + sess.Context}
	}
	sess.Context = text
	a.save(ctx, sess)
	return Reply{Text: "Contexto actualizado: " + text}
}

func (a *Assistant) cmdStyle(ctx context.Context, sess *types.Session, style string) Reply {
	switch strings.ToUpper(style) {
	case bibliography.StyleAPA, bibliography.StyleUPEL:
		sess.Style = strings.ToUpper(style)
		a.save(ctx, sess)
		return Reply{Text: "Estilo de citación: " + sess.Style}
	case "":
		return Reply{Text: "Estilo actual: " + sess.Style + ". Uso: /estilo <APA|UPEL>"}
	default:
		return Reply{Text: fmt.Sprintf("Estilo no soportado: %s. Usa APA o UPEL.", style)}
	}
}

func cmdReferences(sess *types.Session) Reply {
	if len(sess.References) == 0 {
		return Reply{Text: msgNoRefs}
	}
	var b strings.Builder
	for i, r := range sess.References {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, bibliography.FormatCitation(r, sess.Style))
	}
	return Reply{Text: b.String()}
}
