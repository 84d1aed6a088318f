// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/assistant"
	"github.com/pdiddy/research-assistant/internal/history"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive research session in the terminal",
	Long: `Chat opens an interactive session. Each line is classified and answered
with a document; lines starting with "/" are commands (/ayuda lists them).
Sessions are journaled when history is enabled or --session is given.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := appConfig
	applyGenerationFlags(cmd, &cfg.Generation)

	sessionID, _ := cmd.Flags().GetString("session")
	if sessionID != "" {
		cfg.History.Enabled = true
	}
	journal, closeJournal := openJournal(cfg.History)
	defer closeJournal()

	sess := assistant.NewSession(cfg.Generation.Language, cfg.Bibliography.Style, "")
	if researchContext, _ := cmd.Flags().GetString("context"); researchContext != "" {
		sess.Context = researchContext
	}
	if journal != nil {
		if sessionID != "" {
			loaded, err := journal.Load(ctx, sessionID)
			switch {
			case err == nil:
				sess = loaded
				if cmd.Flags().Changed("lang") {
					sess.Language = cfg.Generation.Language
				}
			case errors.Is(err, history.ErrNotFound):
				sess.ID = sessionID
			default:
				return err
			}
		}
		if err := journal.SaveSession(ctx, sess); err != nil {
			logger.Warn("saving session failed", zap.Error(err))
		}
	}

	a := newAssistant(ctx, cfg, journal)
	m := newChatModel(ctx, a, sess)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sesión %s\n", sess.ID)
	return nil
}

// --- model ---

type chatStyles struct {
	Header    lipgloss.Style
	Muted     lipgloss.Style
	User      lipgloss.Style
	Notice    lipgloss.Style
	Offline   lipgloss.Style
	Prompt    lipgloss.Style
	Spinner   lipgloss.Style
	Separator lipgloss.Style
}

func defaultChatStyles() chatStyles {
	accent := lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	muted := lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	return chatStyles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1),
		Muted:     lipgloss.NewStyle().Foreground(muted),
		User:      lipgloss.NewStyle().Bold(true).Foreground(accent),
		Notice:    lipgloss.NewStyle().Foreground(muted).Italic(true),
		Offline:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Prompt:    lipgloss.NewStyle().Foreground(accent),
		Spinner:   lipgloss.NewStyle().Foreground(accent),
		Separator: lipgloss.NewStyle().Foreground(muted),
	}
}

type chatEntry struct {
	role    types.Role
	content string
	// markdown entries are rendered with glamour at view width.
	markdown bool
	offline  string
}

// replyMsg carries the result of one assistant turn back to Update.
type replyMsg struct {
	reply   assistant.Reply
	context string
	style   string
}

type chatModel struct {
	ctx       context.Context
	assistant *assistant.Assistant

	// session is only touched by the turn in flight; Update never reads it
	// while loading is set.
	session *types.Session

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	styles   chatStyles

	entries   []chatEntry
	loading   bool
	width     int
	sessionID string
	context   string
	style     string
}

func newChatModel(ctx context.Context, a *assistant.Assistant, sess *types.Session) chatModel {
	styles := defaultChatStyles()

	ti := textinput.New()
	ti.Placeholder = "Escribe una solicitud o /ayuda (Ctrl+C para salir)"
	ti.Focus()
	ti.Prompt = "│ "
	ti.CharLimit = 2000
	ti.Width = 80
	ti.PromptStyle = styles.Prompt

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	m := chatModel{
		ctx:       ctx,
		assistant: a,
		session:   sess,
		input:     ti,
		viewport:  viewport.New(80, 20),
		spinner:   sp,
		styles:    styles,
		width:     80,
		sessionID: sess.ID,
		context:   sess.Context,
		style:     sess.Style,
	}
	for _, t := range sess.Turns {
		m.entries = append(m.entries, chatEntry{role: t.Role, content: t.Content, markdown: t.Role == types.RoleAssistant})
	}
	if len(m.entries) == 0 {
		m.entries = append(m.entries, chatEntry{role: types.RoleAssistant, content: assistant.HelpText})
	}
	m.viewport.SetContent(m.renderEntries())
	return m
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Reset()
			if !strings.HasPrefix(text, "/") {
				m.entries = append(m.entries, chatEntry{role: types.RoleUser, content: text})
			}
			m.loading = true
			m.refresh()
			return m, tea.Batch(m.respond(text), m.spinner.Tick)
		}
		if !m.loading {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		const chrome = 5 // header, separator, input, footer
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chrome, 3)
		m.input.Width = max(msg.Width-4, 10)
		m.refresh()

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case replyMsg:
		m.loading = false
		m.context = msg.context
		m.style = msg.style
		if msg.reply.Cleared {
			m.entries = nil
		}
		entry := chatEntry{role: types.RoleAssistant, content: msg.reply.Text}
		if doc := msg.reply.Document; doc != nil {
			entry.markdown = true
			if doc.Degraded() {
				entry.offline = doc.FallbackReason
			}
		}
		m.entries = append(m.entries, entry)
		m.refresh()
		if msg.reply.Quit {
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// respond runs one turn off the update loop.
func (m chatModel) respond(text string) tea.Cmd {
	a, sess, ctx := m.assistant, m.session, m.ctx
	return func() tea.Msg {
		reply := a.Respond(ctx, sess, text)
		return replyMsg{reply: reply, context: sess.Context, style: sess.Style}
	}
}

func (m *chatModel) refresh() {
	m.viewport.SetContent(m.renderEntries())
	m.viewport.GotoBottom()
}

func (m chatModel) renderEntries() string {
	var b strings.Builder
	for _, e := range m.entries {
		switch {
		case e.role == types.RoleUser:
			b.WriteString(m.styles.User.Render("› "+e.content) + "\n\n")
		case e.markdown:
			if e.offline != "" {
				b.WriteString(m.styles.Offline.Render("plantilla offline: "+e.offline) + "\n")
			}
			b.WriteString(renderMarkdown(e.content, m.width-4))
		default:
			b.WriteString(m.styles.Notice.Render(e.content) + "\n\n")
		}
	}
	return b.String()
}

func (m chatModel) View() string {
	header := m.styles.Header.Render("research-assistant") +
		m.styles.Muted.Render(fmt.Sprintf("sesión %s · estilo %s", shortID(m.sessionID), m.style))
	if m.context != "" {
		header += m.styles.Muted.Render(" · contexto: " + m.context)
	}

	input := m.input.View()
	if m.loading {
		input = m.spinner.View() + m.styles.Muted.Render(" generando...")
	}

	sep := m.styles.Separator.Render(strings.Repeat("─", max(m.width, 10)))
	footer := m.styles.Muted.Render("Enter enviar · ↑/↓ desplazar · /ayuda comandos · Ctrl+C salir")
	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), sep, input, footer)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	chatCmd.Flags().String("session", "", "resume or create the session with this ID")
	chatCmd.Flags().String("context", "", "initial research context")
	addGenerationFlags(chatCmd)

	rootCmd.AddCommand(chatCmd)
}
