package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/qiqi-070707/council-ai/internal/models"
	"github.com/qiqi-070707/council-ai/internal/services"
)

// eventMsg carries a session event into the bubbletea loop.
type eventMsg models.Event

type line struct {
	role    models.Role
	content []rune
	shown   int
}

// Model renders a session's playback in the terminal. It holds only what the
// event stream told it, the same view a browser viewer builds.
type Model struct {
	sess     *models.Session
	sessions *services.SessionService
	roster   *models.Roster

	lines    []line
	active   *models.Role
	selected *models.Role
	finished bool
	failure  string

	exitOnFinish bool
	width        int
}

func NewModel(sessions *services.SessionService, sess *models.Session, roster *models.Roster) *Model {
	return &Model{sess: sess, sessions: sessions, roster: roster}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case eventMsg:
		return m, m.apply(models.Event(msg))
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return tea.Quit
	case "0", "esc":
		if m.selected != nil {
			m.sessions.SelectRole(m.sess, *m.selected)
		}
	case "1", "2", "3", "4", "5":
		role := models.Roles[int(key[0]-'1')]
		m.sessions.SelectRole(m.sess, role)
	}
	return nil
}

func (m *Model) apply(e models.Event) tea.Cmd {
	switch e.Type {
	case models.EventReset:
		m.lines = nil
		m.active = nil
		m.selected = nil
		m.finished = false
		m.failure = ""
	case models.EventActive:
		role := e.Role
		m.active = &role
	case models.EventReveal:
		if e.Message == nil {
			return nil
		}
		for i := range m.lines {
			m.lines[i].shown = len(m.lines[i].content)
		}
		content := []rune(e.Message.Content)
		m.lines = append(m.lines, line{role: e.Message.Role, content: content, shown: min(e.Shown, len(content))})
	case models.EventTyping:
		if e.Index >= 0 && e.Index < len(m.lines) {
			m.lines[e.Index].shown = min(e.Shown, len(m.lines[e.Index].content))
		}
		if m.finished && m.exitOnFinish && m.typed() {
			return tea.Quit
		}
	case models.EventSelection:
		if e.Role == "" {
			m.selected = nil
		} else {
			role := e.Role
			m.selected = &role
		}
	case models.EventFinished:
		m.active = nil
		m.finished = true
		// the last message keeps typing after the run finishes
		if m.exitOnFinish && m.typed() {
			return tea.Quit
		}
	case models.EventFailed:
		m.failure = e.Text
		m.lines = nil
		m.active = nil
		if m.exitOnFinish {
			return tea.Quit
		}
	}
	return nil
}

// Finished reports whether playback completed.
func (m *Model) Finished() bool {
	return m.finished
}

// Failure is the notice of a failed run, empty otherwise.
func (m *Model) Failure() string {
	return m.failure
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Council AI"))
	b.WriteString(" ")
	b.WriteString(mutedStyle.Render("board meeting"))
	b.WriteString("\n\n")

	var badges []string
	for i, p := range m.roster.Participants() {
		active := m.active != nil && *m.active == p.Role
		selected := m.selected != nil && *m.selected == p.Role
		badges = append(badges, badgeStyle(p, active, selected).Render(fmt.Sprintf("%d %s", i+1, p.Short)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, badges...))
	b.WriteString("\n\n")

	if m.failure != "" {
		b.WriteString(errorStyle.Render(m.failure))
		b.WriteString("\n\n")
	}

	bubbleWidth := 0
	if m.width > 8 {
		bubbleWidth = m.width * 3 / 4
	}
	for i, l := range m.lines {
		if m.selected != nil && *m.selected != l.role {
			continue
		}
		p := m.roster.Lookup(l.role)
		text := string(l.content[:l.shown])
		if i == len(m.lines)-1 && l.shown < len(l.content) {
			text += cursorStyle.Render("▍")
		}
		body := badgeStyle(p, false, false).Bold(true).Render(p.Short) + "\n" + text
		bubble := bubbleStyle(p, bubbleWidth).Render(body)
		if p.Side == "right" && m.width > 0 {
			bubble = lipgloss.PlaceHorizontal(m.width, lipgloss.Right, bubble)
		}
		b.WriteString(bubble)
		b.WriteString("\n")
	}

	switch {
	case m.finished:
		b.WriteString(doneStyle.Render("Workshop synthesized."))
		b.WriteString("\n")
	case m.active != nil:
		b.WriteString(mutedStyle.Render(m.roster.Lookup(*m.active).Short + " is speaking..."))
		b.WriteString("\n")
	case len(m.lines) == 0 && m.failure == "":
		b.WriteString(mutedStyle.Render("Synchronizing..."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("1-5 focus a role • 0 show all • q quit"))
	return b.String()
}

func (m *Model) typed() bool {
	if len(m.lines) == 0 {
		return true
	}
	last := m.lines[len(m.lines)-1]
	return last.shown >= len(last.content)
}
