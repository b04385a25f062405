package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"focusdeck/journal"
	"focusdeck/model"
	"focusdeck/timer"
)

func (m *Model) updateJournalKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Edit):
		m.mode = modeNotes
		m.notes.SetValue(m.svc.State().Notes)
		m.notes.CursorEnd()
		return m.notes.Focus()
	case key.Matches(msg, m.keys.Export):
		m.copyJournal()
	}
	return nil
}

func (m *Model) updateNotesMode(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		m.svc.SetNotes(m.notes.Value())
		return tea.Quit
	}
	if key.Matches(msg, m.keys.Cancel) {
		m.svc.SetNotes(m.notes.Value())
		m.notes.Blur()
		m.mode = modeNormal
		m.setStatus("Notes saved", false)
		return nil
	}
	var cmd tea.Cmd
	m.notes, cmd = m.notes.Update(msg)
	return cmd
}

func (m *Model) copyJournal() {
	st := m.svc.State()
	doc, err := journal.Render(st, m.board.Board(), journal.Compute(st, m.now()))
	if err != nil {
		m.log.Error("render journal failed", zap.Error(err))
		m.report(err, "")
		return
	}
	if err := clipboard.WriteAll(doc); err != nil {
		m.setStatus("Copy failed: "+err.Error(), true)
		return
	}
	m.setStatus("Journal copied to the clipboard", false)
}

func (m *Model) renderJournalView(st model.AppState, width, height int) string {
	leftW, rightW := m.paneWidths(width, 1)
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderStatsPanel(st, leftW, height),
		lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("│"),
		m.renderNotesPanel(st, rightW, height),
	)
}

func (m *Model) renderStatsPanel(st model.AppState, width, height int) string {
	sum := journal.Compute(st, m.now())
	lines := []string{
		panelTitleStyled("Today", false),
		fmt.Sprintf("Focus     %d min", sum.FocusMinutes),
		fmt.Sprintf("Sessions  %d", len(sum.Sessions)),
		fmt.Sprintf("Streak    %d days", sum.Streak),
		fmt.Sprintf("Done      %d", sum.CompletedToday),
		fmt.Sprintf("Pending   %d", sum.Pending),
		fmt.Sprintf("Day       %d%% • %dh%02dm left", sum.DayProgress, sum.RemainingMinutes/60, sum.RemainingMinutes%60),
		"",
	}
	if len(sum.Sessions) == 0 {
		lines = append(lines, dim("No sessions yet"))
	}
	for _, s := range sum.Sessions {
		label := strings.ToLower(string(s.Mode))
		if s.Name != "" {
			label = s.Name
		}
		line := fmt.Sprintf("%s %s %s", s.Date.In(sum.Date.Location()).Format("15:04"), timer.Format(s.Duration), label)
		lines = append(lines, truncateRunes(line, width))
	}
	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderNotesPanel(st model.AppState, width, height int) string {
	title := panelTitleStyled("Notes", m.mode == modeNotes)
	if m.mode == modeNotes {
		return lipgloss.NewStyle().Width(width).Height(height).Render(title + "\n" + m.notes.View())
	}
	body := renderMarkdown(st.Notes, m.theme, width-2)
	if body == "" {
		body = dim("No notes yet. Press 'e' to write, 'E' to copy the day as markdown.")
	}
	return lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).Render(title + "\n" + body)
}
