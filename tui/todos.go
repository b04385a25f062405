package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"focusdeck/app"
	"focusdeck/model"
)

// todoRow is one line of the todo pane: a todo, or one of its subtasks.
type todoRow struct {
	todo model.TodoItem
	sub  *model.Subtask
}

func (m *Model) activeGroup() (model.Group, bool) {
	groups := m.svc.Groups()
	if len(groups) == 0 {
		return model.Group{}, false
	}
	if m.groupCursor < 0 || m.groupCursor >= len(groups) {
		m.groupCursor = 0
	}
	return groups[m.groupCursor], true
}

func (m *Model) todoRows() []todoRow {
	g, ok := m.activeGroup()
	if !ok {
		return nil
	}
	todos := m.svc.TodosInGroup(g.ID)
	rows := make([]todoRow, 0, len(todos))
	for _, t := range todos {
		rows = append(rows, todoRow{todo: t})
		for i := range t.Subtasks {
			rows = append(rows, todoRow{todo: t, sub: &t.Subtasks[i]})
		}
	}
	return rows
}

func (m *Model) selectedRow() (todoRow, bool) {
	rows := m.todoRows()
	if len(rows) == 0 {
		return todoRow{}, false
	}
	m.todoCursor = clamp(m.todoCursor, 0, len(rows)-1)
	return rows[m.todoCursor], true
}

func (m *Model) updateTodoKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.todoCursor = max(m.todoCursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.todoCursor = min(m.todoCursor+1, max(len(m.todoRows())-1, 0))
	case key.Matches(msg, m.keys.Left):
		m.groupCursor = max(m.groupCursor-1, 0)
		m.todoCursor = 0
	case key.Matches(msg, m.keys.Right):
		m.groupCursor = min(m.groupCursor+1, len(m.svc.Groups())-1)
		m.todoCursor = 0
	case key.Matches(msg, m.keys.Add):
		target := model.GroupCurrent
		if g, ok := m.activeGroup(); ok && g.ID != model.GroupFinished {
			target = g.ID
		}
		return m.openInput(inputAddTodo, "New todo: ", "", target)
	case key.Matches(msg, m.keys.AddGroup):
		return m.openInput(inputAddGroup, "New group: ", "", "")
	case key.Matches(msg, m.keys.DelGroup):
		g, ok := m.activeGroup()
		if !ok || g.Type == model.GroupSystem {
			m.setStatus("System groups cannot be deleted", true)
			return nil
		}
		m.askConfirm(confirmDeleteGroup, g.ID)
	case key.Matches(msg, m.keys.AddSub):
		row, ok := m.selectedRow()
		if !ok {
			m.setStatus("No todo selected", true)
			return nil
		}
		return m.openInput(inputAddSubtask, "Subtask: ", "", row.todo.ID)
	case key.Matches(msg, m.keys.Edit):
		row, ok := m.selectedRow()
		if !ok {
			m.setStatus("No todo selected", true)
			return nil
		}
		return m.openInput(inputEditTodo, "Edit todo: ", row.todo.Text, row.todo.ID)
	case key.Matches(msg, m.keys.Deadline):
		row, ok := m.selectedRow()
		if !ok {
			m.setStatus("No todo selected", true)
			return nil
		}
		value := ""
		if row.todo.Deadline != nil {
			value = row.todo.Deadline.In(m.now().Location()).Format(app.DeadlineDateTime)
		}
		return m.openInput(inputDeadline, "Deadline (YYYY-MM-DD HH:MM, empty clears): ", value, row.todo.ID)
	case key.Matches(msg, m.keys.MoveGroup):
		row, ok := m.selectedRow()
		if !ok {
			m.setStatus("No todo selected", true)
			return nil
		}
		g, _ := m.activeGroup()
		return m.openInput(inputMoveTodo, "Move to group: ", g.Name, row.todo.ID)
	case key.Matches(msg, m.keys.Toggle):
		m.toggleRow()
	case key.Matches(msg, m.keys.Delete):
		row, ok := m.selectedRow()
		if !ok {
			return nil
		}
		if row.sub != nil {
			m.report(m.svc.DeleteSubtask(row.todo.ID, row.sub.ID), "Subtask deleted")
			m.ensureSelection()
			return nil
		}
		m.askConfirm(confirmDeleteTodo, row.todo.ID)
	case key.Matches(msg, m.keys.Focus):
		row, ok := m.selectedRow()
		if !ok {
			m.setStatus("No todo selected", true)
			return nil
		}
		m.report(m.svc.FocusOnTodo(row.todo.ID), "Focusing on "+row.todo.Text)
	case key.Matches(msg, m.keys.Clear):
		m.askConfirm(confirmClearCompleted, "")
	case key.Matches(msg, m.keys.ClearAll):
		if len(m.svc.Todos()) == 0 {
			m.setStatus("No todos to remove", false)
			return nil
		}
		m.askConfirm(confirmClearAll, "")
	case key.Matches(msg, m.keys.Copy):
		m.copyOpenTodos()
	}
	return nil
}

// setDeadline applies a typed deadline. Empty text clears it; a partial
// entry edits the matching half of the current deadline.
func (m *Model) setDeadline(todoID, text string) {
	if text == "" {
		_, err := m.svc.UpdateTodo(todoID, app.TodoPatch{ClearDeadline: true})
		m.report(err, "Deadline cleared")
		return
	}
	todo, err := m.svc.Todo(todoID)
	if err != nil {
		m.report(err, "")
		return
	}
	base := m.now()
	if todo.Deadline != nil {
		base = todo.Deadline.In(base.Location())
	}
	deadline, err := app.ParseDeadline(text, base)
	if err != nil {
		m.report(err, "")
		return
	}
	_, err = m.svc.UpdateTodo(todoID, app.TodoPatch{Deadline: &deadline})
	m.report(err, "Due "+deadline.Format("02 Jan 15:04"))
}

func (m *Model) moveTodo(todoID, ref string) {
	g, err := m.svc.FindGroup(ref)
	if err != nil {
		m.report(err, "")
		return
	}
	_, err = m.svc.UpdateTodo(todoID, app.TodoPatch{GroupID: &g.ID})
	m.report(err, "Moved to "+g.Name)
	m.ensureSelection()
}

func (m *Model) toggleRow() {
	row, ok := m.selectedRow()
	if !ok {
		m.setStatus("No todo selected", true)
		return
	}
	if row.sub != nil {
		m.report(m.svc.ToggleSubtask(row.todo.ID, row.sub.ID), "Subtask updated")
		return
	}
	updated, err := m.svc.ToggleTodo(row.todo.ID)
	if err != nil {
		m.report(err, "")
		return
	}
	if updated.Completed {
		m.setStatus("Todo completed", false)
	} else {
		m.setStatus("Todo reopened", false)
	}
	m.ensureSelection()
}

func (m *Model) copyOpenTodos() {
	parts := make([]string, 0)
	for _, t := range m.svc.Todos() {
		if t.Completed {
			continue
		}
		text := strings.TrimSpace(strings.ReplaceAll(t.Text, "\n", " "))
		if text == "" {
			continue
		}
		parts = append(parts, "- "+text)
	}
	if len(parts) == 0 {
		m.setStatus("No open todos to copy", false)
		return
	}
	if err := clipboard.WriteAll(strings.Join(parts, "\n")); err != nil {
		m.setStatus("Copy failed: "+err.Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("%d todos copied to the clipboard", len(parts)), false)
}

func (m *Model) renderTodoView(st model.AppState, width, height int) string {
	leftW, rightW := m.paneWidths(width, 1)
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderGroupsPanel(leftW, height),
		lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("│"),
		m.renderTodosPanel(rightW, height),
	)
}

func (m *Model) renderGroupsPanel(width, height int) string {
	groups := m.svc.Groups()
	lines := make([]string, 0, len(groups)+1)
	lines = append(lines, panelTitleStyled("Groups", false))
	for i, g := range groups {
		cursor := " "
		if i == m.groupCursor {
			cursor = "▸"
		}
		count := len(m.svc.TodosInGroup(g.ID))
		line := fmt.Sprintf("%s %s (%d)", cursor, truncateRunes(g.Name, width-8), count)
		if i == m.groupCursor {
			line = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Render(line)
		}
		lines = append(lines, line)
	}
	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderTodosPanel(width, height int) string {
	title := "Todos"
	if g, ok := m.activeGroup(); ok {
		title = "Todos · " + g.Name
	}
	rows := m.todoRows()

	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, panelTitleStyled(title, true))
	if len(rows) == 0 {
		lines = append(lines, dim("Nothing here. Press 'a' to add a todo."))
	}
	for i, row := range rows {
		cursor := "  "
		if i == m.todoCursor {
			cursor = "▸ "
		}
		var line string
		if row.sub != nil {
			line = cursor + "    " + checkbox(row.sub.Completed) + " " + truncateRunes(row.sub.Text, width-12)
		} else {
			line = cursor + checkbox(row.todo.Completed) + " " + truncateRunes(row.todo.Text, width-24) + todoMeta(row.todo)
		}

		style := lipgloss.NewStyle()
		done := row.todo.Completed
		if row.sub != nil {
			done = row.sub.Completed
		}
		if done {
			style = style.Faint(true)
		}
		if i == m.todoCursor {
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		lines = append(lines, style.Render(line))
	}
	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func todoMeta(t model.TodoItem) string {
	var parts []string
	if t.Deadline != nil {
		parts = append(parts, "due "+t.Deadline.Local().Format("02 Jan 15:04"))
	}
	if n := len(t.Subtasks); n > 0 {
		done := 0
		for _, s := range t.Subtasks {
			if s.Completed {
				done++
			}
		}
		parts = append(parts, fmt.Sprintf("%d/%d", done, n))
	}
	if t.Link != "" {
		parts = append(parts, "link")
	}
	if len(parts) == 0 {
		return ""
	}
	return "  " + dim(strings.Join(parts, " • "))
}
