package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"focusdeck/app"
	"focusdeck/kanban"
	"focusdeck/model"
)

// Screen rows of the board: the header takes row 0, the pane border row 1,
// column titles row 2 and tasks start on row 3, one row each.
const (
	boardTaskRow = 3
	boardLeftX   = 1
	minColumnW   = 12
)

type boardLayout struct {
	colW  int
	count int
}

func (m *Model) innerWidth() int {
	return max(m.viewportWidth()-2, 20)
}

func (m *Model) layoutBoard(width, columns int) boardLayout {
	if columns <= 0 {
		return boardLayout{colW: width}
	}
	colW := max((width-(columns-1))/columns, minColumnW)
	return boardLayout{colW: colW, count: columns}
}

// columnAt maps a screen x to a column index.
func (l boardLayout) columnAt(x int) (int, bool) {
	rel := x - boardLeftX
	if rel < 0 || l.colW <= 0 {
		return 0, false
	}
	col := rel / (l.colW + 1)
	if col >= l.count || rel%(l.colW+1) == l.colW {
		return 0, false
	}
	return col, true
}

// taskAt maps a screen y to a task position.
func taskAt(y, tasks int) (int, bool) {
	pos := y - boardTaskRow
	if pos < 0 || pos >= tasks {
		return 0, false
	}
	return pos, true
}

// taskRects is the vertical extent of every task of a column on screen.
func taskRects(tasks int) []kanban.Rect {
	rects := make([]kanban.Rect, tasks)
	for i := range rects {
		rects[i] = kanban.Rect{Top: boardTaskRow + i, Bottom: boardTaskRow + i + 1}
	}
	return rects
}

func (m *Model) selectedTask() (model.Column, model.KanbanTask, bool) {
	b := m.board.Board()
	if len(b.Columns) == 0 {
		return model.Column{}, model.KanbanTask{}, false
	}
	col := b.Columns[clamp(m.colCursor, 0, len(b.Columns)-1)]
	if len(col.Tasks) == 0 {
		return col, model.KanbanTask{}, false
	}
	return col, col.Tasks[clamp(m.rowCursor, 0, len(col.Tasks)-1)], true
}

func (m *Model) updateBoardKeys(msg tea.KeyMsg) tea.Cmd {
	b := m.board.Board()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.rowCursor = max(m.rowCursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.rowCursor++
	case key.Matches(msg, m.keys.Left):
		m.colCursor = max(m.colCursor-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.colCursor = min(m.colCursor+1, max(len(b.Columns)-1, 0))
	case key.Matches(msg, m.keys.MoveUp):
		m.moveTask(app.MoveUp)
	case key.Matches(msg, m.keys.MoveDown):
		m.moveTask(app.MoveDown)
	case key.Matches(msg, m.keys.MoveLeft):
		m.moveTask(app.MoveLeft)
	case key.Matches(msg, m.keys.MoveRight):
		m.moveTask(app.MoveRight)
	case key.Matches(msg, m.keys.Add):
		col, _, _ := m.selectedTask()
		if col.ID == "" {
			m.setStatus("Add a column first (A)", true)
			return nil
		}
		return m.openInput(inputAddTask, "New card in "+col.Title+" (title -d description): ", "", col.ID)
	case key.Matches(msg, m.keys.AddColumn):
		return m.openInput(inputAddColumn, "New column: ", "", "")
	case key.Matches(msg, m.keys.Edit):
		_, task, ok := m.selectedTask()
		if !ok {
			m.setStatus("No card selected", true)
			return nil
		}
		return m.openInput(inputEditTask, "Edit card: ", task.Content, task.ID)
	case key.Matches(msg, m.keys.Describe):
		_, task, ok := m.selectedTask()
		if !ok {
			m.setStatus("No card selected", true)
			return nil
		}
		return m.openInput(inputEditDescription, "Description: ", task.Description, task.ID)
	case key.Matches(msg, m.keys.Delete):
		_, task, ok := m.selectedTask()
		if !ok {
			m.setStatus("No card selected", true)
			return nil
		}
		m.askConfirm(confirmDeleteTask, task.ID)
	}
	m.ensureSelection()
	return nil
}

// splitCardInput reads "title -d description" as typed in the add prompt.
func splitCardInput(text string) (content, description string) {
	content, description, _ = strings.Cut(text, " -d ")
	return strings.TrimSpace(content), strings.TrimSpace(description)
}

func (m *Model) moveTask(dir app.Direction) {
	_, task, ok := m.selectedTask()
	if !ok {
		m.setStatus("No card selected", true)
		return
	}
	if err := m.board.Move(task.ID, dir); err != nil {
		m.report(err, "")
		return
	}
	m.followTask(task.ID)
}

func (m *Model) followTask(taskID string) {
	if col, pos, ok := kanban.Find(m.board.Board(), taskID); ok {
		m.colCursor = col
		m.rowCursor = pos
	}
}

// armCmd fires the arm step of a press once ArmDelay has passed.
func armCmd(seq int) tea.Cmd {
	return tea.Tick(kanban.ArmDelay, func(time.Time) tea.Msg {
		return armMsg{seq: seq}
	})
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.mode != modeNormal || m.svc.State().CurrentView != model.ViewBoard {
		return nil
	}
	b := m.board.Board()
	layout := m.layoutBoard(m.innerWidth(), len(b.Columns))
	col, inColumn := layout.columnAt(msg.X)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !inColumn {
			return nil
		}
		pos, onTask := taskAt(msg.Y, len(b.Columns[col].Tasks))
		if !onTask {
			return nil
		}
		m.colCursor, m.rowCursor = col, pos
		return armCmd(m.gesture.PointerDown(b.Columns[col].Tasks[pos].ID, b.Columns[col].ID))
	case tea.MouseActionMotion:
		if !m.gesture.Dragging() && !m.gesture.Begin() {
			return nil
		}
		if inColumn {
			m.gesture.Over(b.Columns[col].ID, msg.Y, taskRects(len(b.Columns[col].Tasks)))
		}
	case tea.MouseActionRelease:
		m.finishDrag(b, col, inColumn)
	}
	return nil
}

func (m *Model) finishDrag(b model.Board, col int, inColumn bool) {
	defer m.gesture.Cancel()
	if !m.gesture.Dragging() {
		m.gesture.PointerUp()
		return
	}
	if !inColumn {
		m.setStatus("Drop cancelled", false)
		return
	}
	taskID, from := m.gesture.Source()
	to := b.Columns[col]
	dest := len(to.Tasks)
	if to.ID == from {
		dest--
	}
	index := m.gesture.DropTarget(to.ID, dest)
	if err := m.board.Drop(taskID, from, to.ID, index); err != nil {
		m.report(err, "")
		return
	}
	m.followTask(taskID)
	m.setStatus("Card moved to "+to.Title, false)
}

func (m *Model) renderBoardView(width, height int) string {
	b := m.board.Board()
	if len(b.Columns) == 0 {
		return dim("No columns. Press 'A' to add one.")
	}
	layout := m.layoutBoard(width, len(b.Columns))
	indicator, hasIndicator := m.gesture.Indicator()
	dragged, _ := m.gesture.Source()

	sep := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("│")
	blocks := make([]string, 0, len(b.Columns)*2)
	for ci, col := range b.Columns {
		lines := []string{panelTitleStyled(truncateRunes(fmt.Sprintf("%s (%d)", col.Title, len(col.Tasks)), layout.colW-2), ci == m.colCursor)}
		for ti, task := range col.Tasks {
			gutter := "  "
			if hasIndicator && m.gesture.Dragging() && indicator.ColumnID == col.ID && indicator.Index == ti {
				gutter = "» "
			} else if ci == m.colCursor && ti == m.rowCursor {
				gutter = "▸ "
			}
			style := lipgloss.NewStyle()
			if ci == m.colCursor && ti == m.rowCursor {
				style = style.Bold(true).Foreground(lipgloss.Color("229"))
			}
			if m.gesture.Dragging() && task.ID == dragged {
				style = style.Faint(true)
			}
			lines = append(lines, gutter+style.Render(truncateRunes(task.Content, layout.colW-2)))
		}
		if hasIndicator && m.gesture.Dragging() && indicator.ColumnID == col.ID && indicator.Index >= len(col.Tasks) {
			lines = append(lines, "» "+dim("drop here"))
		}
		if len(col.Tasks) == 0 {
			lines = append(lines, dim("  empty"))
		}
		blocks = append(blocks, lipgloss.NewStyle().Width(layout.colW).Render(strings.Join(lines, "\n")))
		if ci < len(b.Columns)-1 {
			blocks = append(blocks, sep)
		}
	}
	board := lipgloss.JoinHorizontal(lipgloss.Top, blocks...)

	detail := ""
	if _, task, ok := m.selectedTask(); ok && strings.TrimSpace(task.Description) != "" {
		detail = dim(truncateRunes(task.Description, width))
	}
	boardH := lipgloss.Height(board)
	if detail == "" || boardH >= height {
		return board
	}
	return board + strings.Repeat("\n", height-boardH) + detail
}
