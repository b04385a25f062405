package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"focusdeck/app"
	"focusdeck/kanban"
	"focusdeck/media"
	"focusdeck/model"
	"focusdeck/prefs"
)

var viewOrder = []model.View{model.ViewFocus, model.ViewTodo, model.ViewBoard, model.ViewJournal}

type uiMode int

const (
	modeNormal uiMode = iota
	modeInput
	modeConfirm
	modeNotes
)

type inputKind int

const (
	inputNone inputKind = iota
	inputAddTodo
	inputEditTodo
	inputAddGroup
	inputAddSubtask
	inputSessionName
	inputAddURL
	inputAddTask
	inputEditTask
	inputAddColumn
	inputDeadline
	inputMoveTodo
	inputEditDescription
	inputBreakMinutes
)

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmClearCompleted
	confirmClearAll
	confirmDeleteGroup
	confirmDeleteTodo
	confirmDeleteTask
)

type tickMsg struct{ gen int }

type armMsg struct{ seq int }

type playerEventMsg struct {
	ev media.Event
	ok bool
}

// SaveStatus reports the most recent persistence failure.
type SaveStatus interface {
	Err() error
}

// Options wires the model to its services.
type Options struct {
	Context   context.Context
	Service   *app.Service
	Board     *app.BoardService
	Player    *media.Controller
	Saver     SaveStatus
	Log       *zap.Logger
	Status    string
	Theme     string
	PrefsPath string
	Mouse     bool
	Now       func() time.Time
}

type Model struct {
	ctx    context.Context
	svc    *app.Service
	board  *app.BoardService
	player *media.Controller
	saver  SaveStatus
	log    *zap.Logger
	now    func() time.Time

	mode    uiMode
	input   textinput.Model
	inKind  inputKind
	notes   textarea.Model
	confirm confirmKind
	target  string

	keys     keyMap
	help     help.Model
	showHelp bool
	progress progress.Model

	tickGen int

	groupCursor int
	todoCursor  int
	colCursor   int
	rowCursor   int
	gesture     kanban.Gesture

	theme     string
	prefsPath string

	status      string
	statusErr   bool
	lastSaveErr error

	width  int
	height int
}

// NewModel builds the root model. Nil services are replaced by empty ones.
func NewModel(opts Options) *Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Service == nil {
		opts.Service = app.NewService(model.NewState())
	}
	if opts.Board == nil {
		opts.Board = app.NewBoardService(model.NewBoard())
	}
	if opts.Player == nil {
		opts.Player = media.NewController(nil)
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	theme := strings.TrimSpace(opts.Theme)
	if theme == "" {
		theme = prefs.Default().Theme
	}

	in := textinput.New()
	in.CharLimit = 280
	notes := textarea.New()
	notes.ShowLineNumbers = false
	notes.Placeholder = "Write today's notes in markdown..."

	status := strings.TrimSpace(opts.Status)
	if status == "" {
		status = "Ready"
	}

	m := &Model{
		ctx:       opts.Context,
		svc:       opts.Service,
		board:     opts.Board,
		player:    opts.Player,
		saver:     opts.Saver,
		log:       opts.Log,
		now:       opts.Now,
		input:     in,
		notes:     notes,
		keys:      defaultKeyMap(),
		help:      help.New(),
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		theme:     theme,
		prefsPath: opts.PrefsPath,
		status:    status,
	}
	if err := m.player.Load(m.ctx, m.svc.State().Media.YouTubeURL); err != nil {
		m.log.Warn("queue video failed", zap.Error(err))
	}
	return m
}

// Run starts the program and blocks until it exits.
func Run(opts Options) error {
	m := NewModel(opts)
	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(m.ctx)}
	if opts.Mouse {
		progOpts = append(progOpts, tea.WithMouseCellMotion())
	}
	_, err := tea.NewProgram(m, progOpts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}

func (m *Model) Init() tea.Cmd {
	return waitForPlayer(m.player.Events())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = max(10, min(60, msg.Width-10))
		m.notes.SetWidth(max(20, m.viewportWidth()/2-4))
		m.notes.SetHeight(max(5, msg.Height-12))
	case tickMsg:
		cmd = m.handleTick(msg)
	case armMsg:
		m.gesture.Arm(msg.seq)
	case playerEventMsg:
		cmd = m.handlePlayerEvent(msg)
	case tea.MouseMsg:
		cmd = m.handleMouse(msg)
	case tea.KeyMsg:
		switch m.mode {
		case modeInput:
			cmd = m.updateInputMode(msg)
		case modeConfirm:
			m.updateConfirmMode(msg)
		case modeNotes:
			cmd = m.updateNotesMode(msg)
		default:
			var quit bool
			quit, cmd = m.updateNormalMode(msg)
			if quit {
				return m, tea.Quit
			}
		}
	}
	m.checkSaver()
	return m, cmd
}

func (m *Model) updateNormalMode(msg tea.KeyMsg) (bool, tea.Cmd) {
	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Cancel) {
			m.showHelp = false
		}
		return key.Matches(msg, m.keys.Quit), nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return true, nil
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return false, nil
	case key.Matches(msg, m.keys.NextView):
		m.cycleView(1)
		return false, nil
	case key.Matches(msg, m.keys.PrevView):
		m.cycleView(-1)
		return false, nil
	case key.Matches(msg, m.keys.ViewFocus):
		m.setView(model.ViewFocus)
		return false, nil
	case key.Matches(msg, m.keys.ViewTodo):
		m.setView(model.ViewTodo)
		return false, nil
	case key.Matches(msg, m.keys.ViewBoard):
		m.setView(model.ViewBoard)
		return false, nil
	case key.Matches(msg, m.keys.ViewNotes):
		m.setView(model.ViewJournal)
		return false, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
		return false, nil
	}

	if cmd, handled := m.updateMediaKeys(msg); handled {
		return false, cmd
	}

	switch m.svc.State().CurrentView {
	case model.ViewTodo:
		return false, m.updateTodoKeys(msg)
	case model.ViewBoard:
		return false, m.updateBoardKeys(msg)
	case model.ViewJournal:
		return false, m.updateJournalKeys(msg)
	default:
		return false, m.updateFocusKeys(msg)
	}
}

func (m *Model) updateInputMode(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.closeInput()
		m.setStatus("Cancelled", false)
		return nil
	case "enter":
		kind := m.inKind
		text := strings.TrimSpace(m.input.Value())
		target := m.target
		m.closeInput()
		return m.applyInput(kind, text, target)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) updateConfirmMode(msg tea.KeyMsg) {
	switch strings.ToLower(msg.String()) {
	case "y":
		m.applyConfirm(m.confirm, m.target)
	case "n", "esc", "enter":
		m.setStatus("Action cancelled", false)
	default:
		return
	}
	m.mode = modeNormal
	m.confirm = confirmNone
	m.target = ""
}

func (m *Model) openInput(kind inputKind, prompt, value, target string) tea.Cmd {
	m.mode = modeInput
	m.inKind = kind
	m.target = target
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) closeInput() {
	m.mode = modeNormal
	m.inKind = inputNone
	m.target = ""
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) askConfirm(kind confirmKind, target string) {
	m.mode = modeConfirm
	m.confirm = kind
	m.target = target
}

func (m *Model) applyInput(kind inputKind, text, target string) tea.Cmd {
	var err error
	switch kind {
	case inputAddTodo:
		_, err = m.svc.AddTodo(text, target)
		m.report(err, "Todo added")
		if err == nil {
			m.todoCursor = len(m.todoRows()) - 1
		}
	case inputEditTodo:
		_, err = m.svc.UpdateTodo(target, app.TodoPatch{Text: &text})
		m.report(err, "Todo updated")
	case inputAddGroup:
		_, err = m.svc.AddGroup(text)
		m.report(err, "Group added")
		if err == nil {
			m.groupCursor = len(m.svc.Groups()) - 1
			m.todoCursor = 0
		}
	case inputAddSubtask:
		_, err = m.svc.AddSubtask(target, text)
		m.report(err, "Subtask added")
	case inputSessionName:
		m.svc.SetSessionName(text)
		m.setStatus("Session named", false)
	case inputAddURL:
		return m.addURL(text)
	case inputDeadline:
		m.setDeadline(target, text)
	case inputMoveTodo:
		m.moveTodo(target, text)
	case inputAddTask:
		content, description := splitCardInput(text)
		_, err = m.board.AddTask(target, content, description)
		m.report(err, "Card added")
	case inputEditTask:
		err = m.board.UpdateTask(target, kanban.Patch{Content: &text})
		m.report(err, "Card updated")
	case inputEditDescription:
		err = m.board.UpdateTask(target, kanban.Patch{Description: &text})
		m.report(err, "Description updated")
	case inputAddColumn:
		_, err = m.board.AddColumn(text)
		m.report(err, "Column added")
	case inputBreakMinutes:
		m.setBreakMinutes(text)
	}
	m.ensureSelection()
	return nil
}

func (m *Model) applyConfirm(kind confirmKind, target string) {
	switch kind {
	case confirmClearCompleted:
		m.setStatus(fmt.Sprintf("%d completed todos cleared", m.svc.ClearCompleted()), false)
	case confirmClearAll:
		m.setStatus(fmt.Sprintf("%d todos removed", m.svc.ClearAllTodos()), false)
	case confirmDeleteGroup:
		err := m.svc.DeleteGroup(target)
		m.report(err, "Group deleted")
		if err == nil {
			m.groupCursor = 0
		}
	case confirmDeleteTodo:
		m.svc.DeleteTodo(target)
		m.setStatus("Todo deleted", false)
	case confirmDeleteTask:
		col, _, ok := kanban.Find(m.board.Board(), target)
		if ok {
			m.board.DeleteTask(m.board.Board().Columns[col].ID, target)
		}
		m.setStatus("Card deleted", false)
	}
	m.ensureSelection()
}

func (m *Model) cycleView(delta int) {
	current := m.svc.State().CurrentView
	idx := 0
	for i, v := range viewOrder {
		if v == current {
			idx = i
		}
	}
	next := (idx + delta + len(viewOrder)) % len(viewOrder)
	m.setView(viewOrder[next])
}

func (m *Model) setView(v model.View) {
	if err := m.svc.SetView(v); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.gesture.Cancel()
	m.ensureSelection()
}

func (m *Model) cycleTheme() {
	m.theme = prefs.NextTheme(m.theme)
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme}); err != nil {
		m.log.Warn("save prefs failed", zap.Error(err))
		m.setStatus("Theme "+m.theme+" (not saved: "+err.Error()+")", true)
		return
	}
	m.setStatus("Theme: "+m.theme, false)
}

// report sets the status for an operation result.
func (m *Model) report(err error, success string) {
	if err != nil {
		m.setStatus(errorText(err), true)
		return
	}
	m.setStatus(success, false)
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) checkSaver() {
	if m.saver == nil {
		return
	}
	err := m.saver.Err()
	if err == nil || err == m.lastSaveErr {
		m.lastSaveErr = err
		return
	}
	m.lastSaveErr = err
	m.setStatus("Change applied, but saving to disk failed: "+err.Error(), true)
}

func errorText(err error) string {
	switch {
	case errors.Is(err, app.ErrEmptyText), errors.Is(err, kanban.ErrEmptyContent):
		return "Text must not be empty"
	case errors.Is(err, app.ErrInvalidName), errors.Is(err, kanban.ErrEmptyTitle):
		return "Name must not be empty"
	case errors.Is(err, app.ErrSystemGroup):
		return "System groups cannot be deleted"
	case errors.Is(err, media.ErrNotReady):
		return "Player is not ready yet"
	case errors.Is(err, app.ErrInvalidDeadline):
		return "Deadline must look like 2026-03-01 17:30"
	case errors.Is(err, app.ErrInvalidSettings):
		return "Minutes must be a positive number"
	case errors.Is(err, app.ErrGroupNotFound):
		return "No such group"
	default:
		return "Error: " + err.Error()
	}
}

func (m *Model) ensureSelection() {
	groups := m.svc.Groups()
	m.groupCursor = clamp(m.groupCursor, 0, max(len(groups)-1, 0))
	m.todoCursor = clamp(m.todoCursor, 0, max(len(m.todoRows())-1, 0))

	b := m.board.Board()
	m.colCursor = clamp(m.colCursor, 0, max(len(b.Columns)-1, 0))
	if len(b.Columns) == 0 {
		m.rowCursor = 0
		return
	}
	m.rowCursor = clamp(m.rowCursor, 0, max(len(b.Columns[m.colCursor].Tasks)-1, 0))
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	st := m.svc.State()
	viewW := m.viewportWidth()
	header := m.renderHeader(st)

	innerW := max(viewW-2, 20)
	panelH := max(m.height-5, 8)
	mediaPanel := ""
	if st.Media.PlayerOpen {
		mediaPanel = m.renderMediaPanel(st, viewW)
		panelH = max(panelH-lipgloss.Height(mediaPanel), 8)
	}
	innerH := max(panelH-2, 6)

	var body string
	switch st.CurrentView {
	case model.ViewTodo:
		body = m.renderTodoView(st, innerW, innerH)
	case model.ViewBoard:
		body = m.renderBoardView(innerW, innerH)
	case model.ViewJournal:
		body = m.renderJournalView(st, innerW, innerH)
	default:
		body = m.renderFocusView(st, innerW, innerH)
	}

	frameColor := lipgloss.Color("240")
	if m.mode == modeNormal {
		frameColor = lipgloss.Color("39")
	}
	panes := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(frameColor).
		Width(innerW).
		Height(innerH).
		Render(body)

	if m.showHelp {
		popupW := clamp(viewW-8, 40, 110)
		panes = lipgloss.Place(viewW, panelH, lipgloss.Center, lipgloss.Center, m.renderHelpOverlay(popupW))
	}

	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	if m.statusErr {
		statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	}
	rightHint := m.help.ShortHelpView(m.keys.ShortHelp())
	if m.showHelp {
		rightHint = "esc/? close help"
	}
	parts := []string{header, panes}
	if mediaPanel != "" {
		parts = append(parts, mediaPanel)
	}
	parts = append(parts, m.renderFooter(m.status, statusStyle, rightHint))
	if prompt := m.renderPrompt(viewW); prompt != "" && !m.showHelp {
		parts = append(parts, prompt)
	}
	return strings.Join(parts, "\n")
}

func (m *Model) renderHeader(st model.AppState) string {
	title := lipgloss.NewStyle().Bold(true).Render("focusdeck")
	tabs := make([]string, 0, len(viewOrder))
	for i, v := range viewOrder {
		label := fmt.Sprintf("%d %s", i+1, viewLabel(v))
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
		if v == st.CurrentView {
			style = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
		}
		tabs = append(tabs, style.Render(label))
	}
	clock := timerBadge(st)
	return lipgloss.JoinHorizontal(lipgloss.Left,
		title, "  ", strings.Join(tabs, "  "), "  ",
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(clock),
	)
}

func (m *Model) renderPrompt(width int) string {
	var line string
	switch m.mode {
	case modeInput:
		line = m.input.View() + "  (enter confirms, esc cancels)"
	case modeConfirm:
		line = fmt.Sprintf("%s [y/N]", m.confirmQuestion())
	case modeNotes:
		line = "Editing notes: esc saves"
	default:
		return ""
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Width(width).Render(line)
}

func (m *Model) confirmQuestion() string {
	switch m.confirm {
	case confirmClearCompleted:
		return "Clear all completed todos?"
	case confirmClearAll:
		return fmt.Sprintf("Remove all %d todos?", len(m.svc.Todos()))
	case confirmDeleteGroup:
		return "Delete this group? Its todos move to Current Tasks."
	case confirmDeleteTodo:
		return "Delete this todo?"
	case confirmDeleteTask:
		return "Delete this card?"
	}
	return "Confirm?"
}

func (m *Model) viewportWidth() int {
	if m.width <= 0 {
		return 1
	}
	// one spare column keeps the right border from wrapping in some terminals
	if m.width > 1 {
		return m.width - 1
	}
	return m.width
}

func (m *Model) paneWidths(total, gap int) (int, int) {
	if total <= 0 {
		return 24, 30
	}
	if gap < 0 {
		gap = 0
	}

	minLeft := 20
	minRight := 30
	if total < minLeft+minRight+gap {
		left := max(total/3, 12)
		right := total - left - gap
		if right < 12 {
			right = 12
			left = max(total-right-gap, 10)
		}
		return left, right
	}

	left := clamp(total/4, 22, 34)
	right := total - left - gap
	if right < minRight {
		right = minRight
		left = total - right - gap
	}
	if left < minLeft {
		left = minLeft
		right = total - left - gap
	}
	return left, right
}

func (m *Model) renderFooter(statusText string, statusStyle lipgloss.Style, rightHint string) string {
	left := strings.TrimSpace(statusText)
	if left == "" {
		left = "Ready"
	}
	right := strings.TrimSpace(rightHint)

	leftW := utf8.RuneCountInString(left)
	rightW := lipgloss.Width(right)
	width := m.viewportWidth()

	if leftW+rightW+1 > width {
		left = truncateRunes(left, max(width-rightW-1, 8))
		leftW = utf8.RuneCountInString(left)
	}
	padding := max(width-leftW-rightW, 1)

	line := statusStyle.Render(left) + strings.Repeat(" ", padding) + right
	return lipgloss.NewStyle().Width(width).Render(line)
}

func (m *Model) renderHelpOverlay(width int) string {
	h := m.help
	h.Width = width - 6
	h.ShowAll = true
	title := lipgloss.NewStyle().Bold(true).Render("Shortcuts")
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("244")).
		Padding(1, 2)
	return style.Width(width).Render(title + "\n\n" + h.FullHelpView(m.keys.FullHelp()))
}

func panelTitleStyled(title string, active bool) string {
	base := lipgloss.NewStyle().Bold(true)
	if !active {
		return base.Render(title)
	}
	text := base.Foreground(lipgloss.Color("229")).Render(title)
	marker := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")).Render("*")
	return lipgloss.JoinHorizontal(lipgloss.Left, text, " ", marker)
}

func viewLabel(v model.View) string {
	switch v {
	case model.ViewTodo:
		return "todos"
	case model.ViewBoard:
		return "board"
	case model.ViewJournal:
		return "journal"
	default:
		return "focus"
	}
}

func dim(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render(s)
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
