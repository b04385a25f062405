package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	NextView   key.Binding
	PrevView   key.Binding
	ViewFocus  key.Binding
	ViewTodo   key.Binding
	ViewBoard  key.Binding
	ViewNotes  key.Binding
	CycleTheme key.Binding

	// Navigation
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	// Timer
	ToggleTimer key.Binding
	Complete    key.Binding
	Reset       key.Binding
	SwitchMode  key.Binding
	Phase       key.Binding
	NameSession key.Binding
	WorkLonger  key.Binding
	WorkShorter key.Binding
	BreakLength key.Binding
	AutoBreak   key.Binding

	// Todos and board
	Add       key.Binding
	AddGroup  key.Binding
	DelGroup  key.Binding
	AddSub    key.Binding
	Edit      key.Binding
	Toggle    key.Binding
	Delete    key.Binding
	Focus     key.Binding
	Clear     key.Binding
	ClearAll  key.Binding
	Copy      key.Binding
	Deadline  key.Binding
	MoveGroup key.Binding
	Describe  key.Binding
	AddColumn key.Binding
	MoveUp    key.Binding
	MoveDown  key.Binding
	MoveLeft  key.Binding
	MoveRight key.Binding
	Export    key.Binding

	// Media
	PlayPause  key.Binding
	Mute       key.Binding
	VolumeUp   key.Binding
	VolumeDown key.Binding
	AddURL     key.Binding
	NextTrack  key.Binding
	DropTrack  key.Binding
	Panel      key.Binding
	Source     key.Binding

	Confirm key.Binding
	Cancel  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		NextView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next view"),
		),
		PrevView: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous view"),
		),
		ViewFocus: key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "focus")),
		ViewTodo:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "todos")),
		ViewBoard: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "board")),
		ViewNotes: key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "journal")),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "cycle theme"),
		),

		Up:    key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/up", "move up")),
		Down:  key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/down", "move down")),
		Left:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/left", "left")),
		Right: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/right", "right")),

		ToggleTimer: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "start/pause")),
		Complete:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete session")),
		Reset:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		SwitchMode:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "pomodoro/stopwatch")),
		Phase:       key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "work/break")),
		NameSession: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "name session")),
		WorkLonger:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "work +5m")),
		WorkShorter: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "work -5m")),
		BreakLength: key.NewBinding(key.WithKeys("B"), key.WithHelp("B", "set break minutes")),
		AutoBreak:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "auto-start break")),

		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		AddGroup:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "add group")),
		DelGroup:  key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "delete group")),
		AddSub:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "add subtask")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Toggle:    key.NewBinding(key.WithKeys("x", "enter"), key.WithHelp("x", "toggle done")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Focus:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "focus on todo")),
		Clear:     key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear completed")),
		ClearAll:  key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "clear all")),
		Copy:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy open todos")),
		Deadline:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "set deadline")),
		MoveGroup: key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "move to group")),
		Describe:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "edit description")),
		AddColumn: key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "add column")),
		MoveUp:    key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move task up")),
		MoveDown:  key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move task down")),
		MoveLeft:  key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "move task left")),
		MoveRight: key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "move task right")),
		Export:    key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "copy journal markdown")),

		PlayPause:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "play/pause")),
		Mute:       key.NewBinding(key.WithKeys("M"), key.WithHelp("M", "mute")),
		VolumeUp:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "volume +10")),
		VolumeDown: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "volume -10")),
		AddURL:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "add url")),
		NextTrack:  key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "next in playlist")),
		DropTrack:  key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "remove current url")),
		Panel:      key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "toggle player")),
		Source:     key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "youtube/spotify")),

		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextView, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextView, k.ViewFocus, k.ViewTodo, k.ViewBoard, k.ViewNotes, k.CycleTheme, k.Quit},
		{k.ToggleTimer, k.Complete, k.Reset, k.SwitchMode, k.Phase, k.NameSession, k.WorkLonger, k.WorkShorter, k.BreakLength, k.AutoBreak},
		{k.Add, k.AddGroup, k.DelGroup, k.AddSub, k.Edit, k.Toggle, k.Delete, k.Focus, k.Deadline, k.MoveGroup, k.Clear, k.ClearAll, k.Copy},
		{k.AddColumn, k.Describe, k.MoveUp, k.MoveDown, k.MoveLeft, k.MoveRight, k.Export},
		{k.PlayPause, k.Mute, k.VolumeUp, k.VolumeDown, k.AddURL, k.NextTrack, k.DropTrack, k.Panel, k.Source},
	}
}
