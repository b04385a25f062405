package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"focusdeck/app"
	"focusdeck/journal"
	"focusdeck/model"
	"focusdeck/timer"
)

const workStep = 5

// tickCmd schedules one timer tick. Ticks carry the generation they were
// scheduled for; starting the timer again bumps it and strands older ticks.
func tickCmd(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// startTicking returns a fresh tick chain when the timer is running.
func (m *Model) startTicking() tea.Cmd {
	if !m.svc.State().IsActive {
		return nil
	}
	m.tickGen++
	return tickCmd(m.tickGen)
}

func (m *Model) handleTick(msg tickMsg) tea.Cmd {
	if msg.gen != m.tickGen || !m.svc.State().IsActive {
		return nil
	}
	if session, ok := m.svc.TickTimer(); ok {
		m.setStatus(fmt.Sprintf("Session complete: %s", timer.Format(session.Duration)), false)
	}
	if !m.svc.State().IsActive {
		return nil
	}
	return tickCmd(msg.gen)
}

func (m *Model) updateFocusKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.ToggleTimer):
		m.svc.ToggleTimer()
		if m.svc.State().IsActive {
			m.setStatus("Timer started", false)
			return m.startTicking()
		}
		m.setStatus("Timer paused", false)
	case key.Matches(msg, m.keys.Complete):
		if session, ok := m.svc.CompleteSession(); ok {
			m.setStatus(fmt.Sprintf("Session recorded: %s", timer.Format(session.Duration)), false)
		} else {
			m.setStatus("Nothing to record yet", false)
		}
	case key.Matches(msg, m.keys.Reset):
		m.svc.ResetTimer()
		m.setStatus("Timer reset", false)
	case key.Matches(msg, m.keys.SwitchMode):
		next := model.ModeStopwatch
		if m.svc.State().TimerMode == model.ModeStopwatch {
			next = model.ModePomodoro
		}
		m.report(m.svc.SwitchTimerMode(next), "Mode: "+strings.ToLower(string(next)))
	case key.Matches(msg, m.keys.Phase):
		next := model.PhaseBreak
		if m.svc.State().TimerState == model.PhaseBreak {
			next = model.PhaseWork
		}
		m.report(m.svc.SetTimerPhase(next), "Phase: "+strings.ToLower(string(next)))
	case key.Matches(msg, m.keys.NameSession):
		return m.openInput(inputSessionName, "Session name: ", m.svc.State().SessionName, "")
	case key.Matches(msg, m.keys.WorkLonger), key.Matches(msg, m.keys.WorkShorter):
		step := workStep
		if key.Matches(msg, m.keys.WorkShorter) {
			step = -workStep
		}
		work := m.svc.State().PomodoroSettings.Work + step
		settings, err := m.svc.SetPomodoroSettings(app.SettingsPatch{Work: &work})
		m.report(err, fmt.Sprintf("Work duration: %d min", settings.Work))
	case key.Matches(msg, m.keys.BreakLength):
		current := strconv.Itoa(m.svc.State().PomodoroSettings.Break)
		return m.openInput(inputBreakMinutes, "Break minutes: ", current, "")
	case key.Matches(msg, m.keys.AutoBreak):
		auto := !m.svc.State().PomodoroSettings.AutoStartBreak
		_, err := m.svc.SetPomodoroSettings(app.SettingsPatch{AutoStartBreak: &auto})
		m.report(err, "Auto-start break: "+onOff(auto))
	}
	return nil
}

func (m *Model) setBreakMinutes(text string) {
	minutes, err := strconv.Atoi(text)
	if err != nil {
		m.report(app.ErrInvalidSettings, "")
		return
	}
	settings, err := m.svc.SetPomodoroSettings(app.SettingsPatch{Break: &minutes})
	m.report(err, fmt.Sprintf("Break duration: %d min", settings.Break))
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func (m *Model) renderFocusView(st model.AppState, width, height int) string {
	t := timer.FromApp(st)
	clock := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Render(timer.Format(st.TimeLeft))

	state := "paused"
	if st.IsActive {
		state = "running"
	}
	mode := fmt.Sprintf("%s • %s • %s", strings.ToLower(string(st.TimerMode)), strings.ToLower(string(st.TimerState)), state)

	name := st.SessionName
	if name == "" {
		name = dim("unnamed session (n to name)")
	}

	sum := journal.Compute(st, m.now())
	lines := []string{
		panelTitleStyled("Focus", true),
		"",
		clock,
		dim(mode),
		"",
		m.progress.ViewAs(timer.Progress(t, st.PomodoroSettings)),
		"",
		"Session: " + name,
		fmt.Sprintf("Work %d min • break %d min • auto-break %s", st.PomodoroSettings.Work, st.PomodoroSettings.Break, onOff(st.PomodoroSettings.AutoStartBreak)),
		"",
		fmt.Sprintf("Today: %d min focused in %d sessions • streak %d", sum.FocusMinutes, len(sum.Sessions), sum.Streak),
		"",
		dim("space start/pause • c complete • r reset • m mode • b phase • +/- work • B break • o auto-break"),
	}

	body := lipgloss.JoinVertical(lipgloss.Center, lines...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

// timerBadge is the compact timer shown in the header of every view.
func timerBadge(st model.AppState) string {
	mark := "⏸"
	if st.IsActive {
		mark = "▶"
	}
	return fmt.Sprintf("%s %s", mark, timer.Format(st.TimeLeft))
}
