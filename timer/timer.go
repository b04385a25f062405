// Package timer holds the focus timer transitions. Every function is pure:
// it takes the timer slice of the state plus settings and the current time
// and returns the next slice along with the length of any session that ended.
package timer

import (
	"fmt"
	"time"

	"focusdeck/model"
)

// State is the timer slice of the application state.
type State struct {
	Mode      model.TimerMode
	Phase     model.TimerPhase
	TimeLeft  int
	Active    bool
	StartedAt *time.Time
}

// FromApp extracts the timer slice.
func FromApp(s model.AppState) State {
	var started *time.Time
	if s.SessionStartTime != nil {
		v := *s.SessionStartTime
		started = &v
	}
	return State{
		Mode:      s.TimerMode,
		Phase:     s.TimerState,
		TimeLeft:  s.TimeLeft,
		Active:    s.IsActive,
		StartedAt: started,
	}
}

// Apply writes the slice back into s.
func (st State) Apply(s *model.AppState) {
	s.TimerMode = st.Mode
	s.TimerState = st.Phase
	s.TimeLeft = st.TimeLeft
	s.IsActive = st.Active
	s.SessionStartTime = st.StartedAt
}

// Baseline is the value TimeLeft returns to when the timer is reset.
func Baseline(mode model.TimerMode, settings model.PomodoroSettings) int {
	if mode == model.ModePomodoro {
		return settings.WorkSeconds()
	}
	return 0
}

// Start begins counting. Starting a running timer changes nothing.
func Start(st State, now time.Time) State {
	if st.Active {
		return st
	}
	st.Active = true
	st.StartedAt = &now
	return st
}

// Pause stops counting and forgets the session start.
func Pause(st State) State {
	st.Active = false
	st.StartedAt = nil
	return st
}

// Toggle starts a stopped timer and pauses a running one.
func Toggle(st State, now time.Time) State {
	if st.Active {
		return Pause(st)
	}
	return Start(st, now)
}

// Tick advances the timer by one second. Only a running WORK phase counts.
// A pomodoro tick that reaches zero completes the session in the same step.
func Tick(st State, settings model.PomodoroSettings, now time.Time) (State, int) {
	if !st.Active || st.Phase != model.PhaseWork {
		return st, 0
	}
	if st.Mode == model.ModeStopwatch {
		st.TimeLeft++
		return st, 0
	}
	st.TimeLeft--
	if st.TimeLeft > 0 {
		return st, 0
	}
	st.TimeLeft = 0
	return reachZero(st, settings, now)
}

func reachZero(st State, settings model.PomodoroSettings, now time.Time) (State, int) {
	elapsed := min(elapsedSeconds(st, now), settings.WorkSeconds())
	st = Pause(st)
	st.TimeLeft = settings.WorkSeconds()
	return st, max(elapsed, 0)
}

// Complete ends the session by hand. In POMODORO the session lasts the wall
// clock time since start, capped at the work duration; in STOPWATCH it is the
// counter. A zero result means no session is recorded.
func Complete(st State, settings model.PomodoroSettings, now time.Time) (State, int) {
	var duration int
	if st.Mode == model.ModePomodoro {
		duration = min(elapsedSeconds(st, now), settings.WorkSeconds())
	} else {
		duration = st.TimeLeft
	}
	st = Pause(st)
	st.TimeLeft = Baseline(st.Mode, settings)
	return st, max(duration, 0)
}

// SwitchMode stops the timer and re-bases it for mode. No session is recorded.
func SwitchMode(st State, mode model.TimerMode, settings model.PomodoroSettings) State {
	st.Mode = mode
	return Reset(st, settings)
}

// Reset stops the timer and re-bases it. No session is recorded.
func Reset(st State, settings model.PomodoroSettings) State {
	st = Pause(st)
	st.TimeLeft = Baseline(st.Mode, settings)
	return st
}

// Rebase follows a settings change: a stopped pomodoro adopts the new work
// duration, a running one keeps counting.
func Rebase(st State, settings model.PomodoroSettings) State {
	if st.Mode == model.ModePomodoro && !st.Active {
		st.TimeLeft = settings.WorkSeconds()
	}
	return st
}

// Elapsed is the whole seconds since the session started, zero when stopped.
func Elapsed(st State, now time.Time) int {
	return elapsedSeconds(st, now)
}

// Progress is the completed fraction in [0, 1]. Stopwatch mode is always full.
func Progress(st State, settings model.PomodoroSettings) float64 {
	if st.Mode != model.ModePomodoro {
		return 1
	}
	total := settings.WorkSeconds()
	if total <= 0 {
		return 0
	}
	p := float64(total-st.TimeLeft) / float64(total)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

// Format renders seconds as MM:SS. Minutes are not wrapped at an hour.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func elapsedSeconds(st State, now time.Time) int {
	if st.StartedAt == nil {
		return 0
	}
	d := now.Sub(*st.StartedAt)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}
