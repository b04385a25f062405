package app

import (
	"fmt"
	"time"

	"focusdeck/model"
	"focusdeck/timer"
)

// SettingsPatch carries optional pomodoro settings updates, in minutes.
type SettingsPatch struct {
	Work           *int
	Break          *int
	AutoStartBreak *bool
}

// SetPomodoroSettings merges patch into the settings. A stopped pomodoro
// picks up a new work duration at once.
func (s *Service) SetPomodoroSettings(patch SettingsPatch) (model.PomodoroSettings, error) {
	if (patch.Work != nil && *patch.Work <= 0) || (patch.Break != nil && *patch.Break <= 0) {
		return model.PomodoroSettings{}, ErrInvalidSettings
	}
	var out model.PomodoroSettings
	err := s.update(func(st *model.AppState) error {
		if patch.Work != nil {
			st.PomodoroSettings.Work = *patch.Work
		}
		if patch.Break != nil {
			st.PomodoroSettings.Break = *patch.Break
		}
		if patch.AutoStartBreak != nil {
			st.PomodoroSettings.AutoStartBreak = *patch.AutoStartBreak
		}
		if patch.Work != nil {
			timer.Rebase(timer.FromApp(*st), st.PomodoroSettings).Apply(st)
		}
		out = st.PomodoroSettings
		return nil
	})
	return out, err
}

// StartTimer starts counting.
func (s *Service) StartTimer() {
	now := s.now()
	s.stepTimer(now, func(t timer.State, _ model.PomodoroSettings) (timer.State, int) {
		return timer.Start(t, now), 0
	})
}

// PauseTimer stops counting.
func (s *Service) PauseTimer() {
	now := s.now()
	s.stepTimer(now, func(t timer.State, _ model.PomodoroSettings) (timer.State, int) {
		return timer.Pause(t), 0
	})
}

// ToggleTimer starts or pauses.
func (s *Service) ToggleTimer() {
	now := s.now()
	s.stepTimer(now, func(t timer.State, _ model.PomodoroSettings) (timer.State, int) {
		return timer.Toggle(t, now), 0
	})
}

// TickTimer advances the timer by one second and returns the session that
// ended with it, if any.
func (s *Service) TickTimer() (model.Session, bool) {
	now := s.now()
	return s.stepTimer(now, func(t timer.State, settings model.PomodoroSettings) (timer.State, int) {
		return timer.Tick(t, settings, now)
	})
}

// CompleteSession ends the session by hand and returns the recorded session.
func (s *Service) CompleteSession() (model.Session, bool) {
	now := s.now()
	return s.stepTimer(now, func(t timer.State, settings model.PomodoroSettings) (timer.State, int) {
		return timer.Complete(t, settings, now)
	})
}

// SwitchTimerMode stops and re-bases the timer for mode.
func (s *Service) SwitchTimerMode(mode model.TimerMode) error {
	if mode != model.ModePomodoro && mode != model.ModeStopwatch {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	now := s.now()
	s.stepTimer(now, func(t timer.State, settings model.PomodoroSettings) (timer.State, int) {
		return timer.SwitchMode(t, mode, settings), 0
	})
	return nil
}

// ResetTimer stops and re-bases the timer without recording a session.
func (s *Service) ResetTimer() {
	now := s.now()
	s.stepTimer(now, func(t timer.State, settings model.PomodoroSettings) (timer.State, int) {
		return timer.Reset(t, settings), 0
	})
}

// SetTimerPhase sets the WORK or BREAK phase.
func (s *Service) SetTimerPhase(phase model.TimerPhase) error {
	if phase != model.PhaseWork && phase != model.PhaseBreak {
		return fmt.Errorf("%w: %q", ErrInvalidPhase, phase)
	}
	return s.update(func(st *model.AppState) error {
		st.TimerState = phase
		return nil
	})
}

// stepTimer applies a transition and records the session it produced in the
// same snapshot.
func (s *Service) stepTimer(now time.Time, step func(timer.State, model.PomodoroSettings) (timer.State, int)) (model.Session, bool) {
	var (
		session  model.Session
		recorded bool
	)
	_ = s.update(func(st *model.AppState) error {
		next, seconds := step(timer.FromApp(*st), st.PomodoroSettings)
		if seconds > 0 {
			session = s.newSession(st, seconds, now)
			st.Sessions = append(st.Sessions, session)
			recorded = true
		}
		next.Apply(st)
		return nil
	})
	return session, recorded
}

func (s *Service) newSession(st *model.AppState, seconds int, now time.Time) model.Session {
	return model.Session{
		ID:       s.ids.New(),
		Date:     now,
		Duration: seconds,
		Mode:     st.TimerMode,
		Name:     st.SessionName,
	}
}

// Elapsed is the live elapsed time of a running session.
func (s *Service) Elapsed() time.Duration {
	st := s.State()
	return time.Duration(timer.Elapsed(timer.FromApp(st), s.now())) * time.Second
}
