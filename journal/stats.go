// Package journal derives the daily overview shown next to the notes and
// renders it as a markdown document.
package journal

import (
	"time"

	"focusdeck/model"
)

const minutesPerDay = 24 * 60

// Summary is the daily overview.
type Summary struct {
	Date             time.Time
	FocusSeconds     int
	FocusMinutes     int
	LiveSeconds      int
	Sessions         []model.Session
	Streak           int
	CompletedToday   int
	Pending          int
	DayProgress      int
	RemainingMinutes int
}

// Compute builds the summary for the day holding now, in now's location.
// The focus total includes the elapsed time of a running session. The streak
// is the number of distinct days with at least one session.
func Compute(state model.AppState, now time.Time) Summary {
	s := Summary{Date: now, Sessions: []model.Session{}}

	days := map[string]bool{}
	for _, session := range state.Sessions {
		days[dayKey(session.Date, now.Location())] = true
		if sameDay(session.Date, now) {
			s.Sessions = append(s.Sessions, session)
			s.FocusSeconds += session.Duration
		}
	}
	s.Streak = len(days)

	if state.IsActive && state.SessionStartTime != nil {
		if d := now.Sub(*state.SessionStartTime); d > 0 {
			s.LiveSeconds = int(d / time.Second)
		}
	}
	s.FocusSeconds += s.LiveSeconds
	s.FocusMinutes = s.FocusSeconds / 60

	for _, t := range state.Todos {
		if !t.Completed {
			s.Pending++
			continue
		}
		if t.CompletedAt != nil && sameDay(*t.CompletedAt, now) {
			s.CompletedToday++
		}
	}

	passed := now.Hour()*60 + now.Minute()
	s.DayProgress = (passed*100 + minutesPerDay/2) / minutesPerDay
	s.RemainingMinutes = minutesPerDay - passed
	return s
}

func sameDay(t, now time.Time) bool {
	return dayKey(t, now.Location()) == dayKey(now, now.Location())
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
