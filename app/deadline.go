package app

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidDeadline reports a deadline that none of the accepted layouts match.
var ErrInvalidDeadline = errors.New("deadline must look like 2006-01-02, 15:04 or 2006-01-02 15:04")

const (
	deadlineDate     = "2006-01-02"
	deadlineClock    = "15:04"
	DeadlineDateTime = deadlineDate + " " + deadlineClock
)

// ParseDeadline reads a deadline typed by the user, in base's location.
// A date alone keeps base's clock time and a time alone keeps base's date,
// so editing one half of an existing deadline leaves the other half alone.
// "today" and "tomorrow" are accepted in place of a date.
func ParseDeadline(text string, base time.Time) (time.Time, error) {
	text = strings.ToLower(strings.Join(strings.Fields(text), " "))
	if text == "" {
		return time.Time{}, ErrInvalidDeadline
	}
	loc := base.Location()
	day, clock, _ := strings.Cut(text, " ")

	switch day {
	case "today":
		day = base.Format(deadlineDate)
	case "tomorrow":
		day = base.AddDate(0, 0, 1).Format(deadlineDate)
	}

	if clock != "" {
		t, err := time.ParseInLocation(DeadlineDateTime, day+" "+clock, loc)
		if err != nil {
			return time.Time{}, ErrInvalidDeadline
		}
		return t, nil
	}
	if t, err := time.ParseInLocation(deadlineDate, day, loc); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), base.Hour(), base.Minute(), 0, 0, loc), nil
	}
	if t, err := time.ParseInLocation(deadlineClock, day, loc); err == nil {
		return time.Date(base.Year(), base.Month(), base.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
	}
	return time.Time{}, ErrInvalidDeadline
}
