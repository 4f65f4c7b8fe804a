package Activity

import "time"

// DayLayout is the calendar-day key stored on counter and session rows.
const DayLayout = "2006-01-02"

// Clock decides "now" and where calendar days start.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

func SystemClock(loc *time.Location) Clock {
	return Clock{Location: loc}
}

func (c Clock) Current() time.Time {
	if c.Now == nil {
		return time.Now().UTC()
	}
	return c.Now()
}

func (c Clock) loc() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// Day returns the calendar-day key of t.
func (c Clock) Day(t time.Time) string {
	return t.In(c.loc()).Format(DayLayout)
}

// StartOfDay returns midnight of t's calendar day.
func (c Clock) StartOfDay(t time.Time) time.Time {
	t = t.In(c.loc())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last instant of t's calendar day.
func (c Clock) EndOfDay(t time.Time) time.Time {
	return c.StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
