package services

import "time"

// dayWindow is a half-open [Start, End) local calendar day.
type dayWindow struct {
	Start time.Time
	End   time.Time
}

func (w dayWindow) contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// dayOf returns the calendar day containing t in loc. End is the next local
// midnight, so days across a DST change are 23 or 25 hours long.
func dayOf(t time.Time, loc *time.Location) dayWindow {
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return dayWindow{Start: start, End: time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc)}
}

// addDays shifts a day window by n calendar days.
func (w dayWindow) addDays(n int) dayWindow {
	s := w.Start
	return dayWindow{
		Start: time.Date(s.Year(), s.Month(), s.Day()+n, 0, 0, 0, 0, s.Location()),
		End:   time.Date(s.Year(), s.Month(), s.Day()+n+1, 0, 0, 0, 0, s.Location()),
	}
}

// weekStart returns the most recent Monday at or before t.
func weekStart(t time.Time, loc *time.Location) dayWindow {
	today := dayOf(t, loc)
	offset := (int(today.Start.Weekday()) + 6) % 7
	return today.addDays(-offset)
}
