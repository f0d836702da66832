package calendar

import "time"

// DaysPerWeek is the number of columns in a week window.
const DaysPerWeek = 7

// Day is one column of the week grid.
type Day struct {
	Date  time.Time
	ISO   string
	Label string
}

// NewDay builds a Day for the calendar date of t.
func NewDay(t time.Time) Day {
	d := StartOfDay(t)
	return Day{
		Date:  d,
		ISO:   ToISODate(d),
		Label: d.Format("Monday, Jan 2"),
	}
}

// Week is a Monday-aligned seven day range. The zero value is not usable;
// build one with WeekOf or ParseWeek.
type Week struct {
	Start time.Time
}

// WeekOf returns the week containing t.
func WeekOf(t time.Time) Week {
	return Week{Start: StartOfWeek(t)}
}

// ParseWeek parses an ISO date and normalizes it to the week containing it.
func ParseWeek(iso string, loc *time.Location) (Week, error) {
	t, err := ParseISODate(iso, loc)
	if err != nil {
		return Week{}, err
	}
	return WeekOf(t), nil
}

// ISO is the week start as YYYY-MM-DD.
func (w Week) ISO() string { return ToISODate(w.Start) }

// End is the Sunday closing the week.
func (w Week) End() time.Time { return AddDays(w.Start, DaysPerWeek-1) }

// Next is the following week.
func (w Week) Next() Week { return WeekOf(AddDays(w.Start, DaysPerWeek)) }

// Previous is the preceding week.
func (w Week) Previous() Week { return WeekOf(AddDays(w.Start, -DaysPerWeek)) }

// Equal reports whether both weeks start on the same date.
func (w Week) Equal(o Week) bool { return SameDay(w.Start, o.Start) }

// Contains reports whether t falls inside the week.
func (w Week) Contains(t time.Time) bool {
	d := StartOfDay(t)
	return !d.Before(w.Start) && !d.After(w.End())
}

// Days returns the seven Monday..Sunday columns of the week.
func (w Week) Days() []Day {
	return daysFrom(w.Start)
}

// DisplayDays returns the seven columns to show for w. When w is the week
// containing today and already started, the window starts at today so the
// elapsed days are not shown. Any other week is shown Monday..Sunday.
func DisplayDays(w Week, today time.Time) []Day {
	t := StartOfDay(today)
	if w.Start.Before(t) && w.Contains(t) {
		return daysFrom(t)
	}
	return w.Days()
}

// Clamped reports whether DisplayDays(w, today) starts later than w.Start.
func Clamped(w Week, today time.Time) bool {
	t := StartOfDay(today)
	return w.Start.Before(t) && w.Contains(t)
}

func daysFrom(start time.Time) []Day {
	days := make([]Day, DaysPerWeek)
	for i := range days {
		days[i] = NewDay(AddDays(start, i))
	}
	return days
}
