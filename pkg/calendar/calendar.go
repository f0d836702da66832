package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// FirstHour is the opening hour of the first slot of the day.
	FirstHour = 10
	// LastHour is the closing hour of the last slot of the day.
	LastHour = 22

	isoLayout = "2006-01-02"
)

// ErrInvalidDate is returned when a string is not a YYYY-MM-DD calendar date.
var ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

// Slot is one fixed one-hour interval of the operating day
type Slot struct {
	Key       string `json:"key"`
	StartHour int    `json:"start_hour"`
	EndHour   int    `json:"end_hour"`
	Label     string `json:"label"`
	Window    string `json:"window"`
}

var slots = buildSlots()

func buildSlots() []Slot {
	out := make([]Slot, 0, LastHour-FirstHour)
	for h := FirstHour; h < LastHour; h++ {
		out = append(out, Slot{
			Key:       fmt.Sprintf("%02d:00", h),
			StartHour: h,
			EndHour:   h + 1,
			Label:     HourLabel(h),
			Window:    HourLabel(h) + " - " + HourLabel(h+1),
		})
	}
	return out
}

// Slots returns a copy of the slot catalogue ordered by start hour.
func Slots() []Slot {
	out := make([]Slot, len(slots))
	copy(out, slots)
	return out
}

// SlotKeys returns the catalogue keys in order.
func SlotKeys() []string {
	keys := make([]string, len(slots))
	for i, s := range slots {
		keys[i] = s.Key
	}
	return keys
}

// SlotByKey looks up a catalogue slot by its "HH:00" key.
func SlotByKey(key string) (Slot, bool) {
	for _, s := range slots {
		if s.Key == key {
			return s, true
		}
	}
	return Slot{}, false
}

// HourLabel renders a 24h hour as a human time, e.g. 13 -> "1 PM".
func HourLabel(hour int) string {
	hour = ((hour % 24) + 24) % 24
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return strconv.Itoa(h) + " " + suffix
}

// StartOfDay truncates t to local midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the Monday on or before t at local midnight.
// Sunday counts as the last day of the week.
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return AddDays(StartOfDay(t), -offset)
}

// AddDays shifts t by n calendar days, keeping the wall clock time.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// ToISODate formats t as YYYY-MM-DD using its local calendar fields.
func ToISODate(t time.Time) string {
	return t.Format(isoLayout)
}

// ParseISODate builds local midnight in loc from a YYYY-MM-DD string.
// A nil loc means time.Local.
func ParseISODate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	y, errY := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	d, errD := strconv.Atoi(parts[2])
	if errY != nil || errM != nil || errD != nil || m < 1 || m > 12 || d < 1 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, loc)
	// time.Date normalizes Feb 30 into March; reject instead.
	if t.Day() != d || int(t.Month()) != m {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
