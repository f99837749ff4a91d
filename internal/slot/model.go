package slot

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusBooked    Status = "booked"
	StatusBlocked   Status = "blocked"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Slot is one bookable consultation opportunity. Date holds midnight UTC of
// the calendar day; TimeOfDay is the offset from midnight.
type Slot struct {
	ID        int64
	Date      time.Time
	TimeOfDay time.Duration
	Status    Status
}

func (s Slot) DateString() string {
	return s.Date.Format(DateLayout)
}

func (s Slot) TimeString() string {
	return time.Time{}.Add(s.TimeOfDay).Format(TimeLayout)
}

// Combined renders the slot as YYYY-MM-DDTHH:MM:SS.
func (s Slot) Combined() string {
	return s.DateString() + "T" + s.TimeString()
}

// At returns the slot's wall-clock start in loc.
func (s Slot) At(loc *time.Location) time.Time {
	y, m, d := s.Date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).Add(s.TimeOfDay)
}

// Eligible reports whether the slot may be offered to a client at now.
func (s Slot) Eligible(now time.Time) bool {
	return s.Status == StatusAvailable && s.At(now.Location()).After(now)
}

// ParseDate accepts YYYY-MM-DD.
func ParseDate(raw string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return d, nil
}

// ParseTimeOfDay accepts HH:MM or HH:MM:SS.
func ParseTimeOfDay(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	layout := TimeLayout
	if len(raw) == len("15:04") {
		layout = "15:04"
	}
	t, err := time.Parse(layout, raw)
	if err != nil {
		return 0, fmt.Errorf("time must be HH:MM or HH:MM:SS: %w", err)
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}
