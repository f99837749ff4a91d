package client

import (
	"slices"
	"strings"
)

// Availability maps a calendar date to its offered times ("HH:MM"), in the
// order the server listed them.
type Availability map[string][]string

// GroupByDate rebuilds the map from a slot list. Records whose combined
// value has no date/time separator are skipped.
func GroupByDate(slots []Slot) Availability {
	out := make(Availability)
	for _, s := range slots {
		date, clock, ok := strings.Cut(s.DatetimeCombined, "T")
		if !ok || date == "" || clock == "" {
			continue
		}
		if len(clock) > 5 {
			clock = clock[:5]
		}
		out[date] = append(out[date], clock)
	}
	return out
}

// Dates returns the dates that have at least one time, ascending.
func (a Availability) Dates() []string {
	dates := make([]string, 0, len(a))
	for d, times := range a {
		if len(times) > 0 {
			dates = append(dates, d)
		}
	}
	slices.Sort(dates)
	return dates
}

// Times returns a copy of the times offered on date.
func (a Availability) Times(date string) []string {
	return slices.Clone(a[date])
}

func (a Availability) HasDate(date string) bool {
	return len(a[date]) > 0
}

func (a Availability) Has(date, clock string) bool {
	return slices.Contains(a[date], clock)
}

// Clone returns a deep copy.
func (a Availability) Clone() Availability {
	out := make(Availability, len(a))
	for d, times := range a {
		out[d] = slices.Clone(times)
	}
	return out
}
