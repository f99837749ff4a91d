package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func slotAt(date, clock string) Slot {
	return Slot{SlotDate: date, SlotTime: clock, DatetimeCombined: date + "T" + clock}
}

func TestGroupByDate(t *testing.T) {
	slots := []Slot{
		slotAt("2025-06-01", "09:00:00"),
		slotAt("2025-06-01", "10:00:00"),
		slotAt("2025-06-02", "09:00:00"),
	}

	got := GroupByDate(slots)

	assert.Equal(t, Availability{
		"2025-06-01": {"09:00", "10:00"},
		"2025-06-02": {"09:00"},
	}, got)
}

func TestGroupByDate_IsStable(t *testing.T) {
	slots := []Slot{
		slotAt("2025-06-02", "14:30:00"),
		slotAt("2025-06-01", "09:00:00"),
		slotAt("2025-06-02", "08:00:00"),
	}

	first := GroupByDate(slots)
	second := GroupByDate(slots)

	assert.Equal(t, first, second)
	// server order is kept inside a date
	assert.Equal(t, []string{"14:30", "08:00"}, first["2025-06-02"])
}

func TestGroupByDate_SkipsUnsplittable(t *testing.T) {
	slots := []Slot{
		{SlotDate: "2025-06-01", SlotTime: "09:00:00", DatetimeCombined: "2025-06-01 09:00:00"},
		{DatetimeCombined: "T09:00:00"},
		{DatetimeCombined: "2025-06-01T"},
		slotAt("2025-06-01", "11:15:00"),
	}

	assert.Equal(t, Availability{"2025-06-01": {"11:15"}}, GroupByDate(slots))
}

func TestGroupByDate_Empty(t *testing.T) {
	got := GroupByDate(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got.Dates())
}

func TestAvailabilityQueries(t *testing.T) {
	a := GroupByDate([]Slot{
		slotAt("2025-06-03", "10:00:00"),
		slotAt("2025-06-01", "09:00:00"),
	})

	assert.Equal(t, []string{"2025-06-01", "2025-06-03"}, a.Dates())
	assert.True(t, a.HasDate("2025-06-03"))
	assert.False(t, a.HasDate("2025-06-02"))
	assert.True(t, a.Has("2025-06-01", "09:00"))
	assert.False(t, a.Has("2025-06-01", "09:00:00"))

	times := a.Times("2025-06-03")
	times[0] = "mutated"
	assert.Equal(t, []string{"10:00"}, a.Times("2025-06-03"))

	clone := a.Clone()
	clone["2025-06-01"][0] = "mutated"
	assert.True(t, a.Has("2025-06-01", "09:00"))
}
