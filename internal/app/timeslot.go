package app

import (
	"fmt"
	"time"
)

const (
	slotStepMinutes = 30
	minutesPerDay   = 24 * 60
)

// minutesToLabel renders minutes-since-midnight as a zero-padded 12-hour
// label. Hour 0 and hour 12 both render as "12".
func minutesToLabel(totalMinutes int) string {
	h := totalMinutes / 60
	m := totalMinutes % 60
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	display := h % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%02d:%02d %s", display, m, period)
}

// labelTo24Hour converts a 12-hour slot label back to "HH:MM:SS".
func labelTo24Hour(label string) (string, error) {
	var h, m int
	var period string
	if _, err := fmt.Sscanf(label, "%d:%d %s", &h, &m, &period); err != nil {
		return "", fmt.Errorf("invalid time label %q", label)
	}
	if h < 1 || h > 12 || m < 0 || m > 59 {
		return "", fmt.Errorf("invalid time label %q", label)
	}
	switch period {
	case "AM":
		if h == 12 {
			h = 0
		}
	case "PM":
		if h != 12 {
			h += 12
		}
	default:
		return "", fmt.Errorf("invalid time label %q", label)
	}
	return fmt.Sprintf("%02d:%02d:00", h, m), nil
}

// generateTimeSlots steps through [startMinutes, endMinutes) producing a
// label every stepMinutes. The interval is half-open: endMinutes itself is
// never a slot.
func generateTimeSlots(startMinutes, endMinutes, stepMinutes int) []string {
	var slots []string
	for m := startMinutes; m < endMinutes; m += stepMinutes {
		slots = append(slots, minutesToLabel(m))
	}
	return slots
}

// allowedSlotsForDate returns the bookable slot labels for a calendar date.
// Weekends are open around the clock; weekdays offer two windows,
// 09:00-11:00 and 18:00-21:00.
func allowedSlotsForDate(d time.Time) []string {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return generateTimeSlots(0, minutesPerDay, slotStepMinutes)
	default:
		slots := generateTimeSlots(9*60, 11*60, slotStepMinutes)
		return append(slots, generateTimeSlots(18*60, 21*60, slotStepMinutes)...)
	}
}

// addMinutesToLocalDateTime adds minutes to a naive wall-clock date+time and
// returns the rolled-over date and time. The fields are mapped onto a UTC
// instant purely so time.Date normalization handles day/month/year
// boundaries; that instant carries no timezone meaning and never leaves this
// function.
func addMinutesToLocalDateTime(dateValue, time24 string, minutesToAdd int) (string, string, error) {
	t, err := time.Parse("2006-01-02 15:04:05", dateValue+" "+time24)
	if err != nil {
		return "", "", fmt.Errorf("invalid local date-time %q %q: %w", dateValue, time24, err)
	}
	t = t.Add(time.Duration(minutesToAdd) * time.Minute)
	return t.Format("2006-01-02"), t.Format("15:04:05"), nil
}
