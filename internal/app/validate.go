package app

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Rejection reasons returned verbatim in 400 bodies.
var (
	errMissingFields = errors.New("Missing fields")
	errInputTooLong  = errors.New("Input too long")
	errInvalidDate   = errors.New("Invalid date")
	errInvalidTime   = errors.New("Invalid time")
	errTimeInPast    = errors.New("Time must be in the future")
)

const (
	maxNameLen    = 100
	maxEmailLen   = 200
	maxTopicLen   = 200
	maxMessageLen = 5000
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// validateBooking normalizes req in place and resolves its 30-minute window.
// It is side-effect free and must fully pass before any external call is
// made. utcOffset is the fixed offset the naive booking time is interpreted
// in when compared against now.
func validateBooking(req *BookingRequest, now time.Time, utcOffset string) (*bookingWindow, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Topic = strings.TrimSpace(req.Topic)
	req.SelectedDate = strings.TrimSpace(req.SelectedDate)
	req.SelectedTime = strings.TrimSpace(req.SelectedTime)

	if req.Name == "" || req.Email == "" || req.SelectedDate == "" || req.SelectedTime == "" {
		return nil, errMissingFields
	}
	if len(req.Name) > maxNameLen || len(req.Email) > maxEmailLen || len(req.Topic) > maxTopicLen {
		return nil, errInputTooLong
	}

	if !datePattern.MatchString(req.SelectedDate) {
		return nil, errInvalidDate
	}
	day, err := time.Parse("2006-01-02", req.SelectedDate)
	if err != nil {
		return nil, errInvalidDate
	}

	if !containsSlot(allowedSlotsForDate(day), req.SelectedTime) {
		return nil, errInvalidTime
	}
	startTime, err := labelTo24Hour(req.SelectedTime)
	if err != nil {
		return nil, errInvalidTime
	}

	start, err := time.Parse("2006-01-02T15:04:05-07:00",
		fmt.Sprintf("%sT%s%s", req.SelectedDate, startTime, utcOffset))
	if err != nil {
		return nil, errInvalidDate
	}
	if !start.After(now) {
		return nil, errTimeInPast
	}

	endDate, endTime, err := addMinutesToLocalDateTime(req.SelectedDate, startTime, slotStepMinutes)
	if err != nil {
		return nil, errInvalidTime
	}

	return &bookingWindow{
		Date:      req.SelectedDate,
		StartTime: startTime,
		EndDate:   endDate,
		EndTime:   endTime,
	}, nil
}

// validateContact normalizes req in place and applies the same field
// discipline as bookings.
func validateContact(req *ContactRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)

	if req.Name == "" || req.Email == "" || req.Message == "" {
		return errMissingFields
	}
	if len(req.Name) > maxNameLen || len(req.Email) > maxEmailLen || len(req.Message) > maxMessageLen {
		return errInputTooLong
	}
	return nil
}

func containsSlot(slots []string, label string) bool {
	for _, s := range slots {
		if s == label {
			return true
		}
	}
	return false
}
