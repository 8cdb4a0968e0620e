package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"portfolio-api/internal/config"
)

const maxErrorDetailLen = 500

// SchedulingError is an unrecovered calendar provider failure. Status is the
// provider's HTTP status when one was present, 0 otherwise.
type SchedulingError struct {
	Status  int
	Details string
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("calendar event creation failed (status %d): %s", e.Status, e.Details)
}

// Scheduler creates call events on the owner's Google Calendar. One instance
// is shared across requests; it holds no per-request state.
type Scheduler struct {
	svc        *calendar.Service
	calendarID string
	timeZone   string
	utcOffset  string
	organizer  string
}

// NewScheduler builds a Scheduler authenticated as the configured service
// account. Extra client options override the default token source, which is
// how tests point it at a fake endpoint.
func NewScheduler(ctx context.Context, cfg config.Config, opts ...option.ClientOption) (*Scheduler, error) {
	if len(opts) == 0 {
		jcfg := &jwt.Config{
			Email:      cfg.GoogleClientEmail,
			PrivateKey: []byte(cfg.GooglePrivateKey),
			Scopes:     []string{calendar.CalendarEventsScope},
			TokenURL:   google.JWTTokenURL,
		}
		if cfg.OrganizerEmail != "" {
			jcfg.Subject = cfg.OrganizerEmail
		}
		opts = append(opts, option.WithTokenSource(jcfg.TokenSource(ctx)))
	}
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &Scheduler{
		svc:        svc,
		calendarID: cfg.CalendarID,
		timeZone:   cfg.TimeZone,
		utcOffset:  cfg.UTCOffset,
		organizer:  cfg.OrganizerEmail,
	}, nil
}

// ScheduleCall creates the event for a validated booking. The first attempt
// requests Meet conferencing; if that fails for a conference-related reason
// the same event is resubmitted once without conference data. Any other
// failure surfaces as a *SchedulingError.
func (s *Scheduler) ScheduleCall(ctx context.Context, req *BookingRequest, w *bookingWindow) (*ScheduleResult, error) {
	ev := s.buildEvent(req, w)
	ev.ConferenceData = &calendar.ConferenceData{
		CreateRequest: &calendar.CreateConferenceRequest{
			RequestId:             uuid.NewString(),
			ConferenceSolutionKey: &calendar.ConferenceSolutionKey{Type: "hangoutsMeet"},
		},
	}

	created, err := s.insert(ctx, ev, true)
	if err != nil {
		if !isConferenceFailure(err) {
			return nil, asSchedulingError(err)
		}
		created, err = s.insert(ctx, s.buildEvent(req, w), false)
		if err != nil {
			return nil, asSchedulingError(err)
		}
	}
	return extractResult(created), nil
}

func (s *Scheduler) buildEvent(req *BookingRequest, w *bookingWindow) *calendar.Event {
	topic := req.Topic
	if topic == "" {
		topic = "Intro call"
	}
	ev := &calendar.Event{
		Summary: fmt.Sprintf("Call with %s", req.Name),
		Description: fmt.Sprintf("Topic: %s\n\nBooked by %s <%s> via the portfolio site.",
			topic, req.Name, req.Email),
		Start: &calendar.EventDateTime{
			DateTime: w.Date + "T" + w.StartTime + s.utcOffset,
			TimeZone: s.timeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: w.EndDate + "T" + w.EndTime + s.utcOffset,
			TimeZone: s.timeZone,
		},
	}
	// Inviting the requester needs an impersonated organizer; service
	// accounts cannot invite attendees on their own.
	if s.organizer != "" {
		ev.Attendees = []*calendar.EventAttendee{{Email: req.Email}}
	}
	return ev
}

func (s *Scheduler) insert(ctx context.Context, ev *calendar.Event, withConference bool) (*calendar.Event, error) {
	call := s.svc.Events.Insert(s.calendarID, ev).Context(ctx).SendUpdates(s.sendUpdatesMode())
	if withConference {
		call = call.ConferenceDataVersion(1)
	}
	return call.Do()
}

func (s *Scheduler) sendUpdatesMode() string {
	if s.organizer != "" {
		return "all"
	}
	return "none"
}

// isConferenceFailure decides whether a failed conference-enabled insert is
// worth retrying without conferencing. The provider gives no stable contract
// here: a generic 400 or a message mentioning "conference" are the only
// observable signals.
func isConferenceFailure(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == 400 {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "conference")
}

func asSchedulingError(err error) *SchedulingError {
	status := 0
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		status = gerr.Code
	}
	return &SchedulingError{Status: status, Details: truncate(err.Error(), maxErrorDetailLen)}
}

func extractResult(ev *calendar.Event) *ScheduleResult {
	res := &ScheduleResult{EventID: ev.Id}
	if ev.HtmlLink != "" {
		link := ev.HtmlLink
		res.EventLink = &link
	}
	if ev.HangoutLink != "" {
		link := ev.HangoutLink
		res.MeetLink = &link
	} else if ev.ConferenceData != nil {
		for _, ep := range ev.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" && ep.Uri != "" {
				link := ep.Uri
				res.MeetLink = &link
				break
			}
		}
	}
	return res
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
