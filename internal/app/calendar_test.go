package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"portfolio-api/internal/config"
)

// insertCapture records one Events.Insert request seen by the fake provider.
type insertCapture struct {
	Query url.Values
	Event calendar.Event
}

// fakeCalendar serves scripted responses for consecutive insert calls and
// captures what the client sent.
type fakeCalendar struct {
	mu       sync.Mutex
	captures []insertCapture
	respond  []func(w http.ResponseWriter)
}

func (f *fakeCalendar) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ev calendar.Event
	_ = json.NewDecoder(r.Body).Decode(&ev)
	f.captures = append(f.captures, insertCapture{Query: r.URL.Query(), Event: ev})

	i := len(f.captures) - 1
	if i < len(f.respond) {
		f.respond[i](w)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
}

func (f *fakeCalendar) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.captures)
}

func (f *fakeCalendar) capture(i int) insertCapture {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.captures[i]
}

func respondEvent(ev *calendar.Event) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ev)
	}
}

func respondError(status int, message string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"error":{"code":%d,"message":%q}}`, status, message)
	}
}

func newTestScheduler(t *testing.T, fake *fakeCalendar, organizer string) *Scheduler {
	t.Helper()
	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)

	cfg := config.Config{
		CalendarID:     "primary",
		TimeZone:       "Asia/Kolkata",
		UTCOffset:      "+05:30",
		OrganizerEmail: organizer,
	}
	s, err := NewScheduler(context.Background(), cfg,
		option.WithoutAuthentication(), option.WithEndpoint(ts.URL))
	require.NoError(t, err)
	return s
}

func testWindow() (*BookingRequest, *bookingWindow) {
	req := validBooking()
	return &req, &bookingWindow{
		Date:      "2024-06-05",
		StartTime: "10:00:00",
		EndDate:   "2024-06-05",
		EndTime:   "10:30:00",
	}
}

func TestScheduleCallWithConference(t *testing.T) {
	fake := &fakeCalendar{respond: []func(http.ResponseWriter){
		respondEvent(&calendar.Event{
			Id:          "evt1",
			HtmlLink:    "https://calendar.google.com/event?eid=1",
			HangoutLink: "https://meet.google.com/abc-defg-hij",
		}),
	}}
	s := newTestScheduler(t, fake, "")

	req, w := testWindow()
	res, err := s.ScheduleCall(context.Background(), req, w)
	require.NoError(t, err)

	assert.Equal(t, "evt1", res.EventID)
	require.NotNil(t, res.MeetLink)
	assert.Equal(t, "https://meet.google.com/abc-defg-hij", *res.MeetLink)
	require.NotNil(t, res.EventLink)
	assert.Equal(t, "https://calendar.google.com/event?eid=1", *res.EventLink)

	require.Equal(t, 1, fake.calls())
	got := fake.capture(0)
	assert.Equal(t, "1", got.Query.Get("conferenceDataVersion"))
	assert.Equal(t, "none", got.Query.Get("sendUpdates"))
	require.NotNil(t, got.Event.ConferenceData)
	require.NotNil(t, got.Event.ConferenceData.CreateRequest)
	assert.NotEmpty(t, got.Event.ConferenceData.CreateRequest.RequestId)
	assert.Equal(t, "hangoutsMeet", got.Event.ConferenceData.CreateRequest.ConferenceSolutionKey.Type)
	assert.Empty(t, got.Event.Attendees)
	assert.Equal(t, "2024-06-05T10:00:00+05:30", got.Event.Start.DateTime)
	assert.Equal(t, "2024-06-05T10:30:00+05:30", got.Event.End.DateTime)
	assert.Equal(t, "Asia/Kolkata", got.Event.Start.TimeZone)
}

func TestScheduleCallFreshRequestIDPerAttempt(t *testing.T) {
	fake := &fakeCalendar{respond: []func(http.ResponseWriter){
		respondEvent(&calendar.Event{Id: "evt1"}),
		respondEvent(&calendar.Event{Id: "evt2"}),
	}}
	s := newTestScheduler(t, fake, "")

	req, w := testWindow()
	_, err := s.ScheduleCall(context.Background(), req, w)
	require.NoError(t, err)
	_, err = s.ScheduleCall(context.Background(), req, w)
	require.NoError(t, err)

	first := fake.capture(0).Event.ConferenceData.CreateRequest.RequestId
	second := fake.capture(1).Event.ConferenceData.CreateRequest.RequestId
	assert.NotEqual(t, first, second)
}

func TestScheduleCallFallbackOn400(t *testing.T) {
	fake := &fakeCalendar{respond: []func(http.ResponseWriter){
		respondError(400, "Invalid conference type value."),
		respondEvent(&calendar.Event{Id: "evt2", HtmlLink: "https://calendar.google.com/event?eid=2"}),
	}}
	s := newTestScheduler(t, fake, "")

	req, w := testWindow()
	res, err := s.ScheduleCall(context.Background(), req, w)
	require.NoError(t, err)

	assert.Nil(t, res.MeetLink)
	require.NotNil(t, res.EventLink)
	assert.Equal(t, "evt2", res.EventID)

	require.Equal(t, 2, fake.calls())
	retry := fake.capture(1)
	assert.Nil(t, retry.Event.ConferenceData)
	assert.Empty(t, retry.Query.Get("conferenceDataVersion"))
}

func TestScheduleCallFallbackOnConferenceMessage(t *testing.T) {
	fake := &fakeCalendar{respond: []func(http.ResponseWriter){
		respondError(500, "No conference solution is available for this calendar"),
		respondEvent(&calendar.Event{Id: "evt3"}),
	}}
	s := newTestScheduler(t, fake, "")

	req, w := testWindow()
	res, err := s.ScheduleCall(context.Background(), req, w)
	require.NoError(t, err)
	assert.Equal(t, "evt3", res.EventID)
	assert.Equal(t, 2, fake.calls())
}

func TestScheduleCallNoRetryOnOtherFailure(t *testing.T) {
	fake := &fakeCalendar{respond: []func(http.ResponseWriter){
		respondError(403, "Rate limit exceeded"),
	}}
	s := newTestScheduler(t, fake, "")

	req, w := testWindow()
	_, err := s.ScheduleCall(context.Background(), req, w)
	require.Error(t, err)
	assert.Equal(t, 1, fake.calls())

	var serr *SchedulingError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 403, serr.Status)
	assert.Contains(t, serr.Details, "Rate limit exceeded")
}

func TestScheduleCallFallbackFailureSurfaces(t *testing.T) {
	fake := &fakeCalendar{respond: []func(http.ResponseWriter){
		respondError(400, "Invalid conference type value."),
		respondError(403, "Forbidden"),
	}}
	s := newTestScheduler(t, fake, "")

	req, w := testWindow()
	_, err := s.ScheduleCall(context.Background(), req, w)
	var serr *SchedulingError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 403, serr.Status)
	assert.Equal(t, 2, fake.calls())
}

func TestScheduleCallDetailsTruncated(t *testing.T) {
	fake := &fakeCalendar{respond: []func(http.ResponseWriter){
		respondError(403, strings.Repeat("x", 1000)),
	}}
	s := newTestScheduler(t, fake, "")

	req, w := testWindow()
	_, err := s.ScheduleCall(context.Background(), req, w)
	var serr *SchedulingError
	require.ErrorAs(t, err, &serr)
	assert.LessOrEqual(t, len(serr.Details), maxErrorDetailLen)
}

func TestScheduleCallWithOrganizerInvitesAttendee(t *testing.T) {
	fake := &fakeCalendar{respond: []func(http.ResponseWriter){
		respondEvent(&calendar.Event{Id: "evt4"}),
	}}
	s := newTestScheduler(t, fake, "owner@example.com")

	req, w := testWindow()
	_, err := s.ScheduleCall(context.Background(), req, w)
	require.NoError(t, err)

	got := fake.capture(0)
	assert.Equal(t, "all", got.Query.Get("sendUpdates"))
	require.Len(t, got.Event.Attendees, 1)
	assert.Equal(t, "ada@example.com", got.Event.Attendees[0].Email)
}

func TestExtractResultMeetLinkFromEntryPoints(t *testing.T) {
	res := extractResult(&calendar.Event{
		Id: "evt5",
		ConferenceData: &calendar.ConferenceData{
			EntryPoints: []*calendar.EntryPoint{
				{EntryPointType: "phone", Uri: "tel:+1-555"},
				{EntryPointType: "video", Uri: "https://meet.google.com/xyz"},
			},
		},
	})
	require.NotNil(t, res.MeetLink)
	assert.Equal(t, "https://meet.google.com/xyz", *res.MeetLink)
	assert.Nil(t, res.EventLink)
}
