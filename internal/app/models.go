package app

// BookingRequest is the untrusted body of POST /api/book-call. Fields are
// trimmed and bounds-checked by validateBooking before anything else sees it.
type BookingRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Topic        string `json:"topic,omitempty"`
	SelectedDate string `json:"selectedDate"` // YYYY-MM-DD
	SelectedTime string `json:"selectedTime"` // slot label, e.g. "09:00 AM"
}

// ContactRequest is the untrusted body of POST /api/contact.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// bookingWindow is the resolved 30-minute window of a validated booking, kept
// in naive wall-clock form until the calendar payload is built.
type bookingWindow struct {
	Date      string // YYYY-MM-DD
	StartTime string // HH:MM:SS
	EndDate   string
	EndTime   string
}

// ScheduleResult is what the calendar provider gave back for a created event.
// Nil links mean the provider did not return one (conferencing unavailable or
// the fallback path was taken).
type ScheduleResult struct {
	MeetLink  *string
	EventLink *string
	EventID   string
}

// EmailMessage is the provider wire shape for one transactional email.
type EmailMessage struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}
