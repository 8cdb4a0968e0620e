package app

import (
	"context"
	"fmt"
	"html"
	"sync"
	"sync/atomic"
)

// sendBookingNotifications fires the owner alert and the requester
// confirmation after the event is committed on the calendar. Both sends are
// launched before either is awaited. Failures are logged and swallowed: the
// booking already succeeded and must not be failed retroactively. Returns
// how many of the two emails were accepted.
func (a *App) sendBookingNotifications(ctx context.Context, req *BookingRequest, res *ScheduleResult) int {
	if a.mailer == nil {
		return 0
	}

	msgs := []*EmailMessage{
		a.ownerAlert(req, res),
		a.requesterConfirmation(req, res),
	}

	var sent atomic.Int64
	var wg sync.WaitGroup
	for _, msg := range msgs {
		wg.Add(1)
		go func(m *EmailMessage) {
			defer wg.Done()
			if err := a.mailer.Send(ctx, m); err != nil {
				a.log.Error("booking notification failed", "to", m.To, "subject", m.Subject, "err", err)
				return
			}
			sent.Add(1)
		}(msg)
	}
	wg.Wait()

	n := int(sent.Load())
	a.emailsSent.Add(int64(n))
	return n
}

func (a *App) ownerAlert(req *BookingRequest, res *ScheduleResult) *EmailMessage {
	topic := req.Topic
	if topic == "" {
		topic = "(no topic given)"
	}
	when := fmt.Sprintf("%s at %s", req.SelectedDate, req.SelectedTime)
	return &EmailMessage{
		From:    a.cfg.MailFrom,
		To:      []string{a.cfg.OwnerEmail},
		ReplyTo: req.Email,
		Subject: fmt.Sprintf("New call booked: %s, %s", req.Name, when),
		HTML: fmt.Sprintf(
			"<p><strong>%s</strong> &lt;%s&gt; booked a call.</p><p>When: %s<br>Topic: %s</p>%s",
			html.EscapeString(req.Name), html.EscapeString(req.Email),
			html.EscapeString(when), html.EscapeString(topic), linksHTML(res)),
		Text: fmt.Sprintf("%s <%s> booked a call.\nWhen: %s\nTopic: %s\n%s",
			req.Name, req.Email, when, topic, linksText(res)),
	}
}

func (a *App) requesterConfirmation(req *BookingRequest, res *ScheduleResult) *EmailMessage {
	when := fmt.Sprintf("%s at %s", req.SelectedDate, req.SelectedTime)
	return &EmailMessage{
		From:    a.cfg.MailFrom,
		To:      []string{req.Email},
		Subject: fmt.Sprintf("Your call is booked for %s", when),
		HTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your 30-minute call is confirmed for <strong>%s</strong>.</p>%s<p>Talk soon!</p>",
			html.EscapeString(req.Name), html.EscapeString(when), linksHTML(res)),
		Text: fmt.Sprintf("Hi %s,\n\nYour 30-minute call is confirmed for %s.\n%s\nTalk soon!",
			req.Name, when, linksText(res)),
	}
}

// contactRelay wraps a contact-form submission as an email to the owner,
// reply-to set to the sender.
func (a *App) contactRelay(req *ContactRequest) *EmailMessage {
	return &EmailMessage{
		From:    a.cfg.MailFrom,
		To:      []string{a.cfg.OwnerEmail},
		ReplyTo: req.Email,
		Subject: fmt.Sprintf("Portfolio contact from %s", req.Name),
		HTML: fmt.Sprintf("<p><strong>%s</strong> &lt;%s&gt; wrote:</p><p>%s</p>",
			html.EscapeString(req.Name), html.EscapeString(req.Email), html.EscapeString(req.Message)),
		Text: fmt.Sprintf("%s <%s> wrote:\n\n%s", req.Name, req.Email, req.Message),
	}
}

func linksHTML(res *ScheduleResult) string {
	out := ""
	if res.MeetLink != nil {
		out += fmt.Sprintf(`<p>Join: <a href="%s">%s</a></p>`, *res.MeetLink, *res.MeetLink)
	}
	if res.EventLink != nil {
		out += fmt.Sprintf(`<p>Calendar event: <a href="%s">%s</a></p>`, *res.EventLink, *res.EventLink)
	}
	return out
}

func linksText(res *ScheduleResult) string {
	out := ""
	if res.MeetLink != nil {
		out += "Join: " + *res.MeetLink + "\n"
	}
	if res.EventLink != nil {
		out += "Calendar event: " + *res.EventLink + "\n"
	}
	return out
}
