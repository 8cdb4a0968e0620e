package app

import (
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio-api/internal/config"
)

// App wires the handlers to their collaborators. A nil scheduler or mailer
// means that side is unconfigured; the handlers gate on it per request.
type App struct {
	cfg       config.Config
	scheduler *Scheduler
	mailer    Mailer
	log       *slog.Logger

	now       func() time.Time
	startedAt time.Time

	bookingsAccepted   atomic.Int64
	bookingsRejected   atomic.Int64
	schedulingFailures atomic.Int64
	emailsSent         atomic.Int64
	contactsRelayed    atomic.Int64
}

func New(cfg config.Config, scheduler *Scheduler, mailer Mailer, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	return &App{
		cfg:       cfg,
		scheduler: scheduler,
		mailer:    mailer,
		log:       log,
		now:       time.Now,
		startedAt: time.Now(),
	}
}

// POST /api/book-call
func (a *App) BookCallHandler(c *gin.Context) {
	if a.scheduler == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Server not configured"})
		return
	}

	var req BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid JSON"})
		return
	}

	window, err := validateBooking(&req, a.now(), a.cfg.UTCOffset)
	if err != nil {
		a.bookingsRejected.Add(1)
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	res, err := a.scheduler.ScheduleCall(c.Request.Context(), &req, window)
	if err != nil {
		a.schedulingFailures.Add(1)
		status, details := 0, err.Error()
		var serr *SchedulingError
		if errors.As(err, &serr) {
			status, details = serr.Status, serr.Details
		}
		a.log.Error("scheduling failed", "status", status, "err", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"ok":      false,
			"error":   "Failed to create meeting",
			"status":  status,
			"details": details,
		})
		return
	}

	sent := a.sendBookingNotifications(c.Request.Context(), &req, res)

	a.bookingsAccepted.Add(1)
	a.log.Info("call booked", "date", req.SelectedDate, "slot", req.SelectedTime, "eventId", res.EventID, "emailsSent", sent)
	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"meetLink":   res.MeetLink,
		"eventLink":  res.EventLink,
		"eventId":    res.EventID,
		"emailsSent": sent,
	})
}

// POST /api/contact
func (a *App) ContactHandler(c *gin.Context) {
	if a.mailer == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Server not configured"})
		return
	}

	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid JSON"})
		return
	}

	if err := validateContact(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	msg := a.contactRelay(&req)
	if err := a.mailer.Send(c.Request.Context(), msg); err != nil {
		a.log.Error("contact relay failed", "err", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"ok":      false,
			"error":   "Failed to send message",
			"details": truncate(err.Error(), maxErrorDetailLen),
		})
		return
	}

	a.contactsRelayed.Add(1)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GET /api/admin/status
func (a *App) StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"uptimeSeconds":      int(a.now().Sub(a.startedAt).Seconds()),
		"bookingsAccepted":   a.bookingsAccepted.Load(),
		"bookingsRejected":   a.bookingsRejected.Load(),
		"schedulingFailures": a.schedulingFailures.Load(),
		"emailsSent":         a.emailsSent.Load(),
		"contactsRelayed":    a.contactsRelayed.Load(),
		"calendarConfigured": a.scheduler != nil,
		"emailConfigured":    a.mailer != nil,
	})
}

// MethodNotAllowed answers requests that hit a known path with the wrong
// verb. Registered as the router's NoMethod handler.
func (a *App) MethodNotAllowed(c *gin.Context) {
	switch c.Request.URL.Path {
	case "/api/book-call", "/api/contact":
		c.Header("Allow", http.MethodPost)
	case "/api/admin/status":
		c.Header("Allow", http.MethodGet)
	}
	c.JSON(http.StatusMethodNotAllowed, gin.H{"ok": false, "error": "Method not allowed"})
}
