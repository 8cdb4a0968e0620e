package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Config carries everything the handlers need from the environment. Calendar
// and email credentials are optional at load time; the handlers gate on them
// per request so a partially configured deploy still serves what it can.
type Config struct {
	Port     string
	LogLevel string

	// Google Calendar service account.
	GoogleClientEmail string
	GooglePrivateKey  string
	CalendarID        string
	TimeZone          string // display label attached to event times, e.g. "Asia/Kolkata"
	UTCOffset         string // fixed offset bookings are interpreted in, e.g. "+05:30"
	OrganizerEmail    string // optional impersonation subject; enables attendee invites

	// Transactional email provider.
	EmailAPIKey  string
	EmailBaseURL string
	MailFrom     string
	OwnerEmail   string

	// Admin surface.
	AdminTokens    []string
	AdminJWTSecret string
}

var offsetPattern = regexp.MustCompile(`^[+-]\d{2}:\d{2}$`)

func Load() (Config, error) {
	cfg := Config{
		Port:              getenvDefault("PORT", "8080"),
		LogLevel:          getenvDefault("LOG_LEVEL", "info"),
		GoogleClientEmail: strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_EMAIL")),
		GooglePrivateKey:  normalizePrivateKey(os.Getenv("GOOGLE_PRIVATE_KEY")),
		CalendarID:        getenvDefault("GOOGLE_CALENDAR_ID", "primary"),
		TimeZone:          getenvDefault("GOOGLE_CALENDAR_TIMEZONE", "Asia/Kolkata"),
		UTCOffset:         getenvDefault("GOOGLE_CALENDAR_UTC_OFFSET", "+05:30"),
		OrganizerEmail:    strings.TrimSpace(os.Getenv("GOOGLE_IMPERSONATED_USER")),
		EmailAPIKey:       strings.TrimSpace(os.Getenv("EMAIL_API_KEY")),
		EmailBaseURL:      strings.TrimSpace(os.Getenv("EMAIL_BASE_URL")),
		MailFrom:          getenvDefault("MAIL_FROM", "Bookings <bookings@localhost>"),
		OwnerEmail:        strings.TrimSpace(os.Getenv("OWNER_EMAIL")),
		AdminTokens:       splitTokens(os.Getenv("ADMIN_TOKENS")),
		AdminJWTSecret:    strings.TrimSpace(os.Getenv("ADMIN_JWT_SECRET")),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if !offsetPattern.MatchString(c.UTCOffset) {
		return fmt.Errorf("invalid UTC offset %q, want +HH:MM or -HH:MM", c.UTCOffset)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	return nil
}

// CalendarConfigured reports whether the booking path has what it needs to
// talk to Google Calendar.
func (c Config) CalendarConfigured() bool {
	return c.GoogleClientEmail != "" && c.GooglePrivateKey != "" && c.CalendarID != ""
}

// EmailConfigured reports whether outbound email can be sent at all.
func (c Config) EmailConfigured() bool {
	return c.EmailAPIKey != "" && c.OwnerEmail != ""
}

func getenvDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

// normalizePrivateKey undoes the \n escaping most deploy dashboards apply to
// multi-line PEM values.
func normalizePrivateKey(v string) string {
	return strings.ReplaceAll(strings.TrimSpace(v), `\n`, "\n")
}

func splitTokens(v string) []string {
	var out []string
	for _, t := range strings.Split(v, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
