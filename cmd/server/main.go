package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"portfolio-api/internal/app"
	"portfolio-api/internal/config"
	"portfolio-api/internal/server"
)

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))

	var scheduler *app.Scheduler
	if cfg.CalendarConfigured() {
		scheduler, err = app.NewScheduler(ctx, cfg)
		if err != nil {
			log.Fatalf("calendar: %v", err)
		}
	} else {
		logger.Warn("calendar credentials missing, bookings will return 500")
	}

	var mailer app.Mailer
	if cfg.EmailConfigured() {
		mailer = app.NewMailer(app.MailerOptions{APIKey: cfg.EmailAPIKey, BaseURL: cfg.EmailBaseURL})
	} else {
		logger.Warn("email credentials missing, notifications disabled")
	}

	appInstance := app.New(cfg, scheduler, mailer, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.HandleMethodNotAllowed = true
	router.NoMethod(appInstance.MethodNotAllowed)

	api := router.Group("/api")
	{
		api.POST("/book-call", appInstance.BookCallHandler)
		api.POST("/contact", appInstance.ContactHandler)

		admin := api.Group("/admin")
		admin.Use(app.AdminAuthMiddleware(cfg.AdminTokens, cfg.AdminJWTSecret))
		admin.GET("/status", appInstance.StatusHandler)
	}

	server.Run(router, cfg.Port, logger)
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
