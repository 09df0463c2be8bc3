package bugsink

import (
	"fmt"
	"log"
	"time"

	"dealbot/config"

	"github.com/getsentry/sentry-go"
)

var (
	initialized bool
	enabled     bool
)

// Init sets up Sentry-protocol error tracking from config. A missing DSN
// leaves tracking disabled.
func Init() error {
	cfg := config.C()

	if !cfg.BugSink_Enabled {
		log.Println("[BUGSINK] BugSink error tracking is disabled")
		enabled = false
		return nil
	}

	if cfg.BugSink_DSN == "" {
		log.Println("[BUGSINK] BugSink DSN not provided, disabling error tracking")
		enabled = false
		return nil
	}

	log.Printf("[BUGSINK] Initializing BugSink error tracking (environment: %s, release: %s)",
		cfg.BugSink_Environment, cfg.BugSink_Release)

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.BugSink_DSN,
		Debug:            cfg.BugSink_Environment == "development",
		Environment:      cfg.BugSink_Environment,
		Release:          cfg.BugSink_Release,
		AttachStacktrace: true,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			if event.Tags == nil {
				event.Tags = make(map[string]string)
			}
			event.Tags["service"] = "dealbot"
			event.Tags["component"] = "telegram-bot"
			return event
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize BugSink: %w", err)
	}

	initialized = true
	enabled = true
	log.Println("[BUGSINK] BugSink error tracking initialized successfully")

	CaptureMessage("BugSink initialized successfully", map[string]interface{}{
		"component": "initialization",
	})

	return nil
}

// IsEnabled returns true if BugSink is enabled and initialized
func IsEnabled() bool {
	return enabled && initialized
}

// CaptureError captures an error with additional context
func CaptureError(err error, context map[string]interface{}) {
	if !IsEnabled() {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		for key, value := range context {
			scope.SetContext(key, map[string]interface{}{key: value})
		}
		scope.SetLevel(sentry.LevelError)
		sentry.CaptureException(err)
	})
}

// CaptureInteractionError reports a failed participant interaction with
// the deal and operation attached as tags
func CaptureInteractionError(err error, userID int64, dealID int64, operation string) {
	if !IsEnabled() {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetUser(sentry.User{ID: fmt.Sprintf("%d", userID)})
		scope.SetTag("operation", operation)
		if dealID != 0 {
			scope.SetTag("deal_id", fmt.Sprintf("%d", dealID))
		}
		scope.SetLevel(sentry.LevelError)
		sentry.CaptureException(err)
	})
}

// CaptureMessage captures a message with additional context
func CaptureMessage(message string, context map[string]interface{}) {
	if !IsEnabled() {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		for key, value := range context {
			scope.SetContext(key, map[string]interface{}{key: value})
		}
		scope.SetLevel(sentry.LevelInfo)
		sentry.CaptureMessage(message)
	})
}

// Recover captures panics but doesn't re-panic them
func Recover() {
	if err := recover(); err != nil {
		if IsEnabled() {
			sentry.WithScope(func(scope *sentry.Scope) {
				scope.SetLevel(sentry.LevelFatal)
				scope.SetContext("panic", map[string]interface{}{
					"recovered_value": fmt.Sprintf("%v", err),
				})
				sentry.CaptureException(fmt.Errorf("panic recovered: %v", err))
			})
		}

		log.Printf("[BUGSINK] Panic recovered and reported: %v", err)
	}
}

// AddBreadcrumb adds a breadcrumb to the error trail
func AddBreadcrumb(message string, category string, level sentry.Level) {
	if !IsEnabled() {
		return
	}

	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Message:   message,
		Category:  category,
		Level:     level,
		Timestamp: time.Now(),
	})
}

// Flush flushes any pending events to BugSink
func Flush(timeout time.Duration) bool {
	if !IsEnabled() {
		return true
	}

	return sentry.Flush(timeout)
}

// Close gracefully shuts down BugSink
func Close() {
	if !IsEnabled() {
		return
	}

	log.Println("[BUGSINK] Flushing pending events before shutdown...")
	Flush(2 * time.Second)
	log.Println("[BUGSINK] BugSink error tracking closed")
}
