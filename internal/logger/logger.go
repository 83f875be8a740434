package logger

import (
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"

	"github.com/stridehq/stride/internal/config"
)

// Setup configures the default slog logger.
//
// Development: text output at debug level.
// Production: JSON output at info level, plus Sentry fan-out for
// warnings and errors when SENTRY_DSN is set.
func Setup(cfg *config.Config) {
	var handler slog.Handler

	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}

	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:           cfg.SentryDSN,
			Environment:   cfg.AppEnv,
			EnableTracing: false,
		})
		if err != nil {
			slog.New(handler).Error("sentry init failed", "error", err)
		} else {
			handler = slogmulti.Fanout(
				handler,
				slogsentry.Option{Level: slog.LevelWarn}.NewSentryHandler(),
			)
		}
	}

	slog.SetDefault(slog.New(handler))
}

// Flush drains buffered Sentry events before shutdown.
func Flush() {
	sentry.Flush(2 * time.Second)
}
