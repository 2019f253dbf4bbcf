// Package logger is the shared logging layer of the vault-engine daemons.
// Both the lifecycle sweeper and the transaction reconciler initialize it
// once at startup; errors are mirrored to Sentry when a DSN is configured.
package logger

import (
	"context"
	"time"

	"github.com/TheZeroSlave/zapsentry"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log          *zap.Logger
	sentryClient *sentry.Client
)

// Config holds logger configuration
type Config struct {
	Debug     bool
	SentryDSN string
	// SentryClient overrides the client built from SentryDSN when set
	SentryClient    *sentry.Client
	BreadcrumbLevel zapcore.Level
	Tags            map[string]string
}

// Initialize builds the process-wide logger. Without a Sentry DSN it is a
// plain zap logger; with one, error-level entries also go to Sentry with
// lower-level entries recorded as breadcrumbs.
func Initialize(cfg Config) error {
	base, err := buildZap(cfg.Debug)
	if err != nil {
		return err
	}

	if cfg.SentryDSN == "" {
		log = base
		return nil
	}

	client := cfg.SentryClient
	if client == nil {
		client, err = sentry.NewClient(sentry.ClientOptions{
			Dsn:   cfg.SentryDSN,
			Debug: cfg.Debug,
		})
		if err != nil {
			return err
		}
	}
	sentryClient = client

	log, err = attachSentry(base, client, cfg)
	return err
}

func buildZap(debug bool) (*zap.Logger, error) {
	if debug {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	return cfg.Build()
}

func attachSentry(base *zap.Logger, client *sentry.Client, cfg Config) (*zap.Logger, error) {
	breadcrumbLevel := cfg.BreadcrumbLevel
	if breadcrumbLevel == zapcore.InvalidLevel {
		breadcrumbLevel = zapcore.InfoLevel
	}

	core, err := zapsentry.NewCore(zapsentry.Configuration{
		Level:             zapcore.ErrorLevel,
		EnableBreadcrumbs: true,
		BreadcrumbLevel:   breadcrumbLevel,
		Tags:              cfg.Tags,
	}, zapsentry.NewSentryClientFromClient(client))
	if err != nil {
		return nil, err
	}
	return zapsentry.AttachCoreToLogger(core, base), nil
}

// Flush drains buffered Sentry events. The daemons call it on shutdown.
func Flush(timeout time.Duration) {
	if sentryClient != nil {
		sentryClient.Flush(timeout)
	}
}

// FromContext returns the logger bound to the context's Sentry scope, so
// events from one sweep or reconcile pass group together in Sentry
func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return log
	}
	return log.With(zapsentry.Context(ctx))
}

// Default returns the global logger without context scope
func Default() *zap.Logger {
	return log
}

func Info(msg string, fields ...zap.Field) {
	log.Info(msg, fields...)
}

func InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Info(msg, fields...)
}

func Error(err error, fields ...zap.Field) {
	if err == nil {
		log.Error("error occurred", fields...)
		return
	}
	log.Error(err.Error(), fields...)
}

func ErrorCtx(ctx context.Context, err error, fields ...zap.Field) {
	if err == nil {
		FromContext(ctx).Error("error occurred", fields...)
		return
	}
	FromContext(ctx).Error(err.Error(), fields...)
}

// FatalCtx logs the message and exits the process
func FatalCtx(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Fatal(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	log.Warn(msg, fields...)
}

func WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Warn(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	log.Debug(msg, fields...)
}
