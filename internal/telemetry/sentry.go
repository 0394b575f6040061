package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/config"
)

// InitSentry configures error reporting. With no DSN it returns a no-op flush.
func InitSentry(cfg *config.Config, log *zap.Logger) (func(), error) {
	if cfg.SentryDSN == "" {
		log.Info("sentry disabled")
		return func() {}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      string(cfg.Env),
		AttachStacktrace: true,
	})
	if err != nil {
		return nil, fmt.Errorf("init sentry: %w", err)
	}

	log.Info("sentry enabled", zap.String("environment", string(cfg.Env)))
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// SentryMiddleware attaches a per-request hub. Panics are re-raised so the
// recovery middleware still answers with JSON.
func SentryMiddleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// CaptureError reports err on the request hub, if there is one.
func CaptureError(c *gin.Context, err error) {
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
}
