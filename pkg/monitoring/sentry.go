package monitoring

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/d60-Lab/linkrank/config"
)

// InitSentry DSN 为空时不启用，返回的 flush 函数总是可调用
func InitSentry(cfg config.SentryConfig, release string) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          release,
		AttachStacktrace: true,
	})
	if err != nil {
		return nil, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}
