package provider

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"go.jetpack.io/mlpad/pkg/padlog"
)

type Analytics interface {
	Track(ctx context.Context, event string, options map[string]any)
	Close() error
}

// eventLogAnalytics writes tracked events to the debug event log and
// leaves them as breadcrumbs on any error later reported to sentry.
type eventLogAnalytics struct {
	tracked int
}

func DefaultAnalyticsProvider() Analytics {
	return &eventLogAnalytics{}
}

func (a *eventLogAnalytics) Track(ctx context.Context, event string, options map[string]any) {
	a.tracked++
	padlog.Events("mlpad.analytics").WithFields(logrus.Fields(options)).Debug(event)
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Category: "analytics",
		Message:  event,
		Data:     options,
		Level:    sentry.LevelInfo,
	})
}

func (a *eventLogAnalytics) Close() error {
	padlog.Events("mlpad.analytics").Debugf("%d events tracked", a.tracked)
	return nil
}
