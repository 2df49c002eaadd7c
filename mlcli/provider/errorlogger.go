package provider

import (
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/fatih/color"
	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"

	"go.jetpack.io/mlpad/goutil/errorutil"
)

type ErrorLogger interface {
	CaptureException(exception error)

	// DisplayException displays an error to the user. This is useful for custom error that mlcli
	// would otherwise not know how to display in a user-friendly way. Returns true if the error
	// is displayed. If true, the caller can continue without doing further error handling.
	DisplayException(err error) bool
}

type NoOpLogger struct{}

var _ ErrorLogger = (*NoOpLogger)(nil)

func (l *NoOpLogger) CaptureException(err error) {}
func (l *NoOpLogger) DisplayException(err error) bool {
	return displayAzureError(err)
}

type sentryLogger struct{}

// SentryLogger reports unexpected errors to the sentry project of dsn.
// User errors are not reported.
func SentryLogger(dsn, release string) (ErrorLogger, error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:     dsn,
		Release: release,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize sentry")
	}
	return &sentryLogger{}, nil
}

func (l *sentryLogger) CaptureException(err error) {
	if err == nil || errorutil.IsUserError(err) {
		return
	}
	sentry.CaptureException(err)
	sentry.Flush(2 * time.Second)
}

func (l *sentryLogger) DisplayException(err error) bool {
	return displayAzureError(err)
}

// displayAzureError prints the status and code of a failed Azure request,
// which say more than the wrapped chain leading to it.
func displayAzureError(err error) bool {
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) || errorutil.IsUserError(err) {
		return false
	}
	color.Red("\nError: Azure returned %d %s\n\n %s\n\nRun with --debug for more information",
		respErr.StatusCode, respErr.ErrorCode, err)
	return true
}
