package errorutil

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

type causer interface {
	Cause() error
}

// EarliestStackTrace follows the Cause() chain of err and returns the stack
// captured closest to where the failure started.
func EarliestStackTrace(err error) errors.StackTrace {
	var st stackTracer
	var c causer
	var earliest errors.StackTrace

	for err != nil {
		if errors.As(err, &st) {
			earliest = st.StackTrace()
		}
		if !errors.As(err, &c) {
			break
		}
		err = c.Cause()
	}
	return earliest
}

// DebugReport renders the error chain plus the earliest stack trace, for
// --debug output.
func DebugReport(err error) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Error chain is:\n\t %s.\n\n", err.Error())
	if st := EarliestStackTrace(err); st != nil {
		fmt.Fprintf(&sb, "Stacktrace:\n%+v\n", st)
	} else {
		fmt.Fprintf(&sb, "Failed to get Stacktrace:\n%+v\n", errors.Cause(err))
	}
	return sb.String()
}
