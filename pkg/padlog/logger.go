package padlog

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

var (
	outLogger *logger
	outOnce   sync.Once
)

type ctxKey struct{}

// Logger returns the console printer. A printer stored on ctx with
// WithLogger wins over the process-wide one, which is how tests capture
// output.
func Logger(ctx context.Context) *logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*logger); ok {
			return l
		}
	}
	outOnce.Do(func() {
		s := spinner.New(spinner.CharSets[26], 250*time.Millisecond)
		outLogger = &logger{writer: os.Stdout, spinner: s}
	})
	return outLogger
}

// WithLogger returns a context whose console output goes to w. The spinner
// is disabled so the output stays plain text.
func WithLogger(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, ctxKey{}, &logger{writer: w})
}
