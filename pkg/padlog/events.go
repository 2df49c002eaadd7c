package padlog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Event logs are the durable record of what a run did: one line per
// decision or cloud call, in the form
//
//	2024-01-02 15:04:05,000 - mlpad.compute - INFO - AmlCompute 'cpu-cluster' already exists.
//
// They go to stderr and, when configured, to a log file as well.

const nameField = "logger"

var (
	eventsMu  sync.Mutex
	eventsLog = newEventLogger(os.Stderr)
	logFile   *os.File
)

func newEventLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&lineFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Events returns a logger tagged with name (for example "mlpad.compute").
func Events(name string) *logrus.Entry {
	eventsMu.Lock()
	defer eventsMu.Unlock()
	return eventsLog.WithField(nameField, name)
}

// Setup configures the event logger. When path is non-empty the file is
// opened for append and receives the same lines as the console.
func Setup(path string, level string) error {
	lvl, err := logrus.ParseLevel(orDefault(level, "info"))
	if err != nil {
		return errors.WithStack(err)
	}

	eventsMu.Lock()
	defer eventsMu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	var out io.Writer = os.Stderr
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return errors.WithStack(err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return errors.Wrapf(err, "failed to open log file %s", path)
		}
		logFile = f
		out = io.MultiWriter(os.Stderr, f)
	}
	eventsLog.SetOutput(out)
	eventsLog.SetLevel(lvl)
	return nil
}

// SetOutput redirects event logs, used by tests.
func SetOutput(w io.Writer) {
	eventsMu.Lock()
	defer eventsMu.Unlock()
	eventsLog.SetOutput(w)
}

// Close flushes and closes the log file, if any.
func Close() error {
	eventsMu.Lock()
	defer eventsMu.Unlock()
	if logFile == nil {
		return nil
	}
	eventsLog.SetOutput(os.Stderr)
	err := logFile.Close()
	logFile = nil
	return errors.WithStack(err)
}

type lineFormatter struct{}

func (f *lineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	name, _ := e.Data[nameField].(string)
	if name == "" {
		name = "mlpad"
	}
	var b bytes.Buffer
	fmt.Fprintf(
		&b,
		"%s - %s - %s - %s",
		e.Time.Format("2006-01-02 15:04:05,000"),
		name,
		strings.ToUpper(e.Level.String()),
		e.Message,
	)
	for k, v := range e.Data {
		if k == nameField {
			continue
		}
		fmt.Fprintf(&b, " %s=%v", k, v)
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
