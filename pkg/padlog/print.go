package padlog

import (
	"fmt"
	"io"
	"log"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/pkg/errors"
)

type logger struct {
	writer  io.Writer
	spinner *spinner.Spinner
}

func (l *logger) Write(p []byte) (n int, err error) {
	n, err = l.writer.Write(p)
	return n, errors.WithStack(err)
}

func (l *logger) stopSpinner() {
	if l.spinner != nil && l.spinner.Active() {
		l.spinner.Stop()
	}
}

func (l *logger) HeaderPrintf(msg string, a ...any) {
	l.stopSpinner()
	msg = "# " + msg + "\n"
	if l.spinner == nil {
		printf(l.writer, msg, a...)
		return
	}
	color.New(color.FgHiCyan, color.Bold).Fprintf(l.writer, msg, a...)
}

func (l *logger) IndentedPrintf(msg string, a ...any) {
	printf(l.writer, "\t"+msg, a...)
}

func (l *logger) IndentedPrintln(msg string, a ...any) {
	printf(l.writer, "\t"+msg+"\n", a...)
}

func (l *logger) WarningPrintf(msg string, a ...any) {
	msg = "WARNING: " + msg + "\n"
	if l.spinner == nil {
		printf(l.writer, msg, a...)
		return
	}
	color.New(color.FgHiYellow, color.Bold).Fprintf(l.writer, msg, a...)
}

// WithSpinnerFuncPrint prints out a message and starts a spinner. closure() will then be
// executed, and the spinner stopped after it's done.
func (l *logger) WithSpinnerFuncPrint(closure func(), msg string) {
	if l.spinner == nil {
		printf(l.writer, "%s\n", msg)
		closure()
		return
	}
	l.stopSpinner()
	l.spinner.Prefix = msg
	l.spinner.FinalMSG = "✔ " + msg + "\n"
	l.spinner.Start()
	defer l.spinner.Stop()

	closure()
}

func (l *logger) Println(a ...any) {
	printf(l.writer, "%s", fmt.Sprintln(a...))
}

func (l *logger) Print(msg string) {
	print(l.writer, msg)
}

func (l *logger) Printf(msg string, a ...any) {
	printf(l.writer, msg, a...)
}

func print(w io.Writer, msg string) {
	_, err := w.Write([]byte(msg))
	if err != nil {
		log.Println(err)
	}
}

func printf(w io.Writer, msg string, a ...any) {
	print(w, fmt.Sprintf(msg, a...))
}
