package jflags

import (
	"time"

	"github.com/spf13/cobra"

	"go.jetpack.io/mlpad/goutil"
)

func RegisterFileFlag(cmd *cobra.Command, flags *File) {
	cmd.Flags().StringVarP(
		&flags.file,
		"file",
		"f",
		"",
		"Config file to reconcile. Defaults to the file of this kind under variables/<environment>/",
	)
}

type File struct {
	file string
}

// DefaultedFile returns the --file value, or def when it was not passed.
func (f *File) DefaultedFile(def string) string {
	return goutil.Coalesce(f.file, def)
}

func RegisterWaitFlags(cmd *cobra.Command, flags *Wait, what string) {
	cmd.Flags().BoolVar(
		&flags.wait,
		"wait",
		false,
		"Wait until "+what,
	)
	cmd.Flags().DurationVar(
		&flags.timeout,
		"wait-timeout",
		0,
		"How long --wait waits. Zero uses the default for the resource",
	)
}

type Wait struct {
	wait    bool
	timeout time.Duration
}

func (w *Wait) Wait() bool {
	return w.wait
}

func (w *Wait) Timeout() time.Duration {
	return w.timeout
}
