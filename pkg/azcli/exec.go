// Copyright 2023 Jetpack Technologies Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package azcli

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Runner runs the az binary. Output is what the command wrote to stdout.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// Exec runs az as a child process.
type Exec struct {
	// Binary defaults to "az".
	Binary string
	// TTY connects the child to the terminal instead of capturing stdout,
	// for commands that may prompt (device code login).
	TTY bool
}

func (e Exec) Run(ctx context.Context, args ...string) ([]byte, error) {
	bin := e.Binary
	if bin == "" {
		bin = "az"
	}
	if e.TTY {
		cmd := CommandTTY(ctx, bin, args...)
		return nil, errors.Wrapf(cmd.Run(), "%s %s failed", bin, redact(args))
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &CommandError{
			Args:   redact(args),
			Stderr: strings.TrimSpace(stderr.String()),
			err:    errors.WithStack(err),
		}
	}
	return stdout.Bytes(), nil
}

func CommandTTY(ctx context.Context, name string, arg ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, arg...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

// CommandError is a failed az invocation with its captured stderr.
type CommandError struct {
	Args   string
	Stderr string
	err    error
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return "az " + e.Args + ": " + e.err.Error()
	}
	return "az " + e.Args + ": " + e.Stderr
}

func (e *CommandError) Unwrap() error {
	return e.err
}

var secretFlags = map[string]bool{"--password": true, "-p": true, "--client-secret": true}

// redact renders args for messages with secret flag values masked.
func redact(args []string) string {
	out := make([]string, len(args))
	for i, a := range args {
		if i > 0 && secretFlags[args[i-1]] {
			out[i] = "***"
			continue
		}
		out[i] = a
	}
	return strings.Join(out, " ")
}
