// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package publish

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
)

// Result is the outcome of one engine invocation.
type Result struct {
	// ExitCode is the engine process's exit code. Zero on success.
	ExitCode int

	// Stdout and Stderr are the captured output streams.
	Stdout string
	Stderr string
}

// Runner executes container engine commands. A non-zero engine exit
// code is reported through [Result.ExitCode], not as a Go error; the
// error return is reserved for failures to run the engine at all
// (binary missing, context cancelled).
type Runner interface {
	Run(ctx context.Context, stdin io.Reader, args ...string) (Result, error)
}

// ExecRunner runs engine commands via os/exec.
type ExecRunner struct {
	// Binary is the engine executable name or path, e.g. "docker".
	Binary string
}

// Run executes the engine with the given arguments, feeding stdin when
// non-nil and capturing both output streams.
func (r *ExecRunner) Run(ctx context.Context, stdin io.Reader, args ...string) (Result, error) {
	command := exec.CommandContext(ctx, r.Binary, args...)
	command.Stdin = stdin

	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	err := command.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitError *exec.ExitError
	switch {
	case err == nil:
		return result, nil
	case errors.As(err, &exitError):
		result.ExitCode = exitError.ExitCode()
		return result, nil
	default:
		return result, err
	}
}
