// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caravel-tools/caravel/lib/remote"
)

// Runner executes commands on the deployment target. [remote.Client]
// satisfies it; tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, command string) (remote.Result, error)
}

// OutageError reports a run failure after the previous container was
// removed. This is the one failure mode where the service is down and
// will stay down until an operator intervenes, so it is a distinct
// type that callers surface loudly instead of wrapping into a generic
// deploy failure.
type OutageError struct {
	// Instance is the container name that failed to start.
	Instance string

	// ExitCode is the engine's exit code for the run command.
	ExitCode int

	// Detail is the tail of the engine's stderr.
	Detail string
}

func (e *OutageError) Error() string {
	return fmt.Sprintf(
		"SERVICE DOWN: %s failed to start (exit %d) and the previous container is already removed: %s",
		e.Instance, e.ExitCode, e.Detail,
	)
}

// StepEvent describes one completed step of the deploy sequence.
// Observers receive events in execution order; the final event carries
// a terminal state.
type StepEvent struct {
	// Step is the command name: pull, stop, remove, or run.
	Step string

	// State is the session state after the step.
	State State

	// Absent reports that the step addressed a container that did not
	// exist and was tolerated as a no-op (stop and remove only).
	Absent bool

	// Duration is the step's wall-clock execution time.
	Duration time.Duration

	// Err is the step's failure, nil on success.
	Err error
}

// Session executes one deploy of an instance on one target.
type Session struct {
	// Runner executes remote commands.
	Runner Runner

	// Instance is the container being deployed.
	Instance Instance

	// Logger receives progress events. Nil disables logging.
	Logger *slog.Logger

	// Steps receives a JSONL record per step. Nil disables the log.
	Steps *StepLog

	// Observer, when non-nil, is called after every step. Used by the
	// interactive watch display.
	Observer func(StepEvent)

	state State
}

// State returns the session's current state.
func (s *Session) State() State {
	return s.state
}

// Run executes the deploy sequence: pull, stop, remove, run. It
// returns the terminal state ([StateRunning] or [StateFailed]) and the
// failure that terminated the sequence, if any.
//
// Stop and remove tolerate an absent container: a fresh target or a
// pruned container is the normal first-deploy path. Every other
// failure aborts immediately. A run failure is returned as
// [*OutageError] because the previous container is gone by then.
func (s *Session) Run(ctx context.Context) (State, error) {
	s.state = StateIdle

	// Pull before anything destructive. A bad image reference, a
	// registry outage, or a full disk stops the release here, with the
	// previous container still serving.
	if err := s.step(ctx, "pull", s.Instance.PullCommand(), StatePulled, func(result remote.Result) error {
		return fmt.Errorf(
			"pulling %s failed (exit %d): %s",
			s.Instance.Image, result.ExitCode, stderrTail(result.Stderr),
		)
	}); err != nil {
		return s.fail("pull", err)
	}

	if err := s.tolerantStep(ctx, "stop", s.Instance.StopCommand(), StateStopped); err != nil {
		return s.fail("stop", err)
	}

	if err := s.tolerantStep(ctx, "remove", s.Instance.RemoveCommand(), StateRemoved); err != nil {
		return s.fail("remove", err)
	}

	// The point of no return is behind us: the old container is gone.
	// A failure here is an outage, not a retryable hiccup.
	if err := s.step(ctx, "run", s.Instance.RunCommand(), StateRunning, func(result remote.Result) error {
		return &OutageError{
			Instance: s.Instance.Name,
			ExitCode: result.ExitCode,
			Detail:   stderrTail(result.Stderr),
		}
	}); err != nil {
		var outage *OutageError
		if !errors.As(err, &outage) {
			// Transport failure: the exit code never arrived, but the
			// service is down all the same.
			err = &OutageError{Instance: s.Instance.Name, ExitCode: -1, Detail: err.Error()}
		}
		return s.fail("run", err)
	}

	s.log(ctx, "instance running", "instance", s.Instance.Name, "image", s.Instance.Image.String())
	return StateRunning, nil
}

// step executes one command, advancing the state on success. onExit
// builds the step's failure from a non-zero exit, so the typed error
// lands in the step log as well as the return value.
func (s *Session) step(ctx context.Context, name, command string, next State, onExit func(remote.Result) error) error {
	s.log(ctx, "deploy step", "step", name, "instance", s.Instance.Name)

	started := time.Now()
	result, err := s.Runner.Run(ctx, command)
	duration := time.Since(started)

	if err == nil && result.ExitCode != 0 {
		err = onExit(result)
	}
	if err == nil {
		s.state = next
		s.observe(StepEvent{Step: name, State: s.state, Duration: duration})
	}
	s.record(name, result, duration, false, err)
	return err
}

// tolerantStep executes a step where an absent container is a no-op:
// the state still advances, because "nothing to stop" and "stopped"
// leave the target in the same place.
func (s *Session) tolerantStep(ctx context.Context, name, command string, next State) error {
	s.log(ctx, "deploy step", "step", name, "instance", s.Instance.Name)

	started := time.Now()
	result, err := s.Runner.Run(ctx, command)
	duration := time.Since(started)

	if err != nil {
		s.record(name, result, duration, false, err)
		return err
	}

	if result.ExitCode != 0 {
		if !indicatesAbsence(result) {
			failure := fmt.Errorf("%s %s failed (exit %d): %s", name, s.Instance.Name, result.ExitCode, stderrTail(result.Stderr))
			s.record(name, result, duration, false, failure)
			return failure
		}
		s.log(ctx, "no existing container", "step", name, "instance", s.Instance.Name)
		s.state = next
		s.record(name, result, duration, true, nil)
		s.observe(StepEvent{Step: name, State: s.state, Absent: true, Duration: duration})
		return nil
	}

	s.state = next
	s.record(name, result, duration, false, nil)
	s.observe(StepEvent{Step: name, State: s.state, Duration: duration})
	return nil
}

// fail moves the session to the terminal failed state.
func (s *Session) fail(step string, err error) (State, error) {
	s.state = StateFailed
	s.log(context.Background(), "deploy failed", "step", step, "instance", s.Instance.Name, "error", err)
	s.observe(StepEvent{Step: step, State: StateFailed, Err: err})
	return StateFailed, err
}

func (s *Session) record(step string, result remote.Result, duration time.Duration, absent bool, err error) {
	s.Steps.Record(StepRecord{
		Step:       step,
		State:      s.state.String(),
		ExitCode:   result.ExitCode,
		Absent:     absent,
		DurationMS: duration.Milliseconds(),
		Error:      errorString(err),
	})
}

func (s *Session) observe(event StepEvent) {
	if s.Observer != nil {
		s.Observer(event)
	}
}

func (s *Session) log(ctx context.Context, message string, args ...any) {
	if s.Logger != nil {
		s.Logger.InfoContext(ctx, message, args...)
	}
}

// absenceMarkers are the engine stderr fragments that identify "the
// container does not exist" across docker and podman versions.
var absenceMarkers = []string{
	"no such container",
	"no such object",
	"no container with name",
}

// indicatesAbsence reports whether a failed stop/remove/inspect means
// the container simply does not exist.
func indicatesAbsence(result remote.Result) bool {
	if result.ExitCode == 0 {
		return false
	}
	stderr := strings.ToLower(result.Stderr)
	for _, marker := range absenceMarkers {
		if strings.Contains(stderr, marker) {
			return true
		}
	}
	return false
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// stderrTail returns the last few lines of engine stderr, trimmed.
func stderrTail(stderr string) string {
	const maxLines = 5

	trimmed := strings.TrimSpace(stderr)
	if trimmed == "" {
		return "(no engine output)"
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.Join(lines, "\n")
}
