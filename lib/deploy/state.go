// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

// State is the position of a deploy session in the release sequence.
// States advance strictly forward: Idle → Pulled → Stopped → Removed →
// Running, with Failed reachable from any step. There are no backward
// transitions and no persistence — a new session always starts at
// Idle.
type State uint8

const (
	// StateIdle is the initial state: nothing has been executed on
	// the target yet.
	StateIdle State = iota

	// StatePulled means the new image has been pulled on the target.
	// Nothing destructive has happened; the previous container (if
	// any) is still running.
	StatePulled

	// StateStopped means the previous container has been stopped, or
	// was found absent. The service is now down until run completes.
	StateStopped

	// StateRemoved means the previous container has been removed, or
	// was found absent. The instance name is free for the new
	// container.
	StateRemoved

	// StateRunning is the terminal success state: the new container
	// started under the instance name.
	StateRunning

	// StateFailed is the terminal failure state. Whether the service
	// is still up depends on how far the sequence got; see
	// [OutageError].
	StateFailed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePulled:
		return "pulled"
	case StateStopped:
		return "stopped"
	case StateRemoved:
		return "removed"
	case StateRunning:
		return "running"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
