// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// InstanceStatus is the typed live state of one instance on its
// target, derived entirely from the engine at query time. It is the
// queryable resource a release manages; Caravel persists nothing about
// it.
type InstanceStatus struct {
	// Name is the instance's container name.
	Name string `json:"name"`

	// Exists reports whether a container with the name exists at all.
	// When false, every other field is zero.
	Exists bool `json:"exists"`

	// Running reports whether the container's engine status is
	// "running".
	Running bool `json:"running"`

	// EngineStatus is the raw engine status string: running, exited,
	// created, paused, restarting, dead.
	EngineStatus string `json:"engine_status,omitempty"`

	// ContainerID is the engine's container identifier.
	ContainerID string `json:"container_id,omitempty"`

	// Image is the image reference the container was created from.
	Image string `json:"image,omitempty"`

	// StartedAt is when the container last started, when the engine
	// reports it.
	StartedAt time.Time `json:"started_at,omitzero"`
}

// Status queries the live state of an instance. An absent container is
// not an error: it returns a status with Exists false, which is the
// expected answer on a host that has never been deployed to.
func Status(ctx context.Context, runner Runner, instance Instance) (InstanceStatus, error) {
	status := InstanceStatus{Name: instance.Name}

	result, err := runner.Run(ctx, instance.InspectCommand())
	if err != nil {
		return status, fmt.Errorf("inspecting %s: %w", instance.Name, err)
	}
	if result.ExitCode != 0 {
		if indicatesAbsence(result) {
			return status, nil
		}
		return status, fmt.Errorf("inspecting %s failed (exit %d): %s", instance.Name, result.ExitCode, stderrTail(result.Stderr))
	}

	parsed, err := parseInspectOutput(result.Stdout)
	if err != nil {
		return status, fmt.Errorf("inspecting %s: %w", instance.Name, err)
	}
	parsed.Name = instance.Name
	return parsed, nil
}

// parseInspectOutput parses the tab-separated fields produced by
// [Instance.InspectCommand]: container ID, status, image, start time.
func parseInspectOutput(output string) (InstanceStatus, error) {
	fields := strings.Split(strings.TrimSpace(output), "\t")
	if len(fields) != 4 {
		return InstanceStatus{}, fmt.Errorf("unexpected inspect output %q", strings.TrimSpace(output))
	}

	status := InstanceStatus{
		Exists:       true,
		ContainerID:  fields[0],
		EngineStatus: fields[1],
		Running:      fields[1] == "running",
		Image:        fields[2],
	}

	// The engine reports RFC 3339 with nanoseconds. A container that
	// never started reports the zero time; leave StartedAt zero then.
	if startedAt, err := time.Parse(time.RFC3339Nano, fields[3]); err == nil && startedAt.Year() > 1 {
		status.StartedAt = startedAt
	}

	return status, nil
}
