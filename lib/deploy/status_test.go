// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"context"
	"testing"
	"time"

	"github.com/caravel-tools/caravel/lib/remote"
)

func TestStatusRunning(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{results: map[string]remote.Result{
		"inspect": {
			Stdout: "3f4a9c\trunning\tregistry.example.com/team/dashboard:latest\t2026-08-30T09:15:00.123456789Z\n",
		},
	}}

	status, err := Status(context.Background(), runner, testInstance(t))
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Exists || !status.Running {
		t.Errorf("status = %+v, want exists+running", status)
	}
	if status.ContainerID != "3f4a9c" {
		t.Errorf("container ID = %q", status.ContainerID)
	}
	if status.Image != "registry.example.com/team/dashboard:latest" {
		t.Errorf("image = %q", status.Image)
	}
	want := time.Date(2026, 8, 30, 9, 15, 0, 123456789, time.UTC)
	if !status.StartedAt.Equal(want) {
		t.Errorf("started at = %v, want %v", status.StartedAt, want)
	}
}

func TestStatusExited(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{results: map[string]remote.Result{
		"inspect": {Stdout: "3f4a9c\texited\timg:latest\t0001-01-01T00:00:00Z\n"},
	}}

	status, err := Status(context.Background(), runner, testInstance(t))
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Exists {
		t.Error("exited container reported as absent")
	}
	if status.Running {
		t.Error("exited container reported as running")
	}
	if !status.StartedAt.IsZero() {
		t.Errorf("zero engine time parsed as %v", status.StartedAt)
	}
}

func TestStatusAbsentIsNotAnError(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{results: map[string]remote.Result{
		"inspect": {ExitCode: 1, Stderr: "Error: No such object: dashboard"},
	}}

	status, err := Status(context.Background(), runner, testInstance(t))
	if err != nil {
		t.Fatalf("Status on absent container: %v", err)
	}
	if status.Exists {
		t.Error("absent container reported as existing")
	}
	if status.Name != "dashboard" {
		t.Errorf("name = %q", status.Name)
	}
}

func TestStatusDaemonFailure(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{results: map[string]remote.Result{
		"inspect": {ExitCode: 1, Stderr: "Cannot connect to the Docker daemon"},
	}}

	if _, err := Status(context.Background(), runner, testInstance(t)); err == nil {
		t.Error("daemon failure reported as clean status")
	}
}

func TestParseInspectOutputMalformed(t *testing.T) {
	t.Parallel()

	if _, err := parseInspectOutput("garbage"); err == nil {
		t.Error("malformed inspect output parsed without error")
	}
}
