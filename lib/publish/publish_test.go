// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package publish

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/caravel-tools/caravel/lib/credential"
	"github.com/caravel-tools/caravel/lib/imageref"
	"github.com/caravel-tools/caravel/lib/secret"
)

// fakeRunner records engine invocations and replays scripted results.
type fakeRunner struct {
	calls   [][]string
	stdins  []string
	results []Result
	errs    []error
}

func (f *fakeRunner) Run(ctx context.Context, stdin io.Reader, args ...string) (Result, error) {
	f.calls = append(f.calls, args)

	input := ""
	if stdin != nil {
		data, _ := io.ReadAll(stdin)
		input = string(data)
	}
	f.stdins = append(f.stdins, input)

	index := len(f.calls) - 1
	var result Result
	if index < len(f.results) {
		result = f.results[index]
	}
	var err error
	if index < len(f.errs) {
		err = f.errs[index]
	}
	return result, err
}

func testRef(t *testing.T) imageref.Ref {
	t.Helper()
	ref, err := imageref.Parse("registry.example.com/team/dashboard:latest")
	if err != nil {
		t.Fatalf("parsing ref: %v", err)
	}
	return ref
}

func testRegistry(t *testing.T) *credential.Registry {
	t.Helper()
	password, err := secret.NewFromBytes([]byte("s3cret"))
	if err != nil {
		t.Fatalf("creating password buffer: %v", err)
	}
	return &credential.Registry{Username: "deploy", Password: password}
}

func TestLoginPasswordOverStdin(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{results: []Result{{}}}
	publisher := &Publisher{Engine: runner}
	registry := testRegistry(t)
	defer registry.Close()

	if err := publisher.Login(context.Background(), testRef(t), registry); err != nil {
		t.Fatalf("Login: %v", err)
	}

	args := runner.calls[0]
	for _, argument := range args {
		if strings.Contains(argument, "s3cret") {
			t.Errorf("password appeared on argv: %v", args)
		}
	}
	if runner.stdins[0] != "s3cret" {
		t.Errorf("stdin = %q, want password", runner.stdins[0])
	}
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "--password-stdin") {
		t.Errorf("login args missing --password-stdin: %v", args)
	}
	if args[1] != "registry.example.com" {
		t.Errorf("login target = %q, want registry host", args[1])
	}
}

func TestLoginFailure(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{results: []Result{{ExitCode: 1, Stderr: "unauthorized: authentication required"}}}
	publisher := &Publisher{Engine: runner}
	registry := testRegistry(t)
	defer registry.Close()

	err := publisher.Login(context.Background(), testRef(t), registry)
	if err == nil {
		t.Fatal("Login with exit 1 succeeded")
	}
	if !strings.Contains(err.Error(), "unauthorized") {
		t.Errorf("login error hides engine stderr: %v", err)
	}
}

func TestBuildArgs(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{results: []Result{{}}}
	publisher := &Publisher{Engine: runner}

	if err := publisher.Build(context.Background(), testRef(t), "/src/app", "Dockerfile"); err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []string{"build", "--file", "Dockerfile", "--tag", "registry.example.com/team/dashboard:latest", "/src/app"}
	got := runner.calls[0]
	if len(got) != len(want) {
		t.Fatalf("build args = %v, want %v", got, want)
	}
	for index := range want {
		if got[index] != want[index] {
			t.Errorf("build args[%d] = %q, want %q", index, got[index], want[index])
		}
	}
}

func TestBuildFailureIsClassified(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{results: []Result{{
		ExitCode: 1,
		Stderr:   "Step 3/7 : RUN pip install -r requirements.txt\nerror: no matching distribution found for streamlit==99.0",
	}}}
	publisher := &Publisher{Engine: runner}

	err := publisher.Build(context.Background(), testRef(t), "/src/app", "Dockerfile")
	var buildError *BuildError
	if !errors.As(err, &buildError) {
		t.Fatalf("Build error = %T, want *BuildError", err)
	}
	if buildError.ExitCode != 1 {
		t.Errorf("exit code = %d, want 1", buildError.ExitCode)
	}
	if !strings.Contains(buildError.Detail, "no matching distribution") {
		t.Errorf("detail lost the engine failure reason: %q", buildError.Detail)
	}
}

func TestPushFailureIsClassified(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{results: []Result{{ExitCode: 1, Stderr: "denied: requested access to the resource is denied"}}}
	publisher := &Publisher{Engine: runner}

	err := publisher.Push(context.Background(), testRef(t))
	var pushError *PushError
	if !errors.As(err, &pushError) {
		t.Fatalf("Push error = %T, want *PushError", err)
	}
	if !strings.Contains(pushError.Detail, "denied") {
		t.Errorf("detail = %q", pushError.Detail)
	}
}

func TestRunnerErrorIsNotClassified(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{errs: []error{errors.New("exec: \"docker\": executable file not found in $PATH")}}
	publisher := &Publisher{Engine: runner}

	err := publisher.Build(context.Background(), testRef(t), "/src/app", "Dockerfile")
	if err == nil {
		t.Fatal("Build with runner error succeeded")
	}
	var buildError *BuildError
	if errors.As(err, &buildError) {
		t.Error("engine-missing error misclassified as *BuildError")
	}
}

func TestStderrTail(t *testing.T) {
	t.Parallel()

	lines := make([]string, 20)
	for index := range lines {
		lines[index] = strings.Repeat("x", 3)
	}
	lines[19] = "final failure line"

	tail := stderrTail(strings.Join(lines, "\n"))
	if !strings.Contains(tail, "final failure line") {
		t.Errorf("tail lost the last line: %q", tail)
	}
	if count := strings.Count(tail, "\n"); count > 4 {
		t.Errorf("tail has %d newlines, want at most 4", count)
	}

	if got := stderrTail("  \n "); got != "(no engine output)" {
		t.Errorf("empty stderr tail = %q", got)
	}
}
