// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package publish

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caravel-tools/caravel/lib/credential"
	"github.com/caravel-tools/caravel/lib/imageref"
)

// Publisher builds and pushes images through one container engine.
type Publisher struct {
	// Engine executes engine commands. In production this is an
	// [ExecRunner] for the configured binary.
	Engine Runner

	// Logger receives progress events. Nil disables logging.
	Logger *slog.Logger
}

// BuildError reports a failed image build. The build failing means
// nothing was pushed: the registry still serves the previous image and
// the running deployment is untouched.
type BuildError struct {
	// Ref is the image that failed to build.
	Ref imageref.Ref

	// ExitCode is the engine's exit code.
	ExitCode int

	// Detail is the tail of the engine's stderr.
	Detail string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("building %s failed (exit %d): %s", e.Ref, e.ExitCode, e.Detail)
}

// PushError reports a failed registry push. A failed push aborts the
// release: the mutable tag still points at the previous image, so a
// subsequent deploy would redeploy the old version, not a broken one.
type PushError struct {
	// Ref is the image that failed to push.
	Ref imageref.Ref

	// ExitCode is the engine's exit code.
	ExitCode int

	// Detail is the tail of the engine's stderr.
	Detail string
}

func (e *PushError) Error() string {
	return fmt.Sprintf("pushing %s failed (exit %d): %s", e.Ref, e.ExitCode, e.Detail)
}

// Login authenticates the engine against the image's registry. The
// password is fed over stdin, never argv.
func (p *Publisher) Login(ctx context.Context, ref imageref.Ref, registry *credential.Registry) error {
	p.log(ctx, "registry login", "registry", ref.Registry, "username", registry.Username)

	result, err := p.Engine.Run(ctx,
		bytes.NewReader(registry.Password.Bytes()),
		"login", ref.Registry, "--username", registry.Username, "--password-stdin",
	)
	if err != nil {
		return fmt.Errorf("running engine login: %w", err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("registry login to %s failed (exit %d): %s", ref.Registry, result.ExitCode, stderrTail(result.Stderr))
	}
	return nil
}

// Logout drops the engine's session with the image's registry. Errors
// are returned but a failed logout does not fail a release; callers
// typically log and continue.
func (p *Publisher) Logout(ctx context.Context, ref imageref.Ref) error {
	result, err := p.Engine.Run(ctx, nil, "logout", ref.Registry)
	if err != nil {
		return fmt.Errorf("running engine logout: %w", err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("registry logout from %s failed (exit %d)", ref.Registry, result.ExitCode)
	}
	return nil
}

// Build builds the image from the given context directory and
// container file, tagging it with ref. Returns a [*BuildError] when
// the engine reports a build failure.
func (p *Publisher) Build(ctx context.Context, ref imageref.Ref, contextDir, containerFile string) error {
	p.log(ctx, "building image", "image", ref.String(), "context", contextDir)

	result, err := p.Engine.Run(ctx, nil,
		"build", "--file", containerFile, "--tag", ref.String(), contextDir,
	)
	if err != nil {
		return fmt.Errorf("running engine build: %w", err)
	}
	if result.ExitCode != 0 {
		return &BuildError{Ref: ref, ExitCode: result.ExitCode, Detail: stderrTail(result.Stderr)}
	}

	p.log(ctx, "image built", "image", ref.String())
	return nil
}

// Push pushes the tagged image to its registry, overwriting whatever
// the mutable tag pointed at before. Returns a [*PushError] when the
// engine reports a push failure.
func (p *Publisher) Push(ctx context.Context, ref imageref.Ref) error {
	p.log(ctx, "pushing image", "image", ref.String())

	result, err := p.Engine.Run(ctx, nil, "push", ref.String())
	if err != nil {
		return fmt.Errorf("running engine push: %w", err)
	}
	if result.ExitCode != 0 {
		return &PushError{Ref: ref, ExitCode: result.ExitCode, Detail: stderrTail(result.Stderr)}
	}

	p.log(ctx, "image pushed", "image", ref.String())
	return nil
}

func (p *Publisher) log(ctx context.Context, message string, args ...any) {
	if p.Logger != nil {
		p.Logger.InfoContext(ctx, message, args...)
	}
}

// stderrTail returns the last few lines of engine stderr, trimmed.
// Build output can run to thousands of lines; the failure reason is at
// the end.
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
