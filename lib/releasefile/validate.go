// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package releasefile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/caravel-tools/caravel/lib/imageref"
)

// instanceNamePattern matches valid container instance names: the
// character set Docker accepts, anchored to the full string.
var instanceNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// Validate checks a Release for structural issues. Returns a list of
// human-readable issue descriptions. An empty list means the manifest
// is valid.
//
// Structural checks include:
//   - Image must be present and parse as registry/repository:tag
//   - Target.Host, Target.User, and Target.Instance are required
//   - Target.Port (when present) must be in 1..65535
//   - Each port publication must be "host:container" with numeric ports
//   - Build.Snapshot must name a known codec (or "off")
func Validate(release *Release) []string {
	var issues []string

	if release.Image == "" {
		issues = append(issues, "image is required")
	} else if _, err := imageref.Parse(release.Image); err != nil {
		issues = append(issues, fmt.Sprintf("image: %v", err))
	}

	switch release.Build.Snapshot {
	case "", "off", "none", "lz4", "zstd":
		// Valid.
	default:
		issues = append(issues, fmt.Sprintf("build.snapshot must be one of: off, none, lz4, zstd (got %q)", release.Build.Snapshot))
	}

	if release.Target.Host == "" {
		issues = append(issues, "target.host is required")
	}
	if release.Target.User == "" {
		issues = append(issues, "target.user is required")
	}
	if release.Target.Port < 0 || release.Target.Port > 65535 {
		issues = append(issues, fmt.Sprintf("target.port must be in 1..65535 (got %d)", release.Target.Port))
	}

	if release.Target.Instance == "" {
		issues = append(issues, "target.instance is required")
	} else if !instanceNamePattern.MatchString(release.Target.Instance) {
		issues = append(issues, fmt.Sprintf("target.instance %q: must start with an alphanumeric and contain only [a-zA-Z0-9_.-]", release.Target.Instance))
	}

	for index, publication := range release.Target.Ports {
		prefix := fmt.Sprintf("target.ports[%d] %q", index, publication)
		issues = append(issues, validatePortPublication(publication, prefix)...)
	}

	return issues
}

// validatePortPublication checks one "host:container" port mapping.
func validatePortPublication(publication, prefix string) []string {
	var issues []string

	hostPort, containerPort, found := strings.Cut(publication, ":")
	if !found {
		return append(issues, fmt.Sprintf("%s: must be \"host:container\"", prefix))
	}

	for _, part := range []struct {
		label string
		value string
	}{
		{"host port", hostPort},
		{"container port", containerPort},
	} {
		number, err := strconv.Atoi(part.value)
		if err != nil {
			issues = append(issues, fmt.Sprintf("%s: %s %q is not a number", prefix, part.label, part.value))
			continue
		}
		if number < 1 || number > 65535 {
			issues = append(issues, fmt.Sprintf("%s: %s %d out of range 1..65535", prefix, part.label, number))
		}
	}

	return issues
}
