// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package imageref

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultTag is the moving tag used when a reference omits one.
// Each publish overwrites the previous content at this tag.
const DefaultTag = "latest"

// Ref identifies a container image in a registry.
type Ref struct {
	// Registry is the registry host, optionally with a port
	// (e.g., "registry.example.com" or "localhost:5000").
	Registry string

	// Repository is the image path within the registry
	// (e.g., "team/dashboard").
	Repository string

	// Tag selects one referent within the repository. Mutable on the
	// registry side: pushing the same tag replaces what it points to.
	Tag string
}

var (
	tagPattern        = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9._-]{0,127}$`)
	repositoryPattern = regexp.MustCompile(`^[a-z0-9]+(?:[._-][a-z0-9]+)*(?:/[a-z0-9]+(?:[._-][a-z0-9]+)*)*$`)
)

// Parse parses "host/repository:tag" into a Ref. The tag is optional
// and defaults to [DefaultTag]. The first path segment is treated as
// the registry host when it contains a dot, a port, or is "localhost"
// — the same disambiguation rule container engines use. References
// without a registry host are rejected: Caravel always publishes to an
// explicit registry, never to an implicit default.
func Parse(reference string) (Ref, error) {
	if strings.TrimSpace(reference) == "" {
		return Ref{}, fmt.Errorf("image reference is empty")
	}
	if strings.Contains(reference, "@") {
		return Ref{}, fmt.Errorf("image reference %q: digest references are not supported, use a tag", reference)
	}

	remainder := reference
	tag := DefaultTag

	// The tag separator is a colon after the last slash. A colon
	// before the last slash belongs to the registry port.
	lastSlash := strings.LastIndex(remainder, "/")
	if colon := strings.LastIndex(remainder, ":"); colon > lastSlash {
		tag = remainder[colon+1:]
		remainder = remainder[:colon]
	}

	slash := strings.Index(remainder, "/")
	if slash < 0 {
		return Ref{}, fmt.Errorf("image reference %q: missing registry host", reference)
	}

	host := remainder[:slash]
	repository := remainder[slash+1:]
	if !looksLikeRegistryHost(host) {
		return Ref{}, fmt.Errorf("image reference %q: first segment %q is not a registry host (expected a dot, a port, or \"localhost\")", reference, host)
	}

	ref := Ref{Registry: host, Repository: repository, Tag: tag}
	if err := ref.Validate(); err != nil {
		return Ref{}, fmt.Errorf("image reference %q: %w", reference, err)
	}
	return ref, nil
}

// looksLikeRegistryHost reports whether the first path segment of a
// reference names a registry rather than a repository component.
func looksLikeRegistryHost(segment string) bool {
	return segment == "localhost" || strings.ContainsAny(segment, ".:")
}

// Validate checks the reference fields against the registry naming
// rules. A zero tag is invalid — Parse fills in the default, and
// callers constructing Ref values directly must do the same.
func (r Ref) Validate() error {
	if r.Registry == "" {
		return fmt.Errorf("registry host is empty")
	}
	if r.Repository == "" {
		return fmt.Errorf("repository name is empty")
	}
	if !repositoryPattern.MatchString(r.Repository) {
		return fmt.Errorf("invalid repository name %q", r.Repository)
	}
	if r.Tag == "" {
		return fmt.Errorf("tag is empty")
	}
	if !tagPattern.MatchString(r.Tag) {
		return fmt.Errorf("invalid tag %q", r.Tag)
	}
	return nil
}

// String renders the canonical "host/repository:tag" form. This is the
// exact string passed to the container engine for build, push, pull,
// and run.
func (r Ref) String() string {
	return r.Registry + "/" + r.Repository + ":" + r.Tag
}

// WithTag returns a copy of the reference pointing at a different tag.
func (r Ref) WithTag(tag string) Ref {
	r.Tag = tag
	return r
}
