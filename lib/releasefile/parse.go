// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package releasefile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// Release is a parsed release manifest. One manifest describes one
// deployable application: what image to publish, when to release it,
// and where it runs.
type Release struct {
	// Image is the full image reference the build publishes and the
	// target pulls, e.g. "registry.example.com/team/dashboard:latest".
	// The tag is mutable: every publish overwrites it, every deploy
	// pulls whatever it currently points at.
	Image string `json:"image"`

	// Branch gates automatic releases. When set, the release command
	// is a no-op (successful, exit 0) unless the current branch
	// matches. Empty means release from any branch.
	Branch string `json:"branch,omitempty"`

	// Build describes how the image is built.
	Build BuildSection `json:"build"`

	// Target describes the remote host that runs the image.
	Target TargetSection `json:"target"`
}

// BuildSection describes how an image is built from source.
type BuildSection struct {
	// Context is the build context directory, relative to the
	// manifest's directory (or absolute). Default: the manifest's
	// directory itself.
	Context string `json:"context,omitempty"`

	// ContainerFile is the build instruction file, relative to
	// Context. Default: "Dockerfile".
	ContainerFile string `json:"container_file,omitempty"`

	// Snapshot selects the compression codec for the context snapshot
	// archive written alongside each publish: "none", "lz4", or
	// "zstd" (the default). Set to "off" to disable snapshots.
	Snapshot string `json:"snapshot,omitempty"`
}

// TargetSection describes the remote host a release deploys to.
type TargetSection struct {
	// Host is the SSH host (name or address). Required.
	Host string `json:"host"`

	// User is the SSH user. Required.
	User string `json:"user"`

	// Port is the SSH port. Default: 22.
	Port int `json:"port,omitempty"`

	// Instance is the container name on the target host. Required:
	// the deploy sequence stops, removes, and runs this exact name,
	// so it must be stable across releases.
	Instance string `json:"instance"`

	// Ports are the container port publications, each "host:container"
	// (e.g. "8501:8501").
	Ports []string `json:"ports,omitempty"`

	// EnvFile is the path, on the target host, of an environment file
	// passed to the container at run. Secrets reach the application
	// through this file; Caravel never reads or transfers its
	// contents.
	EnvFile string `json:"env_file,omitempty"`

	// IdentityFile is the local path of the SSH private key used to
	// authenticate. Default: ${HOME}/.ssh/id_ed25519.
	IdentityFile string `json:"identity_file,omitempty"`

	// KnownHosts is the local path of the known_hosts file used to
	// verify the target's host key. Default: ${HOME}/.ssh/known_hosts.
	KnownHosts string `json:"known_hosts,omitempty"`
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a Release.
func Parse(data []byte) (*Release, error) {
	stripped := jsonc.ToJSON(data)

	var release Release
	if err := json.Unmarshal(stripped, &release); err != nil {
		return nil, fmt.Errorf("parsing release manifest: %w", err)
	}

	return &release, nil
}

// ReadFile reads a JSONC release manifest from disk and parses it.
// Relative Build.Context paths are resolved against the manifest's
// directory so the manifest works regardless of the caller's working
// directory.
func ReadFile(path string) (*Release, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	release, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	manifestDir := filepath.Dir(path)
	if release.Build.Context == "" {
		release.Build.Context = manifestDir
	} else if !filepath.IsAbs(release.Build.Context) {
		release.Build.Context = filepath.Join(manifestDir, release.Build.Context)
	}

	return release, nil
}

// NameFromPath extracts a release name from a manifest path by
// stripping the directory prefix and the file extension. A manifest
// named release.jsonc takes its name from the containing directory
// instead, so "apps/dashboard/release.jsonc" returns "dashboard".
func NameFromPath(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "release" {
		if parent := filepath.Base(filepath.Dir(path)); parent != "." && parent != string(filepath.Separator) {
			return parent
		}
	}
	return name
}
