// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"strings"

	"github.com/caravel-tools/caravel/lib/imageref"
)

// Instance is the named container a release manages on the target
// host. The name is the stable handle across releases: stop, remove,
// run, and status all address the container by this exact name.
type Instance struct {
	// Name is the container name on the target host.
	Name string

	// Image is the image the instance runs.
	Image imageref.Ref

	// Ports are the "host:container" port publications.
	Ports []string

	// EnvFile is the path, on the target host, of the environment
	// file passed to the container at run. Empty disables it.
	EnvFile string

	// Engine is the container engine binary on the target host.
	// Empty means "docker".
	Engine string
}

func (i Instance) engine() string {
	if i.Engine == "" {
		return "docker"
	}
	return i.Engine
}

// PullCommand returns the remote command that pulls the instance's
// image.
func (i Instance) PullCommand() string {
	return joinCommand(i.engine(), "pull", i.Image.String())
}

// StopCommand returns the remote command that stops the instance's
// container.
func (i Instance) StopCommand() string {
	return joinCommand(i.engine(), "stop", i.Name)
}

// RemoveCommand returns the remote command that removes the instance's
// stopped container.
func (i Instance) RemoveCommand() string {
	return joinCommand(i.engine(), "rm", i.Name)
}

// RunCommand returns the remote command that starts a new detached
// container under the instance name. The restart policy keeps the
// container up across target reboots without any agent on the host.
func (i Instance) RunCommand() string {
	arguments := []string{
		i.engine(), "run",
		"--detach",
		"--name", i.Name,
		"--restart", "unless-stopped",
	}
	for _, publication := range i.Ports {
		arguments = append(arguments, "--publish", publication)
	}
	if i.EnvFile != "" {
		arguments = append(arguments, "--env-file", i.EnvFile)
	}
	arguments = append(arguments, i.Image.String())
	return joinCommand(arguments...)
}

// InspectCommand returns the remote command that reports the
// instance's live state as tab-separated fields: container ID, status,
// image, start time.
func (i Instance) InspectCommand() string {
	return joinCommand(
		i.engine(), "inspect",
		"--type", "container",
		"--format", inspectFormat,
		i.Name,
	)
}

// inspectFormat extracts the fields [parseInspectOutput] consumes.
const inspectFormat = `{{.Id}}{{"\t"}}{{.State.Status}}{{"\t"}}{{.Config.Image}}{{"\t"}}{{.State.StartedAt}}`

// joinCommand assembles a remote shell command, single-quoting every
// argument that needs it. Instance names and image references are
// validated upstream, but quoting is unconditional so a manifest field
// can never splice into the remote shell.
func joinCommand(arguments ...string) string {
	quoted := make([]string, len(arguments))
	for index, argument := range arguments {
		quoted[index] = shellQuote(argument)
	}
	return strings.Join(quoted, " ")
}

// plainArgument matches arguments that need no quoting.
func isPlainArgument(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.' || r == '/' || r == ':' || r == '=' || r == ',':
		default:
			return false
		}
	}
	return true
}

// shellQuote single-quotes s for POSIX sh, escaping embedded single
// quotes with the '\'' idiom.
func shellQuote(s string) string {
	if isPlainArgument(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
