// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete caravel CLI command tree.
package commands

import (
	"fmt"

	"github.com/caravel-tools/caravel/cmd/caravel/cli"
	"github.com/caravel-tools/caravel/cmd/caravel/deploycmd"
	"github.com/caravel-tools/caravel/cmd/caravel/publishcmd"
	"github.com/caravel-tools/caravel/cmd/caravel/releasecmd"
	"github.com/caravel-tools/caravel/cmd/caravel/secretcmd"
	"github.com/caravel-tools/caravel/cmd/caravel/statuscmd"
	"github.com/caravel-tools/caravel/lib/version"
)

// Root builds and returns the complete caravel CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "caravel",
		Description: `Caravel: minimal continuous delivery for container images.

Build an image, push it to a registry under a mutable tag, and replace
the container running on a remote host over SSH. One manifest per
application, no agent on the target, no state between runs.`,
		Subcommands: []*cli.Command{
			publishcmd.Command(),
			deploycmd.Command(),
			releasecmd.Command(),
			statuscmd.Command(),
			secretcmd.Command(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("caravel %s\n", version.Full())
					return nil
				},
			},
		},
	}
}
