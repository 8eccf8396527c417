// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

// Package releasecmd implements `caravel release`: the full pipeline,
// publish then deploy, gated on the manifest's branch.
package releasecmd

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/spf13/pflag"

	"github.com/caravel-tools/caravel/cmd/caravel/cli"
	"github.com/caravel-tools/caravel/cmd/caravel/deploycmd"
	"github.com/caravel-tools/caravel/cmd/caravel/publishcmd"
	"github.com/caravel-tools/caravel/lib/releasefile"
)

// Command returns the release command.
func Command() *cli.Command {
	var configPath string
	var watch bool
	var skipGate bool

	return &cli.Command{
		Name:    "release",
		Summary: "Publish the image, then deploy it to the target",
		Description: `Run the full release pipeline for a manifest: build and push the
image, then deploy it to the target host.

When the manifest sets a branch, the release is gated: on any other
branch the command logs that it is skipping and exits zero. A skipped
release is a success — it is the mechanism that lets every branch run
the same CI pipeline while only the release branch ships.

A failed build or push aborts before the target host is touched.`,
		Usage: "caravel release <manifest> [flags]",
		Examples: []cli.Example{
			{
				Description: "Release the dashboard (no-op unless on the manifest's branch)",
				Command:     "caravel release apps/dashboard/release.jsonc",
			},
			{
				Description: "Release regardless of the current branch",
				Command:     "caravel release apps/dashboard/release.jsonc --force",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("release", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "config file (default: $CARAVEL_CONFIG)")
			flags.BoolVar(&watch, "watch", false, "interactive step display during deploy")
			flags.BoolVar(&skipGate, "force", false, "release even when the current branch does not match")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("usage: caravel release <manifest>")
			}

			cfg, err := cli.LoadConfig(configPath)
			if err != nil {
				return err
			}
			release, err := cli.LoadRelease(args[0])
			if err != nil {
				return err
			}

			name := releasefile.NameFromPath(args[0])
			logger := cli.NewCommandLogger(cfg.Log.Level).With(
				"command", "release",
				"release", name,
			)

			if release.Branch != "" && !skipGate {
				branch, err := currentBranch(release.Build.Context)
				if err != nil {
					return cli.Internal("determining current branch: %v", err)
				}
				if branch != release.Branch {
					// Off-branch is the expected CI path, not a failure.
					logger.Info("skipping release: branch gate",
						"current", branch, "required", release.Branch)
					return nil
				}
			}

			ctx := context.Background()
			if err := publishcmd.Run(ctx, cfg, release, name, logger); err != nil {
				return err
			}
			return deploycmd.Run(ctx, cfg, release, name, logger, watch)
		},
	}
}

// currentBranch returns the checked-out git branch for the tree
// containing dir.
func currentBranch(dir string) (string, error) {
	command := exec.Command("git", "-C", dir, "rev-parse", "--abbrev-ref", "HEAD")
	var stdout bytes.Buffer
	command.Stdout = &stdout
	if err := command.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout.String()), nil
}
