// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

// Package statuscmd implements `caravel status`: query the live state
// of a manifest's instance on its target host.
package statuscmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/caravel-tools/caravel/cmd/caravel/cli"
	"github.com/caravel-tools/caravel/lib/deploy"
	"github.com/caravel-tools/caravel/lib/imageref"
	"github.com/caravel-tools/caravel/lib/remote"
)

// Command returns the status command.
func Command() *cli.Command {
	var configPath string
	var asJSON bool

	return &cli.Command{
		Name:    "status",
		Summary: "Query the live state of the instance on its target",
		Description: `Query the target host for the current state of the manifest's
instance: whether the container exists, whether it is running, which
image it was created from, and when it started.

The answer comes entirely from the target's container engine at query
time. Caravel stores no deployment state, so this is the source of
truth. Exits 1 when the instance exists but is not running, 2 when it
does not exist.`,
		Usage: "caravel status <manifest> [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("status", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "config file (default: $CARAVEL_CONFIG)")
			flags.BoolVar(&asJSON, "json", false, "machine-readable output")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("usage: caravel status <manifest>")
			}

			_, err := cli.LoadConfig(configPath)
			if err != nil {
				return err
			}
			release, err := cli.LoadRelease(args[0])
			if err != nil {
				return err
			}
			ref, err := imageref.Parse(release.Image)
			if err != nil {
				return cli.Validation("image reference: %v", err)
			}

			ctx := context.Background()
			client, err := remote.Dial(ctx, remote.Endpoint{
				Host:         release.Target.Host,
				Port:         release.Target.Port,
				User:         release.Target.User,
				IdentityFile: release.Target.IdentityFile,
				KnownHosts:   release.Target.KnownHosts,
			})
			if err != nil {
				return cli.Transient("%v", err)
			}
			defer client.Close()

			status, err := deploy.Status(ctx, client, deploy.Instance{
				Name:  release.Target.Instance,
				Image: ref,
			})
			if err != nil {
				return cli.Transient("%v", err)
			}

			if asJSON {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(status); err != nil {
					return cli.Internal("encoding status: %v", err)
				}
			} else {
				printStatus(status)
			}

			switch {
			case !status.Exists:
				return &cli.ExitError{Code: 2}
			case !status.Running:
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

func printStatus(status deploy.InstanceStatus) {
	tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "instance:\t%s\n", status.Name)
	if !status.Exists {
		fmt.Fprintf(tw, "state:\tabsent\n")
		tw.Flush()
		return
	}
	fmt.Fprintf(tw, "state:\t%s\n", status.EngineStatus)
	fmt.Fprintf(tw, "image:\t%s\n", status.Image)
	fmt.Fprintf(tw, "container:\t%s\n", status.ContainerID)
	if !status.StartedAt.IsZero() {
		fmt.Fprintf(tw, "started:\t%s\n", status.StartedAt.Format("2006-01-02 15:04:05 MST"))
	}
	tw.Flush()
}
