// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

// Package deploycmd implements `caravel deploy`: replace the container
// on a release manifest's target host with the image the manifest's
// tag currently points at.
package deploycmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/caravel-tools/caravel/cmd/caravel/cli"
	"github.com/caravel-tools/caravel/lib/config"
	"github.com/caravel-tools/caravel/lib/deploy"
	"github.com/caravel-tools/caravel/lib/deployui"
	"github.com/caravel-tools/caravel/lib/imageref"
	"github.com/caravel-tools/caravel/lib/releasefile"
	"github.com/caravel-tools/caravel/lib/remote"
)

// Command returns the deploy command.
func Command() *cli.Command {
	var configPath string
	var watch bool

	return &cli.Command{
		Name:    "deploy",
		Summary: "Replace the container on the target host",
		Description: `Deploy the release manifest's image to its target host over SSH.

The sequence is pull, stop, remove, run. Stop and remove tolerate an
absent container (first deploy, pruned host); any other failure
aborts. A failed run after the old container was removed is reported
as a service outage and exits non-zero.

Each deploy writes a JSONL step log and a CBOR receipt under the
configured receipts directory. Receipts are audit artifacts only; the
next deploy never reads them.`,
		Usage: "caravel deploy <manifest> [flags]",
		Examples: []cli.Example{
			{
				Description: "Deploy the dashboard with the interactive step display",
				Command:     "caravel deploy apps/dashboard/release.jsonc --watch",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("deploy", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "config file (default: $CARAVEL_CONFIG)")
			flags.BoolVar(&watch, "watch", false, "interactive step display")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("usage: caravel deploy <manifest>")
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
				"command", "deploy",
				"release", name,
				"instance", release.Target.Instance,
				"host", release.Target.Host,
			)
			return Run(context.Background(), cfg, release, name, logger, watch)
		},
	}
}

// Run executes one deploy of the manifest's image to its target. It is
// exported so the release command can chain it after a publish.
func Run(ctx context.Context, cfg *config.Config, release *releasefile.Release, name string, logger *slog.Logger, watch bool) error {
	ref, err := imageref.Parse(release.Image)
	if err != nil {
		return cli.Validation("image reference: %v", err)
	}

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

	if err := cfg.EnsurePaths(); err != nil {
		return cli.Internal("%v", err)
	}
	startedAt := time.Now().UTC()
	receiptBase := filepath.Join(cfg.Paths.Receipts, fmt.Sprintf("%s-%s", name, startedAt.Format("20060102-150405")))

	steps, err := deploy.OpenStepLog(receiptBase + ".jsonl")
	if err != nil {
		// The step log is observational; deploy anyway.
		logger.Warn("step log unavailable", "error", err)
		steps = nil
	}
	defer steps.Close()

	session := &deploy.Session{
		Runner: client,
		Instance: deploy.Instance{
			Name:    release.Target.Instance,
			Image:   ref,
			Ports:   release.Target.Ports,
			EnvFile: release.Target.EnvFile,
		},
		Logger: logger,
		Steps:  steps,
	}

	var state deploy.State
	var deployErr error
	if watch {
		state, deployErr = runWatched(ctx, session, release.Target.Instance, ref.String())
	} else {
		state, deployErr = session.Run(ctx)
	}

	receipt := &deploy.Receipt{
		Instance:   release.Target.Instance,
		Image:      ref.String(),
		Host:       release.Target.Host,
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
		FinalState: state.String(),
		Steps:      steps.Records(),
	}
	if deployErr != nil {
		receipt.Error = deployErr.Error()
	}
	if err := receipt.WriteFile(receiptBase + ".cbor"); err != nil {
		logger.Warn("receipt not written", "error", err)
	}

	return classify(deployErr)
}

// runWatched executes the session behind the interactive step display.
// The session runs in a goroutine and feeds the bubbletea program
// through the observer callback.
func runWatched(ctx context.Context, session *deploy.Session, instance, image string) (deploy.State, error) {
	program := tea.NewProgram(deployui.New(instance, image), tea.WithOutput(os.Stderr))

	session.Observer = func(event deploy.StepEvent) {
		program.Send(deployui.StepMsg(event))
	}

	type outcome struct {
		state deploy.State
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		state, err := session.Run(ctx)
		done <- outcome{state, err}
		program.Send(deployui.DoneMsg{State: state, Err: err})
	}()

	if _, err := program.Run(); err != nil {
		// Display failure (no TTY, for instance). The deploy itself is
		// still in flight; wait for its real outcome.
		result := <-done
		return result.state, result.err
	}

	result := <-done
	return result.state, result.err
}

// classify maps a deploy failure onto a categorized CLI error. nil
// stays nil: a deploy that ends in StateRunning exits zero.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var outage *deploy.OutageError
	if errors.As(err, &outage) {
		return cli.Outage("%w", err)
	}
	return cli.Transient("%w", err)
}
