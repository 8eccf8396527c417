// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

// Package publishcmd implements `caravel publish`: build the image
// described by a release manifest and push it to the registry under
// its mutable tag.
package publishcmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/caravel-tools/caravel/cmd/caravel/cli"
	"github.com/caravel-tools/caravel/lib/buildcontext"
	"github.com/caravel-tools/caravel/lib/config"
	"github.com/caravel-tools/caravel/lib/credential"
	"github.com/caravel-tools/caravel/lib/imageref"
	"github.com/caravel-tools/caravel/lib/publish"
	"github.com/caravel-tools/caravel/lib/releasefile"
)

// Command returns the publish command.
func Command() *cli.Command {
	var configPath string

	return &cli.Command{
		Name:    "publish",
		Summary: "Build an image and push it to the registry",
		Description: `Build the container image described by a release manifest and push
it to the registry under its mutable tag.

The sequence is: check the build context, build, resolve registry
credentials, login, push, logout. A failed build or login aborts
before anything reaches the registry, so the tag keeps pointing at the
previous image. A context snapshot archive and digest are recorded so
every published tag can be traced back to the exact source tree that
produced it.`,
		Usage: "caravel publish <manifest> [flags]",
		Examples: []cli.Example{
			{
				Description: "Publish the dashboard image",
				Command:     "caravel publish apps/dashboard/release.jsonc",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("publish", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "config file (default: $CARAVEL_CONFIG)")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("usage: caravel publish <manifest>")
			}

			cfg, err := cli.LoadConfig(configPath)
			if err != nil {
				return err
			}
			release, err := cli.LoadRelease(args[0])
			if err != nil {
				return err
			}

			logger := cli.NewCommandLogger(cfg.Log.Level).With(
				"command", "publish",
				"release", releasefile.NameFromPath(args[0]),
			)
			return Run(context.Background(), cfg, release, releasefile.NameFromPath(args[0]), logger)
		},
	}
}

// Run builds and publishes the manifest's image. It is exported so the
// release command can run the same sequence before deploying.
func Run(ctx context.Context, cfg *config.Config, release *releasefile.Release, name string, logger *slog.Logger) error {
	ref, err := imageref.Parse(release.Image)
	if err != nil {
		return cli.Validation("image reference: %v", err)
	}

	containerFile := release.Build.ContainerFile
	if containerFile == "" {
		containerFile = "Dockerfile"
	}
	if err := buildcontext.Check(release.Build.Context, containerFile); err != nil {
		return cli.Validation("build context: %v", err)
	}

	publisher := &publish.Publisher{
		Engine: &publish.ExecRunner{Binary: cfg.Engine.Binary},
		Logger: logger,
	}

	// Build before touching the registry: a broken build must leave
	// the published tag untouched.
	if err := publisher.Build(ctx, ref, release.Build.Context, containerFile); err != nil {
		return err
	}

	registry, err := credential.Resolve(cfg.Credentials)
	if err != nil {
		return cli.NotFound("resolving registry credentials: %v", err)
	}
	defer registry.Close()

	if err := publisher.Login(ctx, ref, registry); err != nil {
		return cli.Transient("%v", err)
	}
	defer func() {
		if err := publisher.Logout(ctx, ref); err != nil {
			logger.Warn("registry logout failed", "error", err)
		}
	}()

	if err := publisher.Push(ctx, ref); err != nil {
		return err
	}

	if err := writeSnapshot(cfg, release, name, logger); err != nil {
		// The image is already published; a failed snapshot is worth a
		// warning, not a failed release.
		logger.Warn("context snapshot failed", "error", err)
	}

	logger.Info("published", "image", ref.String())
	return nil
}

// writeSnapshot records the build context digest and archive under the
// configured snapshots directory, named <release>-<digest prefix>.
func writeSnapshot(cfg *config.Config, release *releasefile.Release, name string, logger *slog.Logger) error {
	if release.Build.Snapshot == "off" {
		return nil
	}
	codec, err := buildcontext.ParseCodec(release.Build.Snapshot)
	if err != nil {
		return err
	}

	if err := cfg.EnsurePaths(); err != nil {
		return err
	}

	digest, err := buildcontext.Digest(release.Build.Context)
	if err != nil {
		return fmt.Errorf("digesting build context: %w", err)
	}

	path := filepath.Join(cfg.Paths.Snapshots, fmt.Sprintf("%s-%s%s", name, digest.String()[:12], codec.Extension()))
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	defer file.Close()

	if err := buildcontext.Pack(release.Build.Context, file, codec); err != nil {
		return fmt.Errorf("packing snapshot: %w", err)
	}

	logger.Info("context snapshot written", "path", path, "digest", digest.String())
	return nil
}
