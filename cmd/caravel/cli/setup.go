// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/caravel-tools/caravel/lib/config"
	"github.com/caravel-tools/caravel/lib/releasefile"
)

// LoadConfig loads tool configuration from the --config flag value, or
// from CARAVEL_CONFIG (falling back to defaults) when the flag is
// empty.
func LoadConfig(configPath string) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NotFound("config file not found: %v", err)
		}
		return nil, Validation("loading config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, Validation("invalid config: %v", err)
	}
	return cfg, nil
}

// LoadRelease reads and validates the release manifest at path. All
// validation issues are reported at once, so a manifest author fixes
// one round of errors, not one error per round.
func LoadRelease(path string) (*releasefile.Release, error) {
	release, err := releasefile.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NotFound("release manifest not found: %v", err)
		}
		return nil, Validation("%v", err)
	}

	if issues := releasefile.Validate(release); len(issues) > 0 {
		return nil, Validation("invalid release manifest %s:\n  %s", path, strings.Join(issues, "\n  "))
	}
	return release, nil
}
