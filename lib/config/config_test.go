// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
	if cfg.Engine.Binary != "docker" {
		t.Errorf("default engine binary = %q, want docker", cfg.Engine.Binary)
	}
	if cfg.Credentials.Source != "env" {
		t.Errorf("default credential source = %q, want env", cfg.Credentials.Source)
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "caravel.yaml")
	content := `
environment: production
paths:
  root: /var/lib/caravel
engine:
  binary: podman
log:
  level: warn
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Environment != Production {
		t.Errorf("environment = %q, want production", cfg.Environment)
	}
	if cfg.Paths.Root != "/var/lib/caravel" {
		t.Errorf("paths.root = %q", cfg.Paths.Root)
	}
	if cfg.Engine.Binary != "podman" {
		t.Errorf("engine.binary = %q, want podman", cfg.Engine.Binary)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %q, want warn", cfg.Log.Level)
	}
	// Unset fields keep their defaults.
	if cfg.Credentials.Source != "env" {
		t.Errorf("credentials.source = %q, want default env", cfg.Credentials.Source)
	}
}

func TestLoadFileMissing(t *testing.T) {
	t.Parallel()

	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadFile on missing path succeeded, want error")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "caravel.yaml")
	content := `
environment: production
paths:
  root: /var/lib/caravel
log:
  level: debug
production:
  log:
    level: error
  engine:
    binary: podman
staging:
  log:
    level: info
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("log.level = %q, want error from production override", cfg.Log.Level)
	}
	if cfg.Engine.Binary != "podman" {
		t.Errorf("engine.binary = %q, want podman from production override", cfg.Engine.Binary)
	}
}

func TestVariableExpansion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caravel.yaml")
	content := `
paths:
  root: /opt/caravel
  receipts: ${CARAVEL_ROOT}/receipts
credentials:
  source: file
  file: ${CARAVEL_CRED_DIR:-/etc/caravel}/registry.json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Paths.Receipts != "/opt/caravel/receipts" {
		t.Errorf("paths.receipts = %q, want /opt/caravel/receipts", cfg.Paths.Receipts)
	}
	if cfg.Credentials.File != "/etc/caravel/registry.json" {
		t.Errorf("credentials.file = %q, want default expansion", cfg.Credentials.File)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Environment = "qa"
	cfg.Log.Level = "verbose"
	cfg.Credentials.Source = "keychain"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate accepted invalid config")
	}
	message := err.Error()
	for _, fragment := range []string{"invalid environment", "log.level", "credentials.source"} {
		if !strings.Contains(message, fragment) {
			t.Errorf("validation error missing %q: %v", fragment, message)
		}
	}
}

func TestValidateSealedSourceNeedsKeyFile(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Credentials.Source = "sealed"
	cfg.Credentials.File = "/etc/caravel/registry.sealed"
	if err := cfg.Validate(); err == nil {
		t.Error("sealed source without key_file validated, want error")
	}

	cfg.Credentials.KeyFile = "/etc/caravel/age.key"
	if err := cfg.Validate(); err != nil {
		t.Errorf("sealed source with key_file: %v", err)
	}
}

func TestEnsurePaths(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	cfg := Default()
	cfg.Paths.Root = filepath.Join(root, "caravel")
	cfg.Paths.Receipts = filepath.Join(root, "caravel", "receipts")
	cfg.Paths.Snapshots = filepath.Join(root, "caravel", "snapshots")

	if err := cfg.EnsurePaths(); err != nil {
		t.Fatalf("EnsurePaths: %v", err)
	}
	for _, path := range []string{cfg.Paths.Receipts, cfg.Paths.Snapshots} {
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("stat %s: %v", path, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", path)
		}
	}
}
