// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration for the Caravel CLI.
type Config struct {
	// Environment identifies the deployment type (development, staging,
	// production).
	Environment Environment `yaml:"environment"`

	// Paths configures directory locations.
	Paths PathsConfig `yaml:"paths"`

	// Engine configures the local container engine.
	Engine EngineConfig `yaml:"engine"`

	// Credentials configures registry credential sourcing.
	Credentials CredentialsConfig `yaml:"credentials"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`

	// Per-environment overrides, applied after the base config is
	// loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Paths       *PathsConfig       `yaml:"paths,omitempty"`
	Engine      *EngineConfig      `yaml:"engine,omitempty"`
	Credentials *CredentialsConfig `yaml:"credentials,omitempty"`
	Log         *LogConfig         `yaml:"log,omitempty"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Root is the base directory for Caravel data.
	Root string `yaml:"root"`

	// Receipts is where deployment session receipts are written
	// (JSONL step logs and CBOR receipts).
	Receipts string `yaml:"receipts"`

	// Snapshots is where build context snapshot archives are written.
	Snapshots string `yaml:"snapshots"`
}

// EngineConfig configures the local container engine used for build,
// login, and push.
type EngineConfig struct {
	// Binary is the engine executable name or path. Default: docker.
	// Any CLI-compatible engine (podman) works.
	Binary string `yaml:"binary"`
}

// CredentialsConfig configures where registry credentials come from.
// Credentials are resolved once per session and never persisted by
// Caravel.
type CredentialsConfig struct {
	// Source selects the credential source: "env", "file", "sealed",
	// or "prompt". Default: env.
	Source string `yaml:"source"`

	// UsernameEnv and PasswordEnv name the environment variables read
	// when Source is "env". Defaults: CARAVEL_REGISTRY_USERNAME,
	// CARAVEL_REGISTRY_PASSWORD.
	UsernameEnv string `yaml:"username_env"`
	PasswordEnv string `yaml:"password_env"`

	// File is the credential file path read when Source is "file"
	// (plain JSON) or "sealed" (age-encrypted, base64).
	File string `yaml:"file"`

	// KeyFile is the age private key file used to unseal File when
	// Source is "sealed".
	KeyFile string `yaml:"key_file"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	// Default: info.
	Level string `yaml:"level"`
}

// Default returns the default configuration. These defaults exist
// primarily to ensure all fields have sensible zero-values — the
// config file is optional for Caravel (unlike most settings, every
// default here is usable as-is).
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "caravel")

	return &Config{
		Environment: Development,
		Paths: PathsConfig{
			Root:      defaultRoot,
			Receipts:  filepath.Join(defaultRoot, "receipts"),
			Snapshots: filepath.Join(defaultRoot, "snapshots"),
		},
		Engine: EngineConfig{
			Binary: "docker",
		},
		Credentials: CredentialsConfig{
			Source:      "env",
			UsernameEnv: "CARAVEL_REGISTRY_USERNAME",
			PasswordEnv: "CARAVEL_REGISTRY_PASSWORD",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the CARAVEL_CONFIG environment
// variable. Returns the defaults when CARAVEL_CONFIG is not set.
func Load() (*Config, error) {
	configPath := os.Getenv("CARAVEL_CONFIG")
	if configPath == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables
// do not override config values — this ensures deterministic, auditable
// configuration. The only expansion performed is ${HOME} and similar
// path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

// applyEnvironmentOverrides applies the section matching Environment.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}

	if overrides == nil {
		return
	}

	if overrides.Paths != nil {
		if overrides.Paths.Root != "" {
			c.Paths.Root = overrides.Paths.Root
		}
		if overrides.Paths.Receipts != "" {
			c.Paths.Receipts = overrides.Paths.Receipts
		}
		if overrides.Paths.Snapshots != "" {
			c.Paths.Snapshots = overrides.Paths.Snapshots
		}
	}

	if overrides.Engine != nil && overrides.Engine.Binary != "" {
		c.Engine.Binary = overrides.Engine.Binary
	}

	if overrides.Credentials != nil {
		if overrides.Credentials.Source != "" {
			c.Credentials.Source = overrides.Credentials.Source
		}
		if overrides.Credentials.UsernameEnv != "" {
			c.Credentials.UsernameEnv = overrides.Credentials.UsernameEnv
		}
		if overrides.Credentials.PasswordEnv != "" {
			c.Credentials.PasswordEnv = overrides.Credentials.PasswordEnv
		}
		if overrides.Credentials.File != "" {
			c.Credentials.File = overrides.Credentials.File
		}
		if overrides.Credentials.KeyFile != "" {
			c.Credentials.KeyFile = overrides.Credentials.KeyFile
		}
	}

	if overrides.Log != nil && overrides.Log.Level != "" {
		c.Log.Level = overrides.Log.Level
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"CARAVEL_ROOT": c.Paths.Root,
		"HOME":         os.Getenv("HOME"),
	}

	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["CARAVEL_ROOT"] = c.Paths.Root // Update for dependent paths.

	c.Paths.Receipts = expandVars(c.Paths.Receipts, vars)
	c.Paths.Snapshots = expandVars(c.Paths.Snapshots, vars)
	c.Credentials.File = expandVars(c.Credentials.File, vars)
	c.Credentials.KeyFile = expandVars(c.Credentials.KeyFile, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}
	if c.Paths.Root == "" {
		errs = append(errs, fmt.Errorf("paths.root is required"))
	}
	if c.Engine.Binary == "" {
		errs = append(errs, fmt.Errorf("engine.binary is required"))
	}

	switch c.Credentials.Source {
	case "env":
		if c.Credentials.UsernameEnv == "" || c.Credentials.PasswordEnv == "" {
			errs = append(errs, fmt.Errorf("credentials.username_env and credentials.password_env are required for the env source"))
		}
	case "file":
		if c.Credentials.File == "" {
			errs = append(errs, fmt.Errorf("credentials.file is required for the file source"))
		}
	case "sealed":
		if c.Credentials.File == "" || c.Credentials.KeyFile == "" {
			errs = append(errs, fmt.Errorf("credentials.file and credentials.key_file are required for the sealed source"))
		}
	case "prompt":
		// No further configuration.
	default:
		errs = append(errs, fmt.Errorf("credentials.source must be one of: env, file, sealed, prompt"))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsurePaths creates the receipts and snapshots directories if they
// don't exist.
func (c *Config) EnsurePaths() error {
	for _, path := range []string{c.Paths.Root, c.Paths.Receipts, c.Paths.Snapshots} {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}
