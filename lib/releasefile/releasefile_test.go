// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package releasefile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validManifest = `{
	// The dashboard image. Published on every release from main.
	"image": "registry.example.com/team/dashboard:latest",
	"branch": "main",
	"build": {
		"container_file": "Dockerfile",
		"snapshot": "zstd",
	},
	"target": {
		"host": "dashboard.internal",
		"user": "deploy",
		"instance": "dashboard",
		"ports": ["8501:8501"],
		"env_file": "/opt/dashboard/.env",
	},
}`

func TestParse(t *testing.T) {
	t.Parallel()

	release, err := Parse([]byte(validManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if release.Image != "registry.example.com/team/dashboard:latest" {
		t.Errorf("image = %q", release.Image)
	}
	if release.Branch != "main" {
		t.Errorf("branch = %q, want main", release.Branch)
	}
	if release.Target.Instance != "dashboard" {
		t.Errorf("target.instance = %q", release.Target.Instance)
	}
	if len(release.Target.Ports) != 1 || release.Target.Ports[0] != "8501:8501" {
		t.Errorf("target.ports = %v", release.Target.Ports)
	}
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte(`{"image": }`)); err == nil {
		t.Error("Parse on malformed input succeeded, want error")
	}
}

func TestReadFileResolvesContext(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "release.jsonc")
	if err := os.WriteFile(path, []byte(validManifest), 0o644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}

	release, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	// Context defaults to the manifest's directory.
	if release.Build.Context != dir {
		t.Errorf("build.context = %q, want %q", release.Build.Context, dir)
	}
}

func TestReadFileRelativeContext(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "release.jsonc")
	manifest := strings.Replace(validManifest, `"container_file": "Dockerfile",`,
		`"container_file": "Dockerfile", "context": "src",`, 1)
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}

	release, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if want := filepath.Join(dir, "src"); release.Build.Context != want {
		t.Errorf("build.context = %q, want %q", release.Build.Context, want)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	release, err := Parse([]byte(validManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if issues := Validate(release); len(issues) != 0 {
		t.Errorf("valid manifest produced issues: %v", issues)
	}
}

func TestValidateIssues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Release)
		wantIn  string
	}{
		{
			name:   "missing image",
			mutate: func(r *Release) { r.Image = "" },
			wantIn: "image is required",
		},
		{
			name:   "unparseable image",
			mutate: func(r *Release) { r.Image = "no-registry:latest" },
			wantIn: "image:",
		},
		{
			name:   "missing host",
			mutate: func(r *Release) { r.Target.Host = "" },
			wantIn: "target.host is required",
		},
		{
			name:   "missing user",
			mutate: func(r *Release) { r.Target.User = "" },
			wantIn: "target.user is required",
		},
		{
			name:   "missing instance",
			mutate: func(r *Release) { r.Target.Instance = "" },
			wantIn: "target.instance is required",
		},
		{
			name:   "bad instance name",
			mutate: func(r *Release) { r.Target.Instance = "-dash" },
			wantIn: "target.instance",
		},
		{
			name:   "port out of range",
			mutate: func(r *Release) { r.Target.Port = 70000 },
			wantIn: "target.port",
		},
		{
			name:   "malformed port publication",
			mutate: func(r *Release) { r.Target.Ports = []string{"8501"} },
			wantIn: "host:container",
		},
		{
			name:   "non-numeric port publication",
			mutate: func(r *Release) { r.Target.Ports = []string{"web:8501"} },
			wantIn: "is not a number",
		},
		{
			name:   "unknown snapshot codec",
			mutate: func(r *Release) { r.Build.Snapshot = "gzip" },
			wantIn: "build.snapshot",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			release, err := Parse([]byte(validManifest))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			test.mutate(release)

			issues := Validate(release)
			if len(issues) == 0 {
				t.Fatal("Validate returned no issues")
			}
			found := false
			for _, issue := range issues {
				if strings.Contains(issue, test.wantIn) {
					found = true
				}
			}
			if !found {
				t.Errorf("issues %v missing %q", issues, test.wantIn)
			}
		})
	}
}

func TestNameFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"apps/dashboard/release.jsonc", "dashboard"},
		{"dashboard.jsonc", "dashboard"},
		{"/srv/releases/analytics.jsonc", "analytics"},
		{"release.jsonc", "release"},
	}
	for _, test := range tests {
		if got := NameFromPath(test.path); got != test.want {
			t.Errorf("NameFromPath(%q) = %q, want %q", test.path, got, test.want)
		}
	}
}
