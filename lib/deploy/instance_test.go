// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"strings"
	"testing"
)

func TestRunCommand(t *testing.T) {
	t.Parallel()

	instance := testInstance(t)
	command := instance.RunCommand()

	for _, fragment := range []string{
		"docker run",
		"--detach",
		"--name dashboard",
		"--restart unless-stopped",
		"--publish 8501:8501",
		"--env-file /opt/dashboard/.env",
		"registry.example.com/team/dashboard:latest",
	} {
		if !strings.Contains(command, fragment) {
			t.Errorf("run command missing %q: %s", fragment, command)
		}
	}
	if !strings.HasSuffix(command, "registry.example.com/team/dashboard:latest") {
		t.Errorf("image is not the final argument: %s", command)
	}
}

func TestRunCommandWithoutOptionalSettings(t *testing.T) {
	t.Parallel()

	instance := testInstance(t)
	instance.Ports = nil
	instance.EnvFile = ""
	command := instance.RunCommand()

	if strings.Contains(command, "--publish") {
		t.Errorf("run command has --publish without ports: %s", command)
	}
	if strings.Contains(command, "--env-file") {
		t.Errorf("run command has --env-file without a file: %s", command)
	}
}

func TestCustomEngine(t *testing.T) {
	t.Parallel()

	instance := testInstance(t)
	instance.Engine = "podman"

	for _, command := range []string{
		instance.PullCommand(),
		instance.StopCommand(),
		instance.RemoveCommand(),
		instance.RunCommand(),
		instance.InspectCommand(),
	} {
		if !strings.HasPrefix(command, "podman ") {
			t.Errorf("command does not use configured engine: %s", command)
		}
	}
}

func TestShellQuote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"dashboard", "dashboard"},
		{"registry.example.com/team/dashboard:latest", "registry.example.com/team/dashboard:latest"},
		{"/opt/dashboard/.env", "/opt/dashboard/.env"},
		{"has space", "'has space'"},
		{"semi;colon", "'semi;colon'"},
		{"quo'te", `'quo'\''te'`},
		{"", "''"},
	}
	for _, test := range tests {
		if got := shellQuote(test.input); got != test.want {
			t.Errorf("shellQuote(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestShellQuoteBlocksInjection(t *testing.T) {
	t.Parallel()

	instance := testInstance(t)
	instance.EnvFile = "/tmp/x; rm -rf /"
	command := instance.RunCommand()
	if !strings.Contains(command, "'/tmp/x; rm -rf /'") {
		t.Errorf("hostile env_file not quoted: %s", command)
	}
}
