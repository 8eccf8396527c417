// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestEndpointAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		endpoint Endpoint
		want     string
	}{
		{Endpoint{Host: "dashboard.internal"}, "dashboard.internal:22"},
		{Endpoint{Host: "dashboard.internal", Port: 2222}, "dashboard.internal:2222"},
		{Endpoint{Host: "10.0.0.5", Port: 22}, "10.0.0.5:22"},
		{Endpoint{Host: "fd00::5", Port: 22}, "[fd00::5]:22"},
	}
	for _, test := range tests {
		if got := test.endpoint.Address(); got != test.want {
			t.Errorf("Address(%+v) = %q, want %q", test.endpoint, got, test.want)
		}
	}
}

func TestDefaultedPath(t *testing.T) {
	t.Parallel()

	explicit, err := defaultedPath("/etc/caravel/deploy_key", "id_ed25519")
	if err != nil {
		t.Fatalf("defaultedPath: %v", err)
	}
	if explicit != "/etc/caravel/deploy_key" {
		t.Errorf("explicit path rewritten to %q", explicit)
	}

	defaulted, err := defaultedPath("", "known_hosts")
	if err != nil {
		t.Fatalf("defaultedPath: %v", err)
	}
	if !strings.HasSuffix(defaulted, filepath.Join(".ssh", "known_hosts")) {
		t.Errorf("default path = %q, want ~/.ssh/known_hosts", defaulted)
	}
}
