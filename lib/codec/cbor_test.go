// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

type sample struct {
	Name  string         `cbor:"name"`
	Count int            `cbor:"count"`
	Tags  map[string]int `cbor:"tags,omitempty"`
}

func TestMarshalIsDeterministic(t *testing.T) {
	t.Parallel()

	value := sample{
		Name:  "deploy",
		Count: 4,
		Tags:  map[string]int{"b": 2, "a": 1, "c": 3},
	}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for attempt := 0; attempt < 20; attempt++ {
		again, err := Marshal(value)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("non-deterministic encoding on attempt %d", attempt)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	value := sample{Name: "deploy", Count: 4}
	data, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sample
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Name != value.Name || decoded.Count != value.Count {
		t.Errorf("round trip = %+v, want %+v", decoded, value)
	}
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	t.Parallel()

	data, err := Marshal(map[string]any{
		"name":   "deploy",
		"count":  7,
		"future": "field from a newer writer",
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sample
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Name != "deploy" || decoded.Count != 7 {
		t.Errorf("decoded = %+v", decoded)
	}
}
