// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/caravel-tools/caravel/lib/codec"
)

// StepRecord is one line of the JSONL step log and one entry of the
// CBOR receipt.
type StepRecord struct {
	// Step is the command name: pull, stop, remove, or run.
	Step string `json:"step" cbor:"step"`

	// State is the session state after the step.
	State string `json:"state" cbor:"state"`

	// ExitCode is the remote engine's exit code for the step.
	ExitCode int `json:"exit_code" cbor:"exit_code"`

	// Absent reports that the step tolerated an absent container.
	Absent bool `json:"absent,omitempty" cbor:"absent,omitempty"`

	// DurationMS is the step's wall-clock time in milliseconds.
	DurationMS int64 `json:"duration_ms" cbor:"duration_ms"`

	// Error is the step's failure message, empty on success.
	Error string `json:"error,omitempty" cbor:"error,omitempty"`
}

// StepLog writes step records to a JSONL file, one object per line,
// flushed per record. A deploy killed mid-sequence leaves every
// completed step on disk, which is what an operator reads first when a
// target is in a surprising state.
//
// All methods are safe on a nil receiver, so callers can thread an
// optional log without guarding every call site.
type StepLog struct {
	file    *os.File
	encoder *json.Encoder
	records []StepRecord
}

// OpenStepLog creates (or truncates) the JSONL step log at path.
func OpenStepLog(path string) (*StepLog, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening step log: %w", err)
	}
	return &StepLog{file: file, encoder: json.NewEncoder(file)}, nil
}

// Record appends one step record and flushes it to disk.
func (l *StepLog) Record(record StepRecord) {
	if l == nil {
		return
	}
	l.records = append(l.records, record)
	if l.encoder != nil {
		// Encode errors are swallowed: the step log is observational
		// and must never fail a deploy.
		_ = l.encoder.Encode(record)
		_ = l.file.Sync()
	}
}

// Records returns the records accumulated so far.
func (l *StepLog) Records() []StepRecord {
	if l == nil {
		return nil
	}
	return l.records
}

// Close closes the underlying file.
func (l *StepLog) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Receipt is the deterministic record of one deploy session, encoded
// as canonical CBOR. Receipts are write-only: Caravel never reads them
// back, they exist for operators and external audit tooling.
type Receipt struct {
	// Instance is the container name that was deployed.
	Instance string `cbor:"instance"`

	// Image is the image reference that was deployed.
	Image string `cbor:"image"`

	// Host is the target host.
	Host string `cbor:"host"`

	// StartedAt and FinishedAt bound the session, in UTC.
	StartedAt  time.Time `cbor:"started_at"`
	FinishedAt time.Time `cbor:"finished_at"`

	// FinalState is the terminal session state: running or failed.
	FinalState string `cbor:"final_state"`

	// Steps are the executed steps in order.
	Steps []StepRecord `cbor:"steps"`

	// Error is the failure that terminated the session, empty on
	// success.
	Error string `cbor:"error,omitempty"`
}

// WriteFile encodes the receipt as canonical CBOR at path. Two
// sessions with identical outcomes produce byte-identical receipts.
func (r *Receipt) WriteFile(path string) error {
	encoded, err := codec.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding receipt: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("writing receipt: %w", err)
	}
	return nil
}
