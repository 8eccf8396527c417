// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

// Package deploy drives the release sequence on a deployment target:
// pull the image, stop the old container, remove it, run the new one.
//
// The sequence is an explicit state machine ([State]) rather than a
// script of shell commands, because the steps are not symmetric:
//
//   - pull failing is safe: the previous container is untouched, the
//     sequence aborts before anything destructive.
//   - stop and remove tolerate absence: on a fresh host, or after a
//     crashed container was pruned, there is nothing to stop or
//     remove, and that is the expected path, not a failure.
//   - run failing is an outage: by that point the previous container
//     has been removed, so a failed run means the service is DOWN.
//     That failure is classified as [*OutageError] and must never be
//     swallowed.
//
// The sequence is stateless across invocations: every deploy starts
// from [StateIdle] and derives everything from the target's live
// container state. Receipts ([StepLog], [Receipt]) are write-only
// audit artifacts, never read back to influence a later run.
//
// Commands run on the target through the [Runner] interface, satisfied
// by [remote.Client] in production and by fakes in tests.
//
// Key exports:
//
//   - [Session] -- one deploy: Run executes the full sequence
//   - [State] -- Idle, Pulled, Stopped, Removed, Running, Failed
//   - [Instance] -- the named container and its run settings
//   - [OutageError] -- run failed after the old container was removed
//   - [Status] -- typed live-state query for one instance
//   - [StepLog], [Receipt] -- crash-safe JSONL log + CBOR receipt
package deploy
