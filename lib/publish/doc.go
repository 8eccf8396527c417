// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

// Package publish builds container images and pushes them to a
// registry using the local container engine's CLI (docker or any
// compatible engine such as podman).
//
// The package drives the engine through the [Runner] interface so that
// command construction and failure classification can be tested
// without a container engine installed. [ExecRunner] is the production
// implementation backed by os/exec.
//
// Failure classification matters here: a failed build or push must
// abort the whole release before anything reaches the registry or the
// target host. [*BuildError] and [*PushError] carry the engine's exit
// code and stderr tail so the operator sees the real compiler or
// registry message, not a generic wrapper.
//
// Registry passwords are passed to the engine over stdin
// (--password-stdin), never on argv where they would be visible in the
// process table.
//
// Key exports:
//
//   - [Publisher] -- Login, Build, Push, Logout against one engine
//   - [Runner] and [ExecRunner] -- the engine abstraction
//   - [BuildError], [PushError] -- classified failures
package publish
