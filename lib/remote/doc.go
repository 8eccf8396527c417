// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

// Package remote executes commands on deployment targets over SSH.
//
// Authentication is public-key only, from an identity file on disk;
// host keys are verified against a known_hosts file. There is no
// password authentication and no automatic host key acceptance — a
// target must be provisioned (key installed, host key recorded)
// before Caravel can deploy to it.
//
// The central design point is the [Result] type: a remote command that
// runs and exits non-zero is a successful execution with a non-zero
// [Result.ExitCode], not a Go error. Deployment steps routinely probe
// for containers that may not exist, so the caller owns the
// interpretation of exit codes and stderr. The error return of
// [Client.Run] is reserved for transport failures: connection lost,
// session not opened, context cancelled.
//
// Key exports:
//
//   - [Endpoint] -- host, port, user, identity and known_hosts paths
//   - [Dial] -- open an authenticated, host-verified connection
//   - [Client.Run] -- execute one command, capture exit code + output
package remote
