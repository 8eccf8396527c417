// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command framework for the caravel binary:
// a lightweight command tree with pflag flag sets, structured help
// output, typo suggestions, categorized errors, and exit-code
// plumbing. Commands are assembled into a tree in
// cmd/caravel/commands and dispatched by [Command.Execute].
package cli
