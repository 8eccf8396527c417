// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

// Package deployui renders the interactive display behind
// `caravel deploy --watch`: one line per deploy step with a live
// spinner on the step in flight, checkmarks as steps land, and the
// terminal state (running or SERVICE DOWN) when the sequence ends.
//
// The model is a plain bubbletea consumer of [StepMsg] and [DoneMsg];
// the deploy session pushes events into the program from its observer
// callback via [tea.Program.Send], so the session code has no
// dependency on the UI.
package deployui
