// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

// Package imageref provides the artifact reference type: the registry
// coordinates of a container image. A reference has three parts —
// registry host, repository name, and tag — rendered as
// "host/repository:tag".
//
// The tag is a moving pointer. Publishing overwrites the previous
// referent; no version history is modeled anywhere in Caravel. A
// reference carries no digest: the deploy sequence always pulls
// whatever the tag currently resolves to.
//
// Key exports:
//
//   - [Ref] -- the parsed reference
//   - [Parse] -- "host/repository:tag" → Ref, tag defaults to "latest"
//   - [Ref.String] -- canonical rendering used in engine commands
//
// This package depends on no other Caravel packages.
package imageref
