// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

// Package releasefile provides parsing and validation for Caravel
// release manifests. A release manifest describes one deployable
// application end to end: the image it publishes, the branch it
// releases from, how the image is built, and the remote target that
// runs it.
//
// Manifests are authored on disk as JSONC files (JSON extended with
// comments and trailing commas), conventionally named release.jsonc
// next to the application source.
//
// The typical flow:
//
//  1. [ReadFile] or [Parse]: JSONC bytes → [Release]
//  2. [Validate]: structural checks (image parses, target host set, port
//     mappings well-formed), returning a list of human-readable issues
//  3. The publish and deploy commands consume the validated Release
//
// Key exports:
//
//   - [Release] -- the manifest root: Image, Branch, Build, Target
//   - [BuildSection] -- context directory, container file, snapshot codec
//   - [TargetSection] -- remote host, SSH identity, instance settings
//   - [Parse], [ReadFile], [Validate], [NameFromPath]
package releasefile
