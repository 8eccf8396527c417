// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

// Package buildcontext handles the local source tree a container image
// is built from. The publisher refuses to build from a context that is
// not self-sufficient, and records what it built from.
//
// Three operations:
//
//   - [Check] -- validates the context before any build: the directory
//     and container file exist, and no symlink escapes the context
//     root (an escaping symlink means the build depends on files
//     outside the declared context).
//   - [Digest] -- keyed BLAKE3 hash over the full file tree (paths,
//     modes, content). Two contexts with the same digest build the
//     same image modulo base-image drift. Recorded in the session
//     receipt.
//   - [Pack] -- tar snapshot of the context with a selectable
//     compression codec (none, lz4, zstd), written next to the receipt
//     for audit.
//
// The digest uses a keyed hash with a fixed domain key so context
// digests can never collide with hashes computed in other domains.
package buildcontext
