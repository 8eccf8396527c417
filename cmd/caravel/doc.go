// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

// Caravel is a minimal continuous delivery CLI for container images.
// It provides subcommands for publishing (build and push an image
// under a mutable tag), deploying (replace the container on a remote
// host over SSH), the combined branch-gated release pipeline, live
// instance status queries, and sealed credential management.
package main
