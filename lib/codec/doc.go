// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Caravel's standard CBOR encoding. Session
// receipts are written with Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. The same logical receipt always produces
// identical bytes, so receipts can be compared and content-addressed.
//
// Key exports:
//
//   - [Marshal] / [Unmarshal] -- one-shot encode and decode
//   - [NewEncoder] / [NewDecoder] -- stream variants
//
// Consumers import only this package, never fxamacker/cbor directly.
package codec
