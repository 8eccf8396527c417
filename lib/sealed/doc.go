// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed provides age encryption and decryption for Caravel
// credential files. It wraps filippo.io/age for the specific operations
// Caravel needs: generate x25519 keypairs, encrypt to one or more
// recipients, and decrypt with a private key.
//
// Ciphertext is base64-encoded so sealed credential files are plain
// text and safe to commit alongside a release manifest. Callers pass
// plaintext []byte to [Encrypt] and receive a base64 string; [Decrypt]
// accepts a base64 string and returns plaintext. Private keys and
// decrypted plaintext are returned as [secret.Buffer] values backed by
// mmap memory outside the Go heap (locked against swap, excluded from
// core dumps, zeroed on Close).
//
// Key exports:
//
//   - [GenerateKeypair] -- new age x25519 keypair in a secret.Buffer
//   - [Encrypt] -- encrypt to age public key recipients
//   - [Decrypt] -- decrypt with a secret.Buffer key
//   - [ParsePublicKey] / [ParsePrivateKey] -- key validation
//
// Used by the "caravel secret" subcommands and by lib/credential's
// sealed source.
//
// Depends on lib/secret for secure memory allocation.
package sealed
