// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

// Package credential resolves container registry credentials for
// publishing. Credentials are resolved once per session, held in
// locked memory ([secret.Buffer]), passed to the engine over stdin,
// and zeroed as soon as the session ends. Caravel never writes
// credentials to disk, argv, or logs.
//
// Four sources are supported, selected by configuration:
//
//   - env: username and password read from environment variables
//   - file: a plain JSON file {"username": ..., "password": ...}
//   - sealed: the same JSON, age-encrypted with [sealed.Encrypt]
//   - prompt: interactive terminal prompt (no echo for the password)
//
// Key exports:
//
//   - [Registry] -- a resolved username + password pair
//   - [Resolve] -- source dispatch from [config.CredentialsConfig]
package credential
