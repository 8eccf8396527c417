// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package credential

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/caravel-tools/caravel/lib/config"
	"github.com/caravel-tools/caravel/lib/sealed"
	"github.com/caravel-tools/caravel/lib/secret"
)

// Registry is a resolved registry credential pair. The password lives
// in a locked secret buffer; call [Registry.Close] when the publish
// session ends.
type Registry struct {
	// Username is the registry account name. Not treated as secret.
	Username string

	// Password is the registry password or access token.
	Password *secret.Buffer
}

// Close zeroes and releases the password buffer. Safe to call on a
// nil receiver and safe to call twice.
func (r *Registry) Close() {
	if r == nil || r.Password == nil {
		return
	}
	r.Password.Close()
}

// Resolve loads registry credentials from the configured source.
func Resolve(cfg config.CredentialsConfig) (*Registry, error) {
	switch cfg.Source {
	case "env":
		return fromEnvironment(cfg.UsernameEnv, cfg.PasswordEnv)
	case "file":
		return fromFile(cfg.File)
	case "sealed":
		return fromSealedFile(cfg.File, cfg.KeyFile)
	case "prompt":
		return fromPrompt(os.Stdin, os.Stderr)
	default:
		return nil, fmt.Errorf("unknown credential source: %q", cfg.Source)
	}
}

// fromEnvironment reads the credential pair from environment variables.
func fromEnvironment(usernameVar, passwordVar string) (*Registry, error) {
	username := os.Getenv(usernameVar)
	if username == "" {
		return nil, fmt.Errorf("%s is not set", usernameVar)
	}
	password := os.Getenv(passwordVar)
	if password == "" {
		return nil, fmt.Errorf("%s is not set", passwordVar)
	}

	buffer, err := secret.NewFromBytes([]byte(password))
	if err != nil {
		return nil, fmt.Errorf("storing password: %w", err)
	}
	return &Registry{Username: username, Password: buffer}, nil
}

// credentialFile is the on-disk JSON shape for the file and sealed
// sources.
type credentialFile struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// fromFile reads the credential pair from a plain JSON file.
func fromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading credential file: %w", err)
	}
	defer secret.Zero(data)

	return parseCredentialJSON(data)
}

// fromSealedFile reads an age-encrypted credential file, unsealing it
// with the private key at keyPath.
func fromSealedFile(path, keyPath string) (*Registry, error) {
	ciphertext, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sealed credential file: %w", err)
	}

	privateKey, err := secret.ReadFromPath(keyPath)
	if err != nil {
		return nil, fmt.Errorf("reading unseal key: %w", err)
	}
	defer privateKey.Close()

	plaintext, err := sealed.Decrypt(strings.TrimSpace(string(ciphertext)), privateKey)
	if err != nil {
		return nil, fmt.Errorf("unsealing credential file: %w", err)
	}
	defer plaintext.Close()

	return parseCredentialJSON(plaintext.Bytes())
}

// parseCredentialJSON unmarshals a credential pair and moves the
// password into a locked buffer. The caller is responsible for zeroing
// the input data.
func parseCredentialJSON(data []byte) (*Registry, error) {
	var parsed credentialFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing credential file: %w", err)
	}
	if parsed.Username == "" || parsed.Password == "" {
		return nil, fmt.Errorf("credential file must set both username and password")
	}

	// The unmarshaled string copy cannot be zeroed; the caller zeroes
	// the raw input, which bounds the exposure to this function.
	buffer, err := secret.NewFromBytes([]byte(parsed.Password))
	if err != nil {
		return nil, fmt.Errorf("storing password: %w", err)
	}

	return &Registry{Username: parsed.Username, Password: buffer}, nil
}

// fromPrompt reads the credential pair interactively. The password is
// read without echo when stdin is a terminal.
func fromPrompt(input *os.File, output *os.File) (*Registry, error) {
	if !term.IsTerminal(int(input.Fd())) {
		return nil, fmt.Errorf("credential prompt requires a terminal (stdin is not a TTY)")
	}

	fmt.Fprint(output, "Registry username: ")
	var username string
	if _, err := fmt.Fscanln(input, &username); err != nil {
		return nil, fmt.Errorf("reading username: %w", err)
	}

	fmt.Fprint(output, "Registry password: ")
	passwordBytes, err := term.ReadPassword(int(input.Fd()))
	fmt.Fprintln(output)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	if len(passwordBytes) == 0 {
		return nil, fmt.Errorf("empty password")
	}

	buffer, err := secret.NewFromBytes(passwordBytes)
	if err != nil {
		return nil, fmt.Errorf("storing password: %w", err)
	}
	return &Registry{Username: username, Password: buffer}, nil
}
