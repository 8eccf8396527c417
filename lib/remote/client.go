// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/caravel-tools/caravel/lib/secret"
)

// Endpoint identifies an SSH target and how to authenticate to it.
type Endpoint struct {
	// Host is the target host name or address.
	Host string

	// Port is the SSH port. Zero means 22.
	Port int

	// User is the SSH user.
	User string

	// IdentityFile is the path of the private key used to
	// authenticate. Empty means ~/.ssh/id_ed25519.
	IdentityFile string

	// KnownHosts is the path of the known_hosts file used to verify
	// the target's host key. Empty means ~/.ssh/known_hosts.
	KnownHosts string
}

// Address returns the host:port dial address.
func (e Endpoint) Address() string {
	port := e.Port
	if port == 0 {
		port = 22
	}
	return net.JoinHostPort(e.Host, strconv.Itoa(port))
}

// Result is the outcome of one remote command execution.
type Result struct {
	// ExitCode is the remote command's exit code. Zero on success.
	ExitCode int

	// Stdout and Stderr are the captured output streams.
	Stdout string
	Stderr string
}

// Client is an open SSH connection to one deployment target.
type Client struct {
	endpoint Endpoint
	conn     *ssh.Client
}

// dialTimeout bounds the TCP connect. Long enough for a slow WAN
// handshake, short enough that an unreachable target fails the release
// promptly.
const dialTimeout = 15 * time.Second

// Dial opens an authenticated SSH connection to the endpoint. The
// private key is read from the identity file, held in locked memory
// only for the duration of parsing, and the target's host key is
// verified against the known_hosts file.
func Dial(ctx context.Context, endpoint Endpoint) (*Client, error) {
	identityPath, err := defaultedPath(endpoint.IdentityFile, "id_ed25519")
	if err != nil {
		return nil, err
	}
	knownHostsPath, err := defaultedPath(endpoint.KnownHosts, "known_hosts")
	if err != nil {
		return nil, err
	}

	keyData, err := secret.ReadFromPath(identityPath)
	if err != nil {
		return nil, fmt.Errorf("reading identity file: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(keyData.Bytes())
	keyData.Close()
	if err != nil {
		return nil, fmt.Errorf("parsing identity file %s: %w", identityPath, err)
	}

	hostKeyCallback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("loading known_hosts %s: %w", knownHostsPath, err)
	}

	sshConfig := &ssh.ClientConfig{
		User:            endpoint.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         dialTimeout,
	}

	address := endpoint.Address()
	dialer := net.Dialer{Timeout: dialTimeout}
	tcpConn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", address, err)
	}

	sshConn, channels, requests, err := ssh.NewClientConn(tcpConn, address, sshConfig)
	if err != nil {
		tcpConn.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", address, err)
	}

	return &Client{
		endpoint: endpoint,
		conn:     ssh.NewClient(sshConn, channels, requests),
	}, nil
}

// Run executes one command on the target and captures its outcome. A
// non-zero remote exit code is returned in the Result, not as an
// error; the error return means the command could not be executed at
// all.
func (c *Client) Run(ctx context.Context, command string) (Result, error) {
	session, err := c.conn.NewSession()
	if err != nil {
		return Result{}, fmt.Errorf("opening session on %s: %w", c.endpoint.Host, err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	// ssh sessions have no context support; closing the session
	// unblocks Wait when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			session.Close()
		case <-done:
		}
	}()

	err = session.Run(command)
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitError *ssh.ExitError
	switch {
	case err == nil:
		return result, nil
	case errors.As(err, &exitError):
		result.ExitCode = exitError.ExitStatus()
		return result, nil
	default:
		if ctx.Err() != nil {
			return result, fmt.Errorf("running %q on %s: %w", command, c.endpoint.Host, ctx.Err())
		}
		return result, fmt.Errorf("running %q on %s: %w", command, c.endpoint.Host, err)
	}
}

// Close closes the SSH connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// defaultedPath returns path, or ~/.ssh/<name> when path is empty.
func defaultedPath(path, name string) (string, error) {
	if path != "" {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory for default ~/.ssh/%s: %w", name, err)
	}
	return filepath.Join(homeDir, ".ssh", name), nil
}
