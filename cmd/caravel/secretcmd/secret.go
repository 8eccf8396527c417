// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

// Package secretcmd implements `caravel secret`: keypair generation
// and sealing/unsealing of credential files with age encryption.
package secretcmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/caravel-tools/caravel/cmd/caravel/cli"
	"github.com/caravel-tools/caravel/lib/sealed"
	"github.com/caravel-tools/caravel/lib/secret"
)

// Command returns the secret command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "secret",
		Summary: "Manage sealed credential files",
		Description: `Generate age keypairs and seal or unseal credential files.

A sealed credential file lets registry credentials live in a repo or
a config management system without exposing them: only holders of the
private key can unseal. Point credentials.source at "sealed" in the
caravel config to use one.`,
		Subcommands: []*cli.Command{
			keygenCommand(),
			sealCommand(),
			unsealCommand(),
		},
	}
}

func keygenCommand() *cli.Command {
	var outputPath string

	return &cli.Command{
		Name:    "keygen",
		Summary: "Generate an age keypair",
		Description: `Generate an age keypair. The public key is printed to stdout; the
private key is written to the --output file with mode 0600.`,
		Usage: "caravel secret keygen --output <key-file>",
		Examples: []cli.Example{
			{
				Description: "Generate a deploy key",
				Command:     "caravel secret keygen --output ~/.config/caravel/age.key",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("keygen", pflag.ContinueOnError)
			flags.StringVar(&outputPath, "output", "", "file to write the private key to (required)")
			return flags
		},
		Run: func(args []string) error {
			if outputPath == "" {
				return cli.Validation("--output is required")
			}

			keypair, err := sealed.GenerateKeypair()
			if err != nil {
				return cli.Internal("generating keypair: %v", err)
			}
			defer keypair.Close()

			// Copy out of the locked buffer for the write, then zero
			// the heap copy.
			content := make([]byte, 0, keypair.PrivateKey.Len()+1)
			content = append(content, keypair.PrivateKey.Bytes()...)
			content = append(content, '\n')
			err = os.WriteFile(outputPath, content, 0o600)
			secret.Zero(content)
			if err != nil {
				return cli.Internal("writing private key: %v", err)
			}

			fmt.Println(keypair.PublicKey)
			return nil
		},
	}
}

func sealCommand() *cli.Command {
	var recipients []string
	var outputPath string

	return &cli.Command{
		Name:    "seal",
		Summary: "Encrypt a file to one or more public keys",
		Description: `Encrypt a file (typically a registry credential JSON) to one or more
age public keys. The input is read from the given path, or stdin when
the path is "-". The sealed output is ASCII and safe to commit.`,
		Usage: "caravel secret seal <file> --recipient <public-key> [flags]",
		Examples: []cli.Example{
			{
				Description: "Seal registry credentials for two operators",
				Command:     "caravel secret seal registry.json -r age1ql3z... -r age1xj7n... --output registry.sealed",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("seal", pflag.ContinueOnError)
			flags.StringArrayVarP(&recipients, "recipient", "r", nil, "age public key (repeatable, at least one)")
			flags.StringVar(&outputPath, "output", "", "file to write the sealed output to (default: stdout)")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("usage: caravel secret seal <file>")
			}
			if len(recipients) == 0 {
				return cli.Validation("at least one --recipient is required")
			}

			plaintext, err := secret.ReadFromPath(args[0])
			if err != nil {
				return cli.NotFound("reading input: %v", err)
			}
			defer plaintext.Close()

			ciphertext, err := sealed.Encrypt(plaintext.Bytes(), recipients)
			if err != nil {
				return cli.Validation("sealing: %v", err)
			}

			if outputPath == "" {
				fmt.Println(ciphertext)
				return nil
			}
			if err := os.WriteFile(outputPath, []byte(ciphertext+"\n"), 0o644); err != nil {
				return cli.Internal("writing sealed file: %v", err)
			}
			return nil
		},
	}
}

func unsealCommand() *cli.Command {
	var keyPath string

	return &cli.Command{
		Name:    "unseal",
		Summary: "Decrypt a sealed file",
		Description: `Decrypt a sealed file with the private key and write the plaintext
to stdout. Meant for inspection and recovery; the publish command
unseals configured credential files itself.`,
		Usage: "caravel secret unseal <file> --key <key-file>",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("unseal", pflag.ContinueOnError)
			flags.StringVar(&keyPath, "key", "", "age private key file (required)")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("usage: caravel secret unseal <file>")
			}
			if keyPath == "" {
				return cli.Validation("--key is required")
			}

			ciphertext, err := os.ReadFile(args[0])
			if err != nil {
				return cli.NotFound("reading sealed file: %v", err)
			}
			privateKey, err := secret.ReadFromPath(keyPath)
			if err != nil {
				return cli.NotFound("reading key: %v", err)
			}
			defer privateKey.Close()

			plaintext, err := sealed.Decrypt(strings.TrimSpace(string(ciphertext)), privateKey)
			if err != nil {
				return cli.Validation("unsealing: %v", err)
			}
			defer plaintext.Close()

			os.Stdout.Write(plaintext.Bytes())
			return nil
		},
	}
}
