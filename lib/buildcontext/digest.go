// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package buildcontext

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// Digest32 is a 32-byte BLAKE3 digest of a build context tree.
type Digest32 [32]byte

// String returns the lowercase hex rendering of the digest.
func (d Digest32) String() string {
	return hex.EncodeToString(d[:])
}

// contextDomainKey is the 32-byte key for BLAKE3 keyed hashing of
// build contexts. Domain separation ensures a context digest can never
// collide with a hash computed over the same bytes in another context.
// The byte values are the ASCII encoding of the domain name,
// zero-padded to 32 bytes, so the key is inspectable in hex dumps
// without sacrificing any cryptographic property.
var contextDomainKey = [32]byte{
	'c', 'a', 'r', 'a', 'v', 'e', 'l', '.', 'b', 'u', 'i', 'l', 'd', '.',
	'c', 'o', 'n', 't', 'e', 'x', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Digest computes the keyed BLAKE3 digest of the build context tree at
// root. The digest covers, in lexical walk order: each entry's
// slash-separated relative path, its type and permission bits, and for
// regular files the length-prefixed content (for symlinks, the link
// target). Timestamps and ownership are excluded — the digest
// identifies content, not filesystem metadata churn.
//
// The .git directory is excluded, matching [Check] and [Pack].
func Digest(root string) (Digest32, error) {
	hasher, err := blake3.NewKeyed(contextDomainKey[:])
	if err != nil {
		return Digest32{}, fmt.Errorf("initializing keyed hash: %w", err)
	}

	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return walkError
		}
		if entry.IsDir() && entry.Name() == ".git" {
			return filepath.SkipDir
		}

		relative, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if relative == "." {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}

		hashString(hasher, filepath.ToSlash(relative))
		binary.Write(hasher, binary.BigEndian, uint32(info.Mode()&(fs.ModeType|fs.ModePerm)))

		switch {
		case entry.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return fmt.Errorf("reading symlink %s: %w", path, err)
			}
			hashString(hasher, target)

		case entry.Type().IsRegular():
			binary.Write(hasher, binary.BigEndian, uint64(info.Size()))
			file, err := os.Open(path)
			if err != nil {
				return err
			}
			_, err = io.Copy(hasher, file)
			file.Close()
			if err != nil {
				return fmt.Errorf("hashing %s: %w", path, err)
			}
		}
		return nil
	})
	if err != nil {
		return Digest32{}, err
	}

	var digest Digest32
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// hashString writes a length-prefixed string into the hasher. The
// length prefix prevents ambiguity between adjacent fields (path "ab"
// + target "c" must not hash equal to path "a" + target "bc").
func hashString(w io.Writer, s string) {
	binary.Write(w, binary.BigEndian, uint32(len(s)))
	io.WriteString(w, s)
}
