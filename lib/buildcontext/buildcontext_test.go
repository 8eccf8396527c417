// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package buildcontext

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// writeContext creates a minimal valid build context and returns its root.
func writeContext(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"Dockerfile":       "FROM python:3.12-slim\nCOPY . /app\n",
		"app.py":           "print('dashboard')\n",
		"requirements.txt": "streamlit\npandas\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return root
}

func TestCheck(t *testing.T) {
	t.Parallel()

	root := writeContext(t)
	if err := Check(root, "Dockerfile"); err != nil {
		t.Fatalf("Check on valid context: %v", err)
	}
}

func TestCheckMissingContainerFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := Check(root, "Dockerfile"); err == nil {
		t.Error("Check without Dockerfile succeeded, want error")
	}
}

func TestCheckEmptyContainerFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "Dockerfile"), nil, 0o644); err != nil {
		t.Fatalf("writing Dockerfile: %v", err)
	}
	if err := Check(root, "Dockerfile"); err == nil {
		t.Error("Check with empty Dockerfile succeeded, want error")
	}
}

func TestCheckRejectsEscapingSymlink(t *testing.T) {
	t.Parallel()

	root := writeContext(t)
	outside := t.TempDir()
	if err := os.Symlink(filepath.Join(outside, "secrets.env"), filepath.Join(root, "escape")); err != nil {
		t.Fatalf("creating symlink: %v", err)
	}
	if err := Check(root, "Dockerfile"); err == nil {
		t.Error("Check with escaping symlink succeeded, want error")
	}
}

func TestCheckAllowsInternalSymlink(t *testing.T) {
	t.Parallel()

	root := writeContext(t)
	if err := os.Symlink("app.py", filepath.Join(root, "main.py")); err != nil {
		t.Fatalf("creating symlink: %v", err)
	}
	if err := Check(root, "Dockerfile"); err != nil {
		t.Errorf("Check with internal symlink: %v", err)
	}
}

func TestDigestIsStable(t *testing.T) {
	t.Parallel()

	root := writeContext(t)
	first, err := Digest(root)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	second, err := Digest(root)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if first != second {
		t.Errorf("digest not stable: %s != %s", first, second)
	}
	if len(first.String()) != 64 {
		t.Errorf("digest hex length = %d, want 64", len(first.String()))
	}
}

func TestDigestChangesWithContent(t *testing.T) {
	t.Parallel()

	root := writeContext(t)
	before, err := Digest(root)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "app.py"), []byte("print('changed')\n"), 0o644); err != nil {
		t.Fatalf("rewriting app.py: %v", err)
	}
	after, err := Digest(root)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if before == after {
		t.Error("digest unchanged after content edit")
	}
}

func TestDigestChangesWithRename(t *testing.T) {
	t.Parallel()

	root := writeContext(t)
	before, err := Digest(root)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}

	if err := os.Rename(filepath.Join(root, "app.py"), filepath.Join(root, "main.py")); err != nil {
		t.Fatalf("renaming: %v", err)
	}
	after, err := Digest(root)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if before == after {
		t.Error("digest unchanged after rename")
	}
}

func TestDigestIgnoresGitDirectory(t *testing.T) {
	t.Parallel()

	root := writeContext(t)
	before, err := Digest(root)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}

	gitDir := filepath.Join(root, ".git")
	if err := os.MkdirAll(gitDir, 0o755); err != nil {
		t.Fatalf("creating .git: %v", err)
	}
	if err := os.WriteFile(filepath.Join(gitDir, "HEAD"), []byte("ref: refs/heads/main\n"), 0o644); err != nil {
		t.Fatalf("writing HEAD: %v", err)
	}
	after, err := Digest(root)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if before != after {
		t.Error("digest changed after adding .git contents")
	}
}

func TestParseCodec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  Codec
		ok    bool
	}{
		{"none", CodecNone, true},
		{"lz4", CodecLZ4, true},
		{"zstd", CodecZstd, true},
		{"", CodecZstd, true},
		{"gzip", 0, false},
	}
	for _, test := range tests {
		got, err := ParseCodec(test.input)
		if test.ok != (err == nil) {
			t.Errorf("ParseCodec(%q) error = %v, want ok=%v", test.input, err, test.ok)
			continue
		}
		if test.ok && got != test.want {
			t.Errorf("ParseCodec(%q) = %v, want %v", test.input, got, test.want)
		}
	}
}

func TestPackRoundTrip(t *testing.T) {
	t.Parallel()

	root := writeContext(t)

	for _, codec := range []Codec{CodecNone, CodecLZ4, CodecZstd} {
		t.Run(codec.String(), func(t *testing.T) {
			t.Parallel()

			var archive bytes.Buffer
			if err := Pack(root, &archive, codec); err != nil {
				t.Fatalf("Pack: %v", err)
			}

			var tarStream io.Reader
			switch codec {
			case CodecNone:
				tarStream = &archive
			case CodecLZ4:
				tarStream = lz4.NewReader(&archive)
			case CodecZstd:
				reader, err := zstd.NewReader(&archive)
				if err != nil {
					t.Fatalf("zstd reader: %v", err)
				}
				defer reader.Close()
				tarStream = reader
			}

			names := map[string]bool{}
			tarReader := tar.NewReader(tarStream)
			for {
				header, err := tarReader.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatalf("reading tar: %v", err)
				}
				names[header.Name] = true
			}

			for _, expected := range []string{"Dockerfile", "app.py", "requirements.txt"} {
				if !names[expected] {
					t.Errorf("snapshot missing %s (got %v)", expected, names)
				}
			}
		})
	}
}

func TestPackIsReproducible(t *testing.T) {
	t.Parallel()

	root := writeContext(t)

	var first, second bytes.Buffer
	if err := Pack(root, &first, CodecNone); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if err := Pack(root, &second, CodecNone); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("two packs of the same context differ")
	}
}
