// Copyright 2026 The Caravel Authors
// SPDX-License-Identifier: Apache-2.0

package buildcontext

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Check validates that the build context at root is self-sufficient:
//
//   - root exists and is a directory
//   - the container file (for example "Dockerfile") exists within the
//     context and is not empty
//   - no symlink under root resolves to a target outside root
//
// A context that fails Check must not be built: the resulting image
// would depend on state not captured by the context, and the build
// would not be reproducible from the snapshot.
func Check(root string, containerFile string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("build context %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("build context %s: not a directory", root)
	}

	filePath := filepath.Join(root, containerFile)
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("container file %s: %w", filePath, err)
	}
	if fileInfo.Size() == 0 {
		return fmt.Errorf("container file %s is empty", filePath)
	}

	absoluteRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving context root: %w", err)
	}

	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return walkError
		}
		if entry.IsDir() && entry.Name() == ".git" {
			return filepath.SkipDir
		}
		if entry.Type()&fs.ModeSymlink == 0 {
			return nil
		}

		target, err := os.Readlink(path)
		if err != nil {
			return fmt.Errorf("reading symlink %s: %w", path, err)
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		resolved, err := filepath.Abs(target)
		if err != nil {
			return fmt.Errorf("resolving symlink %s: %w", path, err)
		}
		if resolved != absoluteRoot && !strings.HasPrefix(resolved, absoluteRoot+string(filepath.Separator)) {
			return fmt.Errorf("symlink %s escapes the build context (target %s)", path, resolved)
		}
		return nil
	})
}
