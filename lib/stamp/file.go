// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package stamp

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/stampver/lib/descriptor"
)

// ErrTargetMissing indicates that the version header does not exist
// at the computed path. The header is generated scaffolding that
// ships with the project; stampver rewrites it but never creates it.
var ErrTargetMissing = errors.New("version header does not exist")

// ReadFile reads the header at path. Returns an error wrapping
// [ErrTargetMissing] when the file does not exist.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrTargetMissing, path)
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// UpdateFile stamps the header at path in place and reports whether
// the file content actually changed. When stamping produces content
// identical to what is already on disk, no write happens at all.
// Writes are atomic (temp file in the same directory, then rename)
// and preserve the header's existing permission bits.
func UpdateFile(path string, parsed descriptor.Descriptor, macros Macros) (changed bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("%w: %s", ErrTargetMissing, path)
		}
		return false, fmt.Errorf("checking %s: %w", path, err)
	}

	content, err := ReadFile(path)
	if err != nil {
		return false, err
	}

	stamped := Stamp(content, parsed, macros)
	if stamped == content {
		return false, nil
	}

	if err := writeAtomic(path, []byte(stamped), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

// writeAtomic writes data to path via a temp file in the same
// directory followed by a rename, so readers never see a partial
// header and a failed write leaves the original intact.
func writeAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpFile.Chmod(mode); err != nil {
		tmpFile.Close()
		return fmt.Errorf("setting temp file mode: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}

	success = true
	return nil
}
