// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package git provides typed access to the git CLI for version
// resolution. stampver uses git for two things: locating the
// repository root and describing the current checkout position (a
// tag, a tag plus commit distance and short hash, or a bare short
// hash, with a dirty marker when the working tree has uncommitted
// modifications). All commands target a specific repository directory
// via the -C flag, which is automatically injected by all Repository
// methods — there is no default directory, callers must always say
// which repository they mean.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNoRepository indicates that the target directory is not inside a
// git working tree, so no repository root can be determined.
var ErrNoRepository = errors.New("not inside a git repository")

// ErrNoDescriptor indicates that no version descriptor could be
// produced at all: neither a tag-based describe nor the commit-hash
// fallback succeeded. This only happens when the checkout has no
// commits or is not a repository.
var ErrNoDescriptor = errors.New("cannot describe the repository state")

// Repository represents a git repository at a specific directory. All
// operations target this directory via "git -C <dir>".
type Repository struct {
	dir string
}

// NewRepository returns a Repository targeting the given directory.
// The directory may be the repository root or any directory inside
// the working tree.
func NewRepository(dir string) *Repository {
	return &Repository{dir: dir}
}

// Run executes a git command targeting this repository and returns
// stdout with surrounding whitespace trimmed. Stderr is captured
// separately and included in error messages on failure.
func (r *Repository) Run(ctx context.Context, args ...string) (string, error) {
	fullArgs := append([]string{"-C", r.dir}, args...)
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, "git", fullArgs...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("git %s in %s: %w (stderr: %s)",
			strings.Join(args, " "), r.dir, err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Toplevel returns the absolute path of the repository root. Returns
// an error wrapping [ErrNoRepository] when the target directory is
// not part of a git working tree.
func (r *Repository) Toplevel(ctx context.Context) (string, error) {
	root, err := r.Run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoRepository, err)
	}
	return root, nil
}

// Describe returns the best available human-readable descriptor for
// the current checkout position, degrading gracefully:
//
//  1. "git describe --tags --dirty" — an exact tag (v1.2.3), or the
//     nearest tag plus commit distance and short hash
//     (v1.2.3-4-gabcdef), with "-dirty" appended by git itself when
//     the working tree is modified.
//  2. When no tag is reachable: the bare short commit hash, with
//     "-dirty" appended when the working tree is modified.
//
// Only when both strategies fail (no commits, or not a repository)
// does Describe return an error wrapping [ErrNoDescriptor].
func (r *Repository) Describe(ctx context.Context) (string, error) {
	described, err := r.Run(ctx, "describe", "--tags", "--dirty")
	if err == nil {
		return described, nil
	}

	hash, hashErr := r.Run(ctx, "rev-parse", "--short", "HEAD")
	if hashErr != nil {
		return "", fmt.Errorf("%w: %w", ErrNoDescriptor, hashErr)
	}

	dirty, dirtyErr := r.IsDirty(ctx)
	if dirtyErr != nil {
		return "", dirtyErr
	}
	if dirty {
		hash += "-dirty"
	}
	return hash, nil
}

// IsDirty reports whether the working tree has uncommitted
// modifications to tracked files. Untracked files do not count,
// matching the conditions under which "git describe --dirty" appends
// its marker — IsDirty extends that notion to the no-tag fallback
// path where git offers no equivalent.
func (r *Repository) IsDirty(ctx context.Context) (bool, error) {
	status, err := r.Run(ctx, "status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return false, err
	}
	return status != "", nil
}
