// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// stampver derives a version descriptor from git — a tag, a tag plus
// commit distance and short hash, or a bare short hash, with a dirty
// marker — and stamps it into the macro-definition lines of a
// pre-existing version header. The string macro always receives the
// verbatim descriptor; the numeric major/minor/patch macros are only
// rewritten when the descriptor parses as vMAJOR.MINOR.PATCH, so an
// untagged checkout never clobbers previously-correct numbers.
//
// What to stamp comes from a per-repository manifest (.stampver.yaml
// or .stampver.jsonc at the repo root) or from flags; see lib/manifest.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/stampver/lib/descriptor"
	"github.com/bureau-foundation/stampver/lib/git"
	"github.com/bureau-foundation/stampver/lib/manifest"
	"github.com/bureau-foundation/stampver/lib/stamp"
	"github.com/bureau-foundation/stampver/lib/version"
)

func main() {
	if err := run(); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
}

// exitError carries a non-zero exit code for outcomes that are valid
// results rather than unexpected errors (--check finding a stale
// header). main exits with the code without printing the error
// string — the command has already reported on its own.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

func (e exitError) ExitCode() int {
	return e.code
}

func run() error {
	var (
		repoFlag    string
		configFlag  string
		projectFlag string
		headerFlag  string
		prefixFlag  string
		checkFlag   bool
		dryRunFlag  bool
	)

	flagSet := pflag.NewFlagSet("stampver", pflag.ContinueOnError)
	flagSet.StringVar(&repoFlag, "repo", ".", "directory inside the repository to stamp")
	flagSet.StringVar(&configFlag, "config", "", "manifest path (default: $"+manifest.EnvVar+", then .stampver.yaml/.stampver.jsonc at the repo root)")
	flagSet.StringVar(&projectFlag, "project", "", "project name (overrides the manifest)")
	flagSet.StringVar(&headerFlag, "header", "", "header path relative to the repo root (overrides the manifest)")
	flagSet.StringVar(&prefixFlag, "macro-prefix", "", "macro name prefix (overrides the manifest)")
	flagSet.BoolVar(&checkFlag, "check", false, "verify the header is current without writing; exit 1 when stale")
	flagSet.BoolVar(&dryRunFlag, "dry-run", false, "print the stamped header to stdout without writing")
	flagSet.BoolP("help", "h", false, "show help")

	// Handle --version before flag parsing to match other Bureau binaries.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("stampver %s\n", version.Full())
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}
	if checkFlag && dryRunFlag {
		return fmt.Errorf("--check and --dry-run are mutually exclusive")
	}

	ctx := context.Background()
	logger := newLogger().With("program", "stampver")

	repo := git.NewRepository(repoFlag)
	root, err := repo.Toplevel(ctx)
	if err != nil {
		return err
	}

	loaded, err := manifest.Load(configFlag, root)
	if err != nil {
		return err
	}
	if projectFlag != "" {
		loaded.Project = projectFlag
	}
	if headerFlag != "" {
		loaded.Header = headerFlag
	}
	if prefixFlag != "" {
		loaded.MacroPrefix = prefixFlag
	}
	loaded.ApplyDefaults()
	if err := loaded.Validate(); err != nil {
		return err
	}

	raw, err := repo.Describe(ctx)
	if err != nil {
		return err
	}
	parsed := descriptor.Parse(raw)
	logger.Info("resolved version descriptor",
		"descriptor", parsed.Raw, "semver", parsed.Matched)

	return apply(logger, os.Stdout, loaded.HeaderPath(root), parsed, loaded.Macros(), checkFlag, dryRunFlag)
}

// apply performs the requested stamping action: preview with dryRun,
// verify with check (stale header is a valid outcome carried as
// exitError{1}), or update the header in place. Separated from flag
// handling so the exit-code contract is testable without a process
// boundary.
func apply(logger *slog.Logger, out io.Writer, headerPath string, parsed descriptor.Descriptor, macros stamp.Macros, check, dryRun bool) error {
	if dryRun {
		content, err := stamp.ReadFile(headerPath)
		if err != nil {
			return err
		}
		fmt.Fprint(out, stamp.Stamp(content, parsed, macros))
		return nil
	}

	if check {
		content, err := stamp.ReadFile(headerPath)
		if err != nil {
			return err
		}
		if stamp.Stamp(content, parsed, macros) != content {
			logger.Warn("header is stale", "header", headerPath, "descriptor", parsed.Raw)
			return exitError{code: 1}
		}
		logger.Info("header is current", "header", headerPath)
		return nil
	}

	changed, err := stamp.UpdateFile(headerPath, parsed, macros)
	if err != nil {
		if errors.Is(err, stamp.ErrTargetMissing) {
			return fmt.Errorf("%w (stampver rewrites the header but never creates it)", err)
		}
		return err
	}
	if changed {
		logger.Info("stamped version header", "header", headerPath, "descriptor", parsed.Raw)
	} else {
		logger.Info("header already current", "header", headerPath)
	}
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, "stampver — stamp git version information into a version header\n")
	fmt.Fprintf(os.Stderr, "\nusage: stampver [flags]\n")
	fmt.Fprintf(os.Stderr, "\nflags:\n%s", flagSet.FlagUsages())
	fmt.Fprintf(os.Stderr, "\nexit codes:\n")
	fmt.Fprintf(os.Stderr, "  0  header stamped or already current\n")
	fmt.Fprintf(os.Stderr, "  1  --check found a stale header\n")
	fmt.Fprintf(os.Stderr, "  2  error\n")
	fmt.Fprintf(os.Stderr, "\nenvironment:\n")
	fmt.Fprintf(os.Stderr, "  %s  manifest path when --config is not given\n", manifest.EnvVar)
}
