// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest loads the per-repository stampver manifest: which
// project is being stamped, where its version header lives, and what
// the macro names are prefixed with.
//
// The manifest is located by, in order: an explicit path (--config
// flag), the STAMPVER_CONFIG environment variable, then
// .stampver.yaml / .stampver.yml / .stampver.jsonc at the repository
// root. There is no other discovery. A repository without a manifest
// is workable when the fields arrive via CLI flags instead.
//
// Two syntaxes are supported, dispatched on file extension: YAML
// (.yaml/.yml) and JSONC (.jsonc/.json — JSON extended with comments
// and trailing commas). Everything except the project name has a
// derived default, so a minimal manifest is a single line:
//
//	project: UIRBcore
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/stampver/lib/stamp"
)

// EnvVar names the environment variable consulted for the manifest
// path when no --config flag is given.
const EnvVar = "STAMPVER_CONFIG"

// discoveryNames are the manifest filenames probed at the repository
// root, in order, when neither flag nor environment variable names a
// path.
var discoveryNames = []string{".stampver.yaml", ".stampver.yml", ".stampver.jsonc"}

// macroPrefixPattern constrains the macro prefix to a C identifier,
// since the four macro names are built from it.
var macroPrefixPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Manifest describes what to stamp for one repository.
type Manifest struct {
	// Project is the project name, used to derive the default header
	// path and macro prefix.
	Project string `yaml:"project" json:"project"`

	// Header is the version header path relative to the repository
	// root. Default: include/<Project>_Version.h.
	Header string `yaml:"header" json:"header"`

	// MacroPrefix is prepended to the four macro names
	// (<PREFIX>_VER_STR, <PREFIX>_MAJOR, <PREFIX>_MINOR,
	// <PREFIX>_PATCH). Default: the project name uppercased with
	// non-identifier characters mapped to underscores.
	MacroPrefix string `yaml:"macro_prefix" json:"macro_prefix"`
}

// Load locates and loads the manifest for the repository rooted at
// repoRoot. explicitPath (the --config flag) wins over the
// STAMPVER_CONFIG environment variable, which wins over discovery at
// the repository root. When nothing is found, Load returns an empty
// Manifest — the caller's flag overrides and ApplyDefaults must then
// supply the required fields, and Validate reports what is missing.
func Load(explicitPath, repoRoot string) (*Manifest, error) {
	path := explicitPath
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path != "" {
		return LoadFile(path)
	}

	for _, name := range discoveryNames {
		candidate := filepath.Join(repoRoot, name)
		if _, err := os.Stat(candidate); err == nil {
			return LoadFile(candidate)
		}
	}
	return &Manifest{}, nil
}

// LoadFile loads a manifest from a specific file, dispatching the
// parser on the file extension.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var loaded Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
		}
	case ".jsonc", ".json":
		if err := json.Unmarshal(jsonc.ToJSON(data), &loaded); err != nil {
			return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("manifest %s: unsupported extension (want .yaml, .yml, .jsonc, or .json)", path)
	}
	return &loaded, nil
}

// ApplyDefaults fills the derivable fields from the project name.
// Call after flag overrides are applied and before Validate.
func (m *Manifest) ApplyDefaults() {
	if m.Project == "" {
		return
	}
	if m.Header == "" {
		m.Header = filepath.Join("include", m.Project+"_Version.h")
	}
	if m.MacroPrefix == "" {
		m.MacroPrefix = derivePrefix(m.Project)
	}
}

// Validate checks the manifest for errors. All problems are reported
// at once rather than one per run.
func (m *Manifest) Validate() error {
	var errs []error

	if m.Project == "" {
		errs = append(errs, fmt.Errorf("project is required (set it in the manifest or via --project)"))
	}
	if m.Header == "" {
		errs = append(errs, fmt.Errorf("header is required"))
	} else if !filepath.IsLocal(m.Header) {
		// Rejects absolute paths and ".." traversal alike: the header
		// must stay inside the repository root.
		errs = append(errs, fmt.Errorf("header must be a relative path inside the repository root, got %s", m.Header))
	}
	if m.MacroPrefix == "" {
		errs = append(errs, fmt.Errorf("macro_prefix is required"))
	} else if !macroPrefixPattern.MatchString(m.MacroPrefix) {
		errs = append(errs, fmt.Errorf("macro_prefix %q is not a valid C identifier", m.MacroPrefix))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Macros returns the four macro names built from the prefix.
func (m *Manifest) Macros() stamp.Macros {
	return stamp.Macros{
		String: m.MacroPrefix + "_VER_STR",
		Major:  m.MacroPrefix + "_MAJOR",
		Minor:  m.MacroPrefix + "_MINOR",
		Patch:  m.MacroPrefix + "_PATCH",
	}
}

// HeaderPath returns the absolute header path for a repository root.
func (m *Manifest) HeaderPath(repoRoot string) string {
	return filepath.Join(repoRoot, m.Header)
}

// derivePrefix maps a project name to a default macro prefix:
// uppercased, with every non-identifier character replaced by an
// underscore. A leading digit gets an underscore prepended so the
// result stays a valid C identifier.
func derivePrefix(project string) string {
	var builder strings.Builder
	for _, r := range strings.ToUpper(project) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			builder.WriteRune(r)
		default:
			builder.WriteRune('_')
		}
	}
	prefix := builder.String()
	if prefix != "" && prefix[0] >= '0' && prefix[0] <= '9' {
		prefix = "_" + prefix
	}
	return prefix
}
