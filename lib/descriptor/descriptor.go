// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package descriptor parses the human-readable strings git produces
// to identify a checkout position (v1.2.3, v1.2.3-4-gabcdef-dirty, or
// a bare short hash) into structured version fields.
package descriptor

import (
	"regexp"
	"strconv"
)

// semverPattern matches an optional leading "v", three dot-separated
// non-negative decimal integers, and an arbitrary trailing suffix.
// The suffix carries pre-release and build metadata such as commit
// distance, short hash, and the dirty marker.
var semverPattern = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)(.*)$`)

// Descriptor is the parsed form of a version descriptor. It lives for
// a single stamping run: constructed from the git output, applied to
// the header, discarded.
type Descriptor struct {
	// Raw is the full descriptor string, preserved verbatim whether
	// or not it parses.
	Raw string

	// Major, Minor, and Patch are the three leading integers of a
	// vMAJOR.MINOR.PATCH descriptor. All zero when Matched is false.
	Major int
	Minor int
	Patch int

	// Suffix is everything after the patch number, such as
	// "-4-gabcdef-dirty". Empty when Matched is false.
	Suffix string

	// Matched reports whether Raw had the vMAJOR.MINOR.PATCH shape.
	// When false the numeric fields are meaningless defaults and the
	// stamper leaves numeric macros untouched.
	Matched bool
}

// Parse extracts version fields from a raw descriptor string. A
// descriptor that does not have the vMAJOR.MINOR.PATCH shape is not
// an error: Parse returns a Descriptor with zero numeric fields,
// Matched false, and Raw retained unchanged. This is the designed
// degraded mode for bare-hash descriptors from untagged checkouts.
func Parse(raw string) Descriptor {
	parsed := Descriptor{Raw: raw}

	groups := semverPattern.FindStringSubmatch(raw)
	if groups == nil {
		return parsed
	}

	major, majorErr := strconv.Atoi(groups[1])
	minor, minorErr := strconv.Atoi(groups[2])
	patch, patchErr := strconv.Atoi(groups[3])
	if majorErr != nil || minorErr != nil || patchErr != nil {
		// A component too large for int. Treat the descriptor as
		// unmatched rather than stamping a truncated number.
		return parsed
	}

	parsed.Major = major
	parsed.Minor = minor
	parsed.Patch = patch
	parsed.Suffix = groups[4]
	parsed.Matched = true
	return parsed
}
