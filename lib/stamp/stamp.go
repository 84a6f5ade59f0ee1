// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package stamp

import (
	"fmt"
	"regexp"

	"github.com/bureau-foundation/stampver/lib/descriptor"
)

// Macros names the four macro-definition lines a header is stamped
// with. Names are matched exactly; a name whose definition line does
// not appear in the header is silently skipped.
type Macros struct {
	// String is the macro bound to the quoted full descriptor,
	// e.g. UIRB_CORE_LIB_VER_STR.
	String string

	// Major, Minor, and Patch are the macros bound to the
	// parenthesized version integers.
	Major string
	Minor string
	Patch string
}

// Stamp applies a parsed descriptor to header content and returns the
// rewritten buffer. The four substitutions are independent and
// order-independent; each replaces the matched span of a definition
// line wholesale, regardless of the macro's current value. The string
// macro always receives the verbatim raw descriptor. The numeric
// macros are rewritten only when the descriptor matched the version
// pattern — an unparseable descriptor leaves their previous values in
// place rather than resetting them to zero.
func Stamp(content string, parsed descriptor.Descriptor, macros Macros) string {
	content = replaceStringMacro(content, macros.String, parsed.Raw)
	if !parsed.Matched {
		return content
	}
	content = replaceNumericMacro(content, macros.Major, parsed.Major)
	content = replaceNumericMacro(content, macros.Minor, parsed.Minor)
	content = replaceNumericMacro(content, macros.Patch, parsed.Patch)
	return content
}

// replaceStringMacro rewrites `#define <name> "<anything>"` with the
// new quoted value. The quoted segment is matched greedily to the
// last double quote on the line, so values containing quotes are
// replaced in full.
func replaceStringMacro(content, name, value string) string {
	if name == "" {
		return content
	}
	pattern := regexp.MustCompile(`#define\s+` + regexp.QuoteMeta(name) + `\s+".*"`)
	replacement := fmt.Sprintf(`#define %s "%s"`, name, value)
	return pattern.ReplaceAllLiteralString(content, replacement)
}

// replaceNumericMacro rewrites `#define <name> (<digits>)` with the
// new parenthesized integer.
func replaceNumericMacro(content, name string, value int) string {
	if name == "" {
		return content
	}
	pattern := regexp.MustCompile(`#define\s+` + regexp.QuoteMeta(name) + `\s+\(\d+\)`)
	replacement := fmt.Sprintf("#define %s (%d)", name, value)
	return pattern.ReplaceAllLiteralString(content, replacement)
}
