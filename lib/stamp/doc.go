// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package stamp rewrites the version macro-definition lines of a
// generated C header.
//
// The header carries four recognized macros — a quoted version string
// plus parenthesized major, minor, and patch integers:
//
//	#define UIRB_CORE_LIB_VER_STR "v1.2.3-4-gabcdef"
//	#define UIRB_CORE_LIB_MAJOR (1)
//	#define UIRB_CORE_LIB_MINOR (2)
//	#define UIRB_CORE_LIB_PATCH (3)
//
// [Stamp] performs the substitutions on an in-memory buffer and is
// pure: no I/O, no error paths, idempotent, and a no-op for any macro
// whose definition line is absent. The string macro is always
// rewritten with the verbatim descriptor; the numeric macros are
// rewritten only when the descriptor parsed as vMAJOR.MINOR.PATCH, so
// an untagged checkout (bare-hash descriptor) never zeroes
// previously-correct numeric versions.
//
// [ReadFile] and [UpdateFile] wrap Stamp with the file handling the
// tool needs: the header must pre-exist (it is never created), and
// writes are atomic — temp file in the same directory, then rename —
// so a failed write cannot leave a truncated header. UpdateFile skips
// the write entirely when stamping changes nothing.
package stamp
