// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package repair implements the heuristic code-repair transform used by the
// bug-fix scenario. It appends missing block terminators to control-flow
// headers and re-derives indentation from a running nesting counter.
//
// The transform is a structural heuristic, not a parser. It guarantees only
// that its line-by-line rules are applied deterministically; it does NOT
// guarantee that the output is syntactically valid source code.
//
// Thread Safety:
//
//	All functions in this package are pure and safe for concurrent use.
package repair

import (
	"regexp"
	"strings"
)

// LineClass is the tagged classification of a single source line.
//
// Description:
//
//	Every line falls into exactly one class. The classifier is the single
//	source of truth for the transform's rules: both the terminator pass and
//	the re-indentation pass dispatch on LineClass rather than re-matching
//	patterns inline, so each rule is independently testable.
type LineClass int

const (
	// LineBlank is a line that is empty or whitespace-only.
	LineBlank LineClass = iota

	// LineHeaderNeedsTerminator is a control-flow header (def/if/for)
	// missing its trailing block terminator.
	LineHeaderNeedsTerminator

	// LineHeaderOk is a control-flow header that already ends with the
	// block terminator.
	LineHeaderOk

	// LineReentry is a level-neutral re-entry keyword (else, elif,
	// except, finally). It closes the current block and immediately opens
	// a sibling block at the same depth.
	LineReentry

	// LinePlain is any other non-blank line. Emitted at the current
	// nesting level with no level change unless it ends with the
	// terminator (a header form the classifier does not recognize).
	LinePlain
)

// String returns the human-readable name of the line class.
func (c LineClass) String() string {
	switch c {
	case LineBlank:
		return "blank"
	case LineHeaderNeedsTerminator:
		return "header_needs_terminator"
	case LineHeaderOk:
		return "header_ok"
	case LineReentry:
		return "reentry"
	case LinePlain:
		return "plain"
	default:
		return "unknown"
	}
}

// terminator is the token that ends a control-flow header line and opens a
// nested block.
const terminator = ":"

// headerPattern matches control-flow headers the transform knows how to
// complete: function definitions, conditionals, and loops. Anchored at the
// start of the trimmed line so identifiers like "definition" or "iffy" do
// not match.
//
// IMPORTANT: the pattern set is deliberately narrow. The source heuristic
// only completes def/if/for headers; while, with, try, class, and friends
// pass through as plain lines. Widening the set changes observable output
// of the bug-fix scenario.
var headerPattern = regexp.MustCompile(`^(def|if|for)\b`)

// reentryPattern matches level-neutral re-entry keywords, bare or with a
// trailing terminator and optional condition (elif x > 1:).
var reentryPattern = regexp.MustCompile(`^(else|elif|except|finally)\b`)

// ClassifyLine classifies a single source line.
//
// Description:
//
//	Classification works on the whitespace-trimmed content; leading
//	indentation never affects the class (indentation is re-derived by the
//	transform, not trusted). Re-entry keywords are checked before the
//	generic terminator check because re-entry lines also end with the
//	terminator once repaired.
//
// Inputs:
//   - line: The raw line, with or without leading/trailing whitespace.
//
// Outputs:
//   - LineClass: Exactly one class per line.
//
// Thread Safety: Safe for concurrent use (pure function).
func ClassifyLine(line string) LineClass {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return LineBlank
	}

	if reentryPattern.MatchString(trimmed) {
		return LineReentry
	}

	if headerPattern.MatchString(trimmed) {
		if strings.HasSuffix(trimmed, terminator) {
			return LineHeaderOk
		}
		return LineHeaderNeedsTerminator
	}

	return LinePlain
}

// opensBlock reports whether a repaired line opens a nested block, i.e.
// ends with the block terminator after trimming. This covers headers the
// classifier recognizes and ones it does not (while, try, class), so the
// re-indentation pass still nests under them.
func opensBlock(trimmed string) bool {
	return strings.HasSuffix(trimmed, terminator)
}
