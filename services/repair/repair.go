// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package repair

import "strings"

// IndentUnit is one level of indentation in the repaired output.
const IndentUnit = "    "

// Repair applies the heuristic repair transform to a block of source text.
//
// Description:
//
//	Two deterministic passes over the lines:
//
//	Pass 1 — terminator insertion. Any line classified as
//	LineHeaderNeedsTerminator (def/if/for header without a trailing colon)
//	gets the terminator appended. As an extension beyond that header set,
//	bare re-entry keywords (else, elif, except, finally) missing the
//	terminator are completed the same way, so pass 2 still nests their
//	blocks correctly.
//
//	Pass 2 — re-indentation. A single nesting counter, starting at zero and
//	clamped at zero, drives indentation:
//
//	  blank line           emit as-is; if level > 0, decrement by one
//	  re-entry line        decrement (floor 0), emit at that level, increment
//	  line ending in ":"   emit at level, then increment
//	  any other line       emit at level, no change
//
//	Existing leading whitespace is discarded; indentation is re-derived
//	entirely from the counter. A single blank line closes at most one
//	level — multi-level dedent is outside the heuristic's rules.
//
// Inputs:
//   - text: The source text to repair. Any input is accepted, including
//     the empty string.
//
// Outputs:
//   - string: The repaired text. Always returned; this function is total
//     and never fails.
//
// Limitations:
//   - Output is NOT guaranteed to be syntactically valid. The transform is
//     a structural heuristic driven by line content, not a parser.
//   - Re-repairing already well-formed input can change it (idempotence is
//     not guaranteed: re-indentation trusts only the counter).
//
// Thread Safety: Safe for concurrent use (pure function).
func Repair(text string) string {
	lines := strings.Split(text, "\n")

	// Pass 1: terminator insertion.
	for i, line := range lines {
		switch ClassifyLine(line) {
		case LineHeaderNeedsTerminator:
			lines[i] = strings.TrimRight(line, " \t") + terminator
		case LineReentry:
			trimmed := strings.TrimSpace(line)
			if !strings.HasSuffix(trimmed, terminator) {
				lines[i] = strings.TrimRight(line, " \t") + terminator
			}
		}
	}

	// Pass 2: re-indentation from the nesting counter.
	level := 0
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		switch ClassifyLine(line) {
		case LineBlank:
			out = append(out, line)
			if level > 0 {
				level--
			}

		case LineReentry:
			if level > 0 {
				level--
			}
			out = append(out, indent(level)+strings.TrimSpace(line))
			level++

		default:
			trimmed := strings.TrimSpace(line)
			out = append(out, indent(level)+trimmed)
			if opensBlock(trimmed) {
				level++
			}
		}
	}

	return strings.Join(out, "\n")
}

// indent returns the leading whitespace for a nesting level.
func indent(level int) string {
	if level <= 0 {
		return ""
	}
	return strings.Repeat(IndentUnit, level)
}
