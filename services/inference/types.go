// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package inference

import "errors"

// =============================================================================
// Sentinel Errors
// =============================================================================

var (
	// ErrServiceUnavailable is returned when the inference backend cannot
	// serve the request right now (model loading, 5xx, connection refused).
	// Callers may substitute a fallback value or retry later.
	ErrServiceUnavailable = errors.New("inference: service unavailable")

	// ErrMalformedResponse is returned when the backend replied with a
	// payload that does not match the task's wire contract (missing fields,
	// empty candidate arrays, scores outside [0,1]).
	ErrMalformedResponse = errors.New("inference: malformed response")
)

// =============================================================================
// Task Parameter Types
// =============================================================================

// LabelScore pairs a candidate label with its confidence score.
//
// Thread Safety: LabelScore is a value type and safe to copy.
type LabelScore struct {
	// Label is the candidate label text.
	Label string `json:"label"`

	// Score is the confidence in [0,1].
	Score float64 `json:"score"`
}

// GenerationParams holds length and sampling parameters for text generation.
//
// Description:
//
//	Pointer fields distinguish "not set, use the service default" from an
//	explicit zero. Each service handle carries its configuration explicitly;
//	there is no ambient/default parameter state.
type GenerationParams struct {
	// MaxNewTokens limits the length of the generated continuation.
	MaxNewTokens *int

	// Temperature controls sampling randomness.
	Temperature *float64

	// TopP enables nucleus sampling when set.
	TopP *float64

	// DoSample enables sampling; when false the service decodes greedily.
	DoSample bool
}

// LengthBounds holds the minimum and maximum length for a summary.
type LengthBounds struct {
	// MinLength is the minimum summary length in tokens.
	MinLength int

	// MaxLength is the maximum summary length in tokens.
	MaxLength int
}

// Answer is the result of an extractive QA call.
//
// Thread Safety: Answer is a value type and safe to copy.
type Answer struct {
	// Text is the answer span extracted from the context.
	Text string `json:"answer"`

	// Score is the extraction confidence in [0,1].
	Score float64 `json:"score"`

	// Start and End are byte offsets of the span in the context text.
	Start int `json:"start"`
	End   int `json:"end"`
}
