// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package inference defines task-oriented interfaces and clients for the
// pretrained inference services the SDLC scenarios delegate to: zero-shot
// classification, text generation, summarization, and extractive question
// answering. Services are opaque request/response collaborators; this
// package constrains only their input/output contract, never their
// internals.
//
// Thread Safety:
//
//	All interfaces in this package must be implemented as safe for
//	concurrent use.
package inference

import "context"

// Classifier assigns labels from a caller-provided set to a text without
// task-specific training (zero-shot classification).
//
// Thread Safety: Implementations must be safe for concurrent use.
type Classifier interface {
	// Classify ranks the candidate labels for the text.
	//
	// Inputs:
	//   - ctx: Context for cancellation and timeout.
	//   - text: The text to classify. Must be non-empty.
	//   - labels: Candidate label set. Must be non-empty.
	//
	// Outputs:
	//   - []LabelScore: Labels ranked by descending confidence, scores in [0,1].
	//   - error: ErrServiceUnavailable, ErrMalformedResponse, or a wrapped
	//     transport error.
	Classify(ctx context.Context, text string, labels []string) ([]LabelScore, error)
}

// Generator produces a text continuation for a prompt.
//
// Thread Safety: Implementations must be safe for concurrent use.
type Generator interface {
	// Generate returns generated text for the prompt.
	//
	// Inputs:
	//   - ctx: Context for cancellation and timeout.
	//   - prompt: The prompt text.
	//   - params: Length and sampling parameters.
	//
	// Outputs:
	//   - string: The generated continuation (prompt echo stripped).
	//   - error: Non-nil on failure.
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// Summarizer condenses a text within length bounds.
//
// Thread Safety: Implementations must be safe for concurrent use.
type Summarizer interface {
	// Summarize returns a summary of the text.
	//
	// Inputs:
	//   - ctx: Context for cancellation and timeout.
	//   - text: The text to summarize.
	//   - bounds: Minimum and maximum summary length.
	//
	// Outputs:
	//   - string: The summary text.
	//   - error: Non-nil on failure.
	Summarize(ctx context.Context, text string, bounds LengthBounds) (string, error)
}

// AnswerExtractor answers a question by selecting a span from a provided
// context text (extractive QA).
//
// Thread Safety: Implementations must be safe for concurrent use.
type AnswerExtractor interface {
	// Answer returns the answer span for the question.
	//
	// Inputs:
	//   - ctx: Context for cancellation and timeout.
	//   - question: The question text.
	//   - contextText: The context to extract the answer from.
	//
	// Outputs:
	//   - Answer: The extracted span with its confidence score.
	//   - error: Non-nil on failure.
	Answer(ctx context.Context, question, contextText string) (Answer, error)
}
