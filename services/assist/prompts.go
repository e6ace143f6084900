// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package assist

import "fmt"

// =============================================================================
// Prompt templates
// =============================================================================
//
// Scenario prompts are deliberately plain: the backing models are small
// general-purpose checkpoints, and elaborate instruction framing measurably
// degrades their output. Each template keeps the user text at the end so
// generation continues from it.

// designPrompt frames a requirement for a high-level design suggestion.
func designPrompt(requirement string) string {
	return fmt.Sprintf(
		"Suggest a high-level software design (components and responsibilities) for the following requirement:\n%s\nDesign:",
		requirement,
	)
}

// codePrompt frames a task description for code generation.
func codePrompt(description string) string {
	return fmt.Sprintf(
		"Write a Python function for the following task:\n%s\n\ndef",
		description,
	)
}

// =============================================================================
// Templated fallbacks
// =============================================================================
//
// When a scenario reports ServiceUnavailable or MalformedResponse, the HTTP
// and CLI layers substitute these texts instead of failing the request. The
// texts are honest about being fallbacks; they never masquerade as model
// output.

const (
	// FallbackDesignSuggestion is returned when design generation fails.
	FallbackDesignSuggestion = "Design suggestion unavailable. As a starting point, consider a layered design: an input validation layer, a core processing module, and an output/reporting module."

	// FallbackCodeSuggestion is returned when code generation fails.
	FallbackCodeSuggestion = "# Code generation unavailable.\n# Sketch the function signature and fill in the logic manually."

	// FallbackSummary is returned when summarization fails.
	FallbackSummary = "Summary unavailable. Refer to the source document directly."

	// FallbackAnswer is returned when answer extraction fails.
	FallbackAnswer = "No answer could be extracted. Check the question against the provided context."

	// FallbackLabel is the classification label reported when zero-shot
	// classification fails.
	FallbackLabel = "unclassified"
)
