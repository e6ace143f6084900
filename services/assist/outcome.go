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

import (
	"errors"

	"github.com/AleutianAI/sdlc-assist/services/inference"
)

// Status classifies the result of a scenario call. Callers branch on it to
// decide whether to present the model output or a templated fallback — the
// substitution happens at the HTTP/CLI edge, never silently inside the
// scenario.
type Status int

const (
	// StatusSuccess means the scenario produced a usable result.
	StatusSuccess Status = iota

	// StatusServiceUnavailable means the backing inference service could not
	// be reached or was still loading the model.
	StatusServiceUnavailable

	// StatusMalformedResponse means the service answered but the payload did
	// not have the expected shape.
	StatusMalformedResponse
)

// String returns a stable lowercase name, safe for JSON fields and metric
// labels.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusServiceUnavailable:
		return "service_unavailable"
	case StatusMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// Outcome carries the status of a scenario call plus the underlying error
// when the status is not success.
type Outcome struct {
	Status Status
	Err    error
}

// OK reports whether the scenario succeeded.
func (o Outcome) OK() bool {
	return o.Status == StatusSuccess
}

// outcomeFor maps an inference error to an Outcome using the sentinel
// taxonomy. An unclassified error is treated as a malformed response: the
// service spoke, we could not make sense of it.
func outcomeFor(err error) Outcome {
	switch {
	case err == nil:
		return Outcome{Status: StatusSuccess}
	case errors.Is(err, inference.ErrServiceUnavailable):
		return Outcome{Status: StatusServiceUnavailable, Err: err}
	case errors.Is(err, inference.ErrMalformedResponse):
		return Outcome{Status: StatusMalformedResponse, Err: err}
	default:
		return Outcome{Status: StatusMalformedResponse, Err: err}
	}
}
