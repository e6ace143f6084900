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

import (
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// inferenceTracerName is the shared OTel tracer name for all inference clients.
const inferenceTracerName = "assist.inference"

// Task label values for inference metrics. One value per task interface.
const (
	TaskClassify  = "classify"
	TaskGenerate  = "generate"
	TaskSummarize = "summarize"
	TaskAnswer    = "answer"
)

// Package-level Prometheus metrics for inference client operations.
// Auto-registered via promauto so no explicit registry wiring is needed.
var (
	// inferenceCallDuration measures the duration of inference API calls.
	//
	// Labels:
	//   - task: "classify", "generate", "summarize", "answer"
	//   - provider: "hf", "openai"
	//   - status: "success" or "error"
	inferenceCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "assist",
			Subsystem: "inference",
			Name:      "call_duration_seconds",
			Help:      "Duration of inference API calls in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"task", "provider", "status"},
	)

	// inferenceCallsTotal counts the total number of inference API calls.
	//
	// Labels:
	//   - task: "classify", "generate", "summarize", "answer"
	//   - provider: "hf", "openai"
	//   - status: "success" or "error"
	inferenceCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assist",
			Subsystem: "inference",
			Name:      "calls_total",
			Help:      "Total number of inference API calls.",
		},
		[]string{"task", "provider", "status"},
	)

	// inferenceErrorsTotal counts inference errors by type.
	//
	// Labels:
	//   - task: "classify", "generate", "summarize", "answer"
	//   - provider: "hf", "openai"
	//   - error_type: "unavailable", "malformed", "timeout", "auth", "rate_limit", "unknown"
	inferenceErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assist",
			Subsystem: "inference",
			Name:      "errors_total",
			Help:      "Total inference errors by type.",
		},
		[]string{"task", "provider", "error_type"},
	)
)

// recordInferenceMetrics records duration, call count, and error metrics
// for a single inference call.
//
// Thread Safety: Safe for concurrent use.
func recordInferenceMetrics(task, provider string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
		inferenceErrorsTotal.WithLabelValues(task, provider, classifyInferenceError(err)).Inc()
	}
	inferenceCallDuration.WithLabelValues(task, provider, status).Observe(duration.Seconds())
	inferenceCallsTotal.WithLabelValues(task, provider, status).Inc()
}

// classifyInferenceError maps an error to a label-safe error type string.
//
// Description:
//
//	Sentinel errors map directly; everything else falls back to message
//	inspection. Used for Prometheus labels to avoid high cardinality.
//
// Inputs:
//
//	err - The error to classify. May be nil.
//
// Outputs:
//
//	string - One of: "unavailable", "malformed", "timeout", "auth",
//	         "rate_limit", "unknown". Returns empty string for nil error.
//
// Thread Safety: Safe for concurrent use.
func classifyInferenceError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrServiceUnavailable) {
		return "unavailable"
	}
	if errors.Is(err, ErrMalformedResponse) {
		return "malformed"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "context canceled") ||
		strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "returned status 401") ||
		strings.Contains(msg, "returned status 403") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "api key") ||
		strings.Contains(msg, "api token"):
		return "auth"
	case strings.Contains(msg, "returned status 429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests"):
		return "rate_limit"
	default:
		return "unknown"
	}
}
