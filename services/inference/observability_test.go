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
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// withSpanRecorder installs an in-memory tracer provider for the test and
// restores the previous one afterwards.
func withSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestHFClient_Classify_EmitsSpan(t *testing.T) {
	recorder := withSpanRecorder(t)
	_, client := newHFTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(hfZeroShotResponse{
			Labels: []string{"functional"},
			Scores: []float64{0.95},
		})
	})

	if _, err := client.Classify(context.Background(), "text", []string{"functional"}); err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if got := spans[0].Name(); got != "inference.HFClient.Classify" {
		t.Errorf("unexpected span name: %q", got)
	}
}

func TestHFClient_FailedCall_RecordsSpanError(t *testing.T) {
	recorder := withSpanRecorder(t)
	_, client := newHFTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	if _, err := client.Generate(context.Background(), "prompt", GenerationParams{}); err == nil {
		t.Fatal("expected error")
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if len(spans[0].Events()) == 0 {
		t.Error("expected the error recorded as a span event")
	}
}

func TestClassifyInferenceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unavailable", ErrServiceUnavailable, "unavailable"},
		{"malformed", ErrMalformedResponse, "malformed"},
		{"deadline", context.DeadlineExceeded, "timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyInferenceError(tt.err); got != tt.want {
				t.Errorf("classifyInferenceError(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
