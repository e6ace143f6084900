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
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newHFTestServer returns a mock inference endpoint and a client bound to it.
func newHFTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *HFClient) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewHFClientWithConfig("hf_testtoken", "test/model", srv.URL)
	return srv, client
}

func TestHFClient_Classify(t *testing.T) {
	_, client := newHFTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/test/model" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req hfZeroShotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if len(req.Parameters.CandidateLabels) != 2 {
			t.Errorf("expected 2 candidate labels, got %d", len(req.Parameters.CandidateLabels))
		}
		json.NewEncoder(w).Encode(hfZeroShotResponse{
			Sequence: req.Inputs,
			Labels:   []string{"functional", "non-functional"},
			Scores:   []float64{0.91, 0.09},
		})
	})

	ranked, err := client.Classify(context.Background(),
		"The system shall respond within 2 seconds",
		[]string{"functional", "non-functional"})
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 results, got %d", len(ranked))
	}
	if ranked[0].Label != "functional" || ranked[0].Score != 0.91 {
		t.Errorf("unexpected top label: %+v", ranked[0])
	}
}

func TestHFClient_Classify_EmptyLabels(t *testing.T) {
	client := NewHFClientWithConfig("", "test/model", "http://unused")
	if _, err := client.Classify(context.Background(), "text", nil); err == nil {
		t.Fatal("expected error for empty label set")
	}
}

func TestHFClient_Classify_ScoreOutOfRange(t *testing.T) {
	_, client := newHFTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(hfZeroShotResponse{
			Labels: []string{"a"},
			Scores: []float64{1.7},
		})
	})

	_, err := client.Classify(context.Background(), "text", []string{"a"})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestHFClient_Classify_LabelScoreMismatch(t *testing.T) {
	_, client := newHFTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(hfZeroShotResponse{
			Labels: []string{"a", "b"},
			Scores: []float64{0.5},
		})
	})

	_, err := client.Classify(context.Background(), "text", []string{"a", "b"})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestHFClient_Generate(t *testing.T) {
	_, client := newHFTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer hf_testtoken" {
			t.Errorf("missing bearer token, got %q", got)
		}
		json.NewEncoder(w).Encode([]hfGeneratedText{
			{GeneratedText: "def add(a, b):\n    return a + b"},
		})
	})

	maxTokens := 64
	out, err := client.Generate(context.Background(), "Write an add function",
		GenerationParams{MaxNewTokens: &maxTokens, DoSample: true})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out == "" {
		t.Fatal("expected non-empty generation")
	}
}

func TestHFClient_Summarize(t *testing.T) {
	_, client := newHFTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req hfSummarizationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Parameters.MaxLength != 60 || req.Parameters.MinLength != 20 {
			t.Errorf("length bounds not forwarded: %+v", req.Parameters)
		}
		json.NewEncoder(w).Encode([]hfSummaryText{{SummaryText: "short summary"}})
	})

	got, err := client.Summarize(context.Background(), "long document text",
		LengthBounds{MinLength: 20, MaxLength: 60})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if got != "short summary" {
		t.Errorf("unexpected summary: %q", got)
	}
}

func TestHFClient_Answer(t *testing.T) {
	_, client := newHFTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req hfQARequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Inputs.Question == "" || req.Inputs.Context == "" {
			t.Error("question/context not forwarded")
		}
		json.NewEncoder(w).Encode(hfQAResponse{
			Answer: "unit tests", Score: 0.83, Start: 10, End: 20,
		})
	})

	ans, err := client.Answer(context.Background(),
		"What verifies behavior?", "In this phase unit tests verify behavior.")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if ans.Text != "unit tests" || ans.Score != 0.83 {
		t.Errorf("unexpected answer: %+v", ans)
	}
}

func TestHFClient_ModelLoading503(t *testing.T) {
	_, client := newHFTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(hfErrorResponse{
			Error: "Model test/model is currently loading", EstimatedTime: 20,
		})
	})

	_, err := client.Generate(context.Background(), "prompt", GenerationParams{})
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestHFClient_ServerError(t *testing.T) {
	_, client := newHFTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Summarize(context.Background(), "text", LengthBounds{})
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestHFClient_ConnectionRefused(t *testing.T) {
	srv, client := newHFTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := client.Generate(context.Background(), "prompt", GenerationParams{})
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable for refused connection, got %v", err)
	}
}

func TestHFClient_MalformedBody(t *testing.T) {
	_, client := newHFTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := client.Answer(context.Background(), "q", "c")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}
