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
	"strings"
	"testing"
)

func newOpenAITestServer(t *testing.T, handler http.HandlerFunc) *OpenAIGenClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIGenClientWithConfig("sk-test", "test-model", srv.URL)
}

func TestOpenAIGenClient_Generate(t *testing.T) {
	client := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("missing bearer token, got %q", got)
		}
		var req openaiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model not forwarded: %q", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(openaiResponse{
			Choices: []openaiChoice{{
				Message:      openaiMessage{Role: "assistant", Content: "generated"},
				FinishReason: "stop",
			}},
		})
	})

	out, err := client.Generate(context.Background(), "prompt", GenerationParams{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "generated" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestOpenAIGenClient_Summarize_BoundsInPrompt(t *testing.T) {
	client := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req openaiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Fatalf("expected system+user messages, got %+v", req.Messages)
		}
		if !strings.Contains(req.Messages[1].Content, "at most 60") {
			t.Errorf("max bound not in prompt: %q", req.Messages[1].Content)
		}
		if req.MaxTokens == nil || *req.MaxTokens != 120 {
			t.Errorf("max tokens cap not set from bounds: %v", req.MaxTokens)
		}
		json.NewEncoder(w).Encode(openaiResponse{
			Choices: []openaiChoice{{
				Message: openaiMessage{Role: "assistant", Content: "a summary"},
			}},
		})
	})

	got, err := client.Summarize(context.Background(), "document",
		LengthBounds{MinLength: 20, MaxLength: 60})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if got != "a summary" {
		t.Errorf("unexpected summary: %q", got)
	}
}

func TestOpenAIGenClient_NoChoices(t *testing.T) {
	client := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(openaiResponse{})
	})

	_, err := client.Generate(context.Background(), "prompt", GenerationParams{})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestOpenAIGenClient_ServerError(t *testing.T) {
	client := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Generate(context.Background(), "prompt", GenerationParams{})
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestOpenAIGenClient_APIErrorPayload(t *testing.T) {
	client := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(openaiResponse{
			Error: &openaiError{Type: "invalid_request_error", Message: "bad model"},
		})
	})

	_, err := client.Generate(context.Background(), "prompt", GenerationParams{})
	if err == nil || !strings.Contains(err.Error(), "invalid_request_error") {
		t.Fatalf("expected API error surfaced, got %v", err)
	}
}
