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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// =============================================================================
// OpenAI-Compatible Wire Types
// =============================================================================

const defaultOpenAIBaseURL = "https://api.openai.com/v1/chat/completions"

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	Temperature *float64        `json:"temperature,omitempty"`
	MaxTokens   *int            `json:"max_completion_tokens,omitempty"`
	TopP        *float64        `json:"top_p,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	ID      string         `json:"id"`
	Choices []openaiChoice `json:"choices"`
	Error   *openaiError   `json:"error,omitempty"`
}

type openaiChoice struct {
	Index        int           `json:"index"`
	Message      openaiMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openaiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// =============================================================================
// Client Implementation
// =============================================================================

// summarySystemPrompt instructs the chat backend to behave like a
// summarization pipeline: output only the summary, within the length bounds
// the user message states.
const summarySystemPrompt = "You are a summarization engine. Reply with only the summary of the user's text, nothing else."

// OpenAIGenClient implements Generator and Summarizer against any
// OpenAI-compatible chat-completions endpoint using raw net/http.
//
// Description:
//
//	Alternative generation backend for deployments with an OpenAI-compatible
//	server (including local ones). Summarization is expressed as a chat
//	request with a fixed system prompt; the zero-shot and extractive QA
//	tasks stay on the HF pipelines, which are purpose-built for them.
//
// Thread Safety: OpenAIGenClient is safe for concurrent use.
type OpenAIGenClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

// NewOpenAIGenClient creates a client from environment variables.
//
// Description:
//
//	Reads OPENAI_API_KEY and OPENAI_MODEL from the environment.
//	Defaults to "gpt-4o-mini" if OPENAI_MODEL is not set.
//
// Outputs:
//   - *OpenAIGenClient: The configured client.
//   - error: Non-nil if OPENAI_API_KEY is missing.
func NewOpenAIGenClient() (*OpenAIGenClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	model := os.Getenv("OPENAI_MODEL")
	if apiKey == "" {
		slog.Warn("OpenAI API Key is empty. OpenAI generation backend will not function.")
		return nil, fmt.Errorf("openai: API key is missing (OPENAI_API_KEY)")
	}
	if model == "" {
		model = "gpt-4o-mini"
		slog.Warn("OPENAI_MODEL not set, defaulting to gpt-4o-mini")
	}
	slog.Info("Initializing OpenAI generation client", "model", model)
	return &OpenAIGenClient{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultOpenAIBaseURL,
	}, nil
}

// NewOpenAIGenClientWithConfig creates a client with explicit configuration.
//
// Inputs:
//   - apiKey: The API key.
//   - model: The model name.
//   - baseURL: The full chat-completions URL.
//
// Outputs:
//   - *OpenAIGenClient: The configured client.
func NewOpenAIGenClientWithConfig(apiKey, model, baseURL string) *OpenAIGenClient {
	return &OpenAIGenClient{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
	}
}

// Generate implements the Generator interface via a single-turn chat request.
//
// Thread Safety: This method is safe for concurrent use.
func (o *OpenAIGenClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	ctx, span := otel.Tracer(inferenceTracerName).Start(ctx, "inference.OpenAIGenClient.Generate",
		oteltrace.WithAttributes(
			attribute.String("model", o.model),
			attribute.Int("prompt_len", len(prompt)),
		),
	)
	defer span.End()

	start := time.Now()
	text, err := o.chat(ctx, []openaiMessage{
		{Role: "user", Content: prompt},
	}, params)
	finishSpan(span, err)
	recordInferenceMetrics(TaskGenerate, "openai", time.Since(start), err)
	return text, err
}

// Summarize implements the Summarizer interface.
//
// Description:
//
//	Length bounds are expressed through the user message (the completions
//	API has no min_length parameter) and MaxLength caps the completion
//	tokens as a hard upper bound.
//
// Thread Safety: This method is safe for concurrent use.
func (o *OpenAIGenClient) Summarize(ctx context.Context, text string, bounds LengthBounds) (string, error) {
	ctx, span := otel.Tracer(inferenceTracerName).Start(ctx, "inference.OpenAIGenClient.Summarize",
		oteltrace.WithAttributes(
			attribute.String("model", o.model),
			attribute.Int("text_len", len(text)),
		),
	)
	defer span.End()

	userMsg := fmt.Sprintf("Summarize in at most %d and at least %d words:\n\n%s",
		bounds.MaxLength, bounds.MinLength, text)

	params := GenerationParams{}
	if bounds.MaxLength > 0 {
		// Rough words-to-tokens margin so the cap does not truncate mid-sentence.
		maxTokens := bounds.MaxLength * 2
		params.MaxNewTokens = &maxTokens
	}

	start := time.Now()
	summary, err := o.chat(ctx, []openaiMessage{
		{Role: "system", Content: summarySystemPrompt},
		{Role: "user", Content: userMsg},
	}, params)
	finishSpan(span, err)
	recordInferenceMetrics(TaskSummarize, "openai", time.Since(start), err)
	return summary, err
}

// chat sends a chat-completions request and returns the assistant text.
func (o *OpenAIGenClient) chat(ctx context.Context, messages []openaiMessage, params GenerationParams) (string, error) {
	reqPayload := openaiRequest{
		Model:    o.model,
		Messages: messages,
	}
	if params.Temperature != nil {
		reqPayload.Temperature = params.Temperature
	}
	if params.MaxNewTokens != nil {
		reqPayload.MaxTokens = params.MaxNewTokens
	}
	if params.TopP != nil {
		reqPayload.TopP = params.TopP
	}

	reqBody, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("openai: marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.baseURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("openai: creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openai: HTTP request failed (%v): %w", err, ErrServiceUnavailable)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openai: reading response body: %w", err)
	}

	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("openai: API returned status %d: %w", resp.StatusCode, ErrServiceUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai: API returned status %d: %s",
			resp.StatusCode, SafeLogString(string(bodyBytes)))
	}

	var apiResp openaiResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return "", fmt.Errorf("openai: parsing response JSON: %w", ErrMalformedResponse)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("openai: API error: %s - %s",
			apiResp.Error.Type, SafeLogString(apiResp.Error.Message))
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("openai: returned no choices: %w", ErrMalformedResponse)
	}

	slog.Debug("Received OpenAI response",
		slog.String("finish_reason", apiResp.Choices[0].FinishReason),
		slog.Int("response_len", len(apiResp.Choices[0].Message.Content)),
	)
	return apiResp.Choices[0].Message.Content, nil
}
