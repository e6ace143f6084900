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
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// =============================================================================
// Hugging Face Inference API Wire Types
// =============================================================================

const defaultHFBaseURL = "https://api-inference.huggingface.co/models"

type hfZeroShotRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters hfZeroShotParams    `json:"parameters"`
	Options    *hfInferenceOptions `json:"options,omitempty"`
}

type hfZeroShotParams struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label,omitempty"`
}

type hfZeroShotResponse struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

type hfGenerationRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters hfGenerationParams  `json:"parameters"`
	Options    *hfInferenceOptions `json:"options,omitempty"`
}

type hfGenerationParams struct {
	MaxNewTokens   *int     `json:"max_new_tokens,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
	TopP           *float64 `json:"top_p,omitempty"`
	DoSample       bool     `json:"do_sample"`
	ReturnFullText bool     `json:"return_full_text"`
}

type hfGeneratedText struct {
	GeneratedText string `json:"generated_text"`
}

type hfSummarizationRequest struct {
	Inputs     string                `json:"inputs"`
	Parameters hfSummarizationParams `json:"parameters"`
	Options    *hfInferenceOptions   `json:"options,omitempty"`
}

type hfSummarizationParams struct {
	MinLength int `json:"min_length,omitempty"`
	MaxLength int `json:"max_length,omitempty"`
}

type hfSummaryText struct {
	SummaryText string `json:"summary_text"`
}

type hfQARequest struct {
	Inputs  hfQAInputs          `json:"inputs"`
	Options *hfInferenceOptions `json:"options,omitempty"`
}

type hfQAInputs struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

type hfQAResponse struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
}

// hfInferenceOptions tunes serverless inference behavior. WaitForModel makes
// the API block while a cold model loads instead of returning 503.
type hfInferenceOptions struct {
	WaitForModel bool `json:"wait_for_model,omitempty"`
	UseCache     bool `json:"use_cache,omitempty"`
}

type hfErrorResponse struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time,omitempty"`
}

// =============================================================================
// Client Implementation
// =============================================================================

// HFClient calls the Hugging Face Inference API using raw net/http.
//
// Description:
//
//	Uses the serverless Inference API REST endpoints directly without
//	third-party SDKs. One HFClient is bound to one model and one task; the
//	Factory creates a separate client per task role so each handle carries
//	its own configuration instead of sharing ambient pipeline state.
//
// Thread Safety: HFClient is safe for concurrent use.
type HFClient struct {
	httpClient *http.Client
	apiToken   string
	model      string
	baseURL    string
}

// NewHFClient creates an HFClient from environment variables.
//
// Description:
//
//	Reads HF_API_TOKEN from the environment. The token may be empty — the
//	serverless API accepts unauthenticated requests at a lower rate limit,
//	so unlike the cloud chat providers a missing token is a warning, not an
//	error.
//
// Inputs:
//   - model: The model identifier (e.g. "facebook/bart-large-mnli").
//
// Outputs:
//   - *HFClient: The configured client.
func NewHFClient(model string) *HFClient {
	token := os.Getenv("HF_API_TOKEN")
	if token == "" {
		slog.Warn("HF_API_TOKEN not set, using unauthenticated rate limits",
			slog.String("model", model))
	}
	return &HFClient{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		apiToken:   token,
		model:      model,
		baseURL:    defaultHFBaseURL,
	}
}

// NewHFClientWithConfig creates an HFClient with explicit configuration.
//
// Description:
//
//	Creates a client without reading environment variables. Useful for
//	testing with mock servers or when configuration comes from a source
//	other than environment variables.
//
// Inputs:
//   - token: The API token. May be empty.
//   - model: The model identifier.
//   - baseURL: The base URL for API requests (no trailing slash).
//
// Outputs:
//   - *HFClient: The configured client.
func NewHFClientWithConfig(token, model, baseURL string) *HFClient {
	return &HFClient{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		apiToken:   token,
		model:      model,
		baseURL:    baseURL,
	}
}

// Model returns the model identifier this client is bound to.
func (h *HFClient) Model() string { return h.model }

// Classify implements the Classifier interface via zero-shot classification.
//
// Thread Safety: This method is safe for concurrent use.
func (h *HFClient) Classify(ctx context.Context, text string, labels []string) ([]LabelScore, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("hf: candidate label set is empty")
	}

	ctx, span := otel.Tracer(inferenceTracerName).Start(ctx, "inference.HFClient.Classify",
		oteltrace.WithAttributes(
			attribute.String("model", h.model),
			attribute.Int("label_count", len(labels)),
		),
	)
	defer span.End()

	reqPayload := hfZeroShotRequest{
		Inputs:     text,
		Parameters: hfZeroShotParams{CandidateLabels: labels},
		Options:    &hfInferenceOptions{WaitForModel: true},
	}

	start := time.Now()
	body, err := h.post(ctx, reqPayload)
	if err != nil {
		finishSpan(span, err)
		recordInferenceMetrics(TaskClassify, "hf", time.Since(start), err)
		return nil, err
	}

	var apiResp hfZeroShotResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		err = fmt.Errorf("hf: parsing zero-shot response: %w", ErrMalformedResponse)
		finishSpan(span, err)
		recordInferenceMetrics(TaskClassify, "hf", time.Since(start), err)
		return nil, err
	}
	if len(apiResp.Labels) == 0 || len(apiResp.Labels) != len(apiResp.Scores) {
		err = fmt.Errorf("hf: labels/scores mismatch (%d vs %d): %w",
			len(apiResp.Labels), len(apiResp.Scores), ErrMalformedResponse)
		finishSpan(span, err)
		recordInferenceMetrics(TaskClassify, "hf", time.Since(start), err)
		return nil, err
	}

	ranked := make([]LabelScore, 0, len(apiResp.Labels))
	for i, label := range apiResp.Labels {
		score := apiResp.Scores[i]
		if score < 0 || score > 1 {
			err = fmt.Errorf("hf: score %f outside [0,1]: %w", score, ErrMalformedResponse)
			finishSpan(span, err)
			recordInferenceMetrics(TaskClassify, "hf", time.Since(start), err)
			return nil, err
		}
		ranked = append(ranked, LabelScore{Label: label, Score: score})
	}

	recordInferenceMetrics(TaskClassify, "hf", time.Since(start), nil)
	slog.Debug("Zero-shot classification complete",
		slog.String("model", h.model),
		slog.String("top_label", ranked[0].Label),
		slog.Float64("top_score", ranked[0].Score),
	)
	return ranked, nil
}

// Generate implements the Generator interface.
//
// Thread Safety: This method is safe for concurrent use.
func (h *HFClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	ctx, span := otel.Tracer(inferenceTracerName).Start(ctx, "inference.HFClient.Generate",
		oteltrace.WithAttributes(
			attribute.String("model", h.model),
			attribute.Int("prompt_len", len(prompt)),
		),
	)
	defer span.End()

	reqPayload := hfGenerationRequest{
		Inputs: prompt,
		Parameters: hfGenerationParams{
			MaxNewTokens: params.MaxNewTokens,
			Temperature:  params.Temperature,
			TopP:         params.TopP,
			DoSample:     params.DoSample,
			// The scenarios post-process the continuation only; the prompt
			// echo is stripped server-side.
			ReturnFullText: false,
		},
		Options: &hfInferenceOptions{WaitForModel: true},
	}

	start := time.Now()
	body, err := h.post(ctx, reqPayload)
	if err != nil {
		finishSpan(span, err)
		recordInferenceMetrics(TaskGenerate, "hf", time.Since(start), err)
		return "", err
	}

	var apiResp []hfGeneratedText
	if err := json.Unmarshal(body, &apiResp); err != nil || len(apiResp) == 0 {
		err = fmt.Errorf("hf: parsing generation response: %w", ErrMalformedResponse)
		finishSpan(span, err)
		recordInferenceMetrics(TaskGenerate, "hf", time.Since(start), err)
		return "", err
	}

	recordInferenceMetrics(TaskGenerate, "hf", time.Since(start), nil)
	return apiResp[0].GeneratedText, nil
}

// Summarize implements the Summarizer interface.
//
// Thread Safety: This method is safe for concurrent use.
func (h *HFClient) Summarize(ctx context.Context, text string, bounds LengthBounds) (string, error) {
	ctx, span := otel.Tracer(inferenceTracerName).Start(ctx, "inference.HFClient.Summarize",
		oteltrace.WithAttributes(
			attribute.String("model", h.model),
			attribute.Int("text_len", len(text)),
			attribute.Int("max_length", bounds.MaxLength),
		),
	)
	defer span.End()

	reqPayload := hfSummarizationRequest{
		Inputs: text,
		Parameters: hfSummarizationParams{
			MinLength: bounds.MinLength,
			MaxLength: bounds.MaxLength,
		},
		Options: &hfInferenceOptions{WaitForModel: true},
	}

	start := time.Now()
	body, err := h.post(ctx, reqPayload)
	if err != nil {
		finishSpan(span, err)
		recordInferenceMetrics(TaskSummarize, "hf", time.Since(start), err)
		return "", err
	}

	var apiResp []hfSummaryText
	if err := json.Unmarshal(body, &apiResp); err != nil || len(apiResp) == 0 {
		err = fmt.Errorf("hf: parsing summarization response: %w", ErrMalformedResponse)
		finishSpan(span, err)
		recordInferenceMetrics(TaskSummarize, "hf", time.Since(start), err)
		return "", err
	}

	recordInferenceMetrics(TaskSummarize, "hf", time.Since(start), nil)
	return apiResp[0].SummaryText, nil
}

// Answer implements the AnswerExtractor interface.
//
// Thread Safety: This method is safe for concurrent use.
func (h *HFClient) Answer(ctx context.Context, question, contextText string) (Answer, error) {
	ctx, span := otel.Tracer(inferenceTracerName).Start(ctx, "inference.HFClient.Answer",
		oteltrace.WithAttributes(
			attribute.String("model", h.model),
			attribute.Int("context_len", len(contextText)),
		),
	)
	defer span.End()

	reqPayload := hfQARequest{
		Inputs:  hfQAInputs{Question: question, Context: contextText},
		Options: &hfInferenceOptions{WaitForModel: true},
	}

	start := time.Now()
	body, err := h.post(ctx, reqPayload)
	if err != nil {
		finishSpan(span, err)
		recordInferenceMetrics(TaskAnswer, "hf", time.Since(start), err)
		return Answer{}, err
	}

	var apiResp hfQAResponse
	if err := json.Unmarshal(body, &apiResp); err != nil || apiResp.Answer == "" {
		err = fmt.Errorf("hf: parsing QA response: %w", ErrMalformedResponse)
		finishSpan(span, err)
		recordInferenceMetrics(TaskAnswer, "hf", time.Since(start), err)
		return Answer{}, err
	}

	recordInferenceMetrics(TaskAnswer, "hf", time.Since(start), nil)
	return Answer{
		Text:  apiResp.Answer,
		Score: apiResp.Score,
		Start: apiResp.Start,
		End:   apiResp.End,
	}, nil
}

// post sends a JSON payload to the model endpoint and returns the raw
// response body.
//
// Description:
//
//	Maps transport failures and 5xx/503 statuses to ErrServiceUnavailable so
//	callers can distinguish "backend is down or loading" from "backend
//	answered garbage" (ErrMalformedResponse). Response bodies that reach a
//	log line pass through SafeLogString first.
func (h *HFClient) post(ctx context.Context, payload any) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("hf: marshaling request: %w", err)
	}

	url := h.baseURL + "/" + h.model
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("hf: creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if h.apiToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+h.apiToken)
	}

	resp, err := h.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("hf: HTTP request failed (%v): %w", err, ErrServiceUnavailable)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("hf: reading response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return bodyBytes, nil

	case resp.StatusCode == http.StatusServiceUnavailable:
		// Cold model still loading. estimated_time tells the caller how
		// long a retry should wait.
		var apiErr hfErrorResponse
		_ = json.Unmarshal(bodyBytes, &apiErr)
		slog.Warn("HF model loading",
			slog.String("model", h.model),
			slog.Float64("estimated_time_s", apiErr.EstimatedTime),
		)
		return nil, fmt.Errorf("hf: model %s loading (est %.0fs): %w",
			h.model, apiErr.EstimatedTime, ErrServiceUnavailable)

	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("hf: API returned status %d: %w", resp.StatusCode, ErrServiceUnavailable)

	default:
		return nil, fmt.Errorf("hf: API returned status %d: %s",
			resp.StatusCode, SafeLogString(string(bodyBytes)))
	}
}

// finishSpan records an error outcome on a span. Success outcomes leave the
// span status unset, matching the adapter convention.
func finishSpan(span oteltrace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
