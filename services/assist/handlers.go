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
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// =============================================================================
// Shared HTTP Types
// =============================================================================

// ErrorResponse is the uniform error body for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// getOrCreateRequestID returns the inbound X-Request-ID, minting one when
// the caller did not send any. The ID is echoed on the response so clients
// can correlate logs.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}

// =============================================================================
// Handlers
// =============================================================================

// Handlers is the HTTP surface over the Assistant.
//
// Description:
//
//	Handlers validate input and translate Outcomes into responses. Scenario
//	degradation is fail-open: the response stays 200 with status and
//	fallback fields set, so a demo client never breaks because a hosted
//	model is cold. Only invalid input and document extraction failures
//	produce error statuses.
//
// Thread Safety: Safe for concurrent use.
type Handlers struct {
	assistant *Assistant
	logger    *slog.Logger
}

// NewHandlers creates the HTTP surface over an Assistant.
func NewHandlers(assistant *Assistant, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{assistant: assistant, logger: logger}
}

// =============================================================================
// Requirements Phase
// =============================================================================

// ClassifyRequest is the body of POST /v1/assist/requirements/classify.
type ClassifyRequest struct {
	// Text is the requirement statement to classify. Required.
	Text string `json:"text" binding:"required"`
}

// ClassifyResponse carries ranked labels, or the fallback label when the
// classifier is degraded.
type ClassifyResponse struct {
	Status   string        `json:"status"`
	Fallback bool          `json:"fallback,omitempty"`
	TopLabel string        `json:"top_label"`
	Labels   []LabelResult `json:"labels,omitempty"`
}

// LabelResult is one ranked classification label.
type LabelResult struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// HandleClassifyRequirement handles POST /v1/assist/requirements/classify.
//
// Response:
//
//	200 OK: ClassifyResponse (fallback=true when the classifier is degraded)
//	400 Bad Request: Missing text
func (h *Handlers) HandleClassifyRequirement(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := h.logger.With("request_id", requestID, "handler", "HandleClassifyRequirement")

	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "text field is required",
			Code:  "MISSING_PARAMETER",
		})
		return
	}

	ranked, outcome := h.assistant.ClassifyRequirement(c.Request.Context(), req.Text)
	resp := ClassifyResponse{Status: outcome.Status.String()}
	if outcome.OK() {
		resp.TopLabel = ranked[0].Label
		for _, ls := range ranked {
			resp.Labels = append(resp.Labels, LabelResult{Label: ls.Label, Score: ls.Score})
		}
	} else {
		logger.Warn("Classification fell back", slog.String("status", resp.Status))
		recordFallback(ScenarioClassify)
		resp.Fallback = true
		resp.TopLabel = FallbackLabel
	}
	c.JSON(http.StatusOK, resp)
}

// =============================================================================
// Design and Implementation Phases
// =============================================================================

// GenerateRequest is the body of the design and code generation endpoints.
type GenerateRequest struct {
	// Text is the requirement or task description. Required.
	Text string `json:"text" binding:"required"`
}

// GenerateResponse carries generated text, or a templated fallback when the
// generator is degraded.
type GenerateResponse struct {
	Status   string `json:"status"`
	Fallback bool   `json:"fallback,omitempty"`
	Result   string `json:"result"`
}

// HandleSuggestDesign handles POST /v1/assist/design/suggest.
func (h *Handlers) HandleSuggestDesign(c *gin.Context) {
	h.handleGenerate(c, "HandleSuggestDesign", ScenarioDesign,
		FallbackDesignSuggestion, h.assistant.SuggestDesign)
}

// HandleGenerateCode handles POST /v1/assist/code/generate.
func (h *Handlers) HandleGenerateCode(c *gin.Context) {
	h.handleGenerate(c, "HandleGenerateCode", ScenarioCode,
		FallbackCodeSuggestion, h.assistant.GenerateCode)
}

// handleGenerate is the shared body of the two generation endpoints: bind,
// run, substitute the scenario's fallback on degradation.
func (h *Handlers) handleGenerate(
	c *gin.Context,
	handlerName, scenario, fallback string,
	run func(ctx context.Context, text string) (string, Outcome),
) {
	requestID := getOrCreateRequestID(c)
	logger := h.logger.With("request_id", requestID, "handler", handlerName)

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "text field is required",
			Code:  "MISSING_PARAMETER",
		})
		return
	}

	out, outcome := run(c.Request.Context(), req.Text)
	resp := GenerateResponse{
		Status: outcome.Status.String(),
		Result: TextOrFallback(out, outcome, fallback, scenario),
	}
	if !outcome.OK() {
		logger.Warn("Generation fell back", slog.String("status", resp.Status))
		resp.Fallback = true
	}
	c.JSON(http.StatusOK, resp)
}

// RepairRequest is the body of POST /v1/assist/code/repair.
type RepairRequest struct {
	// Code is the snippet to repair. Required.
	Code string `json:"code" binding:"required"`
}

// RepairResponse carries the repaired snippet.
type RepairResponse struct {
	Status   string `json:"status"`
	Repaired string `json:"repaired"`
}

// HandleRepairCode handles POST /v1/assist/code/repair.
//
// Response:
//
//	200 OK: RepairResponse. The transform is local and total; this endpoint
//	never degrades.
//	400 Bad Request: Missing code
func (h *Handlers) HandleRepairCode(c *gin.Context) {
	getOrCreateRequestID(c)

	var req RepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "code field is required",
			Code:  "MISSING_PARAMETER",
		})
		return
	}

	c.JSON(http.StatusOK, RepairResponse{
		Status:   StatusSuccess.String(),
		Repaired: h.assistant.RepairCode(req.Code),
	})
}
