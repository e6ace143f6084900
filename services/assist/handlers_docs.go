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
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// =============================================================================
// Documentation Phase Handlers
// =============================================================================

// SummarizeRequest is the body of POST /v1/assist/docs/summarize. Exactly one
// of Text or Path must be set; Text wins when both are present.
type SummarizeRequest struct {
	// Text is document text to summarize directly.
	Text string `json:"text"`

	// Path is a server-local document to extract and summarize.
	Path string `json:"path"`
}

// SummarizeResponse carries the summary, or the templated fallback.
type SummarizeResponse struct {
	Status   string `json:"status"`
	Fallback bool   `json:"fallback,omitempty"`
	Summary  string `json:"summary"`
}

// HandleSummarizeDocument handles POST /v1/assist/docs/summarize.
//
// Response:
//
//	200 OK: SummarizeResponse (fallback=true when the summarizer is degraded)
//	400 Bad Request: Neither text nor path provided
//	422 Unprocessable Entity: Path given but the document cannot be read
func (h *Handlers) HandleSummarizeDocument(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := h.logger.With("request_id", requestID, "handler", "HandleSummarizeDocument")

	var req SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Text == "" && req.Path == "") {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "either text or path is required",
			Code:  "MISSING_PARAMETER",
		})
		return
	}

	text := req.Text
	if text == "" {
		extracted, err := h.assistant.ExtractDocument(c.Request.Context(), req.Path)
		if err != nil {
			logger.Warn("Document extraction failed",
				slog.String("path", req.Path),
				slog.String("error", err.Error()),
			)
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error: "document could not be read",
				Code:  "EXTRACTION_FAILED",
			})
			return
		}
		text = extracted
	}

	summary, outcome := h.assistant.SummarizeText(c.Request.Context(), text)
	resp := SummarizeResponse{
		Status:  outcome.Status.String(),
		Summary: TextOrFallback(summary, outcome, FallbackSummary, ScenarioSummarize),
	}
	if !outcome.OK() {
		logger.Warn("Summarization fell back", slog.String("status", resp.Status))
		resp.Fallback = true
	}
	c.JSON(http.StatusOK, resp)
}

// ExtractRequest is the body of POST /v1/assist/docs/extract.
type ExtractRequest struct {
	// Path is the server-local document to extract. Required.
	Path string `json:"path" binding:"required"`
}

// ExtractResponse carries the extracted plain text.
type ExtractResponse struct {
	Status string `json:"status"`
	Text   string `json:"text"`
}

// HandleExtractDocument handles POST /v1/assist/docs/extract.
//
// Response:
//
//	200 OK: ExtractResponse
//	400 Bad Request: Missing path
//	422 Unprocessable Entity: Document cannot be read
func (h *Handlers) HandleExtractDocument(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := h.logger.With("request_id", requestID, "handler", "HandleExtractDocument")

	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "path field is required",
			Code:  "MISSING_PARAMETER",
		})
		return
	}

	text, err := h.assistant.ExtractDocument(c.Request.Context(), req.Path)
	if err != nil {
		logger.Warn("Document extraction failed",
			slog.String("path", req.Path),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: "document could not be read",
			Code:  "EXTRACTION_FAILED",
		})
		return
	}

	c.JSON(http.StatusOK, ExtractResponse{Status: StatusSuccess.String(), Text: text})
}

// AnswerRequest is the body of POST /v1/assist/qa/answer.
type AnswerRequest struct {
	// Question to answer. Required.
	Question string `json:"question" binding:"required"`

	// Context is the passage to extract the answer from. Required.
	Context string `json:"context" binding:"required"`
}

// AnswerResponse carries the extracted answer span, or the templated
// fallback.
type AnswerResponse struct {
	Status   string  `json:"status"`
	Fallback bool    `json:"fallback,omitempty"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score,omitempty"`
	Start    int     `json:"start,omitempty"`
	End      int     `json:"end,omitempty"`
}

// HandleAnswerQuestion handles POST /v1/assist/qa/answer.
func (h *Handlers) HandleAnswerQuestion(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := h.logger.With("request_id", requestID, "handler", "HandleAnswerQuestion")

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "question and context fields are required",
			Code:  "MISSING_PARAMETER",
		})
		return
	}

	ans, outcome := h.assistant.AnswerQuestion(c.Request.Context(), req.Question, req.Context)
	resp := AnswerResponse{Status: outcome.Status.String()}
	if outcome.OK() {
		resp.Answer = ans.Text
		resp.Score = ans.Score
		resp.Start = ans.Start
		resp.End = ans.End
	} else {
		logger.Warn("Answer extraction fell back", slog.String("status", resp.Status))
		recordFallback(ScenarioAnswer)
		resp.Fallback = true
		resp.Answer = FallbackAnswer
	}
	c.JSON(http.StatusOK, resp)
}

// =============================================================================
// Pipeline
// =============================================================================

// PipelineRequest is the body of POST /v1/assist/pipeline.
type PipelineRequest struct {
	// Requirement is the statement run through all phases. Required.
	Requirement string `json:"requirement" binding:"required"`
}

// PipelinePhase is one phase's result within a pipeline response.
type PipelinePhase struct {
	Status   string `json:"status"`
	Fallback bool   `json:"fallback,omitempty"`
	Result   string `json:"result"`
}

// PipelineResponse carries the per-phase results of one lifecycle pass.
type PipelineResponse struct {
	Requirement    string        `json:"requirement"`
	Classification PipelinePhase `json:"classification"`
	Design         PipelinePhase `json:"design"`
	Summary        PipelinePhase `json:"summary"`
}

// HandlePipeline handles POST /v1/assist/pipeline.
//
// Response:
//
//	200 OK: PipelineResponse; degraded phases carry fallback=true
//	400 Bad Request: Missing requirement
func (h *Handlers) HandlePipeline(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := h.logger.With("request_id", requestID, "handler", "HandlePipeline")

	var req PipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "requirement field is required",
			Code:  "MISSING_PARAMETER",
		})
		return
	}

	result, err := h.assistant.RunPipeline(c.Request.Context(), req.Requirement)
	if err != nil {
		logger.Warn("Pipeline aborted", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "pipeline aborted",
			Code:  "PIPELINE_ABORTED",
		})
		return
	}

	resp := PipelineResponse{Requirement: result.Requirement}

	resp.Classification = PipelinePhase{Status: result.LabelStatus.String()}
	if result.LabelStatus == StatusSuccess && len(result.Labels) > 0 {
		resp.Classification.Result = result.Labels[0].Label
	} else {
		recordFallback(ScenarioClassify)
		resp.Classification.Fallback = true
		resp.Classification.Result = FallbackLabel
	}

	designOutcome := Outcome{Status: result.DesignStatus}
	resp.Design = PipelinePhase{
		Status:   result.DesignStatus.String(),
		Fallback: !designOutcome.OK(),
		Result:   TextOrFallback(result.Design, designOutcome, FallbackDesignSuggestion, ScenarioDesign),
	}

	summaryOutcome := Outcome{Status: result.SummaryStatus}
	resp.Summary = PipelinePhase{
		Status:   result.SummaryStatus.String(),
		Fallback: !summaryOutcome.OK(),
		Result:   TextOrFallback(result.Summary, summaryOutcome, FallbackSummary, ScenarioSummarize),
	}

	c.JSON(http.StatusOK, resp)
}

// =============================================================================
// Health
// =============================================================================

// HandleHealth handles GET /v1/assist/health. Liveness only.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleReady handles GET /v1/assist/ready. The service is ready as soon as
// its handles are wired; backing inference services are checked per request
// because hosted model availability fluctuates.
func (h *Handlers) HandleReady(c *gin.Context) {
	if h.assistant == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
