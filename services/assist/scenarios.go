// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package assist orchestrates the SDLC assistance scenarios: requirement
// classification, design and code suggestion, heuristic code repair,
// document summarization, and question answering. Each scenario delegates
// to an injected inference client and reports an explicit Outcome; the
// transport layer decides whether to substitute a templated fallback.
package assist

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/sdlc-assist/services/document"
	"github.com/AleutianAI/sdlc-assist/services/inference"
	"github.com/AleutianAI/sdlc-assist/services/repair"
)

// =============================================================================
// Assistant
// =============================================================================

// ModelTags names the models behind each injected client, for cache keys and
// log lines. Tags, not handles — the clients themselves are opaque.
type ModelTags struct {
	Generator  string
	Summarizer string
}

// Deps carries everything an Assistant needs. All inference handles are
// required; Cache may be nil for uncached operation.
type Deps struct {
	Classifier inference.Classifier
	Generator  inference.Generator
	Summarizer inference.Summarizer
	Answerer   inference.AnswerExtractor
	Cache      *ResponseCache
	Config     Config
	Models     ModelTags
	Logger     *slog.Logger
}

// Assistant runs the SDLC assistance scenarios over injected inference
// handles.
//
// Description:
//
//	The assistant itself never substitutes fallback text: every scenario
//	returns its raw result plus an Outcome, and the caller chooses what a
//	degraded response looks like for its surface. RepairCode is the one
//	purely local scenario and cannot fail.
//
// Thread Safety: Safe for concurrent use; all fields are set at construction
// and never mutated.
type Assistant struct {
	classifier inference.Classifier
	generator  inference.Generator
	summarizer inference.Summarizer
	answerer   inference.AnswerExtractor
	cache      *ResponseCache
	cfg        Config
	models     ModelTags
	logger     *slog.Logger
}

// NewAssistant wires an Assistant from its dependencies.
func NewAssistant(deps Deps) *Assistant {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		classifier: deps.Classifier,
		generator:  deps.Generator,
		summarizer: deps.Summarizer,
		answerer:   deps.Answerer,
		cache:      deps.Cache,
		cfg:        deps.Config,
		models:     deps.Models,
		logger:     logger,
	}
}

// Labels returns the configured candidate label set.
func (a *Assistant) Labels() []string {
	return a.cfg.Labels
}

// =============================================================================
// Requirements Phase
// =============================================================================

// ClassifyRequirement runs zero-shot classification of a requirement
// statement over the configured label set.
//
// Outputs:
//   - []inference.LabelScore: Ranked labels, highest score first. Nil unless
//     the Outcome is success.
//   - Outcome: Success, or the degradation cause.
func (a *Assistant) ClassifyRequirement(ctx context.Context, text string) ([]inference.LabelScore, Outcome) {
	start := time.Now()
	ctx, span := otel.Tracer(scenarioTracerName).Start(ctx, "assist.ClassifyRequirement")
	defer span.End()

	ranked, err := a.classifier.Classify(ctx, text, a.cfg.Labels)
	outcome := outcomeFor(err)
	recordScenario(ScenarioClassify, start, outcome.Status)
	if !outcome.OK() {
		a.logger.Warn("Requirement classification degraded",
			slog.String("status", outcome.Status.String()),
			slog.String("error", outcome.Err.Error()),
		)
		return nil, outcome
	}

	span.SetAttributes(attribute.String("top_label", ranked[0].Label))
	return ranked, outcome
}

// =============================================================================
// Design and Implementation Phases
// =============================================================================

// SuggestDesign generates a high-level design suggestion for a requirement.
func (a *Assistant) SuggestDesign(ctx context.Context, requirement string) (string, Outcome) {
	return a.generate(ctx, ScenarioDesign, "assist.SuggestDesign", designPrompt(requirement))
}

// GenerateCode generates a code suggestion for a task description.
func (a *Assistant) GenerateCode(ctx context.Context, description string) (string, Outcome) {
	return a.generate(ctx, ScenarioCode, "assist.GenerateCode", codePrompt(description))
}

// generate is the shared body of the two generation scenarios: cache check,
// inference call, cache fill.
func (a *Assistant) generate(ctx context.Context, scenario, spanName, prompt string) (string, Outcome) {
	start := time.Now()
	ctx, span := otel.Tracer(scenarioTracerName).Start(ctx, spanName)
	defer span.End()

	if cached, ok := a.cache.Get(ctx, scenario, a.models.Generator, prompt); ok {
		recordCacheHit(scenario)
		recordScenario(scenario, start, StatusSuccess)
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return cached, Outcome{Status: StatusSuccess}
	}

	out, err := a.generator.Generate(ctx, prompt, a.generationParams())
	outcome := outcomeFor(err)
	recordScenario(scenario, start, outcome.Status)
	if !outcome.OK() {
		a.logger.Warn("Generation degraded",
			slog.String("scenario", scenario),
			slog.String("status", outcome.Status.String()),
			slog.String("error", outcome.Err.Error()),
		)
		return "", outcome
	}

	a.cache.Put(ctx, scenario, a.models.Generator, prompt, out)
	return out, outcome
}

// generationParams maps the scenario config onto provider parameters.
// Sampling is enabled only when a temperature is configured.
func (a *Assistant) generationParams() inference.GenerationParams {
	maxTokens := a.cfg.Generation.MaxNewTokens
	params := inference.GenerationParams{MaxNewTokens: &maxTokens}
	if a.cfg.Generation.Temperature > 0 {
		temp := a.cfg.Generation.Temperature
		params.Temperature = &temp
		params.DoSample = true
	}
	return params
}

// RepairCode applies the heuristic repair transform. Purely local and total:
// there is no Outcome because there is no way to fail.
func (a *Assistant) RepairCode(code string) string {
	start := time.Now()
	repaired := repair.Repair(code)
	recordScenario(ScenarioRepair, start, StatusSuccess)
	return repaired
}

// =============================================================================
// Documentation Phase
// =============================================================================

// ExtractDocument returns the plain text of a document on disk.
func (a *Assistant) ExtractDocument(ctx context.Context, path string) (string, error) {
	_, span := otel.Tracer(scenarioTracerName).Start(ctx, "assist.ExtractDocument")
	defer span.End()
	return document.ExtractText(path)
}

// SummarizeText summarizes already-extracted text within the configured
// length bounds.
func (a *Assistant) SummarizeText(ctx context.Context, text string) (string, Outcome) {
	start := time.Now()
	ctx, span := otel.Tracer(scenarioTracerName).Start(ctx, "assist.SummarizeText")
	defer span.End()

	if cached, ok := a.cache.Get(ctx, ScenarioSummarize, a.models.Summarizer, text); ok {
		recordCacheHit(ScenarioSummarize)
		recordScenario(ScenarioSummarize, start, StatusSuccess)
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return cached, Outcome{Status: StatusSuccess}
	}

	bounds := inference.LengthBounds{
		MinLength: a.cfg.Summary.MinLength,
		MaxLength: a.cfg.Summary.MaxLength,
	}
	summary, err := a.summarizer.Summarize(ctx, text, bounds)
	outcome := outcomeFor(err)
	recordScenario(ScenarioSummarize, start, outcome.Status)
	if !outcome.OK() {
		a.logger.Warn("Summarization degraded",
			slog.String("status", outcome.Status.String()),
			slog.String("error", outcome.Err.Error()),
		)
		return "", outcome
	}

	a.cache.Put(ctx, ScenarioSummarize, a.models.Summarizer, text, summary)
	return summary, outcome
}

// SummarizeDocument extracts a document's text and summarizes it. Extraction
// failure is a hard error (the document is the user's input, there is no
// sensible fallback); summarization failure degrades via the Outcome.
func (a *Assistant) SummarizeDocument(ctx context.Context, path string) (string, Outcome, error) {
	text, err := a.ExtractDocument(ctx, path)
	if err != nil {
		return "", Outcome{}, err
	}
	summary, outcome := a.SummarizeText(ctx, text)
	return summary, outcome, nil
}

// AnswerQuestion extracts an answer span for a question from the provided
// context text.
func (a *Assistant) AnswerQuestion(ctx context.Context, question, contextText string) (inference.Answer, Outcome) {
	start := time.Now()
	ctx, span := otel.Tracer(scenarioTracerName).Start(ctx, "assist.AnswerQuestion")
	defer span.End()

	ans, err := a.answerer.Answer(ctx, question, contextText)
	outcome := outcomeFor(err)
	recordScenario(ScenarioAnswer, start, outcome.Status)
	if !outcome.OK() {
		a.logger.Warn("Answer extraction degraded",
			slog.String("status", outcome.Status.String()),
			slog.String("error", outcome.Err.Error()),
		)
		return inference.Answer{}, outcome
	}

	span.SetAttributes(attribute.Float64("score", ans.Score))
	return ans, outcome
}

// =============================================================================
// Pipeline
// =============================================================================

// PipelineResult is the output of one full lifecycle pass over a requirement.
// Each phase carries its own status so one degraded service does not mask
// the others.
type PipelineResult struct {
	Requirement   string
	Labels        []inference.LabelScore
	LabelStatus   Status
	Design        string
	DesignStatus  Status
	Summary       string
	SummaryStatus Status
}

// RunPipeline runs the classification, design, and summarization phases
// concurrently over one requirement statement.
//
// Description:
//
//	Phases are independent so they fan out on an errgroup; none of them
//	returns an error into the group — per-phase degradation is recorded in
//	the result statuses instead, keeping the pipeline fail-open. The error
//	return exists for context cancellation only.
func (a *Assistant) RunPipeline(ctx context.Context, requirement string) (PipelineResult, error) {
	start := time.Now()
	ctx, span := otel.Tracer(scenarioTracerName).Start(ctx, "assist.RunPipeline")
	defer span.End()

	result := PipelineResult{Requirement: requirement}
	// The group context is canceled by Wait on return; the caller's context
	// is the one consulted afterwards to distinguish real cancellation.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		labels, outcome := a.ClassifyRequirement(gctx, requirement)
		result.Labels, result.LabelStatus = labels, outcome.Status
		return nil
	})
	g.Go(func() error {
		design, outcome := a.SuggestDesign(gctx, requirement)
		result.Design, result.DesignStatus = design, outcome.Status
		return nil
	})
	g.Go(func() error {
		summary, outcome := a.SummarizeText(gctx, requirement)
		result.Summary, result.SummaryStatus = summary, outcome.Status
		return nil
	})

	if err := g.Wait(); err != nil {
		return PipelineResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return PipelineResult{}, err
	}

	recordScenario(ScenarioPipeline, start, StatusSuccess)
	return result, nil
}

// =============================================================================
// Fallback substitution
// =============================================================================

// TextOrFallback returns text when the outcome is success, otherwise the
// given fallback, recording the substitution. This is the single place
// fail-open text replacement happens.
func TextOrFallback(text string, outcome Outcome, fallback, scenario string) string {
	if outcome.OK() {
		return text
	}
	recordFallback(scenario)
	return fallback
}
