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
	"errors"
	"strings"
	"testing"

	"github.com/AleutianAI/sdlc-assist/services/inference"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeClassifier struct {
	ranked []inference.LabelScore
	err    error
	labels []string
}

func (f *fakeClassifier) Classify(_ context.Context, _ string, labels []string) ([]inference.LabelScore, error) {
	f.labels = labels
	return f.ranked, f.err
}

type fakeGenerator struct {
	out     string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, _ inference.GenerationParams) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.out, f.err
}

type fakeSummarizer struct {
	out    string
	err    error
	bounds inference.LengthBounds
	calls  int
}

func (f *fakeSummarizer) Summarize(_ context.Context, _ string, bounds inference.LengthBounds) (string, error) {
	f.bounds = bounds
	f.calls++
	return f.out, f.err
}

type fakeAnswerer struct {
	ans inference.Answer
	err error
}

func (f *fakeAnswerer) Answer(_ context.Context, _, _ string) (inference.Answer, error) {
	return f.ans, f.err
}

func newTestAssistant(t *testing.T, deps Deps) *Assistant {
	t.Helper()
	if deps.Config.Labels == nil {
		deps.Config = DefaultConfig()
	}
	return NewAssistant(deps)
}

// =============================================================================
// Scenario Tests
// =============================================================================

func TestClassifyRequirement_Success(t *testing.T) {
	classifier := &fakeClassifier{ranked: []inference.LabelScore{
		{Label: "functional", Score: 0.88},
		{Label: "non-functional", Score: 0.08},
		{Label: "ambiguous", Score: 0.04},
	}}
	a := newTestAssistant(t, Deps{Classifier: classifier})

	ranked, outcome := a.ClassifyRequirement(context.Background(), "The system shall export PDF reports")
	if !outcome.OK() {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if ranked[0].Label != "functional" {
		t.Errorf("unexpected top label: %q", ranked[0].Label)
	}
	if len(classifier.labels) != 3 {
		t.Errorf("configured label set not forwarded: %v", classifier.labels)
	}
}

func TestClassifyRequirement_ServiceUnavailable(t *testing.T) {
	a := newTestAssistant(t, Deps{
		Classifier: &fakeClassifier{err: inference.ErrServiceUnavailable},
	})

	ranked, outcome := a.ClassifyRequirement(context.Background(), "text")
	if outcome.Status != StatusServiceUnavailable {
		t.Fatalf("expected service_unavailable, got %v", outcome.Status)
	}
	if ranked != nil {
		t.Errorf("expected nil labels on degradation, got %v", ranked)
	}
}

func TestSuggestDesign_PromptContainsRequirement(t *testing.T) {
	gen := &fakeGenerator{out: "Use three layers."}
	a := newTestAssistant(t, Deps{Generator: gen})

	out, outcome := a.SuggestDesign(context.Background(), "store user sessions")
	if !outcome.OK() {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if out != "Use three layers." {
		t.Errorf("unexpected output: %q", out)
	}
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "store user sessions") {
		t.Errorf("requirement not embedded in prompt: %v", gen.prompts)
	}
}

func TestGenerateCode_MalformedResponse(t *testing.T) {
	a := newTestAssistant(t, Deps{
		Generator: &fakeGenerator{err: inference.ErrMalformedResponse},
	})

	_, outcome := a.GenerateCode(context.Background(), "parse a csv file")
	if outcome.Status != StatusMalformedResponse {
		t.Fatalf("expected malformed_response, got %v", outcome.Status)
	}
}

func TestRepairCode_Local(t *testing.T) {
	a := newTestAssistant(t, Deps{})

	got := a.RepairCode("def f(x)\nreturn x")
	want := "def f(x):\n    return x"
	if got != want {
		t.Errorf("repair mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestSummarizeText_BoundsFromConfig(t *testing.T) {
	summ := &fakeSummarizer{out: "short"}
	cfg := DefaultConfig()
	cfg.Summary.MinLength = 15
	cfg.Summary.MaxLength = 45
	a := newTestAssistant(t, Deps{Summarizer: summ, Config: cfg})

	got, outcome := a.SummarizeText(context.Background(), "a long document")
	if !outcome.OK() || got != "short" {
		t.Fatalf("unexpected result: %q %+v", got, outcome)
	}
	if summ.bounds.MinLength != 15 || summ.bounds.MaxLength != 45 {
		t.Errorf("configured bounds not forwarded: %+v", summ.bounds)
	}
}

func TestAnswerQuestion_Success(t *testing.T) {
	a := newTestAssistant(t, Deps{
		Answerer: &fakeAnswerer{ans: inference.Answer{Text: "unit tests", Score: 0.8}},
	})

	ans, outcome := a.AnswerQuestion(context.Background(), "what verifies?", "unit tests verify")
	if !outcome.OK() || ans.Text != "unit tests" {
		t.Fatalf("unexpected answer: %+v %+v", ans, outcome)
	}
}

func TestRunPipeline_AllPhases(t *testing.T) {
	a := newTestAssistant(t, Deps{
		Classifier: &fakeClassifier{ranked: []inference.LabelScore{{Label: "functional", Score: 0.9}}},
		Generator:  &fakeGenerator{out: "layered design"},
		Summarizer: &fakeSummarizer{out: "summary"},
	})

	result, err := a.RunPipeline(context.Background(), "The system shall export reports")
	if err != nil {
		t.Fatalf("RunPipeline failed: %v", err)
	}
	if result.LabelStatus != StatusSuccess || result.Labels[0].Label != "functional" {
		t.Errorf("classification phase wrong: %+v", result)
	}
	if result.DesignStatus != StatusSuccess || result.Design != "layered design" {
		t.Errorf("design phase wrong: %+v", result)
	}
	if result.SummaryStatus != StatusSuccess || result.Summary != "summary" {
		t.Errorf("summary phase wrong: %+v", result)
	}
}

func TestRunPipeline_PartialDegradation(t *testing.T) {
	// One dead service must not poison the other phases.
	a := newTestAssistant(t, Deps{
		Classifier: &fakeClassifier{err: inference.ErrServiceUnavailable},
		Generator:  &fakeGenerator{out: "still works"},
		Summarizer: &fakeSummarizer{out: "still works"},
	})

	result, err := a.RunPipeline(context.Background(), "requirement")
	if err != nil {
		t.Fatalf("RunPipeline failed: %v", err)
	}
	if result.LabelStatus != StatusServiceUnavailable {
		t.Errorf("expected degraded classification, got %v", result.LabelStatus)
	}
	if result.DesignStatus != StatusSuccess || result.SummaryStatus != StatusSuccess {
		t.Errorf("healthy phases were poisoned: %+v", result)
	}
}

func TestRunPipeline_CompletesDespiteGroupCancel(t *testing.T) {
	// The errgroup cancels its derived context when Wait returns; only the
	// caller's context may abort the pipeline. A healthy run must return nil
	// even after the group context is dead, and a canceled caller must not.
	a := newTestAssistant(t, Deps{
		Classifier: &fakeClassifier{ranked: []inference.LabelScore{{Label: "functional", Score: 0.9}}},
		Generator:  &fakeGenerator{out: "design"},
		Summarizer: &fakeSummarizer{out: "summary"},
	})

	if _, err := a.RunPipeline(context.Background(), "requirement"); err != nil {
		t.Fatalf("healthy pipeline returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.RunPipeline(ctx, "requirement"); !errors.Is(err, context.Canceled) {
		t.Fatalf("canceled caller context: got %v, want context.Canceled", err)
	}
}

func TestTextOrFallback(t *testing.T) {
	if got := TextOrFallback("real", Outcome{Status: StatusSuccess}, "fb", ScenarioDesign); got != "real" {
		t.Errorf("success must keep model output, got %q", got)
	}
	degraded := Outcome{Status: StatusServiceUnavailable}
	if got := TextOrFallback("", degraded, "fb", ScenarioDesign); got != "fb" {
		t.Errorf("degradation must substitute fallback, got %q", got)
	}
}

func TestOutcomeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Status
	}{
		{"nil", nil, StatusSuccess},
		{"unavailable", inference.ErrServiceUnavailable, StatusServiceUnavailable},
		{"malformed", inference.ErrMalformedResponse, StatusMalformedResponse},
		{"unknown", context.DeadlineExceeded, StatusMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outcomeFor(tt.err); got.Status != tt.want {
				t.Errorf("outcomeFor(%v) = %v, want %v", tt.err, got.Status, tt.want)
			}
		})
	}
}
