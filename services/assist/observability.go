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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// scenarioTracerName identifies scenario-level spans, one per assistance
// call, with the inference client spans nested underneath.
const scenarioTracerName = "assist.scenarios"

// Scenario names used as metric labels and span names. Fixed set — never
// interpolate user input into these.
const (
	ScenarioClassify  = "classify_requirement"
	ScenarioDesign    = "suggest_design"
	ScenarioCode      = "generate_code"
	ScenarioRepair    = "repair_code"
	ScenarioSummarize = "summarize_document"
	ScenarioAnswer    = "answer_question"
	ScenarioPipeline  = "run_pipeline"
)

var (
	scenarioDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "assist",
			Subsystem: "scenarios",
			Name:      "duration_seconds",
			Help:      "End-to-end scenario latency, including inference calls.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"scenario", "status"},
	)

	scenarioTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assist",
			Subsystem: "scenarios",
			Name:      "calls_total",
			Help:      "Scenario calls by terminal status.",
		},
		[]string{"scenario", "status"},
	)

	scenarioFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assist",
			Subsystem: "scenarios",
			Name:      "fallbacks_total",
			Help:      "Responses where a templated fallback replaced model output.",
		},
		[]string{"scenario"},
	)

	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assist",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Response cache hits by scenario.",
		},
		[]string{"scenario"},
	)
)

// recordScenario records duration and count for a finished scenario call.
func recordScenario(scenario string, start time.Time, status Status) {
	labels := prometheus.Labels{"scenario": scenario, "status": status.String()}
	scenarioDuration.With(labels).Observe(time.Since(start).Seconds())
	scenarioTotal.With(labels).Inc()
}

// recordFallback counts a fallback substitution at the HTTP/CLI edge.
func recordFallback(scenario string) {
	scenarioFallbacks.WithLabelValues(scenario).Inc()
}

// recordCacheHit counts a response served from the BadgerDB cache.
func recordCacheHit(scenario string) {
	cacheHits.WithLabelValues(scenario).Inc()
}
