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
	"fmt"
	"os"
)

// Provider constants for supported inference backends.
const (
	ProviderHF     = "hf"
	ProviderOpenAI = "openai"
)

// Task role constants. One role per task interface; each role gets its own
// explicitly configured service handle (no shared ambient pipeline state).
const (
	RoleClassifier = "CLASSIFIER"
	RoleGenerator  = "GENERATOR"
	RoleSummarizer = "SUMMARIZER"
	RoleAnswerer   = "ANSWERER"
)

// Default models per task role. These mirror the pretrained pipelines the
// scenarios were designed against.
const (
	DefaultClassifierModel = "facebook/bart-large-mnli"
	DefaultGeneratorModel  = "bigscience/bloom-560m"
	DefaultSummarizerModel = "facebook/bart-large-cnn"
	DefaultAnswererModel   = "deepset/roberta-base-squad2"
)

// ValidProviders contains the set of valid provider names.
var ValidProviders = []string{ProviderHF, ProviderOpenAI}

// TaskConfig holds the configuration for a single task-role service handle.
//
// Description:
//
//	Specifies which provider serves the role and which model to use.
//	Used by the Factory to create the right client. Each handle carries its
//	own model identifier and credentials as explicit fields.
type TaskConfig struct {
	// Provider is the backend to use: "hf" or "openai".
	Provider string

	// Model is the provider-specific model identifier.
	Model string

	// BaseURL is an optional endpoint override (mock servers, local
	// OpenAI-compatible servers). Empty uses the provider default.
	BaseURL string

	// APIKey is the authentication credential. Loaded from environment:
	// HF_API_TOKEN or OPENAI_API_KEY.
	APIKey string
}

// RoleConfig holds per-role task configurations for all four task roles.
type RoleConfig struct {
	Classifier TaskConfig
	Generator  TaskConfig
	Summarizer TaskConfig
	Answerer   TaskConfig
}

// isValidProvider checks if a provider name is valid.
func isValidProvider(provider string) bool {
	for _, p := range ValidProviders {
		if provider == p {
			return true
		}
	}
	return false
}

// LoadRoleConfig reads per-role provider configuration from environment
// variables.
//
// Description:
//
//	Reads ASSIST_<ROLE>_PROVIDER and ASSIST_<ROLE>_MODEL for each role.
//	Falls back to the HF provider with the role's default model when the
//	variables are not set — the zero-configuration path matches the
//	pretrained pipelines the scenarios were designed against.
//
// Resolution order per role:
//  1. ASSIST_<ROLE>_PROVIDER -> explicit provider
//  2. Fallback: "hf"
//  3. ASSIST_<ROLE>_MODEL -> explicit model
//  4. Fallback: role default model
//
// Outputs:
//   - *RoleConfig: Per-role configurations.
//   - error: Non-nil if an invalid provider is specified.
//
// Example:
//
//	cfg, err := LoadRoleConfig()
//	// ASSIST_GENERATOR_PROVIDER=openai ASSIST_GENERATOR_MODEL=gpt-4o-mini
func LoadRoleConfig() (*RoleConfig, error) {
	classifier, err := loadSingleRoleConfig(RoleClassifier, DefaultClassifierModel)
	if err != nil {
		return nil, fmt.Errorf("loading classifier role config: %w", err)
	}

	generator, err := loadSingleRoleConfig(RoleGenerator, DefaultGeneratorModel)
	if err != nil {
		return nil, fmt.Errorf("loading generator role config: %w", err)
	}

	summarizer, err := loadSingleRoleConfig(RoleSummarizer, DefaultSummarizerModel)
	if err != nil {
		return nil, fmt.Errorf("loading summarizer role config: %w", err)
	}

	answerer, err := loadSingleRoleConfig(RoleAnswerer, DefaultAnswererModel)
	if err != nil {
		return nil, fmt.Errorf("loading answerer role config: %w", err)
	}

	return &RoleConfig{
		Classifier: classifier,
		Generator:  generator,
		Summarizer: summarizer,
		Answerer:   answerer,
	}, nil
}

// loadSingleRoleConfig loads configuration for a single task role.
func loadSingleRoleConfig(role, modelFallback string) (TaskConfig, error) {
	providerEnv := fmt.Sprintf("ASSIST_%s_PROVIDER", role)
	modelEnv := fmt.Sprintf("ASSIST_%s_MODEL", role)

	provider := os.Getenv(providerEnv)
	if provider == "" {
		provider = ProviderHF
	}

	if !isValidProvider(provider) {
		return TaskConfig{}, fmt.Errorf("invalid provider %q for %s (valid: %v)",
			provider, providerEnv, ValidProviders)
	}

	model := os.Getenv(modelEnv)
	if model == "" {
		model = modelFallback
	}

	cfg := TaskConfig{
		Provider: provider,
		Model:    model,
	}

	switch provider {
	case ProviderHF:
		cfg.APIKey = os.Getenv("HF_API_TOKEN")
	case ProviderOpenAI:
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return cfg, nil
}
