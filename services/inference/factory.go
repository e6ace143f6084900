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
	"log/slog"
)

// Factory creates task-role service handles from TaskConfig.
//
// Description:
//
//	Factory is the central creation point for all inference clients. The
//	orchestration layer asks it for one handle per task role and passes
//	those handles down explicitly — no package-level singletons.
//
// Thread Safety: Factory is safe for concurrent use after construction.
type Factory struct {
	logger *slog.Logger
}

// NewFactory creates a new Factory.
func NewFactory() *Factory {
	return &Factory{logger: slog.Default()}
}

// CreateClassifier creates a Classifier for the given task config.
//
// Description:
//
//	Zero-shot classification is only served by the HF pipeline; the
//	chat-completions API has no calibrated label-score contract.
//
// Inputs:
//   - cfg: Task configuration specifying provider and model.
//
// Outputs:
//   - Classifier: The classification handle.
//   - error: Non-nil if the provider cannot serve the role.
func (f *Factory) CreateClassifier(cfg TaskConfig) (Classifier, error) {
	switch cfg.Provider {
	case ProviderHF:
		return f.hfClient(cfg), nil
	default:
		return nil, fmt.Errorf("provider %q cannot serve the classifier role (valid: %q)",
			cfg.Provider, ProviderHF)
	}
}

// CreateGenerator creates a Generator for the given task config.
//
// Inputs:
//   - cfg: Task configuration specifying provider and model.
//
// Outputs:
//   - Generator: The generation handle.
//   - error: Non-nil if the provider is unsupported or construction fails.
func (f *Factory) CreateGenerator(cfg TaskConfig) (Generator, error) {
	switch cfg.Provider {
	case ProviderHF:
		return f.hfClient(cfg), nil

	case ProviderOpenAI:
		return f.openaiClient(cfg)

	default:
		return nil, fmt.Errorf("unsupported provider: %q (valid: %v)", cfg.Provider, ValidProviders)
	}
}

// CreateSummarizer creates a Summarizer for the given task config.
//
// Inputs:
//   - cfg: Task configuration specifying provider and model.
//
// Outputs:
//   - Summarizer: The summarization handle.
//   - error: Non-nil if the provider is unsupported or construction fails.
func (f *Factory) CreateSummarizer(cfg TaskConfig) (Summarizer, error) {
	switch cfg.Provider {
	case ProviderHF:
		return f.hfClient(cfg), nil

	case ProviderOpenAI:
		return f.openaiClient(cfg)

	default:
		return nil, fmt.Errorf("unsupported provider: %q (valid: %v)", cfg.Provider, ValidProviders)
	}
}

// CreateAnswerer creates an AnswerExtractor for the given task config.
//
// Description:
//
//	Extractive QA (span selection with offsets) is only served by the HF
//	pipeline; generative backends cannot guarantee the span contract.
//
// Inputs:
//   - cfg: Task configuration specifying provider and model.
//
// Outputs:
//   - AnswerExtractor: The QA handle.
//   - error: Non-nil if the provider cannot serve the role.
func (f *Factory) CreateAnswerer(cfg TaskConfig) (AnswerExtractor, error) {
	switch cfg.Provider {
	case ProviderHF:
		return f.hfClient(cfg), nil
	default:
		return nil, fmt.Errorf("provider %q cannot serve the answerer role (valid: %q)",
			cfg.Provider, ProviderHF)
	}
}

// hfClient builds an HFClient honoring an optional BaseURL override.
func (f *Factory) hfClient(cfg TaskConfig) *HFClient {
	if cfg.BaseURL != "" {
		return NewHFClientWithConfig(cfg.APIKey, cfg.Model, cfg.BaseURL)
	}
	return NewHFClientWithConfig(cfg.APIKey, cfg.Model, defaultHFBaseURL)
}

// openaiClient builds an OpenAIGenClient honoring an optional BaseURL override.
func (f *Factory) openaiClient(cfg TaskConfig) (*OpenAIGenClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY required for OpenAI provider")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return NewOpenAIGenClientWithConfig(cfg.APIKey, cfg.Model, baseURL), nil
}
