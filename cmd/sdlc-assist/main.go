// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command sdlc-assist provides AI assistance across the software development
// lifecycle: requirement classification, design and code suggestion,
// heuristic code repair, document summarization, and question answering.
//
// Usage:
//
//	sdlc-assist serve
//	sdlc-assist repair broken.py
//	sdlc-assist classify "The system shall export PDF reports"
//	sdlc-assist summarize requirements.pdf
//	sdlc-assist ask --context spec.txt "What is the response time target?"
//	sdlc-assist extract requirements.pdf
//	sdlc-assist pipeline "The system shall log all access"
//
// Configuration:
//
//	HF_API_TOKEN         Hugging Face Inference API token
//	OPENAI_API_KEY       OpenAI key (only for openai-backed roles)
//	ASSIST_<ROLE>_PROVIDER / ASSIST_<ROLE>_MODEL per-role overrides
//	ASSIST_PORT, ASSIST_CACHE_DIR server overrides
package main

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/sdlc-assist/services/assist"
	"github.com/AleutianAI/sdlc-assist/services/inference"
	badgerstore "github.com/AleutianAI/sdlc-assist/services/storage/badger"
)

// configPath holds the --config flag value, shared by all commands.
var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "sdlc-assist",
		Short: "AI assistance for the software development lifecycle",
		Long: "sdlc-assist runs SDLC assistance scenarios against hosted inference\n" +
			"services, plus a purely local heuristic code repair transform.",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "assist.config.yaml",
		"Path to the YAML config file (missing file falls back to defaults)")

	rootCmd.AddCommand(
		newServeCommand(),
		newRepairCommand(),
		newClassifyCommand(),
		newSummarizeCommand(),
		newAskCommand(),
		newExtractCommand(),
		newPipelineCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildAssistant wires an Assistant from config and env: inference clients
// via the role factory, plus the optional BadgerDB response cache.
//
// Outputs:
//   - *assist.Assistant: The wired assistant.
//   - assist.Config: The effective config, for callers that need ports etc.
//   - func(): Cleanup closing the cache DB. Never nil.
//   - error: Non-nil if config or any client cannot be built.
func buildAssistant() (*assist.Assistant, assist.Config, func(), error) {
	noop := func() {}

	cfg, err := assist.LoadConfig(configPath)
	if err != nil {
		return nil, assist.Config{}, noop, err
	}

	roles, err := inference.LoadRoleConfig()
	if err != nil {
		return nil, assist.Config{}, noop, fmt.Errorf("loading role config: %w", err)
	}

	factory := inference.NewFactory()
	classifier, err := factory.CreateClassifier(roles.Classifier)
	if err != nil {
		return nil, assist.Config{}, noop, fmt.Errorf("creating classifier: %w", err)
	}
	generator, err := factory.CreateGenerator(roles.Generator)
	if err != nil {
		return nil, assist.Config{}, noop, fmt.Errorf("creating generator: %w", err)
	}
	summarizer, err := factory.CreateSummarizer(roles.Summarizer)
	if err != nil {
		return nil, assist.Config{}, noop, fmt.Errorf("creating summarizer: %w", err)
	}
	answerer, err := factory.CreateAnswerer(roles.Answerer)
	if err != nil {
		return nil, assist.Config{}, noop, fmt.Errorf("creating answerer: %w", err)
	}

	// Graceful degradation: a broken cache directory disables caching, it
	// never blocks startup.
	var cache *assist.ResponseCache
	cleanup := noop
	if cfg.Cache.Dir != "" {
		storeCfg := badgerstore.DefaultConfig()
		storeCfg.Path = cfg.Cache.Dir
		db, dbErr := badgerstore.OpenDB(storeCfg)
		if dbErr != nil {
			slog.Warn("Response cache unavailable, running uncached",
				slog.String("dir", cfg.Cache.Dir),
				slog.String("error", dbErr.Error()),
			)
		} else {
			cache = assist.NewResponseCache(db, cfg.Cache.TTL(), slog.Default())
			// Idempotent: the serve command runs cleanup from both its defer
			// and the signal handler.
			var once sync.Once
			cleanup = func() {
				once.Do(func() {
					if closeErr := db.Close(); closeErr != nil {
						slog.Warn("Failed to close response cache DB",
							slog.String("error", closeErr.Error()))
					}
				})
			}
			slog.Info("Response cache opened", slog.String("dir", cfg.Cache.Dir))
		}
	}

	assistant := assist.NewAssistant(assist.Deps{
		Classifier: classifier,
		Generator:  generator,
		Summarizer: summarizer,
		Answerer:   answerer,
		Cache:      cache,
		Config:     cfg,
		Models: assist.ModelTags{
			Generator:  roles.Generator.Model,
			Summarizer: roles.Summarizer.Model,
		},
		Logger: slog.Default(),
	})
	return assistant, cfg, cleanup, nil
}
