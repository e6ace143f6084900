// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/sdlc-assist/services/assist"
	"github.com/AleutianAI/sdlc-assist/services/repair"
)

// =============================================================================
// repair — local, needs no inference services
// =============================================================================

// newRepairCommand builds the repair subcommand. Reads a file argument or
// stdin, writes the repaired snippet to stdout.
func newRepairCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repair [file]",
		Short: "Apply the heuristic repair transform to a code snippet",
		Long: "Inserts missing block terminators on def/if/for headers and\n" +
			"re-derives indentation from nesting. Reads the file argument, or\n" +
			"stdin when no file is given. Purely local.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var source []byte
			var err error
			if len(args) == 1 {
				source, err = os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("reading %s: %w", args[0], err)
				}
			} else {
				source, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), repair.Repair(string(source)))
			return nil
		},
	}
}

// =============================================================================
// Inference-backed commands
// =============================================================================

// newClassifyCommand builds the classify subcommand.
func newClassifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <requirement>",
		Short: "Classify a requirement statement over the configured labels",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assistant, _, cleanup, err := buildAssistant()
			if err != nil {
				return err
			}
			defer cleanup()

			text := strings.Join(args, " ")
			ranked, outcome := assistant.ClassifyRequirement(cmd.Context(), text)
			if !outcome.OK() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", assist.FallbackLabel, outcome.Status)
				return nil
			}
			for _, ls := range ranked {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %.4f\n", ls.Label, ls.Score)
			}
			return nil
		},
	}
}

// newSummarizeCommand builds the summarize subcommand.
func newSummarizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <document>",
		Short: "Extract and summarize a document (PDF, txt, md)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assistant, _, cleanup, err := buildAssistant()
			if err != nil {
				return err
			}
			defer cleanup()

			summary, outcome, err := assistant.SummarizeDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(),
				assist.TextOrFallback(summary, outcome, assist.FallbackSummary, assist.ScenarioSummarize))
			return nil
		},
	}
}

// newAskCommand builds the ask subcommand: extractive QA over a context file
// or inline context.
func newAskCommand() *cobra.Command {
	var contextPath string
	var contextText string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Extract an answer to a question from provided context",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assistant, _, cleanup, err := buildAssistant()
			if err != nil {
				return err
			}
			defer cleanup()

			passage := contextText
			if passage == "" && contextPath != "" {
				passage, err = assistant.ExtractDocument(cmd.Context(), contextPath)
				if err != nil {
					return err
				}
			}
			if passage == "" {
				return fmt.Errorf("provide context via --context or --context-text")
			}

			question := strings.Join(args, " ")
			ans, outcome := assistant.AnswerQuestion(cmd.Context(), question, passage)
			if !outcome.OK() {
				fmt.Fprintln(cmd.OutOrStdout(), assist.FallbackAnswer)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (score %.4f)\n", ans.Text, ans.Score)
			return nil
		},
	}
	cmd.Flags().StringVar(&contextPath, "context", "", "Document file to answer from")
	cmd.Flags().StringVar(&contextText, "context-text", "", "Inline context text")
	return cmd
}

// newExtractCommand builds the extract subcommand.
func newExtractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <document>",
		Short: "Extract plain text from a document (PDF, txt, md)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assistant, _, cleanup, err := buildAssistant()
			if err != nil {
				return err
			}
			defer cleanup()

			text, err := assistant.ExtractDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

// newPipelineCommand builds the pipeline subcommand: one full lifecycle pass
// over a requirement statement.
func newPipelineCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pipeline <requirement>",
		Short: "Run classification, design, and summary phases over a requirement",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assistant, _, cleanup, err := buildAssistant()
			if err != nil {
				return err
			}
			defer cleanup()

			requirement := strings.Join(args, " ")
			result, err := assistant.RunPipeline(cmd.Context(), requirement)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Requirement: %s\n\n", result.Requirement)

			label := assist.FallbackLabel
			if result.LabelStatus == assist.StatusSuccess && len(result.Labels) > 0 {
				label = result.Labels[0].Label
			}
			fmt.Fprintf(out, "Classification [%s]: %s\n", result.LabelStatus, label)
			fmt.Fprintf(out, "Design [%s]:\n%s\n\n", result.DesignStatus,
				assist.TextOrFallback(result.Design,
					assist.Outcome{Status: result.DesignStatus},
					assist.FallbackDesignSuggestion, assist.ScenarioDesign))
			fmt.Fprintf(out, "Summary [%s]:\n%s\n", result.SummaryStatus,
				assist.TextOrFallback(result.Summary,
					assist.Outcome{Status: result.SummaryStatus},
					assist.FallbackSummary, assist.ScenarioSummarize))
			return nil
		},
	}
}
