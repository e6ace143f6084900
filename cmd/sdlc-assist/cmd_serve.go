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
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/AleutianAI/sdlc-assist/services/assist"
)

// newServeCommand builds the serve subcommand: the HTTP API server.
func newServeCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the SDLC assist API server",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(debug)
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug mode and request logging")
	return cmd
}

func runServe(debug bool) error {
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// W3C TraceContext propagation so trace context flows from inbound
	// headers through the handlers and into the inference client spans.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	assistant, cfg, cleanup, err := buildAssistant()
	if err != nil {
		return err
	}
	defer cleanup()

	handlers := assist.NewHandlers(assistant, slog.Default())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("sdlc-assist"))
	if debug {
		router.Use(gin.Logger())
	}

	v1 := router.Group("/v1")
	assist.RegisterRoutes(v1, handlers)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	printBanner(cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		slog.Info("Shutting down SDLC assist server")
		cleanup()
		os.Exit(0)
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("Starting SDLC assist server", slog.String("address", addr))
	if err := router.Run(addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func printBanner(port int) {
	banner := `
╔═══════════════════════════════════════════════════════════════════╗
║                       SDLC ASSIST SERVER                          ║
╠═══════════════════════════════════════════════════════════════════╣
║                                                                   ║
║  AI assistance across the software development lifecycle.         ║
║                                                                   ║
║  Quick Start:                                                     ║
║  ┌─────────────────────────────────────────────────────────────┐  ║
║  │ # Health check                                              │  ║
║  │ curl http://localhost:%d/v1/assist/health               │  ║
║  │                                                             │  ║
║  │ # Repair a snippet (local, no inference needed)             │  ║
║  │ curl -X POST http://localhost:%d/v1/assist/code/repair \│  ║
║  │   -H "Content-Type: application/json" \                     │  ║
║  │   -d '{"code": "def f(x)\nreturn x"}'                       │  ║
║  │                                                             │  ║
║  │ # Classify a requirement (needs HF_API_TOKEN)               │  ║
║  │ curl -X POST \                                              │  ║
║  │   http://localhost:%d/v1/assist/requirements/classify \ │  ║
║  │   -H "Content-Type: application/json" \                     │  ║
║  │   -d '{"text": "The system shall export PDF reports"}'      │  ║
║  └─────────────────────────────────────────────────────────────┘  ║
║                                                                   ║
║  Endpoints:                                                       ║
║  ├── Requirements: /requirements/classify                         ║
║  ├── Design/Code: /design/suggest, /code/generate, /code/repair   ║
║  ├── Docs: /docs/summarize, /docs/extract, /qa/answer             ║
║  └── Pipeline: /pipeline                                          ║
║                                                                   ║
║  Press Ctrl+C to stop                                             ║
╚═══════════════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, port, port, port)
}
