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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all assist routes with the router.
//
// Description:
//
//	Registers all /v1/assist/* endpoints with the given Gin router group.
//	The router group should already have any required middleware applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Endpoints:
//
//	POST /v1/assist/requirements/classify - Classify a requirement statement
//	POST /v1/assist/design/suggest - Suggest a high-level design
//	POST /v1/assist/code/generate - Generate a code suggestion
//	POST /v1/assist/code/repair - Apply the heuristic repair transform
//	POST /v1/assist/docs/summarize - Summarize document text or a file
//	POST /v1/assist/docs/extract - Extract plain text from a document
//	POST /v1/assist/qa/answer - Extract an answer from context
//	POST /v1/assist/pipeline - Run all phases over one requirement
//
// Health Endpoints:
//
//	GET  /v1/assist/health - Health check
//	GET  /v1/assist/ready - Readiness check
//
// Example:
//
//	assistant := assist.NewAssistant(deps)
//	handlers := assist.NewHandlers(assistant, slog.Default())
//
//	v1 := router.Group("/v1")
//	assist.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	assist := rg.Group("/assist")
	{
		// Requirements phase
		assist.POST("/requirements/classify", handlers.HandleClassifyRequirement)

		// Design and implementation phases
		assist.POST("/design/suggest", handlers.HandleSuggestDesign)
		assist.POST("/code/generate", handlers.HandleGenerateCode)
		assist.POST("/code/repair", handlers.HandleRepairCode)

		// Documentation phase
		assist.POST("/docs/summarize", handlers.HandleSummarizeDocument)
		assist.POST("/docs/extract", handlers.HandleExtractDocument)
		assist.POST("/qa/answer", handlers.HandleAnswerQuestion)

		// Full lifecycle pass
		assist.POST("/pipeline", handlers.HandlePipeline)

		// Health checks
		assist.GET("/health", handlers.HandleHealth)
		assist.GET("/ready", handlers.HandleReady)
	}
}
