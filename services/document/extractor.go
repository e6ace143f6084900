// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package document extracts plain text from project documents (requirements
// PDFs, design notes) for the summarization and QA scenarios. Only the
// embedded PDF text layer is read; scanned image-only documents yield empty
// text and would need OCR, which is out of scope.
package document

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText returns the concatenated plain text of all pages of a document.
//
// Description:
//
//	Dispatches on the file extension: .pdf goes through the PDF text-layer
//	walk, everything else (.txt, .md, extensionless) is read verbatim.
//	Pages are joined with blank lines in page order.
//
// Inputs:
//   - path: Path to the document. Must exist and be readable.
//
// Outputs:
//   - string: The extracted text. May be empty for image-only PDFs.
//   - error: The underlying read error, propagated opaquely — an undefined
//     document is the caller's problem to report, not this package's to
//     classify.
//
// Thread Safety: Safe for concurrent use.
func ExtractText(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return extractPDF(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("document: reading %s: %w", path, err)
	}
	return string(data), nil
}

// extractPDF walks the PDF text layer page by page.
//
// Description:
//
//	Fonts are resolved once per document and shared across pages; the pdf
//	package needs the font map to decode each page's content stream into
//	runs of plain text. Pages with a null value (deleted or malformed) are
//	skipped rather than failing the whole document.
func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("document: opening pdf %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	numPages := r.NumPage()
	fonts := make(map[string]*pdf.Font)
	var parts []string

	for i := 1; i <= numPages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			slog.Debug("Skipping null PDF page",
				slog.String("path", path),
				slog.Int("page", i),
			)
			continue
		}

		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := p.Font(name)
				fonts[name] = &font
			}
		}

		text, pageErr := p.GetPlainText(fonts)
		if pageErr != nil {
			return "", fmt.Errorf("document: reading pdf page %d of %s: %w", i, path, pageErr)
		}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}

	slog.Debug("PDF text extraction complete",
		slog.String("path", path),
		slog.Int("pages", numPages),
		slog.Int("pages_with_text", len(parts)),
	)
	return strings.Join(parts, "\n\n"), nil
}
