/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package report renders validation results in the supported output formats.
package report

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"bennypowers.dev/ack997/report/formatter"
	"bennypowers.dev/ack997/report/formatter/jsonreport"
	"bennypowers.dev/ack997/report/formatter/markdown"
	"bennypowers.dev/ack997/report/formatter/text"
	"bennypowers.dev/ack997/report/formatter/xlsx"
)

// Format represents an output format for validation reports.
type Format string

const (
	// FormatText outputs an aligned terminal table (default).
	FormatText Format = "text"

	// FormatJSON outputs JSON in one of the jsonreport modes.
	FormatJSON Format = "json"

	// FormatMarkdown outputs a Markdown document.
	FormatMarkdown Format = "markdown"

	// FormatXLSX outputs an Excel workbook.
	FormatXLSX Format = "xlsx"
)

// ValidFormats returns all valid format strings.
func ValidFormats() []string {
	return []string{
		string(FormatText),
		string(FormatJSON),
		string(FormatMarkdown),
		string(FormatXLSX),
	}
}

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unknown format: %s (valid: %s)", s, strings.Join(ValidFormats(), ", "))
	}
}

// Binary reports whether the format produces non-text output.
func (f Format) Binary() bool {
	return f == FormatXLSX
}

// Extension returns the conventional file extension for the format.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatMarkdown:
		return ".md"
	case FormatXLSX:
		return ".xlsx"
	default:
		return ".txt"
	}
}

// Options configures rendering.
type Options struct {
	JSONMode                jsonreport.Mode
	IncludeAccepted         bool
	MaxErrorsPerTransaction int
	Theme                   text.Theme
	Color                   bool
}

// NewReportID returns a fresh identifier for stamping a report.
func NewReportID() string {
	return uuid.NewString()
}

// Render formats the documents in the requested format.
func Render(docs []formatter.Document, format Format, opts Options) ([]byte, error) {
	fmtOpts := formatter.Options{
		IncludeAccepted:         opts.IncludeAccepted,
		MaxErrorsPerTransaction: opts.MaxErrorsPerTransaction,
	}

	var f formatter.Formatter
	switch format {
	case FormatText:
		f = text.New(text.Options{Theme: opts.Theme, Color: opts.Color})
	case FormatJSON:
		f = jsonreport.New(opts.JSONMode)
	case FormatMarkdown:
		f = markdown.New()
	case FormatXLSX:
		f = xlsx.New()
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	return f.Format(docs, fmtOpts)
}
