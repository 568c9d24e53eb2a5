/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package formatter provides the interface and common utilities for report
// formatters.
package formatter

import (
	"strconv"

	"bennypowers.dev/ack997/ack"
)

// Formatter defines the interface for report formatters.
type Formatter interface {
	// Format renders the documents in the target format.
	Format(docs []Document, opts Options) ([]byte, error)
}

// Document is one validated 997 to report on.
type Document struct {
	// Name identifies the document, usually its path or URL.
	Name string

	// ReportID is stamped into envelopes that carry one. Empty omits it.
	ReportID string

	// Result is nil when the document could not be parsed.
	Result *ack.ValidationResult

	// Error is the parse or load failure, if any.
	Error string
}

// Options configures formatter behavior.
type Options struct {
	// IncludeAccepted lists accepted transaction sets in addition to
	// partially accepted and rejected ones.
	IncludeAccepted bool

	// MaxErrorsPerTransaction truncates error listings. Zero means no limit.
	MaxErrorsPerTransaction int
}

// TransactionRow is a flattened transaction set acknowledgment.
type TransactionRow struct {
	Document           string
	FunctionalIDCode   string
	GroupControlNumber string
	TransactionSetID   string
	ControlNumber      string
	Status             ack.Status
	Errors             int
}

// ErrorRow is a flattened error detail.
type ErrorRow struct {
	Document                 string
	GroupControlNumber       string
	TransactionControlNumber string
	Level                    ack.Level
	SegmentID                string
	SegmentPosition          string
	ElementPosition          string
	Code                     string
	Description              string
	BadData                  string
}

// Transactions flattens the transaction sets of a document in document order.
func Transactions(doc Document) []TransactionRow {
	if doc.Result == nil || doc.Result.Interchange == nil {
		return nil
	}
	var rows []TransactionRow
	for _, g := range doc.Result.Interchange.Groups {
		for _, ts := range g.TransactionSets {
			rows = append(rows, TransactionRow{
				Document:           doc.Name,
				FunctionalIDCode:   g.FunctionalIDCode,
				GroupControlNumber: g.GroupControlNumber,
				TransactionSetID:   ts.TransactionSetID,
				ControlNumber:      ts.ControlNumber,
				Status:             ts.Status,
				Errors:             len(ts.Errors),
			})
		}
	}
	return rows
}

// Errors flattens every error detail of a document, group level errors after
// the transaction set errors of their group.
func Errors(doc Document) []ErrorRow {
	if doc.Result == nil || doc.Result.Interchange == nil {
		return nil
	}
	var rows []ErrorRow
	for _, g := range doc.Result.Interchange.Groups {
		for _, ts := range g.TransactionSets {
			for _, e := range ts.Errors {
				rows = append(rows, errorRow(doc.Name, g.GroupControlNumber, ts.ControlNumber, e))
			}
		}
		for _, e := range g.Errors {
			rows = append(rows, errorRow(doc.Name, g.GroupControlNumber, "", e))
		}
	}
	return rows
}

func errorRow(doc, group, transaction string, e ack.ErrorDetail) ErrorRow {
	return ErrorRow{
		Document:                 doc,
		GroupControlNumber:       group,
		TransactionControlNumber: transaction,
		Level:                    e.Level,
		SegmentID:                e.SegmentID,
		SegmentPosition:          Position(e.SegmentPosition),
		ElementPosition:          Position(e.ElementPosition),
		Code:                     e.Code,
		Description:              e.Description,
		BadData:                  e.BadData,
	}
}

// Position renders an optional position, empty when absent.
func Position(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

// Visible reports whether a transaction set with status s is listed under
// opts.
func Visible(s ack.Status, opts Options) bool {
	return opts.IncludeAccepted || s != ack.Accepted
}

// Truncate limits errs to opts.MaxErrorsPerTransaction and returns the
// number of errors left out.
func Truncate(errs []ack.ErrorDetail, opts Options) ([]ack.ErrorDetail, int) {
	if opts.MaxErrorsPerTransaction <= 0 || len(errs) <= opts.MaxErrorsPerTransaction {
		return errs, 0
	}
	return errs[:opts.MaxErrorsPerTransaction], len(errs) - opts.MaxErrorsPerTransaction
}
