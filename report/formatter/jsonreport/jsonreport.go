/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package jsonreport provides JSON formatting for validation results.
package jsonreport

import (
	"encoding/json"
	"fmt"
	"strings"

	"bennypowers.dev/ack997/ack"
	"bennypowers.dev/ack997/report/formatter"
)

// Mode selects how much of the result is serialized.
type Mode string

const (
	// ModeFull serializes the entire validation result.
	ModeFull Mode = "full"

	// ModeSummary serializes status, counts, issues and per transaction set
	// statuses.
	ModeSummary Mode = "summary"

	// ModeCompact serializes status, validity and counts only.
	ModeCompact Mode = "compact"
)

// ValidModes returns all valid mode strings.
func ValidModes() []string {
	return []string{string(ModeFull), string(ModeSummary), string(ModeCompact)}
}

// ParseMode converts a string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "full", "":
		return ModeFull, nil
	case "summary":
		return ModeSummary, nil
	case "compact":
		return ModeCompact, nil
	default:
		return "", fmt.Errorf("unknown JSON mode: %s (valid: %s)", s, strings.Join(ValidModes(), ", "))
	}
}

// Formatter outputs JSON reports. A single document renders as an object,
// several as an array.
type Formatter struct {
	mode Mode
}

// New creates a new JSON formatter.
func New(mode Mode) *Formatter {
	if mode == "" {
		mode = ModeFull
	}
	return &Formatter{mode: mode}
}

type envelope struct {
	ReportID string `json:"reportId,omitempty"`
	Document string `json:"document"`
	Error    string `json:"error,omitempty"`
}

type fullReport struct {
	envelope
	*ack.ValidationResult
}

type transaction struct {
	FunctionalIDCode   string     `json:"functionalIdCode"`
	GroupControlNumber string     `json:"groupControlNumber"`
	TransactionSetID   string     `json:"transactionSetId"`
	ControlNumber      string     `json:"controlNumber"`
	Status             ack.Status `json:"status"`
	Errors             int        `json:"errors"`
}

type summaryReport struct {
	envelope
	Status       ack.Status    `json:"status,omitempty"`
	Valid        bool          `json:"valid"`
	Summary      string        `json:"summary,omitempty"`
	Counts       *ack.Counts   `json:"counts,omitempty"`
	Transactions []transaction `json:"transactions,omitempty"`
	Issues       []ack.Issue   `json:"issues,omitempty"`
}

type compactReport struct {
	envelope
	Status ack.Status  `json:"status,omitempty"`
	Valid  bool        `json:"valid"`
	Counts *ack.Counts `json:"counts,omitempty"`
}

// Format converts the documents to JSON.
func (f *Formatter) Format(docs []formatter.Document, opts formatter.Options) ([]byte, error) {
	reports := make([]any, 0, len(docs))
	for _, doc := range docs {
		reports = append(reports, f.build(doc))
	}

	var out []byte
	var err error
	if len(reports) == 1 {
		out, err = json.MarshalIndent(reports[0], "", "  ")
	} else {
		out, err = json.MarshalIndent(reports, "", "  ")
	}
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func (f *Formatter) build(doc formatter.Document) any {
	env := envelope{ReportID: doc.ReportID, Document: doc.Name, Error: doc.Error}
	r := doc.Result

	switch f.mode {
	case ModeCompact:
		c := compactReport{envelope: env}
		if r != nil {
			c.Status, c.Valid, c.Counts = r.Status, r.Valid, &r.Counts
		}
		return c

	case ModeSummary:
		s := summaryReport{envelope: env}
		if r != nil {
			s.Status, s.Valid, s.Counts = r.Status, r.Valid, &r.Counts
			s.Summary = r.Summary()
			s.Issues = r.Issues
			for _, row := range formatter.Transactions(doc) {
				s.Transactions = append(s.Transactions, transaction{
					FunctionalIDCode:   row.FunctionalIDCode,
					GroupControlNumber: row.GroupControlNumber,
					TransactionSetID:   row.TransactionSetID,
					ControlNumber:      row.ControlNumber,
					Status:             row.Status,
					Errors:             row.Errors,
				})
			}
		}
		return s

	default:
		return fullReport{envelope: env, ValidationResult: r}
	}
}
