/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package ack

import (
	"errors"
	"fmt"

	"bennypowers.dev/ack997/x12"
)

// Severity grades an Issue.
type Severity string

const (
	// SeverityWarning marks an inconsistency that does not change any status.
	SeverityWarning Severity = "warning"

	// SeverityError marks a validation error that forced a unit to REJECTED.
	SeverityError Severity = "error"
)

// Issue kinds.
const (
	KindMissingAckCode        = "missing_ack_code"
	KindUnknownAckCode        = "unknown_ack_code"
	KindUnmappedCode          = "unmapped_code"
	KindStatusMismatch        = "status_mismatch"
	KindCountMismatch         = "count_mismatch"
	KindRejectedWithoutErrors = "rejected_without_errors"
	KindAcceptedWithErrors    = "accepted_with_errors"
	KindNoGroups              = "no_groups"
)

// Issue is a warning or validation error found while validating.
type Issue struct {
	Severity                 Severity `json:"severity"`
	Kind                     string   `json:"kind"`
	Message                  string   `json:"message"`
	Element                  string   `json:"element,omitempty"`
	GroupControlNumber       string   `json:"groupControlNumber,omitempty"`
	TransactionControlNumber string   `json:"transactionControlNumber,omitempty"`
}

// String formats the issue for display.
func (i Issue) String() string {
	prefix := ""
	if i.GroupControlNumber != "" {
		prefix += "group " + i.GroupControlNumber + ": "
	}
	if i.TransactionControlNumber != "" {
		prefix += "transaction set " + i.TransactionControlNumber + ": "
	}
	return fmt.Sprintf("%s: %s%s", i.Severity, prefix, i.Message)
}

// Counts aggregates the outcome of a validation run.
type Counts struct {
	Groups          int `json:"groups"`
	TransactionSets int `json:"transactionSets"`
	Accepted        int `json:"accepted"`
	Partial         int `json:"partiallyAccepted"`
	Rejected        int `json:"rejected"`
	Errors          int `json:"errors"`
}

// ValidationResult is the outcome of validating one 997 document. It is
// produced once and not modified afterwards.
type ValidationResult struct {
	// Status is the interchange level status.
	Status Status `json:"status"`

	// Valid is true only when Status is Accepted.
	Valid bool `json:"valid"`

	// Counts summarizes transaction sets and errors.
	Counts Counts `json:"counts"`

	// Interchange is the parsed tree with statuses and descriptions resolved.
	Interchange *Interchange `json:"interchange"`

	// Issues holds warnings and validation errors in discovery order.
	Issues []Issue `json:"issues,omitempty"`
}

// Warnings returns the warning level issues.
func (r *ValidationResult) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

// Errors returns the error level issues.
func (r *ValidationResult) Errors() []Issue {
	return r.filter(SeverityError)
}

func (r *ValidationResult) filter(sev Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

// Err joins the validation errors recorded in the result, or returns nil.
// Each joined error matches x12.ErrValidation.
func (r *ValidationResult) Err() error {
	var errs []error
	for _, i := range r.Errors() {
		errs = append(errs, &x12.ValidationError{
			GroupControlNumber:       i.GroupControlNumber,
			TransactionControlNumber: i.TransactionControlNumber,
			Element:                  i.Element,
			Message:                  i.Message,
		})
	}
	return errors.Join(errs...)
}

// Summary returns a one line description of the result.
func (r *ValidationResult) Summary() string {
	c := r.Counts
	noun := "transaction sets"
	if c.TransactionSets == 1 {
		noun = "transaction set"
	}
	errNoun := "errors"
	if c.Errors == 1 {
		errNoun = "error"
	}
	return fmt.Sprintf("%s: %d %s (%d accepted, %d partially accepted, %d rejected), %d %s",
		r.Status, c.TransactionSets, noun, c.Accepted, c.Partial, c.Rejected, c.Errors, errNoun)
}

// TransactionRef identifies an acknowledged transaction set for matching
// against outbound logs.
type TransactionRef struct {
	FunctionalIDCode   string `json:"functionalIdCode"`
	GroupControlNumber string `json:"groupControlNumber"`
	TransactionSetID   string `json:"transactionSetId"`
	ControlNumber      string `json:"controlNumber"`
	Status             Status `json:"status"`
}

// Acknowledgments lists every acknowledged transaction set in document order.
func (r *ValidationResult) Acknowledgments() []TransactionRef {
	if r.Interchange == nil {
		return nil
	}
	var refs []TransactionRef
	for _, g := range r.Interchange.Groups {
		for _, ts := range g.TransactionSets {
			refs = append(refs, TransactionRef{
				FunctionalIDCode:   g.FunctionalIDCode,
				GroupControlNumber: g.GroupControlNumber,
				TransactionSetID:   ts.TransactionSetID,
				ControlNumber:      ts.ControlNumber,
				Status:             ts.Status,
			})
		}
	}
	return refs
}
