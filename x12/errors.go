/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package x12

import (
	"errors"
	"strconv"
	"strings"
)

// Sentinel errors for 997 processing.
var (
	// ErrMalformedEnvelope indicates the ISA header could not be used to
	// derive delimiters, or the interchange envelope does not close properly.
	ErrMalformedEnvelope = errors.New("malformed interchange envelope")

	// ErrTokenization indicates the document could not be split into segments.
	ErrTokenization = errors.New("tokenization failed")

	// ErrStructural indicates an out-of-order or unrecognized segment.
	ErrStructural = errors.New("structural error")

	// ErrValidation indicates a required acknowledgment code is missing.
	ErrValidation = errors.New("validation error")
)

// EnvelopeError describes why the interchange envelope is malformed.
type EnvelopeError struct {
	// Reason describes what is wrong with the envelope.
	Reason string
}

// Error implements the error interface.
func (e *EnvelopeError) Error() string {
	return ErrMalformedEnvelope.Error() + ": " + e.Reason
}

// Unwrap returns ErrMalformedEnvelope.
func (e *EnvelopeError) Unwrap() error {
	return ErrMalformedEnvelope
}

// TokenizationError reports content that cannot form a segment.
type TokenizationError struct {
	// Position is the 1-based ordinal the segment would have had.
	Position int
	// Offset is the byte offset of the offending content.
	Offset int
	// Reason describes the failure.
	Reason string
}

// Error implements the error interface.
func (e *TokenizationError) Error() string {
	var sb strings.Builder
	sb.WriteString(ErrTokenization.Error())
	sb.WriteString(" at segment ")
	sb.WriteString(strconv.Itoa(e.Position))
	sb.WriteString(" (offset ")
	sb.WriteString(strconv.Itoa(e.Offset))
	sb.WriteString("): ")
	sb.WriteString(e.Reason)
	return sb.String()
}

// Unwrap returns ErrTokenization.
func (e *TokenizationError) Unwrap() error {
	return ErrTokenization
}

// StructuralError identifies the segment that broke envelope or
// acknowledgment nesting.
type StructuralError struct {
	// SegmentID is the identifier of the offending segment.
	SegmentID string
	// Position is the 1-based position of the segment in the document.
	Position int
	// Reason describes the violation.
	Reason string
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	var sb strings.Builder
	sb.WriteString(ErrStructural.Error())
	sb.WriteString(": ")
	if e.SegmentID != "" {
		sb.WriteString(e.SegmentID)
		sb.WriteString(" at position ")
		sb.WriteString(strconv.Itoa(e.Position))
		sb.WriteString(": ")
	}
	sb.WriteString(e.Reason)
	return sb.String()
}

// Unwrap returns ErrStructural.
func (e *StructuralError) Unwrap() error {
	return ErrStructural
}

// ValidationError reports a missing acknowledgment code. The affected unit
// is classified as rejected.
type ValidationError struct {
	// GroupControlNumber is the acknowledged group control number (AK1-02).
	GroupControlNumber string
	// TransactionControlNumber is set when the error concerns a transaction set.
	TransactionControlNumber string
	// Element names the missing element, e.g. "AK5-01".
	Element string
	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(ErrValidation.Error())
	sb.WriteString(": ")
	if e.GroupControlNumber != "" {
		sb.WriteString("group ")
		sb.WriteString(e.GroupControlNumber)
		sb.WriteString(": ")
	}
	if e.TransactionControlNumber != "" {
		sb.WriteString("transaction set ")
		sb.WriteString(e.TransactionControlNumber)
		sb.WriteString(": ")
	}
	if e.Element != "" {
		sb.WriteString(e.Element)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	return sb.String()
}

// Unwrap returns ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
