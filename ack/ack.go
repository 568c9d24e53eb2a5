/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package ack provides the data model of a parsed and validated 997
// functional acknowledgment.
package ack

// Status is the acceptance status of a transaction set, group, or interchange.
type Status string

const (
	// Accepted means the acknowledged unit was accepted without errors.
	Accepted Status = "ACCEPTED"

	// PartiallyAccepted means the unit was accepted with errors noted, or
	// only some of its transaction sets were accepted.
	PartiallyAccepted Status = "PARTIALLY_ACCEPTED"

	// Rejected means the unit was rejected.
	Rejected Status = "REJECTED"
)

// String returns the status name.
func (s Status) String() string {
	return string(s)
}

// Level identifies which acknowledgment segment reported an error.
type Level string

const (
	// LevelSegment is a segment syntax error (AK3-04).
	LevelSegment Level = "segment"

	// LevelElement is a data element syntax error (AK4-03).
	LevelElement Level = "element"

	// LevelTransactionSet is a transaction set syntax error (AK5-02..06).
	LevelTransactionSet Level = "transaction_set"

	// LevelGroup is a functional group syntax error (AK9-05..09).
	LevelGroup Level = "group"
)

// ErrorDetail is one error reported by the acknowledgment.
type ErrorDetail struct {
	// Level is the kind of error.
	Level Level `json:"level"`

	// SegmentID is the segment in error. Empty for transaction set and
	// group level errors.
	SegmentID string `json:"segmentId,omitempty"`

	// SegmentPosition is the position of the segment within its
	// transaction set. Nil when not reported.
	SegmentPosition *int `json:"segmentPosition,omitempty"`

	// LoopID is the loop identifier of the segment, if reported.
	LoopID string `json:"loopId,omitempty"`

	// ElementPosition is the position of the element in error. Nil for
	// errors that are not element level.
	ElementPosition *int `json:"elementPosition,omitempty"`

	// ComponentPosition is the position within a composite element.
	ComponentPosition *int `json:"componentPosition,omitempty"`

	// RepeatPosition is the repetition index of a repeating element.
	RepeatPosition *int `json:"repeatPosition,omitempty"`

	// ElementReference is the data element reference number.
	ElementReference *int `json:"elementReference,omitempty"`

	// Code is the raw syntax error code.
	Code string `json:"code"`

	// Description is the human readable meaning of Code.
	Description string `json:"description,omitempty"`

	// BadData is a copy of the data element in error.
	BadData string `json:"badData,omitempty"`
}

// TransactionSet is the acknowledgment of one transaction set (AK2..AK5).
type TransactionSet struct {
	// TransactionSetID is the acknowledged transaction type, e.g. "850".
	TransactionSetID string `json:"transactionSetId"`

	// ControlNumber is the ST-02 of the acknowledged transaction set.
	ControlNumber string `json:"controlNumber"`

	// ImplementationRef is the implementation convention reference (AK2-03).
	ImplementationRef string `json:"implementationRef,omitempty"`

	// AckCode is AK5-01; empty when the document omits it.
	AckCode string `json:"ackCode"`

	// Errors holds segment, element and transaction set level errors in
	// document order.
	Errors []ErrorDetail `json:"errors,omitempty"`

	// Status is set by validation.
	Status Status `json:"status,omitempty"`

	// Position is the document position of the AK2 segment.
	Position int `json:"-"`
}

// Envelope holds the GS/GE envelope that carried an acknowledgment.
type Envelope struct {
	FunctionalID  string `json:"functionalId"`
	SenderCode    string `json:"senderCode,omitempty"`
	ReceiverCode  string `json:"receiverCode,omitempty"`
	Date          string `json:"date,omitempty"`
	Time          string `json:"time,omitempty"`
	ControlNumber string `json:"controlNumber"`
	Version       string `json:"version,omitempty"`

	// DeclaredTransactionSets is GE-01.
	DeclaredTransactionSets *int `json:"declaredTransactionSets,omitempty"`

	// TransactionSets is the number of ST segments actually in the envelope.
	TransactionSets int `json:"transactionSets"`

	// Unclosed is set when parsing stopped before GE closed the envelope.
	Unclosed bool `json:"unclosed,omitempty"`
}

// Response identifies the 997 transaction set (ST/SE) itself.
type Response struct {
	ControlNumber string `json:"controlNumber"`

	// DeclaredSegments is SE-01.
	DeclaredSegments *int `json:"declaredSegments,omitempty"`

	// Segments is the number of segments from ST to SE inclusive.
	Segments int `json:"segments"`
}

// FunctionalGroup is the acknowledgment of one functional group: the
// AK1..AK9 block of one 997 transaction set.
type FunctionalGroup struct {
	// Envelope is the GS/GE envelope carrying the acknowledgment.
	Envelope Envelope `json:"envelope"`

	// Response is the ST/SE of the 997 transaction set.
	Response Response `json:"response"`

	// FunctionalIDCode is AK1-01, the functional identifier of the
	// acknowledged group.
	FunctionalIDCode string `json:"functionalIdCode"`

	// GroupControlNumber is AK1-02, the control number of the acknowledged group.
	GroupControlNumber string `json:"groupControlNumber"`

	// Version is AK1-03 when present.
	Version string `json:"version,omitempty"`

	// TransactionSets are the AK2 blocks in document order.
	TransactionSets []TransactionSet `json:"transactionSets"`

	// AckCode is AK9-01; empty when the document omits it.
	AckCode string `json:"ackCode"`

	// Included, Received and Accepted are AK9-02, AK9-03 and AK9-04.
	Included *int `json:"included,omitempty"`
	Received *int `json:"received,omitempty"`
	Accepted *int `json:"accepted,omitempty"`

	// Errors holds group level syntax errors (AK9-05..09).
	Errors []ErrorDetail `json:"errors,omitempty"`

	// Status is set by validation.
	Status Status `json:"status,omitempty"`

	// Position is the document position of the AK1 segment.
	Position int `json:"-"`
}

// Interchange is the root of a parsed 997 document.
type Interchange struct {
	ControlNumber     string `json:"controlNumber"`
	SenderQualifier   string `json:"senderQualifier,omitempty"`
	SenderID          string `json:"senderId"`
	ReceiverQualifier string `json:"receiverQualifier,omitempty"`
	ReceiverID        string `json:"receiverId"`
	Date              string `json:"date,omitempty"`
	Time              string `json:"time,omitempty"`
	Version           string `json:"version,omitempty"`
	UsageIndicator    string `json:"usageIndicator,omitempty"`
	AckRequested      string `json:"ackRequested,omitempty"`

	// DeclaredGroups is IEA-01.
	DeclaredGroups *int `json:"declaredGroups,omitempty"`

	// Envelopes is the number of GS segments actually in the interchange.
	Envelopes int `json:"envelopes"`

	// Groups are the functional group acknowledgments in document order.
	Groups []FunctionalGroup `json:"groups"`
}

// Clone returns a deep copy of the interchange.
func (ic *Interchange) Clone() *Interchange {
	if ic == nil {
		return nil
	}
	out := *ic
	out.DeclaredGroups = cloneInt(ic.DeclaredGroups)
	out.Groups = make([]FunctionalGroup, len(ic.Groups))
	for i, g := range ic.Groups {
		out.Groups[i] = g.clone()
	}
	return &out
}

func (g FunctionalGroup) clone() FunctionalGroup {
	out := g
	out.Envelope.DeclaredTransactionSets = cloneInt(g.Envelope.DeclaredTransactionSets)
	out.Response.DeclaredSegments = cloneInt(g.Response.DeclaredSegments)
	out.Included = cloneInt(g.Included)
	out.Received = cloneInt(g.Received)
	out.Accepted = cloneInt(g.Accepted)
	out.Errors = cloneErrors(g.Errors)
	out.TransactionSets = make([]TransactionSet, len(g.TransactionSets))
	for i, ts := range g.TransactionSets {
		ts.Errors = cloneErrors(ts.Errors)
		out.TransactionSets[i] = ts
	}
	return out
}

func cloneErrors(in []ErrorDetail) []ErrorDetail {
	if in == nil {
		return nil
	}
	out := make([]ErrorDetail, len(in))
	for i, e := range in {
		e.SegmentPosition = cloneInt(e.SegmentPosition)
		e.ElementPosition = cloneInt(e.ElementPosition)
		e.ComponentPosition = cloneInt(e.ComponentPosition)
		e.RepeatPosition = cloneInt(e.RepeatPosition)
		e.ElementReference = cloneInt(e.ElementReference)
		out[i] = e
	}
	return out
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
