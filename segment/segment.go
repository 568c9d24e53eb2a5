/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package segment provides typed representations of the segments that make
// up a 997 functional acknowledgment.
package segment

import "bennypowers.dev/ack997/x12"

// Segment is implemented by every typed segment in this package and by no
// other type. Switch on the concrete type to handle each kind.
type Segment interface {
	// ID returns the segment identifier.
	ID() string
	// Position returns the 1-based position of the segment in the document.
	Position() int

	sealed()
}

type base struct {
	pos int
}

func (b base) Position() int { return b.pos }

func (base) sealed() {}

// ISA is the interchange control header.
type ISA struct {
	base
	AuthQualifier      string
	AuthInfo           string
	SecurityQualifier  string
	SecurityInfo       string
	SenderQualifier    string
	SenderID           string
	ReceiverQualifier  string
	ReceiverID         string
	Date               string
	Time               string
	StandardsID        string
	Version            string
	ControlNumber      string
	AckRequested       string
	UsageIndicator     string
	ComponentSeparator string
}

// ID implements Segment.
func (*ISA) ID() string { return x12.ISA }

// GS is the functional group header.
type GS struct {
	base
	FunctionalID  string
	SenderCode    string
	ReceiverCode  string
	Date          string
	Time          string
	ControlNumber string
	Agency        string
	Version       string
}

// ID implements Segment.
func (*GS) ID() string { return x12.GS }

// ST is the transaction set header.
type ST struct {
	base
	TransactionSetID  string
	ControlNumber     string
	ImplementationRef string
}

// ID implements Segment.
func (*ST) ID() string { return x12.ST }

// AK1 opens the acknowledgment of a functional group.
type AK1 struct {
	base
	// FunctionalID is the functional identifier code of the acknowledged group.
	FunctionalID string
	// GroupControlNumber is the GS-06 of the acknowledged group.
	GroupControlNumber string
	// Version is the optional version/release code (AK1-03, 00501+).
	Version string
}

// ID implements Segment.
func (*AK1) ID() string { return x12.AK1 }

// AK2 opens the acknowledgment of one transaction set.
type AK2 struct {
	base
	TransactionSetID  string
	ControlNumber     string
	ImplementationRef string
}

// ID implements Segment.
func (*AK2) ID() string { return x12.AK2 }

// AK3 reports an error in a segment of the acknowledged transaction set.
type AK3 struct {
	base
	// SegmentID is the identifier of the segment in error.
	SegmentID string
	// SegmentPosition is the position of that segment in its transaction
	// set. Nil when AK3-02 is absent.
	SegmentPosition *int
	// LoopID is the loop identifier, empty when absent.
	LoopID string
	// ErrorCode is the segment syntax error code, empty when absent.
	ErrorCode string
}

// ID implements Segment.
func (*AK3) ID() string { return x12.AK3 }

// AK4 reports an error in a data element of the segment named by the
// preceding AK3.
type AK4 struct {
	base
	// ElementPosition is the position of the element in the segment.
	ElementPosition *int
	// ComponentPosition is the position within a composite (00501+).
	ComponentPosition *int
	// RepeatPosition is the repetition index (00501+).
	RepeatPosition *int
	// ElementReference is the data element reference number.
	ElementReference *int
	// ErrorCode is the data element syntax error code.
	ErrorCode string
	// BadData is a copy of the data element in error.
	BadData string
}

// ID implements Segment.
func (*AK4) ID() string { return x12.AK4 }

// AK5 closes a transaction set acknowledgment.
type AK5 struct {
	base
	// AckCode is the transaction set acknowledgment code; empty when missing.
	AckCode string
	// SyntaxErrors holds the non-empty codes of AK5-02 through AK5-06.
	SyntaxErrors []string
}

// ID implements Segment.
func (*AK5) ID() string { return x12.AK5 }

// AK9 closes the functional group acknowledgment.
type AK9 struct {
	base
	// AckCode is the functional group acknowledgment code; empty when missing.
	AckCode  string
	Included *int
	Received *int
	Accepted *int
	// SyntaxErrors holds the non-empty codes of AK9-05 through AK9-09.
	SyntaxErrors []string
}

// ID implements Segment.
func (*AK9) ID() string { return x12.AK9 }

// SE is the transaction set trailer.
type SE struct {
	base
	SegmentCount  *int
	ControlNumber string
}

// ID implements Segment.
func (*SE) ID() string { return x12.SE }

// GE is the functional group trailer.
type GE struct {
	base
	TransactionSetCount *int
	ControlNumber       string
}

// ID implements Segment.
func (*GE) ID() string { return x12.GE }

// IEA is the interchange control trailer.
type IEA struct {
	base
	GroupCount    *int
	ControlNumber string
}

// ID implements Segment.
func (*IEA) ID() string { return x12.IEA }

// Other is any segment outside the 997 vocabulary.
type Other struct {
	base
	SegmentID string
	Elements  []string
}

// ID implements Segment.
func (o *Other) ID() string { return o.SegmentID }
