/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package parser

import (
	"fmt"

	"bennypowers.dev/ack997/ack"
	"bennypowers.dev/ack997/delimiter"
	"bennypowers.dev/ack997/fs"
	"bennypowers.dev/ack997/segment"
	"bennypowers.dev/ack997/tokenizer"
	"bennypowers.dev/ack997/x12"
)

// segmentErrorFallback is the AK3-04 code assumed for an AK3 that carries
// neither its own code nor any AK4.
const segmentErrorFallback = "8"

// X12Parser parses delimited X12 997 documents.
type X12Parser struct{}

// NewX12Parser creates a new 997 parser.
func NewX12Parser() *X12Parser {
	return &X12Parser{}
}

// Parse detects delimiters and parses data.
func (p *X12Parser) Parse(data []byte, opts Options) (*ack.Interchange, error) {
	doc, err := delimiter.Detect(data)
	if err != nil {
		return nil, err
	}
	return p.ParseDocument(doc, opts)
}

// ParseFile reads and parses a document file.
func (p *X12Parser) ParseFile(filesystem fs.FileSystem, path string, opts Options) (*ack.Interchange, error) {
	data, err := filesystem.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	ic, err := p.Parse(data, opts)
	if err != nil {
		return ic, fmt.Errorf("failed to parse file %s: %w", path, err)
	}
	return ic, nil
}

// ParseDocument parses a detected document.
//
// Parsing stops at the first structural violation. The returned interchange
// then holds every functional group whose ST/SE transaction set closed before
// the violation, alongside a *x12.StructuralError. Groups whose GS/GE
// envelope never closed carry Envelope.Unclosed. Tokenization errors return
// a nil interchange.
func (p *X12Parser) ParseDocument(doc *delimiter.RawDocument, opts Options) (*ack.Interchange, error) {
	b := &builder{opts: opts}
	sub := doc.Delimiters().SubElement

	tok := tokenizer.New(doc)
	for tok.Next() {
		seg, err := segment.Decode(tok.Segment(), sub)
		if err != nil {
			return b.ic, err
		}
		if err := b.add(seg); err != nil {
			return b.ic, err
		}
	}
	if err := tok.Err(); err != nil {
		return nil, err
	}
	if err := b.finish(); err != nil {
		return b.ic, err
	}
	return b.ic, nil
}

type state int

const (
	stateStart       state = iota // expecting ISA
	stateInterchange              // expecting GS or IEA
	stateEnvelope                 // expecting ST or GE
	stateAckHeader                // expecting AK1
	stateGroupAck                 // expecting AK2 or AK9
	stateTransaction              // expecting AK3, AK4 or AK5
	stateTrailer                  // expecting SE
	stateDone                     // after IEA
)

// inTransactionSet reports whether the state lies between ST and SE.
func (s state) inTransactionSet() bool {
	return s >= stateAckHeader && s <= stateTrailer
}

type builder struct {
	opts  Options
	state state
	last  segment.Segment

	ic       *ack.Interchange
	isa      *segment.ISA
	envelope *ack.Envelope
	envStart int
	group    *ack.FunctionalGroup
	set      *ack.TransactionSet
	ak3      *segment.AK3
	ak3Noted bool
	segments int
}

func (b *builder) add(seg segment.Segment) error {
	if b.state.inTransactionSet() {
		b.segments++
	}
	b.last = seg

	switch s := seg.(type) {
	case *segment.ISA:
		return b.onISA(s)
	case *segment.GS:
		return b.onGS(s)
	case *segment.ST:
		return b.onST(s)
	case *segment.AK1:
		return b.onAK1(s)
	case *segment.AK2:
		return b.onAK2(s)
	case *segment.AK3:
		return b.onAK3(s)
	case *segment.AK4:
		return b.onAK4(s)
	case *segment.AK5:
		return b.onAK5(s)
	case *segment.AK9:
		return b.onAK9(s)
	case *segment.SE:
		return b.onSE(s)
	case *segment.GE:
		return b.onGE(s)
	case *segment.IEA:
		return b.onIEA(s)
	case *segment.Other:
		return b.onOther(s)
	default:
		return structural(seg, "unsupported segment type %T", seg)
	}
}

func (b *builder) onISA(s *segment.ISA) error {
	if b.state != stateStart {
		return structural(s, "an interchange is already open; only one ISA is allowed")
	}
	b.isa = s
	b.ic = &ack.Interchange{
		ControlNumber:     s.ControlNumber,
		SenderQualifier:   s.SenderQualifier,
		SenderID:          s.SenderID,
		ReceiverQualifier: s.ReceiverQualifier,
		ReceiverID:        s.ReceiverID,
		Date:              s.Date,
		Time:              s.Time,
		Version:           s.Version,
		UsageIndicator:    s.UsageIndicator,
		AckRequested:      s.AckRequested,
		Groups:            []ack.FunctionalGroup{},
	}
	b.state = stateInterchange
	return nil
}

func (b *builder) onGS(s *segment.GS) error {
	if b.state != stateInterchange {
		return b.unexpected(s)
	}
	b.ic.Envelopes++
	b.envelope = &ack.Envelope{
		FunctionalID:  s.FunctionalID,
		SenderCode:    s.SenderCode,
		ReceiverCode:  s.ReceiverCode,
		Date:          s.Date,
		Time:          s.Time,
		ControlNumber: s.ControlNumber,
		Version:       s.Version,
	}
	b.envStart = len(b.ic.Groups)
	b.state = stateEnvelope
	return nil
}

func (b *builder) onST(s *segment.ST) error {
	if b.state != stateEnvelope {
		return b.unexpected(s)
	}
	if s.TransactionSetID != x12.FunctionalAck {
		return structural(s, "transaction set %s is not a %s functional acknowledgment", s.TransactionSetID, x12.FunctionalAck)
	}
	b.envelope.TransactionSets++
	b.group = &ack.FunctionalGroup{
		Response:        ack.Response{ControlNumber: s.ControlNumber},
		TransactionSets: []ack.TransactionSet{},
	}
	b.segments = 1
	b.state = stateAckHeader
	return nil
}

func (b *builder) onAK1(s *segment.AK1) error {
	if b.state != stateAckHeader {
		if b.state == stateGroupAck || b.state == stateTransaction {
			return structural(s, "AK1 must appear once, before any AK2")
		}
		return b.unexpected(s)
	}
	b.group.FunctionalIDCode = s.FunctionalID
	b.group.GroupControlNumber = s.GroupControlNumber
	b.group.Version = s.Version
	b.group.Position = s.Position()
	b.state = stateGroupAck
	return nil
}

func (b *builder) onAK2(s *segment.AK2) error {
	switch b.state {
	case stateGroupAck:
	case stateAckHeader:
		return structural(s, "AK2 before AK1")
	case stateTransaction:
		return structural(s, "AK2 before AK5 closed transaction set %s", b.set.ControlNumber)
	default:
		return b.unexpected(s)
	}
	b.set = &ack.TransactionSet{
		TransactionSetID:  s.TransactionSetID,
		ControlNumber:     s.ControlNumber,
		ImplementationRef: s.ImplementationRef,
		Position:          s.Position(),
	}
	b.state = stateTransaction
	return nil
}

func (b *builder) onAK3(s *segment.AK3) error {
	if b.state != stateTransaction {
		return b.outsideTransaction(s)
	}
	b.closeAK3()
	b.ak3 = s
	b.ak3Noted = false
	if s.ErrorCode != "" {
		b.set.Errors = append(b.set.Errors, segmentError(s, s.ErrorCode))
		b.ak3Noted = true
	}
	return nil
}

func (b *builder) onAK4(s *segment.AK4) error {
	if b.state != stateTransaction {
		return b.outsideTransaction(s)
	}
	if b.ak3 == nil {
		return structural(s, "AK4 without a preceding AK3 in transaction set %s", b.set.ControlNumber)
	}
	b.set.Errors = append(b.set.Errors, ack.ErrorDetail{
		Level:             ack.LevelElement,
		SegmentID:         b.ak3.SegmentID,
		SegmentPosition:   copyInt(b.ak3.SegmentPosition),
		LoopID:            b.ak3.LoopID,
		ElementPosition:   copyInt(s.ElementPosition),
		ComponentPosition: copyInt(s.ComponentPosition),
		RepeatPosition:    copyInt(s.RepeatPosition),
		ElementReference:  copyInt(s.ElementReference),
		Code:              s.ErrorCode,
		BadData:           s.BadData,
	})
	b.ak3Noted = true
	return nil
}

func (b *builder) onAK5(s *segment.AK5) error {
	if b.state != stateTransaction {
		return b.outsideTransaction(s)
	}
	b.closeAK3()
	b.set.AckCode = s.AckCode
	for _, code := range s.SyntaxErrors {
		b.set.Errors = append(b.set.Errors, ack.ErrorDetail{
			Level: ack.LevelTransactionSet,
			Code:  code,
		})
	}
	b.group.TransactionSets = append(b.group.TransactionSets, *b.set)
	b.set = nil
	b.state = stateGroupAck
	return nil
}

func (b *builder) onAK9(s *segment.AK9) error {
	switch b.state {
	case stateGroupAck:
	case stateAckHeader:
		return structural(s, "AK9 before AK1")
	case stateTransaction:
		return structural(s, "AK9 before AK5 closed transaction set %s", b.set.ControlNumber)
	case stateTrailer:
		return structural(s, "AK9 must appear once, as the last acknowledgment segment")
	default:
		return b.unexpected(s)
	}
	b.group.AckCode = s.AckCode
	b.group.Included = s.Included
	b.group.Received = s.Received
	b.group.Accepted = s.Accepted
	for _, code := range s.SyntaxErrors {
		b.group.Errors = append(b.group.Errors, ack.ErrorDetail{
			Level: ack.LevelGroup,
			Code:  code,
		})
	}
	b.state = stateTrailer
	return nil
}

func (b *builder) onSE(s *segment.SE) error {
	switch b.state {
	case stateTrailer:
	case stateAckHeader, stateGroupAck:
		return structural(s, "SE before AK9 closed the functional group acknowledgment")
	case stateTransaction:
		return structural(s, "SE before AK5 closed transaction set %s", b.set.ControlNumber)
	default:
		return b.unexpected(s)
	}
	if s.ControlNumber != b.group.Response.ControlNumber {
		return structural(s, "SE-02 %q does not match ST-02 %q", s.ControlNumber, b.group.Response.ControlNumber)
	}
	b.group.Response.DeclaredSegments = s.SegmentCount
	b.group.Response.Segments = b.segments
	b.group.Envelope = *b.envelope
	b.group.Envelope.Unclosed = true
	b.ic.Groups = append(b.ic.Groups, *b.group)
	b.group = nil
	b.state = stateEnvelope
	return nil
}

func (b *builder) onGE(s *segment.GE) error {
	if b.state != stateEnvelope {
		if b.state.inTransactionSet() {
			return structural(s, "GE before SE closed transaction set %s", b.group.Response.ControlNumber)
		}
		return b.unexpected(s)
	}
	if s.ControlNumber != b.envelope.ControlNumber {
		return structural(s, "GE-02 %q does not match GS-06 %q", s.ControlNumber, b.envelope.ControlNumber)
	}
	b.envelope.DeclaredTransactionSets = s.TransactionSetCount
	for i := b.envStart; i < len(b.ic.Groups); i++ {
		b.ic.Groups[i].Envelope = *b.envelope
		b.ic.Groups[i].Envelope.DeclaredTransactionSets = copyInt(s.TransactionSetCount)
	}
	b.envelope = nil
	b.state = stateInterchange
	return nil
}

func (b *builder) onIEA(s *segment.IEA) error {
	if b.state != stateInterchange {
		if b.state == stateEnvelope || b.state.inTransactionSet() {
			return structural(s, "IEA before GE closed group %s", b.envelope.ControlNumber)
		}
		return b.unexpected(s)
	}
	if s.ControlNumber != b.isa.ControlNumber {
		return &x12.EnvelopeError{
			Reason: fmt.Sprintf("IEA-02 %q does not match ISA-13 %q", s.ControlNumber, b.isa.ControlNumber),
		}
	}
	b.ic.DeclaredGroups = s.GroupCount
	b.state = stateDone
	return nil
}

func (b *builder) onOther(s *segment.Other) error {
	if b.state.inTransactionSet() {
		return structural(s, "unexpected segment %s inside a %s transaction set", s.ID(), x12.FunctionalAck)
	}
	if b.opts.RejectPassThrough || b.state == stateStart {
		return b.unexpected(s)
	}
	return nil
}

// closeAK3 records an AK3 that reported neither its own code nor any AK4.
func (b *builder) closeAK3() {
	if b.ak3 != nil && !b.ak3Noted {
		b.set.Errors = append(b.set.Errors, segmentError(b.ak3, segmentErrorFallback))
	}
	b.ak3 = nil
	b.ak3Noted = false
}

func (b *builder) finish() error {
	switch b.state {
	case stateDone:
		return nil
	case stateStart, stateInterchange:
		return &x12.EnvelopeError{Reason: "document ended before IEA"}
	case stateEnvelope:
		return structural(b.last, "document ended before GE closed group %s", b.envelope.ControlNumber)
	default:
		return structural(b.last, "document ended before SE closed transaction set %s", b.group.Response.ControlNumber)
	}
}

func (b *builder) unexpected(s segment.Segment) error {
	return structural(s, "unexpected segment %s", s.ID())
}

func (b *builder) outsideTransaction(s segment.Segment) error {
	if b.state == stateAckHeader || b.state == stateGroupAck {
		return structural(s, "%s outside an AK2 transaction set acknowledgment", s.ID())
	}
	return b.unexpected(s)
}

func structural(s segment.Segment, format string, args ...any) error {
	return &x12.StructuralError{
		SegmentID: s.ID(),
		Position:  s.Position(),
		Reason:    fmt.Sprintf(format, args...),
	}
}

func segmentError(s *segment.AK3, code string) ack.ErrorDetail {
	return ack.ErrorDetail{
		Level:           ack.LevelSegment,
		SegmentID:       s.SegmentID,
		SegmentPosition: copyInt(s.SegmentPosition),
		LoopID:          s.LoopID,
		Code:            code,
	}
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
