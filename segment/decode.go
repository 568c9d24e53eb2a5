/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package segment

import (
	"fmt"
	"strconv"
	"strings"

	"bennypowers.dev/ack997/tokenizer"
	"bennypowers.dev/ack997/x12"
)

// Decode converts an untyped segment into its typed form. Unrecognized
// identifiers decode to *Other. subElement is the component separator used
// to split composite AK4-01 values.
func Decode(raw tokenizer.Segment, subElement byte) (Segment, error) {
	r := &reader{raw: raw}
	b := base{pos: raw.Position}

	var seg Segment
	switch raw.ID {
	case x12.ISA:
		if raw.Len() < 16 {
			return nil, r.errorf("ISA has %d elements, expected 16", raw.Len())
		}
		seg = &ISA{
			base:               b,
			AuthQualifier:      r.optional(1),
			AuthInfo:           raw.Element(2),
			SecurityQualifier:  r.optional(3),
			SecurityInfo:       raw.Element(4),
			SenderQualifier:    r.optional(5),
			SenderID:           r.optional(6),
			ReceiverQualifier:  r.optional(7),
			ReceiverID:         r.optional(8),
			Date:               r.optional(9),
			Time:               r.optional(10),
			StandardsID:        raw.Element(11),
			Version:            r.optional(12),
			ControlNumber:      r.required(13),
			AckRequested:       r.optional(14),
			UsageIndicator:     r.optional(15),
			ComponentSeparator: raw.Element(16),
		}
	case x12.GS:
		seg = &GS{
			base:          b,
			FunctionalID:  r.optional(1),
			SenderCode:    r.optional(2),
			ReceiverCode:  r.optional(3),
			Date:          r.optional(4),
			Time:          r.optional(5),
			ControlNumber: r.required(6),
			Agency:        r.optional(7),
			Version:       r.optional(8),
		}
	case x12.ST:
		seg = &ST{
			base:              b,
			TransactionSetID:  r.required(1),
			ControlNumber:     r.required(2),
			ImplementationRef: r.optional(3),
		}
	case x12.AK1:
		seg = &AK1{
			base:               b,
			FunctionalID:       r.required(1),
			GroupControlNumber: r.required(2),
			Version:            r.optional(3),
		}
	case x12.AK2:
		seg = &AK2{
			base:              b,
			TransactionSetID:  r.required(1),
			ControlNumber:     r.required(2),
			ImplementationRef: r.optional(3),
		}
	case x12.AK3:
		seg = &AK3{
			base:            b,
			SegmentID:       r.required(1),
			SegmentPosition: r.number(2),
			LoopID:          r.optional(3),
			ErrorCode:       r.optional(4),
		}
	case x12.AK4:
		ak4 := &AK4{
			base:             b,
			ElementReference: r.number(2),
			ErrorCode:        r.optional(3),
			BadData:          raw.Element(4),
		}
		ak4.ElementPosition, ak4.ComponentPosition, ak4.RepeatPosition = r.composite(1, subElement)
		seg = ak4
	case x12.AK5:
		seg = &AK5{
			base:         b,
			AckCode:      r.optional(1),
			SyntaxErrors: r.codes(2, 6),
		}
	case x12.AK9:
		seg = &AK9{
			base:         b,
			AckCode:      r.optional(1),
			Included:     r.number(2),
			Received:     r.number(3),
			Accepted:     r.number(4),
			SyntaxErrors: r.codes(5, 9),
		}
	case x12.SE:
		seg = &SE{
			base:          b,
			SegmentCount:  r.number(1),
			ControlNumber: r.required(2),
		}
	case x12.GE:
		seg = &GE{
			base:                b,
			TransactionSetCount: r.number(1),
			ControlNumber:       r.required(2),
		}
	case x12.IEA:
		seg = &IEA{
			base:          b,
			GroupCount:    r.number(1),
			ControlNumber: r.required(2),
		}
	default:
		seg = &Other{
			base:      b,
			SegmentID: raw.ID,
			Elements:  append([]string(nil), raw.Elements[1:]...),
		}
	}

	if r.err != nil {
		return nil, r.err
	}
	return seg, nil
}

// reader extracts element values, keeping the first error.
type reader struct {
	raw tokenizer.Segment
	err error
}

func (r *reader) errorf(format string, args ...any) error {
	if r.err == nil {
		r.err = &x12.StructuralError{
			SegmentID: r.raw.ID,
			Position:  r.raw.Position,
			Reason:    fmt.Sprintf(format, args...),
		}
	}
	return r.err
}

func (r *reader) optional(n int) string {
	return strings.TrimSpace(r.raw.Element(n))
}

func (r *reader) required(n int) string {
	v := r.optional(n)
	if v == "" {
		r.errorf("missing required element %s", x12.ElementName(r.raw.ID, n))
	}
	return v
}

func (r *reader) number(n int) *int {
	v := r.optional(n)
	if v == "" {
		return nil
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 0 {
		r.errorf("%s must be a non-negative number, got %q", x12.ElementName(r.raw.ID, n), v)
		return nil
	}
	return &i
}

// composite splits element n on the component separator into up to three
// positions.
func (r *reader) composite(n int, sep byte) (elem, comp, rep *int) {
	v := r.optional(n)
	if v == "" {
		return nil, nil, nil
	}
	parts := strings.Split(v, string(sep))
	if len(parts) > 3 {
		r.errorf("%s has %d components, expected at most 3", x12.ElementName(r.raw.ID, n), len(parts))
		return nil, nil, nil
	}
	out := make([]*int, 3)
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		val, err := strconv.Atoi(p)
		if err != nil || val < 0 {
			r.errorf("%s component %d must be a non-negative number, got %q", x12.ElementName(r.raw.ID, n), i+1, p)
			return nil, nil, nil
		}
		out[i] = &val
	}
	return out[0], out[1], out[2]
}

// codes collects the non-empty values of elements from..to.
func (r *reader) codes(from, to int) []string {
	var out []string
	for n := from; n <= to; n++ {
		if v := r.optional(n); v != "" {
			out = append(out, v)
		}
	}
	return out
}
