/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package delimiter detects X12 delimiters from the fixed-width ISA header.
package delimiter

import (
	"fmt"
	"strings"

	"bennypowers.dev/ack997/x12"
)

// HeaderLength is the byte length of an ISA segment including its terminator.
const HeaderLength = 106

const (
	elementIndex    = 3
	repetitionIndex = 82
	subElementIndex = 104
	segmentIndex    = 105
)

// elementBoundaries are the offsets at which the element separator must
// appear in a well-formed ISA header.
var elementBoundaries = [...]int{3, 6, 17, 20, 31, 34, 50, 53, 69, 76, 81, 83, 89, 99, 101, 103}

// Delimiters holds the structural delimiters of an interchange.
type Delimiters struct {
	// Element separates data elements within a segment.
	Element byte
	// Segment terminates each segment.
	Segment byte
	// SubElement separates components of a composite element (ISA-16).
	SubElement byte
	// Repetition separates repeated elements (ISA-11). Zero when ISA-11
	// carries the "U" standards identifier instead.
	Repetition byte
}

// Default returns the most common delimiter set.
func Default() Delimiters {
	return Delimiters{Element: '*', Segment: '~', SubElement: '>'}
}

// String returns a readable summary of the delimiters.
func (d Delimiters) String() string {
	s := fmt.Sprintf("element=%q segment=%q sub-element=%q", d.Element, d.Segment, d.SubElement)
	if d.Repetition != 0 {
		s += fmt.Sprintf(" repetition=%q", d.Repetition)
	}
	return s
}

// RawDocument is unparsed document text paired with its detected delimiters.
// It cannot be modified once Detect returns it.
type RawDocument struct {
	text   string
	delims Delimiters
}

// Text returns the document text starting at the ISA segment.
func (d *RawDocument) Text() string {
	return d.text
}

// Delimiters returns the detected delimiters.
func (d *RawDocument) Delimiters() Delimiters {
	return d.delims
}

// Header returns the ISA segment including its terminator.
func (d *RawDocument) Header() string {
	return d.text[:HeaderLength]
}

// Detect infers delimiters from the fixed-width ISA header at the start of
// content. Leading whitespace and a UTF-8 byte order mark are skipped. The
// first reading at the expected offsets wins; no alternative layouts are
// attempted.
func Detect(content []byte) (*RawDocument, error) {
	return DetectString(string(content))
}

// DetectString is Detect for string input.
func DetectString(content string) (*RawDocument, error) {
	text := strings.TrimPrefix(content, "\uFEFF")
	text = strings.TrimLeft(text, " \t\r\n")

	if text == "" {
		return nil, &x12.EnvelopeError{Reason: "document is empty"}
	}
	if !strings.HasPrefix(text, x12.ISA) {
		return nil, &x12.EnvelopeError{Reason: "document does not begin with an ISA segment"}
	}
	if len(text) < HeaderLength {
		return nil, &x12.EnvelopeError{
			Reason: fmt.Sprintf("ISA segment is %d bytes, expected %d", len(text), HeaderLength),
		}
	}

	element := text[elementIndex]
	for _, offset := range elementBoundaries {
		if text[offset] != element {
			return nil, &x12.EnvelopeError{
				Reason: fmt.Sprintf("expected element separator %q at offset %d, found %q", element, offset, text[offset]),
			}
		}
	}

	delims := Delimiters{
		Element:    element,
		SubElement: text[subElementIndex],
		Segment:    text[segmentIndex],
	}
	if err := delims.validate(); err != nil {
		return nil, err
	}

	if rep := text[repetitionIndex]; rep != 'U' && !isAlphanumeric(rep) && rep != ' ' &&
		rep != delims.Element && rep != delims.SubElement && rep != delims.Segment {
		delims.Repetition = rep
	}

	return &RawDocument{text: text, delims: delims}, nil
}

// validate checks that the delimiters are usable and pairwise distinct.
func (d Delimiters) validate() error {
	named := []struct {
		name string
		b    byte
	}{
		{"element separator", d.Element},
		{"sub-element separator", d.SubElement},
		{"segment terminator", d.Segment},
	}
	for _, n := range named {
		if isAlphanumeric(n.b) {
			return &x12.EnvelopeError{Reason: fmt.Sprintf("%s %q must not be alphanumeric", n.name, n.b)}
		}
	}
	if d.Element == ' ' || d.SubElement == ' ' {
		return &x12.EnvelopeError{Reason: "separators must not be spaces"}
	}
	if d.Element == d.SubElement || d.Element == d.Segment || d.SubElement == d.Segment {
		return &x12.EnvelopeError{Reason: fmt.Sprintf("delimiters are not unique: %s", d)}
	}
	return nil
}

func isAlphanumeric(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
