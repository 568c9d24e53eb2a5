/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package tokenizer splits a delimited X12 document into segments.
package tokenizer

import (
	"iter"
	"strconv"
	"strings"

	"bennypowers.dev/ack997/delimiter"
	"bennypowers.dev/ack997/x12"
)

// interSegmentSpace is stripped between a terminator and the next segment ID.
const interSegmentSpace = " \t\r\n"

// Segment is an untyped segment: an identifier followed by its elements.
type Segment struct {
	// ID is the segment identifier, e.g. "AK1".
	ID string
	// Elements holds the identifier at index 0, so Elements[n] is data element n.
	Elements []string
	// Position is the 1-based ordinal of the segment in the document.
	Position int
}

// Element returns data element n (1-based), or "" when absent.
func (s Segment) Element(n int) string {
	if n <= 0 || n >= len(s.Elements) {
		return ""
	}
	return s.Elements[n]
}

// Len returns the number of data elements, excluding the identifier.
func (s Segment) Len() int {
	if len(s.Elements) == 0 {
		return 0
	}
	return len(s.Elements) - 1
}

// Tokenizer yields segments in document order. It reads the document once
// and cannot be restarted.
type Tokenizer struct {
	text     string
	delims   delimiter.Delimiters
	offset   int
	position int
	current  Segment
	err      error
	done     bool
}

// New creates a Tokenizer over a detected document.
func New(doc *delimiter.RawDocument) *Tokenizer {
	return &Tokenizer{
		text:   doc.Text(),
		delims: doc.Delimiters(),
	}
}

// Next advances to the next segment. It returns false when the document is
// exhausted or an error occurred; check Err to tell them apart.
func (t *Tokenizer) Next() bool {
	if t.done {
		return false
	}

	for t.offset < len(t.text) {
		rest := t.text[t.offset:]
		end := strings.IndexByte(rest, t.delims.Segment)
		if end < 0 {
			if strings.Trim(rest, interSegmentSpace) != "" {
				t.fail(&x12.TokenizationError{
					Position: t.position + 1,
					Offset:   t.offset,
					Reason:   "trailing content is not terminated by " + strconv.QuoteRune(rune(t.delims.Segment)),
				})
				return false
			}
			break
		}

		start := t.offset
		t.offset += end + 1

		raw := strings.TrimLeft(rest[:end], interSegmentSpace)
		raw = strings.TrimRight(raw, "\r\n")
		if raw == "" {
			continue
		}

		elements := strings.Split(raw, string(t.delims.Element))
		if !validID(elements[0]) {
			t.fail(&x12.TokenizationError{
				Position: t.position + 1,
				Offset:   start,
				Reason:   "invalid segment identifier " + strconv.Quote(elements[0]),
			})
			return false
		}

		t.position++
		t.current = Segment{
			ID:       elements[0],
			Elements: elements,
			Position: t.position,
		}
		return true
	}

	t.done = true
	return false
}

// Segment returns the segment produced by the last call to Next.
func (t *Tokenizer) Segment() Segment {
	return t.current
}

// Err returns the error that stopped tokenization, if any.
func (t *Tokenizer) Err() error {
	return t.err
}

// All returns the remaining segments as a sequence. A tokenization error is
// yielded last with a zero Segment.
func (t *Tokenizer) All() iter.Seq2[Segment, error] {
	return func(yield func(Segment, error) bool) {
		for t.Next() {
			if !yield(t.current, nil) {
				return
			}
		}
		if t.err != nil {
			yield(Segment{}, t.err)
		}
	}
}

func (t *Tokenizer) fail(err error) {
	t.err = err
	t.done = true
}

// validID reports whether id looks like an X12 segment identifier.
func validID(id string) bool {
	if len(id) < 2 || len(id) > 3 {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
