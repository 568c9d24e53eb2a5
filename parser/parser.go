/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package parser assembles X12 997 segments into an acknowledgment tree.
package parser

import (
	"bennypowers.dev/ack997/ack"
	"bennypowers.dev/ack997/fs"
)

// Options configures parsing.
type Options struct {
	// RejectPassThrough makes segments outside the 997 vocabulary a
	// structural error even between envelopes. By default they are skipped
	// there and rejected only inside a 997 transaction set.
	RejectPassThrough bool
}

// Parser parses 997 functional acknowledgments.
type Parser interface {
	// Parse parses document content into an interchange.
	Parse(data []byte, opts Options) (*ack.Interchange, error)

	// ParseFile parses a document file into an interchange.
	ParseFile(filesystem fs.FileSystem, path string, opts Options) (*ack.Interchange, error)
}
