/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package x12 provides the shared vocabulary of the 997 pipeline: segment
// identifiers, X12 version handling, and the error taxonomy.
package x12

import (
	"fmt"
	"strings"
)

// Version represents an X12 interchange control version.
type Version int

const (
	// Unknown represents an unrecognized control version.
	Unknown Version = iota

	// V4010 represents control version 00401.
	V4010

	// V4050 represents control version 00405.
	V4050

	// V5010 represents control version 00501.
	V5010

	// V6020 represents control version 00602.
	V6020
)

// String returns the ISA-12 representation of the version.
func (v Version) String() string {
	switch v {
	case V4010:
		return "00401"
	case V4050:
		return "00405"
	case V5010:
		return "00501"
	case V6020:
		return "00602"
	default:
		return "unknown"
	}
}

// HasCompositePositions reports whether AK4-01 is a composite carrying
// component and repetition positions.
func (v Version) HasCompositePositions() bool {
	return v >= V5010
}

// FromString parses an ISA-12 control version ("00401") or a GS-08
// version/release code ("004010X098A1").
func FromString(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 6 && s[0] == '0' {
		s = s[:5]
	}
	switch s {
	case "00401":
		return V4010, nil
	case "00405":
		return V4050, nil
	case "00501":
		return V5010, nil
	case "00602":
		return V6020, nil
	default:
		return Unknown, fmt.Errorf("unrecognized X12 version: %q", s)
	}
}
