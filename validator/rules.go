/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package validator

import (
	"slices"
	"strings"

	"bennypowers.dev/ack997/ack"
)

// Rules configures acknowledgment code classification.
type Rules struct {
	// AcceptedCodes are classified ACCEPTED.
	AcceptedCodes []string
	// PartialCodes are classified PARTIALLY_ACCEPTED.
	PartialCodes []string
	// RejectedCodes are classified REJECTED.
	RejectedCodes []string
	// CheckCounts enables trailer and AK9 count checks.
	CheckCounts bool
}

// DefaultRules returns the standard X12 classification.
func DefaultRules() Rules {
	return Rules{
		AcceptedCodes: []string{"A"},
		PartialCodes:  []string{"E", "P"},
		RejectedCodes: []string{"R", "M", "W", "X"},
		CheckCounts:   true,
	}
}

// Classify maps an AK5-01 or AK9-01 code to a status. The configured lists
// take precedence; otherwise "A" is accepted, codes ending in "E" are
// partially accepted and codes ending in "R" are rejected. Any other code is
// rejected and known is false.
func (r Rules) Classify(code string) (status ack.Status, known bool) {
	code = strings.ToUpper(strings.TrimSpace(code))

	switch {
	case contains(r.AcceptedCodes, code):
		return ack.Accepted, true
	case contains(r.PartialCodes, code):
		return ack.PartiallyAccepted, true
	case contains(r.RejectedCodes, code):
		return ack.Rejected, true
	case code == "A":
		return ack.Accepted, true
	case strings.HasSuffix(code, "E"):
		return ack.PartiallyAccepted, true
	case strings.HasSuffix(code, "R"):
		return ack.Rejected, true
	default:
		return ack.Rejected, false
	}
}

func contains(codes []string, code string) bool {
	return slices.ContainsFunc(codes, func(c string) bool {
		return strings.EqualFold(strings.TrimSpace(c), code)
	})
}
