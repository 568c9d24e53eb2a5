/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package x12

import "fmt"

// Segment identifiers recognized in a 997 document.
const (
	ISA = "ISA"
	GS  = "GS"
	ST  = "ST"
	AK1 = "AK1"
	AK2 = "AK2"
	AK3 = "AK3"
	AK4 = "AK4"
	AK5 = "AK5"
	AK9 = "AK9"
	SE  = "SE"
	GE  = "GE"
	IEA = "IEA"
)

// FunctionalAck is the transaction set identifier of a 997.
const FunctionalAck = "997"

// ElementName returns the conventional reference for a data element,
// e.g. ElementName("AK5", 1) == "AK5-01".
func ElementName(segmentID string, n int) string {
	return fmt.Sprintf("%s-%02d", segmentID, n)
}
