/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package validator classifies parsed 997 acknowledgments and resolves
// their syntax error codes.
package validator

import (
	"fmt"
	"strings"

	"bennypowers.dev/ack997/ack"
	"bennypowers.dev/ack997/x12"
)

// UnknownCode is the description given to error codes missing from the
// code table.
const UnknownCode = "Unknown error code"

// Describer resolves syntax error codes to descriptions.
type Describer interface {
	// Describe returns the description of code at the given level.
	Describe(level ack.Level, code string) (string, bool)
}

// Context holds everything a validation run depends on. It is a value and
// is never modified by Validate.
type Context struct {
	describer Describer
	rules     Rules
}

// NewContext creates a validation context. A nil describer leaves every
// code unmapped.
func NewContext(describer Describer, rules Rules) Context {
	return Context{describer: describer, rules: rules}
}

// Rules returns the classification rules of the context.
func (c Context) Rules() Rules {
	return c.rules
}

func (c Context) describe(level ack.Level, code string) (string, bool) {
	if c.describer == nil {
		return "", false
	}
	return c.describer.Describe(level, code)
}

// Validate classifies every transaction set and group of ic, resolves error
// descriptions, and derives the interchange status. ic is not modified; the
// result holds an annotated copy.
func Validate(ic *ack.Interchange, vctx Context) *ack.ValidationResult {
	v := &run{
		ctx:    vctx,
		result: &ack.ValidationResult{Interchange: ic.Clone()},
	}
	if v.result.Interchange == nil {
		v.result.Interchange = &ack.Interchange{Groups: []ack.FunctionalGroup{}}
	}
	v.validate()
	return v.result
}

type run struct {
	ctx    Context
	result *ack.ValidationResult
}

func (v *run) validate() {
	ic := v.result.Interchange
	counts := &v.result.Counts
	counts.Groups = len(ic.Groups)

	seenEnvelopes := make(map[string]bool)
	for i := range ic.Groups {
		g := &ic.Groups[i]
		v.validateGroup(g)

		if v.ctx.rules.CheckCounts && !seenEnvelopes[g.Envelope.ControlNumber] {
			seenEnvelopes[g.Envelope.ControlNumber] = true
			v.checkEnvelope(g)
		}
	}

	if v.ctx.rules.CheckCounts && ic.DeclaredGroups != nil && *ic.DeclaredGroups != ic.Envelopes {
		v.warn(ack.Issue{
			Kind:    ack.KindCountMismatch,
			Element: "IEA-01",
			Message: fmt.Sprintf("IEA-01 declares %d functional groups, found %d", *ic.DeclaredGroups, ic.Envelopes),
		})
	}

	if len(ic.Groups) == 0 {
		v.warn(ack.Issue{
			Kind:    ack.KindNoGroups,
			Message: "interchange contains no functional group acknowledgments",
		})
	}

	v.result.Status = aggregate(ic.Groups)
	v.result.Valid = v.result.Status == ack.Accepted
}

func (v *run) validateGroup(g *ack.FunctionalGroup) {
	counts := &v.result.Counts
	for i := range g.TransactionSets {
		ts := &g.TransactionSets[i]
		v.validateTransactionSet(g, ts)

		counts.TransactionSets++
		counts.Errors += len(ts.Errors)
		switch ts.Status {
		case ack.Accepted:
			counts.Accepted++
		case ack.PartiallyAccepted:
			counts.Partial++
		default:
			counts.Rejected++
		}
	}

	v.describeAll(g.Errors, g.GroupControlNumber, "")
	counts.Errors += len(g.Errors)

	status, ok := v.classify(g.AckCode, "AK9-01", g.GroupControlNumber, "")
	g.Status = status
	if ok {
		v.checkGroupStatus(g)
	}

	if v.ctx.rules.CheckCounts {
		v.checkAK9(g)
		if d := g.Response.DeclaredSegments; d != nil && *d != g.Response.Segments {
			v.warn(ack.Issue{
				Kind:               ack.KindCountMismatch,
				Element:            "SE-01",
				GroupControlNumber: g.GroupControlNumber,
				Message: fmt.Sprintf("SE-01 declares %d segments in 997 %s, found %d",
					*d, g.Response.ControlNumber, g.Response.Segments),
			})
		}
	}
}

func (v *run) validateTransactionSet(g *ack.FunctionalGroup, ts *ack.TransactionSet) {
	v.describeAll(ts.Errors, g.GroupControlNumber, ts.ControlNumber)

	status, ok := v.classify(ts.AckCode, "AK5-01", g.GroupControlNumber, ts.ControlNumber)
	ts.Status = status
	if !ok {
		return
	}

	switch {
	case status == ack.Rejected && len(ts.Errors) == 0:
		v.warn(ack.Issue{
			Kind:                     ack.KindRejectedWithoutErrors,
			Element:                  "AK5-01",
			GroupControlNumber:       g.GroupControlNumber,
			TransactionControlNumber: ts.ControlNumber,
			Message:                  "transaction set is rejected but no errors are reported",
		})
	case status == ack.Accepted && len(ts.Errors) > 0:
		v.warn(ack.Issue{
			Kind:                     ack.KindAcceptedWithErrors,
			Element:                  "AK5-01",
			GroupControlNumber:       g.GroupControlNumber,
			TransactionControlNumber: ts.ControlNumber,
			Message:                  fmt.Sprintf("transaction set is accepted but reports %d errors", len(ts.Errors)),
		})
	}
}

// classify resolves an acknowledgment code. ok is false when the code is
// missing, in which case an error issue has been recorded.
func (v *run) classify(code, element, group, transaction string) (ack.Status, bool) {
	if strings.TrimSpace(code) == "" {
		v.fail(ack.Issue{
			Kind:                     ack.KindMissingAckCode,
			Element:                  element,
			GroupControlNumber:       group,
			TransactionControlNumber: transaction,
			Message:                  fmt.Sprintf("%s acknowledgment code is missing", element),
		})
		return ack.Rejected, false
	}

	status, known := v.ctx.rules.Classify(code)
	if !known {
		v.warn(ack.Issue{
			Kind:                     ack.KindUnknownAckCode,
			Element:                  element,
			GroupControlNumber:       group,
			TransactionControlNumber: transaction,
			Message:                  fmt.Sprintf("unknown acknowledgment code %q treated as rejected", code),
		})
	}
	return status, true
}

func (v *run) describeAll(errs []ack.ErrorDetail, group, transaction string) {
	for i := range errs {
		e := &errs[i]
		desc, ok := v.ctx.describe(e.Level, e.Code)
		if !ok {
			desc = UnknownCode
			element := levelElement(e.Level)
			v.warn(ack.Issue{
				Kind:                     ack.KindUnmappedCode,
				Element:                  element,
				GroupControlNumber:       group,
				TransactionControlNumber: transaction,
				Message:                  fmt.Sprintf("%s code %q has no description", element, e.Code),
			})
		}
		e.Description = desc
	}
}

// checkGroupStatus compares the AK9 status with the status implied by the
// group's transaction sets. The source is reported, never corrected.
func (v *run) checkGroupStatus(g *ack.FunctionalGroup) {
	if len(g.TransactionSets) == 0 {
		return
	}
	want := implied(g.TransactionSets)
	if want == g.Status {
		return
	}
	if g.Status == ack.PartiallyAccepted && want == ack.Accepted && len(g.Errors) > 0 {
		return
	}
	v.warn(ack.Issue{
		Kind:               ack.KindStatusMismatch,
		Element:            "AK9-01",
		GroupControlNumber: g.GroupControlNumber,
		Message: fmt.Sprintf("AK9-01 %q classifies the group as %s but its transaction sets imply %s",
			g.AckCode, g.Status, want),
	})
}

func (v *run) checkAK9(g *ack.FunctionalGroup) {
	listed := len(g.TransactionSets)
	accepted := 0
	for _, ts := range g.TransactionSets {
		if ts.Status == ack.Accepted || ts.Status == ack.PartiallyAccepted {
			accepted++
		}
	}

	mismatch := func(element, format string, args ...any) {
		v.warn(ack.Issue{
			Kind:               ack.KindCountMismatch,
			Element:            element,
			GroupControlNumber: g.GroupControlNumber,
			Message:            fmt.Sprintf(format, args...),
		})
	}

	if g.Accepted != nil && *g.Accepted < accepted {
		mismatch("AK9-04", "AK9-04 reports %d accepted transaction sets, but %d are acknowledged as accepted", *g.Accepted, accepted)
	}
	if g.Received != nil && listed > *g.Received {
		mismatch("AK9-03", "AK9-03 reports %d received transaction sets, but %d are acknowledged", *g.Received, listed)
	}
	if g.Received != nil && g.Included != nil && *g.Received > *g.Included {
		mismatch("AK9-03", "AK9-03 reports %d received transaction sets, more than the %d included", *g.Received, *g.Included)
	}
}

func (v *run) checkEnvelope(g *ack.FunctionalGroup) {
	env := g.Envelope
	if env.DeclaredTransactionSets == nil || *env.DeclaredTransactionSets == env.TransactionSets {
		return
	}
	v.warn(ack.Issue{
		Kind:    ack.KindCountMismatch,
		Element: "GE-01",
		Message: fmt.Sprintf("GE-01 declares %d transaction sets in group %s, found %d",
			*env.DeclaredTransactionSets, env.ControlNumber, env.TransactionSets),
	})
}

func (v *run) warn(issue ack.Issue) {
	issue.Severity = ack.SeverityWarning
	v.result.Issues = append(v.result.Issues, issue)
}

func (v *run) fail(issue ack.Issue) {
	issue.Severity = ack.SeverityError
	v.result.Issues = append(v.result.Issues, issue)
}

// implied derives a group status from its transaction sets.
func implied(sets []ack.TransactionSet) ack.Status {
	accepted, rejected := 0, 0
	for _, ts := range sets {
		switch ts.Status {
		case ack.Accepted:
			accepted++
		case ack.Rejected:
			rejected++
		}
	}
	switch {
	case accepted == len(sets):
		return ack.Accepted
	case rejected == len(sets):
		return ack.Rejected
	default:
		return ack.PartiallyAccepted
	}
}

// aggregate derives the interchange status from its groups.
func aggregate(groups []ack.FunctionalGroup) ack.Status {
	status := ack.Accepted
	for _, g := range groups {
		switch g.Status {
		case ack.Rejected:
			return ack.Rejected
		case ack.PartiallyAccepted:
			status = ack.PartiallyAccepted
		}
	}
	return status
}

func levelElement(level ack.Level) string {
	switch level {
	case ack.LevelSegment:
		return x12.ElementName(x12.AK3, 4)
	case ack.LevelElement:
		return x12.ElementName(x12.AK4, 3)
	case ack.LevelTransactionSet:
		return x12.ElementName(x12.AK5, 2)
	default:
		return x12.ElementName(x12.AK9, 5)
	}
}
