/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package validator_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/ack997/ack"
	"bennypowers.dev/ack997/parser"
	"bennypowers.dev/ack997/testutil"
	"bennypowers.dev/ack997/validator"
	"bennypowers.dev/ack997/x12"
)

type describer map[ack.Level]map[string]string

func (d describer) Describe(level ack.Level, code string) (string, bool) {
	desc, ok := d[level][code]
	return desc, ok
}

var testCodes = describer{
	ack.LevelSegment: {
		"3": "Required Segment Missing",
		"8": "Segment Has Data Element Errors",
	},
	ack.LevelElement: {
		"1": "Mandatory data element missing",
		"4": "Data element too short.",
		"7": "Invalid code value.",
	},
	ack.LevelTransactionSet: {
		"5": "One or More Segments in Error",
	},
	ack.LevelGroup: {
		"5": "One or More Segments in Error",
	},
}

func validateFixture(t *testing.T, name string, rules validator.Rules) *ack.ValidationResult {
	t.Helper()
	ic, err := parser.NewX12Parser().Parse(testutil.LoadFixtureFile(t, "fixtures/"+name), parser.Options{})
	require.NoError(t, err)
	return validator.Validate(ic, validator.NewContext(testCodes, rules))
}

func kinds(issues []ack.Issue) []string {
	out := []string{}
	for _, i := range issues {
		out = append(out, i.Kind)
	}
	return out
}

func TestValidate_Fixtures(t *testing.T) {
	tests := []struct {
		fixture string
		status  ack.Status
		counts  ack.Counts
		issues  []string
	}{
		{
			fixture: "accepted.edi",
			status:  ack.Accepted,
			counts:  ack.Counts{Groups: 1},
			issues:  []string{},
		},
		{
			fixture: "scenario.edi",
			status:  ack.Rejected,
			counts:  ack.Counts{Groups: 1, TransactionSets: 1, Rejected: 1, Errors: 2},
			issues:  []string{},
		},
		{
			fixture: "partial.edi",
			status:  ack.PartiallyAccepted,
			counts:  ack.Counts{Groups: 1, TransactionSets: 1, Partial: 1, Errors: 1},
			issues:  []string{},
		},
		{
			fixture: "mixed_groups.edi",
			status:  ack.Rejected,
			counts:  ack.Counts{Groups: 2, TransactionSets: 2, Accepted: 1, Rejected: 1, Errors: 3},
			issues:  []string{},
		},
		{
			fixture: "v5010.edi",
			status:  ack.PartiallyAccepted,
			counts:  ack.Counts{Groups: 1, TransactionSets: 3, Accepted: 1, Partial: 1, Rejected: 1, Errors: 6},
			issues:  []string{},
		},
		{
			fixture: "status_mismatch.edi",
			status:  ack.Accepted,
			counts:  ack.Counts{Groups: 1, TransactionSets: 1, Rejected: 1, Errors: 2},
			issues:  []string{ack.KindStatusMismatch},
		},
		{
			fixture: "unknown_code.edi",
			status:  ack.Rejected,
			counts:  ack.Counts{Groups: 1, TransactionSets: 1, Rejected: 1, Errors: 2},
			issues:  []string{ack.KindUnmappedCode, ack.KindUnmappedCode},
		},
		{
			fixture: "missing_ack_code.edi",
			status:  ack.Rejected,
			counts:  ack.Counts{Groups: 1, TransactionSets: 2, Accepted: 1, Rejected: 1},
			issues:  []string{ack.KindMissingAckCode, ack.KindMissingAckCode},
		},
		{
			fixture: "count_mismatch.edi",
			status:  ack.Accepted,
			counts:  ack.Counts{Groups: 1, TransactionSets: 1, Accepted: 1},
			issues:  []string{ack.KindCountMismatch, ack.KindCountMismatch, ack.KindCountMismatch},
		},
	}

	for _, tt := range tests {
		t.Run(tt.fixture, func(t *testing.T) {
			result := validateFixture(t, tt.fixture, validator.DefaultRules())
			assert.Equal(t, tt.status, result.Status)
			assert.Equal(t, tt.status == ack.Accepted, result.Valid)
			assert.Equal(t, tt.counts, result.Counts)
			assert.Equal(t, tt.issues, kinds(result.Issues))
		})
	}
}

func TestValidate_Scenario(t *testing.T) {
	result := validateFixture(t, "scenario.edi", validator.DefaultRules())

	require.Len(t, result.Interchange.Groups, 1)
	g := result.Interchange.Groups[0]
	assert.Equal(t, ack.Rejected, g.Status)
	require.Len(t, g.TransactionSets, 1)

	ts := g.TransactionSets[0]
	assert.Equal(t, ack.Rejected, ts.Status)
	require.Len(t, ts.Errors, 2)
	assert.Equal(t, "N1", ts.Errors[0].SegmentID)
	assert.Equal(t, "Mandatory data element missing", ts.Errors[0].Description)
	assert.Equal(t, "5", ts.Errors[1].Code)
	assert.Equal(t, "One or More Segments in Error", ts.Errors[1].Description)
}

func TestValidate_UnmappedCodes(t *testing.T) {
	result := validateFixture(t, "unknown_code.edi", validator.DefaultRules())

	ts := result.Interchange.Groups[0].TransactionSets[0]
	for _, e := range ts.Errors {
		assert.Equal(t, validator.UnknownCode, e.Description)
	}

	warnings := result.Warnings()
	require.Len(t, warnings, 2)
	assert.Equal(t, "AK3-04", warnings[0].Element)
	assert.Equal(t, "AK5-02", warnings[1].Element)
	assert.Equal(t, "5678", warnings[0].TransactionControlNumber)
	assert.NoError(t, result.Err(), "unmapped codes are warnings, not errors")
}

func TestValidate_MissingAckCode(t *testing.T) {
	result := validateFixture(t, "missing_ack_code.edi", validator.DefaultRules())

	errs := result.Errors()
	require.Len(t, errs, 2)
	assert.Equal(t, "AK5-01", errs[0].Element)
	assert.Equal(t, "5678", errs[0].TransactionControlNumber)
	assert.Equal(t, "AK9-01", errs[1].Element)
	assert.Equal(t, "1234", errs[1].GroupControlNumber)

	g := result.Interchange.Groups[0]
	assert.Equal(t, ack.Rejected, g.Status)
	assert.Equal(t, ack.Rejected, g.TransactionSets[0].Status)
	assert.Equal(t, ack.Accepted, g.TransactionSets[1].Status, "the run continues past a missing code")

	err := result.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, x12.ErrValidation))
	var verr *x12.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "AK5-01", verr.Element)
}

func TestValidate_CountChecksDisabled(t *testing.T) {
	rules := validator.DefaultRules()
	rules.CheckCounts = false
	result := validateFixture(t, "count_mismatch.edi", rules)
	assert.Empty(t, result.Issues)
}

func TestValidate_CountMismatchMessages(t *testing.T) {
	result := validateFixture(t, "count_mismatch.edi", validator.DefaultRules())
	require.Len(t, result.Issues, 3)

	elements := []string{}
	for _, i := range result.Issues {
		elements = append(elements, i.Element)
	}
	assert.ElementsMatch(t, []string{"SE-01", "GE-01", "IEA-01"}, elements)
	assert.Contains(t, result.Issues[0].Message, "declares 9 segments")
}

func TestValidate_AK9Counts(t *testing.T) {
	result := validateFixture(t, "rejected.edi", validator.DefaultRules())
	require.Len(t, result.Issues, 1)
	assert.Equal(t, ack.KindCountMismatch, result.Issues[0].Kind)
	assert.Equal(t, "AK9-03", result.Issues[0].Element)
}

func TestValidate_DoesNotModifyInput(t *testing.T) {
	ic, err := parser.NewX12Parser().Parse(testutil.LoadFixtureFile(t, "fixtures/scenario.edi"), parser.Options{})
	require.NoError(t, err)

	first := validator.Validate(ic, validator.NewContext(testCodes, validator.DefaultRules()))
	second := validator.Validate(ic, validator.NewContext(testCodes, validator.DefaultRules()))

	assert.Empty(t, ic.Groups[0].Status)
	assert.Empty(t, ic.Groups[0].TransactionSets[0].Errors[0].Description)
	assert.Equal(t, first, second, "validation is deterministic")
}

func TestValidate_NoGroups(t *testing.T) {
	result := validator.Validate(&ack.Interchange{ControlNumber: "1"}, validator.NewContext(nil, validator.DefaultRules()))
	assert.Equal(t, ack.Accepted, result.Status)
	assert.True(t, result.Valid)
	assert.Equal(t, []string{ack.KindNoGroups}, kinds(result.Issues))

	result = validator.Validate(nil, validator.NewContext(nil, validator.DefaultRules()))
	assert.Equal(t, ack.Accepted, result.Status)
	assert.NotNil(t, result.Interchange)
}

func group(ackCode string, errs []ack.ErrorDetail, sets ...ack.TransactionSet) ack.FunctionalGroup {
	return ack.FunctionalGroup{
		GroupControlNumber: "100",
		AckCode:            ackCode,
		Errors:             errs,
		TransactionSets:    sets,
	}
}

func set(control, ackCode string, errs ...ack.ErrorDetail) ack.TransactionSet {
	return ack.TransactionSet{TransactionSetID: "850", ControlNumber: control, AckCode: ackCode, Errors: errs}
}

func TestValidate_Warnings(t *testing.T) {
	segErr := ack.ErrorDetail{Level: ack.LevelSegment, SegmentID: "N1", Code: "8"}
	groupErr := ack.ErrorDetail{Level: ack.LevelGroup, Code: "5"}

	tests := []struct {
		name   string
		group  ack.FunctionalGroup
		status ack.Status
		issues []string
	}{
		{
			name:   "rejected without errors",
			group:  group("R", nil, set("1", "R")),
			status: ack.Rejected,
			issues: []string{ack.KindRejectedWithoutErrors},
		},
		{
			name:   "accepted with errors",
			group:  group("A", nil, set("1", "A", segErr)),
			status: ack.Accepted,
			issues: []string{ack.KindAcceptedWithErrors},
		},
		{
			name:   "unknown ack code",
			group:  group("A", nil, set("1", "Q")),
			status: ack.Accepted,
			issues: []string{ack.KindUnknownAckCode, ack.KindRejectedWithoutErrors, ack.KindStatusMismatch},
		},
		{
			name:   "partial group of accepted sets with group errors",
			group:  group("P", []ack.ErrorDetail{groupErr}, set("1", "A")),
			status: ack.PartiallyAccepted,
			issues: []string{},
		},
		{
			name:   "partial group of accepted sets without group errors",
			group:  group("P", nil, set("1", "A")),
			status: ack.PartiallyAccepted,
			issues: []string{ack.KindStatusMismatch},
		},
		{
			name:   "mixed sets imply partial",
			group:  group("P", nil, set("1", "A"), set("2", "R", segErr)),
			status: ack.PartiallyAccepted,
			issues: []string{},
		},
		{
			name:   "lowercase codes",
			group:  group(" r ", nil, set("1", "r", segErr)),
			status: ack.Rejected,
			issues: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ic := &ack.Interchange{Groups: []ack.FunctionalGroup{tt.group}}
			result := validator.Validate(ic, validator.NewContext(testCodes, validator.DefaultRules()))
			assert.Equal(t, tt.status, result.Status)
			assert.Equal(t, tt.issues, kinds(result.Issues))
		})
	}
}

func TestValidate_InterchangeStatus(t *testing.T) {
	segErr := ack.ErrorDetail{Level: ack.LevelSegment, Code: "8"}
	tests := []struct {
		name   string
		groups []ack.FunctionalGroup
		want   ack.Status
	}{
		{"all accepted", []ack.FunctionalGroup{group("A", nil), group("A", nil)}, ack.Accepted},
		{"one partial", []ack.FunctionalGroup{group("A", nil), group("E", nil)}, ack.PartiallyAccepted},
		{"one rejected", []ack.FunctionalGroup{group("E", nil), group("R", nil, set("1", "R", segErr))}, ack.Rejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.Validate(&ack.Interchange{Groups: tt.groups}, validator.NewContext(testCodes, validator.DefaultRules()))
			assert.Equal(t, tt.want, result.Status)
			assert.Equal(t, tt.want == ack.Accepted, result.Valid)
		})
	}
}

func TestRules_Classify(t *testing.T) {
	tests := []struct {
		code   string
		rules  validator.Rules
		status ack.Status
		known  bool
	}{
		{"A", validator.DefaultRules(), ack.Accepted, true},
		{"a", validator.DefaultRules(), ack.Accepted, true},
		{"E", validator.DefaultRules(), ack.PartiallyAccepted, true},
		{"P", validator.DefaultRules(), ack.PartiallyAccepted, true},
		{"R", validator.DefaultRules(), ack.Rejected, true},
		{"M", validator.DefaultRules(), ack.Rejected, true},
		{"W", validator.DefaultRules(), ack.Rejected, true},
		{"X", validator.DefaultRules(), ack.Rejected, true},
		{" e ", validator.DefaultRules(), ack.PartiallyAccepted, true},
		{"XE", validator.Rules{}, ack.PartiallyAccepted, true},
		{"XR", validator.Rules{}, ack.Rejected, true},
		{"P", validator.Rules{}, ack.Rejected, false},
		{"Q", validator.DefaultRules(), ack.Rejected, false},
		{"Q", validator.Rules{AcceptedCodes: []string{"q"}}, ack.Accepted, true},
		{"A", validator.Rules{RejectedCodes: []string{"A"}}, ack.Rejected, true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, known := tt.rules.Classify(tt.code)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestValidate_Deterministic(t *testing.T) {
	fixtures := []string{
		"accepted.edi", "scenario.edi", "mixed_groups.edi", "partial.edi",
		"rejected.edi", "v5010.edi", "count_mismatch.edi", "unknown_code.edi",
	}
	for _, name := range fixtures {
		t.Run(name, func(t *testing.T) {
			first := validateFixture(t, name, validator.DefaultRules())
			second := validateFixture(t, name, validator.DefaultRules())
			assert.Equal(t, first, second)
		})
	}
}

func TestValidate_ErrorDetailsMatchInput(t *testing.T) {
	const envelope = "ISA*00*          *00*          *ZZ*SENDER         *ZZ*RECEIVER       *230101*1200*U*00401*000000001*0*P*>~" +
		"GS*FA*SENDER*RECEIVER*20230101*1200*1*X*004010~ST*997*0001~AK1*PO*1234~AK2*850*0001~"
	const trailer = "AK5*R~AK9*R*1*1*0~SE*9*0001~GE*1*1~IEA*1*000000001~"

	type detail struct {
		level   ack.Level
		segment string
		code    string
	}

	tests := []struct {
		name string
		body string
		want []detail
	}{
		{
			name: "AK3 with code and AK4s",
			body: "AK3*N1*2**3~AK4*1**1~AK4*2**7*XX~",
			want: []detail{
				{ack.LevelSegment, "N1", "3"},
				{ack.LevelElement, "N1", "1"},
				{ack.LevelElement, "N1", "7"},
			},
		},
		{
			name: "AK3 without code and AK4s",
			body: "AK3*PO1*3~AK4*4**4~AK4*4**4~",
			want: []detail{
				{ack.LevelElement, "PO1", "4"},
				{ack.LevelElement, "PO1", "4"},
			},
		},
		{
			name: "AK3 alone",
			body: "AK3*REF*4~",
			want: []detail{
				{ack.LevelSegment, "REF", "8"},
			},
		},
		{
			name: "several AK3 loops",
			body: "AK3*N1*2**8~AK4*1**1~AK3*N3*3~AK3*N4*4**3~",
			want: []detail{
				{ack.LevelSegment, "N1", "8"},
				{ack.LevelElement, "N1", "1"},
				{ack.LevelSegment, "N3", "8"},
				{ack.LevelSegment, "N4", "3"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ic, err := parser.NewX12Parser().Parse([]byte(envelope+tt.body+trailer), parser.Options{})
			require.NoError(t, err)
			result := validator.Validate(ic, validator.NewContext(testCodes, validator.DefaultRules()))

			require.Len(t, result.Interchange.Groups, 1)
			require.Len(t, result.Interchange.Groups[0].TransactionSets, 1)
			got := []detail{}
			for _, e := range result.Interchange.Groups[0].TransactionSets[0].Errors {
				got = append(got, detail{e.Level, e.SegmentID, e.Code})
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want), result.Counts.Errors)
		})
	}
}
