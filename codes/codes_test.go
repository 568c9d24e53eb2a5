/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package codes_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/ack997/ack"
	"bennypowers.dev/ack997/codes"
	"bennypowers.dev/ack997/testutil"
)

func TestDefault_Describe(t *testing.T) {
	table := codes.Default()

	tests := []struct {
		level ack.Level
		code  string
		want  string
	}{
		{ack.LevelSegment, "1", "Unrecognized segment ID"},
		{ack.LevelSegment, "8", "Segment Has Data Element Errors"},
		{ack.LevelSegment, "i9", `Implementation Dependent "Not Used" Segment Present`},
		{ack.LevelElement, "1", "Mandatory data element missing"},
		{ack.LevelElement, "7", "Invalid code value"},
		{ack.LevelElement, " 13 ", "Too Many Components"},
		{ack.LevelTransactionSet, "5", "One or More Segments in Error"},
		{ack.LevelTransactionSet, "I6", "Implementation Convention Not Supported"},
		{ack.LevelGroup, "5", "Number of Included Transaction Sets Does Not Match Actual Count"},
		{ack.LevelGroup, "26", "S4S Security Start Segment Missing for S4E Security End Segment"},
	}

	for _, tt := range tests {
		t.Run(string(tt.level)+"/"+tt.code, func(t *testing.T) {
			got, ok := table.Describe(tt.level, tt.code)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefault_Unmapped(t *testing.T) {
	table := codes.Default()
	for _, code := range []string{"999", "", "11"} {
		_, ok := table.Describe(ack.LevelElement, code)
		assert.False(t, ok, "element code %q", code)
	}
}

func TestDefault_Sections(t *testing.T) {
	table := codes.Default()
	assert.Len(t, table.Entries(codes.SectionSegment), 13)
	assert.Len(t, table.Entries(codes.SectionElement), 18)
	assert.Len(t, table.Entries(codes.SectionTransactionSet), 25)
	assert.Len(t, table.Entries(codes.SectionGroup), 20)
	assert.Len(t, table.Entries(codes.SectionAck), 7)
	assert.Equal(t, 83, table.Len())

	desc, ok := table.DescribeAck("p")
	require.True(t, ok)
	assert.Contains(t, desc, "Partially Accepted")

	ackCodes := table.Entries(codes.SectionAck)
	assert.Equal(t, "success", ackCodes[0].Severity)
}

func TestDefault_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := codes.Default().Describe(ack.LevelSegment, "3")
			assert.True(t, ok)
		}()
	}
	wg.Wait()
}

func TestEntries_ReturnsCopy(t *testing.T) {
	table := codes.Default()
	entries := table.Entries(codes.SectionAck)
	entries[0].Description = "changed"

	desc, _ := table.DescribeAck("A")
	assert.Equal(t, "Accepted", desc)
}

func TestLoadFile(t *testing.T) {
	mfs := testutil.NewFixtureFS(t, "codes", "/codes")

	tests := []struct {
		path    string
		section codes.Section
		code    string
		want    string
	}{
		{"/codes/custom.yaml", codes.SectionElement, "Z1", "Partner specific qualifier mismatch"},
		{"/codes/custom.json", codes.SectionGroup, "99", "Partner specific group failure"},
		{"/codes/custom.toml", codes.SectionTransactionSet, "5", "Segments in error"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			table, err := codes.LoadFile(mfs, tt.path)
			require.NoError(t, err)
			e, ok := table.Lookup(tt.section, tt.code)
			require.True(t, ok)
			assert.Equal(t, tt.want, e.Description)
		})
	}
}

func TestLoadFile_Errors(t *testing.T) {
	mfs := testutil.NewFixtureFS(t, "codes", "/codes")

	tests := []struct {
		path     string
		contains string
	}{
		{"/codes/missing.yaml", "failed to read code table"},
		{"/codes/custom.txt", "unsupported code table format"},
		{"/codes/bad_section.yaml", `unknown code section "segments"`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := codes.LoadFile(mfs, tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestMerge(t *testing.T) {
	mfs := testutil.NewFixtureFS(t, "codes", "/codes")
	custom, err := codes.LoadFile(mfs, "/codes/custom.yaml")
	require.NoError(t, err)

	merged := codes.Default().Merge(custom)

	desc, ok := merged.Describe(ack.LevelSegment, "8")
	require.True(t, ok)
	assert.Equal(t, "Segment has element errors (trading partner wording)", desc)

	desc, ok = merged.Describe(ack.LevelElement, "z1")
	require.True(t, ok)
	assert.Equal(t, "Partner specific qualifier mismatch", desc)

	desc, ok = merged.Describe(ack.LevelSegment, "1")
	require.True(t, ok)
	assert.Equal(t, "Unrecognized segment ID", desc)

	assert.Equal(t, codes.Default().Len()+1, merged.Len())

	original, _ := codes.Default().Describe(ack.LevelSegment, "8")
	assert.Equal(t, "Segment Has Data Element Errors", original, "merge does not modify the receiver")

	assert.Equal(t, codes.Default().Len(), codes.Default().Merge(nil).Len())
}

func TestSearch(t *testing.T) {
	table := codes.Default()

	matches := table.Search("security start")
	assert.Len(t, matches, 8)

	matches = table.Search("I13")
	require.Len(t, matches, 1)
	assert.Equal(t, codes.SectionElement, matches[0].Section)

	assert.Len(t, table.Search(""), table.Len())
	assert.Empty(t, table.Search("no such description"))
}

func TestParseSection(t *testing.T) {
	tests := []struct {
		in   string
		want codes.Section
	}{
		{"segment", codes.SectionSegment},
		{"AK4", codes.SectionElement},
		{"transaction-set", codes.SectionTransactionSet},
		{"group", codes.SectionGroup},
		{"ack", codes.SectionAck},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := codes.ParseSection(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := codes.ParseSection("loop")
	assert.Error(t, err)
}
