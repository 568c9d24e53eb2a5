/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/ack997/ack"
	"bennypowers.dev/ack997/load"
	"bennypowers.dev/ack997/reconcile"
	"bennypowers.dev/ack997/testutil"
)

func validated(t *testing.T, fixture string) *ack.ValidationResult {
	t.Helper()
	result, err := load.Parse(testutil.LoadFixtureFile(t, "fixtures/"+fixture), load.Options{})
	require.NoError(t, err)
	return result
}

func statuses(r *reconcile.Result) []reconcile.Status {
	var out []reconcile.Status
	for _, g := range r.Groups {
		for _, tx := range g.Transactions {
			out = append(out, tx.Status)
		}
	}
	return out
}

func TestLoadLog(t *testing.T) {
	mfs := testutil.NewFixtureFS(t, "reconcile", "/logs")

	t.Run("yaml", func(t *testing.T) {
		groups, err := reconcile.LoadLog(mfs, "/logs/outbound.yaml")
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, "PO", groups[0].FunctionalIDCode)
		assert.Equal(t, "1234", groups[0].GroupControlNumber)
		assert.Equal(t, reconcile.OutboundTransaction{TransactionSetID: "850", ControlNumber: "0001"}, groups[0].Transactions[0])
	})

	t.Run("json with comments", func(t *testing.T) {
		groups, err := reconcile.LoadLog(mfs, "/logs/outbound.json")
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Len(t, groups[0].Transactions, 2)
		assert.Equal(t, "9999", groups[1].GroupControlNumber)
	})

	t.Run("missing control number", func(t *testing.T) {
		_, err := reconcile.LoadLog(mfs, "/logs/missing_control.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "has no controlNumber")
	})

	t.Run("not found", func(t *testing.T) {
		_, err := reconcile.LoadLog(mfs, "/logs/nope.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read outbound log")
	})
}

func TestParseLog_UnsupportedFormat(t *testing.T) {
	_, err := reconcile.ParseLog([]byte("groups = []"), "toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported outbound log format")
}

func TestReconcile_AllMatched(t *testing.T) {
	mfs := testutil.NewFixtureFS(t, "reconcile", "/logs")
	log, err := reconcile.LoadLog(mfs, "/logs/outbound.yaml")
	require.NoError(t, err)

	r := reconcile.Reconcile(validated(t, "mixed_groups.edi"), log)

	assert.True(t, r.FullyReconciled)
	assert.Equal(t, []reconcile.Status{reconcile.Matched, reconcile.Matched}, statuses(r))
	assert.Equal(t, ack.Accepted, r.Groups[0].Transactions[0].Ack)
	assert.Equal(t, ack.Rejected, r.Groups[1].Transactions[0].Ack)
	assert.Equal(t, "2/2 transactions matched", r.Summary())
}

func TestReconcile_MissingAndUnexpected(t *testing.T) {
	mfs := testutil.NewFixtureFS(t, "reconcile", "/logs")
	log, err := reconcile.LoadLog(mfs, "/logs/outbound.json")
	require.NoError(t, err)

	r := reconcile.Reconcile(validated(t, "mixed_groups.edi"), log)

	require.Len(t, r.Groups, 3)

	assert.Equal(t, "1234", r.Groups[0].GroupControlNumber)
	assert.True(t, r.Groups[0].Acknowledged)
	assert.Equal(t, reconcile.Matched, r.Groups[0].Transactions[0].Status)
	assert.Equal(t, reconcile.MissingAck, r.Groups[0].Transactions[1].Status)
	assert.Equal(t, "no acknowledgment received for transaction 0003", r.Groups[0].Transactions[1].Reason)

	assert.Equal(t, "9999", r.Groups[1].GroupControlNumber)
	assert.False(t, r.Groups[1].Acknowledged)
	assert.Equal(t, reconcile.MissingAck, r.Groups[1].Transactions[0].Status)
	assert.Contains(t, r.Groups[1].Transactions[0].Reason, "group 9999")

	assert.Equal(t, "5678", r.Groups[2].GroupControlNumber)
	assert.False(t, r.Groups[2].Outbound)
	assert.Equal(t, reconcile.UnexpectedAck, r.Groups[2].Transactions[0].Status)

	assert.False(t, r.FullyReconciled)
	assert.Equal(t, reconcile.Counts{Total: 4, Matched: 1, MissingAck: 2, Unexpected: 1}, r.Counts)
	assert.Equal(t, "1/4 transactions matched, 2 missing acknowledgments, 1 unexpected acknowledgments", r.Summary())
}

func TestReconcile_TransactionSetMismatch(t *testing.T) {
	log := []reconcile.OutboundGroup{{
		FunctionalIDCode:   "PO",
		GroupControlNumber: "1234",
		Transactions: []reconcile.OutboundTransaction{
			{TransactionSetID: "855", ControlNumber: "5678"},
		},
	}}

	r := reconcile.Reconcile(validated(t, "scenario.edi"), log)

	tx := r.Groups[0].Transactions[0]
	assert.Equal(t, reconcile.ControlNumberMismatch, tx.Status)
	assert.Equal(t, "transaction set ID mismatch: expected 855, got 850", tx.Reason)
	assert.Equal(t, "850", tx.AckTransactionSetID)
	assert.Equal(t, 1, r.Counts.Mismatched)
	assert.Contains(t, r.Summary(), "1 transaction set mismatches")
}

func TestReconcile_GroupLevelAcceptance(t *testing.T) {
	log := []reconcile.OutboundGroup{{
		FunctionalIDCode:   "PO",
		GroupControlNumber: "1234",
		Transactions: []reconcile.OutboundTransaction{
			{TransactionSetID: "850", ControlNumber: "0001"},
		},
	}}

	r := reconcile.Reconcile(validated(t, "accepted.edi"), log)

	require.Len(t, r.Groups, 1)
	tx := r.Groups[0].Transactions[0]
	assert.Equal(t, reconcile.Matched, tx.Status)
	assert.Equal(t, ack.Accepted, tx.Ack)
	assert.Equal(t, "acknowledged by group acceptance", tx.Reason)
	assert.True(t, r.FullyReconciled)
}

func TestReconcile_EmptyInputs(t *testing.T) {
	r := reconcile.Reconcile(nil, nil)
	assert.Empty(t, r.Groups)
	assert.True(t, r.FullyReconciled)
	assert.Equal(t, "0/0 transactions matched", r.Summary())

	r = reconcile.Reconcile(validated(t, "multiple_groups.edi"), nil)
	require.Len(t, r.Groups, 2)
	assert.Empty(t, statuses(r))
	assert.True(t, r.Groups[0].Acknowledged)
}
