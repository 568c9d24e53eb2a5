/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package reconcile matches 997 acknowledgments against a log of outbound
// transactions.
package reconcile

import (
	"fmt"
	"strings"

	"bennypowers.dev/ack997/ack"
)

// Status is the reconciliation outcome of one transaction.
type Status string

const (
	// Matched means the outbound transaction was acknowledged.
	Matched Status = "MATCHED"
	// MissingAck means no acknowledgment was received for the transaction.
	MissingAck Status = "MISSING_ACK"
	// UnexpectedAck means an acknowledgment names a transaction that is not
	// in the outbound log.
	UnexpectedAck Status = "UNEXPECTED_ACK"
	// ControlNumberMismatch means the control number matched but the
	// transaction set identifier did not.
	ControlNumberMismatch Status = "CONTROL_NUMBER_MISMATCH"
)

// Transaction is the reconciliation of one transaction set.
type Transaction struct {
	ControlNumber string               `json:"controlNumber"`
	Status        Status               `json:"status"`
	Outbound      *OutboundTransaction `json:"outbound,omitempty"`

	// Ack is the acknowledgment status of the transaction. Empty when no
	// acknowledgment was received.
	Ack ack.Status `json:"ack,omitempty"`

	// AckTransactionSetID is AK2-01 when acknowledged.
	AckTransactionSetID string `json:"ackTransactionSetId,omitempty"`

	Reason string `json:"reason,omitempty"`
}

// Group is the reconciliation of one functional group.
type Group struct {
	FunctionalIDCode   string `json:"functionalIdCode"`
	GroupControlNumber string `json:"groupControlNumber"`

	// Acknowledged is true when the 997 contains an AK1 for the group.
	Acknowledged bool `json:"acknowledged"`

	// Outbound is true when the group is in the outbound log.
	Outbound bool `json:"outbound"`

	Transactions []Transaction `json:"transactions"`
}

// Counts aggregates transaction outcomes.
type Counts struct {
	Total      int `json:"total"`
	Matched    int `json:"matched"`
	MissingAck int `json:"missingAck"`
	Unexpected int `json:"unexpectedAck"`
	Mismatched int `json:"controlNumberMismatch"`
}

// Result is the outcome of a reconciliation.
type Result struct {
	Groups          []Group `json:"groups"`
	Counts          Counts  `json:"counts"`
	FullyReconciled bool    `json:"fullyReconciled"`
}

// Summary returns a one line description of the result.
func (r *Result) Summary() string {
	c := r.Counts
	parts := []string{fmt.Sprintf("%d/%d transactions matched", c.Matched, c.Total)}
	if c.MissingAck > 0 {
		parts = append(parts, fmt.Sprintf("%d missing acknowledgments", c.MissingAck))
	}
	if c.Unexpected > 0 {
		parts = append(parts, fmt.Sprintf("%d unexpected acknowledgments", c.Unexpected))
	}
	if c.Mismatched > 0 {
		parts = append(parts, fmt.Sprintf("%d transaction set mismatches", c.Mismatched))
	}
	return strings.Join(parts, ", ")
}

// Reconcile matches the groups of a validated 997 against outbound groups by
// group control number, then transactions by control number. Outbound
// entries come first in log order, followed by unexpected acknowledgments
// in document order.
//
// An accepted group that lists no AK2 acknowledges every transaction of the
// outbound group.
func Reconcile(result *ack.ValidationResult, outbound []OutboundGroup) *Result {
	var groups []ack.FunctionalGroup
	if result != nil && result.Interchange != nil {
		groups = result.Interchange.Groups
	}

	used := make([]bool, len(groups))
	find := func(control string) (*ack.FunctionalGroup, bool) {
		for i := range groups {
			if !used[i] && groups[i].GroupControlNumber == control {
				used[i] = true
				return &groups[i], true
			}
		}
		return nil, false
	}

	out := &Result{Groups: []Group{}}
	for _, og := range outbound {
		g := Group{
			FunctionalIDCode:   og.FunctionalIDCode,
			GroupControlNumber: og.GroupControlNumber,
			Outbound:           true,
		}
		ackGroup, ok := find(og.GroupControlNumber)
		g.Acknowledged = ok
		g.Transactions = reconcileGroup(og, ackGroup)
		out.Groups = append(out.Groups, g)
	}

	for i := range groups {
		if used[i] {
			continue
		}
		g := Group{
			FunctionalIDCode:   groups[i].FunctionalIDCode,
			GroupControlNumber: groups[i].GroupControlNumber,
			Acknowledged:       true,
			Transactions:       []Transaction{},
		}
		for _, ts := range groups[i].TransactionSets {
			g.Transactions = append(g.Transactions, unexpected(ts))
		}
		out.Groups = append(out.Groups, g)
	}

	for _, g := range out.Groups {
		for _, tx := range g.Transactions {
			out.Counts.Total++
			switch tx.Status {
			case Matched:
				out.Counts.Matched++
			case MissingAck:
				out.Counts.MissingAck++
			case UnexpectedAck:
				out.Counts.Unexpected++
			case ControlNumberMismatch:
				out.Counts.Mismatched++
			}
		}
	}
	out.FullyReconciled = out.Counts.Matched == out.Counts.Total
	return out
}

func reconcileGroup(og OutboundGroup, ackGroup *ack.FunctionalGroup) []Transaction {
	txs := []Transaction{}

	if ackGroup == nil {
		for _, ot := range og.Transactions {
			txs = append(txs, missing(ot, fmt.Sprintf("no acknowledgment received for group %s", og.GroupControlNumber)))
		}
		return txs
	}

	if len(ackGroup.TransactionSets) == 0 && ackGroup.Status == ack.Accepted {
		for _, ot := range og.Transactions {
			tx := Transaction{
				ControlNumber: ot.ControlNumber,
				Status:        Matched,
				Outbound:      &ot,
				Ack:           ack.Accepted,
				Reason:        "acknowledged by group acceptance",
			}
			txs = append(txs, tx)
		}
		return txs
	}

	seen := make(map[int]bool)
	for _, ot := range og.Transactions {
		idx := -1
		for i, ts := range ackGroup.TransactionSets {
			if !seen[i] && ts.ControlNumber == ot.ControlNumber {
				idx = i
				break
			}
		}
		if idx < 0 {
			txs = append(txs, missing(ot, fmt.Sprintf("no acknowledgment received for transaction %s", ot.ControlNumber)))
			continue
		}
		seen[idx] = true

		ts := ackGroup.TransactionSets[idx]
		tx := Transaction{
			ControlNumber:       ot.ControlNumber,
			Status:              Matched,
			Outbound:            &ot,
			Ack:                 ts.Status,
			AckTransactionSetID: ts.TransactionSetID,
		}
		if ts.TransactionSetID != ot.TransactionSetID {
			tx.Status = ControlNumberMismatch
			tx.Reason = fmt.Sprintf("transaction set ID mismatch: expected %s, got %s", ot.TransactionSetID, ts.TransactionSetID)
		}
		txs = append(txs, tx)
	}

	for i, ts := range ackGroup.TransactionSets {
		if !seen[i] {
			txs = append(txs, unexpected(ts))
		}
	}
	return txs
}

func missing(ot OutboundTransaction, reason string) Transaction {
	return Transaction{
		ControlNumber: ot.ControlNumber,
		Status:        MissingAck,
		Outbound:      &ot,
		Reason:        reason,
	}
}

func unexpected(ts ack.TransactionSet) Transaction {
	return Transaction{
		ControlNumber:       ts.ControlNumber,
		Status:              UnexpectedAck,
		Ack:                 ts.Status,
		AckTransactionSetID: ts.TransactionSetID,
		Reason:              fmt.Sprintf("unexpected acknowledgment for transaction %s", ts.ControlNumber),
	}
}
