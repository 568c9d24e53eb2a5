/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package xlsx provides Excel workbook formatting for validation results.
package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"bennypowers.dev/ack997/report/formatter"
)

// Sheet names.
const (
	SheetSummary      = "Summary"
	SheetTransactions = "Transactions"
	SheetErrors       = "Errors"
)

var (
	summaryHeader     = []any{"Document", "Report ID", "Status", "Valid", "Groups", "Transaction Sets", "Accepted", "Partially Accepted", "Rejected", "Errors", "Warnings", "Error"}
	transactionHeader = []any{"Document", "Functional ID", "Group Control Number", "Transaction Set", "Control Number", "Status", "Errors"}
	errorHeader       = []any{"Document", "Group Control Number", "Transaction Control Number", "Level", "Segment", "Segment Position", "Element Position", "Code", "Description", "Bad Data"}
)

// Formatter outputs an xlsx workbook.
type Formatter struct{}

// New creates a new xlsx formatter.
func New() *Formatter {
	return &Formatter{}
}

// Format renders the documents as a workbook with Summary, Transactions and
// Errors sheets.
func (f *Formatter) Format(docs []formatter.Document, opts formatter.Options) ([]byte, error) {
	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetTransactions, SheetErrors} {
		if _, err := wb.NewSheet(name); err != nil {
			return nil, err
		}
	}

	bold, err := wb.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	summary := [][]any{summaryHeader}
	transactions := [][]any{transactionHeader}
	errs := [][]any{errorHeader}

	for _, doc := range docs {
		if doc.Result == nil {
			summary = append(summary, []any{doc.Name, doc.ReportID, "", false, 0, 0, 0, 0, 0, 0, 0, doc.Error})
			continue
		}
		r := doc.Result
		c := r.Counts
		summary = append(summary, []any{
			doc.Name, doc.ReportID, string(r.Status), r.Valid,
			c.Groups, c.TransactionSets, c.Accepted, c.Partial, c.Rejected, c.Errors,
			len(r.Warnings()), doc.Error,
		})

		for _, row := range formatter.Transactions(doc) {
			if !formatter.Visible(row.Status, opts) {
				continue
			}
			transactions = append(transactions, []any{
				row.Document, row.FunctionalIDCode, row.GroupControlNumber,
				row.TransactionSetID, row.ControlNumber, string(row.Status), row.Errors,
			})
		}

		for _, row := range formatter.Errors(doc) {
			errs = append(errs, []any{
				row.Document, row.GroupControlNumber, row.TransactionControlNumber,
				string(row.Level), row.SegmentID, row.SegmentPosition, row.ElementPosition,
				row.Code, row.Description, row.BadData,
			})
		}
	}

	for _, sheet := range []struct {
		name string
		rows [][]any
	}{
		{SheetSummary, summary},
		{SheetTransactions, transactions},
		{SheetErrors, errs},
	} {
		if err := writeSheet(wb, sheet.name, sheet.rows, bold); err != nil {
			return nil, err
		}
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSheet(wb *excelize.File, name string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := wb.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", name, i+1, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(rows[0]))
	if err != nil {
		return err
	}
	if err := wb.SetCellStyle(name, "A1", last+"1", headerStyle); err != nil {
		return err
	}
	return wb.SetColWidth(name, "A", last, 18)
}
