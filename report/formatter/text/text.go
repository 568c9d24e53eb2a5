/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package text provides terminal formatting for validation results.
package text

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"bennypowers.dev/ack997/ack"
	"bennypowers.dev/ack997/report/formatter"
)

// Options configures the text formatter.
type Options struct {
	Theme Theme

	// Color enables ANSI styling. Callers usually set it when stdout is a
	// terminal.
	Color bool
}

// Formatter outputs aligned plain text, optionally colored.
type Formatter struct {
	opts Options
}

// New creates a new text formatter.
func New(opts Options) *Formatter {
	return &Formatter{opts: opts}
}

var header = []string{"GROUP", "FUNC", "SET", "CONTROL", "STATUS", "ERRORS"}

// Format renders the documents as text.
func (f *Formatter) Format(docs []formatter.Document, opts formatter.Options) ([]byte, error) {
	p, err := f.opts.Theme.palette()
	if err != nil {
		return nil, err
	}
	render := func(s lipgloss.Style, text string) string {
		if !f.opts.Color {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	for i, doc := range docs {
		if i > 0 {
			b.WriteString("\n")
		}

		if doc.Result == nil {
			fmt.Fprintf(&b, "%s: %s\n", render(p.bold, doc.Name), render(p.rejected, "ERROR"))
			fmt.Fprintf(&b, "  %s\n", doc.Error)
			continue
		}

		r := doc.Result
		fmt.Fprintf(&b, "%s: %s\n", render(p.bold, doc.Name), render(p.status(r.Status), string(r.Status)))
		fmt.Fprintf(&b, "  %s\n", render(p.muted, r.Summary()))

		rows := visibleRows(doc, opts)
		if len(rows) > 0 {
			widths := columnWidths(rows)
			b.WriteString("\n  ")
			for c, h := range header {
				b.WriteString(render(p.muted, pad(h, widths[c], c == len(header)-1)))
			}
			b.WriteString("\n")
			for _, row := range rows {
				cells := cellsOf(row)
				b.WriteString("  ")
				for c, cell := range cells {
					text := pad(cell, widths[c], c == len(cells)-1)
					if c == 4 {
						text = render(p.status(row.Status), text)
					}
					b.WriteString(text)
				}
				b.WriteString("\n")
				f.writeErrors(&b, doc, row, opts, p, render)
			}
		}

		for _, issue := range r.Issues {
			style := p.partial
			if issue.Severity == ack.SeverityError {
				style = p.rejected
			}
			fmt.Fprintf(&b, "  %s\n", render(style, issue.String()))
		}
	}
	return []byte(b.String()), nil
}

func (f *Formatter) writeErrors(b *strings.Builder, doc formatter.Document, row formatter.TransactionRow, opts formatter.Options, p palette, render func(lipgloss.Style, string) string) {
	ts := find(doc.Result.Interchange, row)
	if ts == nil {
		return
	}
	errs, truncated := formatter.Truncate(ts.Errors, opts)
	for _, e := range errs {
		loc := e.SegmentID
		if pos := formatter.Position(e.SegmentPosition); pos != "" {
			loc += "@" + pos
		}
		if pos := formatter.Position(e.ElementPosition); pos != "" {
			loc += "." + pos
		}
		if loc == "" {
			loc = string(e.Level)
		}
		fmt.Fprintf(b, "    %s %s %s\n", render(p.muted, loc), e.Code, e.Description)
	}
	if truncated > 0 {
		fmt.Fprintf(b, "    %s\n", render(p.muted, fmt.Sprintf("... %d more", truncated)))
	}
}

func visibleRows(doc formatter.Document, opts formatter.Options) []formatter.TransactionRow {
	var rows []formatter.TransactionRow
	for _, row := range formatter.Transactions(doc) {
		if formatter.Visible(row.Status, opts) {
			rows = append(rows, row)
		}
	}
	return rows
}

func find(ic *ack.Interchange, row formatter.TransactionRow) *ack.TransactionSet {
	for gi := range ic.Groups {
		g := &ic.Groups[gi]
		if g.GroupControlNumber != row.GroupControlNumber {
			continue
		}
		for ti := range g.TransactionSets {
			if g.TransactionSets[ti].ControlNumber == row.ControlNumber {
				return &g.TransactionSets[ti]
			}
		}
	}
	return nil
}

func cellsOf(row formatter.TransactionRow) []string {
	return []string{
		row.GroupControlNumber,
		row.FunctionalIDCode,
		row.TransactionSetID,
		row.ControlNumber,
		string(row.Status),
		fmt.Sprint(row.Errors),
	}
}

func columnWidths(rows []formatter.TransactionRow) []int {
	widths := make([]int, len(header))
	for c, h := range header {
		widths[c] = len(h)
	}
	for _, row := range rows {
		for c, cell := range cellsOf(row) {
			widths[c] = max(widths[c], len(cell))
		}
	}
	return widths
}

func pad(s string, width int, last bool) string {
	if last {
		return s
	}
	return fmt.Sprintf("%-*s  ", width, s)
}
