/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package markdown provides Markdown formatting for validation results.
package markdown

import (
	"bytes"
	"embed"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bennypowers.dev/ack997/ack"
	"bennypowers.dev/ack997/report/formatter"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates *template.Template

func init() {
	templates = template.Must(template.New("").Funcs(template.FuncMap{
		"status": Label[ack.Status],
		"level":  Label[ack.Level],
		"cell":   escapeCell,
	}).ParseFS(templateFS, "templates/*.tmpl"))
}

var title = cases.Title(language.English)

// Label renders a status or level constant as title-cased words, for
// example PARTIALLY_ACCEPTED as "Partially Accepted".
func Label[S ~string](s S) string {
	return title.String(strings.ReplaceAll(strings.ToLower(string(s)), "_", " "))
}

// templateData holds data for template execution.
type templateData struct {
	ReportID string
	Docs     []docData
}

type docData struct {
	Name    string
	Error   string
	Status  ack.Status
	Summary string
	Counts  ack.Counts
	Groups  []groupData
	Issues  []ack.Issue
}

type groupData struct {
	FunctionalIDCode string
	ControlNumber    string
	Status           ack.Status
	Errors           []errorData
	Transactions     []transactionData
	Hidden           int
}

type transactionData struct {
	TransactionSetID string
	ControlNumber    string
	Status           ack.Status
	Errors           []errorData
	Truncated        int
}

type errorData struct {
	Level           ack.Level
	SegmentID       string
	SegmentPosition string
	ElementPosition string
	Code            string
	Description     string
	BadData         string
}

// Formatter outputs Markdown reports.
type Formatter struct{}

// New creates a new Markdown formatter.
func New() *Formatter {
	return &Formatter{}
}

// Format renders the documents as a single Markdown report.
func (f *Formatter) Format(docs []formatter.Document, opts formatter.Options) ([]byte, error) {
	data := templateData{}
	for _, doc := range docs {
		if data.ReportID == "" {
			data.ReportID = doc.ReportID
		}
		data.Docs = append(data.Docs, buildDoc(doc, opts))
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "report.md.tmpl", data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildDoc(doc formatter.Document, opts formatter.Options) docData {
	d := docData{Name: doc.Name, Error: doc.Error}
	r := doc.Result
	if r == nil {
		if d.Error == "" {
			d.Error = "no result"
		}
		return d
	}

	d.Status = r.Status
	d.Summary = r.Summary()
	d.Counts = r.Counts
	d.Issues = r.Issues

	for _, g := range r.Interchange.Groups {
		gd := groupData{
			FunctionalIDCode: g.FunctionalIDCode,
			ControlNumber:    g.GroupControlNumber,
			Status:           g.Status,
			Errors:           buildErrors(g.Errors),
		}
		for _, ts := range g.TransactionSets {
			if !formatter.Visible(ts.Status, opts) {
				gd.Hidden++
				continue
			}
			errs, truncated := formatter.Truncate(ts.Errors, opts)
			gd.Transactions = append(gd.Transactions, transactionData{
				TransactionSetID: ts.TransactionSetID,
				ControlNumber:    ts.ControlNumber,
				Status:           ts.Status,
				Errors:           buildErrors(errs),
				Truncated:        truncated,
			})
		}
		d.Groups = append(d.Groups, gd)
	}
	return d
}

func buildErrors(errs []ack.ErrorDetail) []errorData {
	var out []errorData
	for _, e := range errs {
		out = append(out, errorData{
			Level:           e.Level,
			SegmentID:       e.SegmentID,
			SegmentPosition: formatter.Position(e.SegmentPosition),
			ElementPosition: formatter.Position(e.ElementPosition),
			Code:            e.Code,
			Description:     e.Description,
			BadData:         e.BadData,
		})
	}
	return out
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
