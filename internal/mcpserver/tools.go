/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package mcpserver

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"bennypowers.dev/ack997/ack"
	"bennypowers.dev/ack997/codes"
	"bennypowers.dev/ack997/load"
)

// ValidateInput is the input schema for the validate_997 tool.
type ValidateInput struct {
	Content string `json:"content,omitempty" jsonschema:"raw 997 document text"`
	Path    string `json:"path,omitempty" jsonschema:"path or http(s) URL of a 997 document, used when content is empty"`
}

// ValidateOutput is the output schema for the validate_997 tool.
type ValidateOutput struct {
	Status       ack.Status           `json:"status,omitempty"`
	Valid        bool                 `json:"valid"`
	Summary      string               `json:"summary,omitempty"`
	Counts       ack.Counts           `json:"counts"`
	Transactions []ack.TransactionRef `json:"transactions,omitempty"`
	Errors       []ErrorOutput        `json:"errors,omitempty"`
	Issues       []string             `json:"issues,omitempty"`

	// ParseError is set when the document could not be fully parsed.
	ParseError string `json:"parseError,omitempty"`
}

// ErrorOutput is one reported syntax error.
type ErrorOutput struct {
	GroupControlNumber       string    `json:"groupControlNumber"`
	TransactionControlNumber string    `json:"transactionControlNumber,omitempty"`
	Level                    ack.Level `json:"level"`
	SegmentID                string    `json:"segmentId,omitempty"`
	Code                     string    `json:"code"`
	Description              string    `json:"description"`
}

// DescribeInput is the input schema for the describe_error_code tool.
type DescribeInput struct {
	Code    string `json:"code" jsonschema:"error or acknowledgment code, or text to search descriptions for"`
	Section string `json:"section,omitempty" jsonschema:"segment, element, transaction_set, group or ack; searches all sections when empty"`
}

// DescribeOutput is the output schema for the describe_error_code tool.
type DescribeOutput struct {
	Matches []codes.Match `json:"matches"`
	Count   int           `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "validate_997",
		Description: "Validate an X12 997 functional acknowledgment and report per transaction set statuses and errors",
	}, s.handleValidate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "describe_error_code",
		Description: "Describe X12 997 syntax error and acknowledgment codes",
	}, s.handleDescribe)
}

func (s *Server) handleValidate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ValidateInput,
) (*mcp.CallToolResult, ValidateOutput, error) {
	opts := s.opts.Load
	opts.Codes = s.codes

	var result *ack.ValidationResult
	var err error
	switch {
	case strings.TrimSpace(input.Content) != "":
		result, err = load.Parse([]byte(input.Content), opts)
	case input.Path != "":
		result, err = load.Load(ctx, input.Path, opts)
	default:
		return nil, ValidateOutput{}, errors.New("either content or path is required")
	}

	if result == nil {
		return nil, ValidateOutput{}, err
	}

	out := ValidateOutput{
		Status:       result.Status,
		Valid:        result.Valid && err == nil,
		Summary:      result.Summary(),
		Counts:       result.Counts,
		Transactions: result.Acknowledgments(),
	}
	if err != nil {
		out.ParseError = err.Error()
	}
	for _, g := range result.Interchange.Groups {
		for _, ts := range g.TransactionSets {
			for _, e := range ts.Errors {
				out.Errors = append(out.Errors, errorOutput(g.GroupControlNumber, ts.ControlNumber, e))
			}
		}
		for _, e := range g.Errors {
			out.Errors = append(out.Errors, errorOutput(g.GroupControlNumber, "", e))
		}
	}
	for _, issue := range result.Issues {
		out.Issues = append(out.Issues, issue.String())
	}
	return nil, out, nil
}

func errorOutput(group, transaction string, e ack.ErrorDetail) ErrorOutput {
	return ErrorOutput{
		GroupControlNumber:       group,
		TransactionControlNumber: transaction,
		Level:                    e.Level,
		SegmentID:                e.SegmentID,
		Code:                     e.Code,
		Description:              e.Description,
	}
}

func (s *Server) handleDescribe(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input DescribeInput,
) (*mcp.CallToolResult, DescribeOutput, error) {
	if strings.TrimSpace(input.Code) == "" {
		return nil, DescribeOutput{}, errors.New("code is required")
	}

	out := DescribeOutput{Matches: []codes.Match{}}
	if input.Section != "" {
		section, err := codes.ParseSection(input.Section)
		if err != nil {
			return nil, DescribeOutput{}, err
		}
		if e, ok := s.codes.Lookup(section, input.Code); ok {
			out.Matches = append(out.Matches, codes.Match{Section: section, Entry: e})
		}
	} else {
		out.Matches = append(out.Matches, s.codes.Search(input.Code)...)
	}
	out.Count = len(out.Matches)
	return nil, out, nil
}
