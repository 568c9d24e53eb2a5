/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package mcpserver exposes 997 validation as Model Context Protocol tools.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"bennypowers.dev/ack997/codes"
	"bennypowers.dev/ack997/internal/version"
	"bennypowers.dev/ack997/load"
)

// Options configures the server.
type Options struct {
	// Load is the base option set for every validate_997 call. Codes and
	// Rules are applied to inline content as well.
	Load load.Options
}

// Server is the MCP server for ack997.
type Server struct {
	opts   Options
	codes  *codes.Table
	server *mcp.Server
}

// New creates a new MCP server.
func New(opts Options) *Server {
	table := opts.Load.Codes
	if table == nil {
		table = codes.Default()
	}

	s := &Server{
		opts:  opts,
		codes: table,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "ack997",
			Version: version.Get(),
		}, nil),
	}
	s.registerTools()
	return s
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
