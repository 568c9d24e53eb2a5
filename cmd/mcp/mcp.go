/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package mcp provides the mcp command for ack997.
package mcp

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/ack997/config"
	"bennypowers.dev/ack997/fs"
	"bennypowers.dev/ack997/internal/logger"
	"bennypowers.dev/ack997/internal/mcpserver"
	"bennypowers.dev/ack997/load"
)

// Cmd is the mcp cobra command.
var Cmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run a Model Context Protocol server over stdio",
	Long: `Run a Model Context Protocol server over stdio exposing the validate_997 and
describe_error_code tools.`,
	Args: cobra.NoArgs,
	RunE: run,
}

func run(cmd *cobra.Command, args []string) error {
	// stdout carries the protocol.
	logger.SetOutput(os.Stderr)

	filesystem := fs.NewOSFileSystem()
	root, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Resolve(filesystem, root, viper.GetString("config"))
	if err != nil {
		return err
	}
	codesPath := viper.GetString("codes")
	if codesPath == "" {
		codesPath = cfg.Codes
	}
	table, err := load.CodeTable(filesystem, root, codesPath)
	if err != nil {
		return err
	}
	rules := cfg.Rules()

	server := mcpserver.New(mcpserver.Options{Load: load.Options{
		Root:              root,
		FS:                filesystem,
		Codes:             table,
		Rules:             &rules,
		RejectPassThrough: cfg.RejectPassThrough,
		Fetcher:           load.NewHTTPFetcher(load.DefaultMaxSize),
	}})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return server.Run(ctx)
}
