/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package cmd provides CLI commands for ack997.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/ack997/cmd/codes"
	"bennypowers.dev/ack997/cmd/mcp"
	"bennypowers.dev/ack997/cmd/reconcile"
	"bennypowers.dev/ack997/cmd/validate"
	"bennypowers.dev/ack997/cmd/version"
	"bennypowers.dev/ack997/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "ack997",
	Short: "Validate and reconcile X12 997 functional acknowledgments",
	Long: `ack997 parses ANSI X12 997 functional acknowledgments, classifies every
acknowledged transaction set and group, and reports syntax errors with their
descriptions.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(viper.GetBool("verbose"))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default: .config/ack997.{yaml,yml,json,toml})")
	rootCmd.PersistentFlags().String("codes", "", "Code table extending the built-in descriptions")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Print debug output")

	for _, name := range []string{"config", "codes", "verbose"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
	viper.SetEnvPrefix("ACK997")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(codes.Cmd)
	rootCmd.AddCommand(mcp.Cmd)
	rootCmd.AddCommand(reconcile.Cmd)
	rootCmd.AddCommand(validate.Cmd)
	rootCmd.AddCommand(version.Cmd)
}
