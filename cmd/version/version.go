/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package version provides the version command for ack997.
package version

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"bennypowers.dev/ack997/codes"
	"bennypowers.dev/ack997/internal/version"
)

// Cmd is the version cobra command that prints version and build information.
var Cmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print version and build information for ack997, including the size of the built-in code table.`,
	Args:  cobra.NoArgs,
	RunE:  run,
}

func init() {
	Cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
}

func run(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("error reading format flag: %w", err)
	}
	return write(cmd.OutOrStdout(), format)
}

func write(w io.Writer, format string) error {
	info := version.Info()
	switch format {
	case "json":
		out, err := json.MarshalIndent(struct {
			version.BuildInfo
			Codes int `json:"codes"`
		}{info, codes.Default().Len()}, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling version info: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "text", "":
		_, err := fmt.Fprintf(w, "ack997 %s (%s, %d built-in codes)\n", info.Version, info.GoVersion, codes.Default().Len())
		return err
	default:
		return fmt.Errorf("unknown format: %s (valid: text, json)", format)
	}
}
