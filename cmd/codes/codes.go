/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package codes provides the codes command for ack997.
package codes

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	codeslib "bennypowers.dev/ack997/codes"
	"bennypowers.dev/ack997/config"
	"bennypowers.dev/ack997/fs"
	"bennypowers.dev/ack997/load"
)

// Cmd is the codes cobra command.
var Cmd = &cobra.Command{
	Use:   "codes [query]",
	Short: "List or search 997 error codes",
	Long: `List the syntax error and acknowledgment codes known to ack997, including any
configured code table. A query matches codes exactly and descriptions by
substring, ignoring case.`,
	Args: cobra.MaximumNArgs(1),
	RunE: run,
}

func init() {
	Cmd.Flags().StringP("section", "s", "", "Limit to one section: segment, element, transaction_set, group, ack")
	Cmd.Flags().StringP("format", "f", "table", "Output format: table, json, yaml")
}

func run(cmd *cobra.Command, args []string) error {
	sectionFlag, _ := cmd.Flags().GetString("section")
	format, _ := cmd.Flags().GetString("format")

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

	query := ""
	if len(args) > 0 {
		query = args[0]
	}
	matches, err := find(table, query, sectionFlag)
	if err != nil {
		return err
	}
	return write(cmd.OutOrStdout(), matches, format)
}

// find searches table, optionally limited to one section.
func find(table *codeslib.Table, query, sectionFlag string) ([]codeslib.Match, error) {
	matches := table.Search(query)
	if sectionFlag == "" {
		return matches, nil
	}

	section, err := codeslib.ParseSection(sectionFlag)
	if err != nil {
		return nil, err
	}
	var filtered []codeslib.Match
	for _, m := range matches {
		if m.Section == section {
			filtered = append(filtered, m)
		}
	}
	return filtered, nil
}

func write(w io.Writer, matches []codeslib.Match, format string) error {
	switch format {
	case "json":
		if matches == nil {
			matches = []codeslib.Match{}
		}
		out, err := json.MarshalIndent(matches, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "yaml":
		grouped := make(map[string][]codeslib.Entry)
		for _, m := range matches {
			grouped[string(m.Section)] = append(grouped[string(m.Section)], m.Entry)
		}
		return yaml.NewEncoder(w).Encode(grouped)
	case "table", "":
		if len(matches) == 0 {
			_, err := fmt.Fprintln(w, "No matching codes.")
			return err
		}
		sectionW, codeW := len("SECTION"), len("CODE")
		for _, m := range matches {
			sectionW = max(sectionW, len(m.Section))
			codeW = max(codeW, len(m.Code))
		}
		fmt.Fprintf(w, "%-*s  %-*s  %s\n", sectionW, "SECTION", codeW, "CODE", "DESCRIPTION")
		for _, m := range matches {
			fmt.Fprintf(w, "%-*s  %-*s  %s\n", sectionW, m.Section, codeW, m.Code, m.Description)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s (valid: table, json, yaml)", format)
	}
}
