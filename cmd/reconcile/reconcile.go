/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package reconcile provides the reconcile command for ack997.
package reconcile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/ack997/config"
	"bennypowers.dev/ack997/fs"
	"bennypowers.dev/ack997/load"
	reconcilelib "bennypowers.dev/ack997/reconcile"
)

// Cmd is the reconcile cobra command.
var Cmd = &cobra.Command{
	Use:   "reconcile <997-file>",
	Short: "Match a 997 against the outbound transmission log",
	Long: `Match the transaction sets acknowledged by a 997 against a log of outbound
transactions, reporting missing and unexpected acknowledgments.

The outbound log is a YAML or JSON list of functional groups:

  - functionalIdCode: PO
    groupControlNumber: "1234"
    transactions:
      - transactionSetId: "850"
        controlNumber: "0001"`,
	Args: cobra.ExactArgs(1),
	RunE: run,
}

func init() {
	Cmd.Flags().String("outbound", "", "Outbound transmission log (default: from config)")
	Cmd.Flags().StringP("format", "f", "table", "Output format: table, json")
}

func run(cmd *cobra.Command, args []string) error {
	file := args[0]
	outbound, _ := cmd.Flags().GetString("outbound")
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

	if outbound == "" {
		outbound = cfg.OutboundForFile(file)
	}
	if outbound == "" {
		return fmt.Errorf("no outbound log given; use --outbound or set outbound in config")
	}
	if !filepath.IsAbs(outbound) {
		outbound = filepath.Join(root, outbound)
	}

	codesPath := viper.GetString("codes")
	if codesPath == "" {
		codesPath = cfg.Codes
	}
	table, err := load.CodeTable(filesystem, root, codesPath)
	if err != nil {
		return err
	}

	result, err := load.Load(cmd.Context(), file, load.Options{
		Root:    root,
		FS:      filesystem,
		Codes:   table,
		Fetcher: load.NewHTTPFetcher(load.DefaultMaxSize),
	})
	if result == nil {
		return err
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}

	log, err := reconcilelib.LoadLog(filesystem, outbound)
	if err != nil {
		return err
	}

	rec := reconcilelib.Reconcile(result, log)
	if err := write(cmd.OutOrStdout(), rec, format); err != nil {
		return err
	}
	if !rec.FullyReconciled {
		return fmt.Errorf("reconciliation incomplete: %s", rec.Summary())
	}
	return nil
}

func write(w io.Writer, rec *reconcilelib.Result, format string) error {
	switch format {
	case "json":
		out, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "table", "":
		return table(w, rec)
	default:
		return fmt.Errorf("unknown format: %s (valid: table, json)", format)
	}
}

var header = []string{"GROUP", "FUNC", "CONTROL", "SET", "STATUS", "ACK", "REASON"}

func table(w io.Writer, rec *reconcilelib.Result) error {
	var rows [][]string
	for _, g := range rec.Groups {
		for _, tx := range g.Transactions {
			set := tx.AckTransactionSetID
			if tx.Outbound != nil {
				set = tx.Outbound.TransactionSetID
			}
			rows = append(rows, []string{
				g.GroupControlNumber, g.FunctionalIDCode, tx.ControlNumber, set,
				string(tx.Status), string(tx.Ack), tx.Reason,
			})
		}
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	for _, row := range append([][]string{header}, rows...) {
		for i, cell := range row {
			if i == len(row)-1 {
				fmt.Fprintln(w, cell)
				continue
			}
			fmt.Fprintf(w, "%-*s  ", widths[i], cell)
		}
	}
	_, err := fmt.Fprintln(w, rec.Summary())
	return err
}
