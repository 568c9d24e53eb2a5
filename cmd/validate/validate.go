/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package validate provides the validate command for ack997.
package validate

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"bennypowers.dev/ack997/config"
	"bennypowers.dev/ack997/fs"
	"bennypowers.dev/ack997/load"
	"bennypowers.dev/ack997/report"
	"bennypowers.dev/ack997/report/formatter/jsonreport"
	"bennypowers.dev/ack997/report/formatter/text"
)

// Cmd is the validate cobra command.
var Cmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate 997 functional acknowledgments",
	Long: `Validate X12 997 functional acknowledgments and report the status of every
acknowledged transaction set and group.

Files may be local paths or http(s) URLs. Without arguments, the files listed
in .config/ack997.yaml are validated.

Output Formats:
  text      aligned table, colored on terminals (default)
  json      JSON report; see --json-mode
  markdown  Markdown report
  xlsx      Excel workbook with Summary, Transactions and Errors sheets

Examples:
  # Validate one acknowledgment
  ack997 validate inbound/997_0001.edi

  # Write a JSON summary per document
  ack997 validate --format json --json-mode summary -o "reports/{name}.json" inbound/*.edi

  # Several outputs at once
  ack997 validate --outputs markdown:report.md --outputs xlsx:report.xlsx inbound/*.edi

  # Revalidate whenever a document changes
  ack997 validate --watch inbound/*.edi`,
	Args: cobra.ArbitraryArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().StringP("format", "f", "", "Output format: "+strings.Join(report.ValidFormats(), ", "))
	Cmd.Flags().String("json-mode", "", "JSON report mode: "+strings.Join(jsonreport.ValidModes(), ", "))
	Cmd.Flags().StringP("output", "o", "", "Output file (default: stdout); {name} expands to each document's base name")
	Cmd.Flags().StringArray("outputs", nil, "Additional outputs as format:path pairs (repeatable)")
	Cmd.Flags().Bool("strict", false, "Fail on warnings")
	Cmd.Flags().BoolP("quiet", "q", false, "Do not print the report to stdout")
	Cmd.Flags().IntP("jobs", "j", 4, "Number of documents validated concurrently")
	Cmd.Flags().BoolP("watch", "w", false, "Revalidate documents when they change")
	Cmd.Flags().Bool("include-accepted", true, "List accepted transaction sets")
	Cmd.Flags().Int("max-errors", 0, "Maximum errors listed per transaction set (0: no limit)")
	Cmd.Flags().Bool("reject-pass-through", false, "Treat non-997 segments between envelopes as errors")
	Cmd.Flags().Bool("report-id", false, "Stamp reports with a unique ID")
	Cmd.Flags().StringArrayP("header", "H", nil, "HTTP header for remote documents as key:value (repeatable)")
}

func run(cmd *cobra.Command, args []string) error {
	quiet, _ := cmd.Flags().GetBool("quiet")
	watch, _ := cmd.Flags().GetBool("watch")

	filesystem := fs.NewOSFileSystem()
	root, err := os.Getwd()
	if err != nil {
		return err
	}

	cfg, err := config.Resolve(filesystem, root, viper.GetString("config"))
	if err != nil {
		return err
	}

	files := args
	if len(files) == 0 {
		expanded, err := cfg.ExpandFiles(filesystem, root)
		if err != nil {
			return fmt.Errorf("error expanding config files: %w", err)
		}
		files = expanded
	}
	if len(files) == 0 {
		return fmt.Errorf("no files specified and no files found in config")
	}

	s, err := newSettings(cmd, cfg, filesystem, root)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	docs := validateAll(ctx, files, s.load, s.jobs, s.reportID)
	if err := s.emit(cmd.OutOrStdout(), docs, quiet); err != nil {
		return err
	}

	if watch {
		return watchFiles(ctx, files, s, cmd.OutOrStdout(), cmd.ErrOrStderr())
	}

	if failed(docs, s.strict) {
		return fmt.Errorf("validation failed")
	}
	return nil
}

// settings is the resolved option set of one validate invocation.
type settings struct {
	load     load.Options
	render   report.Options
	format   report.Format
	output   string
	outputs  []config.OutputSpec
	strict   bool
	jobs     int
	reportID bool
	fs       fs.FileSystem
}

func newSettings(cmd *cobra.Command, cfg *config.Config, filesystem fs.FileSystem, root string) (*settings, error) {
	flags := cmd.Flags()

	formatFlag, _ := flags.GetString("format")
	if formatFlag == "" {
		formatFlag = cfg.Report.Format
	}
	format, err := report.ParseFormat(formatFlag)
	if err != nil {
		return nil, err
	}

	modeFlag, _ := flags.GetString("json-mode")
	if modeFlag == "" {
		modeFlag = cfg.Report.JSONMode
	}
	mode, err := jsonreport.ParseMode(modeFlag)
	if err != nil {
		return nil, err
	}

	codesPath := viper.GetString("codes")
	if codesPath == "" {
		codesPath = cfg.Codes
	}
	table, err := load.CodeTable(filesystem, root, codesPath)
	if err != nil {
		return nil, err
	}
	rules := cfg.Rules()

	var fetcherOpts []load.FetcherOption
	headers, _ := flags.GetStringArray("header")
	for _, h := range headers {
		key, value, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("invalid header %q: expected key:value", h)
		}
		fetcherOpts = append(fetcherOpts, load.WithHeader(strings.TrimSpace(key), strings.TrimSpace(value)))
	}

	rejectPassThrough, _ := flags.GetBool("reject-pass-through")
	includeAccepted := cfg.IncludeAccepted()
	if flags.Changed("include-accepted") {
		includeAccepted, _ = flags.GetBool("include-accepted")
	}
	maxErrors := cfg.Report.MaxErrorsPerTransaction
	if flags.Changed("max-errors") {
		maxErrors, _ = flags.GetInt("max-errors")
	}
	strict, _ := flags.GetBool("strict")
	jobs, _ := flags.GetInt("jobs")
	reportID, _ := flags.GetBool("report-id")
	output, _ := flags.GetString("output")

	outputs := slices.Clone(cfg.Outputs)
	outputFlags, _ := flags.GetStringArray("outputs")
	if len(outputFlags) > 0 {
		outputs = nil
		for _, o := range outputFlags {
			spec, err := config.ParseOutputSpec(o)
			if err != nil {
				return nil, err
			}
			outputs = append(outputs, spec)
		}
	}
	for i := range outputs {
		if !filepath.IsAbs(outputs[i].Path) {
			outputs[i].Path = filepath.Join(root, outputs[i].Path)
		}
	}

	return &settings{
		load: load.Options{
			Root:              root,
			FS:                filesystem,
			Codes:             table,
			Rules:             &rules,
			RejectPassThrough: rejectPassThrough || cfg.RejectPassThrough,
			Fetcher:           load.NewHTTPFetcher(load.DefaultMaxSize, fetcherOpts...),
		},
		render: report.Options{
			JSONMode:                mode,
			IncludeAccepted:         includeAccepted,
			MaxErrorsPerTransaction: maxErrors,
			Theme: text.Theme{
				Accepted: cfg.Theme.Accepted,
				Partial:  cfg.Theme.Partial,
				Rejected: cfg.Theme.Rejected,
				Muted:    cfg.Theme.Muted,
			},
			Color: term.IsTerminal(int(os.Stdout.Fd())),
		},
		format:   format,
		output:   output,
		outputs:  outputs,
		strict:   strict || cfg.Strict,
		jobs:     jobs,
		reportID: reportID,
		fs:       filesystem,
	}, nil
}
