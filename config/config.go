/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package config provides configuration loading for 997 acknowledgment
// validation.
package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"bennypowers.dev/ack997/validator"
)

// Config represents the ack997 configuration.
type Config struct {
	// Files specifies 997 documents to validate (paths or globs).
	Files []FileSpec `yaml:"files" json:"files"`

	// Codes is the path to a code table that extends the built-in one.
	Codes string `yaml:"codes" json:"codes"`

	// Strict makes warnings fail validation.
	Strict bool `yaml:"strict" json:"strict"`

	// CheckCounts enables trailer and AK9 count checks. Defaults to true.
	CheckCounts *bool `yaml:"checkCounts" json:"checkCounts"`

	// RejectPassThrough makes non-997 segments between envelopes an error.
	RejectPassThrough bool `yaml:"rejectPassThrough" json:"rejectPassThrough"`

	// Classification overrides the acknowledgment code lists.
	Classification Classification `yaml:"classification" json:"classification"`

	// Outbound is the path to the outbound transmission log used for
	// reconciliation.
	Outbound string `yaml:"outbound" json:"outbound"`

	Report  ReportConfig `yaml:"report" json:"report"`
	Outputs []OutputSpec `yaml:"outputs" json:"outputs"`
	Theme   Theme        `yaml:"theme" json:"theme"`
}

// Classification lists acknowledgment codes per status. Empty lists fall
// back to the defaults.
type Classification struct {
	Accepted []string `yaml:"accepted" json:"accepted"`
	Partial  []string `yaml:"partial" json:"partial"`
	Rejected []string `yaml:"rejected" json:"rejected"`
}

// ReportConfig configures report rendering.
type ReportConfig struct {
	// Format is the default output format: text, json, markdown or xlsx.
	Format string `yaml:"format" json:"format"`

	// JSONMode selects the JSON shape: full, summary or compact.
	JSONMode string `yaml:"jsonMode" json:"jsonMode"`

	// IncludeAccepted lists accepted transaction sets in reports.
	// Defaults to true.
	IncludeAccepted *bool `yaml:"includeAccepted" json:"includeAccepted"`

	// MaxErrorsPerTransaction truncates error listings. Zero means no limit.
	MaxErrorsPerTransaction int `yaml:"maxErrorsPerTransaction" json:"maxErrorsPerTransaction"`
}

// Theme holds CSS colors for the text report.
type Theme struct {
	Accepted string `yaml:"accepted" json:"accepted"`
	Partial  string `yaml:"partial" json:"partial"`
	Rejected string `yaml:"rejected" json:"rejected"`
	Muted    string `yaml:"muted" json:"muted"`
}

// FileSpec represents a document specification.
// It can be specified as a simple string path or as an object with overrides.
type FileSpec struct {
	// Path is the file path (supports globs and http(s) URLs).
	Path string `yaml:"path" json:"path"`

	// Outbound overrides the global outbound log for this file.
	Outbound string `yaml:"outbound" json:"outbound"`
}

// UnmarshalYAML handles both string and object forms for FileSpec.
func (f *FileSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		f.Path = node.Value
		return nil
	}

	type rawFileSpec FileSpec
	return node.Decode((*rawFileSpec)(f))
}

// UnmarshalJSON handles both string and object forms for FileSpec.
func (f *FileSpec) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Path = s
		return nil
	}

	type rawFileSpec FileSpec
	return json.Unmarshal(data, (*rawFileSpec)(f))
}

// OutputSpec is an additional report written after validation.
// The string form is "format:path".
type OutputSpec struct {
	Format string `yaml:"format" json:"format"`

	// Path may contain {name}, replaced by the document base name.
	Path string `yaml:"path" json:"path"`
}

// ParseOutputSpec parses the "format:path" form.
func ParseOutputSpec(s string) (OutputSpec, error) {
	format, path, ok := strings.Cut(s, ":")
	if !ok || format == "" || path == "" {
		return OutputSpec{}, fmt.Errorf("invalid output %q, expected format:path", s)
	}
	return OutputSpec{Format: format, Path: path}, nil
}

// UnmarshalYAML handles both string and object forms for OutputSpec.
func (o *OutputSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		spec, err := ParseOutputSpec(node.Value)
		if err != nil {
			return err
		}
		*o = spec
		return nil
	}

	type rawOutputSpec OutputSpec
	return node.Decode((*rawOutputSpec)(o))
}

// UnmarshalJSON handles both string and object forms for OutputSpec.
func (o *OutputSpec) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		spec, err := ParseOutputSpec(s)
		if err != nil {
			return err
		}
		*o = spec
		return nil
	}

	type rawOutputSpec OutputSpec
	return json.Unmarshal(data, (*rawOutputSpec)(o))
}

// Default returns a config with default values.
func Default() *Config {
	return &Config{
		Report: ReportConfig{
			Format:   "text",
			JSONMode: "full",
		},
	}
}

// Rules returns the validator rules described by the config.
func (c *Config) Rules() validator.Rules {
	rules := validator.DefaultRules()
	if len(c.Classification.Accepted) > 0 {
		rules.AcceptedCodes = c.Classification.Accepted
	}
	if len(c.Classification.Partial) > 0 {
		rules.PartialCodes = c.Classification.Partial
	}
	if len(c.Classification.Rejected) > 0 {
		rules.RejectedCodes = c.Classification.Rejected
	}
	if c.CheckCounts != nil {
		rules.CheckCounts = *c.CheckCounts
	}
	return rules
}

// IncludeAccepted reports whether accepted transaction sets are listed.
func (c *Config) IncludeAccepted() bool {
	return c.Report.IncludeAccepted == nil || *c.Report.IncludeAccepted
}

// OutboundForFile returns the outbound log for a document.
// File-level overrides take precedence over global config.
func (c *Config) OutboundForFile(path string) string {
	for _, spec := range c.Files {
		if spec.Path == path && spec.Outbound != "" {
			return spec.Outbound
		}
	}
	return c.Outbound
}

// FilePaths returns the list of file paths from all FileSpecs.
func (c *Config) FilePaths() []string {
	paths := make([]string, 0, len(c.Files))
	for _, spec := range c.Files {
		paths = append(paths, spec.Path)
	}
	return paths
}
