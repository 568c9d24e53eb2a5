/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package codes maps X12 997 syntax error and acknowledgment codes to
// human-readable descriptions.
package codes

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"bennypowers.dev/ack997/ack"
	"bennypowers.dev/ack997/fs"
	"bennypowers.dev/ack997/internal/logger"
)

//go:embed x12_997.yaml
var defaultTable []byte

// Section names a code list.
type Section string

const (
	// SectionSegment lists AK3-04 segment syntax error codes.
	SectionSegment Section = "segment"
	// SectionElement lists AK4-03 data element syntax error codes.
	SectionElement Section = "element"
	// SectionTransactionSet lists AK5-02..06 transaction set syntax error codes.
	SectionTransactionSet Section = "transaction_set"
	// SectionGroup lists AK9-05..09 functional group syntax error codes.
	SectionGroup Section = "group"
	// SectionAck lists AK5-01 and AK9-01 acknowledgment codes.
	SectionAck Section = "ack"
)

// Sections returns every section in display order.
func Sections() []Section {
	return []Section{SectionSegment, SectionElement, SectionTransactionSet, SectionGroup, SectionAck}
}

// ParseSection parses a section name. Level names are accepted too.
func ParseSection(s string) (Section, error) {
	switch Section(strings.ToLower(strings.TrimSpace(s))) {
	case SectionSegment, "ak3":
		return SectionSegment, nil
	case SectionElement, "ak4":
		return SectionElement, nil
	case SectionTransactionSet, "transaction-set", "ak5":
		return SectionTransactionSet, nil
	case SectionGroup, "ak9":
		return SectionGroup, nil
	case SectionAck:
		return SectionAck, nil
	default:
		return "", fmt.Errorf("unknown code section %q", s)
	}
}

// Entry is one code and its description.
type Entry struct {
	Code        string `yaml:"code" json:"code" toml:"code"`
	Description string `yaml:"description" json:"description" toml:"description"`
	// Severity is informational: error, warning or success. Empty means error.
	Severity string `yaml:"severity,omitempty" json:"severity,omitempty" toml:"severity,omitempty"`
}

// Match is a search hit.
type Match struct {
	Section Section `json:"section"`
	Entry
}

// Table is an immutable code table. It is safe for concurrent use.
type Table struct {
	sections map[Section][]Entry
	index    map[Section]map[string]int
}

type document map[string][]Entry

var loadDefault = sync.OnceValue(func() *Table {
	t, err := Parse(defaultTable, FormatYAML)
	if err != nil {
		panic(fmt.Sprintf("codes: embedded table is invalid: %v", err))
	}
	return t
})

// Default returns the built-in X12 997 code table.
func Default() *Table {
	return loadDefault()
}

// Format is the encoding of a code table file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath infers the table format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported code table format: %s", path)
	}
}

// Parse decodes a code table. JSON input may contain comments.
func Parse(data []byte, format Format) (*Table, error) {
	var doc document
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatJSON:
		err = json.Unmarshal(jsonc.ToJSON(data), &doc)
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("unsupported code table format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse code table: %w", err)
	}

	t := newTable()
	for name, entries := range doc {
		section := Section(name)
		if !slices.Contains(Sections(), section) {
			return nil, fmt.Errorf("unknown code section %q", section)
		}
		for _, e := range entries {
			if strings.TrimSpace(e.Code) == "" {
				return nil, fmt.Errorf("code table section %s has an entry without a code", section)
			}
			t.put(section, e)
		}
	}
	return t, nil
}

// LoadFile reads a code table file. The format is inferred from the extension.
func LoadFile(filesystem fs.FileSystem, path string) (*Table, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := filesystem.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read code table %s: %w", path, err)
	}
	t, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("loaded %d codes from %s", t.Len(), path)
	return t, nil
}

func newTable() *Table {
	return &Table{
		sections: make(map[Section][]Entry),
		index:    make(map[Section]map[string]int),
	}
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (t *Table) put(section Section, e Entry) {
	e.Code = strings.TrimSpace(e.Code)
	key := normalize(e.Code)
	idx, ok := t.index[section]
	if !ok {
		idx = make(map[string]int)
		t.index[section] = idx
	}
	if i, exists := idx[key]; exists {
		t.sections[section][i] = e
		return
	}
	idx[key] = len(t.sections[section])
	t.sections[section] = append(t.sections[section], e)
}

// Merge returns a new table with the entries of other added to, or
// replacing, the entries of t.
func (t *Table) Merge(other *Table) *Table {
	out := newTable()
	for _, src := range []*Table{t, other} {
		if src == nil {
			continue
		}
		for _, section := range Sections() {
			for _, e := range src.sections[section] {
				out.put(section, e)
			}
		}
	}
	return out
}

// Lookup returns the entry for code in section.
func (t *Table) Lookup(section Section, code string) (Entry, bool) {
	i, ok := t.index[section][normalize(code)]
	if !ok {
		return Entry{}, false
	}
	return t.sections[section][i], true
}

// Describe returns the description of an error code reported at level.
func (t *Table) Describe(level ack.Level, code string) (string, bool) {
	e, ok := t.Lookup(Section(level), code)
	return e.Description, ok
}

// DescribeAck returns the description of an AK5-01 or AK9-01 code.
func (t *Table) DescribeAck(code string) (string, bool) {
	e, ok := t.Lookup(SectionAck, code)
	return e.Description, ok
}

// Entries returns a copy of the entries of section in table order.
func (t *Table) Entries(section Section) []Entry {
	return slices.Clone(t.sections[section])
}

// Len returns the number of entries across all sections.
func (t *Table) Len() int {
	n := 0
	for _, entries := range t.sections {
		n += len(entries)
	}
	return n
}

// Search finds entries whose code equals query or whose description
// contains it, ignoring case. An empty query matches everything.
func (t *Table) Search(query string) []Match {
	q := strings.ToLower(strings.TrimSpace(query))
	var matches []Match
	for _, section := range Sections() {
		for _, e := range t.sections[section] {
			if q == "" ||
				strings.EqualFold(e.Code, q) ||
				strings.Contains(strings.ToLower(e.Description), q) {
				matches = append(matches, Match{Section: section, Entry: e})
			}
		}
	}
	return matches
}
