/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package reconcile

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"bennypowers.dev/ack997/fs"
	"bennypowers.dev/ack997/internal/logger"
)

// OutboundTransaction is a transaction set sent to a trading partner.
type OutboundTransaction struct {
	TransactionSetID string `yaml:"transactionSetId" json:"transactionSetId"`
	ControlNumber    string `yaml:"controlNumber" json:"controlNumber"`
}

// OutboundGroup is a functional group sent to a trading partner.
type OutboundGroup struct {
	FunctionalIDCode   string                `yaml:"functionalIdCode" json:"functionalIdCode"`
	GroupControlNumber string                `yaml:"groupControlNumber" json:"groupControlNumber"`
	Transactions       []OutboundTransaction `yaml:"transactions" json:"transactions"`
}

// ParseLog decodes an outbound log. The log is a list of groups; JSON may
// contain comments.
func ParseLog(data []byte, format string) ([]OutboundGroup, error) {
	var groups []OutboundGroup
	var err error
	switch format {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &groups)
	case "json":
		err = json.Unmarshal(jsonc.ToJSON(data), &groups)
	default:
		return nil, fmt.Errorf("unsupported outbound log format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse outbound log: %w", err)
	}

	for i, g := range groups {
		if strings.TrimSpace(g.GroupControlNumber) == "" {
			return nil, fmt.Errorf("outbound group %d has no groupControlNumber", i+1)
		}
		for j, tx := range g.Transactions {
			if strings.TrimSpace(tx.ControlNumber) == "" {
				return nil, fmt.Errorf("outbound group %s: transaction %d has no controlNumber", g.GroupControlNumber, j+1)
			}
		}
	}
	return groups, nil
}

// LoadLog reads an outbound log file. The format is inferred from the
// extension.
func LoadLog(filesystem fs.FileSystem, path string) ([]OutboundGroup, error) {
	data, err := filesystem.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read outbound log %s: %w", path, err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	groups, err := ParseLog(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("loaded %d outbound groups from %s", len(groups), path)
	return groups, nil
}
