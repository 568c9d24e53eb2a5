/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package load provides a high-level API for validating 997 documents.
package load

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"bennypowers.dev/ack997/ack"
	"bennypowers.dev/ack997/codes"
	"bennypowers.dev/ack997/config"
	"bennypowers.dev/ack997/fs"
	"bennypowers.dev/ack997/internal/logger"
	"bennypowers.dev/ack997/parser"
	"bennypowers.dev/ack997/validator"
	"bennypowers.dev/ack997/x12"
)

// ErrNoFetcher indicates that a remote document was requested without a
// Fetcher.
var ErrNoFetcher = errors.New("remote documents require a fetcher")

// ErrTooLarge indicates that a document exceeds Options.MaxSize.
var ErrTooLarge = errors.New("document exceeds maximum size")

// Options configures how documents are loaded and validated.
type Options struct {
	// Root is the directory for config discovery and relative paths.
	Root string

	// FS is the filesystem to use. Defaults to OS filesystem if nil.
	FS fs.FileSystem

	// Codes is the code table. Takes precedence over config file if set.
	// Defaults to the built-in table.
	Codes *codes.Table

	// Rules are the classification rules. Take precedence over config
	// file if set.
	Rules *validator.Rules

	// RejectPassThrough makes non-997 segments between envelopes an error.
	RejectPassThrough bool

	// Fetcher enables loading http(s) URLs. Nil means local files only.
	Fetcher Fetcher

	// FetchTimeout is the maximum time to wait for a network fetch.
	// Defaults to DefaultTimeout when zero. Has no effect if Fetcher is nil.
	FetchTimeout time.Duration

	// MaxSize is the largest document accepted, local or remote, in bytes.
	// Defaults to DefaultMaxSize when zero.
	MaxSize int64
}

// Parse runs the pipeline over content: delimiter detection, tokenizing,
// segment parsing and validation. It does not read config files.
//
// When parsing stops at a structural error, Parse returns the validation
// result for the groups parsed before the failure together with the error.
func Parse(content []byte, opts Options) (*ack.ValidationResult, error) {
	table := opts.Codes
	if table == nil {
		table = codes.Default()
	}
	rules := validator.DefaultRules()
	if opts.Rules != nil {
		rules = *opts.Rules
	}

	ic, err := parser.NewX12Parser().Parse(content, parser.Options{
		RejectPassThrough: opts.RejectPassThrough,
	})
	if err != nil {
		if ic != nil && errors.Is(err, x12.ErrStructural) {
			return validator.Validate(ic, validator.NewContext(table, rules)), err
		}
		return nil, err
	}

	return validator.Validate(ic, validator.NewContext(table, rules)), nil
}

// Load reads and validates a 997 document.
//
// The spec can be a local file path, relative to Root, or an http(s) URL
// fetched through Options.Fetcher. Config from .config/ack997.yaml fills
// any option left unset.
func Load(ctx context.Context, spec string, opts Options) (*ack.ValidationResult, error) {
	filesystem := opts.FS
	if filesystem == nil {
		filesystem = fs.NewOSFileSystem()
	}

	root, err := absRoot(opts.Root)
	if err != nil {
		return nil, err
	}

	cfg := config.LoadOrDefault(filesystem, root)

	if opts.Codes == nil {
		table, err := CodeTable(filesystem, root, cfg.Codes)
		if err != nil {
			return nil, err
		}
		opts.Codes = table
	}
	if opts.Rules == nil {
		rules := cfg.Rules()
		opts.Rules = &rules
	}
	opts.RejectPassThrough = opts.RejectPassThrough || cfg.RejectPassThrough

	fetchTimeout := opts.FetchTimeout
	if fetchTimeout == 0 {
		fetchTimeout = DefaultTimeout
	}
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	content, err := resolveContent(ctx, spec, root, filesystem, opts.Fetcher, fetchTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", spec, err)
	}
	if int64(len(content)) > maxSize {
		return nil, fmt.Errorf("failed to load %q: %w (%d bytes, limit %d)", spec, ErrTooLarge, len(content), maxSize)
	}

	result, err := Parse(content, opts)
	if err != nil {
		return result, fmt.Errorf("failed to parse %s: %w", spec, err)
	}
	logger.Debug("%s: %s", spec, result.Summary())
	return result, nil
}

// CodeTable returns the built-in code table, extended by the table at path
// when path is not empty. Relative paths resolve against root.
func CodeTable(filesystem fs.FileSystem, root, path string) (*codes.Table, error) {
	if path == "" {
		return codes.Default(), nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	custom, err := codes.LoadFile(filesystem, path)
	if err != nil {
		return nil, err
	}
	return codes.Default().Merge(custom), nil
}

func absRoot(root string) (string, error) {
	if root == "" {
		root = "."
	}
	if filepath.IsAbs(root) {
		return root, nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root path: %w", err)
	}
	return abs, nil
}

// resolveContent reads a local document or fetches a remote one.
func resolveContent(ctx context.Context, spec, root string, filesystem fs.FileSystem, fetcher Fetcher, fetchTimeout time.Duration) ([]byte, error) {
	if config.IsURL(spec) {
		if fetcher == nil {
			return nil, ErrNoFetcher
		}
		ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()
		return fetcher.Fetch(ctx, spec)
	}

	path := spec
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	content, err := filesystem.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return content, nil
}
