/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package load

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"bennypowers.dev/ack997/internal/version"
)

const (
	// DefaultTimeout is the maximum time to wait for a network fetch.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxSize is the maximum allowed document size (10 MB).
	DefaultMaxSize int64 = 10 * 1024 * 1024
)

// Fetcher fetches a remote 997 document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithHeader adds a request header, e.g. an API token for a VAN mailbox.
func WithHeader(key, value string) FetcherOption {
	return func(f *HTTPFetcher) {
		f.header.Add(key, value)
	}
}

// WithClient replaces the HTTP client.
func WithClient(client *http.Client) FetcherOption {
	return func(f *HTTPFetcher) {
		f.client = client
	}
}

// HTTPFetcher fetches documents over HTTP with size limiting.
type HTTPFetcher struct {
	maxSize int64
	client  *http.Client
	header  http.Header
}

// NewHTTPFetcher creates an HTTPFetcher with the given maximum response size.
func NewHTTPFetcher(maxSize int64, opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		maxSize: maxSize,
		client:  &http.Client{},
		header:  make(http.Header),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch fetches the document at url.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", url, err)
	}

	for key, values := range f.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("User-Agent", version.UserAgent())
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/edi-x12, text/plain;q=0.9, */*;q=0.5")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("timeout fetching %s: %w", url, err)
		}
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: %s", url, resp.Status)
	}

	if resp.ContentLength > f.maxSize {
		return nil, fmt.Errorf("document at %s exceeds maximum size of %d bytes", url, f.maxSize)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", url, err)
	}

	if int64(len(content)) > f.maxSize {
		return nil, fmt.Errorf("document at %s exceeds maximum size of %d bytes", url, f.maxSize)
	}

	return content, nil
}
