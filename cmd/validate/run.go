/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package validate

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"bennypowers.dev/ack997/config"
	"bennypowers.dev/ack997/internal/logger"
	"bennypowers.dev/ack997/load"
	"bennypowers.dev/ack997/report"
	"bennypowers.dev/ack997/report/formatter"
)

// validateAll validates every file with at most jobs documents in flight.
// Each run is independent; failures are recorded on the document.
func validateAll(ctx context.Context, files []string, opts load.Options, jobs int, stampID bool) []formatter.Document {
	docs := make([]formatter.Document, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))

	for i, file := range files {
		g.Go(func() error {
			doc := formatter.Document{Name: displayName(opts.Root, file)}
			if stampID {
				doc.ReportID = report.NewReportID()
			}
			result, err := load.Load(gctx, file, opts)
			doc.Result = result
			if err != nil {
				doc.Error = err.Error()
			}
			docs[i] = doc
			return nil
		})
	}
	_ = g.Wait()

	return docs
}

// failed reports whether any document failed to parse or is not accepted.
// In strict mode warnings fail too.
func failed(docs []formatter.Document, strict bool) bool {
	for _, doc := range docs {
		if doc.Error != "" || doc.Result == nil || !doc.Result.Valid {
			return true
		}
		if strict && len(doc.Result.Warnings()) > 0 {
			return true
		}
	}
	return false
}

// emit writes the primary report to w or --output, then every additional
// output.
func (s *settings) emit(w io.Writer, docs []formatter.Document, quiet bool) error {
	switch {
	case s.output != "":
		if err := s.write(s.format, s.output, docs); err != nil {
			return err
		}
	case quiet:
	case s.format.Binary():
		return fmt.Errorf("%s output requires --output", s.format)
	default:
		out, err := report.Render(docs, s.format, s.render)
		if err != nil {
			return err
		}
		if _, err := w.Write(out); err != nil {
			return err
		}
	}

	for _, spec := range s.outputs {
		format, err := report.ParseFormat(spec.Format)
		if err != nil {
			return err
		}
		if err := s.write(format, spec.Path, docs); err != nil {
			return err
		}
	}
	return nil
}

// write renders docs to pattern. A pattern containing {name} produces one
// file per document.
func (s *settings) write(format report.Format, pattern string, docs []formatter.Document) error {
	opts := s.render
	opts.Color = false

	if !strings.Contains(pattern, "{name}") {
		return s.writeFile(format, pattern, docs, opts)
	}
	for _, doc := range docs {
		p := outputPath(pattern, doc.Name)
		if err := s.writeFile(format, p, []formatter.Document{doc}, opts); err != nil {
			return err
		}
	}
	return nil
}

func (s *settings) writeFile(format report.Format, p string, docs []formatter.Document, opts report.Options) error {
	out, err := report.Render(docs, format, opts)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", p, err)
	}
	if err := s.fs.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", p, err)
	}
	if err := s.fs.WriteFile(p, out, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	logger.Debug("wrote %s report to %s", format, p)
	return nil
}

// outputPath expands {name} to the base name of the document without its
// extension.
func outputPath(pattern, docName string) string {
	var base string
	if config.IsURL(docName) {
		base = path.Base(strings.SplitN(docName, "?", 2)[0])
	} else {
		base = filepath.Base(docName)
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ReplaceAll(pattern, "{name}", base)
}

// displayName shortens local paths under root.
func displayName(root, file string) string {
	if config.IsURL(file) || root == "" || !filepath.IsAbs(file) {
		return file
	}
	if rel, err := filepath.Rel(root, file); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return file
}
