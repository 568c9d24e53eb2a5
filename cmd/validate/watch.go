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
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"bennypowers.dev/ack997/config"
	"bennypowers.dev/ack997/internal/logger"
)

const debounceDelay = 200 * time.Millisecond

// watchFiles revalidates local documents whenever they are written. It
// blocks until ctx is done.
func watchFiles(ctx context.Context, files []string, s *settings, out, errOut io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]string)
	dirs := make(map[string]bool)
	for _, file := range files {
		if config.IsURL(file) {
			continue
		}
		abs, err := filepath.Abs(file)
		if err != nil {
			return err
		}
		watched[abs] = file
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	if len(watched) == 0 {
		return fmt.Errorf("--watch requires at least one local file")
	}
	logger.Info("watching %d files for changes", len(watched))

	pending := newDebouncer(debounceDelay)
	defer pending.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			file, ok := watched[filepath.Clean(ev.Name)]
			if !ok || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			pending.touch(file)

		case file := <-pending.ready:
			docs := validateAll(ctx, []string{file}, s.load, 1, s.reportID)
			if err := s.emit(out, docs, false); err != nil {
				fmt.Fprintf(errOut, "Error: %v\n", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}

// debouncer delivers a file on ready once no change to it has been seen
// for delay. Every touch restarts the file's timer.
type debouncer struct {
	delay  time.Duration
	timers map[string]*time.Timer
	ready  chan string
	done   chan struct{}
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
		ready:  make(chan string),
		done:   make(chan struct{}),
	}
}

// touch must be called from a single goroutine.
func (d *debouncer) touch(file string) {
	if t, ok := d.timers[file]; ok {
		t.Reset(d.delay)
		return
	}
	d.timers[file] = time.AfterFunc(d.delay, func() {
		select {
		case d.ready <- file:
		case <-d.done:
		}
	})
}

func (d *debouncer) stop() {
	close(d.done)
	for _, t := range d.timers {
		t.Stop()
	}
}
