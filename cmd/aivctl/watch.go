package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/aiverify/aivctl/cmd/aivctl/internal/styles"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchDebounce collapses the burst of events an editor save produces.
var watchDebounce = 300 * time.Millisecond

// watchRecord validates path once, then again after every change until ctx
// is cancelled. The parent directory is watched because editors often
// replace the file instead of writing it in place.
func watchRecord(ctx context.Context, path string, w io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	report := func() {
		err := validateRecord(path, w)
		if err != nil && !errors.Is(err, errInvalidRecord) {
			fmt.Fprintln(w, styles.ErrorStyle.Render("✗ "+err.Error()))
		}
	}

	report()
	fmt.Fprintln(w, styles.HintStyle.Render("Watching "+path+" (Ctrl+C to stop)"))

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("record changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))

		case <-timer.C:
			fmt.Fprintln(w)
			report()
		}
	}
}
