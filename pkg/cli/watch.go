package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const debounceDelay = 500 * time.Millisecond

func newWatchCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Sync now and again every time the tracker file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runWatch(cmd.Context())
		},
	}
}

func (o *options) runWatch(ctx context.Context) error {
	rt, err := o.setup(ctx, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	path, err := filepath.Abs(rt.cfg.TrackerPath())
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: rewrites replace the file by rename.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	run := func(ctx context.Context) (time.Time, error) {
		report, err := o.syncOnce(ctx, rt)
		var written time.Time
		if report != nil {
			written = report.TrackerWritten
		}
		if err != nil {
			if ctx.Err() != nil {
				return written, ctx.Err()
			}
			slog.Error("sync failed", "err", err)
		}
		return written, nil
	}

	lastWrite, err := run(ctx)
	if err != nil {
		return nil
	}
	slog.Info("watching for changes", "file", path)
	watchLoop(ctx, watcher.Events, watcher.Errors, path, lastWrite, debounceDelay, run)
	return nil
}

// watchLoop calls run once a burst of changes to path has been quiet for
// delay. Runs never overlap. run returns the modification time it left
// path with, zero if it did not write it; events for a file no newer than
// that are the run's own rewrites and are ignored.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, path string, lastWrite time.Time, delay time.Duration, run func(context.Context) (time.Time, error)) {
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if ownWrite(path, lastWrite) {
				continue
			}
			fire = time.After(delay)

		case err, ok := <-errs:
			if !ok {
				return
			}
			slog.Warn("watch error", "err", err)

		case <-fire:
			fire = nil
			written, err := run(ctx)
			if err != nil {
				return
			}
			lastWrite = written
		}
	}
}

// ownWrite reports whether path is unchanged since a run left it at
// lastWrite.
func ownWrite(path string, lastWrite time.Time) bool {
	if lastWrite.IsZero() {
		return false
	}
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !fi.ModTime().After(lastWrite)
}
