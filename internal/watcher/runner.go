package watcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/afero"

	"github.com/fsmon/fsmon/internal/fileutil"
	"github.com/fsmon/fsmon/internal/observability"
	"github.com/fsmon/fsmon/internal/waiting"
)

// LogChangesParams are the arguments to LogChanges.
type LogChangesParams struct {
	// Config selects the roots, filters and poll delay.
	Config Config

	// Logger receives loop diagnostics. If unset, logging is discarded.
	Logger *observability.CoreLogger

	// FS is the filesystem to watch and to append the log file to. If
	// unset, the OS filesystem.
	FS afero.Fs

	// Delay overrides Config.PollDelay as the pause between cycles.
	Delay waiting.Delay

	// LogPath, when set, is a file that gets a "<path> was <kind>" line
	// appended for every change. The file is created if absent.
	LogPath string

	// Notify, when set, is invoked with every change event. A panic in
	// it is logged and does not stop the loop.
	Notify func(ChangeEvent)

	// Out receives the printed report. If unset, standard output.
	Out io.Writer
}

// LogChanges polls params.Config.Roots until ctx is canceled, reporting
// every detected change.
//
// For each non-empty batch of changes it prints a "Changes detected at:"
// header followed by one "<path> was <kind>" line per change, appending
// the same lines to params.LogPath and invoking params.Notify when those
// are configured. It returns ctx.Err() once canceled.
func LogChanges(ctx context.Context, params LogChangesParams) error {
	cfg := params.Config.withDefaults()
	if err := cfg.validate(); err != nil {
		return err
	}

	logger := params.Logger
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}
	fsys := params.FS
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	delay := params.Delay
	if delay == nil {
		delay = waiting.NewDelay(cfg.PollDelay)
	}
	out := params.Out
	if out == nil {
		out = os.Stdout
	}

	snapshots := NewSnapshotter(fsys)

	// Baseline snapshots; only changes after this point are reported.
	saved := make([]Snapshot, len(cfg.Roots))
	for i, root := range cfg.Roots {
		snap, err := snapshots.Capture(root, cfg)
		if err != nil {
			logger.CaptureWarn(
				"watcher: failed to scan root",
				"root", root,
				"error", err.Error(),
			)
		}
		saved[i] = snap
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var events []ChangeEvent
		for i, root := range cfg.Roots {
			current, err := snapshots.Capture(root, cfg)
			if err != nil {
				logger.CaptureWarn(
					"watcher: failed to scan root",
					"root", root,
					"error", err.Error(),
				)
			}
			events = append(events, Diff(saved[i], current)...)
			saved[i] = current
		}

		if len(events) > 0 {
			fmt.Fprintf(out, "Changes detected at: %s:\n",
				events[0].Timestamp.Format(time.DateTime))

			for _, event := range events {
				line := fmt.Sprintf("%s was %s", event.Path, event.Kind)

				if params.LogPath != "" {
					if err := fileutil.AppendLine(fsys, params.LogPath, line); err != nil {
						logger.CaptureError(
							fmt.Errorf("watcher: failed to append to change log: %w", err))
					}
				}
				if params.Notify != nil {
					notify(logger, params.Notify, event)
				}

				fmt.Fprintln(out, line)
			}
		}

		wait, cancel := delay.Wait()
		select {
		case <-wait:
			cancel()
		case <-ctx.Done():
			cancel()
			return ctx.Err()
		}
	}
}

// notify invokes fn, absorbing a panic so the report loop keeps running.
func notify(logger *observability.CoreLogger, fn func(ChangeEvent), event ChangeEvent) {
	defer func() {
		if r := recover(); r != nil {
			logger.CaptureError(fmt.Errorf("watcher: notifier panicked: %v", r))
		}
	}()
	fn(event)
}
