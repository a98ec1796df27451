// Package webclient downloads remote files over HTTP with retries.
package webclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/spf13/afero"

	"github.com/fsmon/fsmon/internal/fileutil"
	"github.com/fsmon/fsmon/internal/observability"
)

// Params configures a Downloader.
type Params struct {
	// Logger receives retry diagnostics. If unset, logging is discarded.
	Logger *observability.CoreLogger

	// FS is the filesystem downloads are written to. If unset, the OS
	// filesystem.
	FS afero.Fs

	// RetryMax bounds retries per request. If zero, the client's default
	// is kept.
	RetryMax int

	// RetryWaitMin is the minimum pause between retries. If zero, the
	// client's default is kept.
	RetryWaitMin time.Duration
}

// Downloader fetches files over HTTP(S), retrying transient failures.
type Downloader struct {
	client *retryablehttp.Client
	fsys   afero.Fs
	logger *observability.CoreLogger
}

func New(params Params) *Downloader {
	logger := params.Logger
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}
	fsys := params.FS
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	client := retryablehttp.NewClient()
	client.Logger = slog.NewLogLogger(logger.Logger.Handler(), slog.LevelDebug)
	if params.RetryMax > 0 {
		client.RetryMax = params.RetryMax
	}
	if params.RetryWaitMin > 0 {
		client.RetryWaitMin = params.RetryWaitMin
	}

	return &Downloader{client: client, fsys: fsys, logger: logger}
}

// Download fetches url into destPath.
//
// The body is written to a temporary file next to destPath and renamed
// into place once complete, so a partial download never appears at
// destPath. An existing destination is not overwritten.
func (d *Downloader) Download(ctx context.Context, url string, destPath string) error {
	exists, err := fileutil.FileExists(d.fsys, destPath)
	if err != nil {
		return fmt.Errorf("webclient: unable to check destination: %w", err)
	}
	if exists {
		return fmt.Errorf("webclient: destination already exists: %s", destPath)
	}

	if err := d.fsys.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("webclient: unable to create destination directory: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("webclient: invalid request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("webclient: request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			d.logger.CaptureError(
				fmt.Errorf("webclient: error closing response reader: %v", err))
		}
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf(
			"webclient: %q does not exist at the remote (HTTP 404)", url)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf(
			"webclient: unexpected status %d downloading %q",
			resp.StatusCode, url)
	}

	tmp, err := afero.TempFile(d.fsys, filepath.Dir(destPath), ".download-")
	if err != nil {
		return fmt.Errorf("webclient: unable to create temporary file: %w", err)
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = d.fsys.Remove(tmp.Name())
		return fmt.Errorf("webclient: download interrupted: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = d.fsys.Remove(tmp.Name())
		return fmt.Errorf("webclient: unable to finish writing: %w", err)
	}

	if err := d.fsys.Rename(tmp.Name(), destPath); err != nil {
		_ = d.fsys.Remove(tmp.Name())
		return fmt.Errorf("webclient: unable to move download into place: %w", err)
	}

	return nil
}
