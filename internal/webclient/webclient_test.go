package webclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsmon/fsmon/internal/fileutil"
	"github.com/fsmon/fsmon/internal/webclient"
)

func TestDownloader(t *testing.T) {
	t.Run("downloads into place atomically", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("roots:\n  - /var/data\n"))
			}))
		defer server.Close()

		fsys := afero.NewMemMapFs()
		d := webclient.New(webclient.Params{FS: fsys})

		err := d.Download(context.Background(), server.URL, "/cfg/fsmon.yaml")

		require.NoError(t, err)
		data, err := afero.ReadFile(fsys, "/cfg/fsmon.yaml")
		require.NoError(t, err)
		assert.Equal(t, "roots:\n  - /var/data\n", string(data))

		// The temporary file was renamed away, not left behind.
		entries, err := afero.ReadDir(fsys, "/cfg")
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("refuses to overwrite an existing destination", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
			}))
		defer server.Close()

		fsys := afero.NewMemMapFs()
		require.NoError(t,
			afero.WriteFile(fsys, "/cfg/fsmon.yaml", []byte("old"), 0o644))

		d := webclient.New(webclient.Params{FS: fsys})
		err := d.Download(context.Background(), server.URL, "/cfg/fsmon.yaml")

		assert.ErrorContains(t, err, "already exists")
		assert.Zero(t, hits.Load())

		data, readErr := afero.ReadFile(fsys, "/cfg/fsmon.yaml")
		require.NoError(t, readErr)
		assert.Equal(t, "old", string(data))
	})

	t.Run("fails for a missing remote file", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			}))
		defer server.Close()

		fsys := afero.NewMemMapFs()
		d := webclient.New(webclient.Params{FS: fsys})

		err := d.Download(context.Background(), server.URL, "/cfg/fsmon.yaml")

		assert.ErrorContains(t, err, "404")

		exists, statErr := fileutil.FileExists(fsys, "/cfg/fsmon.yaml")
		require.NoError(t, statErr)
		assert.False(t, exists)
	})

	t.Run("fails for an unexpected status", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			}))
		defer server.Close()

		fsys := afero.NewMemMapFs()
		d := webclient.New(webclient.Params{FS: fsys})

		err := d.Download(context.Background(), server.URL, "/cfg/fsmon.yaml")

		assert.ErrorContains(t, err, "unexpected status 403")
	})

	t.Run("retries transient errors before giving up", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(http.StatusInternalServerError)
			}))
		defer server.Close()

		fsys := afero.NewMemMapFs()
		d := webclient.New(webclient.Params{
			FS:           fsys,
			RetryMax:     1,
			RetryWaitMin: time.Millisecond,
		})

		err := d.Download(context.Background(), server.URL, "/cfg/fsmon.yaml")

		assert.ErrorContains(t, err, "request failed")
		assert.Equal(t, int32(2), hits.Load())
	})
}
