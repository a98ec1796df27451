// Package sentryext reports errors to Sentry, dropping duplicates.
package sentryext

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

type Params struct {
	// Disabled turns the client into a no-op regardless of the DSN.
	Disabled bool
	// DSN is the Data Source Name for the sentry client
	DSN string
	// AttachStacktrace is a flag to attach stacktrace to the sentry event
	AttachStacktrace bool
	// Release is the version of the application
	Release string
	// Commit is the git commit hash
	Commit string
	// Environment is the environment the application is running in
	Environment string
	// BeforeSend is a callback to modify the event before sending it to sentry
	BeforeSend func(*sentry.Event, *sentry.EventHint) *sentry.Event
	// LRUSize is the size of the LRU cache
	LRUSize int
}

type Client struct {
	// Recent is the cache of recent errors sent to sentry to avoid sending
	// the same error multiple times
	Recent *cache
}

// New initializes the sentry client.
//
// If the DSN is not set or the client is disabled, the client is effectively
// disabled and will not send any errors to sentry.
// If we can't create the cache, we will log an error and return nil.
func New(params Params) *Client {
	if params.Disabled {
		params.DSN = ""
	}
	if params.BeforeSend == nil {
		params.BeforeSend = RemoveBottomFrames
	}

	if err := sentry.Init(
		sentry.ClientOptions{
			Dsn:              params.DSN,
			AttachStacktrace: params.AttachStacktrace,
			Release:          params.Release,
			Dist:             params.Commit,
			BeforeSend:       params.BeforeSend,
			Environment:      params.Environment,
		}); err != nil {
		slog.Error("sentryext: New: failed to initialize sentry", "err", err)
	}

	if params.DSN == "" {
		slog.Debug("sentryext: New: sentry is disabled, no DSN provided")
	} else {
		slog.Debug("sentryext: New: sentry is enabled", "dsn", params.DSN)
	}

	cache, err := newCache(params.LRUSize)
	if err != nil {
		slog.Error("sentryext: New: failed to create cache", "err", err)
		return nil
	}

	return &Client{
		Recent: cache,
	}
}

// CaptureException captures an error and sends it to sentry.
//
// The error is sent as an error level event, enriched with the tags provided.
func (s *Client) CaptureException(err error, tags map[string]string) {
	if !s.Recent.shouldCapture(err) {
		return
	}

	localHub := sentry.CurrentHub().Clone()
	localHub.ConfigureScope(
		func(scope *sentry.Scope) {
			scope.SetTags(tags)
		},
	)
	localHub.CaptureException(err)
}

// CaptureMessage captures a message and sends it to sentry.
//
// Used for capturing non-error messages. The message is sent as an info
// level event, enriched with the tags provided.
func (s *Client) CaptureMessage(msg string, tags map[string]string) {
	if !s.Recent.shouldCapture(errors.New(msg)) {
		return
	}

	localHub := sentry.CurrentHub().Clone()
	localHub.ConfigureScope(
		func(scope *sentry.Scope) {
			scope.SetTags(tags)
		},
	)
	localHub.CaptureMessage(msg)
}

// Flush flushes the sentry client.
func (s *Client) Flush(timeout time.Duration) bool {
	hub := sentry.CurrentHub()
	return hub.Flush(timeout)
}

// RemoveBottomFrames modifies the stack trace by checking the file name of
// the bottom-most 3 frames and removing them if they are internal to this
// package or the logging wrapper.
func RemoveBottomFrames(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	for i, exception := range event.Exception {
		if exception.Stacktrace == nil {
			continue
		}
		frames := exception.Stacktrace.Frames
		framesLen := len(frames)
		// for recovered panics, the bottom-most frames of the stacktrace
		// come from client.go and logging.go, so we remove them
		if framesLen < 3 {
			continue
		}
		for j := framesLen - 1; j >= framesLen-3; j-- {
			frame := frames[j]
			if strings.HasSuffix(frame.AbsPath, "client.go") || strings.HasSuffix(frame.AbsPath, "logging.go") {
				frames = frames[:j]
			} else {
				break
			}
		}
		event.Exception[i].Stacktrace.Frames = frames
	}
	return event
}
