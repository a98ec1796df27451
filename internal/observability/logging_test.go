package observability_test

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fsmon/fsmon/internal/observability"
)

func TestNewTags(t *testing.T) {
	testCases := []struct {
		name   string
		input  []interface{}
		expect observability.Tags
	}{
		{
			name:   "Tags from slog.Attr",
			input:  []interface{}{slog.Attr{Key: "key1", Value: slog.Int64Value(123)}},
			expect: observability.Tags{"key1": "123"},
		},
		{
			name:   "Tags from string and int",
			input:  []interface{}{"key2", 456},
			expect: observability.Tags{"key2": "456"},
		},
		{
			name: "Tags from a mix of slog.Attr, string, and int",
			input: []interface{}{
				slog.Attr{Key: "key3", Value: slog.StringValue("value3")},
				"key4",
				789,
				slog.Any("key5", "value5"),
			},
			expect: observability.Tags{"key3": "value3", "key4": "789", "key5": "value5"},
		},
		{
			name:   "Tags from slog.Attr and an incomplete pair",
			input:  []interface{}{slog.Attr{Key: "key6", Value: slog.Int64Value(123)}, "key7"},
			expect: observability.Tags{"key6": "123"},
		},
		{
			name:   "Tags from empty input",
			input:  []interface{}{},
			expect: observability.Tags{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tags := observability.NewTags(tc.input...)
			assert.Equal(t, tc.expect, tags)
		})
	}
}

func TestCoreLoggerWritesThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	logger := observability.NewCoreLogger(
		slog.New(slog.NewJSONHandler(&buf, nil)),
		&observability.CoreLoggerParams{
			Tags: observability.Tags{"service": "test"},
		},
	)

	logger.CaptureError(errors.New("something failed"), "path", "/w/a.txt")

	out := buf.String()
	assert.Contains(t, out, "something failed")
	assert.Contains(t, out, `"path":"/w/a.txt"`)
	assert.Contains(t, out, `"service":"test"`)
}

func TestWithKeepsBaseTags(t *testing.T) {
	logger := observability.NewCoreLogger(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		&observability.CoreLoggerParams{
			Tags: observability.Tags{"a": "1"},
		},
	)

	derived := logger.With("b", "2")

	assert.Equal(t, observability.Tags{"a": "1"}, derived.GetTags())
}

func TestNoOpLogger(t *testing.T) {
	logger := observability.NewNoOpLogger()

	// Capture methods must be safe without a sentry client.
	logger.CaptureError(errors.New("ignored"))
	logger.CaptureWarn("ignored")

	assert.NotNil(t, logger)
	assert.Empty(t, logger.GetTags())
}
