// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("quill", "1.2.3", "json", &buf)

	logger.Info("server started", "addr", ":8080")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "server started", entry["msg"])
	assert.Equal(t, "quill", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.Equal(t, ":8080", entry["addr"])
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("quill", "dev", "text", &buf)

	logger.Info("hello")

	out := buf.String()
	assert.Contains(t, out, "msg=hello")
	assert.Contains(t, out, "service=quill")
}

func TestSetup_DefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("quill", "dev", "", &buf)

	logger.Info("hello")

	assert.True(t, strings.HasPrefix(buf.String(), "{"))
}

func TestHandler_AddsTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("quill", "dev", "json", &buf)

	traceID := trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10}
	spanID := trace.SpanID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	logger.InfoContext(ctx, "handled request")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, traceID.String(), entry["trace_id"])
	assert.Equal(t, spanID.String(), entry["span_id"])
}

func TestHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("quill", "dev", "json", &buf)

	logger.With("component", "sweeper").WithGroup("db").Info("swept", "deleted", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "sweeper", entry["component"])
	db, ok := entry["db"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 3, db["deleted"])
}

func TestHandler_EnabledDelegates(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("quill", "dev", "json", &buf)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}
