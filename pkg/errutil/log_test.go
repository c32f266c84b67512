// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package errutil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillnotes/quill/pkg/errutil"
)

func decodeLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogError_OopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("SESSION_CREATE_FAILED").
		With("user_id", "01HZN3XS000000000000000001").
		Errorf("insert failed")

	errutil.LogError(logger, "create session", err)

	entry := decodeLogLine(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "create session", entry["msg"])
	assert.Equal(t, "SESSION_CREATE_FAILED", entry["code"])
	assert.Contains(t, entry, "context")
}

func TestLogError_PlainError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogError(logger, "sweep failed", errors.New("connection refused"))

	entry := decodeLogLine(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Contains(t, entry["error"], "connection refused")
	assert.NotContains(t, entry, "code")
}

func TestLogWarn_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogWarn(logger, "best-effort delete failed", errors.New("gone"))

	entry := decodeLogLine(t, &buf)
	assert.Equal(t, "WARN", entry["level"])
}
