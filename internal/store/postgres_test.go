// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quillnotes/quill/internal/store"
	"github.com/quillnotes/quill/pkg/errutil"
)

func TestConnect_InvalidDSN(t *testing.T) {
	pool, err := store.Connect(context.Background(), "not a dsn")
	require.Error(t, err)
	require.Nil(t, pool)
	errutil.AssertErrorCode(t, err, "DB_CONFIG_INVALID")
}
