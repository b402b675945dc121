// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"testing"
	"time"
)

// newTestStore opens an in-memory sqlite store private to the test.
func newTestStore(t *testing.T) *BunStore {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	s, err := Open(TypeSQLite, dsn)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }
