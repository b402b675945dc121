// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRunPrintsBothFormats(t *testing.T) {
	var buf bytes.Buffer
	if err := run(context.Background(), &buf); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"stored 3 comments for 2567698", "--- csv ---", "--- json ---", "读者甲", "\"title\": \"三体\"", "无"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	// Highest vote count comes first.
	if strings.Index(out, "读者甲") > strings.Index(out, "读者乙") {
		t.Fatalf("comments not ordered by votes:\n%s", out)
	}
}
