// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLint(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ui", "a.go"), `package ui
func f(r string) {
	_ = i18n.T("cli.root.short")
	_ = i18n.T("crawl.saved", 1, "x")
	_ = i18n.T("reason." + r)
	_ = i18n.T("not.translated")
}`)
	writeFile(t, filepath.Join(root, "ui", "a_test.go"), `package ui
var _ = i18n.T("test.only")`)
	writeFile(t, filepath.Join(root, "_examples", "x.go"), `package x
var _ = i18n.T("ignored.key")`)
	writeFile(t, filepath.Join(root, localesDir, "zh.yaml"), `cli.root.short: "a"
crawl.saved: "b"
reason.limit: "c"
unused.key: "d"
`)
	writeFile(t, filepath.Join(root, localesDir, "en.yaml"), `cli:
  root:
    short: "a"
crawl.saved: "b"
`)

	r, err := lint(root, "zh.yaml")
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if strings.Join(r.Missing, ",") != "not.translated" {
		t.Fatalf("missing = %v", r.Missing)
	}
	if strings.Join(r.Orphaned, ",") != "unused.key" {
		t.Fatalf("orphaned = %v", r.Orphaned)
	}
	if got := strings.Join(r.Gaps["en.yaml"], ","); got != "reason.limit,unused.key" {
		t.Fatalf("en gaps = %q", got)
	}
	if _, ok := r.Used["test.only"]; ok {
		t.Fatalf("test files must not count")
	}
	if _, ok := r.Used["ignored.key"]; ok {
		t.Fatalf("underscore directories must be skipped")
	}
	if !r.failed() {
		t.Fatalf("expected failure")
	}

	var out bytes.Buffer
	printReport(&out, r)
	if !strings.Contains(out.String(), "Missing from en.yaml") {
		t.Fatalf("report:\n%s", out.String())
	}
}

func TestLint_Clean(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), `package a
var _ = i18n.T("a.b")`)
	writeFile(t, filepath.Join(root, localesDir, "zh.yaml"), "a.b: x\n")
	writeFile(t, filepath.Join(root, localesDir, "en.yaml"), "a.b: y\n")
	r, err := lint(root, "zh.yaml")
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if r.failed() || len(r.Orphaned) != 0 {
		t.Fatalf("unexpected findings: %+v", r)
	}
}
