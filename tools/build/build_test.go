// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type call struct {
	env  []string
	args []string
}

func recorder(calls *[]call, fail string) runner {
	return func(_ context.Context, env []string, name string, args ...string) error {
		*calls = append(*calls, call{env: env, args: append([]string{name}, args...)})
		for _, e := range env {
			if e == "GOOS="+fail {
				return errors.New("exit status 1")
			}
		}
		return nil
	}
}

func fixedNow() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

func TestBuild_Targets(t *testing.T) {
	dist := filepath.Join(t.TempDir(), "dist")
	var calls []call
	var out bytes.Buffer
	built, err := build(context.Background(), options{
		Targets: []string{"linux/amd64", "windows/arm64"},
		Dist:    dist,
		Version: "v1.0.0",
		Commit:  "abc",
		Now:     fixedNow,
	}, recorder(&calls, ""), &out)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := []string{
		filepath.Join(dist, "linux-x64", "douban-comment"),
		filepath.Join(dist, "windows-arm64", "douban-comment.exe"),
	}
	if strings.Join(built, "|") != strings.Join(want, "|") {
		t.Fatalf("built = %v, want %v", built, want)
	}
	if len(calls) != 2 {
		t.Fatalf("got %d go invocations", len(calls))
	}
	args := strings.Join(calls[0].args, " ")
	for _, frag := range []string{"go build -trimpath", "buildvars.Version=v1.0.0", "buildvars.Commit=abc", "buildvars.BuildDate=2026-03-04T05:06:07Z", "-o " + want[0]} {
		if !strings.Contains(args, frag) {
			t.Fatalf("args %q missing %q", args, frag)
		}
	}
	if strings.Join(calls[1].env, " ") != "GOOS=windows GOARCH=arm64 CGO_ENABLED=0" {
		t.Fatalf("env = %v", calls[1].env)
	}
}

func TestBuild_StopsOnFailure(t *testing.T) {
	var calls []call
	built, err := build(context.Background(), options{
		Targets: []string{"linux/amd64", "darwin/arm64", "windows/amd64"},
		Dist:    t.TempDir(),
		Now:     fixedNow,
	}, recorder(&calls, "darwin"), &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "macos-arm64") {
		t.Fatalf("err = %v", err)
	}
	if len(built) != 1 || len(calls) != 2 {
		t.Fatalf("built %v after %d calls", built, len(calls))
	}
}

func TestBuild_InvalidTarget(t *testing.T) {
	var calls []call
	if _, err := build(context.Background(), options{Targets: []string{"linux"}}, recorder(&calls, ""), &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error")
	}
	if len(calls) != 0 {
		t.Fatalf("nothing should run for an invalid target")
	}
}

func TestBuild_Clean(t *testing.T) {
	dist := filepath.Join(t.TempDir(), "dist")
	stale := filepath.Join(dist, "old", "douban-comment")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("x"), 0o755); err != nil {
		t.Fatal(err)
	}
	var calls []call
	if _, err := build(context.Background(), options{Dist: dist, Clean: true, Now: fixedNow}, recorder(&calls, ""), &bytes.Buffer{}); err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale artifact survived --clean")
	}
}

func TestRootCmd_RepeatableTarget(t *testing.T) {
	var calls []call
	cmd := newRootCmd(recorder(&calls, ""))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--target", "linux/arm64", "--target", "linux/386", "--dist", t.TempDir()})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("got %d builds, want 2", len(calls))
	}
}
