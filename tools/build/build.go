// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/toeirei/douban-comment/internal/platform"
)

const (
	binaryName   = "douban-comment"
	buildvarsPkg = "github.com/toeirei/douban-comment/buildvars"
)

// runner executes one external command.
type runner func(ctx context.Context, env []string, name string, args ...string) error

type options struct {
	Targets []string
	Dist    string
	Clean   bool
	Version string
	Commit  string
	Now     func() time.Time
}

func ldflags(o options) string {
	parts := []string{"-s", "-w"}
	if o.Version != "" {
		parts = append(parts, "-X", buildvarsPkg+".Version="+o.Version)
	}
	if o.Commit != "" {
		parts = append(parts, "-X", buildvarsPkg+".Commit="+o.Commit)
	}
	parts = append(parts, "-X", buildvarsPkg+".BuildDate="+o.Now().UTC().Format(time.RFC3339))
	return strings.Join(parts, " ")
}

func targets(o options) ([]platform.Platform, error) {
	if len(o.Targets) == 0 {
		return []platform.Platform{platform.Host()}, nil
	}
	out := make([]platform.Platform, 0, len(o.Targets))
	for _, t := range o.Targets {
		p, err := platform.Parse(t)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// build compiles one binary per target and returns their paths. It stops
// at the first failing target.
func build(ctx context.Context, o options, run runner, w io.Writer) ([]string, error) {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Dist == "" {
		o.Dist = "dist"
	}
	plats, err := targets(o)
	if err != nil {
		return nil, err
	}
	if o.Clean {
		if err := os.RemoveAll(o.Dist); err != nil {
			return nil, fmt.Errorf("clean %s: %w", o.Dist, err)
		}
	}

	flags := ldflags(o)
	var built []string
	for _, p := range plats {
		dir := filepath.Join(o.Dist, p.String())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return built, err
		}
		out := filepath.Join(dir, p.ExecutableName(binaryName))
		fmt.Fprintf(w, "building %s (%s/%s)\n", p, p.GOOS, p.GOARCH)
		env := []string{"GOOS=" + p.GOOS, "GOARCH=" + p.GOARCH, "CGO_ENABLED=0"}
		if err := run(ctx, env, "go", "build", "-trimpath", "-ldflags", flags, "-o", out, "."); err != nil {
			return built, fmt.Errorf("%s: %w", p, err)
		}
		fmt.Fprintf(w, "  -> %s\n", out)
		built = append(built, out)
	}
	return built, nil
}
