// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

// Package platform maps Go's GOOS/GOARCH pairs onto the release naming used
// for the dist/ layout, e.g. darwin/arm64 -> macos-arm64.
package platform

import (
	"fmt"
	"runtime"
	"strings"
)

// Platform is a normalised build target.
type Platform struct {
	OS   string // macos, windows, linux, ...
	Arch string // x64, arm64, arm32, x86, ...

	// GOOS and GOARCH are the toolchain values the platform was derived from.
	GOOS   string
	GOARCH string
}

var archNames = map[string]string{
	"x86_64":  "x64",
	"amd64":   "x64",
	"aarch64": "arm64",
	"arm64":   "arm64",
	"armv7l":  "arm32",
	"arm":     "arm32",
	"armv8l":  "arm64",
	"i386":    "x86",
	"i686":    "x86",
	"386":     "x86",
}

var osNames = map[string]string{
	"darwin":  "macos",
	"windows": "windows",
	"linux":   "linux",
}

// NormalizeArch returns the release name for a machine or GOARCH string.
// Unknown values are lower-cased and passed through.
func NormalizeArch(machine string) string {
	m := strings.ToLower(machine)
	if n, ok := archNames[m]; ok {
		return n
	}
	return m
}

// NormalizeOS returns the release name for an OS or GOOS string.
func NormalizeOS(system string) string {
	s := strings.ToLower(system)
	if n, ok := osNames[s]; ok {
		return n
	}
	return s
}

// Normalize builds a Platform from a GOOS/GOARCH pair.
func Normalize(goos, goarch string) Platform {
	return Platform{
		OS:     NormalizeOS(goos),
		Arch:   NormalizeArch(goarch),
		GOOS:   goos,
		GOARCH: goarch,
	}
}

// Host returns the platform of the running binary.
func Host() Platform {
	return Normalize(runtime.GOOS, runtime.GOARCH)
}

// Parse reads a "goos/goarch" target as accepted by `go tool dist list`.
func Parse(target string) (Platform, error) {
	goos, goarch, ok := strings.Cut(strings.TrimSpace(target), "/")
	if !ok || goos == "" || goarch == "" {
		return Platform{}, fmt.Errorf("invalid target %q, expected goos/goarch", target)
	}
	return Normalize(goos, goarch), nil
}

// String returns the dist directory name, "<os>-<arch>".
func (p Platform) String() string {
	return p.OS + "-" + p.Arch
}

// IsWindows reports whether executables for p need the .exe suffix.
func (p Platform) IsWindows() bool {
	return p.GOOS == "windows" || p.OS == "windows"
}

// ExecutableName appends the platform's executable suffix to base.
func (p Platform) ExecutableName(base string) string {
	if p.IsWindows() {
		return base + ".exe"
	}
	return base
}
