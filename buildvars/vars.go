// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

// Package buildvars holds values stamped into the binary by tools/build.
package buildvars

// Set at link time via
// `-ldflags -X github.com/toeirei/douban-comment/buildvars.Version=...`.
// All three are empty for `go run` and plain `go build`.
var (
	Version   string
	Commit    string
	BuildDate string
)

// VersionOrDefault returns Version if set, otherwise def.
func VersionOrDefault(def string) string {
	if len(Version) > 0 {
		return Version
	}
	return def
}
