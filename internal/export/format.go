// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package export

import (
	"fmt"
	"strings"
)

// Format is an output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// ParseFormat accepts "csv" or "json" in any case; empty means CSV.
func ParseFormat(v string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(v))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported output format %q (want csv or json)", v)
}

// Compression wraps the encoded output.
type Compression string

const (
	CompressNone Compression = "none"
	CompressZstd Compression = "zstd"
)

// Ext returns ".zst" for zstd and "" otherwise.
func (c Compression) Ext() string {
	if c == CompressZstd {
		return ".zst"
	}
	return ""
}

// ParseCompression accepts "none"/"" or "zstd"/"zst".
func ParseCompression(v string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "none", "off":
		return CompressNone, nil
	case "zstd", "zst":
		return CompressZstd, nil
	}
	return "", fmt.Errorf("unsupported compression %q (want none or zstd)", v)
}
