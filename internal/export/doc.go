// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

// Package export writes crawled comments to disk as CSV or JSON, optionally
// zstd-compressed, one file per book and reading status.
package export
