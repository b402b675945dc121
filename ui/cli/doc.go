// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

// Package cli implements the douban-comment command line using cobra.
//
// Running the binary with subject ids is the same as `douban-comment crawl`.
// Subcommands cover inspecting a book (info), working with the optional
// database (export, browse, db) and diagnostics (version, debug).
package cli
