// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for douban-comment.
//
// Usage:
//
//	go run . <subject-id> [flags]
//	./douban-comment crawl <subject-id>... [flags]
//
// See --help for all commands and options.
package main

import (
	"os"

	"github.com/toeirei/douban-comment/internal/logging"
	"github.com/toeirei/douban-comment/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}
}
