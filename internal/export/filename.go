// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/toeirei/douban-comment/internal/model"
)

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFilename replaces characters that are invalid in file names on
// common filesystems with '_' and trims surrounding spaces and dots.
func SanitizeFilename(s string) string {
	s = invalidFilenameChars.ReplaceAllString(s, "_")
	return strings.Trim(s, " .")
}

// timestampLayout renders as YYYYMMDD_HHMMSS.
const timestampLayout = "20060102_150405"

// FileName returns "<title>_<author>_<label>评论_<timestamp>.<ext>".
func FileName(book model.Book, status model.Status, now time.Time, format Format, compression Compression) string {
	title := SanitizeFilename(book.Title)
	if title == "" {
		title = book.SubjectID
	}
	author := SanitizeFilename(book.Author)
	name := fmt.Sprintf("%s_%s_%s评论_%s", title, author, status.Label(), now.Format(timestampLayout))
	return name + format.Ext() + compression.Ext()
}
