// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/toeirei/douban-comment/internal/logging"
	"github.com/toeirei/douban-comment/internal/model"
)

// DefaultOutputDir is used when no output directory is configured.
const DefaultOutputDir = "./output"

// Saver writes each crawl result to its own file under Dir.
type Saver struct {
	Dir         string
	Format      Format
	Compression Compression

	// OnSaved is called after a file has been written.
	OnSaved func(path string, res model.CrawlResult)

	Now func() time.Time
}

// Save implements the crawler's sink. Empty results produce no file.
func (s *Saver) Save(_ context.Context, res model.CrawlResult) error {
	if len(res.Comments) == 0 {
		logging.Debugf("no comments for %s/%s, nothing written", res.Book.SubjectID, res.Status)
		return nil
	}
	path, err := s.Write(res.Book, res.Status, res.Comments)
	if err != nil {
		return err
	}
	if s.OnSaved != nil {
		s.OnSaved(path, res)
	}
	return nil
}

// Write stores comments for one book/status and returns the file path.
func (s *Saver) Write(book model.Book, status model.Status, comments []model.Comment) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = DefaultOutputDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create output directory %s: %w", dir, err)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	format := s.Format
	if format == "" {
		format = FormatCSV
	}
	path := filepath.Join(dir, FileName(book, status, now(), format, s.Compression))
	if err := WriteFile(path, format, s.Compression, book, status, comments); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	logging.Debugf("wrote %d comments to %s", len(comments), path)
	return path, nil
}
