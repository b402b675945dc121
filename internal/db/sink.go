// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"

	"github.com/toeirei/douban-comment/internal/model"
)

// Sink stores crawl results. It satisfies the crawler's sink interface.
type Sink struct {
	Store Store
	// OnSaved is called with the number of comments that were new.
	OnSaved func(res model.CrawlResult, added int)
}

// Save records the book, the comments and the run. Runs that fetched
// nothing are still recorded.
func (s *Sink) Save(ctx context.Context, res model.CrawlResult) error {
	if err := s.Store.SaveBook(ctx, res.Book); err != nil {
		return fmt.Errorf("save book %s: %w", res.Book.SubjectID, err)
	}
	added, err := s.Store.SaveComments(ctx, res.Book.SubjectID, res.Status, res.Comments)
	if err != nil {
		return fmt.Errorf("save comments %s/%s: %w", res.Book.SubjectID, res.Status, err)
	}
	if _, err := s.Store.RecordRun(ctx, res.Run()); err != nil {
		return fmt.Errorf("record run %s/%s: %w", res.Book.SubjectID, res.Status, err)
	}
	if s.OnSaved != nil {
		s.OnSaved(res, added)
	}
	return nil
}
