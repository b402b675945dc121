// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package douban

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/toeirei/douban-comment/internal/logging"
	"github.com/toeirei/douban-comment/internal/model"
)

// DefaultAnonymousLimit caps each tab for logged-out sessions.
const DefaultAnonymousLimit = 100

// defaultMaxStalePages bounds how many consecutive pages may add nothing new
// before a tab is abandoned.
const defaultMaxStalePages = 3

// Sink receives every finished tab, including empty ones.
type Sink interface {
	Save(ctx context.Context, res model.CrawlResult) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, res model.CrawlResult) error

// Save calls f.
func (f SinkFunc) Save(ctx context.Context, res model.CrawlResult) error { return f(ctx, res) }

// MultiSink saves to each sink in order and stops at the first error.
type MultiSink []Sink

// Save implements Sink.
func (m MultiSink) Save(ctx context.Context, res model.CrawlResult) error {
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Save(ctx, res); err != nil {
			return err
		}
	}
	return nil
}

// PageEvent describes one fetched page.
type PageEvent struct {
	SubjectID string
	Status    model.Status
	Page      int
	Start     int
	Parsed    int
	Added     int
	Total     int
}

// Observer is notified as a crawl progresses. Embed NopObserver to
// implement only some of the callbacks.
type Observer interface {
	BookLoaded(book model.Book)
	CountsLoaded(book model.Book, counts model.CommentCounts)
	StatusStarted(book model.Book, status model.Status, count, limit int)
	PageFetched(ev PageEvent)
	StatusFinished(res model.CrawlResult, err error)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) BookLoaded(model.Book)                            {}
func (NopObserver) CountsLoaded(model.Book, model.CommentCounts)     {}
func (NopObserver) StatusStarted(model.Book, model.Status, int, int) {}
func (NopObserver) PageFetched(PageEvent)                            {}
func (NopObserver) StatusFinished(model.CrawlResult, error)          {}

// Crawler crawls every requested tab of a book.
type Crawler struct {
	Client *Client

	// Statuses to crawl, in order. Empty means all tabs.
	Statuses []model.Status
	Sort     string

	// AnonymousLimit caps each tab when the client has no cookies.
	AnonymousLimit int
	MaxStalePages  int

	Sink     Sink
	Observer Observer

	now func() time.Time
}

// Summary is the outcome of Crawler.Run.
type Summary struct {
	Book    model.Book
	Counts  model.CommentCounts
	Results []model.CrawlResult
	// Errors holds per-tab failures; their partial results are in Results.
	Errors []error
}

// Total returns the number of comments collected across tabs.
func (s Summary) Total() int {
	n := 0
	for _, r := range s.Results {
		n += len(r.Comments)
	}
	return n
}

func (c *Crawler) observer() Observer {
	if c.Observer == nil {
		return NopObserver{}
	}
	return c.Observer
}

func (c *Crawler) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func (c *Crawler) statuses() []model.Status {
	if len(c.Statuses) == 0 {
		return model.AllStatuses
	}
	return c.Statuses
}

// Limit returns how many comments to request for a tab showing count.
// Logged-in sessions take everything; anonymous ones are capped.
func (c *Crawler) Limit(count int) int {
	if count < 0 {
		return 0
	}
	if c.Client != nil && c.Client.LoggedIn() {
		return count
	}
	limit := c.AnonymousLimit
	if limit <= 0 {
		limit = DefaultAnonymousLimit
	}
	return min(count, limit)
}

// Run fetches the book, its tab counts and then every requested tab that
// the page lists. Book and count failures abort the run; a failing tab is
// recorded in Summary.Errors and the run moves on, unless ctx is done.
func (c *Crawler) Run(ctx context.Context, subjectID string) (Summary, error) {
	obs := c.observer()
	summary := Summary{}

	book, err := c.Client.FetchBookInfo(ctx, subjectID)
	if err != nil {
		return summary, err
	}
	summary.Book = book
	obs.BookLoaded(book)

	counts, err := c.Client.FetchCommentCounts(ctx, subjectID)
	if err != nil {
		return summary, err
	}
	summary.Counts = counts
	obs.CountsLoaded(book, counts)

	for _, status := range c.statuses() {
		count, ok := counts[status]
		if !ok {
			logging.Debugf("subject %s: no %s tab on page, skipping", subjectID, status)
			continue
		}
		limit := c.Limit(count)
		obs.StatusStarted(book, status, count, limit)

		res, err := c.CrawlStatus(ctx, book, status, limit)
		obs.StatusFinished(res, err)
		summary.Results = append(summary.Results, res)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Errorf("%s %s: %w", subjectID, status, err))
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
		}

		if c.Sink != nil {
			if err := c.Sink.Save(ctx, res); err != nil {
				return summary, fmt.Errorf("save %s %s: %w", subjectID, status, err)
			}
		}
	}
	return summary, nil
}

// CrawlStatus pages through one tab until limit distinct comments have been
// collected or the endpoint runs dry. Comments are deduplicated by ID, first
// seen wins. On error the partial result is returned alongside it.
func (c *Crawler) CrawlStatus(ctx context.Context, book model.Book, status model.Status, limit int) (model.CrawlResult, error) {
	res := model.CrawlResult{
		Book:      book,
		Status:    status,
		Requested: limit,
		StartedAt: c.clock(),
	}
	finish := func(reason model.StopReason) {
		res.StopReason = reason
		res.FinishedAt = c.clock()
	}

	maxStale := c.MaxStalePages
	if maxStale <= 0 {
		maxStale = defaultMaxStalePages
	}

	seen := make(map[string]struct{})
	start, stale := 0, 0
	for len(res.Comments) < limit {
		if err := ctx.Err(); err != nil {
			finish(model.StopCanceled)
			return res, err
		}
		page := start/PageSize + 1

		resp, err := c.Client.FetchCommentsPage(ctx, PageQuery{
			SubjectID: book.SubjectID,
			Status:    status,
			Start:     start,
			Sort:      c.Sort,
		})
		if err != nil {
			switch {
			case ctx.Err() != nil:
				finish(model.StopCanceled)
			case errors.Is(err, ErrRejected):
				finish(model.StopRejected)
			default:
				finish(model.StopError)
			}
			return res, fmt.Errorf("page %d (start=%d): %w", page, start, err)
		}
		res.Pages++

		if strings.TrimSpace(resp.HTML) == "" {
			finish(model.StopEmpty)
			return res, nil
		}
		comments, err := ParseComments(resp.HTML)
		if err != nil {
			finish(model.StopError)
			return res, fmt.Errorf("page %d (start=%d): %w", page, start, err)
		}
		if len(comments) == 0 {
			finish(model.StopNoResults)
			return res, nil
		}

		added := 0
		for _, cm := range comments {
			if _, dup := seen[cm.ID]; dup {
				continue
			}
			seen[cm.ID] = struct{}{}
			cm.Status = status
			res.Comments = append(res.Comments, cm)
			added++
		}
		c.observer().PageFetched(PageEvent{
			SubjectID: book.SubjectID,
			Status:    status,
			Page:      page,
			Start:     start,
			Parsed:    len(comments),
			Added:     added,
			Total:     len(res.Comments),
		})

		if added == 0 {
			stale++
			if stale >= maxStale {
				finish(model.StopStale)
				return res, nil
			}
		} else {
			stale = 0
		}

		// A short page advances by what it held so nothing is skipped.
		if len(comments) < PageSize {
			start += len(comments)
		} else {
			start += PageSize
		}
	}

	if len(res.Comments) > limit {
		res.Comments = res.Comments[:limit]
	}
	finish(model.StopLimit)
	return res, nil
}
