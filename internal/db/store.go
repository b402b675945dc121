// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"strings"
	"time"

	"github.com/toeirei/douban-comment/internal/model"
	"github.com/uptrace/bun"
)

// Store defines the persistence operations used by the CLI.
type Store interface {
	SaveBook(ctx context.Context, book model.Book) error
	GetBook(ctx context.Context, subjectID string) (*model.Book, error)
	ListBooks(ctx context.Context) ([]BookSummary, error)

	// SaveComments upserts comments by id and returns how many were new.
	SaveComments(ctx context.Context, subjectID string, status model.Status, comments []model.Comment) (int, error)
	ListComments(ctx context.Context, filter CommentFilter) ([]model.Comment, error)
	CountComments(ctx context.Context, subjectID string) (model.CommentCounts, error)

	RecordRun(ctx context.Context, run model.CrawlRun) (int64, error)
	ListRuns(ctx context.Context, subjectID string, limit int) ([]model.CrawlRun, error)

	Close() error
}

// BookSummary is a stored book with the number of stored comments.
type BookSummary struct {
	model.Book
	Comments  int
	UpdatedAt time.Time
}

// CommentFilter narrows ListComments. Zero fields match everything.
type CommentFilter struct {
	SubjectID string
	Status    model.Status
	// Query is split into tokens; every token must match the content or
	// the user name, case-insensitively.
	Query  string
	Limit  int
	Offset int
}

// BunStore implements Store on top of bun for all supported dialects.
type BunStore struct {
	bun    *bun.DB
	dbType string
	now    func() time.Time
}

var _ Store = (*BunStore)(nil)

// Type returns the database type the store was opened with.
func (s *BunStore) Type() string { return s.dbType }

// BunDB exposes the underlying *bun.DB for maintenance and tests.
func (s *BunStore) BunDB() *bun.DB { return s.bun }

func (s *BunStore) timestamp() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}

// Close releases the underlying connection pool.
func (s *BunStore) Close() error {
	return s.bun.Close()
}

// SaveBook inserts the book or updates its title and author.
func (s *BunStore) SaveBook(ctx context.Context, book model.Book) error {
	bm := &BookModel{SubjectID: book.SubjectID, Title: book.Title, Author: book.Author, UpdatedAt: s.timestamp()}
	return s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*BookModel)(nil)).Where("subject_id = ?", book.SubjectID).Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			_, err = tx.NewUpdate().Model(bm).WherePK().Exec(ctx)
		} else {
			_, err = tx.NewInsert().Model(bm).Exec(ctx)
		}
		return MapDBError(err)
	})
}

// GetBook returns the stored book or ErrNotFound.
func (s *BunStore) GetBook(ctx context.Context, subjectID string) (*model.Book, error) {
	var bm BookModel
	if err := s.bun.NewSelect().Model(&bm).Where("subject_id = ?", subjectID).Limit(1).Scan(ctx); err != nil {
		return nil, MapDBError(err)
	}
	b := bookModelToModel(bm)
	return &b, nil
}

// ListBooks returns every stored book, most recently updated first.
func (s *BunStore) ListBooks(ctx context.Context) ([]BookSummary, error) {
	var bms []BookModel
	if err := s.bun.NewSelect().Model(&bms).OrderExpr("updated_at DESC, subject_id").Scan(ctx); err != nil {
		return nil, err
	}
	var counts []struct {
		SubjectID string `bun:"subject_id"`
		N         int    `bun:"n"`
	}
	if err := s.bun.NewSelect().Model((*CommentModel)(nil)).
		Column("subject_id").ColumnExpr("COUNT(*) AS n").
		Group("subject_id").Scan(ctx, &counts); err != nil {
		return nil, err
	}
	bySubject := make(map[string]int, len(counts))
	for _, c := range counts {
		bySubject[c.SubjectID] = c.N
	}
	out := make([]BookSummary, 0, len(bms))
	for _, b := range bms {
		out = append(out, BookSummary{Book: bookModelToModel(b), Comments: bySubject[b.SubjectID], UpdatedAt: b.UpdatedAt})
	}
	return out, nil
}

// SaveComments upserts comments inside one transaction. A comment seen
// again keeps its id; content, votes and status are refreshed.
func (s *BunStore) SaveComments(ctx context.Context, subjectID string, status model.Status, comments []model.Comment) (int, error) {
	if len(comments) == 0 {
		return 0, nil
	}
	fetched := s.timestamp()
	added := 0
	err := s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, c := range comments {
			if c.ID == "" {
				continue
			}
			cm := commentToModel(subjectID, status, c, fetched)
			exists, err := tx.NewSelect().Model((*CommentModel)(nil)).Where("comment_id = ?", c.ID).Exists(ctx)
			if err != nil {
				return err
			}
			if exists {
				if _, err := tx.NewUpdate().Model(&cm).WherePK().Exec(ctx); err != nil {
					return MapDBError(err)
				}
				continue
			}
			if _, err := tx.NewInsert().Model(&cm).Exec(ctx); err != nil {
				return MapDBError(err)
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	dbLogf("db: saved %d comments for %s/%s (%d new)", len(comments), subjectID, status, added)
	return added, nil
}

// ListComments returns stored comments ordered by votes, most voted first.
func (s *BunStore) ListComments(ctx context.Context, filter CommentFilter) ([]model.Comment, error) {
	var cms []CommentModel
	q := s.bun.NewSelect().Model(&cms)
	if filter.SubjectID != "" {
		q = q.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	for _, like := range commentSearchPatterns(filter.Query) {
		q = q.Where("(LOWER(content) LIKE ? ESCAPE '!' OR LOWER(user_name) LIKE ? ESCAPE '!')", like, like)
	}
	q = q.OrderExpr("COALESCE(vote_count, 0) DESC, comment_id")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.Comment, 0, len(cms))
	for _, cm := range cms {
		out = append(out, commentModelToModel(cm))
	}
	return out, nil
}

// likeEscaper escapes LIKE metacharacters with '!', which reads the same in
// every supported dialect (a backslash is itself an escape in MySQL string
// literals).
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// commentSearchPatterns turns a free-text query into one lower-cased
// substring pattern per whitespace-separated word. Wildcards typed by the
// user match literally.
func commentSearchPatterns(query string) []string {
	words := strings.Fields(query)
	if len(words) == 0 {
		return nil
	}
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, "%"+likeEscaper.Replace(strings.ToLower(w))+"%")
	}
	return out
}

// CountComments returns the number of stored comments per status.
func (s *BunStore) CountComments(ctx context.Context, subjectID string) (model.CommentCounts, error) {
	var rows []struct {
		Status string `bun:"status"`
		N      int    `bun:"n"`
	}
	if err := s.bun.NewSelect().Model((*CommentModel)(nil)).
		Column("status").ColumnExpr("COUNT(*) AS n").
		Where("subject_id = ?", subjectID).
		Group("status").Scan(ctx, &rows); err != nil {
		return nil, err
	}
	counts := make(model.CommentCounts, len(rows))
	for _, r := range rows {
		counts[model.Status(r.Status)] = r.N
	}
	return counts, nil
}

// RecordRun stores a crawl run and returns its id.
func (s *BunStore) RecordRun(ctx context.Context, run model.CrawlRun) (int64, error) {
	rm := &CrawlRunModel{
		SubjectID:  run.SubjectID,
		Status:     string(run.Status),
		Requested:  run.Requested,
		Fetched:    run.Fetched,
		Pages:      run.Pages,
		StopReason: string(run.StopReason),
		StartedAt:  run.StartedAt.UTC(),
		FinishedAt: run.FinishedAt.UTC(),
	}
	if _, err := s.bun.NewInsert().Model(rm).
		Column("subject_id", "status", "requested", "fetched", "pages", "stop_reason", "started_at", "finished_at").
		Returning("id").Exec(ctx); err != nil {
		return 0, MapDBError(err)
	}
	return rm.ID, nil
}

// ListRuns returns the latest runs, newest first. An empty subjectID
// lists runs for every book; limit <= 0 means no limit.
func (s *BunStore) ListRuns(ctx context.Context, subjectID string, limit int) ([]model.CrawlRun, error) {
	var rms []CrawlRunModel
	q := s.bun.NewSelect().Model(&rms)
	if subjectID != "" {
		q = q.Where("subject_id = ?", subjectID)
	}
	q = q.OrderExpr("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.CrawlRun, 0, len(rms))
	for _, r := range rms {
		out = append(out, crawlRunModelToModel(r))
	}
	return out, nil
}
