// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"database/sql"
	"time"

	"github.com/toeirei/douban-comment/internal/model"
	"github.com/uptrace/bun"
)

// BookModel maps the books table.
type BookModel struct {
	bun.BaseModel `bun:"table:books"`
	SubjectID     string    `bun:"subject_id,pk"`
	Title         string    `bun:"title"`
	Author        string    `bun:"author"`
	UpdatedAt     time.Time `bun:"updated_at"`
}

// CommentModel maps the comments table.
type CommentModel struct {
	bun.BaseModel `bun:"table:comments"`
	CommentID     string          `bun:"comment_id,pk"`
	SubjectID     string          `bun:"subject_id"`
	Status        string          `bun:"status"`
	UserName      string          `bun:"user_name"`
	UserURL       string          `bun:"user_url"`
	Content       string          `bun:"content"`
	Rating        sql.NullFloat64 `bun:"rating"`
	CommentTime   string          `bun:"comment_time"`
	CommentURL    string          `bun:"comment_url"`
	Location      string          `bun:"location"`
	VoteCount     sql.NullInt64   `bun:"vote_count"`
	FetchedAt     time.Time       `bun:"fetched_at"`
}

// CrawlRunModel maps the crawl_runs table.
type CrawlRunModel struct {
	bun.BaseModel `bun:"table:crawl_runs"`
	ID            int64     `bun:"id,pk,autoincrement"`
	SubjectID     string    `bun:"subject_id"`
	Status        string    `bun:"status"`
	Requested     int       `bun:"requested"`
	Fetched       int       `bun:"fetched"`
	Pages         int       `bun:"pages"`
	StopReason    string    `bun:"stop_reason"`
	StartedAt     time.Time `bun:"started_at"`
	FinishedAt    time.Time `bun:"finished_at"`
}

func bookModelToModel(b BookModel) model.Book {
	return model.Book{SubjectID: b.SubjectID, Title: b.Title, Author: b.Author}
}

func commentToModel(subjectID string, status model.Status, c model.Comment, fetched time.Time) CommentModel {
	cm := CommentModel{
		CommentID:   c.ID,
		SubjectID:   subjectID,
		Status:      string(status),
		UserName:    c.User,
		UserURL:     c.UserURL,
		Content:     c.Content,
		CommentTime: c.Time,
		CommentURL:  c.CommentURL,
		Location:    c.Location,
		FetchedAt:   fetched,
	}
	if c.Rating != nil {
		cm.Rating = sql.NullFloat64{Float64: *c.Rating, Valid: true}
	}
	if c.VoteCount != nil {
		cm.VoteCount = sql.NullInt64{Int64: int64(*c.VoteCount), Valid: true}
	}
	return cm
}

func commentModelToModel(cm CommentModel) model.Comment {
	c := model.Comment{
		ID:         cm.CommentID,
		User:       cm.UserName,
		UserURL:    cm.UserURL,
		Content:    cm.Content,
		Time:       cm.CommentTime,
		CommentURL: cm.CommentURL,
		Location:   cm.Location,
		Status:     model.Status(cm.Status),
	}
	if cm.Rating.Valid {
		r := cm.Rating.Float64
		c.Rating = &r
	}
	if cm.VoteCount.Valid {
		v := int(cm.VoteCount.Int64)
		c.VoteCount = &v
	}
	return c
}

func crawlRunModelToModel(r CrawlRunModel) model.CrawlRun {
	return model.CrawlRun{
		ID:         r.ID,
		SubjectID:  r.SubjectID,
		Status:     model.Status(r.Status),
		Requested:  r.Requested,
		Fetched:    r.Fetched,
		Pages:      r.Pages,
		StopReason: model.StopReason(r.StopReason),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}
