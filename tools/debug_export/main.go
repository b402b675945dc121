// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

// debug_export seeds an in-memory store with sample comments and prints
// what the CSV and JSON exporters produce for them. It is a quick way to
// eyeball format changes without crawling.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/toeirei/douban-comment/internal/db"
	"github.com/toeirei/douban-comment/internal/export"
	"github.com/toeirei/douban-comment/internal/model"
)

const dsn = "file:debug_export?mode=memory&cache=shared"

func main() {
	if err := run(context.Background(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "debug_export: %v\n", err)
		os.Exit(1)
	}
}

func sample() (model.Book, []model.Comment) {
	four, five := 4.0, 5.0
	votes, none := 12, 0
	book := model.Book{SubjectID: "2567698", Title: "三体", Author: "刘慈欣"}
	return book, []model.Comment{
		{ID: "1001", User: "读者甲", Content: "宏大, 令人震撼", Rating: &five, Time: "2024-01-02 10:00:00", Location: "北京", VoteCount: &votes},
		{ID: "1002", User: "读者乙", Content: "中间有点慢\n但结尾很好", Rating: &four, Time: "2024-01-03 11:30:00", VoteCount: &none},
		{ID: "1003", User: "读者丙", Content: "没打分", Time: "2024-01-04 09:15:00"},
	}
}

func run(ctx context.Context, w io.Writer) error {
	store, err := db.Open(db.TypeSQLite, dsn)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	book, comments := sample()
	if err := store.SaveBook(ctx, book); err != nil {
		return err
	}
	added, err := store.SaveComments(ctx, book.SubjectID, model.StatusRead, comments)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "stored %d comments for %s\n", added, book.SubjectID)

	stored, err := store.ListComments(ctx, db.CommentFilter{SubjectID: book.SubjectID, Status: model.StatusRead})
	if err != nil {
		return err
	}
	for _, format := range []export.Format{export.FormatCSV, export.FormatJSON} {
		fmt.Fprintf(w, "--- %s ---\n", format)
		if err := export.Encode(w, format, export.CompressNone, book, model.StatusRead, stored); err != nil {
			return err
		}
	}
	return nil
}
