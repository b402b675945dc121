// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package douban

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/toeirei/douban-comment/internal/model"
)

// SubjectPath is the book page of subjectID.
func SubjectPath(subjectID string) string {
	return "/subject/" + subjectID + "/"
}

// FetchBookInfo loads the subject page and extracts title and author.
func (c *Client) FetchBookInfo(ctx context.Context, subjectID string) (model.Book, error) {
	body, err := c.Get(ctx, SubjectPath(subjectID), nil)
	if err != nil {
		return model.Book{}, fmt.Errorf("fetch book %s: %w", subjectID, err)
	}
	book, err := ParseBookInfo(body)
	if err != nil {
		return model.Book{}, fmt.Errorf("parse book %s: %w", subjectID, err)
	}
	book.SubjectID = subjectID
	return book, nil
}

type jsonLDBook struct {
	Name   string          `json:"name"`
	Author json.RawMessage `json:"author"`
}

type jsonLDPerson struct {
	Name string `json:"name"`
}

// ParseBookInfo reads the JSON-LD block of a subject page, falling back to
// the og:title and book:author meta tags for whatever it lacks.
func ParseBookInfo(page []byte) (model.Book, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if script := doc.Find(`script[type="application/ld+json"]`).First(); script.Length() > 0 {
		var ld jsonLDBook
		// The site occasionally emits raw newlines inside JSON strings;
		// such blocks are skipped in favour of the meta tags.
		if err := json.Unmarshal([]byte(script.Text()), &ld); err == nil {
			book.Title = strings.TrimSpace(ld.Name)
			book.Author = firstAuthor(ld.Author)
		}
	}

	if book.Title == "" {
		book.Title = strings.TrimSpace(doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
	}
	if book.Author == "" {
		book.Author = strings.TrimSpace(doc.Find(`meta[property="book:author"]`).AttrOr("content", ""))
	}
	return book, nil
}

func firstAuthor(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var list []jsonLDPerson
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) > 0 {
			return strings.TrimSpace(list[0].Name)
		}
		return ""
	}
	var one jsonLDPerson
	if err := json.Unmarshal(raw, &one); err == nil {
		return strings.TrimSpace(one.Name)
	}
	return ""
}
