// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package douban

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/toeirei/douban-comment/internal/model"
)

// PageSize is the number of comments the endpoint returns per page.
const PageSize = 20

// Sort orders accepted by the comments endpoint.
const (
	SortScore = "score" // most helpful first
	SortTime  = "time"  // newest first
	SortNew   = "new_score"
)

// ValidSort reports whether s is a known sort order.
func ValidSort(s string) bool {
	switch s {
	case SortScore, SortTime, SortNew:
		return true
	}
	return false
}

// PageQuery identifies one page of one tab.
type PageQuery struct {
	SubjectID string
	Status    model.Status
	Start     int
	Sort      string
}

func (q PageQuery) sort() string {
	if q.Sort == "" {
		return SortScore
	}
	return q.Sort
}

// CommentsURL builds the comments_only request path. The start parameter is
// left out for the first page and ck is appended when known.
func CommentsURL(q PageQuery, ck string) string {
	var b strings.Builder
	b.WriteString(CommentsPath(q.SubjectID))
	b.WriteString("?percent_type=")
	if q.Start > 0 {
		b.WriteString("&start=" + strconv.Itoa(q.Start))
	}
	b.WriteString("&limit=" + strconv.Itoa(PageSize))
	b.WriteString("&status=" + url.QueryEscape(string(q.Status)))
	b.WriteString("&sort=" + url.QueryEscape(q.sort()))
	b.WriteString("&comments_only=1")
	if ck != "" {
		b.WriteString("&ck=" + url.QueryEscape(ck))
	}
	return b.String()
}

// RefererURL is the browser-facing page the request pretends to come from.
func RefererURL(base string, q PageQuery) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	b.WriteString(CommentsPath(q.SubjectID))
	b.WriteString("?")
	if q.Start > 0 {
		b.WriteString("start=" + strconv.Itoa(q.Start) + "&")
	}
	b.WriteString("limit=" + strconv.Itoa(PageSize))
	b.WriteString("&status=" + url.QueryEscape(string(q.Status)))
	b.WriteString("&sort=" + url.QueryEscape(q.sort()))
	return b.String()
}

// PageResponse is the JSON envelope of the comments_only endpoint.
type PageResponse struct {
	R    int    `json:"r"`
	HTML string `json:"html"`
}

// FetchCommentsPage requests one page. A response with r != 0 is returned
// together with an ErrRejected error.
func (c *Client) FetchCommentsPage(ctx context.Context, q PageQuery) (PageResponse, error) {
	headers := http.Header{}
	headers.Set("Referer", RefererURL(c.BaseURL(), q))

	body, err := c.Get(ctx, CommentsURL(q, c.CSRFToken()), headers)
	if err != nil {
		return PageResponse{}, err
	}
	var page PageResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return PageResponse{}, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if page.R != 0 {
		return page, fmt.Errorf("%w: r=%d", ErrRejected, page.R)
	}
	return page, nil
}

// ParseComments extracts every li.comment-item that carries a data-cid.
func ParseComments(fragment string) ([]model.Comment, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, err
	}
	var out []model.Comment
	doc.Find("li.comment-item").Each(func(_ int, item *goquery.Selection) {
		if c, ok := parseCommentItem(item); ok {
			out = append(out, c)
		}
	})
	return out, nil
}

func parseCommentItem(item *goquery.Selection) (model.Comment, bool) {
	id := strings.TrimSpace(item.AttrOr("data-cid", ""))
	if id == "" {
		return model.Comment{}, false
	}
	c := model.Comment{ID: id}

	// The user link is the first anchor in comment-info that is not the
	// timestamp link.
	item.Find("span.comment-info a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if a.HasClass("comment-time") {
			return true
		}
		c.User = strings.TrimSpace(a.Text())
		c.UserURL = a.AttrOr("href", "")
		return false
	})

	if rating := item.Find("span.rating").First(); rating.Length() > 0 {
		c.Rating = ratingFromClass(rating.AttrOr("class", ""))
	}

	// span.short must be looked up inside p.comment-content; other
	// span.short elements in the item hold the date.
	c.Content = strings.TrimSpace(item.Find("p.comment-content span.short").First().Text())

	if t := item.Find("a.comment-time").First(); t.Length() > 0 {
		c.Time = strings.TrimSpace(t.Text())
		c.CommentURL = t.AttrOr("href", "")
	}

	if loc := strings.TrimSpace(item.Find("span.comment-location").First().Text()); loc != "" {
		c.Location = loc
	}

	if votes := item.Find("span.vote-count").First(); votes.Length() > 0 {
		n, err := strconv.Atoi(strings.TrimSpace(votes.Text()))
		if err != nil {
			n = 0
		}
		c.VoteCount = &n
	}
	return c, true
}

// ratingFromClass converts "allstar40 rating" to 4 stars.
func ratingFromClass(class string) *float64 {
	for _, cls := range strings.Fields(class) {
		if !strings.HasPrefix(cls, "allstar") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(cls, "allstar"))
		if err != nil {
			return nil
		}
		stars := float64(n) / 10
		return &stars
	}
	return nil
}
