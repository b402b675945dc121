// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package douban

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"github.com/toeirei/douban-comment/internal/model"
)

var tabCountRe = regexp.MustCompile(`(读过|在读|想读)\((\d+)\)`)

// CommentsPath is the comments landing page of subjectID.
func CommentsPath(subjectID string) string {
	return "/subject/" + subjectID + "/comments/"
}

// FetchCommentCounts reads the per-tab totals from the comments page.
func (c *Client) FetchCommentCounts(ctx context.Context, subjectID string) (model.CommentCounts, error) {
	body, err := c.Get(ctx, CommentsPath(subjectID), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch comment counts %s: %w", subjectID, err)
	}
	counts, err := ParseCommentCounts(body)
	if err != nil {
		return nil, fmt.Errorf("parse comment counts %s: %w", subjectID, err)
	}
	return counts, nil
}

// ParseCommentCounts extracts "读过(4916)"-style totals from the tab list.
// Tabs that are missing from the page are missing from the result.
func ParseCommentCounts(page []byte) (model.CommentCounts, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}

	tabs := doc.Find("li.CommentTabs")
	if tabs.Length() == 0 {
		tabs = doc.Find("ul.CommentTabs li")
	}

	counts := make(model.CommentCounts)
	tabs.Each(func(_ int, tab *goquery.Selection) {
		m := tabCountRe.FindStringSubmatch(tab.Text())
		if m == nil {
			return
		}
		status, ok := model.StatusFromLabel(m[1])
		if !ok {
			return
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return
		}
		counts[status] = n
	})
	return counts, nil
}
