// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

// package model defines the core data structures shared by the crawler, the
// exporters and the database layer.
package model // import "github.com/toeirei/douban-comment/internal/model"

import (
	"fmt"
	"strings"
	"time"
)

// Status is the reading-status tab a short comment was posted under.
type Status string

const (
	StatusRead    Status = "P" // 读过
	StatusReading Status = "N" // 在读
	StatusWish    Status = "F" // 想读
)

// AllStatuses lists the tabs in the order they are crawled.
var AllStatuses = []Status{StatusRead, StatusReading, StatusWish}

var statusLabels = map[Status]string{
	StatusRead:    "读过",
	StatusReading: "在读",
	StatusWish:    "想读",
}

// Label returns the tab label as printed on the site.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Valid reports whether s is one of the known tabs.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// StatusFromLabel maps a tab label (读过/在读/想读) to its Status.
func StatusFromLabel(label string) (Status, bool) {
	for s, l := range statusLabels {
		if l == label {
			return s, true
		}
	}
	return "", false
}

// ParseStatus accepts either the status code (P/N/F, any case) or the
// Chinese label.
func ParseStatus(v string) (Status, error) {
	v = strings.TrimSpace(v)
	if s := Status(strings.ToUpper(v)); s.Valid() {
		return s, nil
	}
	if s, ok := StatusFromLabel(v); ok {
		return s, nil
	}
	return "", fmt.Errorf("unknown status %q (want P, N or F)", v)
}

// ParseStatuses parses a list of statuses, dropping duplicates and keeping
// the canonical P, N, F order. An empty list yields AllStatuses.
func ParseStatuses(values []string) ([]Status, error) {
	if len(values) == 0 {
		return append([]Status(nil), AllStatuses...), nil
	}
	want := make(map[Status]bool)
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			s, err := ParseStatus(part)
			if err != nil {
				return nil, err
			}
			want[s] = true
		}
	}
	var out []Status
	for _, s := range AllStatuses {
		if want[s] {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return append([]Status(nil), AllStatuses...), nil
	}
	return out, nil
}

// Book is the subject a crawl targets.
type Book struct {
	SubjectID string `json:"subject_id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
}

// Comment is a single short comment.
type Comment struct {
	ID         string   `json:"comment_id"`
	User       string   `json:"user"`
	UserURL    string   `json:"user_url,omitempty"`
	Content    string   `json:"content"`
	Rating     *float64 `json:"rating"` // stars, nil when the user gave none
	Time       string   `json:"time"`
	CommentURL string   `json:"comment_url,omitempty"`
	Location   string   `json:"location,omitempty"`
	VoteCount  *int     `json:"vote_count"`
	Status     Status   `json:"status,omitempty"`
}

// CommentCounts holds the total shown on each tab.
type CommentCounts map[Status]int

// StopReason explains why a crawl of one tab ended.
type StopReason string

const (
	StopLimit     StopReason = "limit"      // requested number reached
	StopRejected  StopReason = "rejected"   // endpoint answered r != 0
	StopEmpty     StopReason = "empty"      // no html in the response
	StopNoResults StopReason = "no_results" // html had no comment items
	StopStale     StopReason = "stale"      // pages kept repeating known comments
	StopError     StopReason = "error"      // request or decode failure
	StopCanceled  StopReason = "canceled"
)

// CrawlResult is the outcome of crawling one tab of one book.
type CrawlResult struct {
	Book       Book
	Status     Status
	Requested  int
	Comments   []Comment
	Pages      int
	StopReason StopReason
	StartedAt  time.Time
	FinishedAt time.Time
}

// CrawlRun is the persisted summary of a CrawlResult.
type CrawlRun struct {
	ID         int64
	SubjectID  string
	Status     Status
	Requested  int
	Fetched    int
	Pages      int
	StopReason StopReason
	StartedAt  time.Time
	FinishedAt time.Time
}

// Run summarises r for persistence.
func (r CrawlResult) Run() CrawlRun {
	return CrawlRun{
		SubjectID:  r.Book.SubjectID,
		Status:     r.Status,
		Requested:  r.Requested,
		Fetched:    len(r.Comments),
		Pages:      r.Pages,
		StopReason: r.StopReason,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}
