// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package douban

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/toeirei/douban-comment/internal/model"
)

// fakeDouban serves a subject page, a comments page with tab counts and a
// comments_only endpoint producing `totals[status]` distinct comments.
type fakeDouban struct {
	t        *testing.T
	totals   map[model.Status]int
	counts   map[model.Status]int // shown on tabs; defaults to totals
	rejectAt int                  // respond r=1 when start == rejectAt (if > 0)
	repeat   bool                 // every page returns the same comments

	mu       sync.Mutex
	requests []*http.Request
}

func newFakeDouban(t *testing.T, totals map[model.Status]int) *fakeDouban {
	return &fakeDouban{t: t, totals: totals}
}

func (f *fakeDouban) start() *httptest.Server {
	srv := httptest.NewServer(f)
	f.t.Cleanup(srv.Close)
	return srv
}

func (f *fakeDouban) recorded() []*http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*http.Request(nil), f.requests...)
}

func (f *fakeDouban) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Clone(r.Context()))
	f.mu.Unlock()

	switch {
	case strings.HasSuffix(r.URL.Path, "/comments/") && r.URL.Query().Get("comments_only") == "1":
		f.serveCommentsOnly(w, r)
	case strings.HasSuffix(r.URL.Path, "/comments/"):
		counts := f.counts
		if counts == nil {
			counts = f.totals
		}
		var tabs strings.Builder
		for _, s := range model.AllStatuses {
			if n, ok := counts[s]; ok {
				fmt.Fprintf(&tabs, "<li><span>%s(%d)</span></li>", s.Label(), n)
			}
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<html><body><ul class="CommentTabs">%s</ul></body></html>`, tabs.String())
	case strings.HasPrefix(r.URL.Path, "/subject/"):
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><script type="application/ld+json">{"name":"测试之书","author":[{"name":"某人"}]}</script></head></html>`)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeDouban) serveCommentsOnly(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := model.Status(q.Get("status"))
	start, _ := strconv.Atoi(q.Get("start"))
	w.Header().Set("Content-Type", "application/json")

	if f.rejectAt > 0 && start == f.rejectAt {
		_ = json.NewEncoder(w).Encode(PageResponse{R: 1})
		return
	}

	total := f.totals[status]
	var b strings.Builder
	first := start
	if f.repeat {
		first = 0
	}
	for i := first; i < first+PageSize && i < total; i++ {
		fmt.Fprintf(&b, `<li class="comment-item" data-cid="%s-%d"><span class="comment-info"><a href="/people/u%d/">user%d</a></span><p class="comment-content"><span class="short">comment %d</span></p></li>`,
			status, i, i, i, i)
	}
	_ = json.NewEncoder(w).Encode(PageResponse{R: 0, HTML: b.String()})
}

func newTestClient(t *testing.T, srv *httptest.Server, cookies string) *Client {
	t.Helper()
	c, err := NewClient(Options{BaseURL: srv.URL, Cookies: cookies, NoDelay: true})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}
