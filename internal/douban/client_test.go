// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package douban

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/toeirei/douban-comment/internal/model"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestNewClient_RejectsBadBaseURL(t *testing.T) {
	if _, err := NewClient(Options{BaseURL: "not a url"}); err == nil {
		t.Fatalf("expected error for base url without scheme/host")
	}
}

func TestClient_SendsBrowserHeadersAndCookies(t *testing.T) {
	f := newFakeDouban(t, map[model.Status]int{model.StatusRead: 5})
	srv := f.start()
	c := newTestClient(t, srv, `bid=b1; ck=Tk9; dbcl2="1:x"`)

	if !c.LoggedIn() {
		t.Fatalf("client with cookies should report logged in")
	}
	if got := c.CSRFToken(); got != "Tk9" {
		t.Fatalf("CSRFToken = %q", got)
	}

	page, err := c.FetchCommentsPage(context.Background(), PageQuery{SubjectID: "42", Status: model.StatusRead, Start: 20})
	if err != nil {
		t.Fatalf("FetchCommentsPage: %v", err)
	}
	if page.R != 0 {
		t.Fatalf("unexpected r=%d", page.R)
	}

	reqs := f.recorded()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	r := reqs[0]
	if ua := r.Header.Get("User-Agent"); ua != DefaultUserAgent {
		t.Fatalf("unexpected UA %q", ua)
	}
	if al := r.Header.Get("Accept-Language"); !strings.HasPrefix(al, "zh-CN") {
		t.Fatalf("unexpected Accept-Language %q", al)
	}
	wantRef := srv.URL + "/subject/42/comments/?start=20&limit=20&status=P&sort=score"
	if ref := r.Header.Get("Referer"); ref != wantRef {
		t.Fatalf("Referer = %q, want %q", ref, wantRef)
	}
	if ck := r.URL.Query().Get("ck"); ck != "Tk9" {
		t.Fatalf("ck query = %q", ck)
	}
	for _, name := range []string{"bid", "ck", "dbcl2"} {
		if _, err := r.Cookie(name); err != nil {
			t.Fatalf("cookie %s not sent: %v", name, err)
		}
	}
}

func TestClient_AnonymousHasNoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("ck") {
			t.Errorf("anonymous request carried ck")
		}
		_, _ = w.Write([]byte(`{"r":0,"html":""}`))
	}))
	defer srv.Close()
	c := newTestClient(t, srv, "")
	if c.LoggedIn() || c.CSRFToken() != "" {
		t.Fatalf("anonymous client should have no session")
	}
	if _, err := c.FetchCommentsPage(context.Background(), PageQuery{SubjectID: "1", Status: model.StatusRead}); err != nil {
		t.Fatalf("FetchCommentsPage: %v", err)
	}
}

func TestClient_ServerSetCkWins(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.SetCookie(w, &http.Cookie{Name: "ck", Value: "fresh", Path: "/"})
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, "ck=stale; bid=1")
	if _, err := c.Get(context.Background(), "/", nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := c.CSRFToken(); got != "fresh" {
		t.Fatalf("expected server-set ck, got %q", got)
	}
}

func TestClient_DecodesGzipAndDeflate(t *testing.T) {
	body := "豆瓣读书 短评"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		switch r.URL.Path {
		case "/gzip":
			zw := gzip.NewWriter(&buf)
			_, _ = zw.Write([]byte(body))
			_ = zw.Close()
			w.Header().Set("Content-Encoding", "gzip")
		case "/deflate":
			zw := zlib.NewWriter(&buf)
			_, _ = zw.Write([]byte(body))
			_ = zw.Close()
			w.Header().Set("Content-Encoding", "deflate")
		}
		w.Header().Set("Content-Type", "text/html; charset=ISO-8859-1")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	c := newTestClient(t, srv, "")
	for _, p := range []string{"/gzip", "/deflate"} {
		got, err := c.Get(context.Background(), p, nil)
		if err != nil {
			t.Fatalf("Get %s: %v", p, err)
		}
		if string(got) != body {
			t.Fatalf("Get %s = %q, want %q", p, got, body)
		}
	}
}

func TestClient_TranscodesDeclaredCharset(t *testing.T) {
	gbk, err := simplifiedchinese.GBK.NewEncoder().String("活着")
	if err != nil {
		t.Fatalf("encode gbk: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=gbk")
		_, _ = w.Write([]byte(gbk))
	}))
	defer srv.Close()

	got, err := newTestClient(t, srv, "").Get(context.Background(), "/", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "活着" {
		t.Fatalf("expected transcoded UTF-8, got %q", got)
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("finally"))
	}))
	defer srv.Close()

	c, err := NewClient(Options{BaseURL: srv.URL, NoDelay: true, Retries: 3, RetryInterval: time.Millisecond})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	got, err := c.Get(context.Background(), "/x", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "finally" || atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("got %q after %d calls", got, calls)
	}
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c, err := NewClient(Options{BaseURL: srv.URL, NoDelay: true, Retries: 5, RetryInterval: time.Millisecond})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = c.Get(context.Background(), "/x", nil)
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("expected ErrUnexpectedStatus, got %v", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusForbidden {
		t.Fatalf("expected StatusError 403, got %v", err)
	}
	if IsTemporary(err) {
		t.Fatalf("403 must not be temporary")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected a single attempt, got %d", n)
	}
}

func TestClient_RejectedPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"r":1,"html":""}`))
	}))
	defer srv.Close()
	_, err := newTestClient(t, srv, "").FetchCommentsPage(context.Background(), PageQuery{SubjectID: "1", Status: model.StatusRead})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
}

func TestClient_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>captcha</html>`))
	}))
	defer srv.Close()
	_, err := newTestClient(t, srv, "").FetchCommentsPage(context.Background(), PageQuery{SubjectID: "1", Status: model.StatusRead})
	if !errors.Is(err, ErrBadResponse) {
		t.Fatalf("expected ErrBadResponse, got %v", err)
	}
}

func TestThrottle_Window(t *testing.T) {
	th := NewThrottle(2*time.Second, 500*time.Millisecond) // swapped on purpose
	if th.Min != 500*time.Millisecond || th.Max != 2*time.Second {
		t.Fatalf("window not normalised: %v..%v", th.Min, th.Max)
	}
	th.rand = func() float64 { return 0 }
	if d := th.Next(); d != 500*time.Millisecond {
		t.Fatalf("lower bound = %v", d)
	}
	th.rand = func() float64 { return 0.999999 }
	if d := th.Next(); d < 1999*time.Millisecond || d > 2*time.Second {
		t.Fatalf("upper bound = %v", d)
	}

	var slept time.Duration
	th.sleep = func(_ context.Context, d time.Duration) error { slept = d; return nil }
	if err := th.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if slept == 0 {
		t.Fatalf("Wait did not sleep")
	}

	var nilThrottle *Throttle
	if err := nilThrottle.Wait(context.Background()); err != nil {
		t.Fatalf("nil throttle Wait: %v", err)
	}
}

func TestThrottle_WaitHonoursContext(t *testing.T) {
	th := NewThrottle(time.Hour, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := th.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
