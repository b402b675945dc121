// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package douban

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/toeirei/douban-comment/internal/logging"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// DefaultBaseURL is the book site root.
const DefaultBaseURL = "https://book.douban.com"

// DefaultUserAgent mimics a desktop Edge browser.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36 Edg/143.0.0.0"

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL   string
	Cookies   string // raw DOUBAN_COOKIES value
	UserAgent string
	Timeout   time.Duration

	// DelayMin and DelayMax bound the random wait after each request.
	// NoDelay disables it entirely (tests, replaying fixtures).
	DelayMin, DelayMax time.Duration
	NoDelay            bool

	// Retries is the number of extra attempts for transient failures.
	Retries       uint
	RetryInterval time.Duration

	// HTTPClient overrides the underlying client; its Jar is replaced.
	HTTPClient *http.Client
}

// Client is a Douban session.
type Client struct {
	base          *url.URL
	http          *http.Client
	cookies       string
	userAgent     string
	throttle      *Throttle
	retries       uint
	retryInterval time.Duration
}

// NewClient builds a session and seeds its cookie jar from opts.Cookies.
func NewClient(opts Options) (*Client, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: missing scheme or host", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("could not create cookie jar: %w", err)
	}
	if cs := ParseCookieString(opts.Cookies); len(cs) > 0 {
		jar.SetCookies(base, cs)
	}

	hc := &http.Client{}
	if opts.HTTPClient != nil {
		copied := *opts.HTTPClient
		hc = &copied
	}
	hc.Jar = jar
	if opts.Timeout > 0 {
		hc.Timeout = opts.Timeout
	} else if hc.Timeout == 0 {
		hc.Timeout = 30 * time.Second
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	var th *Throttle
	if !opts.NoDelay {
		lo, hi := opts.DelayMin, opts.DelayMax
		if lo == 0 && hi == 0 {
			lo, hi = DefaultDelayMin, DefaultDelayMax
		}
		th = NewThrottle(lo, hi)
	}

	interval := opts.RetryInterval
	if interval <= 0 {
		interval = time.Second
	}

	return &Client{
		base:          base,
		http:          hc,
		cookies:       opts.Cookies,
		userAgent:     ua,
		throttle:      th,
		retries:       opts.Retries,
		retryInterval: interval,
	}, nil
}

// BaseURL returns the site root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// LoggedIn reports whether the session was configured with cookies.
func (c *Client) LoggedIn() bool {
	return strings.TrimSpace(c.cookies) != ""
}

// CSRFToken returns the ck value, preferring what the server set on the
// session over the configured cookie string.
func (c *Client) CSRFToken() string {
	if c.http.Jar != nil {
		for _, ck := range c.http.Jar.Cookies(c.base) {
			if ck.Name == csrfCookieName && ck.Value != "" {
				return ck.Value
			}
		}
	}
	return CookieValue(c.cookies, csrfCookieName)
}

func (c *Client) defaultHeaders() http.Header {
	h := make(http.Header)
	h.Set("User-Agent", c.userAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	h.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	h.Set("Accept-Encoding", "gzip, deflate")
	h.Set("Connection", "keep-alive")
	return h
}

// Get fetches path (relative to the base URL, may carry a query) and returns
// the decoded UTF-8 body. extra headers override the defaults. The
// throttle delay is applied after the request whatever its outcome.
func (c *Client) Get(ctx context.Context, path string, extra http.Header) ([]byte, error) {
	target := c.resolve(path)
	logging.Debugf("GET %s", target)

	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		return c.do(ctx, target, extra)
	}, backoff.WithBackOff(c.newBackOff()), backoff.WithMaxTries(c.retries+1))

	if werr := c.throttle.Wait(ctx); werr != nil && err == nil {
		err = werr
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	b.MaxInterval = 30 * c.retryInterval
	return b
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.base.String() + path
}

func (c *Client) do(ctx context.Context, target string, extra http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header = c.defaultHeaders()
	for k, vs := range extra {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		logging.Debugf("GET %s failed: %v", target, err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		serr := &StatusError{URL: target, Code: resp.StatusCode}
		if serr.Temporary() {
			logging.Debugf("GET %s: %d, retrying", target, resp.StatusCode)
			return nil, serr
		}
		return nil, backoff.Permanent(serr)
	}

	body, err := decodeBody(resp)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %v", ErrBadResponse, err))
	}
	return body, nil
}

// decodeBody undoes the transfer encodings negotiated by the default
// Accept-Encoding header and transcodes the result to UTF-8.
func decodeBody(resp *http.Response) ([]byte, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var r io.Reader = bytes.NewReader(raw)
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	case "deflate":
		// Servers disagree on whether deflate means zlib-wrapped or raw.
		if zr, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
			defer func() { _ = zr.Close() }()
			r = zr
		} else {
			fr := flate.NewReader(bytes.NewReader(raw))
			defer func() { _ = fr.Close() }()
			r = fr
		}
	}

	if enc := contentCharset(resp.Header.Get("Content-Type")); enc != "" {
		e, name := charset.Lookup(enc)
		if e != nil && name != "utf-8" {
			r = transform.NewReader(r, e.NewDecoder())
		}
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// contentCharset returns the declared charset, ignoring the ISO-8859-1
// default some servers send for pages that are really UTF-8.
func contentCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	cs := strings.ToLower(strings.TrimSpace(params["charset"]))
	switch cs {
	case "", "iso-8859-1", "latin1", "latin-1":
		return ""
	}
	return cs
}

// IsTemporary reports whether err came from a transient HTTP status.
func IsTemporary(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Temporary()
}
