// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package douban

import (
	"net/http"
	"strings"
)

// defaultCookieName is used when the configured cookie string is a bare
// value instead of a name=value list.
const defaultCookieName = "dbcl2"

// csrfCookieName is Douban's CSRF token; it is echoed as the ck parameter.
const csrfCookieName = "ck"

// ParseCookieString turns a browser cookie header ("a=1; b=2") into cookies.
// A string without '=' or ';' is taken as the value of dbcl2. Values wrapped
// in double quotes keep their quoting on the wire.
func ParseCookieString(raw string) []*http.Cookie {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if !strings.ContainsAny(raw, "=;") {
		return []*http.Cookie{newCookie(defaultCookieName, raw)}
	}
	var out []*http.Cookie
	for _, part := range strings.Split(raw, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, newCookie(name, strings.TrimSpace(value)))
	}
	return out
}

func newCookie(name, value string) *http.Cookie {
	c := &http.Cookie{Name: name, Value: value}
	if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		c.Value = value[1 : len(value)-1]
		c.Quoted = true
	}
	return c
}

// CookieValue returns the value of name from a cookie string, or "".
func CookieValue(raw, name string) string {
	for _, c := range ParseCookieString(raw) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
