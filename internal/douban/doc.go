// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

// Package douban talks to book.douban.com.
//
// Client is a cookie-carrying HTTP session with browser headers, a random
// post-request delay and retries for transient failures. On top of it the
// package fetches a book's title and author, the comment count of each
// reading-status tab, and pages of short comments from the
// `comments_only=1` JSON endpoint. Crawler ties these together and hands
// every finished tab to a Sink.
//
// Anonymous sessions are served at most 100 comments per tab by the site;
// Crawler.Limit applies the same cap so a logged-out crawl does not keep
// requesting pages that come back empty.
package douban
