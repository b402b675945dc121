// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package douban

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedStatus wraps non-2xx HTTP responses.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
	// ErrBadResponse is returned when a response body cannot be decoded.
	ErrBadResponse = errors.New("malformed response")
	// ErrRejected is returned when the comments endpoint answers with r != 0.
	ErrRejected = errors.New("comments endpoint rejected request")
)

// StatusError carries the HTTP status of a failed request.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d for %s", ErrUnexpectedStatus, e.Code, e.URL)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == 429 || e.Code >= 500
}
