// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package message

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// A Response describes the outcome of a request sent through a
// pipeline.
//
// The raw body of a response fresh from a transport is a
// single-consumption stream: after Body or Bytes has consumed it, a
// further read yields no content. Call Buffer to obtain a view whose
// body derives from a memoized in-memory copy and can be read any
// number of times.
type Response interface {
	// Request returns the request that produced this response. It is
	// never nil.
	Request() *Request

	// StatusCode returns the HTTP status code, in the range 100-599.
	StatusCode() int

	// Headers returns the response headers.
	Headers() *Headers

	// Body returns a stream over the response body. On an unbuffered
	// response the stream consumes the underlying connection and only
	// the first call returns content; the caller must close it so the
	// connection can be reused. On a buffered response every call
	// returns an independent stream over the cached bytes.
	Body(ctx context.Context) (io.ReadCloser, error)

	// Bytes returns the complete response body. On an unbuffered
	// response this consumes the stream, and a second call returns no
	// content; on a buffered response every call returns the identical
	// bytes from a fetch performed at most once.
	Bytes(ctx context.Context) ([]byte, error)

	// Text returns the response body decoded with the given charset.
	// An empty charset means UTF-8. The charset is resolved using the
	// names registered for use with HTML and HTTP (for example
	// "utf-8", "iso-8859-1", "shift_jis").
	Text(ctx context.Context, charset string) (string, error)

	// Buffer returns a view of the response whose body can be read any
	// number of times. The underlying body is fetched at most once, on
	// first access, no matter how many readers ask concurrently.
	// Calling Buffer on an already-buffered response returns the same
	// response.
	Buffer() Response
}

// NewResponse constructs a Response with the given originating request,
// status code, headers, and body stream. A nil headers is treated as
// empty and a nil body as an empty body. The returned error, if any,
// wraps ErrInvalidArgument.
func NewResponse(req *Request, statusCode int, headers *Headers, body io.ReadCloser) (Response, error) {
	if req == nil {
		return nil, fmt.Errorf("pipeline/message: nil request: %w", ErrInvalidArgument)
	}
	if statusCode < 100 || statusCode > 599 {
		return nil, fmt.Errorf("pipeline/message: status code %d out of range: %w", statusCode, ErrInvalidArgument)
	}
	if headers == nil {
		headers = NewHeaders()
	}
	if body == nil {
		body = io.NopCloser(bytes.NewReader(nil))
	}
	return &response{
		req:     req,
		status:  statusCode,
		headers: headers,
		body:    body,
	}, nil
}

type response struct {
	req     *Request
	status  int
	headers *Headers

	mu       sync.Mutex
	body     io.ReadCloser
	consumed bool
}

func (r *response) Request() *Request {
	return r.req
}

func (r *response) StatusCode() int {
	return r.status
}

func (r *response) Headers() *Headers {
	return r.headers
}

func (r *response) Body(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.consumed {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	r.consumed = true
	return r.body, nil
}

func (r *response) Bytes(ctx context.Context) ([]byte, error) {
	rc, err := r.Body(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rc.Close()
	}()
	return io.ReadAll(rc)
}

func (r *response) Text(ctx context.Context, charset string) (string, error) {
	return decodeText(ctx, r, charset)
}

func (r *response) Buffer() Response {
	return newBuffered(r)
}

func decodeText(ctx context.Context, r Response, charset string) (string, error) {
	b, err := r.Bytes(ctx)
	if err != nil {
		return "", err
	}
	if charset == "" || strings.EqualFold(charset, "utf-8") {
		return string(b), nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", fmt.Errorf("pipeline/message: unknown charset %q: %w", charset, err)
	}
	if enc == unicode.UTF8 {
		return string(b), nil
	}
	decoded, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
