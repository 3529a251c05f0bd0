// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package message

import (
	"errors"
	"fmt"
	urlpkg "net/url"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// ErrInvalidArgument classifies errors caused by invalid construction
// inputs: an invalid method, an empty or unparsable URL, or an
// out-of-range status code. Errors of this class are detected
// synchronously, before any request processing begins, and can be
// tested for with errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// A Request describes a logical outbound HTTP request.
//
// A Request is mutable through its setters, but its URL is replaced
// wholesale rather than edited in place: read a copy with URL, rebuild
// it, and store it with SetURL. This keeps concurrent readers of an
// original request safe while a clone's URL is being rewritten.
//
// A Request is not safe for concurrent mutation. Within a pipeline this
// is never required, because each call owns its request exclusively;
// policies that re-send a request clone it first.
type Request struct {
	method  string
	url     *urlpkg.URL
	headers *Headers
	body    Body
}

// NewRequest returns a new Request for the given method and URL. An
// empty method means GET. The returned error, if any, wraps
// ErrInvalidArgument.
func NewRequest(method, url string) (*Request, error) {
	if method == "" {
		method = "GET"
	}
	if !validMethod(method) {
		return nil, fmt.Errorf("pipeline/message: invalid method %q: %w", method, ErrInvalidArgument)
	}
	if url == "" {
		return nil, fmt.Errorf("pipeline/message: empty url: %w", ErrInvalidArgument)
	}
	u, err := urlpkg.Parse(url)
	if err != nil {
		return nil, fmt.Errorf("pipeline/message: %v: %w", err, ErrInvalidArgument)
	}
	u.Host = removeEmptyPort(u.Host)
	return &Request{
		method:  method,
		url:     u,
		headers: NewHeaders(),
	}, nil
}

// Method returns the HTTP method.
func (r *Request) Method() string {
	return r.method
}

// URL returns a copy of the request URL. Modifying the returned value
// does not affect the request; store a rebuilt URL with SetURL.
func (r *Request) URL() *urlpkg.URL {
	u := *r.url
	return &u
}

// SetURL replaces the request URL with a copy of u, which must be
// non-nil.
func (r *Request) SetURL(u *urlpkg.URL) {
	if u == nil {
		panic("pipeline/message: nil url")
	}
	u2 := *u
	r.url = &u2
}

// Headers returns the request's headers. The returned value is the live
// collection, not a copy.
func (r *Request) Headers() *Headers {
	return r.headers
}

// Body returns the request's body producer, or nil if the request has
// no body.
func (r *Request) Body() Body {
	return r.body
}

// SetBody sets the request's body producer. A nil body means no body.
// If the body's length is known, SetBody also sets the Content-Length
// header to that length, replacing any value the caller may have set.
func (r *Request) SetBody(b Body) {
	r.body = b
	if b != nil {
		if n := b.Length(); n >= 0 {
			r.headers.Set("Content-Length", strconv.FormatInt(n, 10))
		}
	}
}

// SetContent sets the request body to the given bytes and the
// Content-Length header to their length. It is shorthand for
// SetBody(BytesBody(p)).
func (r *Request) SetContent(p []byte) {
	r.SetBody(BytesBody(p))
}

// Clone returns a copy of r with an independent method, URL, and header
// collection, but the same body producer. Mutating the clone's headers
// or URL never affects r; the body is shared because body producers are
// immutable and safe to share across attempts.
func (r *Request) Clone() *Request {
	return &Request{
		method:  r.method,
		url:     r.URL(),
		headers: r.headers.Clone(),
		body:    r.body,
	}
}

func validMethod(method string) bool {
	// An HTTP method is a token per RFC 7230 section 3.2.6, the same
	// grammar as a header field name.
	return httpguts.ValidHeaderFieldName(method)
}

// hasPort reports whether a string of the form "host", "host:port", or
// "[ipv6::address]:port" includes a port.
func hasPort(s string) bool { return strings.LastIndex(s, ":") > strings.LastIndex(s, "]") }

// removeEmptyPort strips the empty port in ":port" to "" as mandated by
// RFC 3986 Section 6.2.3.
func removeEmptyPort(host string) string {
	if hasPort(host) {
		return strings.TrimSuffix(host, ":")
	}
	return host
}
