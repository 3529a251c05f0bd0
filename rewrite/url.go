// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package rewrite

import (
	"fmt"
	urlpkg "net/url"

	"github.com/gogama/pipeline"
	"github.com/gogama/pipeline/message"
)

// A MalformedURLError reports that a URL rewrite produced an invalid
// URL. It is returned through the pipeline as the call's failure, so a
// bad rewrite aborts the chain for that call without reaching the
// transport.
type MalformedURLError struct {
	URL    string
	Detail string
}

func (e *MalformedURLError) Error() string {
	return fmt.Sprintf("pipeline/rewrite: malformed url %q: %s", e.URL, e.Detail)
}

// Protocol returns a policy that rewrites the request URL's scheme.
//
// If overwrite is true, the scheme is always set to the configured
// value. If overwrite is false, the scheme is set only when the URL has
// no scheme; a URL that already carries one passes through unchanged.
func Protocol(scheme string, overwrite bool) pipeline.Policy {
	return pipeline.PolicyFunc(func(x *pipeline.Exchange, next *pipeline.Next) (message.Response, error) {
		u := x.Request().URL()
		if overwrite || u.Scheme == "" {
			u.Scheme = scheme
			if !validScheme(scheme) {
				return nil, &MalformedURLError{
					URL:    u.String(),
					Detail: fmt.Sprintf("invalid scheme %q", scheme),
				}
			}
			x.Request().SetURL(u)
		}
		return next.Do()
	})
}

// Host returns a policy that unconditionally rewrites the request
// URL's host to the configured value, leaving scheme, path, and query
// untouched.
func Host(host string) pipeline.Policy {
	return pipeline.PolicyFunc(func(x *pipeline.Exchange, next *pipeline.Next) (message.Response, error) {
		u := x.Request().URL()
		u.Host = host
		if err := checkHost(u); err != nil {
			return nil, err
		}
		x.Request().SetURL(u)
		return next.Do()
	})
}

// checkHost verifies that the rewritten URL survives a round trip
// through the parser with its host intact. A host containing a path
// separator or other reserved characters would otherwise leak into
// adjacent URL components.
func checkHost(u *urlpkg.URL) error {
	if u.Host == "" {
		return &MalformedURLError{URL: u.String(), Detail: "empty host"}
	}
	s := u.String()
	u2, err := urlpkg.Parse(s)
	if err != nil {
		return &MalformedURLError{URL: s, Detail: err.Error()}
	}
	if u2.Host != u.Host {
		return &MalformedURLError{
			URL:    s,
			Detail: fmt.Sprintf("invalid host %q", u.Host),
		}
	}
	return nil
}

// validScheme reports whether s is a valid URL scheme per RFC 3986
// section 3.1: ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ).
func validScheme(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z':
		case ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.') && i > 0:
		default:
			return false
		}
	}
	return true
}
