// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package rewrite

import (
	"github.com/google/uuid"

	"github.com/gogama/pipeline"
	"github.com/gogama/pipeline/message"
)

// RequestIDHeader is the header stamped by the RequestID policy.
const RequestIDHeader = "X-Request-Id"

// Header returns a policy that sets the given header on every request
// before delegating, overwriting any existing value.
func Header(name, value string) pipeline.Policy {
	return pipeline.PolicyFunc(func(x *pipeline.Exchange, next *pipeline.Next) (message.Response, error) {
		x.Request().Headers().Set(name, value)
		return next.Do()
	})
}

// UserAgent returns a policy that sets the User-Agent header on every
// request. It is shorthand for Header("User-Agent", ua).
func UserAgent(ua string) pipeline.Policy {
	return Header("User-Agent", ua)
}

// RequestID returns a policy that stamps each request with a unique
// X-Request-Id header for correlation with server-side logs. A request
// that already carries the header passes through unchanged, so callers
// can supply their own IDs.
func RequestID() pipeline.Policy {
	return pipeline.PolicyFunc(func(x *pipeline.Exchange, next *pipeline.Next) (message.Response, error) {
		h := x.Request().Headers()
		if !h.Has(RequestIDHeader) {
			h.Set(RequestIDHeader, uuid.NewString())
		}
		return next.Do()
	})
}
