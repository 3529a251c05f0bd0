// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"context"
	"time"

	"github.com/gogama/pipeline"
	"github.com/gogama/pipeline/message"
)

// Fixed returns a policy that applies the same deadline d to every
// traversal of the downstream chain. Fixed panics if d is not
// positive.
//
// The deadline covers the network call and the reading of the response
// body: on success the policy returns a buffered response whose body
// was fetched within the deadline, because the deadline's context is
// released when the traversal ends and cannot govern a live body
// stream afterward. A timeout surfaces as a context.DeadlineExceeded
// error from the downstream stage, which package transient categorizes
// as a Timeout.
//
// The policy derives a child context with the deadline, installs it on
// the exchange for the downstream stages, and restores the previous
// context on the way back up, so the deadline never outlives the
// traversal it bounds.
func Fixed(d time.Duration) pipeline.Policy {
	if d <= 0 {
		panic("pipeline/timeout: non-positive timeout")
	}
	return pipeline.PolicyFunc(func(x *pipeline.Exchange, next *pipeline.Next) (message.Response, error) {
		prev := x.Context()
		ctx, cancel := context.WithTimeout(prev, d)
		defer cancel()
		x.SetContext(ctx)
		defer x.SetContext(prev)
		resp, err := next.Do()
		if err != nil {
			return nil, err
		}
		buffered := resp.Buffer()
		if _, err := buffered.Bytes(ctx); err != nil {
			return nil, err
		}
		return buffered, nil
	})
}
