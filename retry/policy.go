// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"io"
	"time"

	"github.com/gogama/pipeline"
	"github.com/gogama/pipeline/message"
)

// Default is a general-purpose retry policy suitable for common use
// cases. It is a composition of DefaultDecider for retry decisions and
// DefaultWaiter for wait time calculations.
var Default = New(DefaultDecider, DefaultWaiter)

// drainLimit bounds how much of a discarded attempt's body is read
// before closing it. Draining lets the transport reuse the connection;
// past this size abandoning it is cheaper than reading on.
const drainLimit = 256 << 10

// New composes a Decider and a Waiter into a retrying pipeline policy.
// New panics if either is nil.
//
// The returned policy runs an internal attempt loop: it traverses the
// downstream chain, consults the Decider on the outcome, and if a
// retry is due, waits for the Waiter's duration before traversing a
// freshly cloned continuation. Each attempt sends an independent clone
// of the original request, so header or URL rewrites made downstream
// during one attempt never leak into the next. The outcome of the
// final attempt, successful or not, is what propagates upstream.
//
// Waiting respects the call's context: cancellation or a deadline
// during the wait period aborts the call immediately with the
// context's error.
//
// Place per-attempt policies, such as a timeout.Fixed deadline, below
// the retry policy in the pipeline so they run once per attempt rather
// than once per call.
func New(d Decider, w Waiter) pipeline.Policy {
	if d == nil {
		panic("pipeline/retry: nil decider")
	}
	if w == nil {
		panic("pipeline/retry: nil waiter")
	}
	return &policy{decider: d, waiter: w}
}

type policy struct {
	decider Decider
	waiter  Waiter
}

func (p *policy) Process(x *pipeline.Exchange, next *pipeline.Next) (message.Response, error) {
	s := &State{Start: time.Now()}
	orig := x.Request()
	n := next
	for {
		x.SetRequest(orig.Clone())
		s.Response, s.Err = n.Do()
		if s.Timeout() {
			s.AttemptTimeouts++
		}
		if x.Context().Err() != nil || !p.decider.Decide(s) {
			return s.Response, s.Err
		}
		discard(x, s.Response)
		timer := time.NewTimer(p.waiter.Wait(s))
		select {
		case <-timer.C:
		case <-x.Context().Done():
			timer.Stop()
			return nil, x.Context().Err()
		}
		s.Attempt++
		s.Response, s.Err = nil, nil
		n = next.Clone()
	}
}

// discard drains and closes the body of an attempt's response before
// the attempt is retried, returning the underlying connection to the
// transport's pool.
func discard(x *pipeline.Exchange, resp message.Response) {
	if resp == nil {
		return
	}
	rc, err := resp.Body(x.Context())
	if err != nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, drainLimit))
	_ = rc.Close()
}
