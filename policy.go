// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"errors"
	"sync/atomic"

	"github.com/gogama/pipeline/message"
)

// ErrTraversed is returned by Next.Do when a policy invokes the same
// continuation more than once. A single continuation represents a
// single traversal of the downstream chain; a policy that needs
// multiple attempts must obtain a fresh continuation for each one with
// Next.Clone.
var ErrTraversed = errors.New("pipeline: continuation already traversed (use Clone for a fresh attempt)")

// A Policy is a unit of middleware in a pipeline. On the outbound path
// it may inspect or rewrite the request carried by the exchange; it
// then decides whether to delegate to the rest of the chain; and on the
// inbound path it may inspect, transform, or replace the response or
// error before returning it upstream.
//
// A Policy may call next zero times (short-circuiting the chain, for
// example on a cache hit), or once, passing through or post-processing
// the result. Calling the same continuation twice is an error; policies
// that re-send, such as a retry policy, clone the continuation for each
// fresh attempt.
//
// A Policy holds configuration only, never per-call state: the same
// Policy value is invoked concurrently for every call passing through
// a shared pipeline. Per-call data belongs on the Exchange.
//
// Errors a policy does not specifically handle must be passed through
// unchanged, so that every failure reaches the original caller.
type Policy interface {
	Process(x *Exchange, next *Next) (message.Response, error)
}

// The PolicyFunc type is an adapter to allow the use of ordinary
// functions as policies. If f is a function with the appropriate
// signature, PolicyFunc(f) is a Policy that calls f.
type PolicyFunc func(x *Exchange, next *Next) (message.Response, error)

// Process calls f(x, next).
func (f PolicyFunc) Process(x *Exchange, next *Next) (message.Response, error) {
	return f(x, next)
}

// A Next is the continuation handed to a policy: the rest of the
// chain, terminating in the transport. It may be traversed at most
// once; a second Do on the same Next returns ErrTraversed.
type Next struct {
	run  func() (message.Response, error)
	done uint32
}

// Do traverses the downstream chain and returns its result. Calling Do
// a second time on the same Next returns ErrTraversed without invoking
// anything downstream.
func (n *Next) Do() (message.Response, error) {
	if !atomic.CompareAndSwapUint32(&n.done, 0, 1) {
		return nil, ErrTraversed
	}
	return n.run()
}

// Clone returns a fresh, untraversed continuation over the same
// downstream chain. Policies that make multiple attempts, such as a
// retry policy, clone the continuation once per attempt.
func (n *Next) Clone() *Next {
	return &Next{run: n.run}
}
