// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"

	"github.com/gogama/pipeline/message"
)

// An Exchange carries the per-call state of one request traveling
// through a pipeline: the call's context, the current request, a unique
// exchange ID, and an open-ended bag of out-of-band values.
//
// A fresh Exchange is created for every Send, and is only ever touched
// by the single logical call it belongs to, so policies may freely
// mutate it. Two concurrent calls through the same pipeline never
// observe each other's exchanges.
type Exchange struct {
	ctx  context.Context
	req  *message.Request
	id   string
	data context.Context
}

// Context returns the context governing this call. It is never nil.
// Policies that scope a deadline to part of the chain swap in a derived
// context with SetContext and restore the previous one afterward.
func (x *Exchange) Context() context.Context {
	return x.ctx
}

// SetContext replaces the context governing the downstream remainder of
// this call. The context must be non-nil and must be derived from the
// context it replaces, so that the caller's cancellation always
// propagates to the transport.
func (x *Exchange) SetContext(ctx context.Context) {
	if ctx == nil {
		panic("pipeline: nil context")
	}
	x.ctx = ctx
}

// Request returns the request as it currently stands for this call. It
// is never nil. Policies may mutate the returned request's headers in
// place, or replace the request wholesale with SetRequest.
func (x *Exchange) Request() *message.Request {
	return x.req
}

// SetRequest replaces the request for the downstream remainder of this
// call. The request must be non-nil.
func (x *Exchange) SetRequest(req *message.Request) {
	if req == nil {
		panic("pipeline: nil request")
	}
	x.req = req
}

// ID returns the unique identifier assigned to this call when it
// entered the pipeline. It is stable across retry attempts within the
// call and is intended for correlation in logs and diagnostics.
func (x *Exchange) ID() string {
	return x.id
}

// SetValue stores an out-of-band value on the exchange, for
// communication between cooperating policies within a single call.
//
// The key must follow the same rules as the key parameter in
// context.WithValue, namely it:
//
// • may not be nil;
//
// • must be comparable;
//
// • should not be of type string or any other built-in type, to avoid
// collisions between unrelated policies storing data on the same
// exchange.
func (x *Exchange) SetValue(key, value interface{}) {
	ctx := x.data
	if ctx == nil {
		ctx = context.Background()
	}
	x.data = context.WithValue(ctx, key, value)
}

// Value returns the out-of-band value associated with key on this
// exchange, or nil if there is none.
func (x *Exchange) Value(key interface{}) interface{} {
	ctx := x.data
	if ctx == nil {
		return nil
	}
	return ctx.Value(key)
}
