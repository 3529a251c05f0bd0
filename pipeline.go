// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/gogama/pipeline/message"
)

const nilCtxMsg = "pipeline: nil context"

// A Transport performs the actual network I/O at the end of a
// pipeline. It is the terminal stage: every policy runs before it on
// the outbound path and after it on the inbound path.
//
// Implementations of Transport must be safe for concurrent use by
// multiple goroutines, must honor cancellation of ctx, and must own the
// life cycle of any connection they use, releasing it exactly once per
// call on both success and failure paths.
type Transport interface {
	Send(ctx context.Context, req *message.Request) (message.Response, error)
}

// The TransportFunc type is an adapter to allow the use of ordinary
// functions as transports.
type TransportFunc func(ctx context.Context, req *message.Request) (message.Response, error)

// Send calls f(ctx, req).
func (f TransportFunc) Send(ctx context.Context, req *message.Request) (message.Response, error) {
	return f(ctx, req)
}

// A Pipeline is an immutable ordered chain of policies terminating in
// a transport.
//
// A Pipeline is constructed once, when a client is built, and reused
// concurrently by any number of callers. Each Send gets an independent
// continuation chain and a fresh Exchange, so concurrent calls never
// share per-call state.
//
// For a single call, policies run in declaration order on the outbound
// path and in exactly the reverse order on the inbound path, the usual
// nested-middleware semantics. Any failure short-circuits the chain:
// an error before the transport prevents the transport and everything
// below the failing policy from running, and an error during
// post-processing propagates upward exactly like an error return from
// a nested function call.
type Pipeline struct {
	policies  []Policy
	transport Transport
}

// New constructs a Pipeline from an ordered list of policies and a
// terminal transport. New panics if transport or any policy is nil.
//
// The policy slice is copied, so the caller may reuse or modify it
// afterward.
func New(transport Transport, policies ...Policy) *Pipeline {
	if transport == nil {
		panic("pipeline: nil transport")
	}
	ps := make([]Policy, len(policies))
	for i, p := range policies {
		if p == nil {
			panic("pipeline: nil policy")
		}
		ps[i] = p
	}
	return &Pipeline{policies: ps, transport: transport}
}

// Send passes a request through the pipeline and returns the final
// response or error.
//
// Send creates a fresh Exchange for the call, threads it through every
// policy in declaration order, and invokes the transport at the end of
// the chain. The ctx governs the entire call, including any retry
// waiting done by policies; cancelling it propagates down the chain
// and aborts the in-flight attempt.
//
// On success the returned response's raw body is a single-consumption
// stream which the caller must close, or buffer with Response.Buffer,
// so the underlying connection can be reused.
func (p *Pipeline) Send(ctx context.Context, req *message.Request) (message.Response, error) {
	if ctx == nil {
		return nil, errors.New(nilCtxMsg)
	}
	if req == nil {
		return nil, errors.New("pipeline: nil request")
	}
	x := &Exchange{
		ctx: ctx,
		req: req,
		id:  uuid.NewString(),
	}
	return p.next(x, 0).Do()
}

// next builds the continuation for stage i of the chain on behalf of
// exchange x. Every traversal constructs the downstream continuations
// afresh, which is what lets a cloned Next re-run the remainder of the
// chain with new single-traversal guards at each stage.
func (p *Pipeline) next(x *Exchange, i int) *Next {
	return &Next{run: func() (message.Response, error) {
		if i == len(p.policies) {
			return p.transport.Send(x.Context(), x.Request())
		}
		return p.policies[i].Process(x, p.next(x, i+1))
	}}
}

// Get issues a GET to the specified URL through the pipeline.
//
// To send a request with custom headers, use message.NewRequest and
// Send.
func (p *Pipeline) Get(ctx context.Context, url string) (message.Response, error) {
	req, err := message.NewRequest("GET", url)
	if err != nil {
		return nil, err
	}
	return p.Send(ctx, req)
}

// Head issues a HEAD to the specified URL through the pipeline.
func (p *Pipeline) Head(ctx context.Context, url string) (message.Response, error) {
	req, err := message.NewRequest("HEAD", url)
	if err != nil {
		return nil, err
	}
	return p.Send(ctx, req)
}

// Post issues a POST to the specified URL through the pipeline.
//
// The body parameter may be nil for an empty body, or may be any of
// the types supported by message.BodyBytes, namely: string; []byte;
// io.Reader; and io.ReadCloser.
func (p *Pipeline) Post(ctx context.Context, url, contentType string, body interface{}) (message.Response, error) {
	b, err := message.BodyBytes(body)
	if err != nil {
		return nil, err
	}
	req, err := message.NewRequest("POST", url)
	if err != nil {
		return nil, err
	}
	req.Headers().Set("Content-Type", contentType)
	req.SetContent(b)
	return p.Send(ctx, req)
}
