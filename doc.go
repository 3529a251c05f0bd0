// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package pipeline provides a composable middleware chain for outbound
HTTP requests.

A Pipeline is an ordered list of policies terminating in a transport.
Each policy can inspect or rewrite the request on the way down, delegate
to the rest of the chain, and inspect or transform the response or error
on the way back up. Build a Pipeline once and share it between any
number of concurrent callers.

	t, err := transport.New(transport.Options{})
	...
	p := pipeline.New(t,
		rewrite.Protocol("https", false),
		rewrite.RequestID(),
		retry.Default,
		timeout.Fixed(5*time.Second),
		logging.New(nil),
	)
	resp, err := p.Get(ctx, "https://www.example.com")
	...
	body, err := resp.Buffer().Bytes(ctx)

Policies run in declaration order on the outbound path and in reverse
order on the inbound path. In the chain above, the protocol and
request-ID rewriters see every logical request once, while the timeout
and logging policies, sitting below the retry policy, run once per
attempt.

Write custom middleware by implementing Policy, or by wrapping an
ordinary function with PolicyFunc:

	audit := pipeline.PolicyFunc(func(x *pipeline.Exchange, next *pipeline.Next) (message.Response, error) {
		x.Request().Headers().Set("X-Team", "platform")
		return next.Do()
	})

A policy may decline to call next at all, short-circuiting the chain
(for example, to serve a response from a cache). Calling the same
continuation twice is forbidden; a policy that re-sends, such as the
retry policy in package retry, clones the continuation for each fresh
attempt.

Subpackages provide the pieces a typical client assembles: package
message defines the request and response value types and response
buffering; package transport implements the terminal network stage over
net/http; packages rewrite, retry, timeout, and logging provide
built-in policies.
*/
package pipeline
