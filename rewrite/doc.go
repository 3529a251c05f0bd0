// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package rewrite provides built-in policies that rewrite the outbound
request before delegating to the rest of the pipeline.

Each policy here is a configuration-only transformer: it holds no
per-call state, is idempotent, and is safe for concurrent use. Order
matters; for example a Host policy placed after a Protocol policy sees
the already-rewritten scheme.

If a URL rewrite produces a malformed URL, the call fails with a
*MalformedURLError returned through the chain; the transport is never
invoked for that call.
*/
package rewrite
