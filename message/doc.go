// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package message contains the request and response value types exchanged
through an HTTP pipeline.

A Request describes a logical outbound HTTP request: a method, a URL,
an ordered set of headers, and an optional body producer. Unlike the
lower-level http.Request from net/http, a Request is cheap to clone and
safe to replay, so a single Request can back multiple wire-level
attempts (for example when a retry policy re-sends it).

A Response describes the outcome of a request. The raw response body is
a single-consumption stream; use Buffer to obtain a response whose body
can be read any number of times from a memoized in-memory copy.

Headers preserve insertion order and the casing of the first occurrence
of each name, while matching names case-insensitively, as HTTP requires.
*/
package message
