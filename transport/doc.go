// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package transport implements the terminal stage of a pipeline: the
component that performs the actual network I/O, built on net/http.

Construct a transport with New, configuring it through Options. All
configuration problems, including an unsupported proxy type, are
reported by New, so they surface when the client is built rather than
on the first request.

	t, err := transport.New(transport.Options{
		Proxy:   &transport.ProxyConfig{Type: transport.ProxySOCKS5, Address: "localhost:1080"},
		Wiretap: true,
	})
*/
package transport
