// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"errors"
	"syscall"
)

// A Category is the transience category of an error, as reported by
// Categorize.
//
// The category Not means a retry after encountering the error is very
// unlikely to succeed. Every other category means a retry has some
// prospect of success.
type Category int

const (
	// Not indicates any non-transient error.
	Not Category = iota
	// Timeout indicates a client-side timeout. The server may be going
	// through a temporary period of slowness, or a future attempt may
	// succeed with a longer timeout.
	//
	// Categorize returns Timeout if the error, or any of its wrapped
	// causes, has a Timeout() method that reports true.
	Timeout
	// ConnRefused indicates the remote host refused the connection
	// (POSIX ECONNREFUSED).
	//
	// Refusal can be a permanent condition, but it also happens while
	// the remote service is starting or restarting and not yet
	// listening on its port, so it is classified as transient.
	//
	// Categorize returns ConnRefused if the error is not a Timeout and
	// the error, or any of its wrapped causes, equals
	// syscall.ECONNREFUSED.
	ConnRefused
	// ConnReset indicates the remote host sent an RST on a previously
	// active TCP connection (POSIX ECONNRESET).
	//
	// Resets commonly occur when a service instance is stopped while
	// responding, or when the remote host is a load balancer shedding
	// connections, so a retry has a high probability of success.
	//
	// Categorize returns ConnReset if the error is not a Timeout and
	// the error, or any of its wrapped causes, equals
	// syscall.ECONNRESET.
	ConnReset
)

// Categorize returns the transience category of the given error. A nil
// error, and any error that is not transient from the perspective of
// completing an HTTP request attempt, produce the return value Not.
//
// Categorize examines wrapped causes within err, not just err itself.
// It never consults a Temporary() method, as the semantics of
// Temporary() aren't entirely clear.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var t hasTimeout
	if errors.As(err, &t) && t.Timeout() {
		return Timeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if errno == syscall.ECONNRESET {
			return ConnReset
		} else if errno == syscall.ECONNREFUSED {
			return ConnRefused
		}
	}

	return Not
}

type hasTimeout interface {
	Timeout() bool
}
