// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gogama/pipeline/message"
	"github.com/gogama/pipeline/transient"
)

// State is the retry policy's view of a call in progress: the outcome
// of the most recent attempt plus counters accumulated across the
// call. Deciders and waiters read it to make their decisions; they
// must not modify it.
type State struct {
	// Attempt is the zero-based number of the most recent attempt:
	// zero for the initial attempt, one for the first retry, and so
	// on.
	Attempt int

	// AttemptTimeouts is the number of attempts within this call that
	// ended in a timeout.
	AttemptTimeouts int

	// Start is the time the first attempt began.
	Start time.Time

	// Response is the response received by the most recent attempt,
	// or nil if the attempt ended in an error.
	Response message.Response

	// Err is the error the most recent attempt ended in, or nil if it
	// produced a response.
	Err error
}

// StatusCode returns the status code of the most recent attempt's
// response, or 0 if the attempt ended in an error.
func (s *State) StatusCode() int {
	if s.Response == nil {
		return 0
	}
	return s.Response.StatusCode()
}

// Duration returns the time elapsed since the first attempt began.
func (s *State) Duration() time.Duration {
	return time.Since(s.Start)
}

// Timeout reports whether the most recent attempt ended in a timeout
// error, as categorized by package transient.
func (s *State) Timeout() bool {
	return transient.Categorize(s.Err) == transient.Timeout
}
