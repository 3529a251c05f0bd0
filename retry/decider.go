// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gogama/pipeline/transient"
)

// A Decider decides if a retry should be done.
//
// Implementations of Decider must be safe for concurrent use by
// multiple goroutines.
//
// Use the built-in constructors Times, StatusCode, and Before, and the
// built-in decider TransientErr; or implement your own. Use DeciderFunc
// to convert an ordinary function into a Decider, and to compose
// deciders logically with DeciderFunc.And and DeciderFunc.Or.
type Decider interface {
	Decide(s *State) bool
}

// The DeciderFunc type is an adapter to allow the use of ordinary
// functions as retry deciders. It implements the Decider interface and
// also provides the logical composition methods And and Or.
//
// Every DeciderFunc must be safe for concurrent use by multiple
// goroutines.
type DeciderFunc func(s *State) bool

// DefaultTimes is the number of times the Default policy will retry.
const DefaultTimes = 5

// DefaultDecider is a general-purpose retry decider suitable for
// common use cases. It allows up to DefaultTimes retries, and retries
// on a transient error (TransientErr) or on a response with one of the
// status codes 429 (Too Many Requests), 502 (Bad Gateway), 503
// (Service Unavailable), or 504 (Gateway Timeout).
var DefaultDecider = Times(DefaultTimes).And(StatusCode(429, 502, 503, 504).Or(TransientErr))

// TransientErr is a decider that indicates a retry if the most recent
// attempt's error is transient according to transient.Categorize.
//
// TransientErr only looks at the error, so it always returns false when
// a valid response was received. Compose it with other deciders, for
// example one constructed with StatusCode, for more complex behavior.
var TransientErr DeciderFunc = transientErr

// Decide returns true if a retry should be done, and false otherwise,
// after examining the current call state.
func (f DeciderFunc) Decide(s *State) bool {
	return f(s)
}

// And composes two retry deciders into a new decider which returns
// true if both sub-deciders return true, and false otherwise.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// false.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(s *State) bool {
		return f(s) && g(s)
	}
}

// Or composes two retry deciders into a new decider which returns true
// if either of the two sub-deciders returns true, but false if they
// both return false.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// true.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(s *State) bool {
		return f(s) || g(s)
	}
}

// Times constructs a retry decider which allows up to n retries. The
// returned decider returns true while the attempt index s.Attempt is
// less than n, and false otherwise.
func Times(n int) DeciderFunc {
	return func(s *State) bool {
		return s.Attempt < n
	}
}

// Before constructs a retry decider allowing retries until a certain
// amount of time has elapsed since the call's first attempt began. The
// returned decider returns true while the call duration is less than
// d, and false afterward.
func Before(d time.Duration) DeciderFunc {
	return func(s *State) bool {
		return s.Duration() < d
	}
}

// StatusCode constructs a retry decider allowing retries based on the
// response status code. If the most recent attempt received a valid
// response and its status code is contained in the list ss, the
// decider returns true. Otherwise, it returns false.
func StatusCode(ss ...int) DeciderFunc {
	ss2 := make([]int, len(ss))
	copy(ss2, ss)
	return func(s *State) bool {
		for _, code := range ss2 {
			if s.StatusCode() == code {
				return true
			}
		}
		return false
	}
}

func transientErr(s *State) bool {
	return transient.Categorize(s.Err) != transient.Not
}
