// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry provides a pipeline policy that re-sends failed
// request attempts, with flexible control over when to retry and how
// long to wait between attempts.
//
// A retry policy is assembled from a decision-maker, Decider, and a
// wait time calculator, Waiter. Both have constructors for common use
// cases, so that a useful policy can be quickly built:
//
//	decider := retry.Times(3).
//	    And(retry.Before(5 * time.Second)).
//	    And(retry.StatusCode(500).Or(retry.TransientErr))
//	waiter := retry.NewExpWaiter(100*time.Millisecond, 2*time.Second, time.Now())
//	policy := retry.New(decider, waiter)
//
// The policy honors the pipeline's single-traversal contract: it never
// re-invokes a continuation, but clones a fresh one for every attempt,
// and it clones the request per attempt so downstream rewrites on one
// attempt cannot leak into the next.
package retry
