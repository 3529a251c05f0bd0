// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout provides a pipeline policy that bounds how long the
// downstream remainder of the chain, including the transport's network
// call, may take.
//
// Placed below a retry policy, the timeout applies to each attempt
// individually; placed above it, the timeout bounds the whole call
// including retry waits.
package timeout
