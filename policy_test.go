// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogama/pipeline/message"
)

func TestPolicyFunc(t *testing.T) {
	var gotX *Exchange
	var gotNext *Next
	f := PolicyFunc(func(x *Exchange, next *Next) (message.Response, error) {
		gotX = x
		gotNext = next
		return nil, nil
	})
	x := &Exchange{}
	n := &Next{run: func() (message.Response, error) { return nil, nil }}
	_, err := f.Process(x, n)
	assert.NoError(t, err)
	assert.Same(t, x, gotX)
	assert.Same(t, n, gotNext)
}

func TestNextSingleTraversal(t *testing.T) {
	runs := 0
	n := &Next{run: func() (message.Response, error) {
		runs++
		return nil, nil
	}}
	_, err := n.Do()
	require.NoError(t, err)
	assert.Equal(t, 1, runs)

	_, err = n.Do()
	assert.Same(t, ErrTraversed, err)
	assert.Equal(t, 1, runs)
}

func TestNextClone(t *testing.T) {
	runs := 0
	n := &Next{run: func() (message.Response, error) {
		runs++
		return nil, nil
	}}
	_, err := n.Do()
	require.NoError(t, err)

	n2 := n.Clone()
	_, err = n2.Do()
	require.NoError(t, err)
	assert.Equal(t, 2, runs)

	_, err = n2.Do()
	assert.Same(t, ErrTraversed, err)
}
