// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package message

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// buffered decorates a Response so its body can be read any number of
// times. The underlying body is fetched into memory at most once, on
// first access; concurrent first readers all wait on the same in-flight
// fetch and share its result. A failed fetch is memoized too, so every
// reader, however late, observes the identical failure.
type buffered struct {
	inner Response

	start sync.Once
	done  chan struct{}
	body  []byte
	err   error
}

func newBuffered(inner Response) *buffered {
	return &buffered{
		inner: inner,
		done:  make(chan struct{}),
	}
}

func (b *buffered) Request() *Request {
	return b.inner.Request()
}

func (b *buffered) StatusCode() int {
	return b.inner.StatusCode()
}

func (b *buffered) Headers() *Headers {
	return b.inner.Headers()
}

func (b *buffered) Body(ctx context.Context) (io.ReadCloser, error) {
	p, err := b.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(p)), nil
}

func (b *buffered) Bytes(ctx context.Context) ([]byte, error) {
	return b.fetch(ctx)
}

func (b *buffered) Text(ctx context.Context, charset string) (string, error) {
	return decodeText(ctx, b, charset)
}

// Buffer returns b itself: buffering an already-buffered response is a
// no-op.
func (b *buffered) Buffer() Response {
	return b
}

// fetch reads the inner body exactly once and broadcasts the result to
// every waiter. The read runs on its own goroutine detached from any
// single caller's context, so a reader that gives up early cancels only
// its own wait, never the shared fetch.
func (b *buffered) fetch(ctx context.Context) ([]byte, error) {
	b.start.Do(func() {
		go func() {
			b.body, b.err = b.inner.Bytes(context.Background())
			close(b.done)
		}()
	})
	select {
	case <-b.done:
		return b.body, b.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
