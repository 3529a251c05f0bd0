// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/gogama/pipeline/message"
)

// tracePolicy records its outbound and inbound traversals on a shared
// log protected by mu.
type tracePolicy struct {
	name string
	mu   *sync.Mutex
	log  *[]string
}

func (p tracePolicy) Process(x *Exchange, next *Next) (message.Response, error) {
	p.record(p.name + ".pre")
	resp, err := next.Do()
	p.record(p.name + ".post")
	return resp, err
}

func (p tracePolicy) record(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	*p.log = append(*p.log, s)
}

func okTransport(status int, body string) TransportFunc {
	return func(ctx context.Context, req *message.Request) (message.Response, error) {
		return message.NewResponse(req, status, nil, io.NopCloser(strings.NewReader(body)))
	}
}

func newTestRequest(t *testing.T) *message.Request {
	t.Helper()
	req, err := message.NewRequest("GET", "http://example.com")
	require.NoError(t, err)
	return req
}

func TestNew(t *testing.T) {
	t.Run("nil transport panics", func(t *testing.T) {
		assert.Panics(t, func() { New(nil) })
	})
	t.Run("nil policy panics", func(t *testing.T) {
		assert.Panics(t, func() { New(okTransport(200, ""), nil) })
	})
	t.Run("policy slice is copied", func(t *testing.T) {
		var mu sync.Mutex
		var log []string
		ps := []Policy{tracePolicy{"A", &mu, &log}}
		p := New(okTransport(200, ""), ps...)
		ps[0] = nil
		_, err := p.Send(context.Background(), newTestRequest(t))
		assert.NoError(t, err)
		assert.Equal(t, []string{"A.pre", "A.post"}, log)
	})
}

func TestSendOrdering(t *testing.T) {
	var mu sync.Mutex
	var log []string
	transport := TransportFunc(func(ctx context.Context, req *message.Request) (message.Response, error) {
		mu.Lock()
		log = append(log, "T")
		mu.Unlock()
		return message.NewResponse(req, 200, nil, nil)
	})
	p := New(transport, tracePolicy{"A", &mu, &log}, tracePolicy{"B", &mu, &log})

	resp, err := p.Send(context.Background(), newTestRequest(t))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode())
	assert.Equal(t, []string{"A.pre", "B.pre", "T", "B.post", "A.post"}, log)
}

func TestSendShortCircuit(t *testing.T) {
	t.Run("error before next skips transport", func(t *testing.T) {
		boom := errors.New("boom")
		transportRan := false
		transport := TransportFunc(func(ctx context.Context, req *message.Request) (message.Response, error) {
			transportRan = true
			return message.NewResponse(req, 200, nil, nil)
		})
		failing := PolicyFunc(func(x *Exchange, next *Next) (message.Response, error) {
			return nil, boom
		})
		var observed error
		observer := PolicyFunc(func(x *Exchange, next *Next) (message.Response, error) {
			resp, err := next.Do()
			observed = err
			return resp, err
		})
		p := New(transport, observer, failing)
		resp, err := p.Send(context.Background(), newTestRequest(t))
		assert.Nil(t, resp)
		assert.Same(t, boom, err)
		assert.Same(t, boom, observed)
		assert.False(t, transportRan)
	})
	t.Run("response without next skips transport", func(t *testing.T) {
		transportRan := false
		transport := TransportFunc(func(ctx context.Context, req *message.Request) (message.Response, error) {
			transportRan = true
			return message.NewResponse(req, 200, nil, nil)
		})
		cached := PolicyFunc(func(x *Exchange, next *Next) (message.Response, error) {
			return message.NewResponse(x.Request(), 304, nil, nil)
		})
		p := New(transport, cached)
		resp, err := p.Send(context.Background(), newTestRequest(t))
		require.NoError(t, err)
		assert.Equal(t, 304, resp.StatusCode())
		assert.False(t, transportRan)
	})
	t.Run("post-processing failure propagates", func(t *testing.T) {
		boom := errors.New("post boom")
		translating := PolicyFunc(func(x *Exchange, next *Next) (message.Response, error) {
			resp, err := next.Do()
			if err != nil {
				return nil, err
			}
			if resp.StatusCode() >= 500 {
				return nil, boom
			}
			return resp, nil
		})
		p := New(okTransport(503, ""), translating)
		resp, err := p.Send(context.Background(), newTestRequest(t))
		assert.Nil(t, resp)
		assert.Same(t, boom, err)
	})
}

func TestSendDoubleTraversal(t *testing.T) {
	greedy := PolicyFunc(func(x *Exchange, next *Next) (message.Response, error) {
		if _, err := next.Do(); err != nil {
			return nil, err
		}
		return next.Do()
	})
	p := New(okTransport(200, ""), greedy)
	resp, err := p.Send(context.Background(), newTestRequest(t))
	assert.Nil(t, resp)
	assert.Same(t, ErrTraversed, err)
}

func TestSendArguments(t *testing.T) {
	p := New(okTransport(200, ""))
	t.Run("nil context", func(t *testing.T) {
		var nilCtx context.Context
		resp, err := p.Send(nilCtx, newTestRequest(t))
		assert.Nil(t, resp)
		assert.EqualError(t, err, nilCtxMsg)
	})
	t.Run("nil request", func(t *testing.T) {
		resp, err := p.Send(context.Background(), nil)
		assert.Nil(t, resp)
		assert.Error(t, err)
	})
}

type isolationKey struct{}

func TestSendConcurrentIsolation(t *testing.T) {
	// Each call stamps its own value and request header; no call may
	// ever observe another call's data.
	stamp := PolicyFunc(func(x *Exchange, next *Next) (message.Response, error) {
		id := x.Request().Headers().Get("X-Call")
		x.SetValue(isolationKey{}, id)
		return next.Do()
	})
	check := PolicyFunc(func(x *Exchange, next *Next) (message.Response, error) {
		id := x.Request().Headers().Get("X-Call")
		if v := x.Value(isolationKey{}); v != id {
			return nil, fmt.Errorf("call %q observed foreign value %v", id, v)
		}
		if xid := x.ID(); xid == "" {
			return nil, errors.New("missing exchange ID")
		}
		return next.Do()
	})
	transport := TransportFunc(func(ctx context.Context, req *message.Request) (message.Response, error) {
		return message.NewResponse(req, 200, nil, io.NopCloser(strings.NewReader(req.Headers().Get("X-Call"))))
	})
	p := New(transport, stamp, check)

	var g errgroup.Group
	for i := 0; i < 32; i++ {
		id := fmt.Sprintf("call-%d", i)
		g.Go(func() error {
			req, err := message.NewRequest("GET", "http://example.com")
			if err != nil {
				return err
			}
			req.Headers().Set("X-Call", id)
			resp, err := p.Send(context.Background(), req)
			if err != nil {
				return err
			}
			b, err := resp.Bytes(context.Background())
			if err != nil {
				return err
			}
			if string(b) != id {
				return fmt.Errorf("call %q got body %q", id, b)
			}
			return nil
		})
	}
	assert.NoError(t, g.Wait())
}

func TestSendDistinctExchangeIDs(t *testing.T) {
	seen := make(map[string]bool)
	var mu sync.Mutex
	capture := PolicyFunc(func(x *Exchange, next *Next) (message.Response, error) {
		mu.Lock()
		seen[x.ID()] = true
		mu.Unlock()
		return next.Do()
	})
	p := New(okTransport(200, ""), capture)
	for i := 0; i < 5; i++ {
		_, err := p.Send(context.Background(), newTestRequest(t))
		require.NoError(t, err)
	}
	assert.Len(t, seen, 5)
}

func TestConvenienceMethods(t *testing.T) {
	var gotMethod, gotContentType, gotContentLength string
	var gotBody []byte
	transport := TransportFunc(func(ctx context.Context, req *message.Request) (message.Response, error) {
		gotMethod = req.Method()
		gotContentType = req.Headers().Get("Content-Type")
		gotContentLength = req.Headers().Get("Content-Length")
		if b := req.Body(); b != nil {
			rc, err := b.Reader()
			if err != nil {
				return nil, err
			}
			gotBody, _ = io.ReadAll(rc)
			_ = rc.Close()
		}
		return message.NewResponse(req, 200, nil, nil)
	})
	p := New(transport)

	t.Run("Get", func(t *testing.T) {
		_, err := p.Get(context.Background(), "http://example.com")
		require.NoError(t, err)
		assert.Equal(t, "GET", gotMethod)
	})
	t.Run("Head", func(t *testing.T) {
		_, err := p.Head(context.Background(), "http://example.com")
		require.NoError(t, err)
		assert.Equal(t, "HEAD", gotMethod)
	})
	t.Run("Post", func(t *testing.T) {
		_, err := p.Post(context.Background(), "http://example.com", "text/plain", "hello")
		require.NoError(t, err)
		assert.Equal(t, "POST", gotMethod)
		assert.Equal(t, "text/plain", gotContentType)
		assert.Equal(t, "5", gotContentLength)
		assert.Equal(t, []byte("hello"), gotBody)
	})
	t.Run("Post bad body type", func(t *testing.T) {
		_, err := p.Post(context.Background(), "http://example.com", "text/plain", 37)
		assert.Error(t, err)
	})
	t.Run("bad url", func(t *testing.T) {
		_, err := p.Get(context.Background(), "")
		assert.ErrorIs(t, err, message.ErrInvalidArgument)
	})
}
