// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package rewrite

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogama/pipeline"
	"github.com/gogama/pipeline/message"
)

func captureHeaders(captured **message.Headers) pipeline.Transport {
	return pipeline.TransportFunc(func(ctx context.Context, req *message.Request) (message.Response, error) {
		*captured = req.Headers().Clone()
		return message.NewResponse(req, 200, nil, nil)
	})
}

func TestHeader(t *testing.T) {
	var captured *message.Headers
	p := pipeline.New(captureHeaders(&captured), Header("X-Env", "prod"))
	req, err := message.NewRequest("GET", "http://example.com")
	require.NoError(t, err)
	req.Headers().Set("X-Env", "dev")
	_, err = p.Send(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "prod", captured.Get("X-Env"))
}

func TestUserAgent(t *testing.T) {
	var captured *message.Headers
	p := pipeline.New(captureHeaders(&captured), UserAgent("svc/1.2"))
	req, err := message.NewRequest("GET", "http://example.com")
	require.NoError(t, err)
	_, err = p.Send(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "svc/1.2", captured.Get("User-Agent"))
}

func TestRequestID(t *testing.T) {
	t.Run("stamps missing ID", func(t *testing.T) {
		var captured *message.Headers
		p := pipeline.New(captureHeaders(&captured), RequestID())
		req, err := message.NewRequest("GET", "http://example.com")
		require.NoError(t, err)
		_, err = p.Send(context.Background(), req)
		require.NoError(t, err)
		id := captured.Get(RequestIDHeader)
		_, err = uuid.Parse(id)
		assert.NoError(t, err, "header %q should hold a UUID, got %q", RequestIDHeader, id)
	})
	t.Run("keeps caller-supplied ID", func(t *testing.T) {
		var captured *message.Headers
		p := pipeline.New(captureHeaders(&captured), RequestID())
		req, err := message.NewRequest("GET", "http://example.com")
		require.NoError(t, err)
		req.Headers().Set(RequestIDHeader, "my-id")
		_, err = p.Send(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "my-id", captured.Get(RequestIDHeader))
	})
}
