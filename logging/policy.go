// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package logging provides a pipeline policy that records the outcome
// of each traversal passing through it.
//
// Placed below a retry policy the logger records every attempt; placed
// above it, only the final outcome of each call.
package logging

import (
	"log/slog"
	"time"

	"github.com/gogama/pipeline"
	"github.com/gogama/pipeline/message"
)

// New returns a policy that logs each traversal to logger. A nil
// logger means slog.Default().
//
// Requests are logged at debug level before delegation; outcomes are
// logged at debug level on success and warn level on error, with the
// latency of the downstream traversal and the exchange ID for
// correlation. The policy never recovers or swallows an error; it
// observes and passes it through unchanged.
func New(logger *slog.Logger) pipeline.Policy {
	if logger == nil {
		logger = slog.Default()
	}
	return &policy{logger: logger}
}

type policy struct {
	logger *slog.Logger
}

func (p *policy) Process(x *pipeline.Exchange, next *pipeline.Next) (message.Response, error) {
	ctx := x.Context()
	req := x.Request()
	p.logger.LogAttrs(ctx, slog.LevelDebug, "sending request",
		slog.String("exchange", x.ID()),
		slog.String("method", req.Method()),
		slog.String("url", req.URL().String()),
	)
	start := time.Now()
	resp, err := next.Do()
	latency := time.Since(start)
	if err != nil {
		p.logger.LogAttrs(ctx, slog.LevelWarn, "request failed",
			slog.String("exchange", x.ID()),
			slog.String("method", req.Method()),
			slog.String("url", req.URL().String()),
			slog.Duration("latency", latency),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	p.logger.LogAttrs(ctx, slog.LevelDebug, "received response",
		slog.String("exchange", x.ID()),
		slog.Int("status", resp.StatusCode()),
		slog.Duration("latency", latency),
	)
	return resp, nil
}
