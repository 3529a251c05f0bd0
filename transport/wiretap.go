// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httputil"
)

// tapRequest dumps the outbound request head and body to the logger.
// DumpRequestOut rewinds the body through GetBody, so the dump does not
// consume the request.
func (t *HTTP) tapRequest(ctx context.Context, hr *http.Request) {
	if !t.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	dump, err := httputil.DumpRequestOut(hr, hr.GetBody != nil)
	if err != nil {
		t.logger.LogAttrs(ctx, slog.LevelDebug, "wiretap request dump failed",
			slog.String("error", err.Error()))
		return
	}
	t.logger.LogAttrs(ctx, slog.LevelDebug, "wiretap request",
		slog.String("dump", string(dump)))
}

// tapResponse dumps the response head to the logger. The body is not
// dumped: it is a live single-consumption stream belonging to the
// caller.
func (t *HTTP) tapResponse(ctx context.Context, hresp *http.Response) {
	if !t.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	dump, err := httputil.DumpResponse(hresp, false)
	if err != nil {
		t.logger.LogAttrs(ctx, slog.LevelDebug, "wiretap response dump failed",
			slog.String("error", err.Error()))
		return
	}
	t.logger.LogAttrs(ctx, slog.LevelDebug, "wiretap response",
		slog.String("dump", string(dump)))
}
