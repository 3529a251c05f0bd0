// Copyright 2021 The pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	urlpkg "net/url"
	"strconv"
	"strings"

	"golang.org/x/net/proxy"

	"github.com/gogama/pipeline/message"
)

// A ProxyType identifies the protocol spoken to a forward proxy.
type ProxyType int

const (
	// ProxyHTTP tunnels requests through an HTTP CONNECT proxy.
	ProxyHTTP ProxyType = iota
	// ProxySOCKS4 identifies a SOCKS4 proxy. The transport recognizes
	// the type but does not implement the protocol, so configuring it
	// fails with an UnsupportedConfigurationError.
	ProxySOCKS4
	// ProxySOCKS5 tunnels connections through a SOCKS5 proxy.
	ProxySOCKS5
)

var proxyTypeNames = []string{"HTTP", "SOCKS4", "SOCKS5"}

// String returns the name of the proxy type.
func (t ProxyType) String() string {
	if t < 0 || int(t) >= len(proxyTypeNames) {
		return fmt.Sprintf("ProxyType(%d)", int(t))
	}
	return proxyTypeNames[t]
}

// A ProxyConfig directs the transport to reach the network through a
// forward proxy at the given address ("host:port").
type ProxyConfig struct {
	Type    ProxyType
	Address string
}

// An UnsupportedConfigurationError reports an Options value the
// transport cannot honor. It is returned by New, never at request
// time.
type UnsupportedConfigurationError struct {
	Setting string
	Detail  string
}

func (e *UnsupportedConfigurationError) Error() string {
	return fmt.Sprintf("pipeline/transport: unsupported %s configuration: %s", e.Setting, e.Detail)
}

// A DialFunc opens a network connection. It has the same contract as
// the DialContext field of net.Dialer.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Options configures a transport. The zero value is a valid
// configuration that sends requests directly using a default net/http
// client.
type Options struct {
	// Port, if non-zero, overrides the target port of every request
	// URL sent through the transport.
	Port int

	// Proxy, if non-nil, routes requests through a forward proxy.
	Proxy *ProxyConfig

	// Wiretap, if true, dumps every request and response head to the
	// Logger at debug level.
	Wiretap bool

	// Logger receives wiretap output. If Logger is nil,
	// slog.Default() is used.
	Logger *slog.Logger

	// Dialer, if non-nil, is used to open network connections instead
	// of a default net.Dialer. Supply it to run the transport's I/O on
	// externally managed connections.
	Dialer DialFunc

	// Client, if non-nil, is used to send requests instead of a client
	// assembled from the options above. Client may not be combined
	// with Proxy or Dialer.
	Client *http.Client
}

// HTTP is a pipeline transport that sends requests with a net/http
// client. It is safe for concurrent use by multiple goroutines.
//
// HTTP owns the life cycle of the connections it uses: a connection is
// returned to the client's pool when the response body is closed or
// fully consumed, exactly once per call, on both success and failure
// paths.
type HTTP struct {
	client  *http.Client
	port    int
	wiretap bool
	logger  *slog.Logger
}

// New constructs a transport from the given options. All configuration
// is validated here: an unsupported proxy type, an invalid port, or a
// contradictory combination of options is reported by New and never at
// request time.
func New(opts Options) (*HTTP, error) {
	if opts.Port < 0 || opts.Port > 65535 {
		return nil, &UnsupportedConfigurationError{
			Setting: "port",
			Detail:  fmt.Sprintf("%d out of range", opts.Port),
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := opts.Client
	if client != nil {
		if opts.Proxy != nil || opts.Dialer != nil {
			return nil, &UnsupportedConfigurationError{
				Setting: "client",
				Detail:  "Client may not be combined with Proxy or Dialer",
			}
		}
	} else {
		rt, err := roundTripper(opts)
		if err != nil {
			return nil, err
		}
		client = &http.Client{Transport: rt}
	}
	return &HTTP{
		client:  client,
		port:    opts.Port,
		wiretap: opts.Wiretap,
		logger:  logger,
	}, nil
}

// Send performs the network call for one request attempt. It returns
// the response with a live single-consumption body stream; the caller
// must close or buffer the body so the connection can be reused.
//
// Transport-level failures (connection refused, timeout, cancellation)
// are returned as-is, in the same form the net/http client reports
// them.
func (t *HTTP) Send(ctx context.Context, req *message.Request) (message.Response, error) {
	if ctx == nil {
		return nil, fmt.Errorf("pipeline/transport: nil context")
	}
	if req == nil {
		return nil, fmt.Errorf("pipeline/transport: nil request")
	}
	hr, err := t.toHTTP(ctx, req)
	if err != nil {
		return nil, err
	}
	if t.wiretap {
		t.tapRequest(ctx, hr)
	}
	hresp, err := t.client.Do(hr)
	if err != nil {
		return nil, err
	}
	if t.wiretap {
		t.tapResponse(ctx, hresp)
	}
	headers := message.NewHeaders()
	for name, values := range hresp.Header {
		if len(values) > 0 {
			headers.Set(name, values[len(values)-1])
		}
	}
	resp, err := message.NewResponse(req, hresp.StatusCode, headers, hresp.Body)
	if err != nil {
		_ = hresp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// CloseIdleConnections closes connections sitting idle in a
// "keep-alive" state in the underlying client's pool. It does not
// interrupt connections currently in use.
func (t *HTTP) CloseIdleConnections() {
	t.client.CloseIdleConnections()
}

func (t *HTTP) toHTTP(ctx context.Context, req *message.Request) (*http.Request, error) {
	u := req.URL()
	if t.port != 0 {
		u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(t.port))
	}
	hr, err := http.NewRequestWithContext(ctx, req.Method(), u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Headers().Each(func(name, value string) {
		hr.Header.Set(name, value)
	})
	if body := req.Body(); body != nil {
		rc, err := body.Reader()
		if err != nil {
			return nil, err
		}
		hr.Body = rc
		hr.GetBody = func() (io.ReadCloser, error) {
			return body.Reader()
		}
		hr.ContentLength = body.Length()
	}
	return hr, nil
}

func roundTripper(opts Options) (http.RoundTripper, error) {
	dial := opts.Dialer
	if dial == nil {
		d := &net.Dialer{}
		dial = d.DialContext
	}
	rt := &http.Transport{
		DialContext:       dial,
		ForceAttemptHTTP2: true,
	}
	if opts.Proxy == nil {
		return rt, nil
	}
	switch opts.Proxy.Type {
	case ProxyHTTP:
		u, err := proxyURL(opts.Proxy.Address)
		if err != nil {
			return nil, &UnsupportedConfigurationError{
				Setting: "proxy",
				Detail:  fmt.Sprintf("invalid HTTP proxy address %q", opts.Proxy.Address),
			}
		}
		rt.Proxy = http.ProxyURL(u)
		return rt, nil
	case ProxySOCKS5:
		if opts.Proxy.Address == "" {
			return nil, &UnsupportedConfigurationError{
				Setting: "proxy",
				Detail:  "empty SOCKS5 proxy address",
			}
		}
		d, err := proxy.SOCKS5("tcp", opts.Proxy.Address, nil, dialAdapter{dial})
		if err != nil {
			return nil, &UnsupportedConfigurationError{
				Setting: "proxy",
				Detail:  err.Error(),
			}
		}
		rt.DialContext = func(ctx context.Context, network, address string) (net.Conn, error) {
			if cd, ok := d.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, address)
			}
			return d.Dial(network, address)
		}
		return rt, nil
	case ProxySOCKS4:
		return nil, &UnsupportedConfigurationError{
			Setting: "proxy",
			Detail:  "SOCKS4 proxies are not supported",
		}
	default:
		return nil, &UnsupportedConfigurationError{
			Setting: "proxy",
			Detail:  fmt.Sprintf("unknown proxy type %s", opts.Proxy.Type),
		}
	}
}

func proxyURL(address string) (*urlpkg.URL, error) {
	if address == "" {
		return nil, fmt.Errorf("empty address")
	}
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}
	u, err := urlpkg.Parse(address)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, fmt.Errorf("no host in address")
	}
	return u, nil
}

// dialAdapter exposes a DialFunc through the proxy.Dialer and
// proxy.ContextDialer interfaces expected by x/net/proxy.
type dialAdapter struct {
	dial DialFunc
}

func (d dialAdapter) Dial(network, address string) (net.Conn, error) {
	return d.dial(context.Background(), network, address)
}

func (d dialAdapter) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	return d.dial(ctx, network, address)
}
