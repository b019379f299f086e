package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"

	"github.com/nao1215/ofxpostern/internal/model"
	"github.com/nao1215/ofxpostern/internal/ofx"
)

// Defaults used when the corresponding option is not given.
const (
	DefaultConnectTimeout = 3200 * time.Millisecond
	DefaultReadTimeout    = 27 * time.Second
	DefaultUserAgent      = "InetClntApp/3.0"
	DefaultMaxBodySize    = 5 * 1024 * 1024
)

// maxRedirects bounds redirect chains.
const maxRedirects = 10

// Client sends HTTP requests to OFX servers.
// A Client is safe for concurrent use.
type Client struct {
	tlsVerify      bool
	proxyURL       string
	connectTimeout time.Duration
	readTimeout    time.Duration
	userAgent      string
	maxBodySize    int64
	headers        map[string]string
	logger         *slog.Logger

	http   *http.Client
	verify *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTLSVerify enables or disables certificate verification on probes.
func WithTLSVerify(verify bool) Option {
	return func(c *Client) {
		c.tlsVerify = verify
	}
}

// WithProxy routes requests through an http, https, socks5 or socks5h
// proxy. Certificate verification is turned off for probes sent through
// a proxy so that intercepting proxies work.
func WithProxy(proxyURL string) Option {
	return func(c *Client) {
		c.proxyURL = proxyURL
	}
}

// WithTimeouts sets the connect and read timeouts.
func WithTimeouts(connect, read time.Duration) Option {
	return func(c *Client) {
		c.connectTimeout = connect
		c.readTimeout = read
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBodySize limits how much of each response body is read.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		c.maxBodySize = n
	}
}

// WithHeaders adds headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.headers = headers
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client. It returns ErrInvalidProxy if the proxy
// URL cannot be used.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		tlsVerify:      true,
		connectTimeout: DefaultConnectTimeout,
		readTimeout:    DefaultReadTimeout,
		userAgent:      DefaultUserAgent,
		maxBodySize:    DefaultMaxBodySize,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxBodySize <= 0 {
		c.maxBodySize = DefaultMaxBodySize
	}

	verifyProbes := c.tlsVerify && c.proxyURL == ""
	probeTransport, err := c.newTransport(verifyProbes)
	if err != nil {
		return nil, err
	}
	verifyTransport, err := c.newTransport(true)
	if err != nil {
		return nil, err
	}
	c.http = c.newHTTPClient(probeTransport)
	c.verify = c.newHTTPClient(verifyTransport)
	return c, nil
}

func (c *Client) newTransport(verify bool) (*http.Transport, error) {
	dialer := &net.Dialer{Timeout: c.connectTimeout}
	t := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   c.readTimeout,
		ResponseHeaderTimeout: c.readTimeout,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !verify, //nolint:gosec // Optional, for servers with broken certificates
		},
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}
	if c.proxyURL == "" {
		return t, nil
	}

	u, err := url.Parse(c.proxyURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProxy, err)
	}
	switch u.Scheme {
	case "http", "https":
		t.Proxy = http.ProxyURL(u)
	case "socks5", "socks5h":
		d, err := proxy.FromURL(u, dialer)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidProxy, err)
		}
		t.DialContext = contextDialer(d)
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidProxy, u.Scheme)
	}
	return t, nil
}

func (c *Client) newHTTPClient(t http.RoundTripper) *http.Client {
	return &http.Client{
		Transport: &headerInjectingTransport{
			base:      t,
			userAgent: c.userAgent,
			headers:   c.headers,
		},
		Timeout: c.connectTimeout + c.readTimeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// contextDialer adapts a proxy dialer to http.Transport.DialContext.
// Dialers without context support are run in a goroutine so the caller
// can still give up on cancellation.
func contextDialer(d proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		type dialResult struct {
			conn net.Conn
			err  error
		}
		resultCh := make(chan dialResult, 1)
		go func() {
			conn, err := d.Dial(network, addr)
			resultCh <- dialResult{conn, err}
		}()
		select {
		case r := <-resultCh:
			return r.conn, r.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// ProxyURL returns the configured proxy URL, or "".
func (c *Client) ProxyURL() string {
	return c.proxyURL
}

// Do sends one request and returns the response as a probe record with
// an empty name. Network failures are returned as errors.
func (c *Client) Do(ctx context.Context, method, target, body string) (model.ProbeRecord, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return model.ProbeRecord{}, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", ofx.ContentType)
	}

	c.logger.Debug("sending request", "method", method, "url", target, "body", body)
	resp, err := c.http.Do(req)
	if err != nil {
		return model.ProbeRecord{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return model.ProbeRecord{}, fmt.Errorf("read response body: %w", err)
	}

	rec := model.ProbeRecord{
		Method:     method,
		URL:        target,
		StatusCode: resp.StatusCode,
		Headers:    model.HeadersFrom(resp.Header),
		Body:       string(data),
	}
	c.logger.Debug("received response",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"bytes", len(data),
	)
	return rec, nil
}

// headerInjectingTransport sets the User-Agent and the configured
// headers on every request, redirects included.
type headerInjectingTransport struct {
	base      http.RoundTripper
	userAgent string
	headers   map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.userAgent != "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}
	return t.base.RoundTrip(clone)
}
