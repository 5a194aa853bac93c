package transport

import (
	"bytes"
	"context"
	"crypto/x509"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/weareqrystal/uplink-sdks/pkg/cert"
	"github.com/weareqrystal/uplink-sdks/pkg/version"
)

// maxDrain bounds how much of a response body is read so the connection
// can be reused.
const maxDrain = 64 << 10

// HTTPFactory opens net/http backed handles.
type HTTPFactory struct {
	// Logger receives debug output. Nil disables logging.
	Logger *slog.Logger
}

// NewHTTPFactory creates an HTTPFactory.
func NewHTTPFactory(logger *slog.Logger) *HTTPFactory {
	return &HTTPFactory{Logger: logger}
}

// Open validates opts and builds a handle with a private connection pool
// of at most one connection.
func (f *HTTPFactory) Open(opts Options) (Handle, error) {
	u, err := url.Parse(opts.URL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, opts.URL)
	}
	if u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrInsecureScheme, opts.URL)
	}

	bundle := opts.Bundle
	if bundle == nil {
		bundle = cert.SystemBundle{}
	}
	var roots *x509.CertPool
	if !opts.InsecureSkipVerify {
		pool, err := bundle.CertPool()
		if err != nil {
			return nil, fmt.Errorf("trust bundle: %w", err)
		}
		roots = pool
	}
	tlsCfg, err := NewClientTLSConfig(&TLSConfig{
		RootCAs:            roots,
		InsecureSkipVerify: opts.InsecureSkipVerify,
	})
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	method := opts.Method
	if method == "" {
		method = http.MethodPost
	}

	tr := &http.Transport{
		DialContext:         dialer(opts.KeepAlive, timeout).DialContext,
		TLSClientConfig:     tlsCfg,
		TLSHandshakeTimeout: timeout,
		MaxIdleConns:        1,
		MaxIdleConnsPerHost: 1,
		MaxConnsPerHost:     1,
		ForceAttemptHTTP2:   false,
	}

	if f.Logger != nil {
		f.Logger.Debug("transport: handle opened", "url", u.Redacted(), "method", method,
			"keepalive", opts.KeepAlive != nil)
	}

	header := make(http.Header)
	header.Set("User-Agent", version.UserAgent())

	return &httpHandle{
		client: &http.Client{
			Transport: tr,
			Timeout:   timeout,
			// Redirects are returned to the caller, never followed.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		transport: tr,
		method:    method,
		url:       u.String(),
		header:    header,
	}, nil
}

type httpHandle struct {
	client    *http.Client
	transport *http.Transport
	method    string
	url       string

	mu     sync.Mutex
	header http.Header
	closed bool
}

func (h *httpHandle) SetHeader(key, value string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.header.Set(key, value)
}

func (h *httpHandle) Perform(ctx context.Context, body []byte, contentType string) (int, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return 0, ErrClosed
	}
	header := h.header.Clone()
	h.mu.Unlock()

	var rd io.Reader = http.NoBody
	if len(body) > 0 {
		rd = bytes.NewReader(body)
		if contentType != "" {
			header.Set("Content-Type", contentType)
		}
	}

	req, err := http.NewRequestWithContext(ctx, h.method, h.url, rd)
	if err != nil {
		return 0, err
	}
	req.Header = header

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// Drain so the connection returns to the pool.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
	return resp.StatusCode, nil
}

func (h *httpHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	h.transport.CloseIdleConnections()
	return nil
}

var (
	_ Factory = (*HTTPFactory)(nil)
	_ Handle  = (*httpHandle)(nil)
)
