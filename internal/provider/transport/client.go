package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
)

const (
	defaultConnectTimeout  = 10 * time.Second
	defaultKeepAlive       = 30 * time.Second
	defaultIdleConnTimeout = 90 * time.Second
	tlsHandshakeTimeout    = 10 * time.Second
	maxIdleConns           = 50

	maxErrorBody = 64 * 1024
)

// NewHTTPClient builds the pooled client owned by one provider.
// The client has no overall Timeout: non-streaming calls are bounded by their context
// and streams by a Watchdog.
func NewHTTPClient(cfg Config) *http.Client {
	connect := cfg.ConnectDuration()
	if connect == 0 {
		connect = defaultConnectTimeout
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: connect, KeepAlive: defaultKeepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          maxIdleConns,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   tlsHandshakeTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{Transport: transport}
}

// NewJSONRequest encodes payload and builds a POST request carrying headers.
func NewJSONRequest(ctx context.Context, url string, payload any, headers map[string]string) (*http.Request, error) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

// DecodeJSON decodes a successful upstream body into target.
func DecodeJSON(r io.Reader, target any) error {
	if err := sonic.ConfigDefault.NewDecoder(r).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ReadErrorBody reads at most 64KiB of an error response body.
func ReadErrorBody(resp *http.Response) []byte {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return body
}
