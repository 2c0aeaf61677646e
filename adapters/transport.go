package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	userAgent = "vidfacade/1.0"

	// maxResponseBody caps how much of a provider response is read.
	maxResponseBody = 4 << 20
)

// Response is a raw provider response.
type Response struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Success reports a 2xx status.
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Transport performs the outbound calls of one adapter.
type Transport struct {
	provider string
	client   *http.Client
	logger   *zap.Logger
	timeout  time.Duration
}

// NewTransport creates a Transport for provider.
func NewTransport(provider string, o Options) *Transport {
	return &Transport{
		provider: provider,
		client:   o.HTTPClient,
		logger:   o.Logger.With(zap.String("provider", provider)),
		timeout:  o.Timeout,
	}
}

// Logger returns the provider-scoped logger.
func (t *Transport) Logger() *zap.Logger { return t.logger }

// Do issues a single request and returns the response whatever its status.
// Only failures to obtain a response are returned as errors, as an
// UpstreamError with StatusCode 0.
func (t *Transport) Do(ctx context.Context, method, url string, headers map[string]string, body interface{}) (*Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal request body")
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Error("provider request failed",
			zap.String("method", method), zap.String("url", url), zap.Error(err))
		return nil, &UpstreamError{
			Provider: t.provider,
			Message:  err.Error(),
			Err:      errors.Wrapf(err, "%s %s", method, url),
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &UpstreamError{
			Provider:   t.provider,
			StatusCode: resp.StatusCode,
			Message:    err.Error(),
			Err:        errors.Wrapf(err, "reading response of %s %s", method, url),
		}
	}

	t.logger.Info("provider request",
		zap.String("method", method), zap.String("url", url), zap.Int("status", resp.StatusCode))

	return &Response{URL: url, StatusCode: resp.StatusCode, Body: data}, nil
}

// Call issues a single request and turns any non-2xx response into an
// UpstreamError carrying the best-effort extracted message.
func (t *Transport) Call(ctx context.Context, method, url string, headers map[string]string, body interface{}) (*Response, error) {
	resp, err := t.Do(ctx, method, url, headers, body)
	if err != nil {
		return nil, err
	}
	if !resp.Success() {
		return nil, t.ResponseError(resp)
	}
	return resp, nil
}

// ResponseError converts resp into an UpstreamError.
func (t *Transport) ResponseError(resp *Response) error {
	t.logger.Error("provider API error",
		zap.String("url", resp.URL),
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", resp.Body))
	return &UpstreamError{
		Provider:   t.provider,
		StatusCode: resp.StatusCode,
		Message:    ExtractMessage(resp.Body),
	}
}

// MissingField reports a 2xx response that lacks a required field.
func (t *Transport) MissingField(resp *Response, field string) error {
	return &UpstreamError{
		Provider:   t.provider,
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("response has no %s: %s", field, Truncate(string(resp.Body), MaxMessageLength)),
		Err:        ErrInvalidResult,
	}
}
