package translate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// BackendConfig describes an HTTP translation or embedding backend.
type BackendConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// clientError wraps a backend HTTP failure with enough context to log or
// classify without string-matching the error message.
type clientError struct {
	Op         string
	Service    string
	StatusCode int
	Err        error
}

func (e *clientError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("translate: %s %s failed with status %d: %v", e.Service, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("translate: %s %s failed: %v", e.Service, e.Op, e.Err)
}

func (e *clientError) Unwrap() error { return e.Err }

func newClientError(service, op string, err error) *clientError {
	return &clientError{Op: op, Service: service, Err: err}
}

func newHTTPError(service, op string, statusCode int, body string) *clientError {
	return &clientError{Op: op, Service: service, StatusCode: statusCode, Err: fmt.Errorf("HTTP %d: %s", statusCode, body)}
}

// IsRetryable reports whether a backend call failed in a way worth retrying
// (server error or no response at all).
func IsRetryable(err error) bool {
	var ce *clientError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.StatusCode >= 500 || ce.StatusCode == 0
}

// httpClient is the shared resty configuration for both backend clients:
// bearer auth, fixed timeout, retry on 5xx. Grounded on the reference
// service's internal/clients/base.HTTPClient.
type httpClient struct {
	client  *resty.Client
	service string
}

func newHTTPClient(service string, cfg BackendConfig, timeout time.Duration) *httpClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Authorization", "Bearer "+cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second)

	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || r.StatusCode() >= 500
	})

	return &httpClient{client: client, service: service}
}

func (h *httpClient) post(ctx context.Context, endpoint string, body, result interface{}) error {
	resp, err := h.client.R().SetContext(ctx).SetBody(body).SetResult(result).Post(endpoint)
	if err != nil {
		return newClientError(h.service, "POST "+endpoint, err)
	}
	if resp.StatusCode() != 200 {
		return newHTTPError(h.service, "POST "+endpoint, resp.StatusCode(), resp.String())
	}
	return nil
}
