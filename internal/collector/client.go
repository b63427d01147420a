package collector

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"StockPredictor/internal/apperr"

	"github.com/go-resty/resty/v2"
)

const userAgent = "StockPredictionApp/1.0"

// ClientOptions controls the shared upstream HTTP client.
type ClientOptions struct {
	Timeout      time.Duration // per attempt
	RetryCount   int           // retries after the first attempt
	RetryWait    time.Duration // backoff base
	RetryMaxWait time.Duration
	InsecureTLS  bool
	Proxy        string
}

// DefaultClientOptions returns 15s per attempt, 3 attempts, 0.5s backoff base.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		Timeout:      15 * time.Second,
		RetryCount:   2,
		RetryWait:    500 * time.Millisecond,
		RetryMaxWait: 4 * time.Second,
	}
}

// NewUpstreamClient builds the resty client every provider adapter uses.
// Only GETs are issued, and only transport failures and 429/500/502/503/504
// responses are retried.
func NewUpstreamClient(opts ClientOptions) *resty.Client {
	c := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(opts.RetryMaxWait).
		SetHeader("User-Agent", userAgent).
		SetHeader("Connection", "close").
		AddRetryCondition(shouldRetry).
		AddRetryHook(func(resp *resty.Response, err error) {
			attrs := []any{}
			if resp != nil && resp.Request != nil {
				attrs = append(attrs, "attempt", resp.Request.Attempt, "url", resp.Request.URL, "status", resp.StatusCode())
			}
			if err != nil {
				attrs = append(attrs, "error", err)
			}
			slog.Warn("retrying upstream request", attrs...)
		})
	if opts.InsecureTLS {
		c.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) //nolint:gosec // opt-in debugging toggle
	}
	if opts.Proxy != "" {
		c.SetProxy(opts.Proxy)
	}
	return c
}

func shouldRetry(resp *resty.Response, err error) bool {
	if resp != nil && resp.Request != nil && resp.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		switch classifyTransport(err) {
		case ReasonTimeout, ReasonConnection:
			return true
		default:
			return false
		}
	}
	if resp == nil {
		return false
	}
	switch resp.StatusCode() {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// getJSON performs the GET and returns the body once it is known to be a
// JSON document. Every failure is an apperr.KindUpstream error.
func getJSON(ctx context.Context, client *resty.Client, provider, endpoint string, params map[string]string) (json.RawMessage, error) {
	start := time.Now()
	resp, err := client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(endpoint)
	if err != nil {
		reason := classifyTransport(err)
		cause := &UpstreamError{Provider: provider, Reason: reason, Err: err}
		slog.Error("upstream request failed", "provider", provider, "reason", reason, "error", err)
		switch reason {
		case ReasonTimeout:
			return nil, apperr.Upstream("Upstream API timeout. Please try again.", cause)
		case ReasonTLS:
			return nil, apperr.Upstream(fmt.Sprintf("Upstream SSL error: %v", err), cause)
		case ReasonCancelled:
			return nil, apperr.Upstream("Upstream request cancelled", cause)
		default:
			return nil, apperr.Upstream(fmt.Sprintf("Upstream connection error: %v", err), cause)
		}
	}

	slog.Debug("upstream response", "provider", provider, "status", resp.StatusCode(), "elapsed", time.Since(start))
	if resp.IsError() {
		cause := &UpstreamError{Provider: provider, Reason: ReasonHTTPStatus, StatusCode: resp.StatusCode()}
		return nil, apperr.Upstream(fmt.Sprintf("Upstream HTTP error: %d", resp.StatusCode()), cause)
	}

	body := resp.Body()
	if !json.Valid(body) {
		cause := &UpstreamError{Provider: provider, Reason: ReasonMalformedBody}
		return nil, apperr.Upstream("Invalid response from upstream API.", cause)
	}
	return json.RawMessage(body), nil
}

func rateLimited(provider string) error {
	return apperr.Upstream("API limit reached. Please try again later.",
		&UpstreamError{Provider: provider, Reason: ReasonRateLimited})
}
