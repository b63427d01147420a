package collector

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
)

// UpstreamReason classifies a provider failure.
type UpstreamReason string

const (
	ReasonTimeout       UpstreamReason = "timeout"
	ReasonConnection    UpstreamReason = "connection"
	ReasonHTTPStatus    UpstreamReason = "http_status"
	ReasonMalformedBody UpstreamReason = "malformed_body"
	ReasonInvalidSymbol UpstreamReason = "invalid_symbol"
	ReasonRateLimited   UpstreamReason = "rate_limited"
	ReasonProviderError UpstreamReason = "provider_error"
	ReasonTLS           UpstreamReason = "tls"
	ReasonCancelled     UpstreamReason = "cancelled"
)

// UpstreamError is the cause carried inside an apperr.KindUpstream error.
type UpstreamError struct {
	Provider   string
	Reason     UpstreamReason
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: %s %d", e.Provider, e.Reason, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Reason, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Provider, e.Reason)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ReasonOf extracts the UpstreamReason from err, or "" if none.
func ReasonOf(err error) UpstreamReason {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Reason
	}
	return ""
}

// classifyTransport sorts a failed round trip into timeout, TLS, cancelled
// or connection failures.
func classifyTransport(err error) UpstreamReason {
	if isTLSError(err) {
		return ReasonTLS
	}
	if errors.Is(err, context.Canceled) {
		return ReasonCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	return ReasonConnection
}

func isTLSError(err error) bool {
	var verifyErr *tls.CertificateVerificationError
	var authErr x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	var invalidErr x509.CertificateInvalidError
	var recordErr tls.RecordHeaderError
	return errors.As(err, &verifyErr) ||
		errors.As(err, &authErr) ||
		errors.As(err, &hostErr) ||
		errors.As(err, &invalidErr) ||
		errors.As(err, &recordErr)
}
