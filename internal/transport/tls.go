package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net/http"
	"net/url"

	"github.com/nao1215/ofxpostern/internal/model"
)

// CheckTLS tests whether target can be reached over verified TLS.
//
// Plain http targets are TLSBroken. Certificate and handshake failures
// are TLSBroken. Any other failure leaves the state TLSUnknown.
// Verification is always on here, whatever the client was configured with.
func (c *Client) CheckTLS(ctx context.Context, target string) model.TLSState {
	u, err := url.Parse(target)
	if err != nil {
		return model.TLSUnknown
	}
	if u.Scheme != "https" {
		return model.TLSBroken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return model.TLSUnknown
	}
	resp, err := c.verify.Do(req)
	if err != nil {
		c.logger.Debug("tls check failed", "url", target, "error", err)
		if isTLSError(err) {
			return model.TLSBroken
		}
		return model.TLSUnknown
	}
	resp.Body.Close()
	return model.TLSWorking
}

func isTLSError(err error) bool {
	var (
		verifyErr  *tls.CertificateVerificationError
		authErr    x509.UnknownAuthorityError
		hostErr    x509.HostnameError
		invalidErr x509.CertificateInvalidError
		recordErr  tls.RecordHeaderError
		alertErr   tls.AlertError
	)
	return errors.As(err, &verifyErr) ||
		errors.As(err, &authErr) ||
		errors.As(err, &hostErr) ||
		errors.As(err, &invalidErr) ||
		errors.As(err, &recordErr) ||
		errors.As(err, &alertErr)
}
