package usecase

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"webinar_billing/internal/infrastructure/logging"

	"github.com/rs/zerolog"
)

var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// SignatureHeaders lists the accepted signature headers, first match wins.
var SignatureHeaders = []string{"x-webhook-signature", "x-cf-signature", "x-signature"}

// SignatureFromHeaders returns the first non-empty signature header value.
func SignatureFromHeaders(h http.Header) string {
	for _, name := range SignatureHeaders {
		if v := strings.TrimSpace(h.Get(name)); v != "" {
			return v
		}
	}
	return ""
}

// WebhookVerifier authenticates gateway webhooks with HMAC-SHA256 (hex) over
// the raw request body.
//
// With no secret configured the outcome depends on requireSignature: false
// accepts any signature (logged as a warning on every request), true rejects
// everything.
type WebhookVerifier struct {
	secret           []byte
	requireSignature bool
	log              zerolog.Logger
}

func NewWebhookVerifier(secret string, requireSignature bool, logger zerolog.Logger) *WebhookVerifier {
	v := &WebhookVerifier{
		secret:           []byte(strings.TrimSpace(secret)),
		requireSignature: requireSignature,
		log:              logging.Component(logger, "webhook_verifier"),
	}
	if len(v.secret) == 0 {
		if requireSignature {
			v.log.Warn().Msg("no webhook secret configured and WEBHOOK_REQUIRE_SIGNATURE=true: every webhook will be rejected")
		} else {
			v.log.Warn().Msg("SECURITY: no webhook secret configured; webhook signatures are NOT verified")
		}
	}
	return v
}

// Verify checks signature against body. It never inspects the body contents.
func (v *WebhookVerifier) Verify(signature string, body []byte) error {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return ErrMissingSignature
	}
	if len(v.secret) == 0 {
		if v.requireSignature {
			return ErrInvalidSignature
		}
		v.log.Warn().Msg("SECURITY: accepting unverified webhook (no secret configured)")
		return nil
	}

	expected := Sign(v.secret, body)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign returns the lower-case hex HMAC-SHA256 of body.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
