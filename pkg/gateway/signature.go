package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"go.uber.org/zap"
)

// SignatureVerifier authenticates gateway-signed messages with HMAC-SHA256
// over a shared secret. The same primitive covers client confirmation
// callbacks and raw webhook bodies; each channel gets its own instance
// because the gateway issues separate secrets.
type SignatureVerifier struct {
	secret []byte
	log    *zap.Logger
}

// NewSignatureVerifier builds a verifier for the given secret. An empty
// secret is a deployment configuration error, not a verification failure:
// it is logged here once and Verify fails closed from then on.
func NewSignatureVerifier(secret string, log *zap.Logger) *SignatureVerifier {
	if secret == "" {
		log.Error("gateway signature secret is not configured; all verifications will fail")
	}
	return &SignatureVerifier{secret: []byte(secret), log: log}
}

// Sign returns the hex-encoded HMAC-SHA256 of message.
func (v *SignatureVerifier) Sign(message []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches the expected digest of message.
// The comparison is constant time. With no secret configured it always
// returns false.
func (v *SignatureVerifier) Verify(message []byte, signature string) bool {
	if len(v.secret) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(message)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
