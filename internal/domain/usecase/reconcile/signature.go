package reconcile

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
)

// SignatureVerifier checks webhook authenticity: the gateway signs the raw
// request body with HMAC-SHA512 over a shared secret and sends the hex
// digest in a header.
type SignatureVerifier struct {
	secret []byte
}

// NewSignatureVerifier creates a verifier for the shared webhook secret
func NewSignatureVerifier(secret string) *SignatureVerifier {
	return &SignatureVerifier{secret: []byte(secret)}
}

// Verify recomputes the HMAC over the raw payload and compares it with the
// header value in constant time. A mismatch is a hard rejection: the caller
// must answer with a client error and perform no further processing.
func (v *SignatureVerifier) Verify(rawPayload []byte, signatureHeader string) error {
	if len(v.secret) == 0 {
		return fmt.Errorf("%w: webhook secret is not configured", errs.ErrSignatureVerification)
	}
	if signatureHeader == "" {
		return fmt.Errorf("%w: missing signature header", errs.ErrSignatureVerification)
	}

	expected, err := hex.DecodeString(signatureHeader)
	if err != nil {
		return fmt.Errorf("%w: signature is not valid hex", errs.ErrSignatureVerification)
	}

	mac := hmac.New(sha512.New, v.secret)
	mac.Write(rawPayload)

	if !hmac.Equal(mac.Sum(nil), expected) {
		return errs.ErrSignatureVerification
	}
	return nil
}

// Sign computes the hex HMAC digest for a payload. Used by tests and by the
// webhook replay script.
func (v *SignatureVerifier) Sign(rawPayload []byte) string {
	mac := hmac.New(sha512.New, v.secret)
	mac.Write(rawPayload)
	return hex.EncodeToString(mac.Sum(nil))
}
