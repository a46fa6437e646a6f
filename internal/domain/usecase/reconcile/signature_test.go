package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
)

func TestSignatureVerifier(t *testing.T) {
	payload := []byte(`{"payment_id":"pay-1","payment_status":"finished"}`)

	t.Run("should accept a signature computed over the same secret", func(t *testing.T) {
		// Arrange
		verifier := NewSignatureVerifier("shared-secret")
		signature := verifier.Sign(payload)

		// Act
		err := verifier.Verify(payload, signature)

		// Assert
		assert.NoError(t, err)
	})

	t.Run("should reject a tampered payload", func(t *testing.T) {
		// Arrange
		verifier := NewSignatureVerifier("shared-secret")
		signature := verifier.Sign(payload)

		tampered := []byte(`{"payment_id":"pay-1","payment_status":"failed"}`)

		// Act
		err := verifier.Verify(tampered, signature)

		// Assert
		assert.ErrorIs(t, err, errs.ErrSignatureVerification)
	})

	t.Run("should reject a signature from a different secret", func(t *testing.T) {
		// Arrange
		verifier := NewSignatureVerifier("shared-secret")
		other := NewSignatureVerifier("wrong-secret")

		// Act
		err := verifier.Verify(payload, other.Sign(payload))

		// Assert
		assert.ErrorIs(t, err, errs.ErrSignatureVerification)
	})

	t.Run("should reject malformed signature headers", func(t *testing.T) {
		verifier := NewSignatureVerifier("shared-secret")

		assert.ErrorIs(t, verifier.Verify(payload, ""), errs.ErrSignatureVerification)
		assert.ErrorIs(t, verifier.Verify(payload, "not-hex-zzzz"), errs.ErrSignatureVerification)
	})

	t.Run("should refuse to verify without a configured secret", func(t *testing.T) {
		verifier := NewSignatureVerifier("")

		err := verifier.Verify(payload, verifier.Sign(payload))

		assert.ErrorIs(t, err, errs.ErrSignatureVerification)
	})
}
