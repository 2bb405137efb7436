package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
)

var (
	ErrMissingSecret      = errors.New("webhook secret is not configured")
	ErrMissingSignature   = errors.New("signature header is missing")
	ErrMalformedSignature = errors.New("signature header is malformed")
	ErrSignatureMismatch  = errors.New("signature mismatch")
)

// Sign returns the hex encoded HMAC-SHA512 of body keyed with secret.
// This is the scheme Paystack uses for the x-paystack-signature header.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks provided against the HMAC-SHA512 of the raw, unparsed body.
// The body must be the exact bytes received on the wire.
func Verify(body []byte, provided, secret string) error {
	if secret == "" {
		return ErrMissingSecret
	}
	provided = strings.TrimSpace(provided)
	if provided == "" {
		return ErrMissingSignature
	}

	got, err := hex.DecodeString(provided)
	if err != nil || len(got) != sha512.Size {
		return ErrMalformedSignature
	}

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return ErrSignatureMismatch
	}

	return nil
}

// SignBase64SHA256 returns base64(HMAC-SHA256(secret, message)), the scheme used
// to sign exchange REST requests.
func SignBase64SHA256(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
