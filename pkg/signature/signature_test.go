package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "sk_test_0123456789"

func TestVerify(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"reference":"ref-1","amount":150000}}`)
	sig := Sign(body, secret)

	t.Run("valid signature", func(t *testing.T) {
		assert.NoError(t, Verify(body, sig, secret))
	})

	t.Run("uppercase hex is accepted", func(t *testing.T) {
		assert.NoError(t, Verify(body, strings.ToUpper(sig), secret))
	})

	t.Run("missing secret", func(t *testing.T) {
		assert.ErrorIs(t, Verify(body, sig, ""), ErrMissingSecret)
	})

	t.Run("missing signature", func(t *testing.T) {
		assert.ErrorIs(t, Verify(body, "", secret), ErrMissingSignature)
		assert.ErrorIs(t, Verify(body, "   ", secret), ErrMissingSignature)
	})

	t.Run("malformed signature", func(t *testing.T) {
		assert.ErrorIs(t, Verify(body, "not-hex", secret), ErrMalformedSignature)
		assert.ErrorIs(t, Verify(body, sig[:64], secret), ErrMalformedSignature)
	})

	t.Run("wrong secret", func(t *testing.T) {
		assert.ErrorIs(t, Verify(body, sig, "another-secret"), ErrSignatureMismatch)
	})

	t.Run("reserialized body does not verify", func(t *testing.T) {
		reserialized := []byte(`{"data":{"amount":150000,"reference":"ref-1"},"event":"charge.success"}`)
		assert.ErrorIs(t, Verify(reserialized, sig, secret), ErrSignatureMismatch)
	})
}

func TestVerify_SingleBitMutations(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"reference":"T-42","amount":990}}`)
	sig := Sign(body, secret)
	require.NoError(t, Verify(body, sig, secret))

	for i := 0; i < len(body); i++ {
		for bit := 0; bit < 8; bit++ {
			mutated := append([]byte(nil), body...)
			mutated[i] ^= 1 << bit
			if err := Verify(mutated, sig, secret); err == nil {
				t.Fatalf("mutated body at byte %d bit %d verified", i, bit)
			}
		}
	}

	raw := []byte(sig)
	for i := range raw {
		mutated := append([]byte(nil), raw...)
		// flip within the hex alphabet so the header stays decodable
		if mutated[i] == '0' {
			mutated[i] = '1'
		} else {
			mutated[i] = '0'
		}
		assert.Error(t, Verify(body, string(mutated), secret), "mutated signature at %d", i)
	}
}

func TestSignBase64SHA256(t *testing.T) {
	msg := "1700000000000GET/api/v2/spot/wallet/deposit-records?coin=USDT&endTime=2&limit=100&startTime=1"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(msg))
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	assert.Equal(t, want, SignBase64SHA256(secret, msg))
	assert.NotEqual(t, want, SignBase64SHA256(secret, msg+" "))
}
