package security

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"unicode"

	glog "github.com/goliatone/go-logger/glog"
)

type PublicKeySource func() (*rsa.PublicKey, error)

type VerifierOption func(*Verifier)

func WithVerifierLogger(logger glog.Logger) VerifierOption {
	return func(v *Verifier) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// Verifier checks RSA-SHA256 signatures. Every failure, including broken key
// material, resolves to false.
type Verifier struct {
	key    PublicKeySource
	logger glog.Logger
}

// NewVerifier verifies against the counterparty public key. Webhooks use it.
func NewVerifier(keys *KeyStore, opts ...VerifierOption) *Verifier {
	return newVerifier(keys.CounterpartyPublicKey, opts...)
}

// NewMerchantVerifier verifies against the merchant public key, for checking
// locally produced signatures.
func NewMerchantVerifier(keys *KeyStore, opts ...VerifierOption) *Verifier {
	return newVerifier(keys.MerchantPublicKey, opts...)
}

func newVerifier(source PublicKeySource, opts ...VerifierOption) *Verifier {
	v := &Verifier{key: source, logger: glog.Nop()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(v)
	}
	return v
}

func (v *Verifier) Verify(canonical string, signature string) bool {
	if v == nil || v.key == nil {
		return false
	}
	key, err := v.key()
	if err != nil {
		v.logger.Error("signature verification key unavailable", "error", err)
		return false
	}
	return VerifyWithKey(canonical, signature, key)
}

// VerifyWithKey reports whether signature is a valid base64 PKCS#1 v1.5
// signature of canonical under key.
func VerifyWithKey(canonical string, signature string, key *rsa.PublicKey) bool {
	if key == nil {
		return false
	}
	raw, ok := decodeSignature(signature)
	if !ok {
		return false
	}
	digest := sha256.Sum256([]byte(canonical))
	return rsa.VerifyPKCS1v15(key, crypto.SHA256, digest[:], raw) == nil
}

// decodeSignature accepts padded or unpadded standard base64 with embedded
// whitespace. Non-zero trailing bits are rejected so every character of the
// signature stays significant.
func decodeSignature(signature string) ([]byte, bool) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, signature)
	compact = strings.TrimRight(compact, "=")
	if compact == "" {
		return nil, false
	}
	raw, err := base64.RawStdEncoding.Strict().DecodeString(compact)
	if err != nil {
		return nil, false
	}
	return raw, true
}
