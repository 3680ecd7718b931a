package security

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// Signer produces RSA-SHA256 PKCS#1 v1.5 signatures with the merchant
// private key.
type Signer struct {
	keys *KeyStore
}

func NewSigner(keys *KeyStore) *Signer {
	return &Signer{keys: keys}
}

// Sign returns the base64 signature of canonical with line breaks removed.
func (s *Signer) Sign(canonical string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("%w: signer is nil", ErrCrypto)
	}
	key, err := s.keys.MerchantPrivateKey()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	return SignWithKey(canonical, key)
}

// SignWithKey signs canonical with an explicit private key.
func SignWithKey(canonical string, key *rsa.PrivateKey) (string, error) {
	if key == nil {
		return "", fmt.Errorf("%w: private key is required", ErrCrypto)
	}
	digest := sha256.Sum256([]byte(canonical))
	raw, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	return normalizeSignature(base64.StdEncoding.EncodeToString(raw)), nil
}

func normalizeSignature(value string) string {
	value = strings.ReplaceAll(value, "\r", "")
	value = strings.ReplaceAll(value, "\n", "")
	return strings.TrimSpace(value)
}
