package security

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

const (
	payerDetailKeySize = 32
	payerDetailIVSize  = aes.BlockSize
)

type CodecOption func(*PayerDetailCodec)

// WithEntropy replaces the IV source. Tests use it for reproducible output.
func WithEntropy(reader io.Reader) CodecOption {
	return func(c *PayerDetailCodec) {
		if reader != nil {
			c.entropy = reader
		}
	}
}

// PayerDetailCodec encrypts payer detail fields as
// base64(IV || AES-256-CBC(PKCS#7(plaintext))).
type PayerDetailCodec struct {
	key     []byte
	entropy io.Reader
}

func NewPayerDetailCodec(keyMaterial []byte, opts ...CodecOption) (*PayerDetailCodec, error) {
	if len(keyMaterial) != payerDetailKeySize {
		return nil, fmt.Errorf("%w: payer detail key must be %d bytes, got %d", ErrKey, payerDetailKeySize, len(keyMaterial))
	}
	codec := &PayerDetailCodec{
		key:     bytes.Clone(keyMaterial),
		entropy: rand.Reader,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(codec)
	}
	return codec, nil
}

// NewPayerDetailCodecFromBase64 decodes a base64 key, which must be exactly
// 32 bytes once decoded.
func NewPayerDetailCodecFromBase64(key string, opts ...CodecOption) (*PayerDetailCodec, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: payer detail key is required", ErrKey)
	}
	raw, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: payer detail key is not base64: %v", ErrKey, err)
	}
	return NewPayerDetailCodec(raw, opts...)
}

func (c *PayerDetailCodec) Encrypt(plaintext string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("%w: codec is nil", ErrCrypto)
	}
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("%w: create cipher: %v", ErrCrypto, err)
	}
	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, payerDetailIVSize+len(padded))
	iv := out[:payerDetailIVSize]
	if _, err := io.ReadFull(c.entropy, iv); err != nil {
		return "", fmt.Errorf("%w: iv generation failed: %v", ErrCrypto, err)
	}
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[payerDetailIVSize:], padded)
	return base64.StdEncoding.EncodeToString(out), nil
}

func (c *PayerDetailCodec) Decrypt(envelope string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("%w: codec is nil", ErrDecrypt)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(envelope))
	if err != nil {
		return "", fmt.Errorf("%w: decode envelope: %v", ErrDecrypt, err)
	}
	if len(raw) < payerDetailIVSize+aes.BlockSize {
		return "", fmt.Errorf("%w: envelope too short", ErrDecrypt)
	}
	body := raw[payerDetailIVSize:]
	if len(body)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext is not block aligned", ErrDecrypt)
	}
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("%w: create cipher: %v", ErrDecrypt, err)
	}
	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, raw[:payerDetailIVSize]).CryptBlocks(plain, body)
	unpadded, err := pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

func pkcs7Pad(data []byte, size int) []byte {
	padding := size - len(data)%size
	out := make([]byte, len(data), len(data)+padding)
	copy(out, data)
	return append(out, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte, size int) ([]byte, error) {
	if len(data) == 0 || len(data)%size != 0 {
		return nil, fmt.Errorf("%w: invalid padded length", ErrDecrypt)
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > size {
		return nil, fmt.Errorf("%w: invalid padding", ErrDecrypt)
	}
	expected := bytes.Repeat([]byte{byte(padding)}, padding)
	if subtle.ConstantTimeCompare(data[len(data)-padding:], expected) != 1 {
		return nil, fmt.Errorf("%w: invalid padding", ErrDecrypt)
	}
	return data[:len(data)-padding], nil
}
