package security

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"
)

const testPayerDetailKey = "9M8LJx4Txj0iF3g8y2Sxudjv84p0bN74RFnqxB1gD4U="

func TestPayerDetailCodec_RoundTrip(t *testing.T) {
	codec, err := NewPayerDetailCodecFromBase64(testPayerDetailKey)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	for _, plaintext := range []string{
		"",
		"a",
		"exactly sixteen!",
		`{"firstName":"Zoë","lastName":"Łukasz","country":"日本"}`,
	} {
		envelope, err := codec.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("encrypt %q: %v", plaintext, err)
		}
		decrypted, err := codec.Decrypt(envelope)
		if err != nil {
			t.Fatalf("decrypt %q: %v", plaintext, err)
		}
		if decrypted != plaintext {
			t.Fatalf("expected %q, got %q", plaintext, decrypted)
		}
	}
}

func TestPayerDetailCodec_UsesFreshIV(t *testing.T) {
	codec, err := NewPayerDetailCodecFromBase64(testPayerDetailKey)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	first, err := codec.Encrypt("same plaintext")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	second, err := codec.Encrypt("same plaintext")
	if err != nil {
		t.Fatalf("encrypt again: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct ciphertexts for repeated encryption")
	}
	raw, err := base64.StdEncoding.DecodeString(first)
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if len(raw) != 16+16 {
		t.Fatalf("expected iv plus one block, got %d bytes", len(raw))
	}
}

func TestPayerDetailCodec_PrefixesIV(t *testing.T) {
	iv := bytes.Repeat([]byte{7}, 16)
	codec, err := NewPayerDetailCodecFromBase64(testPayerDetailKey, WithEntropy(bytes.NewReader(iv)))
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	envelope, err := codec.Encrypt("payload")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if !bytes.Equal(raw[:16], iv) {
		t.Fatalf("expected envelope to start with the iv")
	}
}

func TestPayerDetailCodec_WrongKeyOrCorruptEnvelope(t *testing.T) {
	codec, err := NewPayerDetailCodecFromBase64(testPayerDetailKey)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	other, err := NewPayerDetailCodec(bytes.Repeat([]byte{1}, 32))
	if err != nil {
		t.Fatalf("new other codec: %v", err)
	}
	envelope, err := codec.Encrypt("secret payer detail that spans blocks")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	cases := map[string]string{
		"not base64": "%%%",
		"too short":  base64.StdEncoding.EncodeToString([]byte("short")),
		"unaligned":  base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 40)),
	}
	for name, value := range cases {
		if _, err := codec.Decrypt(value); !errors.Is(err, ErrDecrypt) {
			t.Fatalf("%s: expected ErrDecrypt, got %v", name, err)
		}
	}

	if plaintext, err := other.Decrypt(envelope); err == nil && plaintext == "secret payer detail that spans blocks" {
		t.Fatalf("expected wrong key not to recover plaintext")
	}
}

func TestNewPayerDetailCodec_RejectsWrongKeyLength(t *testing.T) {
	if _, err := NewPayerDetailCodec([]byte("short")); !errors.Is(err, ErrKey) {
		t.Fatalf("expected ErrKey, got %v", err)
	}
	if _, err := NewPayerDetailCodecFromBase64(base64.StdEncoding.EncodeToString(make([]byte, 16))); !errors.Is(err, ErrKey) {
		t.Fatalf("expected ErrKey for 16 byte key, got %v", err)
	}
	if _, err := NewPayerDetailCodecFromBase64(""); !errors.Is(err, ErrKey) {
		t.Fatalf("expected ErrKey for empty key, got %v", err)
	}
}
