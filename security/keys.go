package security

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
	"strings"
	"sync"
)

// KeyMaterial is the raw PEM encoded key set. MerchantPublic is optional and
// only used for local self checks.
type KeyMaterial struct {
	MerchantPrivate    []byte
	MerchantPublic     []byte
	CounterpartyPublic []byte
}

// KeyPaths locates KeyMaterial on disk.
type KeyPaths struct {
	MerchantPrivate    string
	MerchantPublic     string
	CounterpartyPublic string
}

// KeyStore owns the key material for the process lifetime. Keys are parsed
// on first use and cached; the store is safe for concurrent use.
type KeyStore struct {
	material KeyMaterial

	privateOnce sync.Once
	private     *rsa.PrivateKey
	privateErr  error

	merchantOnce sync.Once
	merchant     *rsa.PublicKey
	merchantErr  error

	counterpartyOnce sync.Once
	counterparty     *rsa.PublicKey
	counterpartyErr  error
}

func NewKeyStore(material KeyMaterial) *KeyStore {
	return &KeyStore{
		material: KeyMaterial{
			MerchantPrivate:    bytes.Clone(material.MerchantPrivate),
			MerchantPublic:     bytes.Clone(material.MerchantPublic),
			CounterpartyPublic: bytes.Clone(material.CounterpartyPublic),
		},
	}
}

// LoadKeyStore reads every configured path. Empty paths are skipped.
func LoadKeyStore(paths KeyPaths) (*KeyStore, error) {
	material := KeyMaterial{}
	var err error
	if material.MerchantPrivate, err = readKeyFile(paths.MerchantPrivate); err != nil {
		return nil, err
	}
	if material.MerchantPublic, err = readKeyFile(paths.MerchantPublic); err != nil {
		return nil, err
	}
	if material.CounterpartyPublic, err = readKeyFile(paths.CounterpartyPublic); err != nil {
		return nil, err
	}
	return NewKeyStore(material), nil
}

// Validate parses the configured keys eagerly. The merchant private key and
// the counterparty public key are required.
func (k *KeyStore) Validate() error {
	if _, err := k.MerchantPrivateKey(); err != nil {
		return err
	}
	if _, err := k.CounterpartyPublicKey(); err != nil {
		return err
	}
	if k != nil && len(k.material.MerchantPublic) > 0 {
		if _, err := k.MerchantPublicKey(); err != nil {
			return err
		}
	}
	return nil
}

func (k *KeyStore) MerchantPrivateKey() (*rsa.PrivateKey, error) {
	if k == nil {
		return nil, fmt.Errorf("%w: key store is nil", ErrKey)
	}
	k.privateOnce.Do(func() {
		k.private, k.privateErr = ParsePrivateKey(k.material.MerchantPrivate)
	})
	return k.private, k.privateErr
}

func (k *KeyStore) MerchantPublicKey() (*rsa.PublicKey, error) {
	if k == nil {
		return nil, fmt.Errorf("%w: key store is nil", ErrKey)
	}
	k.merchantOnce.Do(func() {
		if len(k.material.MerchantPublic) == 0 {
			private, err := k.MerchantPrivateKey()
			if err != nil {
				k.merchantErr = err
				return
			}
			k.merchant = &private.PublicKey
			return
		}
		k.merchant, k.merchantErr = ParsePublicKey(k.material.MerchantPublic)
	})
	return k.merchant, k.merchantErr
}

func (k *KeyStore) CounterpartyPublicKey() (*rsa.PublicKey, error) {
	if k == nil {
		return nil, fmt.Errorf("%w: key store is nil", ErrKey)
	}
	k.counterpartyOnce.Do(func() {
		k.counterparty, k.counterpartyErr = ParsePublicKey(k.material.CounterpartyPublic)
	})
	return k.counterparty, k.counterpartyErr
}

// ParsePrivateKey accepts PKCS#8 or PKCS#1 RSA keys, PEM armored or as a
// bare base64 DER body.
func ParsePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	der, err := decodeKeyBlock(data)
	if err != nil {
		return nil, err
	}
	if parsed, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		key, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: private key is %T, want RSA", ErrKey, parsed)
		}
		return key, nil
	}
	key, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: parse private key: %v", ErrKey, err)
	}
	return key, nil
}

// ParsePublicKey accepts SPKI, PKCS#1 or certificate encoded RSA keys.
func ParsePublicKey(data []byte) (*rsa.PublicKey, error) {
	der, err := decodeKeyBlock(data)
	if err != nil {
		return nil, err
	}
	if parsed, err := x509.ParsePKIXPublicKey(der); err == nil {
		key, ok := parsed.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: public key is %T, want RSA", ErrKey, parsed)
		}
		return key, nil
	}
	if key, err := x509.ParsePKCS1PublicKey(der); err == nil {
		return key, nil
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("%w: parse public key: %v", ErrKey, err)
	}
	key, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: certificate key is %T, want RSA", ErrKey, cert.PublicKey)
	}
	return key, nil
}

func decodeKeyBlock(data []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: key material is required", ErrKey)
	}
	if block, _ := pem.Decode(trimmed); block != nil {
		return block.Bytes, nil
	}
	compact := strings.Join(strings.Fields(string(trimmed)), "")
	der, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return nil, fmt.Errorf("%w: key is neither PEM nor base64 DER", ErrKey)
	}
	return der, nil
}

func readKeyFile(path string) ([]byte, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrKey, path, err)
	}
	return data, nil
}

// EncodePrivateKeyPEM renders key as a PKCS#8 PEM block.
func EncodePrivateKeyPEM(key *rsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal private key: %v", ErrKey, err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// EncodePublicKeyPEM renders key as an SPKI PEM block.
func EncodePublicKeyPEM(key *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal public key: %v", ErrKey, err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}
