package security

import (
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"
)

var (
	testKeysOnce sync.Once
	testMerchant *rsa.PrivateKey
	testProvider *rsa.PrivateKey
	testKeysErr  error
)

func testKeyPairs(t *testing.T) (*rsa.PrivateKey, *rsa.PrivateKey) {
	t.Helper()
	testKeysOnce.Do(func() {
		testMerchant, testKeysErr = rsa.GenerateKey(rand.Reader, 2048)
		if testKeysErr != nil {
			return
		}
		testProvider, testKeysErr = rsa.GenerateKey(rand.Reader, 2048)
	})
	if testKeysErr != nil {
		t.Fatalf("generate rsa keys: %v", testKeysErr)
	}
	return testMerchant, testProvider
}

func testKeyStore(t *testing.T) (*KeyStore, *rsa.PrivateKey) {
	t.Helper()
	merchant, provider := testKeyPairs(t)
	privatePEM, err := EncodePrivateKeyPEM(merchant)
	if err != nil {
		t.Fatalf("encode merchant private key: %v", err)
	}
	publicPEM, err := EncodePublicKeyPEM(&merchant.PublicKey)
	if err != nil {
		t.Fatalf("encode merchant public key: %v", err)
	}
	providerPEM, err := EncodePublicKeyPEM(&provider.PublicKey)
	if err != nil {
		t.Fatalf("encode provider public key: %v", err)
	}
	return NewKeyStore(KeyMaterial{
		MerchantPrivate:    privatePEM,
		MerchantPublic:     publicPEM,
		CounterpartyPublic: providerPEM,
	}), provider
}
