// Package security holds key material and the cryptographic primitives used
// to talk to KuCoin Pay: RSA-SHA256 request signing, webhook signature
// verification and the AES-256-CBC codec for payer detail fields.
package security
