package security

import "errors"

var (
	// ErrKey reports missing or unparsable key material.
	ErrKey = errors.New("security: invalid key material")
	// ErrCrypto reports a signing failure.
	ErrCrypto = errors.New("security: crypto operation failed")
	// ErrDecrypt reports an envelope that could not be opened.
	ErrDecrypt = errors.New("security: decrypt failed")
)
