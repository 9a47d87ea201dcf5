package auth

import "errors"

var (
	// ErrNilPrivateKey indicates a nil signing key.
	ErrNilPrivateKey = errors.New("auth: private key is nil")

	// ErrSigningFailed indicates the signature could not be produced.
	ErrSigningFailed = errors.New("auth: signing failed")
)
