package encryption

import "errors"

var (
	// ErrFormat is returned when a ciphertext container does not match the
	// expected layout: shorter than the trailer, or a decrypted padding
	// count outside [0,128]. Without an authentication tag this also covers
	// the wrong-passphrase case; the two cannot be told apart.
	ErrFormat = errors.New("malformed encrypted file")
)
