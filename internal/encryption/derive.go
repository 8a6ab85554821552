package encryption

import (
	"crypto/sha256"
	"fmt"
	"io"
)

const (
	// KeySize is the AES-256 key size, shared by the passphrase digest and
	// the per-file nonce.
	KeySize = 32

	// NonceSize is the size of the random value stored in each file's trailer.
	NonceSize = KeySize
)

// deriveKeyMaterial hashes the passphrase into fixed-size key material.
// The same passphrase always yields the same digest; no salt is involved
// at this stage.
func deriveKeyMaterial(passphrase []byte) [KeySize]byte {
	return sha256.Sum256(passphrase)
}

// drawNonce reads a fresh nonce from the configured random source.
// Called once per encryption and never during decryption.
func (c *Codec) drawNonce() ([NonceSize]byte, error) {
	var nonce [NonceSize]byte

	if _, err := io.ReadFull(c.rand, nonce[:]); err != nil {
		return nonce, fmt.Errorf("drawing nonce: %w", err)
	}

	return nonce, nil
}

// mixKey XORs key material with a nonce to produce the file key. XOR is
// self-inverse, so the same function recovers the key from the stored
// nonce on decryption.
func mixKey(material, nonce [KeySize]byte) [KeySize]byte {
	var key [KeySize]byte

	for i := range key {
		key[i] = material[i] ^ nonce[i]
	}

	return key
}
