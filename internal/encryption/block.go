package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

const (
	// ChunkSize is the unit of file traversal: 8 AES blocks transformed
	// independently, with no chaining between them.
	ChunkSize = 8 * aes.BlockSize
)

// blockTransform wraps an AES-256 block cipher keyed with the mixed file key.
type blockTransform struct {
	block cipher.Block
}

func newBlockTransform(key [KeySize]byte) (*blockTransform, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	return &blockTransform{block: block}, nil
}

// encryptChunk encrypts a full chunk in place, block by block.
func (t *blockTransform) encryptChunk(chunk []byte) {
	for i := 0; i < len(chunk); i += aes.BlockSize {
		t.block.Encrypt(chunk[i:i+aes.BlockSize], chunk[i:i+aes.BlockSize])
	}
}

// decryptChunk decrypts a full chunk in place, block by block.
func (t *blockTransform) decryptChunk(chunk []byte) {
	for i := 0; i < len(chunk); i += aes.BlockSize {
		t.block.Decrypt(chunk[i:i+aes.BlockSize], chunk[i:i+aes.BlockSize])
	}
}

// encryptBlock encrypts a single block in place. Used only for the trailer's
// padding field.
func (t *blockTransform) encryptBlock(block []byte) {
	t.block.Encrypt(block, block)
}

// decryptBlock decrypts a single block in place.
func (t *blockTransform) decryptBlock(block []byte) {
	t.block.Decrypt(block, block)
}
