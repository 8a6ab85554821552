package encryption

import (
	"crypto/aes"
	"encoding/binary"
	"fmt"
)

// TrailerSize is the fixed suffix appended after the ciphertext chunks:
// the clear 32-byte nonce followed by one encrypted block holding the
// padding count. There is no magic number, version byte, or integrity tag.
const TrailerSize = NonceSize + aes.BlockSize

// encodePadding writes the padding count into a single cipher block as a
// 16-byte big-endian integer.
func encodePadding(padding int) [aes.BlockSize]byte {
	var block [aes.BlockSize]byte

	binary.BigEndian.PutUint64(block[8:], uint64(padding))

	return block
}

// decodePadding parses a decrypted padding block. Any value outside
// [0,ChunkSize] means the key was wrong or the file is foreign; the two
// cases are indistinguishable.
func decodePadding(block []byte) (int, error) {
	high := binary.BigEndian.Uint64(block[:8])
	low := binary.BigEndian.Uint64(block[8:])

	if high != 0 || low > ChunkSize {
		return 0, fmt.Errorf("%w: padding count out of range", ErrFormat)
	}

	return int(low), nil
}
