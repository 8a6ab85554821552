package encryption

import (
	"fmt"
	"io"
)

// Info describes an encrypted container without decrypting it. The padding
// count is not included: recovering it requires the passphrase.
type Info struct {
	// Size is the total container size in bytes.
	Size int64

	// Chunks is the number of ciphertext chunks preceding the trailer.
	Chunks int64

	// Aligned reports whether the data region is a whole number of chunks.
	// Well-formed containers are always aligned.
	Aligned bool

	// Nonce is the clear per-file random value from the trailer.
	Nonce [NonceSize]byte
}

// Inspect reads the layout and trailer nonce of an encrypted container.
func Inspect(src io.ReadSeeker) (Info, error) {
	var info Info

	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return info, fmt.Errorf("seeking to end: %w", err)
	}

	if size < TrailerSize {
		return info, fmt.Errorf("%w: %d bytes is shorter than the %d-byte trailer", ErrFormat, size, TrailerSize)
	}

	info.Size = size
	info.Chunks = (size - TrailerSize) / ChunkSize
	info.Aligned = (size-TrailerSize)%ChunkSize == 0

	if _, err := src.Seek(size-TrailerSize, io.SeekStart); err != nil {
		return info, fmt.Errorf("seeking to trailer: %w", err)
	}

	if _, err := io.ReadFull(src, info.Nonce[:]); err != nil {
		return info, fmt.Errorf("reading nonce: %w", err)
	}

	return info, nil
}
