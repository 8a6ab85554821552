package encryption

import (
	"crypto/aes"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// Codec encrypts and decrypts whole streams in the chunked container
// format. The zero-value randomness source is crypto/rand; tests inject a
// deterministic reader through WithRand.
type Codec struct {
	rand io.Reader
}

// Option configures a Codec.
type Option func(*Codec)

// WithRand replaces the source of nonce and filler bytes.
func WithRand(r io.Reader) Option {
	return func(c *Codec) {
		c.rand = r
	}
}

// New creates a Codec backed by the OS random source unless overridden.
func New(opts ...Option) *Codec {
	codec := &Codec{rand: rand.Reader}

	for _, opt := range opts {
		opt(codec)
	}

	return codec
}

// TruncateWriter is the sink required by Decrypt: decrypted chunks are
// written in full, then the filler bytes are cut off the end. *os.File
// satisfies it.
type TruncateWriter interface {
	io.Writer
	Truncate(size int64) error
}

// EncryptedSize returns the container size for a plaintext of the given
// length. A plaintext that ends exactly on a chunk boundary (or is empty)
// still gets a terminal chunk of pure filler, so the chunk count is always
// len/ChunkSize + 1.
func EncryptedSize(plaintext int64) int64 {
	return (plaintext/ChunkSize+1)*ChunkSize + TrailerSize
}

// MaxDecryptedSize returns an upper bound on the plaintext recovered from
// a container of the given size: the data region without the trailer. The
// exact length is this minus the padding count, which requires the
// passphrase to learn.
func MaxDecryptedSize(container int64) int64 {
	return max(0, container-TrailerSize)
}

// Encrypt reads plaintext from src and writes the encrypted container to
// dst: full chunks of ciphertext, then the 32-byte clear nonce, then one
// encrypted block holding the padding count.
//
// On any error the data already written to dst is unusable; the caller is
// responsible for removing a partial output.
func (c *Codec) Encrypt(dst io.Writer, src io.Reader, passphrase []byte) error {
	material := deriveKeyMaterial(passphrase)

	nonce, err := c.drawNonce()
	if err != nil {
		return err
	}

	transform, err := newBlockTransform(mixKey(material, nonce))
	if err != nil {
		return err
	}

	chunk := make([]byte, ChunkSize)

	for {
		n, err := io.ReadFull(src, chunk)

		switch {
		case err == nil:
			transform.encryptChunk(chunk)

			if _, err := dst.Write(chunk); err != nil {
				return fmt.Errorf("writing ciphertext: %w", err)
			}

		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			// Terminal chunk. A short read of 0 bytes still produces a full
			// chunk of filler, so the padding count can reach ChunkSize.
			padding := ChunkSize - n

			if _, err := io.ReadFull(c.rand, chunk[n:]); err != nil {
				return fmt.Errorf("drawing filler: %w", err)
			}

			transform.encryptChunk(chunk)

			if _, err := dst.Write(chunk); err != nil {
				return fmt.Errorf("writing ciphertext: %w", err)
			}

			return writeTrailer(dst, transform, nonce, padding)

		default:
			return fmt.Errorf("reading plaintext: %w", err)
		}
	}
}

func writeTrailer(dst io.Writer, transform *blockTransform, nonce [NonceSize]byte, padding int) error {
	if _, err := dst.Write(nonce[:]); err != nil {
		return fmt.Errorf("writing nonce: %w", err)
	}

	block := encodePadding(padding)
	transform.encryptBlock(block[:])

	if _, err := dst.Write(block[:]); err != nil {
		return fmt.Errorf("writing padding count: %w", err)
	}

	return nil
}

// Decrypt reads an encrypted container from src and writes the recovered
// plaintext to dst. The trailer is read first (nonce, then padding count),
// the chunks are decrypted front to back, and finally dst is truncated to
// drop the filler bytes of the terminal chunk.
//
// ErrFormat is returned for sources shorter than the trailer or a padding
// count outside [0,ChunkSize]; both also arise from a wrong passphrase.
func (c *Codec) Decrypt(dst TruncateWriter, src io.ReadSeeker, passphrase []byte) error {
	material := deriveKeyMaterial(passphrase)

	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("seeking to end: %w", err)
	}

	if size < TrailerSize {
		return fmt.Errorf("%w: %d bytes is shorter than the %d-byte trailer", ErrFormat, size, TrailerSize)
	}

	transform, padding, err := c.readTrailer(src, size, material)
	if err != nil {
		return err
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to start: %w", err)
	}

	chunk := make([]byte, ChunkSize)

	var chunks int64

	for {
		_, err := io.ReadFull(src, chunk)

		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			// The short read is the trailer region; it is never plaintext.
			break
		}

		if err != nil {
			return fmt.Errorf("reading ciphertext: %w", err)
		}

		transform.decryptChunk(chunk)

		if _, err := dst.Write(chunk); err != nil {
			return fmt.Errorf("writing plaintext: %w", err)
		}

		chunks++
	}

	kept := chunks*ChunkSize - int64(padding)
	if kept < 0 {
		return fmt.Errorf("%w: padding count exceeds ciphertext", ErrFormat)
	}

	if err := dst.Truncate(kept); err != nil {
		return fmt.Errorf("truncating output: %w", err)
	}

	return nil
}

// readTrailer recovers the file key and padding count from the last 48
// bytes of the source.
func (c *Codec) readTrailer(src io.ReadSeeker, size int64, material [KeySize]byte) (*blockTransform, int, error) {
	var nonce [NonceSize]byte

	if _, err := src.Seek(size-TrailerSize, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seeking to trailer: %w", err)
	}

	if _, err := io.ReadFull(src, nonce[:]); err != nil {
		return nil, 0, fmt.Errorf("reading nonce: %w", err)
	}

	transform, err := newBlockTransform(mixKey(material, nonce))
	if err != nil {
		return nil, 0, err
	}

	block := make([]byte, aes.BlockSize)

	if _, err := src.Seek(size-aes.BlockSize, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seeking to padding count: %w", err)
	}

	if _, err := io.ReadFull(src, block); err != nil {
		return nil, 0, fmt.Errorf("reading padding count: %w", err)
	}

	transform.decryptBlock(block)

	padding, err := decodePadding(block)
	if err != nil {
		return nil, 0, err
	}

	return transform, padding, nil
}
