package encryption_test

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/ovesen/sealfile/internal/encryption"
)

// memSink is an in-memory TruncateWriter for decryption tests.
type memSink struct {
	buf []byte
}

func (m *memSink) Write(p []byte) (int, error) {
	m.buf = append(m.buf, p...)

	return len(p), nil
}

func (m *memSink) Truncate(size int64) error {
	if size < 0 || size > int64(len(m.buf)) {
		return fmt.Errorf("truncate %d out of range [0,%d]", size, len(m.buf))
	}

	m.buf = m.buf[:size]

	return nil
}

// deterministicCodec returns a codec whose nonce and filler bytes come from
// a seeded source, so outputs are reproducible.
func deterministicCodec(seed int64) *encryption.Codec {
	//nolint:gosec // deterministic source is the point of this helper
	return encryption.New(encryption.WithRand(rand.New(rand.NewSource(seed))))
}

func encrypt(t *testing.T, codec *encryption.Codec, plaintext, passphrase []byte) []byte {
	t.Helper()

	var out bytes.Buffer

	if err := codec.Encrypt(&out, bytes.NewReader(plaintext), passphrase); err != nil {
		t.Fatalf("encrypting: %v", err)
	}

	return out.Bytes()
}

func decrypt(t *testing.T, codec *encryption.Codec, container, passphrase []byte) []byte {
	t.Helper()

	sink := &memSink{}

	if err := codec.Decrypt(sink, bytes.NewReader(container), passphrase); err != nil {
		t.Fatalf("decrypting: %v", err)
	}

	return sink.buf
}

// Case is a single golden test case.
type Case struct {
	Description string `yaml:"description"`
	Passphrase  string `yaml:"passphrase"`
	Plaintext   string `yaml:"plaintext"`
	Fill        string `yaml:"fill,omitempty"`
	Length      int    `yaml:"length,omitempty"`
	Size        int64  `yaml:"size"`
}

// Group is a named collection of test cases.
type Group struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Cases       []Case `yaml:"cases"`
}

func (c Case) plaintext() []byte {
	if c.Fill != "" {
		return bytes.Repeat([]byte(c.Fill), c.Length)
	}

	return []byte(c.Plaintext)
}

func loadGolden(t *testing.T) []Group {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", "containers.yml"))
	if err != nil {
		t.Fatalf("reading golden file: %v", err)
	}

	var groups []Group
	if err := yaml.Unmarshal(data, &groups); err != nil {
		t.Fatalf("parsing golden file: %v", err)
	}

	return groups
}

func TestGoldenContainers(t *testing.T) {
	t.Parallel()

	for _, group := range loadGolden(t) {
		t.Run(group.Name, func(t *testing.T) {
			t.Parallel()

			for i, tc := range group.Cases {
				desc := tc.Description
				if desc == "" {
					desc = fmt.Sprintf("case_%d", i)
				}

				t.Run(desc, func(t *testing.T) {
					t.Parallel()

					plaintext := tc.plaintext()
					passphrase := []byte(tc.Passphrase)

					codec := encryption.New()

					container := encrypt(t, codec, plaintext, passphrase)

					if got := int64(len(container)); got != tc.Size {
						t.Errorf("container size = %d, want %d", got, tc.Size)
					}

					if got := encryption.EncryptedSize(int64(len(plaintext))); got != tc.Size {
						t.Errorf("EncryptedSize = %d, want %d", got, tc.Size)
					}

					recovered := decrypt(t, codec, container, passphrase)

					if !bytes.Equal(recovered, plaintext) {
						t.Errorf("round trip changed the plaintext: got %d bytes, want %d", len(recovered), len(plaintext))
					}
				})
			}
		})
	}
}

func TestRoundTripLengths(t *testing.T) {
	t.Parallel()

	passphrase := []byte("round-trip")

	for _, length := range []int{0, 1, 15, 16, 17, 127, 128, 129, 255, 256, 1000, 4096} {
		t.Run(fmt.Sprintf("len_%d", length), func(t *testing.T) {
			t.Parallel()

			plaintext := make([]byte, length)
			for i := range plaintext {
				plaintext[i] = byte(i)
			}

			codec := deterministicCodec(int64(length))

			container := encrypt(t, codec, plaintext, passphrase)

			wantSize := int64(length/encryption.ChunkSize+1)*encryption.ChunkSize + encryption.TrailerSize
			if got := int64(len(container)); got != wantSize {
				t.Fatalf("container size = %d, want %d", got, wantSize)
			}

			recovered := decrypt(t, codec, container, passphrase)

			if !bytes.Equal(recovered, plaintext) {
				t.Fatal("round trip changed the plaintext")
			}
		})
	}
}

func TestMaxDecryptedSize(t *testing.T) {
	t.Parallel()

	for _, length := range []int64{0, 1, 11, 127, 128, 129, 4096} {
		container := encryption.EncryptedSize(length)
		bound := encryption.MaxDecryptedSize(container)

		// The bound is the data region: at least the plaintext, at most one
		// chunk of filler more.
		if bound < length || bound > length+encryption.ChunkSize {
			t.Errorf("MaxDecryptedSize(%d) = %d for plaintext %d", container, bound, length)
		}
	}

	if got := encryption.MaxDecryptedSize(10); got != 0 {
		t.Errorf("MaxDecryptedSize(10) = %d, want 0", got)
	}
}

func TestExactMultipleGetsFillerChunk(t *testing.T) {
	t.Parallel()

	passphrase := []byte("boundary")
	plaintext := bytes.Repeat([]byte{0x41}, encryption.ChunkSize)

	codec := deterministicCodec(1)

	container := encrypt(t, codec, plaintext, passphrase)

	// One data chunk, one pure filler chunk, then the trailer.
	want := int64(2*encryption.ChunkSize + encryption.TrailerSize)
	if got := int64(len(container)); got != want {
		t.Fatalf("container size = %d, want %d", got, want)
	}

	recovered := decrypt(t, codec, container, passphrase)

	if !bytes.Equal(recovered, plaintext) {
		t.Fatal("round trip changed the plaintext")
	}
}

func TestEmptyPlaintext(t *testing.T) {
	t.Parallel()

	passphrase := []byte("empty")

	codec := deterministicCodec(2)

	container := encrypt(t, codec, nil, passphrase)

	want := int64(encryption.ChunkSize + encryption.TrailerSize)
	if got := int64(len(container)); got != want {
		t.Fatalf("container size = %d, want %d", got, want)
	}

	if recovered := decrypt(t, codec, container, passphrase); len(recovered) != 0 {
		t.Fatalf("decrypting an empty plaintext yielded %d bytes", len(recovered))
	}
}

func TestNonceFreshness(t *testing.T) {
	t.Parallel()

	passphrase := []byte("fresh")
	plaintext := []byte("the same plaintext, twice")

	codec := encryption.New()

	first := encrypt(t, codec, plaintext, passphrase)
	second := encrypt(t, codec, plaintext, passphrase)

	if bytes.Equal(first, second) {
		t.Error("two encryptions of the same input must differ")
	}

	if !bytes.Equal(decrypt(t, codec, first, passphrase), plaintext) {
		t.Error("first container failed to round trip")
	}

	if !bytes.Equal(decrypt(t, codec, second, passphrase), plaintext) {
		t.Error("second container failed to round trip")
	}
}

func TestDecryptTooShort(t *testing.T) {
	t.Parallel()

	codec := encryption.New()

	for _, length := range []int{0, 1, 47} {
		sink := &memSink{}

		err := codec.Decrypt(sink, bytes.NewReader(make([]byte, length)), []byte("pass"))

		if !errors.Is(err, encryption.ErrFormat) {
			t.Errorf("length %d: error = %v, want ErrFormat", length, err)
		}

		if len(sink.buf) != 0 {
			t.Errorf("length %d: %d bytes written to sink, want none", length, len(sink.buf))
		}
	}
}

func TestDecryptCorruptedNonce(t *testing.T) {
	t.Parallel()

	passphrase := []byte("intact")
	codec := deterministicCodec(3)

	container := encrypt(t, codec, []byte("some plaintext"), passphrase)

	// Flipping a nonce byte changes the derived key, so the decrypted
	// padding count comes out as garbage far outside [0,128].
	container[len(container)-encryption.TrailerSize] ^= 0xFF

	sink := &memSink{}

	err := codec.Decrypt(sink, bytes.NewReader(container), passphrase)

	if !errors.Is(err, encryption.ErrFormat) {
		t.Errorf("error = %v, want ErrFormat", err)
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	t.Parallel()

	codec := deterministicCodec(4)

	container := encrypt(t, codec, []byte("secret data"), []byte("right"))

	sink := &memSink{}

	// Without an authentication tag the wrong passphrase surfaces as a
	// format error, not an explicit rejection.
	err := codec.Decrypt(sink, bytes.NewReader(container), []byte("wrong"))

	if !errors.Is(err, encryption.ErrFormat) {
		t.Errorf("error = %v, want ErrFormat", err)
	}
}

func TestCiphertextBlocksIndependent(t *testing.T) {
	t.Parallel()

	passphrase := []byte("blocks")

	// Two identical chunks of plaintext under the same key must produce
	// identical ciphertext chunks: the transform carries no chaining state.
	plaintext := bytes.Repeat([]byte{0x55}, 2*encryption.ChunkSize)

	codec := deterministicCodec(5)

	container := encrypt(t, codec, plaintext, passphrase)

	first := container[:encryption.ChunkSize]
	second := container[encryption.ChunkSize : 2*encryption.ChunkSize]

	if !bytes.Equal(first, second) {
		t.Error("identical plaintext chunks must encrypt identically")
	}
}

func TestInspect(t *testing.T) {
	t.Parallel()

	nonceSource := strings.NewReader(strings.Repeat("\xAA", 1024))
	codec := encryption.New(encryption.WithRand(nonceSource))

	plaintext := bytes.Repeat([]byte{1}, 300)

	container := encrypt(t, codec, plaintext, []byte("inspect"))

	info, err := encryption.Inspect(bytes.NewReader(container))
	if err != nil {
		t.Fatalf("inspecting: %v", err)
	}

	if info.Size != int64(len(container)) {
		t.Errorf("Size = %d, want %d", info.Size, len(container))
	}

	if info.Chunks != 3 {
		t.Errorf("Chunks = %d, want 3", info.Chunks)
	}

	if !info.Aligned {
		t.Error("container must be chunk-aligned")
	}

	if !bytes.Equal(info.Nonce[:], bytes.Repeat([]byte{0xAA}, encryption.NonceSize)) {
		t.Errorf("Nonce = %x, want repeated 0xAA", info.Nonce)
	}

	if _, err := encryption.Inspect(bytes.NewReader(container[:40])); !errors.Is(err, encryption.ErrFormat) {
		t.Error("short container must yield ErrFormat")
	}
}
