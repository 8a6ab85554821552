// Package encryption implements passphrase-based file encryption using
// AES-256 applied blockwise to fixed 128-byte chunks. Each file gets a
// fresh random nonce which is mixed into the key and stored in a 48-byte
// trailer together with the padding count, so decryption can recover both
// the key and the exact original length.
//
// The scheme is unauthenticated: there is no integrity tag, so a wrong
// passphrase is indistinguishable from a corrupted file. The passphrase is
// hashed once with SHA-256 rather than stretched through a KDF. Both are
// deliberate format decisions kept for compatibility with existing files.
package encryption
