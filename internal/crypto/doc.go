// Package crypto implements the cryptshred file format.
//
// An encrypted file is laid out as:
//
//	[u32 little-endian header length][JSON header][ciphertext || tag]
//
// The header carries the format version, a 32-byte salt and a 12-byte nonce.
// Salt and nonce are written as JSON arrays of integers.
//
// Encryption uses ChaCha20-Poly1305 with:
//   - 32-byte key derived from password via PBKDF2-HMAC-SHA256
//   - 600,000 iterations, fixed (the cost is not stored in the header)
//   - fresh salt and nonce per file, no associated data
//
// Memory safety:
//   - Keys and plaintext buffers are cleared before returning
//   - Passwords are borrowed; the caller clears them with ClearBytes()
package crypto
