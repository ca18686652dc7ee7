// Package core wires the crypto and shred engines into batch operations.
//
// Core operations include:
//   - ProcessPath: encrypt or decrypt a file or a directory tree
//   - ShredPaths: securely delete files without encrypting them
//   - ListEncrypted: find files in the cryptshred format
//   - Diff: compare an encrypted file with a plaintext file in memory
//
// Existing outputs are handled per file: overwrite with Force, ask through a
// Prompter, or reuse an "all" answer given earlier in the same run.
// Secure deletion of originals is confirmed once per run before any file is
// touched. Passwords are borrowed from the caller and never stored.
package core
