// Package storage provides the BBolt-backed processing journal for cryptshred.
//
// Database structure uses two buckets:
//   - runs: one JSON record per encrypt/decrypt/shred run, keyed by run ID
//   - entries: a nested bucket per run ID holding one JSON record per file,
//     keyed by a big-endian sequence number
//
// The journal records file paths, so it is disabled unless the user turns
// it on. It never stores passwords, keys or file contents.
//
// BBolt provides ACID transactions, file locking, and corruption detection.
package storage
