// Package shred overwrites files in place before unlinking them.
//
// Each pass writes the full file length with one pattern and syncs it to
// the device before the next pass starts:
//   - pass 1, 4, 7, ...: zeros
//   - pass 2, 5, 8, ...: 0xFF
//   - pass 3, 6, 9, ...: random data, regenerated for every chunk
//
// The engine never prints. Progress is reported through Shredder.OnEvent.
//
// Overwriting a file does not defeat copy-on-write filesystems, journaling,
// snapshots or flash wear-leveling.
package shred
