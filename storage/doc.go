// Package storage writes snapshot aggregates to timestamped JSON files.
//
// Each snapshot kind gets its own subdirectory under a configured root,
// created on demand. File names embed a millisecond-precision UTC capture
// timestamp in a lexicographically sortable pattern, and writes refuse to
// overwrite an existing file.
package storage
