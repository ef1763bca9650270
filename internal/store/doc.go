// Package store persists datastore documents.
//
// A document is addressed by an Identity (owner id + shard count), which
// deterministically names one backing file:
//
//	<dir>/database-<shardCount>-<ownerId>.json
//
// Two backends implement Backend:
//   - FileBackend: one canonical JSON file per identity (the default)
//   - SQLiteBackend: one row per identity, keyed by the same file name
//
// # Contract
//
//   - Load of an identity that was never saved returns an empty document, not an error
//   - Load of unreadable or unparsable data fails with dberr.ErrStorageRead
//   - Save rewrites the whole document; failures are dberr.ErrStorageWrite
//   - Backends hold no cache: every Load goes to disk
//
// # File writes
//
// FileBackend writes to a temporary sibling and renames it over the target
// by default, so a crash mid-write leaves either the old or the new
// document. Set FileBackend.Atomic to false for direct overwrites.
//
// No locking is done across processes. Concurrent writers of one identity
// race and the last rename wins.
package store
