// Package database stores asset records in SQLite.
//
// The videos table is keyed for deduplication by a UNIQUE content hash.
// Persist maps a violation of that constraint to ErrDuplicateKey, which is
// how a lost ingestion race surfaces after the file commit. The connection
// runs in WAL mode with a busy timeout so concurrent ingestions serialise
// their writes instead of failing.
package database
