// Package index stores archive entry metadata in an embedded SQLite
// database.
//
// The store is write-once-then-read-only. During a build a [Writer]
// populates a database file inside a single transaction and then appends
// the file's byte image to the archive. Readers extract that image to a
// private file and open it read-only with [Open]; the image is never
// queried in place inside the archive.
//
// Schema:
//
//	CREATE TABLE files (
//	    id            INTEGER PRIMARY KEY,
//	    path          TEXT NOT NULL UNIQUE,
//	    content_type  TEXT,
//	    blob_offset   INTEGER NOT NULL,
//	    blob_length   INTEGER NOT NULL,
//	    original_size INTEGER NOT NULL,
//	    digest        TEXT
//	);
package index
