package index

import (
	"errors"
	"fmt"
	"io"
	"os"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/meigma/wax/internal/sizing"
	"github.com/meigma/wax/internal/waxtype"
)

const schema = `
CREATE TABLE files (
	id            INTEGER PRIMARY KEY,
	path          TEXT NOT NULL UNIQUE,
	content_type  TEXT,
	blob_offset   INTEGER NOT NULL,
	blob_length   INTEGER NOT NULL,
	original_size INTEGER NOT NULL,
	digest        TEXT
);
`

const insertQuery = `INSERT INTO files
	(path, content_type, blob_offset, blob_length, original_size, digest)
	VALUES (?, ?, ?, ?, ?, ?)`

// Writer populates a new index database. It is used by exactly one build.
type Writer struct {
	conn  *sqlite.Conn
	path  string
	endTx func(*error)
	count int
}

// Create creates an empty index with the files schema at path. path must
// not hold an existing database; an empty file is accepted.
func Create(path string) (*Writer, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite|sqlite.OpenCreate)
	if err != nil {
		return nil, fmt.Errorf("index: create %s: %w", path, err)
	}

	// The image is copied out after Close, so rollback journaling and
	// no fsyncs are enough.
	pragmas := []string{
		"PRAGMA journal_mode=DELETE",
		"PRAGMA synchronous=OFF",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			conn.Close()
			return nil, fmt.Errorf("index: %s: %w", pragma, err)
		}
	}

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: create schema: %w", err)
	}

	endTx, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: begin transaction: %w", err)
	}

	return &Writer{conn: conn, path: path, endTx: endTx}, nil
}

// Insert records one entry. A path that is already present reports
// ErrDuplicatePath; any other rejection reports ErrIndexWrite.
func (w *Writer) Insert(e *waxtype.Entry) error {
	if w.conn == nil || w.endTx == nil {
		return fmt.Errorf("%w: writer is finished", waxtype.ErrIndexWrite)
	}

	offset, err := sizing.ToInt64(e.BlobOffset, waxtype.ErrSizeOverflow)
	if err != nil {
		return fmt.Errorf("index: %s blob offset: %w", e.Path, err)
	}
	length, err := sizing.ToInt64(e.BlobLength, waxtype.ErrSizeOverflow)
	if err != nil {
		return fmt.Errorf("index: %s blob length: %w", e.Path, err)
	}
	size, err := sizing.ToInt64(e.OriginalSize, waxtype.ErrSizeOverflow)
	if err != nil {
		return fmt.Errorf("index: %s original size: %w", e.Path, err)
	}

	var contentType any
	if e.ContentType != "" {
		contentType = e.ContentType
	}
	var dgst any
	if e.Digest != "" {
		dgst = e.Digest.String()
	}

	err = sqlitex.Execute(w.conn, insertQuery, &sqlitex.ExecOptions{
		Args: []any{e.Path, contentType, offset, length, size, dgst},
	})
	if err != nil {
		if sqlite.ErrCode(err) == sqlite.ResultConstraintUnique {
			return fmt.Errorf("%w: %s", waxtype.ErrDuplicatePath, e.Path)
		}
		return fmt.Errorf("%w: %s: %w", waxtype.ErrIndexWrite, e.Path, err)
	}
	w.count++
	return nil
}

// Len returns the number of entries inserted so far.
func (w *Writer) Len() int {
	return w.count
}

// SerializeTo commits the index, closes the database and appends its
// complete byte image to dst. It returns the number of bytes written.
// No inserts are accepted afterwards.
func (w *Writer) SerializeTo(dst io.Writer) (int64, error) {
	if err := w.finish(); err != nil {
		return 0, err
	}

	f, err := os.Open(w.path)
	if err != nil {
		return 0, fmt.Errorf("index: open image: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(dst, f)
	if err != nil {
		return n, fmt.Errorf("index: copy image: %w", err)
	}
	return n, nil
}

// Close rolls back an unfinished index, closes the database and removes
// its file. It is safe to call after SerializeTo and more than once.
func (w *Writer) Close() error {
	var errs []error
	if w.endTx != nil {
		rollback := errors.New("index: abandoned")
		w.endTx(&rollback)
		w.endTx = nil
	}
	if w.conn != nil {
		if err := w.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("index: close: %w", err))
		}
		w.conn = nil
	}
	if w.path != "" {
		if err := os.Remove(w.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("index: remove %s: %w", w.path, err))
		}
		w.path = ""
	}
	return errors.Join(errs...)
}

// finish commits the transaction and closes the connection so the file
// on disk is a complete, self-contained database image.
func (w *Writer) finish() error {
	if w.conn == nil {
		return fmt.Errorf("%w: writer is closed", waxtype.ErrIndexWrite)
	}
	if w.endTx != nil {
		var err error
		w.endTx(&err)
		w.endTx = nil
		if err != nil {
			return fmt.Errorf("%w: commit: %w", waxtype.ErrIndexWrite, err)
		}
	}
	err := w.conn.Close()
	w.conn = nil
	if err != nil {
		return fmt.Errorf("index: close: %w", err)
	}
	return nil
}
