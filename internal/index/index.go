package index

import (
	"errors"
	"fmt"

	"github.com/opencontainers/go-digest"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/meigma/wax/internal/sizing"
	"github.com/meigma/wax/internal/waxtype"
)

// requiredColumns must be present in every files table.
var requiredColumns = []string{"path", "blob_offset", "blob_length", "original_size"}

// Index is a read-only view over an extracted index image.
//
// Index is not safe for concurrent use.
type Index struct {
	conn *sqlite.Conn

	// selectColumns selects path, content type, blob offset, blob length,
	// original size and digest, in that order, for the schema in hand.
	selectColumns string
}

// Open opens the index image stored at path read-only. It reports
// ErrCorruptIndex if the file is not a database carrying the files table.
//
// Images without a digest column, and images naming the content type
// column mime_type, are accepted.
func Open(path string) (*Index, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadOnly)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %w", waxtype.ErrCorruptIndex, err)
	}

	// SQLite opens lazily; the first statement is what reads the image.
	query, err := selectFor(conn)
	if err == nil {
		err = sqlitex.ExecuteTransient(conn, query+" LIMIT 0", nil)
	}
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %w", waxtype.ErrCorruptIndex, err)
	}
	return &Index{conn: conn, selectColumns: query}, nil
}

// selectFor builds the entry query from the columns of the files table.
func selectFor(conn *sqlite.Conn) (string, error) {
	columns := make(map[string]bool)
	err := sqlitex.ExecuteTransient(conn, "PRAGMA table_info(files)", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			columns[stmt.GetText("name")] = true
			return nil
		},
	})
	if err != nil {
		return "", err
	}
	if len(columns) == 0 {
		return "", errors.New("no files table")
	}
	for _, name := range requiredColumns {
		if !columns[name] {
			return "", fmt.Errorf("files table has no %s column", name)
		}
	}

	contentType := "NULL"
	switch {
	case columns["content_type"]:
		contentType = "content_type"
	case columns["mime_type"]:
		contentType = "mime_type"
	}
	digestColumn := "NULL"
	if columns["digest"] {
		digestColumn = "digest"
	}
	return "SELECT path, " + contentType + ", blob_offset, blob_length, original_size, " +
		digestColumn + " FROM files", nil
}

// Lookup returns the entry stored for path.
func (idx *Index) Lookup(path string) (waxtype.Entry, bool, error) {
	var (
		entry waxtype.Entry
		found bool
	)
	err := sqlitex.Execute(idx.conn, idx.selectColumns+" WHERE path = ?", &sqlitex.ExecOptions{
		Args: []any{path},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			e, err := scanEntry(stmt)
			if err != nil {
				return err
			}
			entry, found = e, true
			return nil
		},
	})
	if err != nil {
		return waxtype.Entry{}, false, corrupt("lookup "+path, err)
	}
	return entry, found, nil
}

// Entries returns every entry ordered ascending by path. SQLite's binary
// collation orders the same way as Go string comparison.
func (idx *Index) Entries() ([]waxtype.Entry, error) {
	var entries []waxtype.Entry
	err := sqlitex.Execute(idx.conn, idx.selectColumns+" ORDER BY path ASC", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			e, err := scanEntry(stmt)
			if err != nil {
				return err
			}
			entries = append(entries, e)
			return nil
		},
	})
	if err != nil {
		return nil, corrupt("list", err)
	}
	return entries, nil
}

// Len returns the number of entries.
func (idx *Index) Len() (int, error) {
	var n int
	err := sqlitex.Execute(idx.conn, "SELECT count(*) FROM files", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			n = stmt.ColumnInt(0)
			return nil
		},
	})
	if err != nil {
		return 0, corrupt("count", err)
	}
	return n, nil
}

// Close closes the database connection.
func (idx *Index) Close() error {
	if idx.conn == nil {
		return nil
	}
	err := idx.conn.Close()
	idx.conn = nil
	return err
}

// scanEntry reads one row in Index.selectColumns order.
func scanEntry(stmt *sqlite.Stmt) (waxtype.Entry, error) {
	// Columns: path(0), content_type(1), blob_offset(2), blob_length(3),
	// original_size(4), digest(5).
	e := waxtype.Entry{Path: stmt.ColumnText(0)}
	if !stmt.ColumnIsNull(1) {
		e.ContentType = stmt.ColumnText(1)
	}

	var err error
	if e.BlobOffset, err = sizing.FromInt64(stmt.ColumnInt64(2), waxtype.ErrCorruptIndex); err != nil {
		return waxtype.Entry{}, fmt.Errorf("%s: negative blob offset: %w", e.Path, err)
	}
	if e.BlobLength, err = sizing.FromInt64(stmt.ColumnInt64(3), waxtype.ErrCorruptIndex); err != nil {
		return waxtype.Entry{}, fmt.Errorf("%s: negative blob length: %w", e.Path, err)
	}
	if e.OriginalSize, err = sizing.FromInt64(stmt.ColumnInt64(4), waxtype.ErrCorruptIndex); err != nil {
		return waxtype.Entry{}, fmt.Errorf("%s: negative original size: %w", e.Path, err)
	}

	if !stmt.ColumnIsNull(5) {
		d, err := digest.Parse(stmt.ColumnText(5))
		if err != nil {
			return waxtype.Entry{}, fmt.Errorf("%w: %s: digest: %w", waxtype.ErrCorruptIndex, e.Path, err)
		}
		e.Digest = d
	}
	return e, nil
}

// corrupt attributes a failed query against the read-only image to the
// image itself.
func corrupt(op string, err error) error {
	if errors.Is(err, waxtype.ErrCorruptIndex) {
		return fmt.Errorf("index: %s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", waxtype.ErrCorruptIndex, op, err)
}
