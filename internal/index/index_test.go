package index

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/meigma/wax/internal/waxtype"
)

// buildImage inserts entries into a fresh index and returns its byte image.
func buildImage(t *testing.T, entries []waxtype.Entry) []byte {
	t.Helper()

	w, err := Create(filepath.Join(t.TempDir(), "build.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	for i := range entries {
		require.NoError(t, w.Insert(&entries[i]))
	}

	var buf bytes.Buffer
	n, err := w.SerializeTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)
	return buf.Bytes()
}

// openImage materializes image to a file and opens it.
func openImage(t *testing.T, image []byte) (*Index, error) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "copy.db")
	require.NoError(t, os.WriteFile(path, image, 0o600))
	idx, err := Open(path)
	if err == nil {
		t.Cleanup(func() { _ = idx.Close() })
	}
	return idx, err
}

func testEntries() []waxtype.Entry {
	return []waxtype.Entry{
		{Path: "zeta.txt", ContentType: "text/plain", BlobOffset: 64, BlobLength: 10, OriginalSize: 20, Digest: digest.FromString("zeta")},
		{Path: "alpha/beta.bin", BlobOffset: 74, BlobLength: 5, OriginalSize: 5},
		{Path: "alpha.json", ContentType: "application/json", BlobOffset: 79, BlobLength: 9, OriginalSize: 0, Digest: digest.FromString("")},
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	entries := testEntries()
	idx, err := openImage(t, buildImage(t, entries))
	require.NoError(t, err)

	n, err := idx.Len()
	require.NoError(t, err)
	assert.Equal(t, len(entries), n)

	for _, want := range entries {
		got, ok, err := idx.Lookup(want.Path)
		require.NoError(t, err)
		require.True(t, ok, want.Path)
		assert.Equal(t, want, got)
	}

	_, ok, err := idx.Lookup("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEntriesOrderedByPath(t *testing.T) {
	t.Parallel()

	idx, err := openImage(t, buildImage(t, testEntries()))
	require.NoError(t, err)

	got, err := idx.Entries()
	require.NoError(t, err)

	paths := make([]string, len(got))
	for i, e := range got {
		paths[i] = e.Path
	}
	// '.' (0x2e) sorts before '/' (0x2f), byte-wise like Go strings.
	assert.Equal(t, []string{"alpha.json", "alpha/beta.bin", "zeta.txt"}, paths)

	again, err := idx.Entries()
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestContentTypeAbsentIsNull(t *testing.T) {
	t.Parallel()

	idx, err := openImage(t, buildImage(t, testEntries()))
	require.NoError(t, err)

	e, ok, err := idx.Lookup("alpha/beta.bin")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, e.ContentType)
	assert.Equal(t, waxtype.DefaultContentType, e.EffectiveContentType())
}

func TestEmptyIndex(t *testing.T) {
	t.Parallel()

	idx, err := openImage(t, buildImage(t, nil))
	require.NoError(t, err)

	entries, err := idx.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInsertDuplicatePath(t *testing.T) {
	t.Parallel()

	w, err := Create(filepath.Join(t.TempDir(), "dup.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	e := waxtype.Entry{Path: "a/b", BlobOffset: 64, BlobLength: 1}
	require.NoError(t, w.Insert(&e))
	err = w.Insert(&e)
	assert.ErrorIs(t, err, waxtype.ErrDuplicatePath)
	assert.Equal(t, 1, w.Len())
}

func TestInsertOverflow(t *testing.T) {
	t.Parallel()

	w, err := Create(filepath.Join(t.TempDir(), "big.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	err = w.Insert(&waxtype.Entry{Path: "huge", BlobOffset: 64, OriginalSize: ^uint64(0)})
	assert.ErrorIs(t, err, waxtype.ErrSizeOverflow)
}

func TestInsertAfterSerialize(t *testing.T) {
	t.Parallel()

	w, err := Create(filepath.Join(t.TempDir(), "done.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	_, err = w.SerializeTo(&bytes.Buffer{})
	require.NoError(t, err)

	err = w.Insert(&waxtype.Entry{Path: "late"})
	assert.ErrorIs(t, err, waxtype.ErrIndexWrite)
}

func TestCloseRemovesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "gone.db")
	w, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Insert(&waxtype.Entry{Path: "x", BlobOffset: 64}))

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenCorrupt(t *testing.T) {
	t.Parallel()

	image := buildImage(t, testEntries())

	tests := []struct {
		name  string
		image []byte
	}{
		{"garbage", []byte("this is not a database image at all, just some text bytes")},
		{"zeroed header", append(make([]byte, 100), image[100:]...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := openImage(t, tt.image)
			assert.ErrorIs(t, err, waxtype.ErrCorruptIndex)
		})
	}
}

func TestOpenWrongSchema(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "other.db")
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite|sqlite.OpenCreate)
	require.NoError(t, err)
	require.NoError(t, sqlitex.ExecuteScript(conn, `CREATE TABLE things (id INTEGER PRIMARY KEY);`, nil))
	require.NoError(t, conn.Close())

	_, err = Open(path)
	assert.ErrorIs(t, err, waxtype.ErrCorruptIndex)
}

func TestOpenNegativeValues(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "neg.db")
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite|sqlite.OpenCreate)
	require.NoError(t, err)
	require.NoError(t, sqlitex.ExecuteScript(conn, schema, nil))
	require.NoError(t, sqlitex.Execute(conn, insertQuery, &sqlitex.ExecOptions{
		Args: []any{"bad", nil, int64(-5), int64(1), int64(1), nil},
	}))
	require.NoError(t, conn.Close())

	idx, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	_, _, err = idx.Lookup("bad")
	assert.ErrorIs(t, err, waxtype.ErrCorruptIndex)
}

// createWithSchema creates a database at a fresh path with script applied.
func createWithSchema(t *testing.T, script string, rows ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "schema.db")
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite|sqlite.OpenCreate)
	require.NoError(t, err)
	require.NoError(t, sqlitex.ExecuteScript(conn, script, nil))
	for _, row := range rows {
		require.NoError(t, sqlitex.ExecuteTransient(conn, row, nil))
	}
	require.NoError(t, conn.Close())
	return path
}

func TestOpenMimeTypeSchemaWithoutDigest(t *testing.T) {
	t.Parallel()

	path := createWithSchema(t, `CREATE TABLE files (
		id INTEGER PRIMARY KEY,
		path TEXT NOT NULL,
		mime_type TEXT,
		blob_offset INTEGER,
		blob_length INTEGER,
		original_size INTEGER
	);`,
		`INSERT INTO files (path, mime_type, blob_offset, blob_length, original_size) VALUES ('b.txt', 'text/plain', 74, 6, 12)`,
		`INSERT INTO files (path, mime_type, blob_offset, blob_length, original_size) VALUES ('a.bin', NULL, 64, 10, 10)`,
	)

	idx, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	got, ok, err := idx.Lookup("b.txt")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, waxtype.Entry{Path: "b.txt", ContentType: "text/plain", BlobOffset: 74, BlobLength: 6, OriginalSize: 12}, got)

	entries, err := idx.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a.bin", entries[0].Path)
	assert.Empty(t, entries[0].ContentType)
	assert.Empty(t, entries[0].Digest)
}

func TestOpenMissingRequiredColumn(t *testing.T) {
	t.Parallel()

	path := createWithSchema(t, `CREATE TABLE files (id INTEGER PRIMARY KEY, path TEXT NOT NULL, blob_offset INTEGER);`)

	_, err := Open(path)
	assert.ErrorIs(t, err, waxtype.ErrCorruptIndex)
}
