package wax

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	out, summary := buildArchive(t, map[string][]byte{
		"a.txt": []byte("alpha"),
		"b.txt": bytes.Repeat([]byte("beta"), 100),
	}, CreateWithArchiveID(id))

	res, err := Inspect(out)
	require.NoError(t, err)

	info, err := os.Stat(out)
	require.NoError(t, err)

	assert.Equal(t, Magic(), res.Header.Magic)
	assert.Equal(t, FormatVersion, res.Header.Version)
	assert.Equal(t, id, res.Header.ArchiveID)
	assert.Equal(t, CompressionZstd, res.Header.Compression)
	assert.Equal(t, summary.IndexOffset, res.Header.IndexOffset)
	assert.Equal(t, summary.IndexLength, res.Header.IndexLength)
	assert.Equal(t, info.Size(), res.FileSize)
	assert.Equal(t, summary.BlobBytes, res.BlobBytes())
	assert.Zero(t, res.TrailingBytes())
}

func TestInspect_Invalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "zero.wax")
	require.NoError(t, os.WriteFile(path, make([]byte, HeaderSize), 0o644))

	_, err := Inspect(path)
	assert.ErrorIs(t, err, ErrInvalidMagic)

	_, err = Inspect(filepath.Join(t.TempDir(), "missing.wax"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	out, _ := buildArchive(t, map[string][]byte{"a.txt": []byte("a")})
	raw, err := os.ReadFile(out)
	require.NoError(t, err)

	decoded, err := DecodeHeader(raw)
	require.NoError(t, err)
	encoded := EncodeHeader(&decoded)
	assert.Equal(t, raw[:HeaderSize], encoded[:])

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	read, err := ReadHeader(f)
	require.NoError(t, err)
	assert.Equal(t, decoded, read)

	_, err = DecodeHeader(raw[:HeaderSize-1])
	assert.ErrorIs(t, err, ErrInvalidHeader)
}
