package blobio

import (
	"errors"
	"fmt"
	"io"

	"github.com/meigma/wax/internal/sizing"
	"github.com/meigma/wax/internal/waxtype"
)

// ReadRange reads exactly length bytes starting at offset. size is the
// total size of r; ranges that extend past it report ErrTruncatedArchive
// without issuing a read.
func ReadRange(r io.ReaderAt, size int64, offset, length uint64) ([]byte, error) {
	end, ok := sizing.AddUint64(offset, length)
	if !ok {
		return nil, fmt.Errorf("range %d+%d: %w", offset, length, waxtype.ErrSizeOverflow)
	}
	if size < 0 || end > uint64(size) {
		return nil, fmt.Errorf("%w: range %d-%d exceeds %d bytes", waxtype.ErrTruncatedArchive, offset, end, size)
	}
	off, err := sizing.ToInt64(offset, waxtype.ErrSizeOverflow)
	if err != nil {
		return nil, err
	}
	n, err := sizing.ToInt(length, waxtype.ErrSizeOverflow)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, n)
	read, err := r.ReadAt(buf, off)
	if read == n {
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: read %d of %d bytes at %d", waxtype.ErrTruncatedArchive, read, n, offset)
	}
	return nil, fmt.Errorf("read range at %d: %w", offset, err)
}

// CopyRange copies exactly length bytes starting at offset from r to w.
// It is used to extract large ranges (the index image) without holding
// them in memory.
func CopyRange(w io.Writer, r io.ReaderAt, size int64, offset, length uint64) error {
	end, ok := sizing.AddUint64(offset, length)
	if !ok {
		return fmt.Errorf("range %d+%d: %w", offset, length, waxtype.ErrSizeOverflow)
	}
	if size < 0 || end > uint64(size) {
		return fmt.Errorf("%w: range %d-%d exceeds %d bytes", waxtype.ErrTruncatedArchive, offset, end, size)
	}
	off, err := sizing.ToInt64(offset, waxtype.ErrSizeOverflow)
	if err != nil {
		return err
	}
	n, err := sizing.ToInt64(length, waxtype.ErrSizeOverflow)
	if err != nil {
		return err
	}

	copied, err := io.Copy(w, io.NewSectionReader(r, off, n))
	if err != nil {
		return fmt.Errorf("copy range at %d: %w", offset, err)
	}
	if copied != n {
		return fmt.Errorf("%w: copied %d of %d bytes at %d", waxtype.ErrTruncatedArchive, copied, n, offset)
	}
	return nil
}
