// Package blobio appends compressed blobs to an archive and reads them back.
//
// The write side is an append-only channel that assigns each blob the
// absolute offset at which it begins. Offsets are contiguous: the next
// blob always starts where the previous one ended.
package blobio

import (
	"errors"
	"fmt"
	"io"

	"github.com/meigma/wax/internal/sizing"
	"github.com/meigma/wax/internal/waxtype"
)

// Writer appends blobs to an underlying writer while tracking the
// absolute offset of the next byte.
type Writer struct {
	cw   CountingWriter
	base uint64
}

// NewWriter returns a Writer whose first blob begins at base. The caller
// positions w at base before the first Append.
func NewWriter(w io.Writer, base uint64) *Writer {
	return &Writer{cw: CountingWriter{W: w}, base: base}
}

// Append writes p and returns the absolute offset of its first byte.
func (w *Writer) Append(p []byte) (uint64, error) {
	start := w.Offset()
	if _, ok := sizing.AddUint64(start, uint64(len(p))); !ok {
		return 0, waxtype.ErrSizeOverflow
	}
	if _, err := w.cw.Write(p); err != nil {
		if errors.Is(err, ErrOverflow) {
			return 0, waxtype.ErrSizeOverflow
		}
		return 0, fmt.Errorf("append blob at %d: %w", start, err)
	}
	return start, nil
}

// Offset returns the absolute offset where the next blob will begin.
func (w *Writer) Offset() uint64 {
	return w.base + w.cw.N
}

// Written returns the number of blob bytes appended so far.
func (w *Writer) Written() uint64 {
	return w.cw.N
}
