// Package header encodes and decodes the fixed 64-byte archive header.
//
// Layout (little-endian, offsets in bytes):
//
//	0   magic            [4]byte  "WAX1"
//	4   version          uint32
//	8   archive id       [16]byte
//	24  index offset     uint64
//	32  index length     uint64
//	40  compression      uint8
//	41  padding          [23]byte (zero)
package header

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/meigma/wax/internal/waxtype"
)

// Size is the encoded header size in bytes. Blobs start at this offset.
const Size = 64

// Version is the only layout version produced or accepted.
const Version uint32 = 1

// Magic identifies a WAX archive.
var Magic = [4]byte{'W', 'A', 'X', '1'}

const (
	offMagic       = 0
	offVersion     = 4
	offArchiveID   = 8
	offIndexOffset = 24
	offIndexLength = 32
	offCompression = 40
)

// Header is the decoded archive header.
type Header struct {
	Magic       [4]byte
	Version     uint32
	ArchiveID   uuid.UUID
	IndexOffset uint64
	IndexLength uint64
	Compression waxtype.Compression
}

// New returns a header with the current magic and version.
func New(id uuid.UUID, indexOffset, indexLength uint64, c waxtype.Compression) Header {
	return Header{
		Magic:       Magic,
		Version:     Version,
		ArchiveID:   id,
		IndexOffset: indexOffset,
		IndexLength: indexLength,
		Compression: c,
	}
}

// Encode returns the fixed-size binary form of h. Padding is always zero.
func Encode(h *Header) [Size]byte {
	var b [Size]byte
	copy(b[offMagic:], h.Magic[:])
	binary.LittleEndian.PutUint32(b[offVersion:], h.Version)
	copy(b[offArchiveID:], h.ArchiveID[:])
	binary.LittleEndian.PutUint64(b[offIndexOffset:], h.IndexOffset)
	binary.LittleEndian.PutUint64(b[offIndexLength:], h.IndexLength)
	b[offCompression] = byte(h.Compression)
	return b
}

// Decode reinterprets the first Size bytes of b as a header. It does not
// validate the contents; call Validate for that.
func Decode(b []byte) (Header, error) {
	if len(b) < Size {
		return Header{}, fmt.Errorf("%w: need %d bytes, got %d", waxtype.ErrInvalidHeader, Size, len(b))
	}
	var h Header
	copy(h.Magic[:], b[offMagic:offVersion])
	h.Version = binary.LittleEndian.Uint32(b[offVersion:])
	copy(h.ArchiveID[:], b[offArchiveID:offIndexOffset])
	h.IndexOffset = binary.LittleEndian.Uint64(b[offIndexOffset:])
	h.IndexLength = binary.LittleEndian.Uint64(b[offIndexLength:])
	h.Compression = waxtype.Compression(b[offCompression])
	return h, nil
}

// Validate checks the signature, version and compression code.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return fmt.Errorf("%w: got %q", waxtype.ErrInvalidMagic, h.Magic[:])
	}
	if h.Version != Version {
		return fmt.Errorf("%w: %d", waxtype.ErrUnsupportedVersion, h.Version)
	}
	if !h.Compression.Known() {
		return fmt.Errorf("%w: code %d", waxtype.ErrUnsupportedCompression, h.Compression)
	}
	return nil
}

// CheckBounds verifies the index range lies after the header and within
// a file of the given size.
func (h *Header) CheckBounds(fileSize int64) error {
	if h.IndexOffset < Size {
		return fmt.Errorf("%w: index offset %d inside header", waxtype.ErrInvalidHeader, h.IndexOffset)
	}
	end := h.IndexOffset + h.IndexLength
	if end < h.IndexOffset {
		return fmt.Errorf("%w: index range overflows", waxtype.ErrInvalidHeader)
	}
	if fileSize < 0 || end > uint64(fileSize) {
		return fmt.Errorf("%w: index ends at %d, file is %d bytes", waxtype.ErrTruncatedArchive, end, fileSize)
	}
	return nil
}

// Read reads and validates a header from the start of r. Input shorter
// than Size, including empty input, is not an archive and reports
// ErrInvalidMagic.
func Read(r io.Reader) (Header, error) {
	var b [Size]byte
	n, err := io.ReadFull(r, b[:])
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, fmt.Errorf("%w: file is %d bytes, shorter than header", waxtype.ErrInvalidMagic, n)
		}
		return Header{}, fmt.Errorf("read header: %w", err)
	}
	h, err := Decode(b[:])
	if err != nil {
		return Header{}, err
	}
	if err := h.Validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}
