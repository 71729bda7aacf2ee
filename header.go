package wax

import (
	"io"

	"github.com/meigma/wax/internal/header"
)

// Header is the fixed 64-byte record at the start of every archive.
type Header = header.Header

// HeaderSize is the encoded header size. Blobs begin at this offset.
const HeaderSize = header.Size

// FormatVersion is the only header version produced or accepted.
const FormatVersion = header.Version

// Magic returns the 4-byte signature that starts every archive.
func Magic() [4]byte {
	return header.Magic
}

// EncodeHeader returns the binary form of h.
func EncodeHeader(h *Header) [HeaderSize]byte {
	return header.Encode(h)
}

// DecodeHeader decodes the first HeaderSize bytes of b without validating
// them. It returns ErrInvalidHeader if b is too short.
func DecodeHeader(b []byte) (Header, error) {
	return header.Decode(b)
}

// ReadHeader reads and validates a header from the start of r.
func ReadHeader(r io.Reader) (Header, error) {
	return header.Read(r)
}
