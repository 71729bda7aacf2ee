package waxtype

// Compression identifies the compression transform recorded in the header.
type Compression uint8

// CompressionZstd is the only transform currently defined. Code 0 is left
// unused so an all-zero header never names a valid codec.
const CompressionZstd Compression = 1

// String returns the human-readable name of the compression algorithm.
func (c Compression) String() string {
	switch c {
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// Known reports whether c is a defined compression code.
func (c Compression) Known() bool {
	return c == CompressionZstd
}
