// Package codec provides the compression transforms named by the archive
// header's compression code.
package codec

import (
	"fmt"

	"github.com/meigma/wax/internal/waxtype"
)

// DefaultMaxDecoderMemory is the default decoder memory limit (256MB).
const DefaultMaxDecoderMemory = 256 << 20

// Codec is a whole-buffer compression transform. Implementations are safe
// for concurrent use.
type Codec interface {
	// Compression returns the header code identifying this codec.
	Compression() waxtype.Compression

	// Encode returns the compressed form of src.
	Encode(src []byte) ([]byte, error)

	// Decode returns the decompressed form of src. Malformed input
	// reports ErrDecompression.
	Decode(src []byte) ([]byte, error)

	// Close releases encoder and decoder resources.
	Close()
}

type config struct {
	maxDecoderMemory   uint64
	decoderConcurrency int
	encoderConcurrency int
}

// Option configures a Codec.
type Option func(*config)

// WithMaxDecoderMemory limits the memory a single Decode may use.
// Set limit to 0 to disable the limit.
func WithMaxDecoderMemory(limit uint64) Option {
	return func(c *config) {
		c.maxDecoderMemory = limit
	}
}

// WithDecoderConcurrency sets how many Decode calls may run at once
// (default: 1). Values <= 0 use GOMAXPROCS.
func WithDecoderConcurrency(n int) Option {
	return func(c *config) {
		c.decoderConcurrency = n
	}
}

// WithEncoderConcurrency sets how many Encode calls may run at once
// (default: 1). Values <= 0 use GOMAXPROCS.
func WithEncoderConcurrency(n int) Option {
	return func(c *config) {
		c.encoderConcurrency = n
	}
}

// New returns the codec for compression code c.
func New(c waxtype.Compression, opts ...Option) (Codec, error) {
	cfg := config{
		maxDecoderMemory:   DefaultMaxDecoderMemory,
		decoderConcurrency: 1,
		encoderConcurrency: 1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	switch c {
	case waxtype.CompressionZstd:
		return newZstd(cfg)
	default:
		return nil, fmt.Errorf("%w: code %d", waxtype.ErrUnsupportedCompression, c)
	}
}
