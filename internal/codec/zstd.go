package codec

import (
	"fmt"
	"runtime"

	"github.com/klauspost/compress/zstd"

	"github.com/meigma/wax/internal/waxtype"
)

// Level is the zstd encoder level used for every entry. It is fixed at
// build time; SpeedDefault corresponds to zstd level 3.
const Level = zstd.SpeedDefault

type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newZstd(cfg config) (*zstdCodec, error) {
	encConcurrency := cfg.encoderConcurrency
	if encConcurrency <= 0 {
		encConcurrency = runtime.GOMAXPROCS(0)
	}
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(Level),
		zstd.WithEncoderConcurrency(encConcurrency),
		zstd.WithZeroFrames(true),
	)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decConcurrency := cfg.decoderConcurrency
	if decConcurrency <= 0 {
		decConcurrency = runtime.GOMAXPROCS(0)
	}
	decOpts := []zstd.DOption{zstd.WithDecoderConcurrency(decConcurrency)}
	if cfg.maxDecoderMemory != 0 {
		decOpts = append(decOpts, zstd.WithDecoderMaxMemory(cfg.maxDecoderMemory))
	}
	dec, err := zstd.NewReader(nil, decOpts...)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &zstdCodec{enc: enc, dec: dec}, nil
}

func (z *zstdCodec) Compression() waxtype.Compression {
	return waxtype.CompressionZstd
}

// Encode compresses src into a single zstd frame. Empty input still
// produces a frame so every entry has a decodable blob.
func (z *zstdCodec) Encode(src []byte) ([]byte, error) {
	return z.enc.EncodeAll(src, make([]byte, 0, len(src)/2+64)), nil
}

func (z *zstdCodec) Decode(src []byte) ([]byte, error) {
	out, err := z.dec.DecodeAll(src, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", waxtype.ErrDecompression, err)
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}

func (z *zstdCodec) Close() {
	z.enc.Close()
	z.dec.Close()
}
