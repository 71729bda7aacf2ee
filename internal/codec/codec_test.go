package codec

import (
	"bytes"
	"crypto/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/wax/internal/waxtype"
)

func newTestCodec(t *testing.T, opts ...Option) Codec {
	t.Helper()
	c, err := New(waxtype.CompressionZstd, opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestZstdRoundTrip(t *testing.T) {
	t.Parallel()

	random := make([]byte, 64<<10)
	_, err := rand.Read(random)
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"text", []byte("hello, archive")},
		{"repetitive", bytes.Repeat([]byte("abcd"), 10000)},
		{"random", random},
	}
	c := newTestCodec(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			enc, err := c.Encode(tt.data)
			require.NoError(t, err)
			assert.NotEmpty(t, enc, "every entry gets a frame")

			dec, err := c.Decode(enc)
			require.NoError(t, err)
			assert.Equal(t, tt.data, dec)
		})
	}
}

func TestZstdCompresses(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)
	data := bytes.Repeat([]byte("compressible "), 4096)
	enc, err := c.Encode(data)
	require.NoError(t, err)
	assert.Less(t, len(enc), len(data)/10)
}

func TestZstdDecodeMalformed(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)
	_, err := c.Decode([]byte("definitely not zstd"))
	assert.ErrorIs(t, err, waxtype.ErrDecompression)

	enc, err := c.Encode(bytes.Repeat([]byte("x"), 1000))
	require.NoError(t, err)
	_, err = c.Decode(enc[:len(enc)/2])
	assert.ErrorIs(t, err, waxtype.ErrDecompression)
}

func TestZstdConcurrentUse(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, WithEncoderConcurrency(4), WithDecoderConcurrency(4))

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data := bytes.Repeat([]byte{byte(i)}, 1000+i)
			enc, err := c.Encode(data)
			assert.NoError(t, err)
			dec, err := c.Decode(enc)
			assert.NoError(t, err)
			assert.Equal(t, data, dec)
		}()
	}
	wg.Wait()
}

func TestNewUnsupported(t *testing.T) {
	t.Parallel()

	_, err := New(waxtype.Compression(0))
	assert.ErrorIs(t, err, waxtype.ErrUnsupportedCompression)

	_, err = New(waxtype.Compression(9))
	assert.ErrorIs(t, err, waxtype.ErrUnsupportedCompression)
}

func TestCompressionCode(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)
	assert.Equal(t, waxtype.CompressionZstd, c.Compression())
	assert.Equal(t, "zstd", c.Compression().String())
}
