package wax

import (
	"log/slog"

	"github.com/meigma/wax/cache"
)

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets a logger for reader operations.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		r.logger = logger
	}
}

// WithTempDir sets the directory that holds the reader's working copy of
// the index. The default is os.TempDir.
func WithTempDir(dir string) Option {
	return func(r *Reader) {
		r.tempDir = dir
	}
}

// WithMaxFileSize limits the maximum per-file size (compressed and uncompressed).
// Set limit to 0 to disable the limit.
func WithMaxFileSize(limit uint64) Option {
	return func(r *Reader) {
		r.maxFileSize = limit
	}
}

// WithMaxDecoderMemory limits the maximum memory used by the zstd decoder.
// Set limit to 0 to disable the limit.
func WithMaxDecoderMemory(limit uint64) Option {
	return func(r *Reader) {
		r.maxDecoderMemory = limit
	}
}

// WithVerifyDigest controls whether ReadFile checks content against the
// digest recorded in the index. Entries without a digest are never
// checked. Enabled by default.
func WithVerifyDigest(enabled bool) Option {
	return func(r *Reader) {
		r.verifyDigest = enabled
	}
}

// WithCache configures the Reader to use a content-addressed cache keyed
// by the digests recorded in the index. Only content that passed digest
// verification is stored, so caching has no effect when verification is
// disabled or the index records no digests.
func WithCache(c cache.Cache) Option {
	return func(r *Reader) {
		r.cache = c
	}
}
