package wax

import (
	"github.com/meigma/wax/cache"
	"github.com/meigma/wax/internal/waxtype"
)

// Re-export types from internal/waxtype for the public API.
type (
	// Entry represents one archived file as recorded in the index.
	Entry = waxtype.Entry

	// EntryInfo is the listing view of an entry: path, content type and
	// original size.
	EntryInfo = waxtype.EntryInfo

	// Compression identifies the compression transform recorded in the header.
	Compression = waxtype.Compression

	// Cache stores uncompressed file contents by digest. See WithCache.
	Cache = cache.Cache
)

// CompressionZstd is the only compression transform defined by format version 1.
const CompressionZstd = waxtype.CompressionZstd

// DefaultContentType is reported for entries without a recorded content type
// and for paths that are not in the archive.
const DefaultContentType = waxtype.DefaultContentType
