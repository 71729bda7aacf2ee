package wax

import "github.com/meigma/wax/internal/waxtype"

// Sentinel errors re-exported from internal/waxtype. Match them with errors.Is.
var (
	// ErrInvalidHeader is returned when header bytes cannot be decoded or
	// describe an impossible layout.
	ErrInvalidHeader = waxtype.ErrInvalidHeader

	// ErrInvalidMagic is returned when a file is not a WAX archive, including
	// empty files, files shorter than the header and unfinished builds.
	ErrInvalidMagic = waxtype.ErrInvalidMagic

	// ErrUnsupportedVersion is returned for header versions other than 1.
	ErrUnsupportedVersion = waxtype.ErrUnsupportedVersion

	// ErrUnsupportedCompression is returned for unknown compression codes.
	ErrUnsupportedCompression = waxtype.ErrUnsupportedCompression

	// ErrCorruptIndex is returned when the embedded index cannot be opened
	// or holds impossible values.
	ErrCorruptIndex = waxtype.ErrCorruptIndex

	// ErrTruncatedArchive is returned when a declared range extends past
	// the end of the archive.
	ErrTruncatedArchive = waxtype.ErrTruncatedArchive

	// ErrFileNotFound is returned when a path is not in the archive.
	ErrFileNotFound = waxtype.ErrFileNotFound

	// ErrDuplicatePath is returned when two inputs normalize to the same path.
	ErrDuplicatePath = waxtype.ErrDuplicatePath

	// ErrIndexWrite is returned when the index store rejects a write.
	ErrIndexWrite = waxtype.ErrIndexWrite

	// ErrDecompression is returned when a blob fails to decompress.
	ErrDecompression = waxtype.ErrDecompression

	// ErrDigestMismatch is returned when file content does not match its digest.
	ErrDigestMismatch = waxtype.ErrDigestMismatch

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = waxtype.ErrSizeOverflow

	// ErrTooManyFiles is returned when the file count exceeds the configured limit.
	ErrTooManyFiles = waxtype.ErrTooManyFiles

	// ErrBuilderUsed is returned when a Builder is asked to build twice.
	ErrBuilderUsed = waxtype.ErrBuilderUsed
)
