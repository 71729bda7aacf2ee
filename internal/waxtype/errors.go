package waxtype

import "errors"

// Sentinel errors for archive operations.
var (
	// ErrInvalidHeader is returned when header bytes cannot be decoded or
	// describe an impossible layout.
	ErrInvalidHeader = errors.New("wax: invalid header")

	// ErrInvalidMagic is returned when the archive does not start with the
	// WAX signature. Unfinished builds carry an all-zero header and fail here.
	ErrInvalidMagic = errors.New("wax: invalid archive: magic bytes mismatch")

	// ErrUnsupportedVersion is returned for header versions other than 1.
	ErrUnsupportedVersion = errors.New("wax: unsupported format version")

	// ErrUnsupportedCompression is returned for unknown compression codes.
	ErrUnsupportedCompression = errors.New("wax: unsupported compression")

	// ErrCorruptIndex is returned when the embedded index is not a valid
	// index image or holds impossible values.
	ErrCorruptIndex = errors.New("wax: corrupt index")

	// ErrTruncatedArchive is returned when a declared byte range extends
	// past the end of the archive file.
	ErrTruncatedArchive = errors.New("wax: truncated archive")

	// ErrFileNotFound is returned when a path is not present in the index.
	ErrFileNotFound = errors.New("wax: file not found")

	// ErrDuplicatePath is returned when two inputs normalize to the same path.
	ErrDuplicatePath = errors.New("wax: duplicate path")

	// ErrIndexWrite is returned when the index store rejects a write.
	ErrIndexWrite = errors.New("wax: index write failed")

	// ErrDecompression is returned when decompression fails.
	ErrDecompression = errors.New("wax: decompression failed")

	// ErrDigestMismatch is returned when file content does not match its digest.
	ErrDigestMismatch = errors.New("wax: digest verification failed")

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = errors.New("wax: size overflow")

	// ErrTooManyFiles is returned when the file count exceeds the configured limit.
	ErrTooManyFiles = errors.New("wax: too many files")

	// ErrBuilderUsed is returned when a Builder is asked to build twice.
	ErrBuilderUsed = errors.New("wax: builder already used")
)
