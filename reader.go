package wax

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/meigma/wax/cache"
	"github.com/meigma/wax/internal/blobio"
	"github.com/meigma/wax/internal/codec"
	"github.com/meigma/wax/internal/header"
	"github.com/meigma/wax/internal/index"
)

// DefaultMaxFileSize is the default per-file size limit (256MB).
const DefaultMaxFileSize = 256 << 20

// DefaultMaxDecoderMemory is the default zstd decoder memory limit (256MB).
const DefaultMaxDecoderMemory = codec.DefaultMaxDecoderMemory

// Reader provides random access to the files of one archive.
//
// Opening extracts the index into a private temporary file that lives until
// Close. A Reader is not safe for concurrent use; independent Readers of
// the same archive are.
type Reader struct {
	logger           *slog.Logger
	tempDir          string
	maxFileSize      uint64
	maxDecoderMemory uint64
	verifyDigest     bool
	cache            cache.Cache

	src      ByteSource
	closer   io.Closer
	size     int64
	header   Header
	idx      *index.Index
	workPath string
	codec    codec.Codec
}

// ByteSource provides random access to an archive.
//
// Implementations exist for local files (*os.File via Open) and HTTP
// range requests (package http).
type ByteSource interface {
	io.ReaderAt
	Size() int64
}

// fileSource adapts an *os.File whose size is known.
type fileSource struct {
	*os.File
	size int64
}

func (f *fileSource) Size() int64 { return f.size }

// Open opens the archive at path and loads its index.
//
// It returns ErrInvalidMagic when the file is not an archive (including
// empty files and unfinished builds), ErrUnsupportedVersion or
// ErrUnsupportedCompression for headers it cannot serve,
// ErrTruncatedArchive when the index range runs past the end of the file,
// and ErrCorruptIndex when the index bytes are not a usable database.
func Open(path string, opts ...Option) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	r, err := newReader(&fileSource{File: f, size: info.Size()}, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// OpenSource opens an archive served by src and loads its index. The
// caller keeps ownership of src; Close does not close it.
//
// It reports the same errors as Open.
func OpenSource(src ByteSource, opts ...Option) (*Reader, error) {
	return newReader(src, opts)
}

func newReader(src ByteSource, opts []Option) (*Reader, error) {
	r := &Reader{
		maxFileSize:      DefaultMaxFileSize,
		maxDecoderMemory: DefaultMaxDecoderMemory,
		verifyDigest:     true,
		src:              src,
		size:             src.Size(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.load(); err != nil {
		if cerr := r.Close(); cerr != nil {
			r.log().Warn("cleanup after failed open", "error", cerr)
		}
		return nil, err
	}

	r.log().Debug("archive opened",
		"archive_id", r.header.ArchiveID.String(),
		"size", r.size,
		"index_offset", r.header.IndexOffset,
		"index_length", r.header.IndexLength)
	return r, nil
}

// load validates the header, extracts the index into the working copy
// and opens it.
func (r *Reader) load() error {
	h, err := header.Read(io.NewSectionReader(r.src, 0, r.size))
	if err != nil {
		return err
	}
	if err := h.CheckBounds(r.size); err != nil {
		return err
	}
	r.header = h

	r.codec, err = codec.New(h.Compression, codec.WithMaxDecoderMemory(r.maxDecoderMemory))
	if err != nil {
		return err
	}

	work, err := os.CreateTemp(r.tempDir, "wax-index-*.db")
	if err != nil {
		return fmt.Errorf("create working copy: %w", err)
	}
	r.workPath = work.Name()
	err = blobio.CopyRange(work, r.src, r.size, h.IndexOffset, h.IndexLength)
	if cerr := work.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("write working copy: %w", cerr)
	}
	if err != nil {
		return err
	}

	r.idx, err = index.Open(r.workPath)
	return err
}

// log returns the logger, falling back to a discard logger if nil.
func (r *Reader) log() *slog.Logger {
	if r.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.logger
}

// Header returns the archive header.
func (r *Reader) Header() Header {
	return r.header
}

// ReadFile returns the original bytes of the file stored at path.
//
// path is normalized first, so `dir\file.txt` and "dir/file.txt" name the
// same entry. It returns ErrFileNotFound for unknown paths.
//
// With a cache configured, content is served from the cache when present
// and stored there after it has been verified against its digest.
func (r *Reader) ReadFile(path string) ([]byte, error) {
	entry, err := r.Stat(path)
	if err != nil {
		return nil, err
	}
	if err := r.checkEntry(&entry); err != nil {
		return nil, err
	}

	if r.cache != nil && entry.Digest != "" {
		if data, ok := r.cache.Get(entry.Digest); ok && uint64(len(data)) == entry.OriginalSize {
			return data, nil
		}
	}

	blob, err := blobio.ReadRange(r.src, r.size, entry.BlobOffset, entry.BlobLength)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Path, err)
	}
	data, err := r.codec.Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Path, err)
	}
	if uint64(len(data)) != entry.OriginalSize {
		return nil, fmt.Errorf("%w: %s decoded to %d bytes, index records %d",
			ErrDecompression, entry.Path, len(data), entry.OriginalSize)
	}
	if r.verifyDigest && entry.Digest != "" {
		if err := entry.Digest.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCorruptIndex, entry.Path, err)
		}
		verifier := entry.Digest.Verifier()
		_, _ = verifier.Write(data)
		if !verifier.Verified() {
			return nil, fmt.Errorf("%w: %s", ErrDigestMismatch, entry.Path)
		}
		if r.cache != nil {
			if err := r.cache.Put(entry.Digest, data); err != nil {
				r.log().Warn("cache put failed", "path", entry.Path, "digest", entry.Digest.String(), "error", err)
			}
		}
	}
	return data, nil
}

// checkEntry rejects entries whose blob cannot lie in the blob region or
// exceeds the configured size limit.
func (r *Reader) checkEntry(e *Entry) error {
	end := e.BlobOffset + e.BlobLength
	if e.BlobOffset < HeaderSize || end < e.BlobOffset || end > r.header.IndexOffset {
		return fmt.Errorf("%w: %s blob %d+%d outside blob region [%d, %d)",
			ErrCorruptIndex, e.Path, e.BlobOffset, e.BlobLength, HeaderSize, r.header.IndexOffset)
	}
	if r.maxFileSize > 0 && (e.BlobLength > r.maxFileSize || e.OriginalSize > r.maxFileSize) {
		return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrSizeOverflow, e.Path, e.OriginalSize, r.maxFileSize)
	}
	return nil
}

// ContentType returns the content type recorded for path. It returns
// DefaultContentType when none was recorded, when path is not in the
// archive and when the lookup itself fails.
func (r *Reader) ContentType(path string) string {
	entry, err := r.Stat(path)
	if err != nil {
		if !errors.Is(err, ErrFileNotFound) {
			r.log().Debug("content type lookup failed", "path", path, "error", err)
		}
		return DefaultContentType
	}
	return entry.EffectiveContentType()
}

// Stat returns the index entry for path, or ErrFileNotFound.
func (r *Reader) Stat(path string) (Entry, error) {
	if r.idx == nil {
		return Entry{}, fmt.Errorf("stat %s: %w", path, os.ErrClosed)
	}
	name := NormalizePath(path)
	entry, ok, err := r.idx.Lookup(name)
	if err != nil {
		return Entry{}, err
	}
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	return entry, nil
}

// Entries lists every file in the archive in ascending path order.
func (r *Reader) Entries() ([]EntryInfo, error) {
	if r.idx == nil {
		return nil, fmt.Errorf("list entries: %w", os.ErrClosed)
	}
	entries, err := r.idx.Entries()
	if err != nil {
		return nil, err
	}
	infos := make([]EntryInfo, len(entries))
	for i := range entries {
		infos[i] = entries[i].Info()
	}
	return infos, nil
}

// Len returns the number of files in the archive.
func (r *Reader) Len() (int, error) {
	if r.idx == nil {
		return 0, fmt.Errorf("count entries: %w", os.ErrClosed)
	}
	return r.idx.Len()
}

// Close releases the archive and removes the working copy of the index.
// It is safe to call more than once.
func (r *Reader) Close() error {
	var errs []error
	if r.idx != nil {
		if err := r.idx.Close(); err != nil {
			errs = append(errs, err)
		}
		r.idx = nil
	}
	if r.workPath != "" {
		if err := os.Remove(r.workPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove working copy: %w", err))
		}
		r.workPath = ""
	}
	if r.codec != nil {
		r.codec.Close()
		r.codec = nil
	}
	if r.closer != nil {
		if err := r.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close archive: %w", err))
		}
		r.closer = nil
	}
	r.src = nil
	return errors.Join(errs...)
}
