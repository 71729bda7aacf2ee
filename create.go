package wax

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"

	"github.com/meigma/wax/internal/batch"
	"github.com/meigma/wax/internal/blobio"
	"github.com/meigma/wax/internal/codec"
	"github.com/meigma/wax/internal/contenttype"
	"github.com/meigma/wax/internal/header"
	"github.com/meigma/wax/internal/index"
	"github.com/meigma/wax/internal/platform"
	"github.com/meigma/wax/internal/sizing"
)

// DefaultMaxFiles is the default limit used when no MaxFiles option is set.
const DefaultMaxFiles = 200_000

// BuildState is the phase a Builder has reached.
type BuildState uint8

// Build states. A builder moves forward through them once; Failed is terminal.
const (
	StateInitialized BuildState = iota
	StateScanningInputs
	StateWritingBlobs
	StateFinalizingIndex
	StateHeaderPatched
	StateFailed
)

// String returns the string representation of the state.
func (s BuildState) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateScanningInputs:
		return "scanning-inputs"
	case StateWritingBlobs:
		return "writing-blobs"
	case StateFinalizingIndex:
		return "finalizing-index"
	case StateHeaderPatched:
		return "header-patched"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// BuildSummary describes a finished archive.
type BuildSummary struct {
	// ArchiveID is the identifier stamped into the header.
	ArchiveID uuid.UUID

	// FileCount is the number of files archived.
	FileCount int

	// BlobBytes is the total compressed size of all blobs.
	BlobBytes uint64

	// OriginalBytes is the total uncompressed size of all files.
	OriginalBytes uint64

	// IndexOffset and IndexLength locate the index image in the archive.
	IndexOffset uint64
	IndexLength uint64
}

// Builder writes one archive. It owns the output file and a temporary
// index database until Build finishes or Close is called.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	cfg createConfig

	output    string
	out       *os.File
	indexPath string
	idx       *index.Writer
	codec     codec.Codec

	state BuildState
	used  bool
}

// NewBuilder creates output and reserves its header with 64 zero bytes.
// The temporary index database is created in the same directory as output.
//
// Until Build succeeds the file starts with a zero header, which readers
// reject with ErrInvalidMagic.
func NewBuilder(output string, opts ...CreateOption) (*Builder, error) {
	cfg := createConfig{workers: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers <= 0 {
		cfg.workers = runtime.GOMAXPROCS(0)
	}
	if cfg.maxFiles == 0 {
		cfg.maxFiles = DefaultMaxFiles
	}
	if cfg.contentTypes == nil {
		cfg.contentTypes = contenttype.Guess
	}

	out, err := os.OpenFile(output, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	b := &Builder{cfg: cfg, output: output, out: out}

	var placeholder [HeaderSize]byte
	if _, err := out.Write(placeholder[:]); err != nil {
		b.cleanup()
		return nil, fmt.Errorf("write header placeholder: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(output), ".wax-index-*.db")
	if err != nil {
		b.cleanup()
		return nil, fmt.Errorf("create index file: %w", err)
	}
	b.indexPath = tmp.Name()
	if err := tmp.Close(); err != nil {
		b.cleanup()
		return nil, fmt.Errorf("create index file: %w", err)
	}

	b.idx, err = index.Create(b.indexPath)
	if err != nil {
		b.cleanup()
		return nil, err
	}

	b.codec, err = codec.New(CompressionZstd, codec.WithEncoderConcurrency(cfg.workers))
	if err != nil {
		b.cleanup()
		return nil, err
	}

	b.log().Debug("builder initialized", "output", output, "index", b.indexPath, "workers", cfg.workers)
	return b, nil
}

// State returns the phase the builder has reached.
func (b *Builder) State() BuildState {
	return b.state
}

// Build archives every regular file under dir and finalizes the output.
//
// Files are visited in lexical order and appended in that order, so the
// same tree always produces the same layout. Symbolic links and other
// non-regular files are skipped. Empty directories are not recorded.
//
// Build may be called once. On failure no rollback is attempted: the
// output keeps its zero header and should be deleted by the caller.
func (b *Builder) Build(ctx context.Context, dir string) (*BuildSummary, error) {
	if b.used {
		return nil, ErrBuilderUsed
	}
	b.used = true

	summary, err := b.build(ctx, dir)
	if err != nil {
		b.state = StateFailed
		b.log().Warn("build failed", "output", b.output, "error", err)
		if cerr := b.cleanup(); cerr != nil {
			b.log().Warn("build cleanup failed", "error", cerr)
		}
		return nil, err
	}
	return summary, nil
}

// Close releases the output file and removes the temporary index. It is
// safe to call after Build and more than once.
func (b *Builder) Close() error {
	return b.cleanup()
}

// Create builds an archive at output from the contents of dir.
//
// It is shorthand for NewBuilder, Build and Close.
func Create(ctx context.Context, dir, output string, opts ...CreateOption) (*BuildSummary, error) {
	b, err := NewBuilder(output, opts...)
	if err != nil {
		return nil, err
	}
	summary, err := b.Build(ctx, dir)
	if cerr := b.Close(); cerr != nil && err == nil {
		return nil, cerr
	}
	return summary, err
}

// log returns the logger, falling back to a discard logger if nil.
func (b *Builder) log() *slog.Logger {
	if b.cfg.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.cfg.logger
}

// reportProgress sends a progress event if a callback is configured.
func (b *Builder) reportProgress(stage ProgressStage, path string, bytesDone uint64, filesDone, filesTotal int) {
	if b.cfg.progress == nil {
		return
	}
	b.cfg.progress(ProgressEvent{
		Stage:      stage,
		Path:       path,
		BytesDone:  bytesDone,
		FilesDone:  filesDone,
		FilesTotal: filesTotal,
	})
}

func (b *Builder) build(ctx context.Context, dir string) (*BuildSummary, error) {
	if b.out == nil || b.idx == nil {
		return nil, fmt.Errorf("build: %w", os.ErrClosed)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer root.Close()

	b.state = StateScanningInputs
	b.log().Info("creating archive", "dir", dir, "output", b.output)
	inputs, err := b.scan(ctx, root)
	if err != nil {
		return nil, err
	}

	b.state = StateWritingBlobs
	blobs := blobio.NewWriter(b.out, HeaderSize)
	count, originalBytes, err := b.writeBlobs(ctx, root, blobs, inputs)
	if err != nil {
		return nil, err
	}
	b.log().Debug("blobs written", "file_count", count, "blob_bytes", blobs.Written())

	b.state = StateFinalizingIndex
	b.reportProgress(StageFinalizing, "", originalBytes, count, len(inputs))
	indexOffset := blobs.Offset()
	n, err := b.idx.SerializeTo(b.out)
	if err != nil {
		return nil, err
	}
	indexLength, err := sizing.FromInt64(n, ErrSizeOverflow)
	if err != nil {
		return nil, err
	}

	id := b.cfg.archiveID
	if !b.cfg.archiveIDSet {
		id = uuid.New()
	}
	h := header.New(id, indexOffset, indexLength, CompressionZstd)
	encoded := header.Encode(&h)
	if _, err := b.out.WriteAt(encoded[:], 0); err != nil {
		return nil, fmt.Errorf("patch header: %w", err)
	}
	if err := b.out.Sync(); err != nil {
		return nil, fmt.Errorf("sync output: %w", err)
	}
	b.state = StateHeaderPatched

	b.log().Info("archive created",
		"output", b.output,
		"archive_id", id.String(),
		"file_count", count,
		"index_offset", indexOffset,
		"index_length", indexLength)

	return &BuildSummary{
		ArchiveID:     id,
		FileCount:     count,
		BlobBytes:     blobs.Written(),
		OriginalBytes: originalBytes,
		IndexOffset:   indexOffset,
		IndexLength:   indexLength,
	}, nil
}

// input is one regular file found by scan.
type input struct {
	path   string // normalized archive path
	fsPath string // path relative to the input root
}

// scan walks root in lexical order and returns the regular files to archive.
func (b *Builder) scan(ctx context.Context, root *os.Root) ([]input, error) {
	b.reportProgress(StageEnumerating, "", 0, 0, 0)

	var inputs []input
	err := fs.WalkDir(root.FS(), ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			if d.Type()&fs.ModeSymlink != 0 {
				b.log().Debug("skipping symlink", "path", path)
			}
			return nil
		}
		if b.cfg.maxFiles > 0 && len(inputs) >= b.cfg.maxFiles {
			return fmt.Errorf("%w: limit %d", ErrTooManyFiles, b.cfg.maxFiles)
		}
		inputs = append(inputs, input{
			path:   NormalizePath(path),
			fsPath: filepath.FromSlash(path),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}
	return inputs, nil
}

// compressed is one input after compression, ready to append.
type compressed struct {
	entry Entry
	blob  []byte
	skip  bool
}

// writeBlobs compresses inputs and appends them in scan order, recording
// each entry in the index as its blob lands.
func (b *Builder) writeBlobs(ctx context.Context, root *os.Root, blobs *blobio.Writer, inputs []input) (int, uint64, error) {
	var (
		count         int
		originalBytes uint64
	)

	work := func(_ context.Context, in input) (compressed, error) {
		return b.compress(root, in)
	}
	emit := func(_ int, c compressed) error {
		if c.skip {
			return nil
		}
		offset, err := blobs.Append(c.blob)
		if err != nil {
			return fmt.Errorf("append %s: %w", c.entry.Path, err)
		}
		c.entry.BlobOffset = offset
		if err := b.idx.Insert(&c.entry); err != nil {
			return err
		}
		count++
		originalBytes += c.entry.OriginalSize
		b.reportProgress(StageCompressing, c.entry.Path, originalBytes, count, len(inputs))
		return nil
	}

	if err := batch.Ordered(ctx, inputs, b.cfg.workers, work, emit); err != nil {
		return 0, 0, err
	}
	return count, originalBytes, nil
}

// compress reads one input and produces its blob and index entry.
func (b *Builder) compress(root *os.Root, in input) (compressed, error) {
	f, err := platform.OpenFileNoFollow(root, in.fsPath)
	if err != nil {
		if errors.Is(err, platform.ErrSymlink) {
			b.log().Debug("skipping symlink", "path", in.path)
			return compressed{skip: true}, nil
		}
		return compressed{}, fmt.Errorf("open %s: %w", in.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return compressed{}, fmt.Errorf("stat %s: %w", in.path, err)
	}
	if !info.Mode().IsRegular() {
		return compressed{skip: true}, nil
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return compressed{}, fmt.Errorf("read %s: %w", in.path, err)
	}
	blob, err := b.codec.Encode(data)
	if err != nil {
		return compressed{}, fmt.Errorf("compress %s: %w", in.path, err)
	}

	return compressed{
		entry: Entry{
			Path:         in.path,
			ContentType:  b.cfg.contentTypes(in.path),
			BlobLength:   uint64(len(blob)),
			OriginalSize: uint64(len(data)),
			Digest:       digest.FromBytes(data),
		},
		blob: blob,
	}, nil
}

// cleanup closes the output and removes the temporary index. The output
// file itself is left in place.
func (b *Builder) cleanup() error {
	var errs []error
	if b.idx != nil {
		if err := b.idx.Close(); err != nil {
			errs = append(errs, err)
		}
		b.idx = nil
	} else if b.indexPath != "" {
		if err := os.Remove(b.indexPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove index file: %w", err))
		}
	}
	b.indexPath = ""
	if b.codec != nil {
		b.codec.Close()
		b.codec = nil
	}
	if b.out != nil {
		if err := b.out.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close output: %w", err))
		}
		b.out = nil
	}
	return errors.Join(errs...)
}
