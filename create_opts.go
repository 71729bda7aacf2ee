package wax

import (
	"log/slog"

	"github.com/google/uuid"
)

// CreateOption configures a Builder.
type CreateOption func(*createConfig)

type createConfig struct {
	logger       *slog.Logger
	progress     ProgressFunc
	workers      int
	archiveID    uuid.UUID
	archiveIDSet bool
	maxFiles     int
	contentTypes func(name string) string
}

// CreateWithLogger sets a logger for build operations.
// If not set, logging is disabled.
func CreateWithLogger(logger *slog.Logger) CreateOption {
	return func(c *createConfig) {
		c.logger = logger
	}
}

// CreateWithProgress sets a callback to receive progress updates.
// The callback receives events for each stage of the build.
// Callbacks are made on a single goroutine and must not block for long.
func CreateWithProgress(fn ProgressFunc) CreateOption {
	return func(c *createConfig) {
		c.progress = fn
	}
}

// CreateWithWorkers sets how many files are compressed in parallel.
// Blobs are still appended in scan order, so the archive layout does not
// depend on n. Values <= 0 use GOMAXPROCS. The default is 1.
func CreateWithWorkers(n int) CreateOption {
	return func(c *createConfig) {
		c.workers = n
	}
}

// CreateWithArchiveID stamps id into the header instead of a random id.
// Use uuid.Nil for byte-reproducible archives.
func CreateWithArchiveID(id uuid.UUID) CreateOption {
	return func(c *createConfig) {
		c.archiveID = id
		c.archiveIDSet = true
	}
}

// CreateWithMaxFiles limits the number of files included in the archive.
// Zero uses DefaultMaxFiles. Negative means no limit.
func CreateWithMaxFiles(n int) CreateOption {
	return func(c *createConfig) {
		c.maxFiles = n
	}
}

// CreateWithContentTypes replaces the content-type guesser. fn receives
// the normalized archive path; an empty result records no content type.
func CreateWithContentTypes(fn func(name string) string) CreateOption {
	return func(c *createConfig) {
		c.contentTypes = fn
	}
}
