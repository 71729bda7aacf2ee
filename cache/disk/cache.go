// Package disk provides a disk-backed cache implementation.
//
// Entries live at <dir>/<algorithm>/<shard>/<encoded>, where shard is a
// prefix of the encoded digest.
package disk

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"
)

const (
	defaultShardPrefixLen = 2
	defaultDirPerm        = 0o700
)

// Cache implements cache.Cache using the local filesystem.
type Cache struct {
	dir            string
	shardPrefixLen int
	dirPerm        os.FileMode
}

// Option configures a disk cache.
type Option func(*Cache)

// WithShardPrefixLen sets the number of hex characters used for sharding.
// Use 0 to disable sharding. Defaults to 2.
func WithShardPrefixLen(n int) Option {
	return func(c *Cache) {
		c.shardPrefixLen = n
	}
}

// WithDirPerm sets the directory permissions used for cache directories.
func WithDirPerm(mode os.FileMode) Option {
	return func(c *Cache) {
		c.dirPerm = mode
	}
}

// New creates a disk-backed cache rooted at dir.
func New(dir string, opts ...Option) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("cache dir is empty")
	}
	c := &Cache{
		dir:            dir,
		shardPrefixLen: defaultShardPrefixLen,
		dirPerm:        defaultDirPerm,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.shardPrefixLen < 0 {
		return nil, errors.New("shard prefix length must be >= 0")
	}
	if err := os.MkdirAll(dir, c.dirPerm); err != nil {
		return nil, err
	}
	return c, nil
}

// Get retrieves content by digest. Entries whose content no longer
// matches their digest are removed and reported as misses.
func (c *Cache) Get(d digest.Digest) ([]byte, bool) {
	path, err := c.path(d)
	if err != nil {
		return nil, false
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is derived from the digest
	if err != nil {
		return nil, false
	}
	verifier := d.Verifier()
	_, _ = verifier.Write(data)
	if !verifier.Verified() {
		_ = os.Remove(path)
		return nil, false
	}
	return data, true
}

// Put stores content by digest. Existing entries are left untouched.
func (c *Cache) Put(d digest.Digest, content []byte) error {
	path, err := c.path(d)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, c.dirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "cache-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		if _, statErr := os.Stat(path); statErr == nil {
			return nil
		}
		return err
	}
	return nil
}

// Size returns the total bytes stored in the cache.
func (c *Cache) Size() (int64, error) {
	return dirSize(c.dir)
}

// Prune removes the oldest entries until at most maxBytes remain.
// It returns the number of bytes freed.
func (c *Cache) Prune(maxBytes int64) (int64, error) {
	freed, _, err := pruneDir(c.dir, maxBytes)
	return freed, err
}

func (c *Cache) path(d digest.Digest) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	encoded := d.Encoded()
	if c.shardPrefixLen <= 0 {
		return filepath.Join(c.dir, d.Algorithm().String(), encoded), nil
	}
	prefixLen := min(c.shardPrefixLen, len(encoded))
	return filepath.Join(c.dir, d.Algorithm().String(), encoded[:prefixLen], encoded), nil
}
