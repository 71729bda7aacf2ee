// Package testutil holds helpers shared by archive tests.
package testutil

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

// WriteTree creates files under dir. Keys are slash-separated paths
// relative to dir; parent directories are created as needed.
func WriteTree(tb testing.TB, dir string, files map[string][]byte) {
	tb.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			tb.Fatalf("mkdir %s: %v", name, err)
		}
		if err := os.WriteFile(path, content, 0o644); err != nil {
			tb.Fatalf("write %s: %v", name, err)
		}
	}
}

// SampleTree returns a small tree covering text, nested, empty and
// binary files.
func SampleTree() map[string][]byte {
	binary := make([]byte, 4096)
	for i := range binary {
		binary[i] = byte(i * 7)
	}
	return map[string][]byte{
		"index.html":        []byte("<html><body>hello</body></html>"),
		"css/site.css":      []byte("body { margin: 0; }"),
		"js/app.js":         []byte("console.log('hi');"),
		"docs/readme.txt":   []byte("read me\n"),
		"docs/empty.txt":    {},
		"assets/logo.bin":   binary,
		"data/config.json":  []byte(`{"debug":true}`),
		"deep/a/b/c/d.text": []byte("deep"),
	}
}

// MockByteSource implements io.ReaderAt over an in-memory slice and
// reports its size, like an opened archive.
type MockByteSource struct {
	data []byte
}

// NewMockByteSource returns a byte source backed by the provided data.
func NewMockByteSource(data []byte) *MockByteSource {
	return &MockByteSource{data: data}
}

// ReadAt implements io.ReaderAt semantics over the backing slice.
func (m *MockByteSource) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the total size of the backing data.
func (m *MockByteSource) Size() int64 {
	return int64(len(m.data))
}

// PatchFile overwrites len(p) bytes of the file at path starting at off.
func PatchFile(tb testing.TB, path string, off int64, p []byte) {
	tb.Helper()
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		tb.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	if _, err := f.WriteAt(p, off); err != nil {
		tb.Fatalf("patch %s: %v", path, err)
	}
}

// TruncateFile shortens the file at path by n bytes.
func TruncateFile(tb testing.TB, path string, n int64) {
	tb.Helper()
	info, err := os.Stat(path)
	if err != nil {
		tb.Fatalf("stat %s: %v", path, err)
	}
	if err := os.Truncate(path, info.Size()-n); err != nil {
		tb.Fatalf("truncate %s: %v", path, err)
	}
}

// ListDir returns the names in dir.
func ListDir(tb testing.TB, dir string) []string {
	tb.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		tb.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
