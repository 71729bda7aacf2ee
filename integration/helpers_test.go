//go:build integration

package integration

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/meigma/wax"
	"github.com/meigma/wax/internal/testutil"
)

// webRoot is nginx's default document root.
const webRoot = "/usr/share/nginx/html"

// --- Web Server Container Setup ---

var (
	serverOnce      sync.Once
	serverContainer testcontainers.Container
	serverAddr      string
	serverErr       error
)

// getServer returns the shared nginx container and its host:port address,
// starting it if needed. The container is shared across all tests.
func getServer(tb testing.TB) (testcontainers.Container, string) {
	tb.Helper()

	if os.Getenv("SKIP_DOCKER_TESTS") == "1" {
		tb.Skip("SKIP_DOCKER_TESTS is set")
	}

	serverOnce.Do(func() {
		serverContainer, serverAddr, serverErr = startServerContainer(context.Background())
	})
	if serverErr != nil {
		tb.Fatalf("start web server container: %v", serverErr)
	}
	return serverContainer, serverAddr
}

// startServerContainer starts an nginx container and returns it with its
// host:port address.
func startServerContainer(ctx context.Context) (testcontainers.Container, string, error) {
	req := testcontainers.ContainerRequest{
		Image:        "nginx:1.27-alpine",
		ExposedPorts: []string{"80/tcp"},
		WaitingFor:   wait.ForHTTP("/").WithPort("80/tcp").WithStatusCodeMatcher(isOKStatus),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("start nginx container: %w", err)
	}

	// Container cleanup is handled by the testcontainers Reaper.
	host, err := container.Host(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("resolve nginx host: %w", err)
	}
	port, err := container.MappedPort(ctx, "80/tcp")
	if err != nil {
		return nil, "", fmt.Errorf("resolve nginx port: %w", err)
	}
	return container, fmt.Sprintf("%s:%s", host, port.Port()), nil
}

func isOKStatus(status int) bool {
	return status >= 200 && status < 300
}

// --- Archive Helpers ---

// buildArchive archives files into a local temporary file.
func buildArchive(tb testing.TB, files map[string][]byte, opts ...wax.CreateOption) string {
	tb.Helper()
	src := tb.TempDir()
	testutil.WriteTree(tb, src, files)
	out := filepath.Join(tb.TempDir(), "archive.wax")
	_, err := wax.Create(context.Background(), src, out, opts...)
	require.NoError(tb, err, "create archive")
	return out
}

// publish copies the local file at path into the web root as name and
// returns its URL.
func publish(tb testing.TB, path, name string) string {
	tb.Helper()
	container, addr := getServer(tb)
	err := container.CopyFileToContainer(context.Background(), path, webRoot+"/"+name, 0o644)
	require.NoError(tb, err, "copy %s into container", name)
	return fmt.Sprintf("http://%s/%s", addr, name)
}

// --- Test Data Helpers ---

// makeCompressibleContent creates content that benefits from compression.
func makeCompressibleContent(size int) []byte {
	pattern := []byte("This is a repeating pattern for compression testing. ")
	result := make([]byte, 0, size)
	for len(result) < size {
		result = append(result, pattern...)
	}
	return result[:size]
}

// makeRandomContent creates random binary content.
func makeRandomContent(size int) []byte {
	data := make([]byte, size)
	_, _ = rand.Read(data)
	return data
}

// --- Standard Test Fixtures ---

// nestedArchive contains nested directories and an empty file.
var nestedArchive = map[string][]byte{
	"root.txt":          []byte("root file"),
	"dir1/a.txt":        []byte("file a in dir1"),
	"dir1/b.txt":        []byte("file b in dir1"),
	"dir1/sub/c.txt":    []byte("file c in dir1/sub"),
	"dir2/x.txt":        []byte("file x in dir2"),
	"dir2/deep/y.txt":   []byte("file y in dir2/deep"),
	"empty/placeholder": []byte(""),
}

// mixedArchive contains large compressible and incompressible files.
var mixedArchive = map[string][]byte{
	"large.txt":  makeCompressibleContent(512 * 1024),
	"random.bin": makeRandomContent(256 * 1024),
	"small.txt":  []byte("tiny"),
}

// --- Assertion Helpers ---

// assertFilesMatch verifies that an archive contains the expected files with correct content.
func assertFilesMatch(tb testing.TB, r *wax.Reader, expected map[string][]byte) {
	tb.Helper()
	for path, want := range expected {
		got, err := r.ReadFile(path)
		require.NoError(tb, err, "ReadFile(%q)", path)
		require.Equal(tb, want, got, "content mismatch for %q", path)
	}
}
