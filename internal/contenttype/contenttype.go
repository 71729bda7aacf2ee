// Package contenttype guesses a media type from a file name.
//
// Guessing is best effort and extension based. A built-in table is
// consulted first so archives built on different hosts record the same
// types for common files; the host's MIME database is the fallback.
package contenttype

import (
	"mime"
	"path"
	"strings"

	"github.com/meigma/wax/internal/waxtype"
)

// Fallback is returned when no type is known for a name.
const Fallback = waxtype.DefaultContentType

// GuessFunc maps a file name to a media type.
type GuessFunc func(name string) string

// Guess returns the media type for name, or Fallback.
// Parameters such as charset are stripped.
func Guess(name string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(name, `\`, "/")))
	if ext == "" {
		return Fallback
	}
	if t, ok := builtin[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if mediaType, _, err := mime.ParseMediaType(t); err == nil {
			return mediaType
		}
	}
	return Fallback
}

var builtin = map[string]string{
	".7z":    "application/x-7z-compressed",
	".avif":  "image/avif",
	".bin":   "application/octet-stream",
	".bmp":   "image/bmp",
	".bz2":   "application/x-bzip2",
	".c":     "text/x-c",
	".css":   "text/css",
	".csv":   "text/csv",
	".gif":   "image/gif",
	".go":    "text/x-go",
	".gz":    "application/gzip",
	".h":     "text/x-c",
	".htm":   "text/html",
	".html":  "text/html",
	".ico":   "image/x-icon",
	".jpeg":  "image/jpeg",
	".jpg":   "image/jpeg",
	".js":    "text/javascript",
	".json":  "application/json",
	".md":    "text/markdown",
	".mjs":   "text/javascript",
	".mp3":   "audio/mpeg",
	".mp4":   "video/mp4",
	".ogg":   "audio/ogg",
	".otf":   "font/otf",
	".pdf":   "application/pdf",
	".png":   "image/png",
	".py":    "text/x-python",
	".rs":    "text/x-rust",
	".sh":    "application/x-sh",
	".svg":   "image/svg+xml",
	".tar":   "application/x-tar",
	".toml":  "application/toml",
	".ttf":   "font/ttf",
	".txt":   "text/plain",
	".wasm":  "application/wasm",
	".wav":   "audio/wav",
	".webm":  "video/webm",
	".webp":  "image/webp",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".xml":   "text/xml",
	".yaml":  "application/yaml",
	".yml":   "application/yaml",
	".zip":   "application/zip",
	".zst":   "application/zstd",
}
