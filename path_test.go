package wax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "foo", "foo"},
		{"nested path", "foo/bar/baz", "foo/bar/baz"},
		{"backslashes", `foo\bar\baz.txt`, "foo/bar/baz.txt"},
		{"mixed separators", `foo\bar/baz`, "foo/bar/baz"},
		{"leading slash", "/etc/nginx", "etc/nginx"},
		{"trailing slash", "etc/nginx/", "etc/nginx"},
		{"leading backslash", `\etc\nginx`, "etc/nginx"},
		{"empty string", "", ""},
		{"root slash", "/", ""},
		// Multiple slashes
		{"multiple leading slashes", "///etc/nginx", "etc/nginx"},
		{"internal double slashes", "etc//nginx", "etc/nginx"},
		{"internal mixed doubles", `etc\\nginx//conf`, "etc/nginx/conf"},
		// Dot and dotdot segments are preserved
		{"dotdot in middle", "a/../b", "a/../b"},
		{"dot in middle", `a\.\b`, "a/./b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePath(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}
