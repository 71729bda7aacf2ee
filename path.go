package wax

import "strings"

// NormalizePath converts a path to the form stored in the index.
//
// It performs the following transformations:
//   - Converts backslashes to slashes: `dir\file.txt` → "dir/file.txt"
//   - Strips leading and trailing slashes: "/etc/nginx/" → "etc/nginx"
//   - Collapses consecutive slashes: "etc//nginx" → "etc/nginx"
//
// Archive paths are compared byte-wise after normalization, so two inputs
// that differ only in separator style name the same entry.
//
// Note: "." and ".." elements are preserved, not resolved.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	if !strings.Contains(p, "//") {
		return p
	}

	parts := strings.Split(p, "/")
	result := parts[:0] // reuse backing array
	for _, part := range parts {
		if part != "" {
			result = append(result, part)
		}
	}
	return strings.Join(result, "/")
}
