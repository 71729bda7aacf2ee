// Package wax reads and writes WAX archives: single files that pack many
// source files, each compressed on its own, behind a fixed header and in
// front of an embedded SQLite index.
//
// An archive has three regions:
//   - Header: 64 bytes naming the format, the archive id, the compression
//     transform and the location of the index
//   - Blobs: one zstd frame per file, back to back, starting at byte 64
//   - Index: a SQLite database image mapping each path to its blob
//
// # Building
//
//	summary, err := wax.Create(ctx, "./site", "site.wax")
//	if err != nil {
//	    return err
//	}
//
// A failed build leaves the output with an all-zero header, which every
// reader rejects; callers should delete it.
//
// # Reading
//
//	r, err := wax.Open("site.wax")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	content, err := r.ReadFile("css/site.css")
//
// A Reader extracts the index into a private temporary file that it
// removes on Close. A Reader is not safe for concurrent use; open one
// Reader per goroutine instead.
//
// # Remote Archives
//
// OpenSource reads from any ByteSource. Package http provides one backed
// by HTTP range requests, and package cache/disk keeps verified file
// content across readers:
//
//	src, err := http.NewSource(ctx, "https://example.com/site.wax")
//	if err != nil {
//	    return err
//	}
//	c, err := disk.New(cacheDir)
//	if err != nil {
//	    return err
//	}
//	r, err := wax.OpenSource(src, wax.WithCache(c))
package wax
