package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/meigma/wax"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	sizeStyle   = cellStyle.Align(lipgloss.Right)
	labelStyle  = lipgloss.NewStyle().Bold(true).Width(14)
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

// sizeColumn is the index of the SIZE column in the listing table.
const sizeColumn = 2

// printEntries renders the archive listing as a table.
func printEntries(w io.Writer, entries []wax.EntryInfo) {
	var total uint64
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Path, e.ContentType, formatSize(e.Size)})
		total += e.Size
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("PATH", "TYPE", "SIZE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == sizeColumn:
				return sizeStyle
			default:
				return cellStyle
			}
		})
	fmt.Fprintln(w, t.String())
	fmt.Fprintln(w, faintStyle.Render(fmt.Sprintf("%s files, %s", humanize.Comma(int64(len(entries))), formatSize(total))))
}

// printInspect renders header details.
func printInspect(w io.Writer, path string, res *wax.InspectResult) {
	h := res.Header
	field := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(label), value)
	}
	field("Archive:", path)
	field("Valid:", "yes")
	field("Version:", fmt.Sprint(h.Version))
	field("Archive ID:", h.ArchiveID.String())
	field("Compression:", h.Compression.String())
	field("Blobs:", formatSize(res.BlobBytes()))
	field("Index offset:", humanize.Comma(int64(h.IndexOffset)))
	field("Index length:", formatSize(h.IndexLength))
	field("File size:", formatSize(uint64(res.FileSize)))
	if trailing := res.TrailingBytes(); trailing > 0 {
		field("Trailing:", formatSize(trailing))
	}
}

// printSummary reports a finished build.
func printSummary(w io.Writer, output string, s *wax.BuildSummary) {
	ratio := 0.0
	if s.OriginalBytes > 0 {
		ratio = float64(s.BlobBytes) / float64(s.OriginalBytes) * 100
	}
	fmt.Fprintf(w, "Created %s: %s files, %s -> %s (%.1f%%), index %s\n",
		output,
		humanize.Comma(int64(s.FileCount)),
		humanize.IBytes(s.OriginalBytes),
		humanize.IBytes(s.BlobBytes),
		ratio,
		humanize.IBytes(s.IndexLength))
}

// formatSize renders a byte count as "1.2 KiB (1234)".
func formatSize(n uint64) string {
	if n < 1024 {
		return humanize.IBytes(n)
	}
	return fmt.Sprintf("%s (%s)", humanize.IBytes(n), humanize.Comma(int64(n)))
}
