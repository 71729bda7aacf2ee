package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/meigma/wax"
)

// progressLine renders build progress as one updating terminal line.
type progressLine struct {
	w       io.Writer
	started bool
}

// newProgressLine returns nil unless w is a terminal.
func newProgressLine(w io.Writer) *progressLine {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil
	}
	return &progressLine{w: w}
}

func (p *progressLine) update(e wax.ProgressEvent) {
	p.started = true
	switch e.Stage {
	case wax.StageEnumerating:
		fmt.Fprint(p.w, "\r\x1b[Kscanning inputs")
	case wax.StageCompressing:
		fmt.Fprintf(p.w, "\r\x1b[Kfiles %d/%d", e.FilesDone, e.FilesTotal)
	case wax.StageFinalizing:
		fmt.Fprintf(p.w, "\r\x1b[Kfiles %d/%d, writing index", e.FilesDone, e.FilesTotal)
	}
}

// finish ends the progress line. It is safe to call on a nil receiver.
func (p *progressLine) finish() {
	if p == nil || !p.started {
		return
	}
	fmt.Fprintln(p.w)
}
