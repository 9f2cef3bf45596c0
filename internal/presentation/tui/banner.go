package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the jembe banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"      _                 _          ", "#34d399"},
		{"     (_) ___ _ __ ___  | |__   ___ ", "#2dd4bf"},
		{"     | |/ _ \\ '_ ` _ \\ | '_ \\ / _ \\", "#22d3ee"},
		{"     | |  __/ | | | | || |_) |  __/", "#38bdf8"},
		{"    _/ |\\___|_| |_| |_||_.__/ \\___|", "#60a5fa"},
		{"   |__/                            ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, termenv.String("   v"+version).Faint())
	}
	fmt.Fprintln(w)
}
