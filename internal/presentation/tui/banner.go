package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the botflow banner followed by a short subtitle.
func PrintBanner(w io.Writer, subtitle string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{" _           _    __ _              ", "#34d399"},
		{"| |__   ___ | |_ / _| | _____      __", "#2dd4bf"},
		{"| '_ \\ / _ \\| __| |_| |/ _ \\ \\ /\\ / /", "#22d3ee"},
		{"| |_) | (_) | |_|  _| | (_) \\ V  V / ", "#38bdf8"},
		{"|_.__/ \\___/ \\__|_| |_|\\___/ \\_/\\_/  ", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	if subtitle != "" {
		fmt.Fprintln(w, out.String("  "+subtitle).Faint())
	}
	fmt.Fprintln(w)
}
