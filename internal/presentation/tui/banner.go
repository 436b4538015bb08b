package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{` _   _ ____ _____ `, "#fda4af"},
	{`| | | |  _ \_   _|`, "#fb7185"},
	{`| |_| | | | || |  `, "#f43f5e"},
	{`|  _  | |_| || |  `, "#e11d48"},
	{`|_| |_|____/ |_|  `, "#be123c"},
}

// PrintBanner writes the task banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()

	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("Heartbeat Discrimination Task "+version).Faint())
	fmt.Fprintln(w)
}
