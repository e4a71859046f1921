package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes a one-line colored run header naming the target.
func PrintBanner(w io.Writer, space, rootTitle string, dryRun bool) {
	p := termenv.EnvColorProfile()
	name := termenv.String("happi-to-confluence").Foreground(p.Color("#818cf8")).Bold()
	target := termenv.String(fmt.Sprintf("%s / %s", space, rootTitle)).Foreground(p.Color("#c084fc"))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s -> %s", name, target)
	if dryRun {
		fmt.Fprint(w, termenv.String(" (dry run)").Foreground(p.Color("#fb7185")))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)
}
