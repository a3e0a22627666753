package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/logrusorgru/aurora"
	"github.com/mattn/go-isatty"

	"neurowire/internal/model"
	"neurowire/internal/stats"
)

type printer struct {
	out io.Writer
	au  aurora.Aurora
}

// newPrinter colours output only when w is a terminal and NO_COLOR is unset.
func newPrinter(w io.Writer) printer {
	colored := false
	if f, ok := w.(*os.File); ok && os.Getenv("NO_COLOR") == "" {
		colored = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return printer{out: w, au: aurora.NewAurora(colored)}
}

func (p printer) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func (p printer) label(name string) aurora.Value {
	return p.au.Cyan(name)
}

func (p printer) ratio(point model.SurvivorPoint) aurora.Value {
	r := stats.Ratio(point)
	text := fmt.Sprintf("%5.1f%%", r*100)
	switch {
	case r >= 0.5:
		return p.au.Green(text)
	case r >= 0.2:
		return p.au.Yellow(text)
	default:
		return p.au.Red(text)
	}
}

func (p printer) survivors(point model.SurvivorPoint) string {
	return fmt.Sprintf("%s/%s %s",
		humanize.Comma(int64(point.Survivors)),
		humanize.Comma(int64(point.Population)),
		p.ratio(point))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
