package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit"
)

var (
	partColor  = color.New(color.Bold)
	tagColor   = color.New(color.FgCyan)
	errorColor = color.New(color.FgRed)
)

func (cfg *inspectConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: inspect needs at least one document", cli.ErrUsage)
	}
	engine := docxkit.NewWithOptions(docxkit.WithCache(0, 0))
	failed := false
	for _, path := range args {
		tmpl, err := engine.PrepareFile(path)
		if err != nil {
			return err
		}
		if printReports(cc.Out, path, tmpl.Inspect(), len(args) > 1) {
			failed = true
		}
		tmpl.Close()
	}
	if failed {
		return cli.ExitCodeErr(1)
	}
	return nil
}

// printReports lists placeholders per part and reports whether any part
// had malformed tags.
func printReports(w io.Writer, path string, reports []docxkit.PartReport, withPath bool) bool {
	failed := false
	for _, r := range reports {
		if len(r.Placeholders) == 0 && r.Err == nil {
			continue
		}
		name := r.Part
		if withPath {
			name = path + ": " + name
		}
		fmt.Fprintln(w, partColor.Sprint(name))
		for _, p := range r.Placeholders {
			fmt.Fprintf(w, "  %-10s %4d  %s\n", p.Block, p.Offset, tagColor.Sprint(p.Tag))
		}
		if r.Err != nil {
			failed = true
			fmt.Fprintf(w, "  %s\n", errorColor.Sprint(r.Err))
		}
	}
	return failed
}
