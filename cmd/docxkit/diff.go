package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit"
)

var (
	insertColor = color.New(color.FgGreen)
	deleteColor = color.New(color.FgRed)
)

func (cfg *diffConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 args, got %v", cli.ErrUsage, args)
	}
	a, err := documentText(args[0])
	if err != nil {
		return fmt.Errorf("error reading %s: %w", args[0], err)
	}
	b, err := documentText(args[1])
	if err != nil {
		return fmt.Errorf("error reading %s: %w", args[1], err)
	}
	if writeDiff(cc.Out, a, b, cfg.All) {
		return cli.ExitCodeErr(1)
	}
	return nil
}

// documentText flattens a document to one line per paragraph, each part
// introduced by its name.
func documentText(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	parts, err := docxkit.ExtractTextBytes(content)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, p := range parts {
		fmt.Fprintf(&b, "== %s\n", p.Part)
		for _, para := range p.Paragraphs {
			b.WriteString(para)
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

// writeDiff prints a line diff of a and b and reports whether they differ.
func writeDiff(w io.Writer, a, b string, all bool) bool {
	dmp := diffpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var out bytes.Buffer
	differs := false
	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			line = strings.TrimSuffix(line, "\n")
			switch d.Type {
			case diffpatch.DiffInsert:
				differs = true
				out.WriteString(insertColor.Sprint("+ "+line) + "\n")
			case diffpatch.DiffDelete:
				differs = true
				out.WriteString(deleteColor.Sprint("- "+line) + "\n")
			case diffpatch.DiffEqual:
				if all || strings.HasPrefix(line, "== ") {
					out.WriteString("  " + line + "\n")
				}
			}
		}
	}
	if differs {
		w.Write(out.Bytes())
	}
	return differs
}
