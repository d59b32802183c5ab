package docxkit

import (
	"strconv"
	"strings"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/xml"
)

const monospaceFont = "Consolas"

// runStyle is the character formatting applied to generated runs.
type runStyle struct {
	Bold      bool
	Italic    bool
	Strike    bool
	Underline bool
	Monospace bool
	Size      int // half-points, 0 keeps the paragraph default
}

func (st runStyle) properties(s xml.Schema) *xml.Node {
	rPr := s.Elem("rPr")
	if st.Monospace {
		rPr.Append(s.Elem("rFonts", "ascii", monospaceFont, "hAnsi", monospaceFont, "cs", monospaceFont))
	}
	if st.Bold {
		rPr.Append(s.Elem("b"))
	}
	if st.Italic {
		rPr.Append(s.Elem("i"))
	}
	if st.Strike {
		rPr.Append(s.Elem("strike"))
	}
	if st.Size > 0 {
		rPr.Append(s.Val("sz", strconv.Itoa(st.Size)))
	}
	if st.Underline {
		rPr.Append(s.Val("u", "single"))
	}
	if len(rPr.Children) == 0 {
		return nil
	}
	return rPr
}

// textRun builds a run for text. Newlines become breaks and tabs become tab
// elements.
func textRun(s xml.Schema, st runStyle, text string) *xml.Node {
	r := s.Elem("r")
	if rPr := st.properties(s); rPr != nil {
		r.Append(rPr)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var b strings.Builder
	flush := func() {
		if b.Len() == 0 {
			return
		}
		r.Append(textElement(s, b.String()))
		b.Reset()
	}
	for _, c := range text {
		switch c {
		case '\n':
			flush()
			r.Append(s.Elem("br"))
		case '\t':
			flush()
			r.Append(s.Elem("tab"))
		default:
			b.WriteRune(c)
		}
	}
	flush()
	return r
}

func textElement(s xml.Schema, text string) *xml.Node {
	t := s.Elem("t")
	if strings.TrimSpace(text) != text {
		t.SetAttr(xml.SpaceAttr, "preserve")
	}
	return t.Append(xml.NewText(text))
}

// paragraphProps builds a pPr holding a paragraph style and optional extra
// properties, or nil when both are empty.
func paragraphProps(s xml.Schema, style string, extra ...*xml.Node) *xml.Node {
	if style == "" && len(extra) == 0 {
		return nil
	}
	pPr := s.Elem("pPr")
	if style != "" {
		pPr.Append(s.Val("pStyle", style))
	}
	return pPr.Append(extra...)
}

// paragraph builds a w:p with optional properties and runs.
func paragraph(s xml.Schema, pPr *xml.Node, runs ...*xml.Node) *xml.Node {
	p := s.Elem("p")
	if pPr != nil {
		p.Append(pPr)
	}
	return p.Append(runs...)
}

// monospaceParagraphs renders text one paragraph per line in a monospace
// font. size is in half-points; 0 keeps the style's size.
func monospaceParagraphs(s xml.Schema, text string, size int) []*xml.Node {
	text = strings.TrimRight(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if text == "" {
		return nil
	}
	var out []*xml.Node
	for _, line := range strings.Split(text, "\n") {
		p := paragraph(s, paragraphProps(s, "", s.Elem("spacing", "before", "0", "after", "0")))
		if line != "" {
			p.Append(textRun(s, runStyle{Monospace: true, Size: size}, line))
		}
		out = append(out, p)
	}
	return out
}
