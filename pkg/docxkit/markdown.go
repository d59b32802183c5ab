package docxkit

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/render"
	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/xml"
)

var markdownParser = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough, extension.Table),
).Parser()

func markdownHelper(hc *HelperContext, arg any) (render.Value, error) {
	var src []byte
	switch v := arg.(type) {
	case string:
		src = []byte(v)
	case []byte:
		src = v
	default:
		return nil, NewHelperError("markdown", "expected text, got %T", arg)
	}
	return render.Subtree{Nodes: convertMarkdown(hc.Schema, hc.Page, src)}, nil
}

// convertMarkdown converts Markdown source to WordprocessingML blocks.
func convertMarkdown(s xml.Schema, page PageGeometry, src []byte) []*xml.Node {
	c := &markdownConverter{s: s, page: page, src: src}
	c.blocks(markdownParser.Parse(text.NewReader(src)), blockContext{})
	return c.out
}

type markdownConverter struct {
	s    xml.Schema
	page PageGeometry
	src  []byte
	out  []*xml.Node
}

type blockContext struct {
	style string
	depth int
}

func (c *markdownConverter) blocks(n ast.Node, ctx blockContext) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		c.block(child, ctx)
	}
}

func (c *markdownConverter) block(n ast.Node, ctx blockContext) {
	s := c.s
	switch n := n.(type) {
	case *ast.Heading:
		c.emit(paragraph(s, paragraphProps(s, "Heading"+strconv.Itoa(n.Level)), c.runs(n)...))
	case *ast.Paragraph, *ast.TextBlock:
		c.emit(paragraph(s, c.props(ctx), c.runs(n)...))
	case *ast.List:
		c.list(n, ctx)
	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
		var b bytes.Buffer
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(c.src))
		}
		c.emit(monospaceParagraphs(s, b.String(), 0)...)
	case *ast.ThematicBreak:
		c.emit(paragraph(s, paragraphProps(s, "", s.Elem("pBdr").Append(
			s.Elem("bottom", "val", "single", "sz", "6", "space", "1", "color", "auto"),
		))))
	case *ast.Blockquote:
		ctx.style = "Quote"
		c.blocks(n, ctx)
	case *extast.Table:
		c.emit(buildTable(s, c.page, c.table(n)))
	default:
		c.blocks(n, ctx)
	}
}

func (c *markdownConverter) emit(nodes ...*xml.Node) {
	c.out = append(c.out, nodes...)
}

func (c *markdownConverter) props(ctx blockContext) *xml.Node {
	if ctx.depth == 0 {
		return paragraphProps(c.s, ctx.style)
	}
	left := strconv.Itoa(720 * ctx.depth)
	return paragraphProps(c.s, ctx.style, c.s.Elem("ind", "left", left, "hanging", "360"))
}

// list renders each item's blocks as ListParagraph paragraphs and puts the
// item marker in front of the first one.
func (c *markdownConverter) list(n *ast.List, ctx blockContext) {
	inner := blockContext{style: "ListParagraph", depth: ctx.depth + 1}
	i := 0
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "•"
		if n.IsOrdered() {
			marker = strconv.Itoa(n.Start+i) + "."
		}
		i++

		first := len(c.out)
		c.blocks(item, inner)
		markerRun := textRun(c.s, runStyle{}, marker+"\t")
		if first == len(c.out) || !c.s.IsParagraph(c.out[first]) {
			c.out = append(c.out[:first], append([]*xml.Node{paragraph(c.s, c.props(inner), markerRun)}, c.out[first:]...)...)
			continue
		}
		p := c.out[first]
		at := 0
		if len(p.Children) > 0 && c.s.Is(p.Children[0], "pPr") {
			at = 1
		}
		p.Children = append(p.Children[:at], append([]*xml.Node{markerRun}, p.Children[at:]...)...)
	}
}

func (c *markdownConverter) table(n *extast.Table) *Table {
	t := &Table{}
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []any
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, c.plain(cell))
		}
		if _, header := row.(*extast.TableHeader); header {
			for _, cell := range cells {
				t.Columns = append(t.Columns, cell.(string))
			}
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// inlinePiece is a stretch of text with one formatting.
type inlinePiece struct {
	style runStyle
	text  string
}

// runs converts the inline children of n, grouping adjacent text with the
// same formatting into one run.
func (c *markdownConverter) runs(n ast.Node) []*xml.Node {
	pieces := c.inlines(n, runStyle{}, nil)
	var out []*xml.Node
	for i := 0; i < len(pieces); {
		j := i
		var b strings.Builder
		for ; j < len(pieces) && pieces[j].style == pieces[i].style; j++ {
			b.WriteString(pieces[j].text)
		}
		out = append(out, textRun(c.s, pieces[i].style, b.String()))
		i = j
	}
	return out
}

func (c *markdownConverter) plain(n ast.Node) string {
	var b strings.Builder
	for _, p := range c.inlines(n, runStyle{}, nil) {
		b.WriteString(p.text)
	}
	return b.String()
}

func (c *markdownConverter) inlines(n ast.Node, st runStyle, pieces []inlinePiece) []inlinePiece {
	add := func(s string) {
		if s != "" {
			pieces = append(pieces, inlinePiece{style: st, text: s})
		}
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch child := child.(type) {
		case *ast.Text:
			add(string(child.Segment.Value(c.src)))
			switch {
			case child.HardLineBreak():
				add("\n")
			case child.SoftLineBreak():
				add(" ")
			}
		case *ast.String:
			add(string(child.Value))
		case *ast.Emphasis:
			inner := st
			if child.Level >= 2 {
				inner.Bold = true
			} else {
				inner.Italic = true
			}
			pieces = c.inlines(child, inner, pieces)
		case *extast.Strikethrough:
			inner := st
			inner.Strike = true
			pieces = c.inlines(child, inner, pieces)
		case *ast.CodeSpan:
			inner := st
			inner.Monospace = true
			pieces = c.inlines(child, inner, pieces)
		case *ast.Link:
			inner := st
			inner.Underline = true
			pieces = c.inlines(child, inner, pieces)
		case *ast.AutoLink:
			inner := st
			inner.Underline = true
			pieces = append(pieces, inlinePiece{style: inner, text: string(child.Label(c.src))})
		case *ast.RawHTML:
		default:
			pieces = c.inlines(child, st, pieces)
		}
	}
	return pieces
}
