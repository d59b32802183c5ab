package xml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Document is a parsed markup part: its prolog nodes followed by the root
// element and any trailing nodes.
type Document struct {
	Children []*Node
}

// Parse builds a Document from raw markup. Every node remembers the bytes
// it was read from so that WriteTo can reproduce the input exactly.
func Parse(data []byte) (*Document, error) {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.Strict = true

	doc := &Document{}
	var stack []*Node
	add := func(n *Node) {
		if len(stack) == 0 {
			doc.Children = append(doc.Children, n)
			return
		}
		top := stack[len(stack)-1]
		top.Children = append(top.Children, n)
	}

	var prev int64
	for {
		tok, err := d.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}
		off := d.InputOffset()
		raw := string(data[prev:off])
		prev = off

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Kind: ElementNode, Name: Name{Prefix: t.Name.Space, Local: t.Name.Local}}
			for _, a := range t.Attr {
				n.Attrs = append(n.Attrs, Attr{Name: Name{Prefix: a.Name.Space, Local: a.Name.Local}, Value: a.Value})
			}
			n.orig = &origin{
				name:        n.Name,
				attrs:       append([]Attr(nil), n.Attrs...),
				raw:         raw,
				selfClosing: strings.HasSuffix(raw, "/>"),
			}
			add(n)
			stack = append(stack, n)
		case xml.EndElement:
			name := Name{Prefix: t.Name.Space, Local: t.Name.Local}
			if len(stack) == 0 {
				return nil, fmt.Errorf("parse xml: unexpected end element </%s>", name)
			}
			top := stack[len(stack)-1]
			if top.Name != name {
				return nil, fmt.Errorf("parse xml: element <%s> closed by </%s>", top.Name, name)
			}
			if !top.orig.selfClosing {
				top.orig.rawEnd = raw
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			n := NewText(string(t))
			n.orig = &origin{data: n.Data, raw: raw}
			add(n)
		case xml.Comment:
			n := &Node{Kind: CommentNode, Data: string(t)}
			n.orig = &origin{data: n.Data, raw: raw}
			add(n)
		case xml.ProcInst:
			n := &Node{Kind: ProcInstNode, Name: Name{Local: t.Target}, Data: string(t.Inst)}
			n.orig = &origin{name: n.Name, data: n.Data, raw: raw}
			add(n)
		case xml.Directive:
			n := &Node{Kind: DirectiveNode, Data: string(t)}
			n.orig = &origin{data: n.Data, raw: raw}
			add(n)
		}
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("parse xml: element <%s> is never closed", stack[len(stack)-1].Name)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("parse xml: no root element")
	}
	return doc, nil
}

// Root returns the document's root element.
func (d *Document) Root() *Node {
	for _, c := range d.Children {
		if c.Kind == ElementNode {
			return c
		}
	}
	return nil
}

// RootPath returns the path of the root element.
func (d *Document) RootPath() Path {
	for i, c := range d.Children {
		if c.Kind == ElementNode {
			return Path{i}
		}
	}
	return nil
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := &Document{Children: make([]*Node, len(d.Children))}
	for i, n := range d.Children {
		c.Children[i] = n.Clone()
	}
	return c
}

// Bytes serializes the document.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	for _, n := range d.Children {
		writeNode(&buf, n)
	}
	return buf.Bytes()
}

// WriteTo writes the serialized document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.Bytes())
	return int64(n), err
}

// Marshal serializes a single subtree.
func Marshal(n *Node) []byte {
	var buf bytes.Buffer
	writeNode(&buf, n)
	return buf.Bytes()
}

func writeNode(buf *bytes.Buffer, n *Node) {
	same := n.unchanged()
	switch n.Kind {
	case ElementNode:
		if same {
			buf.WriteString(n.orig.raw)
			if n.orig.selfClosing {
				return
			}
		} else {
			buf.WriteByte('<')
			buf.WriteString(n.Name.String())
			for _, a := range n.Attrs {
				buf.WriteByte(' ')
				buf.WriteString(a.Name.String())
				buf.WriteString(`="`)
				buf.WriteString(attrEscaper.Replace(a.Value))
				buf.WriteByte('"')
			}
			if len(n.Children) == 0 {
				buf.WriteString("/>")
				return
			}
			buf.WriteByte('>')
		}
		for _, c := range n.Children {
			writeNode(buf, c)
		}
		if same && n.orig.rawEnd != "" {
			buf.WriteString(n.orig.rawEnd)
			return
		}
		buf.WriteString("</")
		buf.WriteString(n.Name.String())
		buf.WriteByte('>')
	case TextNode:
		if same {
			buf.WriteString(n.orig.raw)
			return
		}
		buf.WriteString(textEscaper.Replace(n.Data))
	case CommentNode:
		if same {
			buf.WriteString(n.orig.raw)
			return
		}
		buf.WriteString("<!--")
		buf.WriteString(n.Data)
		buf.WriteString("-->")
	case ProcInstNode:
		if same {
			buf.WriteString(n.orig.raw)
			return
		}
		buf.WriteString("<?")
		buf.WriteString(n.Name.Local)
		if n.Data != "" {
			buf.WriteByte(' ')
			buf.WriteString(n.Data)
		}
		buf.WriteString("?>")
	case DirectiveNode:
		if same {
			buf.WriteString(n.orig.raw)
			return
		}
		buf.WriteString("<!")
		buf.WriteString(n.Data)
		buf.WriteByte('>')
	}
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\r", "&#xD;")
	attrEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\n", "&#xA;", "\r", "&#xD;", "\t", "&#x9;",
	)
)
