package render

import "github.com/benjaminschreck/go-docxkit/pkg/docxkit/xml"

// Walker yields paragraphs in document order while the tree is edited. It
// only keeps the path of the next node to examine, so callers tell it where
// to resume after changing the tree.
type Walker struct {
	doc    *xml.Document
	schema xml.Schema
	root   xml.Path
	pos    xml.Path
}

// NewWalker starts a walk at the first child of the document root.
func NewWalker(doc *xml.Document, s xml.Schema) *Walker {
	w := &Walker{doc: doc, schema: s}
	if root := doc.RootPath(); root != nil {
		w.root = root
		w.pos = root.Child(0)
	}
	return w
}

// newWalkerWithin walks the paragraphs nested inside the node at p, not p
// itself.
func newWalkerWithin(doc *xml.Document, s xml.Schema, p xml.Path) *Walker {
	return &Walker{doc: doc, schema: s, root: p, pos: p.Child(0)}
}

// Next returns the path of the next paragraph at or after the cursor.
func (w *Walker) Next() (xml.Path, bool) {
	for len(w.pos) > len(w.root) {
		n := w.doc.Resolve(w.pos)
		switch {
		case n == nil:
			w.pos = w.pos.Parent().Sibling(1)
		case w.schema.IsParagraph(n):
			return w.pos, true
		case n.Kind == xml.ElementNode && len(n.Children) > 0 && !w.schema.IsProperties(n):
			w.pos = w.pos.Child(0)
		default:
			w.pos = w.pos.Sibling(1)
		}
	}
	return nil, false
}

// Descend resumes inside the paragraph at p, visiting paragraphs nested in it
// (text boxes) before its following siblings.
func (w *Walker) Descend(p xml.Path) {
	w.pos = p.Child(0)
}

// Skip resumes after the n nodes that now start at p.
func (w *Walker) Skip(p xml.Path, n int) {
	w.pos = p.Sibling(n)
}
