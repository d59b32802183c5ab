package render

import "github.com/benjaminschreck/go-docxkit/pkg/docxkit/xml"

// Fragment is the part of one text leaf covered by a tag.
type Fragment struct {
	Path xml.Path // text leaf, relative to the block
	From int      // byte offsets within the leaf's text
	To   int
	Text string // the covered text, checked again before editing
}

// Span is the minimal ordered set of nodes that together hold a tag.
type Span struct {
	Fragments []Fragment
	Markers   []xml.Path
}

// Occurrence is one located placeholder.
type Occurrence struct {
	Block xml.Path // absolute path of the enclosing paragraph
	Tag   string
	Start int // logical byte range within the block
	End   int
	Span  Span // paths relative to Block
}

// Nodes returns the absolute paths of every spanned node in document order.
func (o Occurrence) Nodes() []xml.Path {
	var paths []xml.Path
	for _, f := range o.Span.Fragments {
		paths = append(paths, o.Block.Join(f.Path))
	}
	for _, m := range o.Span.Markers {
		paths = append(paths, o.Block.Join(m))
	}
	sortPaths(paths)
	return paths
}

// LocateBlock scans the paragraph at block and returns its occurrences
// ordered by starting offset.
func LocateBlock(doc *xml.Document, block xml.Path, s xml.Schema) ([]Occurrence, *LogicalText, error) {
	n := doc.Resolve(block)
	if !s.IsParagraph(n) {
		return nil, nil, &TreeEditError{Path: block, Message: "expected a paragraph"}
	}
	lt := Scan(n, s)
	tags, err := lt.Tags()
	if err != nil {
		off := 0
		if se, ok := err.(*SyntaxError); ok {
			off = se.Offset
		}
		return nil, lt, &OccurrenceError{Block: block, Offset: off, Err: err}
	}
	occs := make([]Occurrence, 0, len(tags))
	for _, tag := range tags {
		occ, err := occurrenceAt(block, lt, tag)
		if err != nil {
			return nil, lt, err
		}
		occs = append(occs, occ)
	}
	return occs, lt, nil
}

func occurrenceAt(block xml.Path, lt *LogicalText, tag Tag) (Occurrence, error) {
	span, ok := lt.Span(tag.Start, tag.End)
	if !ok {
		return Occurrence{}, &OccurrenceError{
			Block: block, Tag: tag.Text, Offset: tag.Start,
			Err: &TreeEditError{Path: block, Message: "tag does not map onto text leaves"},
		}
	}
	return Occurrence{Block: block, Tag: tag.Text, Start: tag.Start, End: tag.End, Span: span}, nil
}

// Locate returns every occurrence in the part in document order. It stops at
// the first paragraph with an unterminated tag.
func Locate(doc *xml.Document, s xml.Schema) ([]Occurrence, error) {
	var all []Occurrence
	w := NewWalker(doc, s)
	for {
		p, ok := w.Next()
		if !ok {
			return all, nil
		}
		occs, _, err := LocateBlock(doc, p, s)
		if err != nil {
			return nil, err
		}
		all = append(all, occs...)
		w.Descend(p)
	}
}
