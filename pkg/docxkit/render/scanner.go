package render

import (
	"strings"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/xml"
)

// Tag delimiters.
const (
	OpenDelim  = "{{"
	CloseDelim = "}}"
)

// Segment maps a text leaf into the logical text.
type Segment struct {
	Path  xml.Path // text leaf, relative to the block
	Start int      // logical offset of the leaf's first byte
	Text  string

	order int
}

// End returns the logical offset just past the leaf.
func (s Segment) End() int {
	return s.Start + len(s.Text)
}

// Anchor is an ignorable marker that contributes no logical text.
type Anchor struct {
	Path   xml.Path // relative to the block
	Offset int      // logical offset the marker sits at

	order int
}

// LogicalText is the reconstructed text of one block.
type LogicalText struct {
	Text     string
	Segments []Segment
	Anchors  []Anchor
}

// Tag is a delimiter-bounded span of logical text.
type Tag struct {
	Start int
	End   int
	Text  string
}

// Scan builds the logical text of block. Text leaves (w:t directly inside a
// run) are visited depth-first
// in document order. Properties elements and nested paragraphs are not
// entered, and deleted or field-instruction text is ignored.
func Scan(block *xml.Node, s xml.Schema) *LogicalText {
	lt := &LogicalText{}
	var b strings.Builder
	order := 0

	var walk func(n *xml.Node, p xml.Path)
	walk = func(n *xml.Node, p xml.Path) {
		for i, c := range n.Children {
			if c.Kind != xml.ElementNode {
				continue
			}
			cp := p.Child(i)
			switch {
			case s.IsParagraph(c), s.IsProperties(c):
			case s.Is(c, "delText"), s.Is(c, "instrText"):
			case s.IsText(c) && s.IsRun(n):
				text := c.Text()
				lt.Segments = append(lt.Segments, Segment{Path: cp, Start: b.Len(), Text: text, order: order})
				b.WriteString(text)
				order++
			case s.IsMarker(c):
				lt.Anchors = append(lt.Anchors, Anchor{Path: cp, Offset: b.Len(), order: order})
				order++
			default:
				walk(c, cp)
			}
		}
	}
	walk(block, nil)
	lt.Text = b.String()
	return lt
}

// Tags returns the delimiter-bounded spans of the logical text, leftmost
// first. Each opening delimiter is closed by the nearest closing delimiter;
// an opening delimiter that is never closed is a *SyntaxError.
func (lt *LogicalText) Tags() ([]Tag, error) {
	var tags []Tag
	text := lt.Text
	i := 0
	for {
		open := strings.Index(text[i:], OpenDelim)
		if open < 0 {
			return tags, nil
		}
		open += i
		rest := open + len(OpenDelim)
		closeAt := strings.Index(text[rest:], CloseDelim)
		if closeAt < 0 {
			return nil, &SyntaxError{Tag: excerpt(text[open:]), Offset: open, Message: "opening delimiter is never closed in this paragraph"}
		}
		end := rest + closeAt + len(CloseDelim)
		tags = append(tags, Tag{Start: open, End: end, Text: text[open:end]})
		i = end
	}
}

func excerpt(s string) string {
	const limit = 40
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

// Span maps the logical range [start, end) back onto the tree: the ordered
// fragments of every text leaf it touches, and the markers enclosed between
// the first and last of those leaves.
func (lt *LogicalText) Span(start, end int) (Span, bool) {
	first, last := -1, -1
	for i, seg := range lt.Segments {
		if first < 0 && seg.Start <= start && start < seg.End() {
			first = i
		}
		if seg.Start < end && end <= seg.End() {
			last = i
			break
		}
	}
	if first < 0 || last < first {
		return Span{}, false
	}

	var span Span
	for _, seg := range lt.Segments[first : last+1] {
		from := max(start-seg.Start, 0)
		to := min(end-seg.Start, len(seg.Text))
		if to < from {
			to = from
		}
		span.Fragments = append(span.Fragments, Fragment{Path: seg.Path, From: from, To: to, Text: seg.Text[from:to]})
	}
	lo, hi := lt.Segments[first].order, lt.Segments[last].order
	for _, a := range lt.Anchors {
		if a.order > lo && a.order < hi {
			span.Markers = append(span.Markers, a.Path)
		}
	}
	return span, true
}
