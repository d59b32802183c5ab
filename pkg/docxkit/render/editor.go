package render

import (
	"slices"
	"strings"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/xml"
)

// Editor applies plans to a part tree.
type Editor struct {
	Schema xml.Schema
}

// Apply validates and applies plan. It returns the number of nodes that now
// occupy the target's former position. On error the tree is unchanged.
func (e *Editor) Apply(doc *xml.Document, plan *Plan) (int, error) {
	target := doc.Resolve(plan.Target)
	if target == nil || target.Kind != xml.ElementNode || target.Name != plan.Expect {
		return 0, &TreeEditError{Path: plan.Target, Message: "target is not a <" + plan.Expect.String() + ">"}
	}
	parent := doc.Resolve(plan.Target.Parent())
	if parent == nil {
		return 0, &TreeEditError{Path: plan.Target, Message: "target has no parent"}
	}

	var nodes []*xml.Node
	switch plan.Kind {
	case InlineRewrite:
		work := target.Clone()
		if err := e.rewrite(work, plan.Span, plan.Text); err != nil {
			return 0, withBase(err, plan.Target)
		}
		nodes = []*xml.Node{work}
	case BlockClone:
		for _, line := range plan.Lines {
			work := target.Clone()
			if err := e.rewrite(work, plan.Span, line); err != nil {
				return 0, withBase(err, plan.Target)
			}
			nodes = append(nodes, work)
		}
	case BlockReplace:
		for _, n := range plan.Nodes {
			nodes = append(nodes, n.Clone())
		}
	default:
		return 0, &TreeEditError{Path: plan.Target, Message: "unknown plan kind " + plan.Kind.String()}
	}

	i := plan.Target.Last()
	if e.Schema.IsCell(parent) && !hasElement(parent.Children[i+1:]) && !endsWithParagraph(e.Schema, nodes) {
		nodes = append(nodes, e.Schema.Elem("p"))
	}
	if err := doc.ReplaceRange(plan.Target.Parent(), i, i+1, nodes...); err != nil {
		return 0, &TreeEditError{Path: plan.Target, Message: err.Error()}
	}
	return len(nodes), nil
}

func withBase(err error, base xml.Path) error {
	if te, ok := err.(*TreeEditError); ok {
		return &TreeEditError{Path: base.Join(te.Path), Message: te.Message}
	}
	return err
}

func hasElement(nodes []*xml.Node) bool {
	for _, n := range nodes {
		if n.Kind == xml.ElementNode {
			return true
		}
	}
	return false
}

// endsWithParagraph reports whether the last element of nodes is a paragraph.
func endsWithParagraph(s xml.Schema, nodes []*xml.Node) bool {
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i].Kind == xml.ElementNode {
			return s.IsParagraph(nodes[i])
		}
	}
	return false
}

// rewrite replaces the text covered by span inside block with text. The first
// leaf keeps the text before the tag, the last leaf keeps the text after it,
// and everything in between is removed. Runs emptied by the removal go too.
func (e *Editor) rewrite(block *xml.Node, span Span, text string) error {
	s := e.Schema
	if len(span.Fragments) == 0 {
		return &TreeEditError{Message: "empty span"}
	}
	current := make([]string, len(span.Fragments))
	for i, f := range span.Fragments {
		leaf := block.Resolve(f.Path)
		if !s.IsText(leaf) {
			return &TreeEditError{Path: f.Path, Message: "expected a text leaf"}
		}
		t := leaf.Text()
		if f.To > len(t) || t[f.From:f.To] != f.Text {
			return &TreeEditError{Path: f.Path, Message: "text leaf changed since it was scanned"}
		}
		current[i] = t
	}
	for _, m := range span.Markers {
		if !s.IsMarker(block.Resolve(m)) {
			return &TreeEditError{Path: m, Message: "expected a marker element"}
		}
	}

	first := span.Fragments[0]
	last := span.Fragments[len(span.Fragments)-1]
	newText := current[0][:first.From] + text
	if len(span.Fragments) == 1 {
		newText += current[0][first.To:]
	}

	var removals []xml.Path
	if n := len(span.Fragments); n > 1 {
		if suffix := current[n-1][last.To:]; suffix != "" {
			setLeafText(block.Resolve(last.Path), suffix)
		} else {
			removals = append(removals, last.Path)
		}
		for _, f := range span.Fragments[1 : n-1] {
			removals = append(removals, f.Path)
		}
	}
	removals = append(removals, span.Markers...)
	slices.SortFunc(removals, func(a, b xml.Path) int { return xml.Compare(b, a) })
	for _, p := range removals {
		if err := block.ReplaceRange(p.Parent(), p.Last(), p.Last()+1); err != nil {
			return &TreeEditError{Path: p, Message: err.Error()}
		}
		run := p.Parent()
		if len(run) > 0 && s.IsRun(block.Resolve(run)) && runIsEmpty(s, block.Resolve(run)) {
			if err := block.ReplaceRange(run.Parent(), run.Last(), run.Last()+1); err != nil {
				return &TreeEditError{Path: run, Message: err.Error()}
			}
		}
	}

	return e.writeText(block, first.Path, newText)
}

// runIsEmpty reports whether a run holds nothing but its properties.
func runIsEmpty(s xml.Schema, run *xml.Node) bool {
	for _, c := range run.Children {
		if c.Kind == xml.ElementNode && !s.Is(c, "rPr") {
			return false
		}
	}
	return true
}

// writeText stores text in the leaf at p. Line breaks and tabs become
// <w:br/> and <w:tab/> siblings inside the leaf's run.
func (e *Editor) writeText(block *xml.Node, p xml.Path, text string) error {
	s := e.Schema
	leaf := block.Resolve(p)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if !strings.ContainsAny(text, "\n\t") {
		setLeafText(leaf, text)
		return nil
	}

	var extra []*xml.Node
	piece := 0
	start := 0
	flush := func(end int) {
		chunk := text[start:end]
		if piece == 0 {
			setLeafText(leaf, chunk)
		} else if chunk != "" {
			t := s.Elem("t")
			setLeafText(t, chunk)
			extra = append(extra, t)
		}
		piece++
	}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			flush(i)
			extra = append(extra, s.Elem("br"))
			start = i + 1
		case '\t':
			flush(i)
			extra = append(extra, s.Elem("tab"))
			start = i + 1
		}
	}
	flush(len(text))
	if err := block.ReplaceRange(p.Parent(), p.Last()+1, p.Last()+1, extra...); err != nil {
		return &TreeEditError{Path: p, Message: err.Error()}
	}
	return nil
}

// setLeafText replaces the text of a w:t element, marking it
// xml:space="preserve" when the text has edge whitespace.
func setLeafText(leaf *xml.Node, text string) {
	if text == "" {
		leaf.Children = nil
	} else {
		leaf.Children = []*xml.Node{xml.NewText(text)}
	}
	if text != strings.TrimSpace(text) {
		leaf.SetAttr(xml.SpaceAttr, "preserve")
	}
}

// LogicalLen is the number of logical text bytes text occupies once written
// by the editor. Breaks and tabs become elements and do not count.
func LogicalLen(text string) int {
	n := len(text)
	n -= strings.Count(text, "\n")
	n -= strings.Count(text, "\t")
	n -= strings.Count(text, "\r\n")
	return n
}
