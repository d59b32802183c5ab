package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/xml"
)

// MissingPolicy decides what happens when a tag refers to absent data.
type MissingPolicy int

const (
	// MissingError aborts the part with the UnresolvedReferenceError.
	MissingError MissingPolicy = iota
	// MissingEmpty renders the tag as empty text.
	MissingEmpty
)

func (m MissingPolicy) String() string {
	if m == MissingEmpty {
		return "empty"
	}
	return "error"
}

// ParseMissingPolicy parses "error" or "empty".
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "error":
		return MissingError, nil
	case "empty":
		return MissingEmpty, nil
	}
	return MissingError, fmt.Errorf("invalid missing value policy %q (want error or empty)", s)
}

// Renderer renders every placeholder of one part.
type Renderer struct {
	Schema    xml.Schema
	Evaluator Evaluator
	Missing   MissingPolicy

	// Observe, when set, sees each occurrence and its value before the edit.
	Observe func(occ Occurrence, v Value)
}

// Render replaces every placeholder in doc and returns how many were
// rendered. The whole part is checked for unterminated tags first, and edits
// are made on a copy that replaces doc's content only when every occurrence
// succeeded, so on error doc is untouched.
func (r *Renderer) Render(doc *xml.Document, data any) (int, error) {
	occs, err := Locate(doc, r.Schema)
	if err != nil {
		return 0, err
	}
	if len(occs) == 0 {
		return 0, nil
	}

	work := doc.Clone()
	total := 0
	w := NewWalker(work, r.Schema)
	for {
		block, ok := w.Next()
		if !ok {
			break
		}
		n, err := r.renderBlock(work, w, block, data)
		if err != nil {
			return 0, err
		}
		total += n
	}
	doc.Children = work.Children
	return total, nil
}

// renderBlock renders the occurrences of one paragraph and moves the walker
// past whatever replaced it. Scalars are applied right to left against the
// original paragraph; a shape-changing occurrence is applied last, on the
// rewritten paragraph, so every clone carries the scalar results.
func (r *Renderer) renderBlock(doc *xml.Document, w *Walker, block xml.Path, data any) (int, error) {
	occs, _, err := LocateBlock(doc, block, r.Schema)
	if err != nil {
		return 0, err
	}
	if len(occs) == 0 {
		w.Descend(block)
		return 0, nil
	}

	values := make([]Value, len(occs))
	shape := -1
	for i, occ := range occs {
		v, err := r.evaluate(occ.Tag, data)
		if err != nil {
			return 0, &OccurrenceError{Block: block, Tag: occ.Tag, Offset: occ.Start, Err: err}
		}
		if r.Observe != nil {
			r.Observe(occ, v)
		}
		values[i] = v
		if _, ok := v.(Scalar); ok {
			continue
		}
		if shape >= 0 {
			return 0, &OccurrenceError{Block: block, Tag: occ.Tag, Offset: occ.Start, Err: &StructuralError{
				Path:    block,
				Message: fmt.Sprintf("%s and %s both replace the paragraph", occs[shape].Tag, occ.Tag),
			}}
		}
		shape = i
	}

	planner := Planner{Schema: r.Schema}
	editor := Editor{Schema: r.Schema}
	delta := 0
	for i := len(occs) - 1; i >= 0; i-- {
		if i == shape {
			continue
		}
		if _, _, err := r.apply(&planner, &editor, doc, occs[i], values[i]); err != nil {
			return 0, err
		}
		if i < shape {
			delta += LogicalLen(values[i].(Scalar).Text) - (occs[i].End - occs[i].Start)
		}
	}
	if shape < 0 {
		w.Descend(block)
		return len(occs), nil
	}

	orig := occs[shape]
	lt := Scan(doc.Resolve(block), r.Schema)
	start := orig.Start + delta
	end := start + len(orig.Tag)
	if start < 0 || end > len(lt.Text) || lt.Text[start:end] != orig.Tag {
		return 0, &OccurrenceError{Block: block, Tag: orig.Tag, Offset: orig.Start, Err: &TreeEditError{
			Path: block, Message: "tag moved after inline rewrites",
		}}
	}
	occ, err := occurrenceAt(block, lt, Tag{Start: start, End: end, Text: orig.Tag})
	if err != nil {
		return 0, err
	}
	plan, n, err := r.apply(&planner, &editor, doc, occ, values[shape])
	if err != nil {
		return 0, err
	}
	total := len(occs)
	// Clones carry the paragraph's text boxes, which have not been rendered
	// yet. Replacement subtrees are left as supplied.
	if plan.Kind == BlockClone {
		for i := 0; i < n; i++ {
			m, err := r.renderWithin(doc, plan.Target.Sibling(i), data)
			if err != nil {
				return 0, err
			}
			total += m
		}
	}
	w.Skip(plan.Target, n)
	return total, nil
}

// renderWithin renders the paragraphs nested inside the node at p.
func (r *Renderer) renderWithin(doc *xml.Document, p xml.Path, data any) (int, error) {
	total := 0
	w := newWalkerWithin(doc, r.Schema, p)
	for {
		block, ok := w.Next()
		if !ok {
			return total, nil
		}
		n, err := r.renderBlock(doc, w, block, data)
		if err != nil {
			return 0, err
		}
		total += n
	}
}

func (r *Renderer) apply(p *Planner, e *Editor, doc *xml.Document, occ Occurrence, v Value) (*Plan, int, error) {
	plan, err := p.Plan(doc, occ, v)
	if err != nil {
		return nil, 0, &OccurrenceError{Block: occ.Block, Tag: occ.Tag, Offset: occ.Start, Err: err}
	}
	n, err := e.Apply(doc, plan)
	if err != nil {
		return nil, 0, &OccurrenceError{Block: occ.Block, Tag: occ.Tag, Offset: occ.Start, Err: err}
	}
	return plan, n, nil
}

func (r *Renderer) evaluate(tag string, data any) (Value, error) {
	if r.Evaluator == nil {
		return nil, errors.New("no evaluator configured")
	}
	v, err := r.Evaluator.Evaluate(tag, data)
	if err != nil {
		var ur *UnresolvedReferenceError
		if errors.As(err, &ur) && r.Missing == MissingEmpty {
			return Scalar{}, nil
		}
		return nil, err
	}
	if v == nil {
		if r.Missing == MissingEmpty {
			return Scalar{}, nil
		}
		return nil, &UnresolvedReferenceError{Tag: tag}
	}
	return v, nil
}
