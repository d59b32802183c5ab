package render

import (
	"fmt"
	"slices"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/xml"
)

// PlanKind identifies the edit an occurrence needs.
type PlanKind int

const (
	// InlineRewrite replaces the spanned text inside the paragraph.
	InlineRewrite PlanKind = iota
	// BlockClone replaces the paragraph with one rewritten copy per line.
	BlockClone
	// BlockReplace replaces the target with externally supplied nodes.
	BlockReplace
)

func (k PlanKind) String() string {
	switch k {
	case InlineRewrite:
		return "InlineRewrite"
	case BlockClone:
		return "BlockClone"
	case BlockReplace:
		return "BlockReplace"
	default:
		return fmt.Sprintf("PlanKind(%d)", int(k))
	}
}

// Plan is the tree edit computed for one occurrence.
type Plan struct {
	Kind   PlanKind
	Target xml.Path // absolute path of the node being rewritten or replaced
	Expect xml.Name // name the target must still have when the plan is applied
	Span   Span     // relative to Target; unused by BlockReplace

	Text  string      // InlineRewrite
	Lines []string    // BlockClone
	Nodes []*xml.Node // BlockReplace
}

// Planner turns an occurrence and its value into a Plan.
type Planner struct {
	Schema xml.Schema
}

// Plan classifies v and computes the edit for occ against doc.
func (p *Planner) Plan(doc *xml.Document, occ Occurrence, v Value) (*Plan, error) {
	s := p.Schema
	block := doc.Resolve(occ.Block)
	if !s.IsParagraph(block) {
		return nil, &TreeEditError{Path: occ.Block, Message: "occurrence no longer points at a paragraph"}
	}

	switch v := v.(type) {
	case Scalar:
		return &Plan{Kind: InlineRewrite, Target: occ.Block, Expect: block.Name, Span: occ.Span, Text: v.Text}, nil
	case MultiLine:
		return &Plan{Kind: BlockClone, Target: occ.Block, Expect: block.Name, Span: occ.Span, Lines: v.Lines}, nil
	case Subtree:
		target, err := p.replaceTarget(doc, occ.Block, v.Nodes)
		if err != nil {
			return nil, err
		}
		return &Plan{Kind: BlockReplace, Target: target, Expect: doc.Resolve(target).Name, Nodes: v.Nodes}, nil
	case nil:
		return nil, &TreeEditError{Path: occ.Block, Message: "nil value"}
	default:
		return nil, &TreeEditError{Path: occ.Block, Message: fmt.Sprintf("unsupported value %T", v)}
	}
}

// replaceTarget picks the node a subtree replaces: the paragraph itself, or
// the enclosing row or cell when the subtree is made of rows or cells.
func (p *Planner) replaceTarget(doc *xml.Document, block xml.Path, nodes []*xml.Node) (xml.Path, error) {
	s := p.Schema
	kind := ""
	for _, n := range nodes {
		if n.Kind != xml.ElementNode {
			continue
		}
		var k string
		switch {
		case s.IsRow(n):
			k = "tr"
		case s.IsCell(n):
			k = "tc"
		case s.IsParagraph(n), s.IsTable(n), s.Is(n, "sdt"):
			k = "p"
		default:
			return nil, &StructuralError{Path: block, Message: fmt.Sprintf("<%s> cannot replace a paragraph", n.Name)}
		}
		if kind != "" && kind != k {
			return nil, &StructuralError{Path: block, Message: "subtree mixes block, row and cell roots"}
		}
		kind = k
	}

	switch kind {
	case "tr", "tc":
		for anc := block.Parent(); len(anc) > 1; anc = anc.Parent() {
			if s.Is(doc.Resolve(anc), kind) {
				return anc, nil
			}
		}
		return nil, &StructuralError{Path: block, Message: fmt.Sprintf("no enclosing <%s> to replace", s.Name(kind))}
	default:
		if !s.IsBlockContainer(doc.Resolve(block.Parent())) {
			return nil, &StructuralError{Path: block, Message: "paragraph is not inside a block container"}
		}
		return block, nil
	}
}

// sortPaths orders paths in document order.
func sortPaths(paths []xml.Path) {
	slices.SortFunc(paths, xml.Compare)
}
