package xml

import (
	"fmt"
	"strconv"
	"strings"
)

// Path addresses a node by child indices from a starting point: the
// document's top-level children for Document methods, or a node's children
// for Node methods.
type Path []int

// String renders the path as /i/j/k.
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, i := range p {
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}

// Parent returns the path of the parent node.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[: len(p)-1 : len(p)-1]
}

// Last returns the index of the node within its parent.
func (p Path) Last() int {
	if len(p) == 0 {
		return -1
	}
	return p[len(p)-1]
}

// Child returns a new path addressing the i-th child of p.
func (p Path) Child(i int) Path {
	c := make(Path, len(p)+1)
	copy(c, p)
	c[len(p)] = i
	return c
}

// Join returns p followed by rel.
func (p Path) Join(rel Path) Path {
	c := make(Path, 0, len(p)+len(rel))
	c = append(c, p...)
	return append(c, rel...)
}

// Sibling returns the path offset by delta within the same parent.
func (p Path) Sibling(delta int) Path {
	c := append(Path(nil), p...)
	c[len(c)-1] += delta
	return c
}

// Equal reports whether two paths address the same position.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether q is p or an ancestor of p.
func (p Path) HasPrefix(q Path) bool {
	return len(q) <= len(p) && p[:len(q)].Equal(q)
}

// Compare orders paths in document order. An ancestor sorts before its
// descendants.
func Compare(a, b Path) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// PathError reports a structural operation on a path that does not fit the
// tree.
type PathError struct {
	Op     string
	Path   Path
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Reason)
}

// Resolve returns the node at rel below n, or nil. An empty path returns n.
func (n *Node) Resolve(rel Path) *Node {
	cur := n
	for _, i := range rel {
		if cur == nil || i < 0 || i >= len(cur.Children) {
			return nil
		}
		cur = cur.Children[i]
	}
	return cur
}

// ReplaceRange replaces children [from, to) of the element at parent with
// nodes. Siblings outside the range keep their order and identity.
func (n *Node) ReplaceRange(parent Path, from, to int, nodes ...*Node) error {
	p := n.Resolve(parent)
	if p == nil || p.Kind != ElementNode {
		return &PathError{Op: "replace", Path: parent, Reason: "parent is not an element"}
	}
	if from < 0 || to < from || to > len(p.Children) {
		return &PathError{Op: "replace", Path: parent, Reason: fmt.Sprintf("range [%d,%d) out of bounds for %d children", from, to, len(p.Children))}
	}
	for _, c := range nodes {
		if c == nil {
			return &PathError{Op: "replace", Path: parent, Reason: "nil node"}
		}
	}
	children := make([]*Node, 0, len(p.Children)-(to-from)+len(nodes))
	children = append(children, p.Children[:from]...)
	children = append(children, nodes...)
	children = append(children, p.Children[to:]...)
	p.Children = children
	return nil
}

// SetText replaces the content of the node at rel. A text node gets the new
// payload; an element gets a single text child, or no children for "".
func (n *Node) SetText(rel Path, s string) error {
	t := n.Resolve(rel)
	if t == nil {
		return &PathError{Op: "set text", Path: rel, Reason: "no such node"}
	}
	switch t.Kind {
	case TextNode:
		t.Data = s
	case ElementNode:
		if s == "" {
			t.Children = nil
		} else {
			t.Children = []*Node{NewText(s)}
		}
	default:
		return &PathError{Op: "set text", Path: rel, Reason: t.Kind.String() + " node cannot hold text"}
	}
	return nil
}

// Walk visits n's descendants in document order. fn returns false to skip a
// node's children.
func (n *Node) Walk(fn func(rel Path, c *Node) bool) {
	var walk func(p Path, cur *Node)
	walk = func(p Path, cur *Node) {
		for i, c := range cur.Children {
			cp := p.Child(i)
			if fn(cp, c) && c.Kind == ElementNode {
				walk(cp, c)
			}
		}
	}
	walk(nil, n)
}

// top wraps the document's children in a container so that Node methods can
// operate from the document level.
func (d *Document) top() *Node {
	return &Node{Kind: ElementNode, Children: d.Children}
}

// Resolve returns the node at p, or nil.
func (d *Document) Resolve(p Path) *Node {
	if len(p) == 0 {
		return nil
	}
	return d.top().Resolve(p)
}

// ChildrenOf returns the children of the node at p. The empty path returns
// the top-level nodes.
func (d *Document) ChildrenOf(p Path) []*Node {
	if len(p) == 0 {
		return d.Children
	}
	if n := d.Resolve(p); n != nil {
		return n.Children
	}
	return nil
}

// AttrsOf returns the attributes of the element at p.
func (d *Document) AttrsOf(p Path) []Attr {
	if n := d.Resolve(p); n != nil {
		return n.Attrs
	}
	return nil
}

// PathOf returns the path of target, searching by identity.
func (d *Document) PathOf(target *Node) (Path, bool) {
	var found Path
	d.Walk(func(p Path, n *Node) bool {
		if found != nil {
			return false
		}
		if n == target {
			found = p
			return false
		}
		return true
	})
	return found, found != nil
}

// Walk visits every node in document order.
func (d *Document) Walk(fn func(p Path, n *Node) bool) {
	d.top().Walk(fn)
}

// ReplaceRange replaces children [from, to) of the element at parent.
func (d *Document) ReplaceRange(parent Path, from, to int, nodes ...*Node) error {
	if len(parent) == 0 {
		return &PathError{Op: "replace", Path: parent, Reason: "cannot replace top-level nodes"}
	}
	t := d.top()
	err := t.ReplaceRange(parent, from, to, nodes...)
	d.Children = t.Children
	return err
}

// CloneSubtree returns a deep copy of the node at p.
func (d *Document) CloneSubtree(p Path) (*Node, error) {
	n := d.Resolve(p)
	if n == nil {
		return nil, &PathError{Op: "clone", Path: p, Reason: "no such node"}
	}
	return n.Clone(), nil
}

// SetText replaces the content of the node at p.
func (d *Document) SetText(p Path, s string) error {
	if len(p) == 0 {
		return &PathError{Op: "set text", Path: p, Reason: "no such node"}
	}
	return d.top().SetText(p, s)
}
