package xml

import "strings"

// Kind identifies the variant of a Node.
type Kind int

const (
	// ElementNode is an element with a name, attributes and children.
	ElementNode Kind = iota
	// TextNode is character data.
	TextNode
	// CommentNode is an XML comment.
	CommentNode
	// ProcInstNode is a processing instruction such as the XML declaration.
	ProcInstNode
	// DirectiveNode is a <!...> directive.
	DirectiveNode
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	case ProcInstNode:
		return "procinst"
	case DirectiveNode:
		return "directive"
	default:
		return "unknown"
	}
}

// Name is a qualified name: a namespace prefix and a local name.
type Name struct {
	Prefix string
	Local  string
}

// String returns the name in prefix:local form.
func (n Name) String() string {
	if n.Prefix == "" {
		return n.Local
	}
	return n.Prefix + ":" + n.Local
}

// ParseName splits a "prefix:local" string.
func ParseName(s string) Name {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return Name{Prefix: s[:i], Local: s[i+1:]}
	}
	return Name{Local: s}
}

// Attr is a single attribute. Attribute order is significant and preserved.
type Attr struct {
	Name  Name
	Value string
}

// Node is an element, a text leaf, or one of the verbatim node kinds.
//
// For elements Name, Attrs and Children are used. For text and comments Data
// holds the decoded content. A processing instruction stores its target in
// Name.Local and its instruction in Data.
type Node struct {
	Kind     Kind
	Name     Name
	Attrs    []Attr
	Children []*Node
	Data     string

	orig *origin
}

// origin records how a node looked when it was parsed.
type origin struct {
	name        Name
	attrs       []Attr
	data        string
	raw         string
	rawEnd      string
	selfClosing bool
}

// NewElement returns a new element with the given name and attributes.
func NewElement(name Name, attrs ...Attr) *Node {
	return &Node{Kind: ElementNode, Name: name, Attrs: attrs}
}

// NewText returns a new text node.
func NewText(s string) *Node {
	return &Node{Kind: TextNode, Data: s}
}

// IsElement reports whether n is an element named name.
func (n *Node) IsElement(name Name) bool {
	return n != nil && n.Kind == ElementNode && n.Name == name
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name Name) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, keeping its position if it already exists and
// appending it otherwise.
func (n *Node) SetAttr(name Name, value string) {
	for i, a := range n.Attrs {
		if a.Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// RemoveAttr removes the named attribute if present.
func (n *Node) RemoveAttr(name Name) {
	for i, a := range n.Attrs {
		if a.Name == name {
			n.Attrs = append(n.Attrs[:i:i], n.Attrs[i+1:]...)
			return
		}
	}
}

// Append adds children to an element and returns it.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Text returns the concatenated character data of all descendant text nodes.
func (n *Node) Text() string {
	if n.Kind == TextNode {
		return n.Data
	}
	var b strings.Builder
	n.appendText(&b)
	return b.String()
}

func (n *Node) appendText(b *strings.Builder) {
	for _, c := range n.Children {
		switch c.Kind {
		case TextNode:
			b.WriteString(c.Data)
		case ElementNode:
			c.appendText(b)
		}
	}
}

// Clone returns a deep copy of n. The copy keeps n's raw form so unchanged
// clones serialize exactly like the original.
func (n *Node) Clone() *Node {
	c := &Node{
		Kind: n.Kind,
		Name: n.Name,
		Data: n.Data,
		orig: n.orig,
	}
	if n.Attrs != nil {
		c.Attrs = append([]Attr(nil), n.Attrs...)
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return c
}

// Equal reports whether two subtrees have the same kinds, names, attributes
// (in order) and content.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Name != b.Name || a.Data != b.Data {
		return false
	}
	if len(a.Attrs) != len(b.Attrs) || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Attrs {
		if a.Attrs[i] != b.Attrs[i] {
			return false
		}
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// unchanged reports whether the node still matches its parsed form.
func (n *Node) unchanged() bool {
	o := n.orig
	if o == nil {
		return false
	}
	switch n.Kind {
	case ElementNode:
		if n.Name != o.name || len(n.Attrs) != len(o.attrs) {
			return false
		}
		for i := range n.Attrs {
			if n.Attrs[i] != o.attrs[i] {
				return false
			}
		}
		return !o.selfClosing || len(n.Children) == 0
	default:
		return n.Name == o.name && n.Data == o.data
	}
}
