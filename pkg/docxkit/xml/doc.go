// Package xml provides the lossless markup tree used by docxkit to edit
// document parts in place.
//
// Unlike a typed encoding/xml model, the tree keeps every element, attribute,
// comment and processing instruction of a part, in order, so that a part
// written back out differs from its input only where it was edited.
//
// # Structure Organization
//
//   - node.go: Node, Name and Attr, node constructors and deep cloning
//   - document.go: Document, parsing from bytes and writing back out
//   - path.go: Path addressing, structural queries and mutation primitives
//   - schema.go: WordprocessingML vocabulary (paragraphs, runs, text leaves, markers)
//
// # Key Concepts
//
// Path: a node is identified by the index path from the document's top-level
// children. Paths are positional; any edit that changes sibling counts
// invalidates paths that point past the edit, so callers re-derive them.
//
// Ownership: each node has exactly one parent. Nodes handed to ReplaceRange
// become owned by the tree; use Clone to insert a copy of an existing node.
//
// Raw preservation: nodes produced by Parse remember the bytes they were read
// from. Writing re-uses those bytes as long as the node's name, attributes or
// text still match what was parsed.
//
// # Usage
//
//	doc, err := xml.Parse(data)
//	if err != nil {
//	    return err
//	}
//	body := doc.Resolve(xml.Path{1, 0})
//	...
//	var buf bytes.Buffer
//	if _, err := doc.WriteTo(&buf); err != nil {
//	    return err
//	}
package xml
