package render

import (
	"fmt"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/xml"
)

// SyntaxError reports an unterminated tag or a malformed tag body.
type SyntaxError struct {
	Tag     string
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Message)
	}
	return fmt.Sprintf("syntax error in %q: %s", e.Tag, e.Message)
}

// UnresolvedReferenceError reports that a tag refers to data that is absent.
type UnresolvedReferenceError struct {
	Tag  string
	Name string
}

func (e *UnresolvedReferenceError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("unresolved reference %q in %s", e.Name, e.Tag)
	}
	return fmt.Sprintf("unresolved reference in %s", e.Tag)
}

// StructuralError reports a value that cannot be placed where its tag sits.
type StructuralError struct {
	Path    xml.Path
	Message string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error at %s: %s", e.Path, e.Message)
}

// TreeEditError reports that the tree no longer has the shape a plan was
// computed against.
type TreeEditError struct {
	Path    xml.Path
	Message string
}

func (e *TreeEditError) Error() string {
	return fmt.Sprintf("tree edit error at %s: %s", e.Path, e.Message)
}

// OccurrenceError locates a failure at a paragraph and tag.
type OccurrenceError struct {
	Block  xml.Path
	Tag    string
	Offset int
	Err    error
}

func (e *OccurrenceError) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("paragraph %s: %v", e.Block, e.Err)
	}
	return fmt.Sprintf("paragraph %s, tag %s at offset %d: %v", e.Block, e.Tag, e.Offset, e.Err)
}

func (e *OccurrenceError) Unwrap() error {
	return e.Err
}
