package render

import "github.com/benjaminschreck/go-docxkit/pkg/docxkit/xml"

// Value is an evaluated placeholder result. The set of implementations is
// closed: Scalar, MultiLine and Subtree.
type Value interface {
	value()
}

// Scalar replaces the tag text inside its paragraph.
type Scalar struct {
	Text string
}

// MultiLine expands the enclosing paragraph into one paragraph per line.
type MultiLine struct {
	Lines []string
}

// Subtree replaces the enclosing paragraph, row or cell with Nodes.
type Subtree struct {
	Nodes []*xml.Node
}

func (Scalar) value()    {}
func (MultiLine) value() {}
func (Subtree) value()   {}

// Evaluator turns raw tag text (including its delimiters) into a Value.
// Missing data is reported as an *UnresolvedReferenceError.
type Evaluator interface {
	Evaluate(tag string, data any) (Value, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(tag string, data any) (Value, error)

// Evaluate calls f.
func (f EvaluatorFunc) Evaluate(tag string, data any) (Value, error) {
	return f(tag, data)
}
