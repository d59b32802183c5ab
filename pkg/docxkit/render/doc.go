// Package render implements the placeholder rewriting core of docxkit.
//
// The package works on a single part tree (pkg/docxkit/xml) and has no
// knowledge of packages, relationships or the tag language. It depends only
// on an Evaluator that turns raw tag text into a Value.
//
// # Structure Organization
//
//   - value.go: the closed Value variant (Scalar, MultiLine, Subtree) and the Evaluator contract
//   - scanner.go: logical text reconstruction of a paragraph and delimiter matching
//   - locator.go: placeholder occurrences with the node spans they cover
//   - walker.go: document-order paragraph cursor that survives edits
//   - planner.go: classification of a value into an edit plan
//   - editor.go: atomic application of edit plans
//   - renderer.go: per-part orchestration
//   - errors.go: SyntaxError, UnresolvedReferenceError, StructuralError, TreeEditError
//
// # Key Concepts
//
// Logical text: the concatenated text of a paragraph's text leaves. Word
// splits text into runs for spell checking, revisions and formatting, so a
// tag such as {{name}} may span several runs and markers. The scanner keeps
// a position map from logical offsets back to text leaves.
//
// Edit plans: a Scalar rewrites the spanned leaves in place, a MultiLine
// clones the paragraph once per line, and a Subtree replaces the paragraph
// (or its enclosing row or cell) with the supplied nodes.
//
// Atomicity: every plan is applied to a copy of its target and committed
// with a single ReplaceRange, and the Renderer works on a clone of the part
// that only replaces the original when every occurrence succeeded.
package render
