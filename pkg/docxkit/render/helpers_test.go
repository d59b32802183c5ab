package render

import (
	"strings"
	"testing"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/xml"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

var (
	s        = xml.DefaultSchema
	bodyPath = xml.Path{0, 0}
)

// parseBody wraps body markup in a document. The body is at bodyPath and its
// i-th child at bodyPath.Child(i).
func parseBody(t *testing.T, body string) *xml.Document {
	t.Helper()
	doc, err := xml.Parse([]byte(`<w:document ` + wordNS + `><w:body>` + body + `</w:body></w:document>`))
	if err != nil {
		t.Fatalf("parse body: %v", err)
	}
	return doc
}

// bodyXML serializes the body's children.
func bodyXML(doc *xml.Document) string {
	var b strings.Builder
	for _, n := range doc.ChildrenOf(bodyPath) {
		b.Write(xml.Marshal(n))
	}
	return b.String()
}

// mapEvaluator resolves {{name}} tags from values.
func mapEvaluator(values map[string]Value) Evaluator {
	return EvaluatorFunc(func(tag string, _ any) (Value, error) {
		name := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(tag, OpenDelim), CloseDelim))
		v, ok := values[name]
		if !ok {
			return nil, &UnresolvedReferenceError{Tag: tag, Name: name}
		}
		return v, nil
	})
}

func para(text string) string {
	return `<w:p><w:r><w:t>` + text + `</w:t></w:r></w:p>`
}
