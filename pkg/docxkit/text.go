package docxkit

import (
	"bytes"
	"io"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/render"
	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/xml"
)

// PartText is the logical text of one part, one entry per paragraph.
type PartText struct {
	Part       string
	Paragraphs []string
}

// ExtractText returns the logical text of every part that can hold
// placeholders. Paragraphs nested in text boxes follow the paragraph that
// anchors them.
func ExtractText(r io.ReaderAt, size int64) ([]PartText, error) {
	pkg, err := OpenPackage(r, size)
	if err != nil {
		return nil, NewDocumentError("open", "", err)
	}
	var out []PartText
	for _, name := range pkg.TemplateParts() {
		content, err := pkg.ReadPart(name)
		if err != nil {
			return nil, NewDocumentError("read", name, err)
		}
		doc, err := xml.Parse(content)
		if err != nil {
			return nil, NewDocumentError("parse", name, err)
		}
		s := xml.SchemaFor(doc)
		pt := PartText{Part: name}
		w := render.NewWalker(doc, s)
		for {
			block, ok := w.Next()
			if !ok {
				break
			}
			pt.Paragraphs = append(pt.Paragraphs, render.Scan(doc.Resolve(block), s).Text)
			w.Descend(block)
		}
		out = append(out, pt)
	}
	return out, nil
}

// ExtractTextBytes is ExtractText over an in-memory document.
func ExtractTextBytes(content []byte) ([]PartText, error) {
	return ExtractText(bytes.NewReader(content), int64(len(content)))
}
