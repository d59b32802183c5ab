package docxkit

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/xml"
)

const (
	testContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

	testPackageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

	testDocumentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/></Relationships>`

	testSectPr = `<w:sectPr><w:pgSz w:w="12240" w:h="15840"/><w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440"/></w:sectPr>`
)

// documentXML wraps body content in a complete document part.
func documentXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:document xmlns:w="` + xml.WordprocessingMLNamespace + `" xmlns:r="` + xml.RelationshipsNamespace + `">` +
		`<w:body>` + body + testSectPr + `</w:body></w:document>`
}

// headerXML wraps content in a header part.
func headerXML(content string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:hdr xmlns:w="` + xml.WordprocessingMLNamespace + `">` + content + `</w:hdr>`
}

// createTestDOCX builds a DOCX in memory. The package scaffolding is added
// unless files override it.
func createTestDOCX(t *testing.T, files map[string]string) []byte {
	t.Helper()
	all := map[string]string{
		"[Content_Types].xml":          testContentTypes,
		"_rels/.rels":                  testPackageRels,
		"word/_rels/document.xml.rels": testDocumentRels,
		"word/styles.xml":              `<?xml version="1.0"?><w:styles xmlns:w="` + xml.WordprocessingMLNamespace + `"/>`,
	}
	for name, content := range files {
		all[name] = content
	}
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	for _, name := range names {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := f.Write([]byte(all[name])); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// createBodyDOCX builds a DOCX whose document body is body.
func createBodyDOCX(t *testing.T, body string) []byte {
	t.Helper()
	return createTestDOCX(t, map[string]string{"word/document.xml": documentXML(body)})
}

// readDOCX returns every entry of a DOCX.
func readDOCX(t *testing.T, r io.Reader) map[string]string {
	t.Helper()
	content, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	entries := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		entries[f.Name] = string(b)
	}
	return entries
}

// bodyOf returns the body content of a document part without the section
// properties.
func bodyOf(t *testing.T, doc string) string {
	t.Helper()
	start := strings.Index(doc, "<w:body>")
	end := strings.Index(doc, "<w:sectPr>")
	if start < 0 || end < start {
		t.Fatalf("no body in %s", doc)
	}
	return doc[start+len("<w:body>") : end]
}

// testEngine returns an engine without caching that logs nothing.
func testEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	config := DefaultConfig()
	config.CacheMaxSize = 0
	engine := NewWithConfig(config)
	engine.logger = NewLogger(io.Discard, LogOff)
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// renderBody prepares a document with body, renders it and returns the
// rendered body.
func renderBody(t *testing.T, engine *Engine, body string, data TemplateData) string {
	t.Helper()
	tmpl, err := engine.Prepare(bytes.NewReader(createBodyDOCX(t, body)))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	out, err := tmpl.Render(data)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return bodyOf(t, readDOCX(t, out)["word/document.xml"])
}

// testPNG encodes a w by h image.
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// fakeMedia records registrations.
type fakeMedia struct {
	calls []string
}

func (f *fakeMedia) RegisterMedia(data []byte, mimeType string) (string, error) {
	f.calls = append(f.calls, mimeType)
	return fmt.Sprintf("rId%d", 100+len(f.calls)), nil
}

// testHelperContext returns a context for word/document.xml with the
// default page and a fake registrar.
func testHelperContext() (*HelperContext, *fakeMedia) {
	media := &fakeMedia{}
	return NewHelperContext(documentPart, xml.DefaultSchema, DefaultPageGeometry(), media), media
}

// marshalAll concatenates the serialized nodes.
func marshalAll(nodes []*xml.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		b.Write(xml.Marshal(n))
	}
	return b.String()
}
