package docxkit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/render"
	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/xml"
)

// TemplateData is the data a template is rendered with. Keys are the
// top-level names visible to tag expressions.
//
// Example:
//
//	data := TemplateData{
//	    "name":  "John Doe",
//	    "notes": "First paragraph.\n\nSecond paragraph.",
//	    "items": []map[string]any{
//	        {"product": "Widget", "price": 19.99},
//	    },
//	}
type TemplateData map[string]any

// PreparedTemplate is a parsed DOCX template ready to render any number of
// times, concurrently if needed.
type PreparedTemplate struct {
	pkg    *Package
	parts  map[string]*preparedPart
	order  []string
	page   PageGeometry
	engine *Engine
	closed bool
	mu     sync.Mutex
}

type preparedPart struct {
	name   string
	doc    *xml.Document
	schema xml.Schema
}

// prepare reads a DOCX and parses every part that may hold placeholders.
func prepare(r io.Reader, engine *Engine) (*PreparedTemplate, error) {
	buf := new(bytes.Buffer)
	size, err := buf.ReadFrom(r)
	if err != nil {
		return nil, NewDocumentError("read", "", err)
	}
	pkg, err := OpenPackage(bytes.NewReader(buf.Bytes()), size)
	if err != nil {
		return nil, NewDocumentError("parse", "DOCX", err)
	}

	pt := &PreparedTemplate{
		pkg:    pkg,
		parts:  make(map[string]*preparedPart),
		page:   DefaultPageGeometry(),
		engine: engine,
	}
	for _, name := range pkg.TemplateParts() {
		content, err := pkg.ReadPart(name)
		if err != nil {
			return nil, NewDocumentError("extract", name, err)
		}
		if name != documentPart && !bytes.Contains(content, []byte("{")) {
			continue
		}
		doc, err := xml.Parse(content)
		if err != nil {
			return nil, NewDocumentError("parse", name, err)
		}
		part := &preparedPart{name: name, doc: doc, schema: xml.SchemaFor(doc)}
		if name == documentPart {
			pt.page = pageGeometryOf(doc, part.schema)
		}
		pt.parts[name] = part
		pt.order = append(pt.order, name)
	}
	engine.logger.Debug("prepared %d parts", len(pt.order))
	return pt, nil
}

// Render renders the template and returns the resulting DOCX.
func (pt *PreparedTemplate) Render(data TemplateData) (io.Reader, error) {
	return pt.RenderContext(context.Background(), data)
}

// RenderTo renders the template into w.
func (pt *PreparedTemplate) RenderTo(ctx context.Context, w io.Writer, data TemplateData) error {
	out, err := pt.RenderContext(ctx, data)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, out)
	return err
}

// RenderContext renders every part concurrently. A part that fails leaves no
// output; the first error cancels the remaining parts and is returned.
func (pt *PreparedTemplate) RenderContext(ctx context.Context, data TemplateData) (io.Reader, error) {
	pt.mu.Lock()
	closed := pt.closed
	pt.mu.Unlock()
	if closed {
		return nil, errors.New("template is closed")
	}

	cfg := pt.engine.config
	store := newMediaStore(pt.pkg)
	drawings := new(atomic.Int64)
	out := make(map[string][]byte)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Parallelism > 0 {
		g.SetLimit(cfg.Parallelism)
	}
	for _, name := range pt.order {
		part := pt.parts[name]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			media := newPartMedia(store, name)
			content, err := pt.renderPart(part, media, drawings, data)
			if err != nil {
				return NewDocumentError("render", name, err)
			}
			mu.Lock()
			defer mu.Unlock()
			if content != nil {
				out[name] = content
			}
			media.output(out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := store.output(out); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pt.pkg.Write(&buf, out); err != nil {
		return nil, NewDocumentError("write", "DOCX", err)
	}
	return bytes.NewReader(buf.Bytes()), nil
}

// renderPart returns the new content of a part, or nil when nothing in it
// was rendered.
func (pt *PreparedTemplate) renderPart(part *preparedPart, media *partMedia, drawings *atomic.Int64, data TemplateData) (content []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = RecoverError(r)
		}
	}()
	log := pt.engine.logger.WithField("part", part.name)

	hc := NewHelperContext(part.name, part.schema, pt.page, media)
	hc.drawings = drawings
	r := render.Renderer{
		Schema:    part.schema,
		Evaluator: pt.engine.evaluator.Scope(hc, data),
		Missing:   pt.engine.config.missingPolicy(),
	}
	if log.IsDebugMode() {
		r.Observe = func(occ render.Occurrence, v render.Value) {
			log.Debug("%s at %s -> %s", occ.Tag, occ.Block, describeValue(v))
		}
	}

	// Render swaps in a new child list on success, so the prepared tree
	// itself is never edited.
	doc := &xml.Document{Children: part.doc.Children}
	n, err := r.Render(doc, data)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	log.Debug("rendered %d placeholders", n)
	return doc.Bytes(), nil
}

func describeValue(v render.Value) string {
	switch v := v.(type) {
	case render.Scalar:
		return fmt.Sprintf("scalar %q", v.Text)
	case render.MultiLine:
		return fmt.Sprintf("%d lines", len(v.Lines))
	case render.Subtree:
		return fmt.Sprintf("subtree of %d nodes", len(v.Nodes))
	}
	return fmt.Sprintf("%T", v)
}

// Placeholder is one tag found in a template.
type Placeholder struct {
	Part   string
	Block  xml.Path
	Tag    string
	Offset int
}

// PartReport lists the placeholders of one part. Err joins the syntax errors
// of paragraphs whose tags could not be read.
type PartReport struct {
	Part         string
	Placeholders []Placeholder
	Err          error
}

// Inspect lists the placeholders of every part without rendering.
func (pt *PreparedTemplate) Inspect() []PartReport {
	reports := make([]PartReport, 0, len(pt.order))
	for _, name := range pt.order {
		part := pt.parts[name]
		report := PartReport{Part: name}
		errs := NewMultiError()

		w := render.NewWalker(part.doc, part.schema)
		for {
			block, ok := w.Next()
			if !ok {
				break
			}
			occs, _, err := render.LocateBlock(part.doc, block, part.schema)
			errs.Add(err)
			for _, occ := range occs {
				report.Placeholders = append(report.Placeholders, Placeholder{
					Part: name, Block: occ.Block, Tag: occ.Tag, Offset: occ.Start,
				})
			}
			w.Descend(block)
		}
		report.Err = errs.Err()
		reports = append(reports, report)
	}
	return reports
}

// Close marks the template closed. A closed template cannot be rendered.
func (pt *PreparedTemplate) Close() error {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.closed = true
	return nil
}
