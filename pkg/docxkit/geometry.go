package docxkit

import (
	"strconv"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/xml"
)

// emuPerTwip converts twentieths of a point to English Metric Units.
const emuPerTwip = 635

// emuPerPixel assumes 96 dpi.
const emuPerPixel = 9525

// PageGeometry is the page size and margins of a section, in twips.
type PageGeometry struct {
	Width        int
	Height       int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	MarginLeft   int
}

// DefaultPageGeometry is US Letter with one inch margins.
func DefaultPageGeometry() PageGeometry {
	return PageGeometry{
		Width:        12240,
		Height:       15840,
		MarginTop:    1440,
		MarginRight:  1440,
		MarginBottom: 1440,
		MarginLeft:   1440,
	}
}

// ContentWidth is the width between the left and right margins.
func (g PageGeometry) ContentWidth() int {
	w := g.Width - g.MarginLeft - g.MarginRight
	if w <= 0 {
		return DefaultPageGeometry().ContentWidth()
	}
	return w
}

// ContentWidthEMU is ContentWidth in English Metric Units.
func (g PageGeometry) ContentWidthEMU() int64 {
	return int64(g.ContentWidth()) * emuPerTwip
}

// pageGeometryOf reads the last section properties of a document part.
// Values that are absent or malformed keep their defaults.
func pageGeometryOf(doc *xml.Document, s xml.Schema) PageGeometry {
	g := DefaultPageGeometry()
	var sect *xml.Node
	doc.Walk(func(_ xml.Path, n *xml.Node) bool {
		if s.Is(n, "sectPr") {
			sect = n
			return false
		}
		return true
	})
	if sect == nil {
		return g
	}
	for _, c := range sect.Children {
		switch {
		case s.Is(c, "pgSz"):
			setTwips(c, s.Name("w"), &g.Width)
			setTwips(c, s.Name("h"), &g.Height)
		case s.Is(c, "pgMar"):
			setTwips(c, s.Name("top"), &g.MarginTop)
			setTwips(c, s.Name("right"), &g.MarginRight)
			setTwips(c, s.Name("bottom"), &g.MarginBottom)
			setTwips(c, s.Name("left"), &g.MarginLeft)
		}
	}
	return g
}

func setTwips(n *xml.Node, name xml.Name, dst *int) {
	v, ok := n.Attr(name)
	if !ok {
		return
	}
	if i, err := strconv.Atoi(v); err == nil && i >= 0 {
		*dst = i
	}
}
