package docxkit

import (
	"fmt"
	"strconv"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/xml"
)

// firstDrawingID keeps generated drawing ids clear of the ones Word assigns.
const firstDrawingID = 10000

// picture is an image registered with the part that will display it.
type picture struct {
	RelID  string
	ID     int
	Name   string
	Width  int64 // EMU
	Height int64 // EMU
}

// embedImage registers data with the part and returns an inline picture
// scaled down to fit the page content width.
func embedImage(hc *HelperContext, data []byte, mimeType string) (*picture, error) {
	if hc == nil || hc.Media == nil {
		return nil, fmt.Errorf("no media registrar for this part")
	}
	w, h, err := imageSize(data)
	if err != nil {
		return nil, err
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("image has no size")
	}
	relID, err := hc.Media.RegisterMedia(data, mimeType)
	if err != nil {
		return nil, err
	}

	cx, cy := int64(w)*emuPerPixel, int64(h)*emuPerPixel
	if limit := hc.Page.ContentWidthEMU(); cx > limit {
		cy = cy * limit / cx
		cx = limit
	}
	id := hc.nextDrawingID()
	return &picture{
		RelID:  relID,
		ID:     id,
		Name:   "Picture " + strconv.Itoa(id),
		Width:  cx,
		Height: cy,
	}, nil
}

// run builds a w:r holding the picture as an inline drawing. The DrawingML
// namespaces are declared on wp:inline since the host part may not declare
// them.
func (pic *picture) run(s xml.Schema) *xml.Node {
	cx, cy := strconv.FormatInt(pic.Width, 10), strconv.FormatInt(pic.Height, 10)
	id := strconv.Itoa(pic.ID)

	inline := el("wp", "inline",
		"distT", "0", "distB", "0", "distL", "0", "distR", "0",
		"xmlns:wp", xml.WordDrawingNamespace,
		"xmlns:a", xml.DrawingMLNamespace,
		"xmlns:pic", xml.PictureNamespace,
		"xmlns:r", xml.RelationshipsNamespace,
	).Append(
		el("wp", "extent", "cx", cx, "cy", cy),
		el("wp", "effectExtent", "l", "0", "t", "0", "r", "0", "b", "0"),
		el("wp", "docPr", "id", id, "name", pic.Name),
		el("wp", "cNvGraphicFramePr").Append(
			el("a", "graphicFrameLocks", "noChangeAspect", "1"),
		),
		el("a", "graphic").Append(
			el("a", "graphicData", "uri", xml.PictureNamespace).Append(
				el("pic", "pic").Append(
					el("pic", "nvPicPr").Append(
						el("pic", "cNvPr", "id", "0", "name", pic.Name),
						el("pic", "cNvPicPr"),
					),
					el("pic", "blipFill").Append(
						el("a", "blip", "r:embed", pic.RelID),
						el("a", "stretch").Append(el("a", "fillRect")),
					),
					el("pic", "spPr").Append(
						el("a", "xfrm").Append(
							el("a", "off", "x", "0", "y", "0"),
							el("a", "ext", "cx", cx, "cy", cy),
						),
						el("a", "prstGeom", "prst", "rect").Append(el("a", "avLst")),
					),
				),
			),
		),
	)
	return s.Elem("r").Append(s.Elem("drawing").Append(inline))
}

// el builds an element in an arbitrary namespace prefix. Attribute names are
// used as written.
func el(prefix, local string, kv ...string) *xml.Node {
	n := xml.NewElement(xml.Name{Prefix: prefix, Local: local})
	for i := 0; i+1 < len(kv); i += 2 {
		n.Attrs = append(n.Attrs, xml.Attr{Name: xml.ParseName(kv[i]), Value: kv[i+1]})
	}
	return n
}
