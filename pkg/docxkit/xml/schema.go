package xml

// Namespace URIs used by WordprocessingML parts.
const (
	WordprocessingMLNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	RelationshipsNamespace    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	DrawingMLNamespace        = "http://schemas.openxmlformats.org/drawingml/2006/main"
	PictureNamespace          = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	WordDrawingNamespace      = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
)

// SpaceAttr is the xml:space attribute.
var SpaceAttr = Name{Prefix: "xml", Local: "space"}

// Schema answers WordprocessingML vocabulary questions for one part. Names
// are matched by prefix, which Schema resolves from the root element's
// namespace declarations.
type Schema struct {
	Prefix string
}

// DefaultSchema uses the conventional "w" prefix.
var DefaultSchema = Schema{Prefix: "w"}

// SchemaFor resolves the WordprocessingML prefix declared on d's root.
func SchemaFor(d *Document) Schema {
	root := d.Root()
	if root == nil {
		return DefaultSchema
	}
	for _, a := range root.Attrs {
		if a.Value != WordprocessingMLNamespace {
			continue
		}
		if a.Name.Prefix == "xmlns" {
			return Schema{Prefix: a.Name.Local}
		}
		if a.Name.Prefix == "" && a.Name.Local == "xmlns" {
			return Schema{}
		}
	}
	return DefaultSchema
}

// Name qualifies a local name with the schema prefix.
func (s Schema) Name(local string) Name {
	return Name{Prefix: s.Prefix, Local: local}
}

// Is reports whether n is a WordprocessingML element with the local name.
func (s Schema) Is(n *Node, local string) bool {
	return n != nil && n.Kind == ElementNode && n.Name.Prefix == s.Prefix && n.Name.Local == local
}

// Elem builds an element. kv holds attribute name/value pairs; names without
// a prefix are qualified with the schema prefix.
func (s Schema) Elem(local string, kv ...string) *Node {
	n := NewElement(s.Name(local))
	for i := 0; i+1 < len(kv); i += 2 {
		name := ParseName(kv[i])
		if name.Prefix == "" {
			name.Prefix = s.Prefix
		}
		n.Attrs = append(n.Attrs, Attr{Name: name, Value: kv[i+1]})
	}
	return n
}

// Val builds a property element carrying a single w:val attribute.
func (s Schema) Val(local, val string) *Node {
	return s.Elem(local, "val", val)
}

func (s Schema) IsParagraph(n *Node) bool { return s.Is(n, "p") }
func (s Schema) IsRun(n *Node) bool       { return s.Is(n, "r") }
func (s Schema) IsText(n *Node) bool      { return s.Is(n, "t") }
func (s Schema) IsTable(n *Node) bool     { return s.Is(n, "tbl") }
func (s Schema) IsRow(n *Node) bool       { return s.Is(n, "tr") }
func (s Schema) IsCell(n *Node) bool      { return s.Is(n, "tc") }

var propertyElements = map[string]bool{
	"pPr": true, "rPr": true, "tblPr": true, "trPr": true, "tcPr": true,
	"sectPr": true, "tblGrid": true, "sdtPr": true, "sdtEndPr": true,
}

// IsProperties reports whether n is a formatting-properties element. Their
// contents never carry logical text.
func (s Schema) IsProperties(n *Node) bool {
	return n != nil && n.Kind == ElementNode && n.Name.Prefix == s.Prefix && propertyElements[n.Name.Local]
}

var markerElements = map[string]bool{
	"proofErr":              true,
	"bookmarkStart":         true,
	"bookmarkEnd":           true,
	"commentRangeStart":     true,
	"commentRangeEnd":       true,
	"permStart":             true,
	"permEnd":               true,
	"lastRenderedPageBreak": true,
}

// IsMarker reports whether n is an ignorable marker: an element that carries
// no text and may appear anywhere between runs or inside them.
func (s Schema) IsMarker(n *Node) bool {
	return n != nil && n.Kind == ElementNode && n.Name.Prefix == s.Prefix && markerElements[n.Name.Local]
}

var containerElements = map[string]bool{
	"body": true, "tc": true, "hdr": true, "ftr": true, "footnote": true,
	"endnote": true, "txbxContent": true, "sdtContent": true, "comment": true,
}

// IsBlockContainer reports whether n may hold paragraphs and tables directly.
func (s Schema) IsBlockContainer(n *Node) bool {
	return n != nil && n.Kind == ElementNode && n.Name.Prefix == s.Prefix && containerElements[n.Name.Local]
}
