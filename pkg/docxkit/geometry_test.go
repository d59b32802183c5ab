package docxkit

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/xml"
)

func TestPageGeometryOf(t *testing.T) {
	tests := []struct {
		name string
		body string
		want PageGeometry
	}{
		{
			name: "no section properties",
			body: `<w:body><w:p/></w:body>`,
			want: DefaultPageGeometry(),
		},
		{
			name: "a4 with narrow margins",
			body: `<w:body><w:sectPr><w:pgSz w:w="11906" w:h="16838"/>` +
				`<w:pgMar w:top="720" w:right="720" w:bottom="720" w:left="720"/></w:sectPr></w:body>`,
			want: PageGeometry{Width: 11906, Height: 16838, MarginTop: 720, MarginRight: 720, MarginBottom: 720, MarginLeft: 720},
		},
		{
			name: "malformed values keep defaults",
			body: `<w:body><w:sectPr><w:pgSz w:w="wide" w:h="-1"/></w:sectPr></w:body>`,
			want: DefaultPageGeometry(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := xml.Parse([]byte(`<w:document xmlns:w="` + xml.WordprocessingMLNamespace + `">` + tt.body + `</w:document>`))
			if err != nil {
				t.Fatal(err)
			}
			got := pageGeometryOf(doc, xml.DefaultSchema)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("pageGeometryOf() (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPageGeometry_ContentWidth(t *testing.T) {
	if got := DefaultPageGeometry().ContentWidth(); got != 9360 {
		t.Errorf("default content width = %d, want 9360", got)
	}
	if got := DefaultPageGeometry().ContentWidthEMU(); got != 9360*635 {
		t.Errorf("default content width EMU = %d", got)
	}
	broken := PageGeometry{Width: 1000, MarginLeft: 800, MarginRight: 800}
	if got := broken.ContentWidth(); got != 9360 {
		t.Errorf("overlapping margins width = %d, want the default", got)
	}
}
