package docxkit

import (
	"strings"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/render"
	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/xml"
)

// linesHelper splits text on every newline, one paragraph per line.
func linesHelper(_ *HelperContext, arg any) (render.Value, error) {
	switch v := arg.(type) {
	case string:
		v = strings.ReplaceAll(v, "\r\n", "\n")
		return render.MultiLine{Lines: strings.Split(v, "\n")}, nil
	case []string:
		return render.MultiLine{Lines: v}, nil
	case []any:
		lines := make([]string, len(v))
		for i, item := range v {
			lines[i] = formatScalar(item)
		}
		return render.MultiLine{Lines: lines}, nil
	}
	return nil, NewHelperError("lines", "expected text or a list, got %T", arg)
}

// imageHelper replaces the paragraph with one holding an inline picture.
func imageHelper(hc *HelperContext, arg any) (render.Value, error) {
	var (
		data     []byte
		mimeType string
		err      error
	)
	switch v := arg.(type) {
	case string:
		mimeType, data, err = parseDataURI(v)
	case []byte:
		data = v
		mimeType, err = sniffImage(v)
	default:
		return nil, NewHelperError("image", "expected a data URI or image bytes, got %T", arg)
	}
	if err != nil {
		return nil, NewHelperError("image", "%v", err)
	}

	pic, err := embedImage(hc, data, mimeType)
	if err != nil {
		return nil, NewHelperError("image", "%v", err)
	}
	return render.Subtree{Nodes: []*xml.Node{paragraph(hc.Schema, nil, pic.run(hc.Schema))}}, nil
}
