package docxkit

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/render"
	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/xml"
)

// Notebook is the subset of the Jupyter nbformat 4 document that is rendered.
type Notebook struct {
	Cells         []NotebookCell `json:"cells"`
	NBFormat      int            `json:"nbformat"`
	NBFormatMinor int            `json:"nbformat_minor"`
}

// NotebookCell is a markdown, code or raw cell.
type NotebookCell struct {
	CellType string           `json:"cell_type"`
	Source   MultilineText    `json:"source"`
	Outputs  []NotebookOutput `json:"outputs,omitempty"`
}

// NotebookOutput is one output of a code cell.
type NotebookOutput struct {
	OutputType string                     `json:"output_type"`
	Name       string                     `json:"name,omitempty"`
	Text       MultilineText              `json:"text,omitempty"`
	Data       map[string]json.RawMessage `json:"data,omitempty"`
}

// MultilineText decodes nbformat text, stored either as a string or as a
// list of lines that keep their newlines.
type MultilineText string

func (m *MultilineText) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*m = MultilineText(s)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(b, &lines); err != nil {
		return fmt.Errorf("expected a string or a list of strings: %w", err)
	}
	*m = MultilineText(strings.Join(lines, ""))
	return nil
}

// ParseNotebook decodes an .ipynb document.
func ParseNotebook(data []byte) (*Notebook, error) {
	var nb Notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, fmt.Errorf("failed to parse notebook: %w", err)
	}
	if nb.NBFormat != 0 && nb.NBFormat < 4 {
		return nil, fmt.Errorf("unsupported notebook format %d", nb.NBFormat)
	}
	return &nb, nil
}

func jupyterHelper(hc *HelperContext, arg any) (render.Value, error) {
	var nb *Notebook
	switch v := arg.(type) {
	case *Notebook:
		nb = v
	case Notebook:
		nb = &v
	case string, []byte:
		var data []byte
		if s, ok := v.(string); ok {
			data = []byte(s)
		} else {
			data = v.([]byte)
		}
		var err error
		if nb, err = ParseNotebook(data); err != nil {
			return nil, NewHelperError("jupyter", "%v", err)
		}
	default:
		return nil, NewHelperError("jupyter", "expected a notebook, got %T", arg)
	}

	nodes, err := convertNotebook(hc, nb)
	if err != nil {
		return nil, NewHelperError("jupyter", "%v", err)
	}
	return render.Subtree{Nodes: nodes}, nil
}

// notebookCodeSize is the half-point size of code and output text.
const notebookCodeSize = 16

// convertNotebook renders markdown cells as Markdown and code cells as their
// source followed by their text and PNG outputs. Raw cells are skipped.
func convertNotebook(hc *HelperContext, nb *Notebook) ([]*xml.Node, error) {
	s := hc.Schema
	var out []*xml.Node
	for i, cell := range nb.Cells {
		switch cell.CellType {
		case "markdown":
			out = append(out, convertMarkdown(s, hc.Page, []byte(cell.Source))...)
		case "code":
			out = append(out, monospaceParagraphs(s, string(cell.Source), notebookCodeSize)...)
			for _, o := range cell.Outputs {
				nodes, err := convertOutput(hc, o)
				if err != nil {
					return nil, fmt.Errorf("cell %d: %w", i, err)
				}
				out = append(out, nodes...)
			}
		}
	}
	return out, nil
}

func convertOutput(hc *HelperContext, o NotebookOutput) ([]*xml.Node, error) {
	s := hc.Schema
	if o.OutputType == "stream" {
		return monospaceParagraphs(s, string(o.Text), notebookCodeSize), nil
	}

	var out []*xml.Node
	if raw, ok := o.Data["text/plain"]; ok {
		var text MultilineText
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, fmt.Errorf("text/plain output: %w", err)
		}
		out = append(out, monospaceParagraphs(s, string(text), notebookCodeSize)...)
	}
	if raw, ok := o.Data["image/png"]; ok {
		var encoded MultilineText
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, fmt.Errorf("image/png output: %w", err)
		}
		data, err := decodeBase64(strings.TrimSpace(string(encoded)))
		if err != nil {
			return nil, fmt.Errorf("image/png output: %w", err)
		}
		pic, err := embedImage(hc, data, "image/png")
		if err != nil {
			return nil, fmt.Errorf("image/png output: %w", err)
		}
		out = append(out, paragraph(s, nil, pic.run(s)))
	}
	return out, nil
}
