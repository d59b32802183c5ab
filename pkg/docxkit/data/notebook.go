package data

import (
	"fmt"
	"os"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit"
)

// LoadNotebook reads a Jupyter notebook for the jupyter helper.
func LoadNotebook(path string) (*docxkit.Notebook, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	nb, err := docxkit.ParseNotebook(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return nb, nil
}
