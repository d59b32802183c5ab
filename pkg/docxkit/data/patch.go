package data

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/goccy/go-yaml"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit"
)

// ApplyPatch applies patch to ctx and returns the result. A patch whose top
// level is a list is an RFC 6902 operation list; a mapping is an RFC 7386
// merge patch. ctx is not modified.
func ApplyPatch(ctx docxkit.TemplateData, patch []byte) (docxkit.TemplateData, error) {
	doc, err := json.Marshal(ctx)
	if err != nil {
		return nil, fmt.Errorf("error encoding data: %w", err)
	}
	var out []byte
	if trimmed := bytes.TrimSpace(patch); len(trimmed) > 0 && trimmed[0] == '[' {
		ops, err := jsonpatch.DecodePatch(trimmed)
		if err != nil {
			return nil, fmt.Errorf("invalid json patch: %w", err)
		}
		if out, err = ops.Apply(doc); err != nil {
			return nil, fmt.Errorf("error applying json patch: %w", err)
		}
	} else {
		if out, err = jsonpatch.MergePatch(doc, trimmed); err != nil {
			return nil, fmt.Errorf("error applying merge patch: %w", err)
		}
	}

	dec := json.NewDecoder(bytes.NewReader(out))
	dec.UseNumber()
	var v map[string]any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("patch result is not a mapping: %w", err)
	}
	if v == nil {
		return docxkit.TemplateData{}, nil
	}
	return Normalize(v).(map[string]any), nil
}

// LoadPatchFile reads a patch written in JSON or YAML and returns it as
// JSON.
func LoadPatchFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return content, nil
	}
	out, err := yaml.YAMLToJSON(content)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", path, err)
	}
	return out, nil
}
