// Package data builds the data context a template is rendered with from
// JSON or YAML files, key=value overrides, JSON patches, SQL query results
// and Jupyter notebooks.
package data

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit"
)

// LoadFile reads a JSON or YAML document whose top level is a mapping.
// Files ending in .json are decoded as JSON, everything else as YAML.
func LoadFile(path string) (docxkit.TemplateData, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	var v any
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(content))
		dec.UseNumber()
		err = dec.Decode(&v)
	} else {
		err = yaml.Unmarshal(content, &v)
	}
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", path, err)
	}
	if v == nil {
		return docxkit.TemplateData{}, nil
	}
	m, ok := Normalize(v).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: top level must be a mapping, got %T", path, v)
	}
	return m, nil
}

// Normalize converts decoded YAML or JSON into the shapes expressions
// expect: string-keyed maps, []any lists and int for integers that fit.
func Normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Normalize(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = Normalize(e)
		}
		return out
	case docxkit.TemplateData:
		return Normalize(map[string]any(x))
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Normalize(e)
		}
		return out
	case uint64:
		if x <= uint64(maxInt) {
			return int(x)
		}
	case int64:
		if int64(int(x)) == x {
			return int(x)
		}
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Normalize(i)
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
	}
	return v
}

const maxInt = int(^uint(0) >> 1)

// ParseSet parses a key=value override. The value is read as a YAML scalar
// or flow collection, so "3" is a number, "[a, b]" a list and "true" a bool;
// anything that does not parse is kept as text.
func ParseSet(s string) (string, any, error) {
	key, raw, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", nil, fmt.Errorf("expected key=value, got %q", s)
	}
	if raw == "" {
		return key, "", nil
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return key, raw, nil
	}
	if _, isMap := v.(map[string]any); isMap && !strings.HasPrefix(strings.TrimSpace(raw), "{") {
		// "a: b" parses as a mapping; keep it as text.
		return key, raw, nil
	}
	return key, Normalize(v), nil
}

// Set stores value at a dotted key path, creating intermediate maps.
func Set(ctx docxkit.TemplateData, key string, value any) error {
	parts := strings.Split(key, ".")
	m := map[string]any(ctx)
	for i, p := range parts[:len(parts)-1] {
		if p == "" {
			return fmt.Errorf("empty segment in key %q", key)
		}
		next, exists := m[p]
		if !exists || next == nil {
			child := make(map[string]any)
			m[p] = child
			m = child
			continue
		}
		child, ok := asMap(next)
		if !ok {
			return fmt.Errorf("cannot set %s: %s is a %T", key, strings.Join(parts[:i+1], "."), next)
		}
		m = child
	}
	last := parts[len(parts)-1]
	if last == "" {
		return fmt.Errorf("empty segment in key %q", key)
	}
	m[last] = value
	return nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case docxkit.TemplateData:
		return m, true
	}
	return nil, false
}

// Merge copies src into dst. Nested mappings are merged; any other value
// in src replaces the one in dst.
func Merge(dst, src docxkit.TemplateData) {
	mergeMaps(dst, src)
}

func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		sm, srcIsMap := asMap(v)
		dm, dstIsMap := asMap(dst[k])
		if srcIsMap && dstIsMap {
			mergeMaps(dm, sm)
			continue
		}
		dst[k] = v
	}
}

// ParseAssignment splits name=value as used by -table and -notebook.
func ParseAssignment(s string) (string, string, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" || value == "" {
		return "", "", fmt.Errorf("expected name=value, got %q", s)
	}
	if c := name[0]; c >= '0' && c <= '9' {
		return "", "", fmt.Errorf("name %q must not start with a digit", name)
	}
	return name, value, nil
}
