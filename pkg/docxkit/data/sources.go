package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit"
)

// Sources lists where a data context comes from.
type Sources struct {
	Files     []string // JSON or YAML files, merged in order
	Sets      []string // key=value overrides
	Patches   []string // JSON or YAML patch files
	Database  string   // SQLite database queried by Tables
	Tables    []string // name=query
	Notebooks []string // name=path
}

// Build assembles the context. Files are merged first, then overrides and
// patches are applied. Tables and notebooks are added last under their
// names since patches only operate on plain data.
func (s *Sources) Build(ctx context.Context) (docxkit.TemplateData, error) {
	result := docxkit.TemplateData{}
	for _, f := range s.Files {
		m, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		Merge(result, m)
	}
	for _, set := range s.Sets {
		key, value, err := ParseSet(set)
		if err != nil {
			return nil, err
		}
		if err := Set(result, key, value); err != nil {
			return nil, err
		}
	}
	for _, f := range s.Patches {
		patch, err := LoadPatchFile(f)
		if err != nil {
			return nil, err
		}
		if result, err = ApplyPatch(result, patch); err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
	}

	if len(s.Tables) > 0 {
		if s.Database == "" {
			return nil, errors.New("tables need a database")
		}
		db, err := OpenSQLite(s.Database)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		for _, t := range s.Tables {
			name, query, err := ParseAssignment(t)
			if err != nil {
				return nil, err
			}
			table, err := QueryTable(ctx, db, query)
			if err != nil {
				return nil, fmt.Errorf("table %s: %w", name, err)
			}
			result[name] = table
		}
	}
	for _, n := range s.Notebooks {
		name, path, err := ParseAssignment(n)
		if err != nil {
			return nil, err
		}
		nb, err := LoadNotebook(path)
		if err != nil {
			return nil, err
		}
		result[name] = nb
	}
	return result, nil
}

// Paths returns the local files the context is built from.
func (s *Sources) Paths() []string {
	var paths []string
	paths = append(paths, s.Files...)
	paths = append(paths, s.Patches...)
	if s.Database != "" {
		paths = append(paths, s.Database)
	}
	for _, n := range s.Notebooks {
		if _, path, err := ParseAssignment(n); err == nil {
			paths = append(paths, path)
		}
	}
	return paths
}
