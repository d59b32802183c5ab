package data

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	want := docxkit.TemplateData{
		"name":  "Ada",
		"count": 3,
		"ratio": 0.5,
		"tags":  []any{"a", "b"},
		"owner": map[string]any{"id": 7, "active": true},
	}

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "yaml",
			file:    "d.yaml",
			content: "name: Ada\ncount: 3\nratio: 0.5\ntags: [a, b]\nowner:\n  id: 7\n  active: true\n",
		},
		{
			name:    "json",
			file:    "d.json",
			content: `{"name": "Ada", "count": 3, "ratio": 0.5, "tags": ["a", "b"], "owner": {"id": 7, "active": true}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadFile(writeFile(t, dir, tt.file, tt.content))
			if err != nil {
				t.Fatalf("LoadFile: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("LoadFile (-want +got):\n%s", diff)
			}
		})
	}

	if got, err := LoadFile(writeFile(t, dir, "empty.yaml", "")); err != nil || len(got) != 0 {
		t.Errorf("empty file = %v, %v", got, err)
	}
	if _, err := LoadFile(writeFile(t, dir, "list.yaml", "- a\n- b\n")); err == nil {
		t.Error("expected a top-level list to be rejected")
	}
	if _, err := LoadFile(writeFile(t, dir, "bad.json", "{")); err == nil {
		t.Error("expected invalid JSON to fail")
	}
	if _, err := LoadFile(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Error("expected a missing file to fail")
	}
}

func TestParseSet(t *testing.T) {
	tests := []struct {
		in      string
		key     string
		value   any
		wantErr bool
	}{
		{in: "name=Ada", key: "name", value: "Ada"},
		{in: "n=3", key: "n", value: 3},
		{in: "n=-3", key: "n", value: -3},
		{in: "x=1.25", key: "x", value: 1.25},
		{in: "ok=true", key: "ok", value: true},
		{in: "list=[a, 2]", key: "list", value: []any{"a", 2}},
		{in: "m={k: v}", key: "m", value: map[string]any{"k": "v"}},
		{in: "title=Note: read me", key: "title", value: "Note: read me"},
		{in: "empty=", key: "empty", value: ""},
		{in: "a.b=c", key: "a.b", value: "c"},
		{in: "novalue", wantErr: true},
		{in: "=x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			key, value, err := ParseSet(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSet() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if key != tt.key {
				t.Errorf("key = %q, want %q", key, tt.key)
			}
			if diff := cmp.Diff(tt.value, value); diff != "" {
				t.Errorf("value (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSet(t *testing.T) {
	ctx := docxkit.TemplateData{"user": map[string]any{"name": "Ada"}, "flat": 1}
	if err := Set(ctx, "user.role", "admin"); err != nil {
		t.Fatal(err)
	}
	if err := Set(ctx, "a.b.c", 1); err != nil {
		t.Fatal(err)
	}
	want := docxkit.TemplateData{
		"user": map[string]any{"name": "Ada", "role": "admin"},
		"flat": 1,
		"a":    map[string]any{"b": map[string]any{"c": 1}},
	}
	if diff := cmp.Diff(want, ctx); diff != "" {
		t.Errorf("Set (-want +got):\n%s", diff)
	}

	if err := Set(ctx, "flat.x", 2); err == nil {
		t.Error("expected setting below a scalar to fail")
	}
	if err := Set(ctx, "a..b", 2); err == nil {
		t.Error("expected an empty segment to fail")
	}
}

func TestMerge(t *testing.T) {
	dst := docxkit.TemplateData{"a": map[string]any{"x": 1, "y": 2}, "b": 1}
	Merge(dst, docxkit.TemplateData{"a": map[string]any{"y": 3}, "b": []any{1}, "c": "new"})
	want := docxkit.TemplateData{"a": map[string]any{"x": 1, "y": 3}, "b": []any{1}, "c": "new"}
	if diff := cmp.Diff(want, dst); diff != "" {
		t.Errorf("Merge (-want +got):\n%s", diff)
	}
}

func TestApplyPatch(t *testing.T) {
	base := docxkit.TemplateData{"name": "Ada", "n": 1, "drop": true, "list": []any{"a"}}

	tests := []struct {
		name    string
		patch   string
		want    docxkit.TemplateData
		wantErr bool
	}{
		{
			name:  "merge patch",
			patch: `{"name": "Grace", "drop": null, "extra": {"k": 2.5}}`,
			want:  docxkit.TemplateData{"name": "Grace", "n": 1, "list": []any{"a"}, "extra": map[string]any{"k": 2.5}},
		},
		{
			name:  "json patch",
			patch: `[{"op": "replace", "path": "/n", "value": 2}, {"op": "add", "path": "/list/-", "value": "b"}]`,
			want:  docxkit.TemplateData{"name": "Ada", "n": 2, "drop": true, "list": []any{"a", "b"}},
		},
		{
			name:    "failing json patch",
			patch:   `[{"op": "remove", "path": "/missing"}]`,
			wantErr: true,
		},
		{
			name:    "not a patch",
			patch:   `[1]`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyPatch(base, []byte(tt.patch))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyPatch() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ApplyPatch (-want +got):\n%s", diff)
			}
		})
	}
	if base["name"] != "Ada" {
		t.Error("ApplyPatch modified its input")
	}
}

func TestLoadPatchFile(t *testing.T) {
	dir := t.TempDir()
	got, err := LoadPatchFile(writeFile(t, dir, "p.yaml", "- op: remove\n  path: /a\n"))
	if err != nil {
		t.Fatalf("LoadPatchFile: %v", err)
	}
	patched, err := ApplyPatch(docxkit.TemplateData{"a": 1, "b": 2}, got)
	if err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	if diff := cmp.Diff(docxkit.TemplateData{"b": 2}, patched); diff != "" {
		t.Errorf("patched (-want +got):\n%s", diff)
	}
}

func TestParseAssignment(t *testing.T) {
	name, value, err := ParseAssignment("sales=select * from t where a = 1")
	if err != nil || name != "sales" || value != "select * from t where a = 1" {
		t.Errorf("ParseAssignment = %q, %q, %v", name, value, err)
	}
	for _, bad := range []string{"noequals", "=x", "name=", "1st=x"} {
		if _, _, err := ParseAssignment(bad); err == nil {
			t.Errorf("ParseAssignment(%q) succeeded", bad)
		}
	}
}

func TestSources_Build(t *testing.T) {
	dir := t.TempDir()
	s := &Sources{
		Files: []string{
			writeFile(t, dir, "a.yaml", "title: Draft\nauthor:\n  name: Ada\n"),
			writeFile(t, dir, "b.json", `{"title": "Final"}`),
		},
		Sets:      []string{"author.year=1843"},
		Patches:   []string{writeFile(t, dir, "p.json", `{"draft": false}`)},
		Notebooks: []string{"nb=" + writeFile(t, dir, "n.ipynb", `{"nbformat": 4, "cells": []}`)},
	}
	got, err := s.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := got["nb"].(*docxkit.Notebook); !ok {
		t.Errorf("nb = %T, want *docxkit.Notebook", got["nb"])
	}
	delete(got, "nb")
	want := docxkit.TemplateData{
		"title":  "Final",
		"author": map[string]any{"name": "Ada", "year": 1843},
		"draft":  false,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(append(append([]string{}, s.Files...), s.Patches[0], filepath.Join(dir, "n.ipynb")), s.Paths()); diff != "" {
		t.Errorf("Paths (-want +got):\n%s", diff)
	}

	if _, err := (&Sources{Tables: []string{"t=select 1"}}).Build(context.Background()); err == nil {
		t.Error("expected tables without a database to fail")
	}
}
