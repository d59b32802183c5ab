package render

import (
	"errors"
	"testing"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/xml"
)

func TestPlanner_Plan(t *testing.T) {
	// body: a paragraph, then a one-cell table holding a paragraph
	body := para("{{x}}") + `<w:tbl><w:tr><w:tc>` + para("{{y}}") + `</w:tc></w:tr></w:tbl>`
	top := bodyPath.Child(0)
	inCell := bodyPath.Join(xml.Path{1, 0, 0, 0})

	tests := []struct {
		name       string
		block      xml.Path
		value      Value
		wantKind   PlanKind
		wantTarget xml.Path
		wantErr    any
	}{
		{name: "scalar", block: top, value: Scalar{Text: "v"}, wantKind: InlineRewrite, wantTarget: top},
		{name: "multiline", block: top, value: MultiLine{Lines: []string{"a", "b"}}, wantKind: BlockClone, wantTarget: top},
		{name: "paragraphs", block: top, value: Subtree{Nodes: []*xml.Node{s.Elem("p")}}, wantKind: BlockReplace, wantTarget: top},
		{name: "table in cell", block: inCell, value: Subtree{Nodes: []*xml.Node{s.Elem("tbl")}}, wantKind: BlockReplace, wantTarget: inCell},
		{name: "rows replace row", block: inCell, value: Subtree{Nodes: []*xml.Node{s.Elem("tr"), s.Elem("tr")}}, wantKind: BlockReplace, wantTarget: bodyPath.Join(xml.Path{1, 0})},
		{name: "cells replace cell", block: inCell, value: Subtree{Nodes: []*xml.Node{s.Elem("tc")}}, wantKind: BlockReplace, wantTarget: bodyPath.Join(xml.Path{1, 0, 0})},
		{name: "row outside table", block: top, value: Subtree{Nodes: []*xml.Node{s.Elem("tr")}}, wantErr: new(*StructuralError)},
		{name: "mixed roots", block: inCell, value: Subtree{Nodes: []*xml.Node{s.Elem("p"), s.Elem("tr")}}, wantErr: new(*StructuralError)},
		{name: "run root", block: top, value: Subtree{Nodes: []*xml.Node{s.Elem("r")}}, wantErr: new(*StructuralError)},
		{name: "nil value", block: top, value: nil, wantErr: new(*TreeEditError)},
		{name: "not a paragraph", block: bodyPath.Child(1), value: Scalar{}, wantErr: new(*TreeEditError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseBody(t, body)
			planner := Planner{Schema: s}
			plan, err := planner.Plan(doc, Occurrence{Block: tt.block}, tt.value)
			if tt.wantErr != nil {
				if !errors.As(err, tt.wantErr) {
					t.Fatalf("error = %v, want %T", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Plan: %v", err)
			}
			if plan.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", plan.Kind, tt.wantKind)
			}
			if !plan.Target.Equal(tt.wantTarget) {
				t.Errorf("target = %s, want %s", plan.Target, tt.wantTarget)
			}
			if plan.Expect != doc.Resolve(plan.Target).Name {
				t.Errorf("expect = %v, want target name", plan.Expect)
			}
		})
	}
}

func TestPlanKind_String(t *testing.T) {
	for k, want := range map[PlanKind]string{
		InlineRewrite: "InlineRewrite",
		BlockClone:    "BlockClone",
		BlockReplace:  "BlockReplace",
		PlanKind(7):   "PlanKind(7)",
	} {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(k), got, want)
		}
	}
}
