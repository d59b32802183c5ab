package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/xml"
	"github.com/google/go-cmp/cmp"
)

func newRenderer(values map[string]Value) *Renderer {
	return &Renderer{Schema: s, Evaluator: mapEvaluator(values)}
}

func TestRender_NoPlaceholdersLeavesTreeIdentical(t *testing.T) {
	body := `<w:p w:rsidR="00A1"><w:pPr><w:pStyle w:val="Title"/></w:pPr><w:r><w:t xml:space="preserve">Plain </w:t></w:r>` +
		`<w:proofErr w:type="spellStart"/><w:r><w:t>text } {</w:t></w:r></w:p>` +
		`<w:tbl><w:tr><w:tc><w:p/></w:tc></w:tr></w:tbl><w:sectPr/>`
	doc := parseBody(t, body)
	before := string(doc.Bytes())

	n, err := newRenderer(nil).Render(doc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("rendered %d occurrences, want 0", n)
	}
	if got := string(doc.Bytes()); got != before {
		t.Errorf("tree changed:\n got: %s\nwant: %s", got, before)
	}
}

func TestRender_SiblingIsolation(t *testing.T) {
	doc := parseBody(t, `<w:p><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">Hello </w:t></w:r>`+
		`<w:r><w:rPr><w:i/></w:rPr><w:t>{{name}}</w:t></w:r><w:r><w:t>!</w:t></w:r></w:p>`)
	if _, err := newRenderer(map[string]Value{"name": Scalar{Text: "World"}}).Render(doc, nil); err != nil {
		t.Fatal(err)
	}
	want := `<w:p><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">Hello </w:t></w:r>` +
		`<w:r><w:rPr><w:i/></w:rPr><w:t>World</w:t></w:r><w:r><w:t>!</w:t></w:r></w:p>`
	if got := bodyXML(doc); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestRender_FragmentationInvariance(t *testing.T) {
	values := map[string]Value{"myPlaceholder": Scalar{Text: "Hello"}}

	split := parseBody(t, `<w:p><w:r><w:t>{{</w:t></w:r><w:proofErr w:type="spellStart"/>`+
		`<w:r><w:t>myPlaceholder</w:t></w:r><w:proofErr w:type="spellEnd"/><w:r><w:t>}}</w:t></w:r></w:p>`)
	single := parseBody(t, para("{{myPlaceholder}}"))

	for _, doc := range []*xml.Document{split, single} {
		if _, err := newRenderer(values).Render(doc, nil); err != nil {
			t.Fatal(err)
		}
	}
	want := `<w:p><w:r><w:t>Hello</w:t></w:r></w:p>`
	if got := bodyXML(split); got != want {
		t.Errorf("fragmented render = %s, want %s", got, want)
	}
	if got := bodyXML(single); got != want {
		t.Errorf("single-run render = %s, want %s", got, want)
	}
}

func TestRender_InlineRewriteKeepsBoundaryText(t *testing.T) {
	doc := parseBody(t, `<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>Hi {{na</w:t></w:r>`+
		`<w:r><w:rPr><w:i/></w:rPr><w:t>me}} there</w:t></w:r></w:p>`)
	if _, err := newRenderer(map[string]Value{"name": Scalar{Text: "Ann"}}).Render(doc, nil); err != nil {
		t.Fatal(err)
	}
	want := `<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>Hi Ann</w:t></w:r>` +
		`<w:r><w:rPr><w:i/></w:rPr><w:t xml:space="preserve"> there</w:t></w:r></w:p>`
	if got := bodyXML(doc); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestRender_LineBreaksAndTabs(t *testing.T) {
	doc := parseBody(t, para("{{addr}}"))
	if _, err := newRenderer(map[string]Value{"addr": Scalar{Text: "1 Main St\nSpringfield\tUSA"}}).Render(doc, nil); err != nil {
		t.Fatal(err)
	}
	want := `<w:p><w:r><w:t>1 Main St</w:t><w:br/><w:t>Springfield</w:t><w:tab/><w:t>USA</w:t></w:r></w:p>`
	if got := bodyXML(doc); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestRender_MultiLineExpansion(t *testing.T) {
	doc := parseBody(t, para("before")+
		`<w:p w:rsidR="001"><w:pPr><w:pStyle w:val="List"/></w:pPr><w:r><w:t>{{items}}</w:t></w:r></w:p>`+
		para("after"))
	values := map[string]Value{"items": MultiLine{Lines: []string{"Paragraph 1", "Paragraph 2"}}}
	if _, err := newRenderer(values).Render(doc, nil); err != nil {
		t.Fatal(err)
	}
	want := para("before") +
		`<w:p w:rsidR="001"><w:pPr><w:pStyle w:val="List"/></w:pPr><w:r><w:t>Paragraph 1</w:t></w:r></w:p>` +
		`<w:p w:rsidR="001"><w:pPr><w:pStyle w:val="List"/></w:pPr><w:r><w:t>Paragraph 2</w:t></w:r></w:p>` +
		para("after")
	if got := bodyXML(doc); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestRender_EmptyMultiLineRemovesParagraph(t *testing.T) {
	doc := parseBody(t, para("a")+para("{{items}}")+para("b"))
	if _, err := newRenderer(map[string]Value{"items": MultiLine{}}).Render(doc, nil); err != nil {
		t.Fatal(err)
	}
	if got, want := bodyXML(doc), para("a")+para("b"); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestRender_ScalarsLandInEveryClone(t *testing.T) {
	doc := parseBody(t, `<w:p><w:r><w:t>{{greet}} {{items}} {{tail}}</w:t></w:r></w:p>`)
	values := map[string]Value{
		"greet": Scalar{Text: "Hello there"},
		"items": MultiLine{Lines: []string{"x", "y"}},
		"tail":  Scalar{Text: "!"},
	}
	n, err := newRenderer(values).Render(doc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("rendered %d occurrences, want 3", n)
	}
	want := para("Hello there x !") + para("Hello there y !")
	if got := bodyXML(doc); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestRender_BlockReplacePosition(t *testing.T) {
	doc := parseBody(t, para("X")+para("{{table}}")+para("Y"))
	tbl := s.Elem("tbl").Append(s.Elem("tr").Append(s.Elem("tc").Append(s.Elem("p"))))
	if _, err := newRenderer(map[string]Value{"table": Subtree{Nodes: []*xml.Node{tbl}}}).Render(doc, nil); err != nil {
		t.Fatal(err)
	}
	want := para("X") + `<w:tbl><w:tr><w:tc><w:p/></w:tc></w:tr></w:tbl>` + para("Y")
	if got := bodyXML(doc); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestRender_RowReplacement(t *testing.T) {
	doc := parseBody(t, `<w:tbl><w:tblPr/><w:tr><w:tc>`+para("head")+`</w:tc></w:tr>`+
		`<w:tr><w:tc>`+para("{{rows}}")+`</w:tc></w:tr></w:tbl>`)
	row := func(text string) *xml.Node {
		r := s.Elem("r").Append(s.Elem("t").Append(xml.NewText(text)))
		return s.Elem("tr").Append(s.Elem("tc").Append(s.Elem("p").Append(r)))
	}
	values := map[string]Value{"rows": Subtree{Nodes: []*xml.Node{row("a"), row("b")}}}
	if _, err := newRenderer(values).Render(doc, nil); err != nil {
		t.Fatal(err)
	}
	want := `<w:tbl><w:tblPr/><w:tr><w:tc>` + para("head") + `</w:tc></w:tr>` +
		`<w:tr><w:tc>` + para("a") + `</w:tc></w:tr><w:tr><w:tc>` + para("b") + `</w:tc></w:tr></w:tbl>`
	if got := bodyXML(doc); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestRender_CellKeepsTrailingParagraph(t *testing.T) {
	doc := parseBody(t, `<w:tbl><w:tr><w:tc><w:tcPr/>`+para("{{items}}")+`</w:tc></w:tr></w:tbl>`)
	if _, err := newRenderer(map[string]Value{"items": MultiLine{}}).Render(doc, nil); err != nil {
		t.Fatal(err)
	}
	want := `<w:tbl><w:tr><w:tc><w:tcPr/><w:p/></w:tc></w:tr></w:tbl>`
	if got := bodyXML(doc); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestRender_NestedParagraphs(t *testing.T) {
	doc := parseBody(t, `<w:p><w:r><w:t>{{outer}}</w:t></w:r>`+
		`<w:r><w:pict><w:txbxContent>`+para("{{inner}}")+`</w:txbxContent></w:pict></w:r></w:p>`)
	values := map[string]Value{"outer": Scalar{Text: "O"}, "inner": Scalar{Text: "I"}}
	n, err := newRenderer(values).Render(doc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("rendered %d occurrences, want 2", n)
	}
	want := `<w:p><w:r><w:t>O</w:t></w:r><w:r><w:pict><w:txbxContent>` + para("I") + `</w:txbxContent></w:pict></w:r></w:p>`
	if got := bodyXML(doc); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestRender_TextBoxesInsideClones(t *testing.T) {
	box := func(inner string) string {
		return `<w:r><w:drawing><w:txbxContent>` + para(inner) + `</w:txbxContent></w:drawing></w:r>`
	}
	doc := parseBody(t, `<w:p><w:r><w:t>{{list}}</w:t></w:r>`+box("{{inner}}")+`</w:p>`)
	values := map[string]Value{
		"list":  MultiLine{Lines: []string{"1", "{{raw}}"}},
		"inner": Scalar{Text: "IN"},
	}
	n, err := newRenderer(values).Render(doc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("rendered %d occurrences, want 3", n)
	}
	want := `<w:p><w:r><w:t>1</w:t></w:r>` + box("IN") + `</w:p>` +
		`<w:p><w:r><w:t>{{raw}}</w:t></w:r>` + box("IN") + `</w:p>`
	if got := bodyXML(doc); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestRender_ReplacementSubtreeIsOpaque(t *testing.T) {
	doc := parseBody(t, para("{{block}}")+para("{{after}}"))
	values := map[string]Value{
		"block": Subtree{Nodes: []*xml.Node{
			s.Elem("p").Append(s.Elem("r").Append(s.Elem("t").Append(xml.NewText("{{kept}}")))),
		}},
		"after": Scalar{Text: "done"},
	}
	n, err := newRenderer(values).Render(doc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("rendered %d occurrences, want 2", n)
	}
	if got, want := bodyXML(doc), para("{{kept}}")+para("done"); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestRender_UnterminatedTagMutatesNothing(t *testing.T) {
	doc := parseBody(t, para("{{ok}}")+para("{{broken"))
	before := string(doc.Bytes())
	_, err := newRenderer(map[string]Value{"ok": Scalar{Text: "fine"}}).Render(doc, nil)

	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *SyntaxError", err)
	}
	var oe *OccurrenceError
	if !errors.As(err, &oe) || !oe.Block.Equal(bodyPath.Child(1)) {
		t.Errorf("error not located at the second paragraph: %v", err)
	}
	if got := string(doc.Bytes()); got != before {
		t.Errorf("tree mutated on syntax error: %s", got)
	}
}

func TestRender_MissingPolicy(t *testing.T) {
	t.Run("error", func(t *testing.T) {
		doc := parseBody(t, para("{{known}}")+para("{{missing}}"))
		before := string(doc.Bytes())
		_, err := newRenderer(map[string]Value{"known": Scalar{Text: "k"}}).Render(doc, nil)
		var ur *UnresolvedReferenceError
		if !errors.As(err, &ur) || ur.Name != "missing" {
			t.Fatalf("error = %v, want unresolved reference to missing", err)
		}
		if got := string(doc.Bytes()); got != before {
			t.Errorf("part changed despite the error: %s", got)
		}
	})
	t.Run("empty", func(t *testing.T) {
		doc := parseBody(t, para("{{known}}")+para("a{{missing}}b"))
		r := newRenderer(map[string]Value{"known": Scalar{Text: "k"}})
		r.Missing = MissingEmpty
		if _, err := r.Render(doc, nil); err != nil {
			t.Fatal(err)
		}
		if got, want := bodyXML(doc), para("k")+para("ab"); got != want {
			t.Errorf("got  %s\nwant %s", got, want)
		}
	})
}

func TestRender_StructuralErrors(t *testing.T) {
	row := s.Elem("tr").Append(s.Elem("tc").Append(s.Elem("p")))
	tests := []struct {
		name   string
		body   string
		values map[string]Value
	}{
		{
			name:   "row outside table",
			body:   para("{{rows}}"),
			values: map[string]Value{"rows": Subtree{Nodes: []*xml.Node{row}}},
		},
		{
			name: "two shape changes in one paragraph",
			body: para("{{items}}{{more}}"),
			values: map[string]Value{
				"items": MultiLine{Lines: []string{"a"}},
				"more":  MultiLine{Lines: []string{"b"}},
			},
		},
		{
			name:   "run cannot replace a paragraph",
			body:   para("{{run}}"),
			values: map[string]Value{"run": Subtree{Nodes: []*xml.Node{s.Elem("r")}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseBody(t, tt.body)
			before := string(doc.Bytes())
			_, err := newRenderer(tt.values).Render(doc, nil)
			var se *StructuralError
			if !errors.As(err, &se) {
				t.Fatalf("error = %v, want *StructuralError", err)
			}
			if got := string(doc.Bytes()); got != before {
				t.Errorf("tree mutated: %s", got)
			}
		})
	}
}

func TestLocate_DocumentOrder(t *testing.T) {
	doc := parseBody(t, `<w:tbl><w:tblPr/><w:tr><w:tc>`+para("{{a}} {{b}}")+`</w:tc></w:tr></w:tbl>`+
		para("text")+para("{{c}}"))
	occs, err := Locate(doc, s)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, o := range occs {
		got = append(got, o.Tag+"@"+o.Block.String())
	}
	want := []string{"{{a}}@/0/0/0/1/0/0", "{{b}}@/0/0/0/1/0/0", "{{c}}@/0/0/2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("occurrences mismatch (-want +got):\n%s", diff)
	}

	nodes := occs[1].Nodes()
	if len(nodes) != 1 || !nodes[0].Equal(xml.Path{0, 0, 0, 1, 0, 0, 0, 0}) {
		t.Errorf("spanned nodes = %v", nodes)
	}
}

func TestEditor_RejectsStalePlan(t *testing.T) {
	doc := parseBody(t, `<w:p><w:r><w:t>{{a</w:t></w:r><w:r><w:t>}}</w:t></w:r></w:p>`)
	occs, err := Locate(doc, s)
	if err != nil {
		t.Fatal(err)
	}
	planner := Planner{Schema: s}
	plan, err := planner.Plan(doc, occs[0], MultiLine{Lines: []string{"x", "y"}})
	if err != nil {
		t.Fatal(err)
	}
	if err := doc.SetText(bodyPath.Join(xml.Path{0, 1, 0, 0}), "changed"); err != nil {
		t.Fatal(err)
	}
	before := string(doc.Bytes())

	editor := Editor{Schema: s}
	_, err = editor.Apply(doc, plan)
	var te *TreeEditError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v, want *TreeEditError", err)
	}
	if got := string(doc.Bytes()); got != before {
		t.Errorf("tree mutated by failed plan: %s", got)
	}
}

func TestRender_ObserveSeesEveryOccurrence(t *testing.T) {
	doc := parseBody(t, para("{{a}}")+para("{{b}}"))
	r := newRenderer(map[string]Value{"a": Scalar{Text: "1"}, "b": Scalar{Text: "2"}})
	var seen []string
	r.Observe = func(o Occurrence, v Value) {
		seen = append(seen, strings.Trim(o.Tag, "{}")+"="+v.(Scalar).Text)
	}
	if _, err := r.Render(doc, nil); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a=1", "b=2"}, seen); diff != "" {
		t.Errorf("observed mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMissingPolicy(t *testing.T) {
	for in, want := range map[string]MissingPolicy{"": MissingError, "error": MissingError, "EMPTY": MissingEmpty} {
		got, err := ParseMissingPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseMissingPolicy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMissingPolicy("skip"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
