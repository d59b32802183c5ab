// Package docxkit renders data into Microsoft Word (DOCX) templates without
// disturbing anything the template author did not mark up.
//
// A template is an ordinary document containing {{tags}}. Word splits typed
// text across runs freely, so a tag may span several runs with proofing and
// bookmark markers in between; docxkit reads each paragraph's logical text,
// finds the tags there and maps them back onto the XML. Every node that no
// tag touches is written back byte for byte.
//
// # Quick Start
//
//	tmpl, err := docxkit.PrepareFile("template.docx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tmpl.Close()
//
//	output, err := tmpl.Render(docxkit.TemplateData{
//	    "name":  "John Doe",
//	    "total": 1234.5,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	f, _ := os.Create("output.docx")
//	defer f.Close()
//	io.Copy(f, output)
//
// # Tags
//
// A tag body is an expression (github.com/expr-lang/expr) evaluated against
// the data, optionally preceded by a helper name:
//
//	{{name}}                 - text, replaced inside the paragraph
//	{{price * 1.2}}          - any expression
//	{{notes}}                - text with blank lines becomes one paragraph per block
//	{{lines address}}        - one paragraph per line
//	{{table rows}}           - a table built from a Table, rows of maps or rows of lists
//	{{markdown summary}}     - Markdown converted to paragraphs, lists and tables
//	{{jupyter notebook}}     - a Jupyter notebook's markdown, code, output and figures
//	{{image logo}}           - an inline picture from a data URI or image bytes
//
// Text values are rewritten in place, keeping the formatting of the runs the
// tag was typed in. Multi-line values clone the paragraph once per line.
// Tables, Markdown, notebooks and images replace the paragraph (or, for a
// subtree of rows or cells, the enclosing row or cell).
//
// # Errors
//
// Rendering a part is all or nothing. Unterminated tags are reported as
// *SyntaxError before anything is changed; tags referring to absent data as
// *UnresolvedReferenceError unless Config.MissingValue is "empty"; values
// that cannot be placed as *StructuralError. Failures are wrapped in an
// *OccurrenceError naming the paragraph and tag, and in a *DocumentError
// naming the part.
//
// # Architecture
//
//   - xml: a lossless XML tree addressed by positional paths
//   - render: logical text scanning, tag location, planning and editing
//   - data: loading render data from files, patches, SQLite and notebooks
//
// The main package ties these to DOCX packages, the expression evaluator,
// helpers, configuration, caching and logging.
package docxkit
