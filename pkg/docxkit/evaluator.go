package docxkit

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/render"
	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/xml"
)

// Helper turns the value of a `{{name expr}}` tag into content.
type Helper func(hc *HelperContext, arg any) (render.Value, error)

// HelperContext is what a helper knows about the part it renders into.
type HelperContext struct {
	Part   string
	Schema xml.Schema
	Page   PageGeometry
	Media  MediaRegistrar

	drawings *atomic.Int64
}

// NewHelperContext returns a context for rendering into part.
func NewHelperContext(part string, schema xml.Schema, page PageGeometry, media MediaRegistrar) *HelperContext {
	return &HelperContext{Part: part, Schema: schema, Page: page, Media: media, drawings: new(atomic.Int64)}
}

func (hc *HelperContext) nextDrawingID() int {
	if hc.drawings == nil {
		hc.drawings = new(atomic.Int64)
	}
	return firstDrawingID + int(hc.drawings.Add(1)) - 1
}

var (
	identPattern = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*$`)
	// helperTagPattern splits "name rest" where rest is the helper argument.
	helperTagPattern = regexp.MustCompile(`^([\p{L}_][\p{L}\p{N}_]*)\s+(\S[\s\S]*)$`)
	unknownPattern   = regexp.MustCompile(`unknown (?:name|func) ([\p{L}_][\p{L}\p{N}_]*)`)
	nilFetchPattern  = regexp.MustCompile(`cannot fetch (\S+) from <nil>`)
)

// Evaluator evaluates tag bodies with github.com/expr-lang/expr against the
// render data, registered functions and helpers.
type Evaluator struct {
	mu        sync.RWMutex
	functions map[string]any
	helpers   map[string]Helper
}

// NewEvaluator returns an evaluator with the built-in helpers registered.
func NewEvaluator() *Evaluator {
	ev := &Evaluator{
		functions: make(map[string]any),
		helpers:   make(map[string]Helper),
	}
	ev.helpers["lines"] = linesHelper
	ev.helpers["table"] = tableHelper
	ev.helpers["markdown"] = markdownHelper
	ev.helpers["jupyter"] = jupyterHelper
	ev.helpers["image"] = imageHelper
	return ev
}

// RegisterFunction makes a Go function callable from expressions.
func (ev *Evaluator) RegisterFunction(name string, fn any) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid function name %q", name)
	}
	if fn == nil || reflect.TypeOf(fn).Kind() != reflect.Func {
		return fmt.Errorf("function %s: expected a func, got %T", name, fn)
	}
	ev.mu.Lock()
	defer ev.mu.Unlock()
	if _, exists := ev.helpers[name]; exists {
		return fmt.Errorf("function %s: name is taken by a helper", name)
	}
	ev.functions[name] = fn
	return nil
}

// RegisterHelper adds or replaces a helper.
func (ev *Evaluator) RegisterHelper(name string, h Helper) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid helper name %q", name)
	}
	if h == nil {
		return fmt.Errorf("helper %s is nil", name)
	}
	ev.mu.Lock()
	defer ev.mu.Unlock()
	if _, exists := ev.functions[name]; exists {
		return fmt.Errorf("helper %s: name is taken by a function", name)
	}
	ev.helpers[name] = h
	return nil
}

// Scope binds the evaluator to one part and one set of data. A scope is used
// by a single goroutine.
func (ev *Evaluator) Scope(hc *HelperContext, data TemplateData) *Scope {
	ev.mu.RLock()
	defer ev.mu.RUnlock()

	sc := &Scope{
		hc:       hc,
		helpers:  make(map[string]Helper, len(ev.helpers)),
		env:      make(map[string]any, len(data)+len(ev.functions)),
		programs: make(map[string]*vm.Program),
	}
	for name, fn := range ev.functions {
		sc.env[name] = fn
	}
	for k, v := range data {
		sc.env[k] = v
	}
	for name, h := range ev.helpers {
		sc.helpers[name] = h
		if _, shadowed := sc.env[name]; shadowed {
			continue
		}
		sc.options = append(sc.options, expr.Function(name, sc.helperFunc(name, h)))
	}
	return sc
}

// Scope evaluates tags for one part. It implements render.Evaluator; the
// data passed to Evaluate is ignored in favour of the data the scope was
// created with.
type Scope struct {
	hc       *HelperContext
	helpers  map[string]Helper
	env      map[string]any
	options  []expr.Option
	programs map[string]*vm.Program
}

// Evaluate implements render.Evaluator.
func (sc *Scope) Evaluate(tag string, _ any) (render.Value, error) {
	body := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(tag, render.OpenDelim), render.CloseDelim))
	if body == "" {
		return nil, &SyntaxError{Tag: tag, Message: "empty tag"}
	}

	if m := helperTagPattern.FindStringSubmatch(body); m != nil {
		if h, ok := sc.helpers[m[1]]; ok {
			arg, err := sc.run(tag, m[2])
			if err != nil {
				return nil, err
			}
			if arg == nil {
				return nil, &UnresolvedReferenceError{Tag: tag, Name: strings.TrimSpace(m[2])}
			}
			v, err := h(sc.hc, arg)
			if err != nil {
				return nil, helperError(m[1], err)
			}
			return v, nil
		}
	}

	out, err := sc.run(tag, body)
	if err != nil {
		return nil, err
	}
	return sc.toValue(out)
}

func (sc *Scope) run(tag, code string) (any, error) {
	prg, ok := sc.programs[code]
	if !ok {
		opts := append([]expr.Option{expr.Env(sc.env)}, sc.options...)
		var err error
		prg, err = expr.Compile(code, opts...)
		if err != nil {
			msg := err.Error()
			if m := unknownPattern.FindStringSubmatch(msg); m != nil {
				return nil, &UnresolvedReferenceError{Tag: tag, Name: m[1]}
			}
			first, _, _ := strings.Cut(msg, "\n")
			return nil, &SyntaxError{Tag: tag, Message: first}
		}
		sc.programs[code] = prg
	}

	out, err := expr.Run(prg, sc.env)
	if err != nil {
		if m := nilFetchPattern.FindStringSubmatch(err.Error()); m != nil {
			return nil, &UnresolvedReferenceError{Tag: tag, Name: m[1]}
		}
		return nil, NewEvaluationError(code, err)
	}
	return out, nil
}

// helperFunc exposes a helper as an expression function, so helpers can be
// called as name(x) inside larger expressions.
func (sc *Scope) helperFunc(name string, h Helper) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, NewHelperError(name, "expected 1 argument, got %d", len(params))
		}
		if params[0] == nil {
			return nil, NewHelperError(name, "argument is nil")
		}
		v, err := h(sc.hc, params[0])
		if err != nil {
			return nil, helperError(name, err)
		}
		return v, nil
	}
}

func helperError(name string, err error) error {
	switch err.(type) {
	case *HelperError, *StructuralError, *UnresolvedReferenceError:
		return err
	}
	return NewHelperError(name, "%v", err)
}

// toValue maps an expression result to a render value.
func (sc *Scope) toValue(out any) (render.Value, error) {
	switch v := out.(type) {
	case nil:
		return nil, nil
	case render.Value:
		return v, nil
	case *Table:
		return tableHelper(sc.hc, v)
	case Table:
		return tableHelper(sc.hc, &v)
	case string:
		if lines, ok := splitParagraphs(v); ok {
			return render.MultiLine{Lines: lines}, nil
		}
		return render.Scalar{Text: v}, nil
	case []string:
		return render.MultiLine{Lines: v}, nil
	case []any:
		lines := make([]string, len(v))
		for i, item := range v {
			lines[i] = formatScalar(item)
		}
		return render.MultiLine{Lines: lines}, nil
	}
	return render.Scalar{Text: formatScalar(out)}, nil
}

// formatScalar renders a value as text. Whole floats print without a
// fractional part.
func formatScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// splitParagraphs splits s on empty lines. Text containing CRLF line endings
// is split on "\r\n\r\n" only, other text on "\n\n". ok is false when s
// has no empty line.
func splitParagraphs(s string) (lines []string, ok bool) {
	sep := "\n\n"
	if strings.Contains(s, "\r\n") {
		sep = "\r\n\r\n"
	}
	if !strings.Contains(s, sep) {
		return nil, false
	}
	return strings.Split(s, sep), true
}
