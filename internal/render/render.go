// Package render fills named templates with typed records and writes the
// results. Templates use the HCL template language (`${name}` interpolation
// and `%{ ... }` directives); a record is any Go value gocty can describe,
// normally one of the structs in records.go.
//
// Every template is parsed once when the Renderer is created, and its set of
// referenced placeholders is known up front, so Check can reject a record
// before anything is rendered or written.
package render

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/refinery/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Extension is the file suffix that marks a template; the identifier is the
// file's path relative to the template root with the suffix removed.
const Extension = ".tmpl"

var (
	// ErrTemplateNotFound is returned when an identifier does not resolve to
	// a readable template.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrMissingPlaceholder is returned when a template references a key the
	// record does not provide.
	ErrMissingPlaceholder = errors.New("missing placeholder")
)

//go:embed templates/*.tmpl
var defaults embed.FS

// Renderer holds a parsed template set.
type Renderer struct {
	templates map[string]*template
}

type template struct {
	id   string
	expr hclsyntax.Expression
	// vars is the sorted set of root variable names the template references.
	vars []string
}

// New loads every template under dir. An empty dir selects the built-in
// default set.
func New(dir string) (*Renderer, error) {
	if dir == "" {
		sub, err := fs.Sub(defaults, "templates")
		if err != nil {
			return nil, err
		}
		return NewFromFS(sub)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("template directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template directory %s is not a directory", dir)
	}
	return NewFromFS(os.DirFS(dir))
}

// NewFromFS loads every template in fsys.
func NewFromFS(fsys fs.FS) (*Renderer, error) {
	files, err := fsutil.FindFilesByExtension(fsys, ".", Extension)
	if err != nil {
		return nil, fmt.Errorf("scanning templates: %w", err)
	}

	r := &Renderer{templates: make(map[string]*template, len(files))}
	for _, name := range files {
		src, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", name, err)
		}
		id := strings.TrimSuffix(path.Clean(name), Extension)
		tmpl, err := parse(id, src)
		if err != nil {
			return nil, err
		}
		r.templates[id] = tmpl
	}
	return r, nil
}

func parse(id string, src []byte) (*template, error) {
	expr, diags := hclsyntax.ParseTemplate(src, id+Extension, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing template %s: %w", id, diags)
	}

	seen := make(map[string]bool)
	for _, traversal := range expr.Variables() {
		seen[traversal.RootName()] = true
	}
	vars := make([]string, 0, len(seen))
	for v := range seen {
		vars = append(vars, v)
	}
	sort.Strings(vars)

	return &template{id: id, expr: expr, vars: vars}, nil
}

// IDs returns the identifiers of all loaded templates, sorted.
func (r *Renderer) IDs() []string {
	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Check verifies that record supplies every placeholder the template uses.
func (r *Renderer) Check(id string, record any) error {
	tmpl, err := r.lookup(id)
	if err != nil {
		return err
	}
	vars, err := toVariables(record)
	if err != nil {
		return fmt.Errorf("template %s: %w", id, err)
	}
	return tmpl.check(vars)
}

// Render fills the template with record. Rendering is pure: the same record
// always produces the same bytes.
func (r *Renderer) Render(id string, record any) ([]byte, error) {
	tmpl, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	vars, err := toVariables(record)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", id, err)
	}
	if err := tmpl.check(vars); err != nil {
		return nil, err
	}

	evalCtx := &hcl.EvalContext{Variables: vars, Functions: functions()}
	val, diags := tmpl.expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("rendering template %s: %w", id, diags)
	}
	if val.IsNull() || !val.IsKnown() || !val.Type().Equals(cty.String) {
		return nil, fmt.Errorf("rendering template %s: result is not a string", id)
	}
	return []byte(val.AsString()), nil
}

// RenderTo renders the template and writes it to dst, replacing any existing
// file. It returns dst so the caller can register the artifact.
func (r *Renderer) RenderTo(id string, record any, dst string) (string, error) {
	data, err := r.Render(id, record)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Clean(dst), data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", dst, err)
	}
	return dst, nil
}

func (r *Renderer) lookup(id string) (*template, error) {
	tmpl, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}
	return tmpl, nil
}

func (t *template) check(vars map[string]cty.Value) error {
	var missing []string
	for _, v := range t.vars {
		if _, ok := vars[v]; !ok {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: template %s references %s", ErrMissingPlaceholder, t.id, strings.Join(missing, ", "))
	}
	return nil
}

// toVariables converts a record into the variable map of an evaluation context.
func toVariables(record any) (map[string]cty.Value, error) {
	ty, err := gocty.ImpliedType(record)
	if err != nil {
		return nil, fmt.Errorf("unable to infer record type: %w", err)
	}
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("record must be a struct or map, got %s", ty.FriendlyName())
	}
	val, err := gocty.ToCtyValue(record, ty)
	if err != nil {
		return nil, fmt.Errorf("converting record: %w", err)
	}
	vars := map[string]cty.Value{}
	if !val.IsNull() {
		for k, v := range val.AsValueMap() {
			vars[k] = v
		}
	}
	return vars, nil
}

func functions() map[string]function.Function {
	return map[string]function.Function{
		"format":    stdlib.FormatFunc,
		"join":      stdlib.JoinFunc,
		"lower":     stdlib.LowerFunc,
		"upper":     stdlib.UpperFunc,
		"trimspace": stdlib.TrimSpaceFunc,
	}
}
