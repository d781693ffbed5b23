package hcl

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/refinery/internal/config"
	"github.com/vk/refinery/internal/ctxlog"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot decodes the top level of a configuration file.
type fileRoot struct {
	Simulations []*simulationBlock `hcl:"simulation,block"`
}

type simulationBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Extensions implements config.Loader.
func (l *Loader) Extensions() []string {
	return []string{".hcl"}
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, path string) (*config.Simulation, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to parse HCL file %s: %w", config.ErrConfiguration, path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to decode HCL file %s: %w", config.ErrConfiguration, path, diags)
	}
	if len(root.Simulations) != 1 {
		return nil, fmt.Errorf("%w: %s must contain exactly one simulation block, found %d", config.ErrConfiguration, path, len(root.Simulations))
	}

	fields, err := l.extractFields(root.Simulations[0].Body, file.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", config.ErrConfiguration, path, err)
	}
	logger.Debug("HCL simulation block evaluated.", "attributes", len(fields))

	return config.Decode(path, fields)
}

// extractFields evaluates every attribute of the simulation block and reduces
// it to its string form. src is the file content the body was parsed from.
func (l *Loader) extractFields(body hcl.Body, src []byte) (config.Fields, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	evalCtx := &hcl.EvalContext{Functions: functions()}
	fields := make(config.Fields, len(attrs))
	for _, name := range names {
		expr := attrs[name].Expr
		val, diags := expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, diags
		}
		s, err := exprString(expr, val, src)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		fields[name] = s
	}
	return fields, nil
}

// functions is the small function library available inside configuration
// expressions, e.g. building a sweep list with range and format.
func functions() map[string]function.Function {
	return map[string]function.Function{
		"format": stdlib.FormatFunc,
		"join":   stdlib.JoinFunc,
		"range":  stdlib.RangeFunc,
		"upper":  stdlib.UpperFunc,
		"lower":  stdlib.LowerFunc,
	}
}
