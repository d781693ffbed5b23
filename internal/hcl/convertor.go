package hcl

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// toString converts an evaluated attribute into the flat string form the
// config model works with. Lists, sets and tuples become comma-joined lists so
// `epsilons = [5, 10]` and `epsilons = "5,10"` are equivalent.
func toString(val cty.Value) (string, error) {
	if val.IsNull() {
		return "", nil
	}
	if !val.IsWhollyKnown() {
		return "", fmt.Errorf("value is not known")
	}

	ty := val.Type()
	if ty.IsListType() || ty.IsSetType() || ty.IsTupleType() {
		parts := make([]string, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			s, err := scalarString(elem)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	}
	return scalarString(val)
}

func scalarString(val cty.Value) (string, error) {
	if val.IsNull() {
		return "", fmt.Errorf("null element")
	}
	converted, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("cannot convert %s to string: %w", val.Type().FriendlyName(), err)
	}
	return converted.AsString(), nil
}

// exprString is toString with number literals kept as written in src, so
// `epsilons = [5.0, 1e1]` yields "5.0,1e1" rather than the normalized "5,10".
// Computed values still go through toString.
func exprString(expr hcl.Expression, val cty.Value, src []byte) (string, error) {
	if val.IsNull() || !val.IsWhollyKnown() {
		return toString(val)
	}
	if lit, ok := numberLiteral(expr, src); ok {
		return lit, nil
	}

	tuple, ok := expr.(*hclsyntax.TupleConsExpr)
	if !ok || !val.Type().IsTupleType() || val.LengthInt() != len(tuple.Exprs) {
		return toString(val)
	}
	parts := make([]string, 0, len(tuple.Exprs))
	for i, elemExpr := range tuple.Exprs {
		if lit, ok := numberLiteral(elemExpr, src); ok {
			parts = append(parts, lit)
			continue
		}
		s, err := scalarString(val.Index(cty.NumberIntVal(int64(i))))
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ","), nil
}

// numberLiteral returns the source text of a number literal, optionally
// negated.
func numberLiteral(expr hcl.Expression, src []byte) (string, bool) {
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		if !e.Val.Type().Equals(cty.Number) {
			return "", false
		}
	case *hclsyntax.UnaryOpExpr:
		lit, ok := e.Val.(*hclsyntax.LiteralValueExpr)
		if e.Op != hclsyntax.OpNegate || !ok || !lit.Val.Type().Equals(cty.Number) {
			return "", false
		}
	default:
		return "", false
	}

	r := expr.Range()
	if r.Start.Byte < 0 || r.End.Byte > len(src) || r.Start.Byte >= r.End.Byte {
		return "", false
	}
	return strings.Join(strings.Fields(string(src[r.Start.Byte:r.End.Byte])), ""), true
}
