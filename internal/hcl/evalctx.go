package hcl

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// newEvalContext builds the evaluation context shared by every manifest
// file. The env object exposes the given KEY=VALUE pairs.
func newEvalContext(environ []string) *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" || !hclIdentifier(k) {
			continue
		}
		vars[k] = cty.StringVal(v)
	}

	env := cty.EmptyObjectVal
	if len(vars) > 0 {
		env = cty.ObjectVal(vars)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
	}
}

// hclIdentifier reports whether s can be used as an attribute name in a
// traversal such as env.NAME.
func hclIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '-'):
		default:
			return false
		}
	}
	return true
}

// parallelismValue evaluates the parallelism attribute. It accepts a whole
// number or a string and returns the directive as a string; a null value
// yields "".
func parallelismValue(expr hcl.Expression, evalCtx *hcl.EvalContext) (string, error) {
	if expr == nil {
		return "", nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", diags
	}
	if val.IsNull() {
		return "", nil
	}
	if !val.IsWhollyKnown() {
		return "", fmt.Errorf("parallelism must be known at load time")
	}

	switch val.Type() {
	case cty.String:
		return strings.TrimSpace(val.AsString()), nil
	case cty.Number:
		bf := val.AsBigFloat()
		if !bf.IsInt() {
			return "", fmt.Errorf("parallelism must be a whole number, got %s", bf.Text('g', -1))
		}
		n, _ := bf.Int(new(big.Int))
		return n.String(), nil
	default:
		return "", fmt.Errorf("parallelism must be a number or a string, got %s", val.Type().FriendlyName())
	}
}
