// Package filter selects deltas with expr-lang boolean expressions.
package filter

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ccollicutt/logplay/pkg/parser"
)

// Filter is a compiled delta predicate.
type Filter struct {
	source  string
	program *vm.Program
}

// Compile compiles expression. The delta's top-level fields are available as variables.
func Compile(expression string) (*Filter, error) {
	program, err := expr.Compile(expression,
		expr.Env(map[string]any{}),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("compiling filter %q: %w", expression, err)
	}
	return &Filter{source: expression, program: program}, nil
}

// Match reports whether delta satisfies the filter. A nil filter matches everything.
func (f *Filter) Match(delta parser.Delta) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, err := expr.Run(f.program, map[string]any(delta))
	if err != nil {
		return false, fmt.Errorf("evaluating filter %q: %w", f.source, err)
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("filter %q returned %T, want bool", f.source, out)
	}
	return matched, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}
