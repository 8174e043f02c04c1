// Package filter selects iiko records with expr-lang expressions such as
//
//	Type == "STORE" and like(Name, "kitchen")
//
// Every record exposes a flat field map (see iiko.Supplier.Fields and friends)
// whose keys become variables of the expression.
package filter

import (
	"fmt"
	"maps"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Record is anything that can be matched by a filter
type Record interface {
	Fields() map[string]any
}

// Filter is a compiled expression, safe for concurrent use
type Filter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

// Option configures a Compiler
type Option func(*Compiler)

// WithCache keeps up to size compiled expressions
func WithCache(size int) Option {
	return func(c *Compiler) {
		if size > 0 {
			c.cache = newProgramCache(size)
		}
	}
}

// WithFunctions adds helper functions available to expressions
func WithFunctions(funcs map[string]any) Option {
	return func(c *Compiler) {
		maps.Copy(c.helpers, funcs)
	}
}

// Compiler turns expressions into Filters
type Compiler struct {
	helpers map[string]any
	cache   *programCache
}

// NewCompiler creates a compiler with the default string helpers
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{helpers: helperFunctions()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile compiles an expression that must evaluate to a boolean
func (c *Compiler) Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{Expression: expression, Reason: "empty expression"}
	}

	if c.cache != nil {
		if f, ok := c.cache.get(expression); ok {
			return f, nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(c.helpers),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	f := &Filter{expression: expression, program: program, helpers: c.helpers}
	if c.cache != nil {
		c.cache.put(expression, f)
	}
	return f, nil
}

// Cached returns the number of cached programs
func (c *Compiler) Cached() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.len()
}

// Expression returns the source expression
func (f *Filter) Expression() string {
	return f.expression
}

// Match evaluates the filter against one record
func (f *Filter) Match(r Record) (bool, error) {
	fields := r.Fields()
	env := make(map[string]any, len(f.helpers)+len(fields))
	maps.Copy(env, f.helpers)
	maps.Copy(env, fields)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, &EvaluationError{Expression: f.expression, Record: describe(fields), Err: err}
	}
	// undefined variables evaluate to nil even under AsBool
	matched, ok := result.(bool)
	if !ok {
		return false, &EvaluationError{
			Expression: f.expression,
			Record:     describe(fields),
			Err:        fmt.Errorf("expression returned %T, not bool", result),
		}
	}
	return matched, nil
}

// Apply returns the records matched by f. A nil filter matches everything.
func Apply[T Record](f *Filter, records []T) ([]T, error) {
	if f == nil {
		return records, nil
	}

	matched := make([]T, 0, len(records))
	for _, r := range records {
		ok, err := f.Match(r)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

// Resolve picks the filter for a command: an explicit expression wins over a
// named preset, and neither yields a nil filter.
func (c *Compiler) Resolve(expression, preset string, presets map[string]string) (*Filter, error) {
	if expression == "" && preset != "" {
		var ok bool
		if expression, ok = presets[preset]; !ok {
			return nil, fmt.Errorf("unknown filter preset: %s", preset)
		}
	}
	if expression == "" {
		return nil, nil
	}
	return c.Compile(expression)
}

func describe(fields map[string]any) string {
	for _, key := range []string{"Name", "Code", "ID"} {
		if v, ok := fields[key]; ok && v != "" {
			return fmt.Sprintf("%s=%v", key, v)
		}
	}
	return "record"
}

// helperFunctions are case-insensitive variants of the contains, startsWith
// and endsWith operators; the operator names themselves are reserved by expr.
func helperFunctions() map[string]any {
	return map[string]any{
		"like": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"begins": func(str, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
		},
		"ends": func(str, suffix string) bool {
			return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
		},
		"blank": func(str string) bool {
			return strings.TrimSpace(str) == ""
		},
	}
}
