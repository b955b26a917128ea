// Package gorule is an embeddable rule-expression language for Go.
//
// A rule is a single boolean or arithmetic expression evaluated against a
// record, a nested key-value structure such as decoded JSON:
//
//	age >= required_age and not attribution.unassigned
//	provider.language.language_code == "en"
//
// Rules are compiled once into an immutable Rule and evaluated any number of
// times, concurrently, against different records.
//
// # Quick Start
//
//	rule, err := gorule.Compile("name.as_lower == 'hank'")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ok := rule.Matches(map[string]any{"name": "HANK"}) // true
//
//	// Named values shadow record attributes of the same name.
//	c := evaluator.NewContext(evaluator.WithValue("required_age", types.Integer(21)))
//	v, err := rule.Evaluate(record, c)
//
// # More Information
//
// For detailed documentation, see:
//   - Parser: github.com/sandrolain/gorule/pkg/parser
//   - Evaluator: github.com/sandrolain/gorule/pkg/evaluator
//   - Builtins: github.com/sandrolain/gorule/pkg/functions
//   - Types: github.com/sandrolain/gorule/pkg/types
package gorule

import (
	"context"
	"fmt"
	"io"
	"maps"

	"github.com/sandrolain/gorule/pkg/evaluator"
	"github.com/sandrolain/gorule/pkg/parser"
	"github.com/sandrolain/gorule/pkg/types"
)

// Version returns the current version of gorule.
func Version() string {
	return "v0.1.0-dev"
}

// Rule is a compiled rule. It is immutable and safe for concurrent use.
type Rule struct {
	expr     *types.Expression
	eval     *evaluator.Evaluator
	ctx      *evaluator.Context
	declared map[string]types.DataType
}

// Option configures Compile.
type Option func(*options)

type options struct {
	compile   []parser.CompileOption
	eval      []evaluator.EvalOption
	declared  map[string]types.DataType
	ctx       *evaluator.Context
	reduce    bool
	typeCheck bool
}

// WithMaxDepth limits the nesting of parenthesised groups.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.compile = append(o.compile, parser.WithMaxDepth(depth))
	}
}

// WithReduce folds constant subtrees at compile time.
func WithReduce(enabled bool) Option {
	return func(o *options) {
		o.reduce = enabled
	}
}

// WithContext sets the Context used when Evaluate is given none.
func WithContext(c *evaluator.Context) Option {
	return func(o *options) {
		o.ctx = c
	}
}

// WithDeclaredTypes declares symbol and attribute path types. They are
// enforced during evaluation and, with WithTypeCheck, at compile time.
// They also apply on top of a Context passed to Evaluate, winning over
// declarations of the same name.
func WithDeclaredTypes(decls map[string]types.DataType) Option {
	return func(o *options) {
		if o.declared == nil {
			o.declared = make(map[string]types.DataType, len(decls))
		}
		maps.Copy(o.declared, decls)
	}
}

// WithTypeCheck makes Compile fail when the static type check finds an
// operator whose operands can never be valid.
func WithTypeCheck(enabled bool) Option {
	return func(o *options) {
		o.typeCheck = enabled
	}
}

// WithEvalOptions configures the evaluator the Rule uses.
func WithEvalOptions(opts ...evaluator.EvalOption) Option {
	return func(o *options) {
		o.eval = append(o.eval, opts...)
	}
}

// Compile compiles rule text.
//
// Example:
//
//	rule, err := gorule.Compile("age >= 18", gorule.WithReduce(true))
//	if err != nil {
//	    var gerr *types.Error
//	    if errors.As(err, &gerr) {
//	        fmt.Printf("%s at line %d, column %d\n", gerr.Kind(), gerr.Line, gerr.Column)
//	    }
//	}
func Compile(text string, opts ...Option) (*Rule, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	expr, err := parser.Compile(text, o.compile...)
	if err != nil {
		return nil, err
	}
	if o.reduce {
		expr = evaluator.Reduce(expr)
	}

	c := o.ctx
	if c == nil {
		c = evaluator.NewContext()
	}
	if len(o.declared) > 0 {
		c = c.Derive(evaluator.WithDeclaredTypes(o.declared))
	}
	if o.typeCheck {
		if _, err := evaluator.Check(expr, c); err != nil {
			return nil, err
		}
	}

	return &Rule{
		expr: expr,
		eval:     evaluator.New(o.eval...),
		ctx:      c,
		declared: o.declared,
	}, nil
}

// MustCompile is like Compile but panics if the rule cannot be compiled.
// It simplifies safe initialization of global variables.
func MustCompile(text string, opts ...Option) *Rule {
	r, err := Compile(text, opts...)
	if err != nil {
		panic(fmt.Sprintf("gorule: Compile(%q): %v", text, err))
	}
	return r
}

// IsValid reports whether text parses. Nothing is evaluated.
func IsValid(text string) bool {
	return parser.IsValid(text)
}

// Eval compiles text and evaluates it against data in a single call.
// For repeated evaluations of the same rule, use Compile instead.
func Eval(text string, data map[string]any, opts ...Option) (types.Value, error) {
	r, err := Compile(text, opts...)
	if err != nil {
		return nil, err
	}
	return r.Evaluate(data, nil)
}

// Expression returns the compiled expression.
func (r *Rule) Expression() *types.Expression { return r.expr }

// Source returns the rule text.
func (r *Rule) Source() string { return r.expr.Source() }

// String renders the rule in canonical, fully parenthesised form.
func (r *Rule) String() string { return r.expr.Root().String() }

// References returns the symbols and attribute paths the rule reads.
func (r *Rule) References() []string { return r.expr.References() }

// Context returns the Context used when Evaluate is given none.
func (r *Rule) Context() *evaluator.Context { return r.ctx }

// Evaluate converts data into a record and evaluates the rule against it.
// A nil c means the Rule's own Context. A non-nil c replaces the values of
// that Context but keeps the types declared with WithDeclaredTypes.
func (r *Rule) Evaluate(data map[string]any, c *evaluator.Context) (types.Value, error) {
	record, err := types.NewRecord(data)
	if err != nil {
		return nil, err
	}
	return r.EvaluateRecord(record, c)
}

// context returns the Context an evaluation runs under: the Rule's own when
// c is nil, otherwise c with the Rule's declared types layered on.
func (r *Rule) context(c *evaluator.Context) *evaluator.Context {
	if c == nil {
		return r.ctx
	}
	if len(r.declared) > 0 {
		return c.Derive(evaluator.WithDeclaredTypes(r.declared))
	}
	return c
}

// EvaluateRecord evaluates the rule against an already converted record.
// Converting once with types.NewRecord pays off when a record is checked by
// many rules.
func (r *Rule) EvaluateRecord(record types.Nested, c *evaluator.Context) (types.Value, error) {
	c = r.context(c)
	return r.eval.Eval(r.expr, record, c)
}

// EvaluateBatch evaluates the rule against every record in parallel. See
// evaluator.Evaluator.EvalBatch.
func (r *Rule) EvaluateBatch(ctx context.Context, records []types.Nested, c *evaluator.Context) ([]evaluator.BatchResult, error) {
	c = r.context(c)
	return r.eval.EvalBatch(ctx, r.expr, records, c)
}

// EvaluateStream evaluates the rule against each JSON object read from in.
// See evaluator.Evaluator.EvalStream.
func (r *Rule) EvaluateStream(ctx context.Context, in io.Reader, c *evaluator.Context) (<-chan evaluator.StreamResult, error) {
	c = r.context(c)
	return r.eval.EvalStream(ctx, r.expr, in, c)
}

// Matches reports whether the rule is truthy for data under the Rule's own
// Context. It never fails: any error yields false.
func (r *Rule) Matches(data map[string]any) bool {
	v, err := r.Evaluate(data, nil)
	return err == nil && types.Truthy(v)
}

// Check runs the static type check against the Rule's Context and returns
// the inferred result type.
func (r *Rule) Check() (types.DataType, error) {
	return evaluator.Check(r.expr, r.ctx)
}
