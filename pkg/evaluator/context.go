package evaluator

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/sandrolain/gorule/internal/suggest"
	"github.com/sandrolain/gorule/pkg/functions"
	"github.com/sandrolain/gorule/pkg/types"
)

// Assignment binds a name to a value. Its type is inferred from the value
// when the assignment is created and never changes.
type Assignment struct {
	name      string
	value     types.Value
	valueType types.DataType
}

// NewAssignment creates an assignment and infers its type.
func NewAssignment(name string, value types.Value) Assignment {
	return Assignment{
		name:      name,
		value:     value,
		valueType: types.FromValue(value),
	}
}

// Name returns the bound name.
func (a Assignment) Name() string { return a.name }

// Value returns the bound value.
func (a Assignment) Value() types.Value { return a.value }

// Type returns the type inferred at construction.
func (a Assignment) Type() types.DataType { return a.valueType }

// Context holds the named values and declared types a rule is evaluated
// with. Assignments shadow record attributes of the same name.
//
// A Context is immutable once built and may be shared by any number of
// concurrent evaluations. To change bindings, derive a new Context.
type Context struct {
	assignments map[string]Assignment
	declared    map[string]types.DataType
}

// ContextOption configures a Context under construction.
type ContextOption func(*Context)

// WithValue binds name to v.
func WithValue(name string, v types.Value) ContextOption {
	return func(c *Context) {
		c.assignments[name] = NewAssignment(name, v)
	}
}

// WithValues binds every entry of values.
func WithValues(values map[string]types.Value) ContextOption {
	return func(c *Context) {
		for name, v := range values {
			c.assignments[name] = NewAssignment(name, v)
		}
	}
}

// WithDeclaredType declares the expected type of a symbol or dotted
// attribute path. Resolved values that disagree fail with a type error.
func WithDeclaredType(name string, t types.DataType) ContextOption {
	return func(c *Context) {
		c.declared[name] = t
	}
}

// WithDeclaredTypes declares several types at once.
func WithDeclaredTypes(decls map[string]types.DataType) ContextOption {
	return func(c *Context) {
		maps.Copy(c.declared, decls)
	}
}

// NewContext creates a Context.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{
		assignments: make(map[string]Assignment),
		declared:    make(map[string]types.DataType),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// emptyContext is used when an evaluation is given no Context.
var emptyContext = NewContext()

// Derive returns a new Context holding c's bindings plus opts. c is left
// unchanged.
func (c *Context) Derive(opts ...ContextOption) *Context {
	d := &Context{
		assignments: maps.Clone(c.assignments),
		declared:    maps.Clone(c.declared),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Lookup returns the value bound to name.
func (c *Context) Lookup(name string) (types.Value, bool) {
	a, ok := c.assignments[name]
	return a.value, ok
}

// Assignment returns the assignment bound to name.
func (c *Context) Assignment(name string) (Assignment, bool) {
	a, ok := c.assignments[name]
	return a, ok
}

// Names returns the bound names in sorted order.
func (c *Context) Names() []string {
	return slices.Sorted(maps.Keys(c.assignments))
}

// ResolveType returns the static type of name: its declared type, else the
// type of its assignment, else Undefined.
func (c *Context) ResolveType(name string) types.DataType {
	if t, ok := c.declared[name]; ok {
		return t
	}
	if a, ok := c.assignments[name]; ok {
		return a.valueType
	}
	return types.TypeUndefined
}

// Resolve resolves a bare symbol. Context assignments are consulted first,
// then the top-level keys of record.
func (c *Context) Resolve(name string, record types.Nested) (types.Value, error) {
	if a, ok := c.assignments[name]; ok {
		return c.checkSymbol(name, a.value)
	}

	node, ok := record[name]
	if !ok {
		return nil, types.NewSymbolResolutionError(name, "", suggest.Closest(name, c.candidates(record)))
	}
	leaf, ok := node.(types.Leaf)
	if !ok {
		err := types.NewSymbolResolutionError(name, "record", "")
		err.Message = fmt.Sprintf("symbol '%s' does not resolve to a scalar (is: %s)", name, types.FromNode(node))
		return nil, err
	}
	return c.checkSymbol(name, leaf.Value)
}

// ResolveAttribute resolves a dotted path. When the last segment names a
// builtin, the rest of the path is resolved first and the builtin applied
// to the result; this nests, so a.as_lower.length works. A single segment
// resolves like a symbol. Everything else traverses the record.
func (c *Context) ResolveAttribute(path []string, record types.Nested) (types.Value, error) {
	switch len(path) {
	case 0:
		return nil, types.NewEvaluationError(types.ErrEvaluation, "empty attribute path")
	case 1:
		return c.Resolve(path[0], record)
	}

	last := path[len(path)-1]
	if b, ok := functions.Lookup(last); ok {
		v, err := c.ResolveAttribute(path[:len(path)-1], record)
		if err != nil {
			return nil, err
		}
		return b.Call(v)
	}

	return c.traverse(path, record)
}

// traverse follows path through the record tree down to a scalar leaf.
func (c *Context) traverse(path []string, record types.Nested) (types.Value, error) {
	var cur types.Node = record
	for i, seg := range path {
		scope := strings.Join(path[:i], ".")
		switch n := cur.(type) {
		case types.Nested:
			child, ok := n[seg]
			if !ok {
				candidates := n.Keys()
				if i == 0 {
					scope = "record"
					candidates = c.candidates(record)
				}
				return nil, types.NewAttributeResolutionError(seg, scope, suggest.Closest(seg, candidates))
			}
			cur = child
		case types.Leaf:
			err := types.NewAttributeResolutionError(seg, scope, "")
			err.Message = fmt.Sprintf("cannot look up attribute '%s' on %s value '%s'", seg, n.Value.Kind(), scope)
			return nil, err
		case types.Opaque:
			return nil, types.NewLookupError(n.Type.String(), seg)
		}
	}

	full := strings.Join(path, ".")
	object := strings.Join(path[:len(path)-1], ".")
	leaf, ok := cur.(types.Leaf)
	if !ok {
		err := types.NewAttributeTypeError(full, object, types.FromNode(cur), c.ResolveType(full))
		err.Message = fmt.Sprintf("attribute '%s' does not resolve to a scalar (is: %s)", full, types.FromNode(cur))
		err.Details.Expected = "scalar"
		return nil, err
	}
	if want, ok := c.declared[full]; ok {
		if is := types.FromValue(leaf.Value); !types.IsCompatible(is, want) {
			return nil, types.NewAttributeTypeError(full, object, is, want)
		}
	}
	return leaf.Value, nil
}

func (c *Context) checkSymbol(name string, v types.Value) (types.Value, error) {
	if want, ok := c.declared[name]; ok {
		if is := types.FromValue(v); !types.IsCompatible(is, want) {
			return nil, types.NewSymbolTypeError(name, is, want)
		}
	}
	return v, nil
}

// candidates lists the names a bare symbol could have meant.
func (c *Context) candidates(record types.Nested) []string {
	names := c.Names()
	for _, k := range record.Keys() {
		if _, shadowed := c.assignments[k]; !shadowed {
			names = append(names, k)
		}
	}
	return names
}

// String returns a string representation of the context.
func (c *Context) String() string {
	return fmt.Sprintf("Context{assignments=%d, declared=%d}", len(c.assignments), len(c.declared))
}
