// Package functions holds the registry of builtin methods.
//
// A builtin is a pure function of one scalar value. It is invoked as the
// last segment of an attribute path:
//
//	name.as_lower == "hank"
//	provider.language.language_code == "en"
//
// The registry is built once, on first use, and is read-only afterwards; it
// is safe for concurrent use without locking. New builtins are added by
// extending the table in this package, not at run time.
package functions

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/sandrolain/gorule/internal/suggest"
	"github.com/sandrolain/gorule/pkg/types"
)

// Impl is the implementation of a builtin.
type Impl func(v types.Value) (types.Value, error)

// Builtin describes a registered builtin method.
type Builtin struct {
	// Name is the method name as written after the final dot.
	Name string
	// Signature is the function type of the builtin.
	Signature types.DataType
	// Impl is the implementation.
	Impl Impl
}

// ArgType returns the declared type of the builtin's input.
func (b *Builtin) ArgType() types.DataType {
	if sig := b.Signature.Signature(); sig != nil && len(sig.Args) > 0 {
		return sig.Args[0]
	}
	return types.TypeUndefined
}

// ReturnType returns the declared type of the builtin's result.
func (b *Builtin) ReturnType() types.DataType {
	if sig := b.Signature.Signature(); sig != nil {
		return sig.Return
	}
	return types.TypeUndefined
}

// Call applies the builtin to v.
func (b *Builtin) Call(v types.Value) (types.Value, error) {
	return b.Impl(v)
}

var (
	registry     map[string]*Builtin
	registryOnce sync.Once
)

// initRegistry initializes the builtin registry.
func initRegistry() {
	registryOnce.Do(func() {
		registry = make(map[string]*Builtin, len(builtinTable))
		for _, b := range builtinTable {
			registry[b.Name] = b
		}
	})
}

// Lookup returns the builtin registered under name.
func Lookup(name string) (*Builtin, bool) {
	initRegistry()
	b, ok := registry[name]
	return b, ok
}

// IsBuiltin reports whether name is a registered builtin.
func IsBuiltin(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// Get is like Lookup but returns a SymbolResolutionError for unknown names.
func Get(name string) (*Builtin, error) {
	if b, ok := Lookup(name); ok {
		return b, nil
	}
	err := types.NewSymbolResolutionError(name, "builtins", suggest.Closest(name, Names()))
	err.Message = fmt.Sprintf("builtin method %s not found", name)
	return nil, err
}

// Names returns the registered builtin names in sorted order.
func Names() []string {
	initRegistry()
	return slices.Sorted(maps.Keys(registry))
}
