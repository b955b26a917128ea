package types

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"time"
)

// Node is one element of a record tree built from host data.
//
// It is either a [Leaf] holding a scalar, a [Nested] mapping, or an [Opaque]
// placeholder for host values that exist but have no scalar form. Nodes are
// only consumed by attribute resolution, never produced by evaluation.
type Node interface {
	isNode()
}

// Leaf holds a scalar value.
type Leaf struct {
	Value Value
}

// Nested maps attribute names to child nodes. A record is a Nested node.
type Nested map[string]Node

// Opaque stands for a non-scalar host value (null, list, set, datetime...).
// Only its type is retained.
type Opaque struct {
	Type DataType
}

func (Leaf) isNode()   {}
func (Nested) isNode() {}
func (Opaque) isNode() {}

// Get returns the child node stored under key.
func (n Nested) Get(key string) (Node, bool) {
	child, ok := n[key]
	return child, ok
}

// Keys returns the attribute names in sorted order.
func (n Nested) Keys() []string {
	return slices.Sorted(maps.Keys(n))
}

// FromNode infers the data type of a record node.
func FromNode(n Node) DataType {
	switch n := n.(type) {
	case Leaf:
		return FromValue(n.Value)
	case Nested:
		var elem DataType
		for i, k := range n.Keys() {
			t := FromNode(n[k])
			if i == 0 {
				elem = t
			} else if !elem.Equal(t) {
				elem = TypeUndefined
				break
			}
		}
		return MappingOf(TypeString, elem)
	case Opaque:
		return n.Type
	default:
		return TypeUndefined
	}
}

// NewRecord converts host data into a record tree. Conversion happens once,
// at the boundary; the result is read-only for the engine.
func NewRecord(data map[string]any) (Nested, error) {
	if data == nil {
		return Nested{}, nil
	}
	return newNested(reflect.ValueOf(data), "")
}

// NewNode converts a single host value into a record node.
func NewNode(x any) (Node, error) {
	return newNode(x, "")
}

func newNode(x any, path string) (Node, error) {
	switch x := x.(type) {
	case nil:
		return Opaque{Type: TypeNull}, nil
	case Node:
		return x, nil
	case time.Time:
		return Opaque{Type: TypeDatetime}, nil
	case time.Duration:
		return Opaque{Type: TypeTimedelta}, nil
	case map[string]any:
		return newNested(reflect.ValueOf(x), path)
	}

	if v, ok := ValueOf(x); ok {
		return Leaf{Value: v}, nil
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return Opaque{Type: TypeNull}, nil
		}
		return newNode(rv.Elem().Interface(), path)
	case reflect.Slice, reflect.Array:
		elem, err := elementType(rv, path)
		if err != nil {
			return nil, err
		}
		return Opaque{Type: ArrayOf(elem)}, nil
	case reflect.Map:
		if rv.Type().Elem().Size() == 0 {
			return Opaque{Type: SetOf(TypeUndefined)}, nil
		}
		return newNested(rv, path)
	case reflect.Func:
		return Opaque{Type: DataType{kind: FunctionKind}}, nil
	}

	return nil, NewEvaluationError(ErrUnsupportedValue,
		fmt.Sprintf("unsupported value of type %T at '%s'", x, path))
}

func newNested(rv reflect.Value, path string) (Nested, error) {
	out := make(Nested, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key := fmt.Sprint(iter.Key().Interface())
		child, err := newNode(iter.Value().Interface(), joinPath(path, key))
		if err != nil {
			return nil, err
		}
		out[key] = child
	}
	return out, nil
}

// elementType returns the common type of all elements, or Undefined when
// they disagree or the sequence is empty.
func elementType(rv reflect.Value, path string) (DataType, error) {
	var elem DataType
	for i := 0; i < rv.Len(); i++ {
		child, err := newNode(rv.Index(i).Interface(), fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return TypeUndefined, err
		}
		t := FromNode(child)
		if i == 0 {
			elem = t
		} else if !elem.Equal(t) {
			return TypeUndefined, nil
		}
	}
	return elem, nil
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
