package types

import (
	"fmt"
	"strings"
)

// TypeKind identifies the outer constructor of a DataType.
type TypeKind uint8

const (
	UndefinedKind TypeKind = iota
	ArrayKind
	BooleanKind
	DatetimeKind
	FloatKind
	FunctionKind
	MappingKind
	NullKind
	SetKind
	StringKind
	TimedeltaKind
)

var typeKindNames = [...]string{
	UndefinedKind: "undefined",
	ArrayKind:     "array",
	BooleanKind:   "boolean",
	DatetimeKind:  "datetime",
	FloatKind:     "float",
	FunctionKind:  "function",
	MappingKind:   "mapping",
	NullKind:      "null",
	SetKind:       "set",
	StringKind:    "string",
	TimedeltaKind: "timedelta",
}

// String returns the lowercase name of the kind.
func (k TypeKind) String() string {
	if int(k) < len(typeKindNames) {
		return typeKindNames[k]
	}
	return "unknown"
}

// DataType is the static classification of a value.
//
// Parametric kinds carry their element types: Array and Set an element,
// Mapping a key and a value, Function a [Signature]. The zero DataType is
// Undefined, which is compatible with every other type.
type DataType struct {
	kind TypeKind
	elem *DataType // array/set element, mapping value
	key  *DataType // mapping key
	sig  *Signature
}

// Signature describes a function type.
type Signature struct {
	Return  DataType
	Args    []DataType
	MinArgs int
}

// Scalar and unparameterised data types.
var (
	TypeUndefined = DataType{}
	TypeBoolean   = DataType{kind: BooleanKind}
	TypeDatetime  = DataType{kind: DatetimeKind}
	TypeFloat     = DataType{kind: FloatKind}
	TypeNull      = DataType{kind: NullKind}
	TypeString    = DataType{kind: StringKind}
	TypeTimedelta = DataType{kind: TimedeltaKind}
)

// ArrayOf returns the type of an ordered sequence of elem.
func ArrayOf(elem DataType) DataType {
	return DataType{kind: ArrayKind, elem: &elem}
}

// SetOf returns the type of an unordered collection of elem.
func SetOf(elem DataType) DataType {
	return DataType{kind: SetKind, elem: &elem}
}

// MappingOf returns the type of a key/value mapping.
func MappingOf(key, value DataType) DataType {
	return DataType{kind: MappingKind, key: &key, elem: &value}
}

// FunctionOf returns a function type. args is copied.
func FunctionOf(ret DataType, args []DataType, minArgs int) DataType {
	return DataType{kind: FunctionKind, sig: &Signature{
		Return:  ret,
		Args:    append([]DataType(nil), args...),
		MinArgs: minArgs,
	}}
}

// Kind returns the outer constructor of the type.
func (t DataType) Kind() TypeKind { return t.kind }

// Elem returns the element type of an array or set, or the value type of a
// mapping. It is Undefined for every other kind.
func (t DataType) Elem() DataType {
	if t.elem == nil {
		return TypeUndefined
	}
	return *t.elem
}

// Key returns the key type of a mapping, Undefined otherwise.
func (t DataType) Key() DataType {
	if t.key == nil {
		return TypeUndefined
	}
	return *t.key
}

// Signature returns the function signature, or nil for non-function types
// and for the bare "function" type.
func (t DataType) Signature() *Signature {
	return t.sig
}

// IsScalar reports whether values of this type can be evaluation results.
func (t DataType) IsScalar() bool {
	switch t.kind {
	case BooleanKind, FloatKind, StringKind:
		return true
	default:
		return false
	}
}

// Equal reports structural equality.
func (t DataType) Equal(o DataType) bool {
	if t.kind != o.kind {
		return false
	}
	switch t.kind {
	case ArrayKind, SetKind:
		return t.Elem().Equal(o.Elem())
	case MappingKind:
		return t.Key().Equal(o.Key()) && t.Elem().Equal(o.Elem())
	case FunctionKind:
		return t.sig.equal(o.sig)
	default:
		return true
	}
}

func (s *Signature) equal(o *Signature) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.MinArgs != o.MinArgs || len(s.Args) != len(o.Args) || !s.Return.Equal(o.Return) {
		return false
	}
	for i := range s.Args {
		if !s.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// String renders the type, e.g. "array<string>" or "function(string) string".
func (t DataType) String() string {
	switch t.kind {
	case ArrayKind, SetKind:
		return fmt.Sprintf("%s<%s>", t.kind, t.Elem())
	case MappingKind:
		return fmt.Sprintf("mapping<%s, %s>", t.Key(), t.Elem())
	case FunctionKind:
		if t.sig == nil {
			return "function"
		}
		args := make([]string, len(t.sig.Args))
		for i, a := range t.sig.Args {
			args[i] = a.String()
		}
		return fmt.Sprintf("function(%s) %s", strings.Join(args, ", "), t.sig.Return)
	default:
		return t.kind.String()
	}
}

// IsCompatible reports whether a value of type a may stand where type b is
// expected. Undefined on either side is always compatible; containers are
// compared element-wise; function types must match exactly.
func IsCompatible(a, b DataType) bool {
	if a.kind == UndefinedKind || b.kind == UndefinedKind {
		return true
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case ArrayKind, SetKind:
		return IsCompatible(a.Elem(), b.Elem())
	case MappingKind:
		return IsCompatible(a.Key(), b.Key()) && IsCompatible(a.Elem(), b.Elem())
	case FunctionKind:
		return a.sig.equal(b.sig)
	default:
		return true
	}
}

// FromValue infers the data type of a scalar. Integers and floats share the
// Float type. A nil value is Undefined.
func FromValue(v Value) DataType {
	switch v.(type) {
	case Boolean:
		return TypeBoolean
	case Float, Integer:
		return TypeFloat
	case String:
		return TypeString
	default:
		return TypeUndefined
	}
}

// ParseDataType parses a type name as written in configuration files:
// a kind name, optionally parameterised as array<T>, set<T> or mapping<K, V>.
// Names are case-insensitive.
func ParseDataType(s string) (DataType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	name, params, hasParams := strings.Cut(s, "<")
	name = strings.TrimSpace(name)
	if hasParams {
		if !strings.HasSuffix(params, ">") {
			return TypeUndefined, fmt.Errorf("malformed data type %q", s)
		}
		params = params[:len(params)-1]
	}

	var args []DataType
	if hasParams {
		for _, p := range splitTypeParams(params) {
			dt, err := ParseDataType(p)
			if err != nil {
				return TypeUndefined, err
			}
			args = append(args, dt)
		}
	}

	switch name {
	case "array", "list":
		return parametric(s, args, 1, func(a []DataType) DataType { return ArrayOf(a[0]) })
	case "set":
		return parametric(s, args, 1, func(a []DataType) DataType { return SetOf(a[0]) })
	case "mapping", "map", "dict":
		return parametric(s, args, 2, func(a []DataType) DataType { return MappingOf(a[0], a[1]) })
	}
	if hasParams {
		return TypeUndefined, fmt.Errorf("data type %q takes no parameters", name)
	}
	switch name {
	case "boolean", "bool":
		return TypeBoolean, nil
	case "datetime":
		return TypeDatetime, nil
	case "float", "integer", "int", "number":
		return TypeFloat, nil
	case "function":
		return DataType{kind: FunctionKind}, nil
	case "null":
		return TypeNull, nil
	case "string", "str":
		return TypeString, nil
	case "timedelta":
		return TypeTimedelta, nil
	case "undefined", "any":
		return TypeUndefined, nil
	default:
		return TypeUndefined, fmt.Errorf("unknown data type %q", name)
	}
}

func parametric(s string, args []DataType, n int, build func([]DataType) DataType) (DataType, error) {
	switch len(args) {
	case 0:
		args = make([]DataType, n)
	case n:
	default:
		return TypeUndefined, fmt.Errorf("data type %q expects %d parameter(s)", s, n)
	}
	return build(args), nil
}

// splitTypeParams splits on commas that are not nested inside <...>.
func splitTypeParams(s string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
