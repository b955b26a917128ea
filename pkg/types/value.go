package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// ValueKind identifies the variant held by a Value.
type ValueKind uint8

const (
	KindBoolean ValueKind = iota + 1
	KindFloat
	KindInteger
	KindString
)

// String returns the lowercase name of the kind.
func (k ValueKind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindFloat:
		return "float"
	case KindInteger:
		return "integer"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is a scalar produced by evaluating an expression.
//
// The set of implementations is closed: Boolean, Float, Integer and String.
// Containers are never evaluation results; nested host data is traversed
// through [Node] values instead.
type Value interface {
	// Kind reports which scalar variant the value is.
	Kind() ValueKind
	// String renders the value the way it would be written in a rule.
	String() string
	// Interface returns the value as a native Go scalar.
	Interface() any

	isValue()
}

// Boolean is a true/false value.
type Boolean bool

// Float is a 64-bit floating point value.
type Float float64

// Integer is a signed 64-bit integer value.
type Integer int64

// String is a UTF-8 text value.
type String string

func (Boolean) isValue() {}
func (Float) isValue()   {}
func (Integer) isValue() {}
func (String) isValue()  {}

func (Boolean) Kind() ValueKind { return KindBoolean }
func (Float) Kind() ValueKind   { return KindFloat }
func (Integer) Kind() ValueKind { return KindInteger }
func (String) Kind() ValueKind  { return KindString }

func (b Boolean) String() string { return strconv.FormatBool(bool(b)) }
func (i Integer) String() string { return strconv.FormatInt(int64(i), 10) }
func (s String) String() string  { return quote(string(s)) }

// String renders f so that it lexes back as a Float: integral values keep a
// ".0" suffix. Infinities and NaN have no literal form.
func (f Float) String() string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 64)
	if math.IsInf(float64(f), 0) || math.IsNaN(float64(f)) || strings.ContainsAny(s, ".e") {
		return s
	}
	return s + ".0"
}

func (b Boolean) Interface() any { return bool(b) }
func (f Float) Interface() any   { return float64(f) }
func (i Integer) Interface() any { return int64(i) }
func (s String) Interface() any  { return string(s) }

// quote renders s as a double-quoted rule literal, using only the escapes
// the lexer understands. Invalid UTF-8 becomes U+FFFD.
func quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		default:
			switch {
			case r == utf8.RuneError || unicode.IsPrint(r):
				sb.WriteRune(r)
			case r > 0xFFFF:
				r1, r2 := utf16.EncodeRune(r)
				fmt.Fprintf(&sb, `\u%04x\u%04x`, r1, r2)
			default:
				fmt.Fprintf(&sb, `\u%04x`, r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// Truthy coerces a value to a boolean: false, 0, 0.0 and "" are false,
// everything else is true. A nil value is false.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case Boolean:
		return bool(v)
	case Float:
		return v != 0
	case Integer:
		return v != 0
	case String:
		return v != ""
	default:
		return false
	}
}

// ValueOf converts a native Go scalar into a Value.
// It reports false for non-scalar input and for unsigned integers that do
// not fit into an int64.
func ValueOf(x any) (Value, bool) {
	switch x := x.(type) {
	case Value:
		return x, true
	case bool:
		return Boolean(x), true
	case string:
		return String(x), true
	case int:
		return Integer(x), true
	case int8:
		return Integer(x), true
	case int16:
		return Integer(x), true
	case int32:
		return Integer(x), true
	case int64:
		return Integer(x), true
	case uint:
		if uint64(x) > math.MaxInt64 {
			return nil, false
		}
		return Integer(x), true
	case uint8:
		return Integer(x), true
	case uint16:
		return Integer(x), true
	case uint32:
		return Integer(x), true
	case uint64:
		if x > math.MaxInt64 {
			return nil, false
		}
		return Integer(x), true
	case float32:
		return Float(x), true
	case float64:
		return Float(x), true
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Integer(i), true
		}
		if f, err := x.Float64(); err == nil {
			return Float(f), true
		}
		return nil, false
	default:
		return nil, false
	}
}
