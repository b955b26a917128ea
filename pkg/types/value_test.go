package types_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/sandrolain/gorule/pkg/types"
)

func TestTruthy(t *testing.T) {
	tests := []struct {
		name  string
		value types.Value
		want  bool
	}{
		{"false", types.Boolean(false), false},
		{"true", types.Boolean(true), true},
		{"zero float", types.Float(0), false},
		{"nonzero float", types.Float(0.1), true},
		{"nan", types.Float(math.NaN()), true},
		{"zero integer", types.Integer(0), false},
		{"negative integer", types.Integer(-1), true},
		{"empty string", types.String(""), false},
		{"string", types.String("x"), true},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := types.Truthy(tt.value); got != tt.want {
				t.Errorf("Truthy(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		value types.Value
		want  string
	}{
		{types.Boolean(true), "true"},
		{types.Float(1.5), "1.5"},
		{types.Float(2), "2.0"},
		{types.Float(-3), "-3.0"},
		{types.Float(1e21), "1e+21"},
		{types.Float(math.Inf(1)), "+Inf"},
		{types.Integer(-42), "-42"},
		{types.String(`a"b`), `"a\"b"`},
	}
	for _, tt := range tests {
		if got := tt.value.String(); got != tt.want {
			t.Errorf("%#v.String() = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestValueKindAndInterface(t *testing.T) {
	tests := []struct {
		value  types.Value
		kind   types.ValueKind
		native any
	}{
		{types.Boolean(true), types.KindBoolean, true},
		{types.Float(1.5), types.KindFloat, 1.5},
		{types.Integer(7), types.KindInteger, int64(7)},
		{types.String("s"), types.KindString, "s"},
	}
	for _, tt := range tests {
		if got := tt.value.Kind(); got != tt.kind {
			t.Errorf("%#v.Kind() = %v, want %v", tt.value, got, tt.kind)
		}
		if got := tt.value.Interface(); got != tt.native {
			t.Errorf("%#v.Interface() = %#v, want %#v", tt.value, got, tt.native)
		}
	}
	if got := types.ValueKind(99).String(); got != "unknown" {
		t.Errorf("unknown kind renders as %q", got)
	}
}

func TestValueOf(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want types.Value
		ok   bool
	}{
		{"bool", true, types.Boolean(true), true},
		{"string", "x", types.String("x"), true},
		{"int", 3, types.Integer(3), true},
		{"int8", int8(-3), types.Integer(-3), true},
		{"uint32", uint32(9), types.Integer(9), true},
		{"uint64 overflow", uint64(math.MaxUint64), nil, false},
		{"float32", float32(0.5), types.Float(0.5), true},
		{"float64", 2.25, types.Float(2.25), true},
		{"json integer", json.Number("12"), types.Integer(12), true},
		{"json float", json.Number("1.5"), types.Float(1.5), true},
		{"json garbage", json.Number("x"), nil, false},
		{"value passthrough", types.String("v"), types.String("v"), true},
		{"slice", []int{1}, nil, false},
		{"nil", nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := types.ValueOf(tt.in)
			if ok != tt.ok {
				t.Fatalf("ValueOf(%#v) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("ValueOf(%#v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}
