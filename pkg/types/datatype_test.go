package types_test

import (
	"testing"

	"github.com/sandrolain/gorule/pkg/types"
)

func TestDataTypeString(t *testing.T) {
	tests := []struct {
		dt   types.DataType
		want string
	}{
		{types.TypeUndefined, "undefined"},
		{types.TypeBoolean, "boolean"},
		{types.ArrayOf(types.TypeString), "array<string>"},
		{types.SetOf(types.TypeFloat), "set<float>"},
		{types.MappingOf(types.TypeString, types.ArrayOf(types.TypeFloat)), "mapping<string, array<float>>"},
		{types.FunctionOf(types.TypeString, []types.DataType{types.TypeString, types.TypeFloat}, 1), "function(string, float) string"},
	}
	for _, tt := range tests {
		if got := tt.dt.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestIsCompatible(t *testing.T) {
	fn := func(minArgs int) types.DataType {
		return types.FunctionOf(types.TypeString, []types.DataType{types.TypeString}, minArgs)
	}
	tests := []struct {
		name string
		a, b types.DataType
		want bool
	}{
		{"same scalar", types.TypeFloat, types.TypeFloat, true},
		{"different scalars", types.TypeFloat, types.TypeString, false},
		{"undefined left", types.TypeUndefined, types.TypeString, true},
		{"undefined right", types.TypeBoolean, types.TypeUndefined, true},
		{"array elements", types.ArrayOf(types.TypeString), types.ArrayOf(types.TypeString), true},
		{"array mismatch", types.ArrayOf(types.TypeString), types.ArrayOf(types.TypeFloat), false},
		{"array of undefined", types.ArrayOf(types.TypeUndefined), types.ArrayOf(types.TypeFloat), true},
		{"array vs set", types.ArrayOf(types.TypeFloat), types.SetOf(types.TypeFloat), false},
		{"mapping value mismatch", types.MappingOf(types.TypeString, types.TypeFloat), types.MappingOf(types.TypeString, types.TypeBoolean), false},
		{"function exact", fn(1), fn(1), true},
		{"function min args differ", fn(1), fn(0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := types.IsCompatible(tt.a, tt.b); got != tt.want {
				t.Errorf("IsCompatible(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDataTypeEqual(t *testing.T) {
	if !types.ArrayOf(types.TypeString).Equal(types.ArrayOf(types.TypeString)) {
		t.Error("identical arrays should be equal")
	}
	if types.ArrayOf(types.TypeUndefined).Equal(types.ArrayOf(types.TypeString)) {
		t.Error("Equal is structural, not compatibility")
	}
	if !types.MappingOf(types.TypeString, types.TypeFloat).Key().Equal(types.TypeString) {
		t.Error("mapping key not retained")
	}
	if types.TypeFloat.Elem().Kind() != types.UndefinedKind {
		t.Error("scalar Elem should be undefined")
	}
}

func TestIsScalar(t *testing.T) {
	for _, dt := range []types.DataType{types.TypeBoolean, types.TypeFloat, types.TypeString} {
		if !dt.IsScalar() {
			t.Errorf("%s should be scalar", dt)
		}
	}
	for _, dt := range []types.DataType{types.TypeUndefined, types.TypeNull, types.TypeDatetime, types.ArrayOf(types.TypeFloat)} {
		if dt.IsScalar() {
			t.Errorf("%s should not be scalar", dt)
		}
	}
}

func TestFromValue(t *testing.T) {
	tests := []struct {
		v    types.Value
		want types.DataType
	}{
		{types.Boolean(true), types.TypeBoolean},
		{types.Integer(1), types.TypeFloat},
		{types.Float(1), types.TypeFloat},
		{types.String(""), types.TypeString},
		{nil, types.TypeUndefined},
	}
	for _, tt := range tests {
		if got := types.FromValue(tt.v); !got.Equal(tt.want) {
			t.Errorf("FromValue(%#v) = %s, want %s", tt.v, got, tt.want)
		}
	}
}

func TestParseDataType(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "float", want: "float"},
		{in: "Integer", want: "float"},
		{in: " bool ", want: "boolean"},
		{in: "any", want: "undefined"},
		{in: "array<string>", want: "array<string>"},
		{in: "list", want: "array<undefined>"},
		{in: "mapping<string, array<float>>", want: "mapping<string, array<float>>"},
		{in: "set<datetime>", want: "set<datetime>"},
		{in: "function", want: "function"},
		{in: "array<string", wantErr: true},
		{in: "mapping<string>", wantErr: true},
		{in: "float<string>", wantErr: true},
		{in: "decimal", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := types.ParseDataType(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDataType(%q) = %s, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDataType(%q): %v", tt.in, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseDataType(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}
