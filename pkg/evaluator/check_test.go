package evaluator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gorule/pkg/evaluator"
	"github.com/sandrolain/gorule/pkg/types"
)

func TestCheckInference(t *testing.T) {
	c := evaluator.NewContext(
		evaluator.WithValue("limit", types.Integer(3)),
		evaluator.WithDeclaredTypes(map[string]types.DataType{
			"name":   types.TypeString,
			"active": types.TypeBoolean,
			"a.b":    types.TypeFloat,
		}),
	)
	tests := []struct {
		rule string
		want string
	}{
		{"1", "float"},
		{"'x'", "string"},
		{"true", "boolean"},
		{"1 + 2", "float"},
		{"7 % 2", "float"},
		{"-limit", "float"},
		{"not active", "boolean"},
		{"limit > 1", "boolean"},
		{"name == 'x'", "boolean"},
		{"active and limit > 1", "boolean"},
		{"name.as_lower", "string"},
		{"name.length + 1", "float"},
		{"a.b * 2", "float"},
		{"unknown", "undefined"},
		{"unknown.path", "undefined"},
		{"unknown + 1 > other", "boolean"},
		{"(name)", "string"},
	}
	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			got, err := evaluator.Check(mustParse(t, tt.rule), c)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestCheckErrors(t *testing.T) {
	c := evaluator.NewContext(evaluator.WithDeclaredTypes(map[string]types.DataType{
		"name":  types.TypeString,
		"age":   types.TypeFloat,
		"a.b":   types.TypeString,
		"tags":  types.ArrayOf(types.TypeString),
		"flags": types.MappingOf(types.TypeString, types.TypeBoolean),
	}))
	tests := []struct {
		rule    string
		code    types.ErrorCode
		message string
	}{
		{"name > 1", types.ErrSymbolType, "symbol 'name' resolved to incorrect datatype (is: string, expected: float)"},
		{"(name) * 2", types.ErrSymbolType, "symbol 'name' resolved to incorrect datatype (is: string, expected: float)"},
		{"a.b - 1", types.ErrAttributeType, "attribute 'a.b' resolved to incorrect datatype (is: string, expected: float)"},
		{"age and true", types.ErrSymbolType, "symbol 'age' resolved to incorrect datatype (is: float, expected: boolean)"},
		{"1 + 'a'", types.ErrTypeMismatch, "operator '+' requires float operands, got string"},
		{"name.as_lower > 1", types.ErrTypeMismatch, "operator '>' requires float operands, got string"},
		{"not 'x'", types.ErrTypeMismatch, "operator 'not' requires boolean operands, got string"},
		{"name == 1", types.ErrTypeMismatch, "cannot compare different types (string and float) for operator '=='"},
		{"tags == tags", types.ErrTypeMismatch, "cannot compare different types (array<string> and array<string>) for operator '=='"},
		{"flags != 1", types.ErrTypeMismatch, "cannot compare different types (mapping<string, boolean> and float) for operator '!='"},
		{"age.as_lower", types.ErrFunctionCall, "as_lower: expected string, got float"},
		{"name.length.as_upper", types.ErrFunctionCall, "as_upper: expected string, got float"},
	}
	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			_, err := evaluator.Check(mustParse(t, tt.rule), c)
			var terr *types.Error
			require.ErrorAs(t, err, &terr)
			assert.Equal(t, tt.code, terr.Code)
			assert.Equal(t, tt.message, terr.Message)
			assert.Positive(t, terr.Line)
		})
	}
}

func TestCheckErrorPosition(t *testing.T) {
	c := evaluator.NewContext(evaluator.WithDeclaredType("name", types.TypeString))
	_, err := evaluator.Check(mustParse(t, "true and\nname + 1 > 2"), c)
	var terr *types.Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 2, terr.Line)
	assert.Equal(t, 6, terr.Column, "blamed at the + operator")
}

func TestCheckNilResolver(t *testing.T) {
	got, err := evaluator.Check(mustParse(t, "x + y > 1"), nil)
	require.NoError(t, err)
	assert.Equal(t, "boolean", got.String())

	_, err = evaluator.Check(mustParse(t, "1 > 'a'"), nil)
	assert.True(t, types.HasCode(err, types.ErrTypeMismatch))

	_, err = evaluator.Check(nil, nil)
	assert.Error(t, err)
}

// Check must accept every rule that evaluates successfully.
func TestCheckAgreesWithEval(t *testing.T) {
	record := mustRecord(t, map[string]any{"n": 2, "s": "Ab", "b": true})
	c := evaluator.NewContext(evaluator.WithDeclaredTypes(map[string]types.DataType{
		"n": types.TypeFloat,
		"s": types.TypeString,
		"b": types.TypeBoolean,
	}))
	ev := evaluator.New()
	for _, rule := range []string{
		"n * 2 > 3 and b",
		"s.as_lower == 'ab'",
		"s.length % 2 == 0",
		"not b or n / 2 == 1",
		"-n < 0",
	} {
		_, err := ev.Eval(mustParse(t, rule), record, c)
		require.NoError(t, err, rule)
		_, err = evaluator.Check(mustParse(t, rule), c)
		assert.NoError(t, err, rule)
	}
}
