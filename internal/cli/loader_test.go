package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gorule/pkg/types"
)

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		in    string
		name  string
		value types.Value
	}{
		{"age=21", "age", types.Integer(21)},
		{"ratio=2.5", "ratio", types.Float(2.5)},
		{"ok=true", "ok", types.Boolean(true)},
		{"who=hank", "who", types.String("hank")},
		{" padded =x", "padded", types.String("x")},
		{"quoted='21'", "quoted", types.String("21")},
		{"empty=", "empty", types.String("")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, v, err := ParseAssignment(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.value, v)
		})
	}
}

func TestParseAssignmentErrors(t *testing.T) {
	for _, in := range []string{"noequals", "=1", "list=[1, 2]", "map={a: 1}"} {
		_, _, err := ParseAssignment(in)
		assert.Error(t, err, in)
	}
}

func TestBuildContext(t *testing.T) {
	path := writeFile(t, "context.yaml", `
values:
  limit: 10
  label: gold
types:
  age: int
  tags: array<string>
`)
	c, err := BuildContext(path, []string{"limit=20"})
	require.NoError(t, err)

	v, err := c.Resolve("limit", nil)
	require.NoError(t, err)
	assert.Equal(t, types.Integer(20), v, "--set wins over the file")

	v, err = c.Resolve("label", nil)
	require.NoError(t, err)
	assert.Equal(t, types.String("gold"), v)

	assert.Equal(t, types.TypeFloat, c.ResolveType("age"))
	assert.Equal(t, types.ArrayOf(types.TypeString), c.ResolveType("tags"))
}

func TestBuildContextErrors(t *testing.T) {
	_, err := BuildContext(writeFile(t, "bad.yaml", "values: [1, 2"), nil)
	assert.Error(t, err)

	_, err = BuildContext(writeFile(t, "types.yaml", "types:\n  age: wat\n"), nil)
	assert.ErrorContains(t, err, `unknown data type "wat"`)

	_, err = BuildContext(writeFile(t, "values.yaml", "values:\n  nested: {a: 1}\n"), nil)
	assert.ErrorContains(t, err, "is not a scalar")

	c, err := BuildContext("", nil)
	require.NoError(t, err)
	assert.Empty(t, c.Names())
}

func TestLoadRecords(t *testing.T) {
	tests := []struct {
		name   string
		format string
		input  string
		want   int
	}{
		{"json object", "json", `{"a": 1}`, 1},
		{"json array", "json", `[{"a": 1}, {"a": 2}]`, 2},
		{"json null", "json", `null`, 0},
		{"yaml document", "yaml", "a: 1\n", 1},
		{"yaml stream", "yaml", "a: 1\n---\n- a: 2\n- a: 3\n", 3},
		{"empty yaml", "yaml", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := LoadRecords(strings.NewReader(tt.input), tt.format)
			require.NoError(t, err)
			assert.Len(t, records, tt.want)
		})
	}
}

func TestLoadRecordsErrors(t *testing.T) {
	tests := []struct {
		name   string
		format string
		input  string
	}{
		{"json scalar", "json", `42`},
		{"json mixed array", "json", `[{"a": 1}, 2]`},
		{"json syntax", "json", `{"a":`},
		{"yaml syntax", "yaml", "a: [1"},
		{"unknown format", "toml", `a = 1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRecords(strings.NewReader(tt.input), tt.format)
			assert.Error(t, err)
		})
	}
}

func TestLoadRecordsExactNumbers(t *testing.T) {
	records, err := LoadRecords(strings.NewReader(`{"n": 9007199254740993}`), "json")
	require.NoError(t, err)
	r, err := types.NewRecord(records[0])
	require.NoError(t, err)
	assert.Equal(t, types.Leaf{Value: types.Integer(9007199254740993)}, r["n"])
}
