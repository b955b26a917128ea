package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCommand(t *testing.T) {
	out, _, err := runCLI(t, "", "check", "age + 1 > limit", "--set", "limit=3")
	require.NoError(t, err)
	assert.Equal(t, "✓ age + 1 > limit : boolean\n", out)
}

func TestCheckCommandJSON(t *testing.T) {
	out, _, err := runCLI(t, "", "--format", "json", "check", "name.as_lower")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   CheckResult `json:"data"`
	}
	decodeJSON(t, out, &resp)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "string", resp.Data.Type)
	assert.Equal(t, []string{"name.as_lower"}, resp.Data.References)
}

func TestCheckCommandTypeError(t *testing.T) {
	ctxFile := writeFile(t, "context.json", `{"types": {"name": "string"}}`)

	out, _, err := runCLI(t, "", "check", "name > 1", "--context", ctxFile)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [SymbolTypeError]: ")
	assert.Contains(t, out, "symbol 'name' resolved to incorrect datatype (is: string, expected: float)")
}

func TestCheckCommandErrors(t *testing.T) {
	_, _, err := runCLI(t, "", "check", "a >")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, _, err = runCLI(t, "", "check", "a", "--context", "/nonexistent/context.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
