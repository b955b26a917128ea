package evaluator_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gorule/pkg/evaluator"
	"github.com/sandrolain/gorule/pkg/types"
)

func collect(t *testing.T, ch <-chan evaluator.StreamResult) []evaluator.StreamResult {
	t.Helper()
	var out []evaluator.StreamResult
	for r := range ch {
		out = append(out, r)
	}
	return out
}

func TestEvalStreamNDJSON(t *testing.T) {
	ndjson := `{"name":"Alice","age":30}
{"name":"Bob","age":17}
{"name":"Charlie","age":35.5}`

	ch, err := evaluator.New().EvalStream(context.Background(), mustParse(t, "age >= 18"), strings.NewReader(ndjson), nil)
	require.NoError(t, err)

	results := collect(t, ch)
	require.Len(t, results, 3)
	want := []types.Value{types.Boolean(true), types.Boolean(false), types.Boolean(true)}
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, i, r.Index)
		assert.Equal(t, want[i], r.Value)
	}
}

func TestEvalStreamExactNumbers(t *testing.T) {
	in := `{"n": 3} {"n": 3.0} {"n": 12345678901234567}`

	ch, err := evaluator.New().EvalStream(context.Background(), mustParse(t, "n + 1"), strings.NewReader(in), nil)
	require.NoError(t, err)

	results := collect(t, ch)
	require.Len(t, results, 3)
	assert.Equal(t, types.Integer(4), results[0].Value)
	assert.Equal(t, types.Float(4), results[1].Value)
	assert.Equal(t, types.Integer(12345678901234568), results[2].Value)
}

func TestEvalStreamPerRecordErrors(t *testing.T) {
	in := `{"age": 1}
[1, 2]
{"name": "x"}
"text"
{"age": 40}`

	ch, err := evaluator.New().EvalStream(context.Background(), mustParse(t, "age > 18"), strings.NewReader(in), nil)
	require.NoError(t, err)

	results := collect(t, ch)
	require.Len(t, results, 5)

	assert.Equal(t, types.Boolean(false), results[0].Value)

	var terr *types.Error
	require.ErrorAs(t, results[1].Err, &terr)
	assert.Equal(t, types.ErrUnsupportedValue, terr.Code)
	assert.Equal(t, "record must be a JSON object, got array", terr.Message)

	assert.True(t, types.HasCode(results[2].Err, types.ErrSymbolResolution))

	require.ErrorAs(t, results[3].Err, &terr)
	assert.Equal(t, "record must be a JSON object, got string", terr.Message)

	require.NoError(t, results[4].Err)
	assert.Equal(t, types.Boolean(true), results[4].Value)
}

func TestEvalStreamSyntaxErrorIsFatal(t *testing.T) {
	in := `{"age": 20}
{"age": oops}
{"age": 30}`

	ch, err := evaluator.New().EvalStream(context.Background(), mustParse(t, "age > 18"), strings.NewReader(in), nil)
	require.NoError(t, err)

	results := collect(t, ch)
	require.Len(t, results, 2)
	require.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.Equal(t, 1, results[1].Index)
}

func TestEvalStreamEmpty(t *testing.T) {
	ch, err := evaluator.New().EvalStream(context.Background(), mustParse(t, "true"), strings.NewReader(""), nil)
	require.NoError(t, err)
	assert.Empty(t, collect(t, ch))
}

func TestEvalStreamNilExpression(t *testing.T) {
	_, err := evaluator.New().EvalStream(context.Background(), nil, strings.NewReader("{}"), nil)
	assert.Error(t, err)
}

func TestEvalStreamCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := evaluator.New().EvalStream(ctx, mustParse(t, "true"), pr, nil)
	require.NoError(t, err)

	go func() {
		_, _ = io.WriteString(pw, "{}\n")
	}()
	first := <-ch
	require.NoError(t, first.Err)
	assert.Equal(t, types.Boolean(true), first.Value)

	cancel()
	// Unblock the pending read so the goroutine observes the cancellation.
	go func() {
		_, _ = io.WriteString(pw, "{}\n")
	}()
	for range ch {
	}
}
