package evaluator_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gorule/pkg/evaluator"
	"github.com/sandrolain/gorule/pkg/types"
)

func buildRecords(t testing.TB, n int) []types.Nested {
	t.Helper()
	records := make([]types.Nested, n)
	for i := range records {
		data := map[string]any{"id": i, "name": fmt.Sprintf("user%d", i)}
		if i%10 == 9 {
			delete(data, "id")
		}
		records[i] = mustRecord(t, data)
	}
	return records
}

func TestEvalBatch(t *testing.T) {
	records := buildRecords(t, 100)
	ev := evaluator.New(evaluator.WithConcurrency(4))

	results, err := ev.EvalBatch(context.Background(), mustParse(t, "id % 2 == 0"), records, nil)
	require.NoError(t, err)
	require.Len(t, results, len(records))

	for i, r := range results {
		assert.Equal(t, i, r.Index)
		if i%10 == 9 {
			assert.True(t, types.HasCode(r.Err, types.ErrSymbolResolution), "record %d", i)
			assert.Nil(t, r.Value)
			continue
		}
		require.NoError(t, r.Err, "record %d", i)
		assert.Equal(t, types.Boolean(i%2 == 0), r.Value, "record %d", i)
	}
}

func TestEvalBatchSharedContext(t *testing.T) {
	records := buildRecords(t, 20)
	c := evaluator.NewContext(evaluator.WithValue("limit", types.Integer(5)))

	results, err := evaluator.New().EvalBatch(context.Background(), mustParse(t, "name.length > limit"), records, c)
	require.NoError(t, err)
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, types.Boolean(i >= 10), r.Value, "record %d", i)
	}
}

func TestEvalBatchEmpty(t *testing.T) {
	results, err := evaluator.New().EvalBatch(context.Background(), mustParse(t, "true"), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestEvalBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := buildRecords(t, 10)
	results, err := evaluator.New(evaluator.WithConcurrency(1)).EvalBatch(ctx, mustParse(t, "true"), records, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, len(records))
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestEvalBatchInvalidExpression(t *testing.T) {
	_, err := evaluator.New().EvalBatch(context.Background(), nil, buildRecords(t, 1), nil)
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	records := buildRecords(t, 30)
	matched, err := evaluator.New().Filter(context.Background(), mustParse(t, "id < 12"), records, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 10, 11}, matched, "failing records are skipped")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = evaluator.New().Filter(ctx, mustParse(t, "true"), records, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
