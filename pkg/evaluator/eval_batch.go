package evaluator

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/sandrolain/gorule/pkg/types"
)

// BatchResult is the outcome of evaluating a rule against one record.
type BatchResult struct {
	// Index is the position of the record in the input slice.
	Index int
	// Value is the result, or nil when Err is set.
	Value types.Value
	// Err is the evaluation error for this record only.
	Err error
}

// EvalBatch evaluates expr against every record, with at most
// Options().Concurrency evaluations in flight. Results are returned in
// input order. Per-record failures are reported in BatchResult.Err and do
// not stop the batch; the returned error is non-nil only when ctx ends
// first, in which case unstarted records carry ctx.Err().
func (e *Evaluator) EvalBatch(ctx context.Context, expr *types.Expression, records []types.Nested, c *Context) ([]BatchResult, error) {
	if expr == nil || expr.Root() == nil {
		return nil, fmt.Errorf("invalid expression")
	}
	e.metrics.observeBatch(len(records))

	results := make([]BatchResult, len(records))
	done := make([]bool, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for i, record := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := e.Eval(expr, record, c)
			results[i] = BatchResult{Index: i, Value: v, Err: err}
			done[i] = true
			return nil
		})
	}

	err := g.Wait()
	if err == nil && slices.Contains(done, false) {
		err = ctx.Err()
	}
	if err != nil {
		for i := range results {
			if !done[i] {
				results[i] = BatchResult{Index: i, Err: err}
			}
		}
		if e.opts.Debug {
			e.logger.Debug("batch interrupted", "rule", expr.Source(), "records", len(records), "error", err)
		}
		return results, err
	}
	return results, nil
}

// Filter returns the indices of the records for which expr is truthy.
// Records that fail to evaluate are skipped.
func (e *Evaluator) Filter(ctx context.Context, expr *types.Expression, records []types.Nested, c *Context) ([]int, error) {
	results, err := e.EvalBatch(ctx, expr, records, c)
	if err != nil {
		return nil, err
	}
	var matched []int
	for _, r := range results {
		if r.Err == nil && types.Truthy(r.Value) {
			matched = append(matched, r.Index)
		}
	}
	return matched, nil
}
