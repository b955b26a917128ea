package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/sandrolain/gorule/pkg/types"
)

// StreamResult holds the output of a single streaming evaluation step.
type StreamResult struct {
	// Index counts the JSON values read so far, starting at 0.
	Index int
	// Value is the evaluated result for one input record, or nil when Err is set.
	Value types.Value
	// Err is non-nil when reading or evaluating the record failed.
	// After a fatal I/O or JSON-decode error the channel is closed; per-record
	// errors, including values that are not JSON objects, are sent
	// individually and the stream continues.
	Err error
}

// EvalStream reads a sequence of JSON objects from r (NDJSON or simply
// concatenated) and evaluates expr against each one, sending results on the
// returned channel. Numbers are decoded exactly, so integral values become
// Integer and everything else Float.
//
// The channel is closed when all input has been consumed or ctx is
// cancelled. It is the caller's responsibility to drain the channel or
// cancel ctx to avoid goroutine leaks.
func (e *Evaluator) EvalStream(ctx context.Context, expr *types.Expression, r io.Reader, c *Context) (<-chan StreamResult, error) {
	if expr == nil || expr.Root() == nil {
		return nil, fmt.Errorf("invalid expression")
	}

	ch := make(chan StreamResult, 16)

	go func() {
		defer close(ch)

		send := func(res StreamResult) bool {
			select {
			case ch <- res:
				return true
			case <-ctx.Done():
				return false
			}
		}

		dec := json.NewDecoder(r)
		for i := 0; ; i++ {
			if err := ctx.Err(); err != nil {
				send(StreamResult{Index: i, Err: err})
				return
			}

			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				if !errors.Is(err, io.EOF) {
					send(StreamResult{Index: i, Err: err})
				}
				return
			}

			record, err := decodeRecord(raw)
			if err != nil {
				if !send(StreamResult{Index: i, Err: err}) {
					return
				}
				continue
			}

			v, err := e.Eval(expr, record, c)
			if !send(StreamResult{Index: i, Value: v, Err: err}) {
				return
			}
		}
	}()

	return ch, nil
}

// decodeRecord turns one JSON object into a record.
func decodeRecord(raw json.RawMessage) (types.Nested, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	obj, ok := data.(map[string]any)
	if !ok {
		return nil, types.NewEvaluationError(types.ErrUnsupportedValue,
			fmt.Sprintf("record must be a JSON object, got %s", jsonKind(data)))
	}
	return types.NewRecord(obj)
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
