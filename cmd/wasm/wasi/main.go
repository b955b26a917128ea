//go:build wasip1

// Command gorule-wasm-wasi is the WASI (wasip1) entrypoint for use from any
// language that supports the WebAssembly System Interface.
//
// Protocol: single JSON object on stdin → single JSON object on stdout.
//
//	stdin:  { "rule": "<rule>", "record": {...}, "values": {...}, "match": false }
//	stdout: { "result": <boolean|number|string> }        on success
//	        { "error": "<message>", "kind": "<kind>" }   on failure (exit code 1)
//
// With "match": true the result is always a boolean and errors yield false.
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o gorule.wasm ./cmd/wasm/wasi/
//
// Usage with wasmtime CLI:
//
//	echo '{"rule":"age >= 18","record":{"age":21}}' | wasmtime gorule.wasm
package main

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/sandrolain/gorule"
	"github.com/sandrolain/gorule/pkg/evaluator"
	"github.com/sandrolain/gorule/pkg/types"
)

type request struct {
	Rule   string         `json:"rule"`
	Record map[string]any `json:"record"`
	Values map[string]any `json:"values"`
	Match  bool           `json:"match"`
}

type response struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

func writeResponse(r response, exitCode int) {
	_ = json.NewEncoder(os.Stdout).Encode(r)
	os.Exit(exitCode)
}

func fail(err error) {
	writeResponse(response{Error: err.Error(), Kind: types.CodeOf(err).Kind()}, 1)
}

func main() {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(os.Stdin); err != nil {
		writeResponse(response{Error: "read request: " + err.Error()}, 1)
	}
	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	var req request
	if err := dec.Decode(&req); err != nil {
		writeResponse(response{Error: "invalid request JSON: " + err.Error()}, 1)
	}

	values := make(map[string]types.Value, len(req.Values))
	for name, raw := range req.Values {
		v, ok := types.ValueOf(raw)
		if !ok {
			writeResponse(response{Error: "value '" + name + "' is not a scalar"}, 1)
		}
		values[name] = v
	}

	rule, err := gorule.Compile(req.Rule,
		gorule.WithContext(evaluator.NewContext(evaluator.WithValues(values))))
	if err != nil {
		fail(err)
	}

	if req.Match {
		writeResponse(response{Result: rule.Matches(req.Record)}, 0)
	}

	v, err := rule.Evaluate(req.Record, nil)
	if err != nil {
		fail(err)
	}
	writeResponse(response{Result: v.Interface()}, 0)
}
