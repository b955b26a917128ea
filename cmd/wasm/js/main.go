//go:build js && wasm

// Command gorule-wasm-js is the WebAssembly entrypoint for browser and Node.js.
//
// It exposes a global `gorule` object with the following API:
//
//	gorule.version()                  → string
//	gorule.isValid(rule)              → boolean
//	gorule.eval(rule, recordJSON)     → resultJSON  (throws on error)
//	gorule.compile(rule)              → { eval(recordJSON) → resultJSON, matches(recordJSON) → boolean }
//
// Build:
//
//	GOOS=js GOARCH=wasm go build -o gorule.wasm ./cmd/wasm/js/
//
// Usage in Node.js:
//
//	const rule = gorule.compile('name.as_lower == "hank"')
//	rule.matches(JSON.stringify({name: 'HANK'})) // true
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/sandrolain/gorule"
)

// jsThrow panics with a JS Error so the caller receives a thrown exception.
func jsThrow(msg string) {
	panic(js.Global().Get("Error").New(msg))
}

// decodeRecord parses a JSON object, keeping integral numbers integral.
func decodeRecord(s string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	return data, nil
}

func evalJSON(rule *gorule.Rule, recordJSON string) string {
	data, err := decodeRecord(recordJSON)
	if err != nil {
		jsThrow(fmt.Sprintf("gorule: invalid record JSON: %v", err))
	}
	v, err := rule.Evaluate(data, nil)
	if err != nil {
		jsThrow(fmt.Sprintf("gorule: %v", err))
	}
	out, err := json.Marshal(v.Interface())
	if err != nil {
		jsThrow(fmt.Sprintf("gorule: marshal result: %v", err))
	}
	return string(out)
}

func compile(text string) *gorule.Rule {
	rule, err := gorule.Compile(text)
	if err != nil {
		jsThrow(fmt.Sprintf("gorule.compile: %v", err))
	}
	return rule
}

// jsEval implements gorule.eval(rule, recordJSON) → resultJSON.
func jsEval(_ js.Value, args []js.Value) any {
	if len(args) < 2 {
		jsThrow("gorule.eval requires 2 arguments: rule (string) and record (JSON string)")
	}
	return evalJSON(compile(args[0].String()), args[1].String())
}

// jsCompile implements gorule.compile(rule).
func jsCompile(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		jsThrow("gorule.compile requires 1 argument: rule (string)")
	}
	rule := compile(args[0].String())

	evalFn := js.FuncOf(func(_ js.Value, inner []js.Value) any {
		if len(inner) < 1 {
			jsThrow("compiled.eval requires 1 argument: record (JSON string)")
		}
		return evalJSON(rule, inner[0].String())
	})
	matchesFn := js.FuncOf(func(_ js.Value, inner []js.Value) any {
		if len(inner) < 1 {
			return false
		}
		data, err := decodeRecord(inner[0].String())
		if err != nil {
			return false
		}
		return rule.Matches(data)
	})

	return js.ValueOf(map[string]any{"eval": evalFn, "matches": matchesFn})
}

func main() {
	api := map[string]any{
		"eval":    js.FuncOf(jsEval),
		"compile": js.FuncOf(jsCompile),
		"isValid": js.FuncOf(func(_ js.Value, args []js.Value) any {
			return len(args) > 0 && gorule.IsValid(args[0].String())
		}),
		"version": js.FuncOf(func(_ js.Value, _ []js.Value) any {
			return gorule.Version()
		}),
	}
	js.Global().Set("gorule", js.ValueOf(api))

	// Block forever; the JS event loop owns execution from here.
	select {}
}
