//go:build (js && wasm) || wasip1

package evaluator

// init makes EvalBatch sequential on WebAssembly targets. The js/wasm
// runtime is single-threaded and wasip1 has no thread support in Go, so
// extra workers only add scheduling overhead.
func init() {
	defaultConcurrency = 1
}
