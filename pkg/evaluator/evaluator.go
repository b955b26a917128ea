// Package evaluator evaluates compiled rules against records.
//
// An Evaluator walks the typed AST of a *types.Expression. Bare symbols
// resolve through a *Context first and the record second; dotted paths
// traverse the record and may end in a builtin. Every operator checks its
// operand types, so undefined cross-type operations fail with an
// EvaluationError instead of coercing.
//
// # Example
//
//	expr, _ := parser.Parse("age >= 18 and name.as_lower == 'ann'")
//	record, _ := types.NewRecord(map[string]any{"age": 30, "name": "Ann"})
//	ev := evaluator.New()
//	ok := ev.Matches(expr, record, nil)
//
// # Concurrency
//
// Expressions, Contexts and Evaluators are immutable after construction, so
// one Evaluator may serve any number of goroutines. EvalBatch fans a rule
// out over many records with bounded parallelism.
package evaluator

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/sandrolain/gorule/pkg/cache"
	"github.com/sandrolain/gorule/pkg/parser"
	"github.com/sandrolain/gorule/pkg/types"
)

// Evaluator evaluates rules against records.
type Evaluator struct {
	opts    EvalOptions
	logger  *slog.Logger
	cache   *cache.Cache // non-nil when Caching is enabled
	metrics *Metrics
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// Caching enables caching of rules compiled by EvalText, keyed by rule
	// text.
	Caching bool
	// CacheSize sets the maximum number of cached rules. Defaults to 256.
	CacheSize int
	// Cache is a shared rule cache. If non-nil, Caching is implicitly enabled.
	Cache *cache.Cache
	// Concurrency bounds the number of records EvalBatch evaluates at once.
	// Zero or less means GOMAXPROCS.
	Concurrency int
	// ShortCircuit skips the right operand of and/or when the left operand
	// decides the result. Off by default, so both operands are always
	// evaluated and type checked.
	ShortCircuit bool
	// Debug enables per-node debug logging.
	Debug bool
	// Logger for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
	// Metrics receives evaluation counters and latencies. Nil disables them.
	Metrics *Metrics
}

// defaultConcurrency is the EvalBatch worker bound for newly created
// Evaluators. evaluator_wasm.go lowers it to 1 on WebAssembly targets.
var defaultConcurrency = 0

// New creates a new Evaluator with default options.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		Concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Concurrency <= 0 {
		options.Concurrency = runtime.GOMAXPROCS(0)
	}

	var c *cache.Cache
	if options.Cache != nil {
		c = options.Cache
	} else if options.Caching {
		c = cache.New(options.CacheSize)
	}

	return &Evaluator{
		opts:    options,
		logger:  options.Logger,
		cache:   c,
		metrics: options.Metrics,
	}
}

// Options returns the effective options.
func (e *Evaluator) Options() EvalOptions {
	return e.opts
}

// Cache returns the rule cache, or nil if caching is disabled.
func (e *Evaluator) Cache() *cache.Cache {
	return e.cache
}

// Eval evaluates expr against record. c may be nil.
func (e *Evaluator) Eval(expr *types.Expression, record types.Nested, c *Context) (types.Value, error) {
	if expr == nil || expr.Root() == nil {
		return nil, fmt.Errorf("invalid expression")
	}
	if c == nil {
		c = emptyContext
	}

	start := time.Now()
	s := &scope{ctx: c, record: record, source: expr.Source()}
	v, err := e.evalLogical(expr.Root(), s)
	e.metrics.observe(v, err, time.Since(start))

	if err != nil {
		if e.opts.Debug {
			e.logger.Debug("evaluation failed", "rule", expr.Source(), "error", err)
		}
		return nil, err
	}
	return v, nil
}

// EvalData converts data with types.NewRecord and evaluates expr against it.
func (e *Evaluator) EvalData(expr *types.Expression, data map[string]any, c *Context) (types.Value, error) {
	record, err := types.NewRecord(data)
	if err != nil {
		return nil, err
	}
	return e.Eval(expr, record, c)
}

// EvalText compiles text, through the rule cache when one is configured,
// and evaluates it against record.
func (e *Evaluator) EvalText(text string, record types.Nested, c *Context) (types.Value, error) {
	var (
		expr *types.Expression
		err  error
	)
	if e.cache != nil {
		var hit bool
		expr, hit, err = e.cache.Lookup(text, func() (*types.Expression, error) {
			return parser.Parse(text)
		})
		e.metrics.observeCache(hit)
	} else {
		expr, err = parser.Parse(text)
	}
	if err != nil {
		return nil, err
	}
	return e.Eval(expr, record, c)
}

// Matches reports whether expr is truthy for record. Evaluation errors count
// as no match.
func (e *Evaluator) Matches(expr *types.Expression, record types.Nested, c *Context) bool {
	v, err := e.Eval(expr, record, c)
	return err == nil && types.Truthy(v)
}

// EvalOption configures evaluation behavior.
type EvalOption func(*EvalOptions)

// WithCaching enables or disables caching of rules compiled by EvalText.
// To control the cache size use WithCacheSize; to supply your own cache use
// WithCache.
func WithCaching(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Caching = enabled
	}
}

// WithCacheSize sets the maximum number of cached rules.
// Only effective when combined with WithCaching(true).
func WithCacheSize(size int) EvalOption {
	return func(opts *EvalOptions) {
		opts.CacheSize = size
	}
}

// WithCache attaches an external rule cache.
func WithCache(c *cache.Cache) EvalOption {
	return func(opts *EvalOptions) {
		opts.Cache = c
	}
}

// WithConcurrency sets the EvalBatch worker bound.
func WithConcurrency(workers int) EvalOption {
	return func(opts *EvalOptions) {
		opts.Concurrency = workers
	}
}

// WithShortCircuit enables or disables short-circuit and/or.
func WithShortCircuit(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.ShortCircuit = enabled
	}
}

// WithDebug enables or disables debug logging.
func WithDebug(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Debug = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}

// WithMetrics attaches Prometheus collectors created by NewMetrics.
func WithMetrics(m *Metrics) EvalOption {
	return func(opts *EvalOptions) {
		opts.Metrics = m
	}
}
