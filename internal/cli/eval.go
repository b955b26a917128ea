package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandrolain/gorule"
	"github.com/sandrolain/gorule/pkg/evaluator"
	"github.com/sandrolain/gorule/pkg/types"
)

// EvalOptions holds the flags of the eval command.
type EvalOptions struct {
	Data         string
	Input        string
	ContextFile  string
	Sets         []string
	Match        bool
	Reduce       bool
	ShortCircuit bool
	Workers      int
}

// EvalResult is the outcome of evaluating the rule against one record.
type EvalResult struct {
	Index int       `json:"index"`
	Value any       `json:"value"`
	Error *CLIError `json:"error,omitempty"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{}
	cmd := &cobra.Command{
		Use:   "eval <rule>",
		Short: "Evaluate a rule against records",
		Long: `Evaluate a rule against every record read from --data (stdin by default).

JSON input may be one object or an array of objects; NDJSON is evaluated as
a stream; YAML may hold several documents. With --match each record prints
true or false and evaluation errors count as false.

Exits with status 1 when any record fails to evaluate.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(rootOpts, opts, args[0], cmd)
		},
	}
	cmd.Flags().StringVarP(&opts.Data, "data", "d", "-", "record file, - for stdin")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "input format (json|ndjson|yaml), guessed from the file extension by default")
	cmd.Flags().StringVarP(&opts.ContextFile, "context", "c", "", "YAML or JSON context file with values and types")
	cmd.Flags().StringArrayVar(&opts.Sets, "set", nil, "bind a context value (name=value), repeatable")
	cmd.Flags().BoolVar(&opts.Match, "match", false, "print truthiness instead of the value")
	cmd.Flags().BoolVar(&opts.Reduce, "reduce", false, "fold constant subexpressions before evaluating")
	cmd.Flags().BoolVar(&opts.ShortCircuit, "short-circuit", false, "skip the right operand of and/or when the left decides")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "parallel evaluations, 0 for GOMAXPROCS")
	return cmd
}

func runEval(rootOpts *RootOptions, opts *EvalOptions, text string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
	logger := newLogger(rootOpts, cmd.ErrOrStderr())

	c, err := BuildContext(opts.ContextFile, opts.Sets)
	if err != nil {
		return WrapExitError(ExitCommandError, "load context", err)
	}

	rule, err := gorule.Compile(text,
		gorule.WithContext(c),
		gorule.WithReduce(opts.Reduce),
		gorule.WithEvalOptions(
			evaluator.WithLogger(logger),
			evaluator.WithDebug(rootOpts.Verbose),
			evaluator.WithConcurrency(opts.Workers),
			evaluator.WithShortCircuit(opts.ShortCircuit),
		),
	)
	if err != nil {
		_ = formatter.Error(err)
		return WrapExitError(ExitFailure, "compile", err)
	}
	logger.Debug("rule compiled", "rule", rule.Source(), "canonical", rule.String())

	in, closeIn, err := openInput(opts.Data, cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitCommandError, "open data", err)
	}
	defer closeIn()

	format := opts.Input
	if format == "" {
		format = guessFormat(opts.Data)
	}

	var failed int
	if format == "ndjson" {
		failed, err = evalStream(cmd, rule, c, in, opts, formatter)
	} else {
		failed, err = evalBatch(cmd, rule, c, in, format, opts, formatter)
	}
	if err != nil {
		return err
	}
	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d record(s) failed to evaluate", failed))
	}
	return nil
}

func evalBatch(cmd *cobra.Command, rule *gorule.Rule, c *evaluator.Context, in io.Reader, format string, opts *EvalOptions, f *OutputFormatter) (int, error) {
	data, err := LoadRecords(in, format)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, "load records", err)
	}
	records := make([]types.Nested, len(data))
	for i, d := range data {
		if records[i], err = types.NewRecord(d); err != nil {
			return 0, WrapExitError(ExitCommandError, fmt.Sprintf("record %d", i), err)
		}
	}

	results, err := rule.EvaluateBatch(commandContext(cmd), records, c)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, "evaluate", err)
	}

	out := make([]EvalResult, len(results))
	failed := 0
	for i, r := range results {
		out[i] = toEvalResult(r.Index, r.Value, r.Err, opts.Match)
		if out[i].Error != nil {
			failed++
		}
	}

	if f.Format == "json" {
		return failed, f.Success(out)
	}
	for _, r := range out {
		writeTextResult(f.Writer, r)
	}
	return failed, nil
}

func evalStream(cmd *cobra.Command, rule *gorule.Rule, c *evaluator.Context, in io.Reader, opts *EvalOptions, f *OutputFormatter) (int, error) {
	ch, err := rule.EvaluateStream(commandContext(cmd), in, c)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, "evaluate", err)
	}

	failed := 0
	for r := range ch {
		res := toEvalResult(r.Index, r.Value, r.Err, opts.Match)
		if res.Error != nil {
			failed++
		}
		if f.Format == "json" {
			if err := f.Success(res); err != nil {
				return failed, err
			}
			continue
		}
		writeTextResult(f.Writer, res)
	}
	return failed, nil
}

func toEvalResult(index int, v types.Value, err error, match bool) EvalResult {
	if match {
		return EvalResult{Index: index, Value: err == nil && types.Truthy(v)}
	}
	if err != nil {
		return EvalResult{Index: index, Error: NewCLIError(err)}
	}
	return EvalResult{Index: index, Value: v.Interface()}
}

func writeTextResult(w io.Writer, r EvalResult) {
	if r.Error != nil {
		fmt.Fprintf(w, "%d: error [%s]: %s\n", r.Index, r.Error.Kind, r.Error.Message)
		return
	}
	if s, ok := r.Value.(string); ok {
		fmt.Fprintf(w, "%d: %q\n", r.Index, s)
		return
	}
	fmt.Fprintf(w, "%d: %v\n", r.Index, r.Value)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func guessFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ndjson", ".jsonl":
		return "ndjson"
	case ".yaml", ".yml":
		return "yaml"
	}
	return "json"
}
