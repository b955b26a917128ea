// Command gorule validates, type checks and evaluates rule expressions.
//
//	gorule validate 'age >= 18'
//	gorule eval 'name.as_lower == "hank"' --data people.ndjson --match
//	gorule check 'age > 1' --context context.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sandrolain/gorule/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "gorule:", err)
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}
