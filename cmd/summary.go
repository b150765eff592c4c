package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/txengine"
	"github.com/etnz/txengine/renderer"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	currency string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display a summary of client accounts" }
func (*summaryCmd) Usage() string {
	return `txe summary [-c <currency>] <file>

  Applies the transaction log and displays the final accounts and the
  skipped transactions as a report. Amounts are rounded to the currency unit.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", envString(EnvCurrency, "USD"), "Currency code used to display amounts.")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	path, ok := inputPath(f)
	if !ok {
		return subcommands.ExitUsageError
	}

	book, stats, err := run(ctx, path, txengine.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error processing %q: %v\n", path, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.RenderSummary(renderer.NewSummary(path, book, stats, c.currency)))
	return subcommands.ExitSuccess
}
