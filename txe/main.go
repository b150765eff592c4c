package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/txengine/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the command line for shell completion.
var completion = &complete.Command{
	Sub: map[string]*complete.Command{
		"process": {
			Flags: map[string]complete.Predictor{"o": predict.Set{"csv", "jsonl"}},
			Args:  predict.Files("*"),
		},
		"check":      {Args: predict.Files("*")},
		"format-log": {Args: predict.Files("*")},
		"summary": {
			Flags: map[string]complete.Predictor{"c": predict.Set{"USD", "EUR", "GBP", "CHF", "JPY"}},
			Args:  predict.Files("*"),
		},
		"help":     {Args: predict.Set{"process", "check", "format-log", "summary"}},
		"commands": {},
		"flags":    {},
	},
	Flags: map[string]complete.Predictor{
		"format":     predict.Set{"csv", "jsonl"},
		"workers":    predict.Something,
		"ledger-dsn": predict.Something,
		"v":          predict.Nothing,
	},
}

func main() {
	// Exits when invoked by the shell to complete a command line.
	completion.Complete("txe")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()

	// Unknown subcommands are looked up as txe-<name> extensions.
	if name := flag.Arg(0); name != "" && !registered(commander, name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

// registered reports whether name is a subcommand of c.
func registered(c *subcommands.Commander, name string) bool {
	found := false
	c.VisitCommands(func(_ *subcommands.CommandGroup, sc subcommands.Command) {
		if sc.Name() == name {
			found = true
		}
	})
	return found
}
