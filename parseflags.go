package main

import (
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"
	"go.uber.org/zap/zapcore"
)

var usage = `: a postgresql dump file anonymiser.

Anonymise a postgresql dump file using a settings file of per-table,
per-column {{FUNC(...)}} replacement templates in toml or yaml format.

pg-anonymous -s <settings.toml> [-o output or stdout] [input or stdin]`

// Options set the programme flag options
type Options struct {
	Settings string `short:"s" long:"settings" required:"true" description:"settings file of anonymisation rules (toml or yaml)"`
	Output   string `short:"o" long:"output" description:"output file (otherwise stdout)"`
	Quiet    bool   `short:"q" long:"quiet" description:"only log warnings and errors"`
	Args     struct {
		Input string `default:"" description:"input file or stdin"`
	} `positional-args:"yes"`
}

// parseFlags parses the command line options and opens the input and
// output streams, taken out of main to allow testing
func parseFlags() (args anonArgs, settingsPath string, err error) {

	var options Options
	var parser = flags.NewParser(&options, flags.Default)
	parser.Usage = usage

	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}

	if options.Quiet {
		log = newLogger(zapcore.WarnLevel)
	}

	settingsPath = options.Settings

	// open stdin or file for reading
	if options.Args.Input == "" {
		args.dumpFile = os.Stdin
	} else {
		filer, err := os.Open(options.Args.Input)
		if err != nil {
			return args, settingsPath,
				fmt.Errorf("could not open dump file %s: %w", options.Args.Input, err)
		}
		args.dumpFile = filer
	}

	// open stdout or file for writing
	if options.Output == "" || options.Output == "-" {
		args.output = os.Stdout
	} else {
		filer, err := os.Create(options.Output)
		if err != nil {
			return args, settingsPath,
				fmt.Errorf("could not create file %s: %w", options.Output, err)
		}
		args.output = filer
	}

	return args, settingsPath, nil
}
