package main

import (
	"fmt"
	"io"
	"os"
)

func main() {

	// parse flags and open the input and output streams
	args, settingsPath, err := parseFlags()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// close file-backed streams when done
	defer func() {
		if closer, ok := args.dumpFile.(io.Closer); ok && args.dumpFile != io.Reader(os.Stdin) {
			closer.Close()
		}
		if closer, ok := args.output.(io.Closer); ok && args.output != io.Writer(os.Stdout) {
			closer.Close()
		}
	}()

	// load settings and compile the rule catalog
	settings, err := LoadSettings(settingsPath)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	args.catalog = NewRuleCatalog(settings)

	// run the anonymiser
	err = Anonymise(args)
	if err != nil {
		fmt.Printf("Anonymisation error: %s\n", err)
		os.Exit(1)
	}
}
