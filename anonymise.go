package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// anonArgs is the Anonymise function signature
type anonArgs struct {
	dumpFile io.Reader   // a postgresql dump via either os.Stdin or a file
	catalog  RuleCatalog // compiled per-table, per-column rules
	output   io.Writer   // output to either os.Stdout or a file
}

// Anonymise reads a postgresql plain-text dump line by line, rewriting
// the data rows of COPY blocks for tables in the catalog and emitting
// every other line unchanged. The input is read in a single streaming
// pass: memory use is bounded by one line and one row's fields,
// independent of dump size
func Anonymise(args anonArgs) error {

	scanner := bufio.NewScanner(args.dumpFile)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	// emit writes a single output line
	emit := func(line string) error {
		if _, err := io.WriteString(args.output, line+"\n"); err != nil {
			return fmt.Errorf("write error: %w", err)
		}
		return nil
	}

	// dt holds the COPY block being read; an uninitialised dt means
	// the scan is searching for the next COPY header
	dt := new(DumpTable)

	for scanner.Scan() {

		t := scanner.Text()

		if !dt.Inited() {

			// searching for a COPY header; every line passes through
			var err error
			dt, err = NewDumpTable(t)
			if err != nil && !errors.Is(err, ErrNoDumpTable) {
				return fmt.Errorf("error parsing line %s: %w", t, err)
			}
			if err := emit(t); err != nil {
				return err
			}
			continue
		}

		columns, ok := dt.LineSplitter(t)
		if !ok {
			// end of block marker: emit and resume searching
			dt = new(DumpTable)
			if err := emit(t); err != nil {
				return err
			}
			continue
		}

		// rows of tables with no configured rules, and blocks whose
		// header declared no column list, pass through unchanged
		rules := args.catalog[dt.TableName]
		if len(rules) == 0 || len(dt.ColumnNames()) == 0 {
			if err := emit(t); err != nil {
				return err
			}
			continue
		}

		// the original snapshot backs cross-column lookups for the
		// whole row; working accumulates rule output column by column
		original := make([]string, len(columns))
		copy(original, columns)
		working := columns
		context := NewRowContext(dt.ColumnNames(), original)

		// apply rules up to the shorter of the declared column list
		// and the row's actual width; remaining fields pass through
		for i, name := range dt.ColumnNames() {
			if i >= len(working) {
				break
			}
			if rule, ok := rules[name]; ok {
				working[i] = rule.Apply(working[i], context)
			}
		}

		if err := emit(strings.Join(working, "\t")); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan error: %w", err)
	}
	return nil
}
