package main

import (
	"errors"
	"regexp"
	"strings"
)

// copyRegex recognises the COPY header of a pg_dump table block, for
// example
//
//	COPY public.users (id, "email") FROM stdin;
//
// Matching is case insensitive and the column list is optional
var copyRegex = regexp.MustCompile(`(?i)^\s*COPY\s+([\w.]+)\s*(\([^;]+\))?\s+FROM\s+stdin\s*;\s*$`)

// endCopyRegex recognises the "\." line terminating a COPY block
var endCopyRegex = regexp.MustCompile(`^\s*\\\.\s*$`)

// ErrNoDumpTable reports that a line is not a COPY header
var ErrNoDumpTable = errors.New("not a dump table")

// DumpTable describes the COPY block currently being read from a
// pg_dump file
type DumpTable struct {
	TableName   string
	columnNames []string
	lines       int
	initialised bool
}

// NewDumpTable initialises a dump table from a "COPY" line of a
// pg_dump file, such as
//
//	COPY example_schema.events (id, flags, data) FROM stdin;
//
// returning ErrNoDumpTable for any other line. Every syntactically
// valid header initialises a table, whether or not any rules are
// configured for it, so that the data lines of uninteresting tables
// are never themselves mistaken for headers
func NewDumpTable(copyLine string) (*DumpTable, error) {

	d := new(DumpTable)

	matches := copyRegex.FindStringSubmatch(copyLine)
	if matches == nil {
		return d, ErrNoDumpTable
	}

	d.TableName = matches[1]
	d.columnNames = parseCopyColumns(matches[2])

	// mark the struct as initialised
	d.initialised = true

	return d, nil
}

// parseCopyColumns extracts the column names from the parenthesised
// part of a COPY header, stripping spaces and double quotes and
// dropping empty segments. An absent column list yields no columns,
// in which case no per-column rules apply for the block
func parseCopyColumns(raw string) []string {
	start := strings.IndexByte(raw, '(')
	end := strings.LastIndexByte(raw, ')')
	if start == -1 || end <= start {
		return nil
	}
	inner := strings.NewReplacer(" ", "", `"`, "").Replace(raw[start+1 : end])
	columns := []string{}
	for _, c := range strings.Split(inner, ",") {
		if c != "" {
			columns = append(columns, c)
		}
	}
	return columns
}

// LineSplitter returns the tab-separated fields of a data line and
// true while the table is still being read, or false on the "\."
// terminator. Field content is not unescaped: every literal tab byte
// separates fields
func (dt *DumpTable) LineSplitter(line string) ([]string, bool) {
	if endCopyRegex.MatchString(line) {
		return nil, false
	}
	dt.lines++
	return strings.Split(line, "\t"), true
}

// Inited returns true if the DumpTable has been successfully
// initialised
func (dt *DumpTable) Inited() bool {
	return dt.initialised
}

// ColumnNames returns the DumpTable's column names
func (dt *DumpTable) ColumnNames() []string {
	return dt.columnNames
}
