package main

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewDumpTable(t *testing.T) {

	dt, err := NewDumpTable("COPY public.users (id, email) FROM stdin;")
	if err != nil {
		t.Fatalf("could not init dump table: %s", err)
	}
	if !dt.Inited() {
		t.Error("dump table should be initialised")
	}
	if dt.TableName != "public.users" {
		t.Errorf("unexpected table name %s", dt.TableName)
	}
	if !reflect.DeepEqual(dt.ColumnNames(), []string{"id", "email"}) {
		t.Errorf("unexpected columns %v", dt.ColumnNames())
	}
}

func TestNewDumpTableCaseAndQuotes(t *testing.T) {

	dt, err := NewDumpTable(`  copy Public.Users ("id" , email,) from STDIN ;  `)
	if err != nil {
		t.Fatalf("could not init dump table: %s", err)
	}
	if dt.TableName != "Public.Users" {
		t.Errorf("unexpected table name %s", dt.TableName)
	}
	// quotes and spaces stripped, empty segments dropped
	if !reflect.DeepEqual(dt.ColumnNames(), []string{"id", "email"}) {
		t.Errorf("unexpected columns %v", dt.ColumnNames())
	}
}

func TestNewDumpTableNoColumnList(t *testing.T) {

	dt, err := NewDumpTable("COPY public.logs FROM stdin;")
	if err != nil {
		t.Fatalf("could not init dump table: %s", err)
	}
	if !dt.Inited() {
		t.Error("dump table without a column list should still initialise")
	}
	if len(dt.ColumnNames()) != 0 {
		t.Errorf("expected no columns, got %v", dt.ColumnNames())
	}
}

func TestNewDumpTableUnqualified(t *testing.T) {

	dt, err := NewDumpTable("COPY users (id) FROM stdin;")
	if err != nil {
		t.Fatalf("could not init dump table: %s", err)
	}
	if dt.TableName != "users" {
		t.Errorf("unexpected table name %s", dt.TableName)
	}
}

func TestNewDumpTableNotACopyLine(t *testing.T) {

	for _, line := range []string{
		"SELECT 1;",
		"",
		"CREATE TABLE public.users (id integer);",
		"COPY public.users (id, email) TO stdout;",
		"1\tjohn@example.com",
	} {
		_, err := NewDumpTable(line)
		if !errors.Is(err, ErrNoDumpTable) {
			t.Errorf("line %q should not init a dump table, got %v", line, err)
		}
	}
}

func TestLineSplitter(t *testing.T) {

	dt, err := NewDumpTable("COPY public.users (id, email) FROM stdin;")
	if err != nil {
		t.Fatalf("could not init dump table: %s", err)
	}

	fields, ok := dt.LineSplitter("1\tjohn@example.com")
	if !ok {
		t.Error("data line should report the table still being read")
	}
	if !reflect.DeepEqual(fields, []string{"1", "john@example.com"}) {
		t.Errorf("unexpected fields %v", fields)
	}

	// terminator, including whitespace-surrounded
	for _, line := range []string{`\.`, ` \. `, "\t\\."} {
		if _, ok := dt.LineSplitter(line); ok {
			t.Errorf("line %q should terminate the table", line)
		}
	}
}
