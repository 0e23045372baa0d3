/*
pg-anonymous

A streaming anonymiser for PostgreSQL plain-text dump files from the
`pg_dump` command, which rewrites column values using per-table,
per-column replacement templates set out in a settings file.

The tool takes advantage of the structure of `COPY` blocks in dump
files, that is the tab-separated data lines between a `COPY
<schema>.<tablename> (...column list...) FROM stdin;` header and a `\.`
terminating line, to separate each line into columns and replace the
configured columns. Every other line of the dump, including the COPY
header and terminator themselves, is passed through unchanged, so the
output restores exactly like the input would, just with anonymised
data.

Processing is single-pass and line-oriented; memory use is bounded by
one line of the dump regardless of file size.

# Overview

The anonymiser can be used in a chain of pipes with `pg_dump` or
`pg_restore`, for example:

	pg_dump dbname -U <user> | \
	    ./pg-anonymous -s settings.toml

or to anonymise a pg_dump custom format (`-Fc`) dump file to stdout:

	pg_restore -f - /tmp/test.sqlc | \
	    ./pg-anonymous -s settings.toml

or dump, anonymise and load:

	pg_restore -f - /tmp/test.sqlc | \
	    ./pg-anonymous -s settings.toml | \
	        psql -d <dbname> -U <user>

Diagnostics are written to stderr; use `-q` to restrict them to
warnings and errors.

# Running the programme

	Usage:
	  pg-anonymous : a postgresql dump file anonymiser.

	Anonymise a postgresql dump file using a settings file of per-table,
	per-column {{FUNC(...)}} replacement templates in toml or yaml format.

	pg-anonymous -s <settings.toml> [-o output or stdout] [input or stdin]

	Application Options:
	  -s, --settings= settings file of anonymisation rules (toml or yaml)
	  -o, --output=   output file (otherwise stdout)
	  -q, --quiet     only log warnings and errors

	Help Options:
	  -h, --help      Show this help message

	Arguments:
	  Input:          input file or stdin

# An example settings file

Rules are declared per schema, table and column. Each rule value is a
template: literal text with embedded {{FUNC(...)}} tags. In toml:

	[rules.public.users]
	email = "{{HASH(42)}}@anon.test"
	age = "{{RAND(18, 70)}}"
	city = "{{PICK(London, Paris, Berlin)}}"
	uuid = "{{UUID}}"

	[rules.example_schema.events]
	note = "{{IF({{MATCHES(kind, audit.*)}}, EQ, true, {{NONE}}, redacted)}}"

or the same rules in yaml (chosen by the file extension):

	rules:
	  public:
	    users:
	      email: "{{HASH(42)}}@anon.test"

# Template functions

	NONE                        pass the value through unchanged
	RAND(min, max)              uniform random integer in [min, max]
	PICK(a, b, ...)             uniform random choice of an option
	REGEX(pattern, replacement) replace all pattern matches in the value;
	                            the replacement is itself a template,
	                            re-evaluated per row, and may use $1-style
	                            backreferences
	HASH(salt)                  deterministic non-negative decimal hash of
	                            the value, reproducible across runs
	MATCHES(column, pattern)    "true"/"false": does the named column's
	                            original value match pattern in full
	LITERAL(text)               text verbatim, an escape hatch for text
	                            containing commas or braces
	IF(cond, op, value, t, f)   evaluate the cond template and compare
	                            with value using EQ, NEQ or IN (a comma
	                            separated list); apply template t or f
	UUID                        a freshly generated random uuid

Tags nest, so a replacement or branch argument may contain whole
templates, for example:

	{{REGEX(@.*, @{{PICK(example.com, example.org)}})}}

Rules are applied to a row in declared column order and each rule
receives the current working value of its own column. Cross-column
lookups (MATCHES) always see the row's original values, never a value
already anonymised earlier in the same row.

Malformed templates never stop a run: unknown functions, bad argument
counts and uncompilable patterns are logged and degrade to an empty
replacement. Rows wider or narrower than the declared column list have
rules applied up to the shorter length, with remaining fields passed
through unchanged.
*/
package main
