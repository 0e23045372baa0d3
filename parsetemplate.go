package main

import (
	"strconv"
	"strings"
	"unicode"
)

// parseTemplate compiles a raw template string into a composite rule.
// Literal text between {{FUNC(...)}} tags becomes static text nodes
// and each tag becomes a function rule. Tags nest: the closing braces
// of a tag are found by counting brace depth, so arguments may contain
// whole {{...}} templates of their own. Compilation always succeeds;
// malformed tags degrade to empty literals with a logged warning
func parseTemplate(raw string) *CompositeRule {

	composite := &CompositeRule{}
	lastPos := 0

	for i := 0; i+1 < len(raw); {

		if raw[i] != '{' || raw[i+1] != '{' {
			i++
			continue
		}

		// emit the literal run before this tag
		if i > lastPos {
			composite.addRule(NewStaticTextRule(raw[lastPos:i]))
		}

		// find the matching close, starting at depth 2 for the two
		// opening braces already consumed
		start := i + 2
		depth := 2
		j := start
		for ; j < len(raw); j++ {
			switch raw[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth == 0 {
				break
			}
		}
		if depth != 0 {
			// unterminated tag: drop it and everything after it
			log.Warnw("unterminated template tag", "template", raw)
			return composite
		}

		// the content between the braces, exclusive of the two
		// closing characters, is the function call definition
		composite.addRule(newFuncRule(raw[start : j-1]))
		i = j + 1
		lastPos = i
	}

	// trailing literal text after the last tag
	if lastPos < len(raw) {
		composite.addRule(NewStaticTextRule(raw[lastPos:]))
	}

	return composite
}

// newFuncRule builds a rule from the text between a {{ }} pair, of the
// form NAME or NAME(arg, arg, ...). Unknown names, wrong argument
// counts and uncompilable patterns all degrade to an empty literal
// with a logged warning rather than failing catalog compilation
func newFuncRule(def string) Ruler {

	name := def
	argStr := ""
	if p := strings.IndexByte(def, '('); p != -1 {
		name = def[:p]
		if q := strings.LastIndexByte(def, ')'); q > p {
			argStr = def[p+1 : q]
		}
	}
	name = stripSpace(name)
	args := splitArgs(argStr)

	switch {
	case name == "NONE":
		return NoneRule{}

	case name == "RAND" && len(args) == 2:
		min, errMin := strconv.Atoi(args[0])
		max, errMax := strconv.Atoi(args[1])
		if errMin != nil || errMax != nil {
			log.Warnw("RAND bounds must be integers", "args", args)
			return NewStaticTextRule("")
		}
		return NewRandomIntRule(min, max, nil)

	case name == "PICK":
		return NewPickRule(args, nil)

	case name == "REGEX" && len(args) >= 2:
		rule, err := NewRegexRule(args[0], parseTemplate(args[1]))
		if err != nil {
			log.Warnw("REGEX pattern does not compile", "pattern", args[0], "error", err)
			return NewStaticTextRule("")
		}
		return rule

	case name == "HASH" && len(args) == 1:
		return NewHashRule(args[0])

	case name == "MATCHES" && len(args) == 2:
		rule, err := NewMatchesRule(args[0], args[1])
		if err != nil {
			log.Warnw("MATCHES pattern does not compile", "pattern", args[1], "error", err)
			return NewStaticTextRule("")
		}
		return rule

	case name == "IF" && len(args) == 5:
		return NewConditionalRule(
			parseTemplate(args[0]),
			args[1],
			args[2],
			parseTemplate(args[3]),
			parseTemplate(args[4]),
		)

	case name == "LITERAL":
		// the raw argument text, unsplit and untrimmed, so commas
		// and spacing survive verbatim
		return NewStaticTextRule(argStr)

	case name == "UUID":
		return UUIDRule{}
	}

	log.Warnw("unknown template function or bad argument count",
		"name", name, "args", len(args))
	return NewStaticTextRule("")
}

// splitArgs splits a function argument string on commas at nesting
// depth zero only, where braces and parentheses raise the depth, so
// commas inside nested templates or parenthesised expressions are not
// split points. Each argument is trimmed of spaces and tabs. At least
// one (possibly empty) argument is always returned
func splitArgs(s string) []string {
	args := []string{}
	depth := 0
	var current strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '{', '(':
			depth++
		case '}', ')':
			depth--
		}
		if c == ',' && depth == 0 {
			args = append(args, strings.Trim(current.String(), " \t"))
			current.Reset()
			continue
		}
		current.WriteByte(c)
	}
	return append(args, strings.Trim(current.String(), " \t"))
}

// stripSpace removes all whitespace from a string
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
