package main

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// hash mixing constants for the HASH rule (32 bit FNV-1a)
const (
	hashBasis uint32 = 2166136261
	hashPrime uint32 = 16777619
)

// RowContext is a read-only view of one data row before any rule has
// run, letting rules look up other columns of the same row by name
type RowContext struct {
	columnNames []string
	original    []string
}

// NewRowContext binds a COPY block's column names to the original
// (pre-anonymisation) snapshot of a row's fields
func NewRowContext(columnNames, original []string) *RowContext {
	return &RowContext{columnNames: columnNames, original: original}
}

// Get returns the original value of the named column. Unknown columns
// and columns beyond the row's width return an empty string
func (c *RowContext) Get(column string) string {
	if c == nil {
		return ""
	}
	for i, name := range c.columnNames {
		if name == column {
			if i < len(c.original) {
				return c.original[i]
			}
			return ""
		}
	}
	return ""
}

// Ruler is the interface fulfilled by every compiled template node.
// Apply never fails: malformed templates compile down to empty
// literals and runtime lookup misses degrade to empty strings
type Ruler interface {
	// RuleName returns the name of the rule
	RuleName() string
	// Apply transforms a single column value
	Apply(value string, context *RowContext) string
}

// newRand returns a pseudo-random generator seeded from the process
// entropy source. Each randomised rule owns its own generator
func newRand() *rand.Rand {
	var seed int64
	if err := binary.Read(crand.Reader, binary.LittleEndian, &seed); err != nil {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// NoneRule passes the input value through unchanged
type NoneRule struct{}

// Apply returns the value as-is
func (r NoneRule) Apply(value string, context *RowContext) string {
	return value
}

// RuleName returns the name of the rule
func (r NoneRule) RuleName() string {
	return "none"
}

// StaticTextRule replaces the input value with fixed text. Literal
// runs between {{...}} tags compile to this rule
type StaticTextRule struct {
	Text string
}

// NewStaticTextRule makes a new StaticTextRule
func NewStaticTextRule(text string) *StaticTextRule {
	return &StaticTextRule{Text: text}
}

// Apply returns the fixed text regardless of input
func (r *StaticTextRule) Apply(value string, context *RowContext) string {
	return r.Text
}

// RuleName returns the name of the rule
func (r *StaticTextRule) RuleName() string {
	return "static text"
}

// RandomIntRule replaces the input value with a uniform random integer
// in [min, max] inclusive
type RandomIntRule struct {
	min, max int
	rng      *rand.Rand
}

// NewRandomIntRule makes a new RandomIntRule. Reversed bounds are
// swapped. A nil rng is seeded from the process entropy source; tests
// may inject a deterministic generator
func NewRandomIntRule(min, max int, rng *rand.Rand) *RandomIntRule {
	if min > max {
		min, max = max, min
	}
	if rng == nil {
		rng = newRand()
	}
	return &RandomIntRule{min: min, max: max, rng: rng}
}

// Apply returns a random integer between the rule bounds
func (r *RandomIntRule) Apply(value string, context *RowContext) string {
	return strconv.Itoa(r.min + r.rng.Intn(r.max-r.min+1))
}

// RuleName returns the name of the rule
func (r *RandomIntRule) RuleName() string {
	return "random int"
}

// PickRule replaces the input value with a uniform random choice from
// a fixed list of options
type PickRule struct {
	options []string
	rng     *rand.Rand
}

// NewPickRule makes a new PickRule; a nil rng is seeded from the
// process entropy source
func NewPickRule(options []string, rng *rand.Rand) *PickRule {
	if rng == nil {
		rng = newRand()
	}
	return &PickRule{options: options, rng: rng}
}

// Apply returns one of the rule options, or an empty string if there
// are none
func (r *PickRule) Apply(value string, context *RowContext) string {
	if len(r.options) == 0 {
		return ""
	}
	return r.options[r.rng.Intn(len(r.options))]
}

// RuleName returns the name of the rule
func (r *PickRule) RuleName() string {
	return "pick"
}

// RegexRule substitutes all matches of a pattern in the input value.
// The replacement is itself a compiled template, evaluated freshly
// against the row on each application, so replacements can draw on
// other rules; $1-style backreferences are expanded per match
type RegexRule struct {
	pattern     *regexp.Regexp
	replacement Ruler
}

// NewRegexRule makes a new RegexRule, failing on an uncompilable
// pattern
func NewRegexRule(pattern string, replacement Ruler) (*RegexRule, error) {
	p, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &RegexRule{pattern: p, replacement: replacement}, nil
}

// Apply evaluates the replacement template for this row and then
// substitutes every pattern match in the input value with it
func (r *RegexRule) Apply(value string, context *RowContext) string {
	replacement := r.replacement.Apply(value, context)
	return r.pattern.ReplaceAllString(value, replacement)
}

// RuleName returns the name of the rule
func (r *RegexRule) RuleName() string {
	return "regex"
}

// HashRule replaces the input value with a deterministic, salted,
// non-negative decimal hash. Identical (salt, value) pairs hash
// identically across runs and processes
type HashRule struct {
	salt uint32
}

// NewHashRule makes a new HashRule. The salt is derived from the raw
// template argument by a *31 byte fold, so any text can salt a hash
func NewHashRule(arg string) *HashRule {
	var salt uint32
	for _, c := range []byte(arg) {
		salt = salt*31 + uint32(c)
	}
	return &HashRule{salt: salt}
}

// Apply mixes the decimal rendering of the salt and then the value
// into an FNV-1a hash, masked to its low 31 bits
func (r *HashRule) Apply(value string, context *RowContext) string {
	hash := hashBasis
	for _, c := range []byte(strconv.FormatUint(uint64(r.salt), 10)) {
		hash = (hash ^ uint32(c)) * hashPrime
	}
	for _, c := range []byte(value) {
		hash = (hash ^ uint32(c)) * hashPrime
	}
	return strconv.FormatUint(uint64(hash&0x7FFFFFFF), 10)
}

// RuleName returns the name of the rule
func (r *HashRule) RuleName() string {
	return "hash"
}

// MatchesRule returns the literal "true" or "false" depending on
// whether the named column's original value matches a pattern over its
// full length. It is intended as the condition of an IF rule
type MatchesRule struct {
	column  string
	pattern *regexp.Regexp
}

// NewMatchesRule makes a new MatchesRule, failing on an uncompilable
// pattern. The pattern is anchored to match the whole column value
func NewMatchesRule(column, pattern string) (*MatchesRule, error) {
	p, err := regexp.Compile(`\A(?:` + pattern + `)\z`)
	if err != nil {
		return nil, err
	}
	return &MatchesRule{column: column, pattern: p}, nil
}

// Apply matches the column's original value, resolved through the row
// context, against the rule pattern
func (r *MatchesRule) Apply(value string, context *RowContext) string {
	if r.pattern.MatchString(context.Get(r.column)) {
		return "true"
	}
	return "false"
}

// RuleName returns the name of the rule
func (r *MatchesRule) RuleName() string {
	return "matches"
}

// ConditionalRule evaluates a condition template and compares the
// result with a literal value using one of the operators EQ, NEQ or
// IN, then applies the true or false branch template to the input
type ConditionalRule struct {
	condition Ruler
	op        string
	value     string
	trueRule  Ruler
	falseRule Ruler
}

// NewConditionalRule makes a new ConditionalRule
func NewConditionalRule(condition Ruler, op, value string, trueRule, falseRule Ruler) *ConditionalRule {
	return &ConditionalRule{
		condition: condition,
		op:        op,
		value:     value,
		trueRule:  trueRule,
		falseRule: falseRule,
	}
}

// Apply compares the evaluated condition against the rule value. For
// IN the value is a comma-separated list whose elements are trimmed of
// spaces and tabs before comparison. Unknown operators never match
func (r *ConditionalRule) Apply(value string, context *RowContext) string {
	actual := r.condition.Apply(value, context)
	match := false
	switch r.op {
	case "EQ":
		match = actual == r.value
	case "NEQ":
		match = actual != r.value
	case "IN":
		for _, element := range strings.Split(r.value, ",") {
			if strings.Trim(element, " \t") == actual {
				match = true
				break
			}
		}
	}
	if match {
		return r.trueRule.Apply(value, context)
	}
	return r.falseRule.Apply(value, context)
}

// RuleName returns the name of the rule
func (r *ConditionalRule) RuleName() string {
	return "conditional"
}

// UUIDRule replaces the input value with a freshly generated random
// uuid on each application
type UUIDRule struct{}

// Apply returns a new uuid
func (r UUIDRule) Apply(value string, context *RowContext) string {
	return uuid.NewString()
}

// RuleName returns the name of the rule
func (r UUIDRule) RuleName() string {
	return "uuid"
}

// CompositeRule concatenates the results of its child rules in
// declared order. Every compiled template is a CompositeRule at its
// root, with static text and function rules as children
type CompositeRule struct {
	rules []Ruler
}

// addRule appends a child rule
func (r *CompositeRule) addRule(rule Ruler) {
	r.rules = append(r.rules, rule)
}

// Apply concatenates the child rule results, each applied to the same
// input value and row context
func (r *CompositeRule) Apply(value string, context *RowContext) string {
	var b strings.Builder
	for _, rule := range r.rules {
		b.WriteString(rule.Apply(value, context))
	}
	return b.String()
}

// RuleName returns the name of the rule
func (r *CompositeRule) RuleName() string {
	return "composite"
}
