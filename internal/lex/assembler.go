package lex

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// patAct is one rule contributed to a state: its source regex (or, for
// literals, the literal text to be regexp-escaped), the action to run when
// it wins, and the ordering category it falls into.
type patAct struct {
	src       string
	hasAction bool
	literal   bool
	act       Action
}

// masterPattern is the result of assembling all rules for a single state
// into one compiled alternation. groupRule maps each capture group of the
// compiled pattern (1-based group g at groupRule[g-1]) back to the index of
// the rule whose alternative that group wraps, or -1 for a group that the
// rule's own pattern contains internally.
type masterPattern struct {
	re        *regexp.Regexp
	actions   []Action
	groupRule []int
}

// orderRules sorts the given rules according to the three-rule discipline:
//  1. rules with an action, in declaration order
//  2. rules without an action, by decreasing source length
//  3. literal rules, in declaration order, after all named patterns
//
// sort.SliceStable preserves declaration order within each bucket.
func orderRules(rules []patAct) []patAct {
	ordered := make([]patAct, len(rules))
	copy(ordered, rules)

	rank := func(p patAct) int {
		switch {
		case p.literal:
			return 2
		case !p.hasAction:
			return 1
		default:
			return 0
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := rank(ordered[i]), rank(ordered[j])
		if ri != rj {
			return ri < rj
		}
		if ri == 1 {
			// bucket 2: decreasing source length
			li, lj := utf8.RuneCountInString(ordered[i].src), utf8.RuneCountInString(ordered[j].src)
			if li != lj {
				return li > lj
			}
		}
		return false
	})

	return ordered
}

// stripVerbose removes the whitespace and #-comments that verbose-mode
// patterns may carry. Go's regexp has no equivalent of a VERBOSE/(?x) flag,
// so the stripping happens textually before compilation: unescaped
// whitespace is deleted, an unescaped # starts a comment running to end of
// line, and both are left alone inside a character class.
func stripVerbose(src string) string {
	var sb strings.Builder
	inClass := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '\\' && i+1 < len(src):
			sb.WriteByte(c)
			i++
			sb.WriteByte(src[i])
		case inClass:
			sb.WriteByte(c)
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
			sb.WriteByte(c)
		case c == '#':
			for i+1 < len(src) && src[i+1] != '\n' {
				i++
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			// ignored outside a class
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// assembleMasterPattern composes rules into a single compiled regular
// expression, per component A: each rule is wrapped in its own (numbered)
// capturing group and the groups are joined by alternation, in the order
// orderRules establishes. Go's regexp package disallows duplicate named
// capture groups across alternation, so instead of naming the groups by
// token kind, the groupRule index table maps a winning capture group back to
// the rule (and so the Action) that should fire -- including accounting for
// any capture groups a rule's own pattern contains.
//
// When verbose is true (the default), each pattern is stripped of comments
// and insignificant whitespace before compilation; see stripVerbose.
//
// Validation: a rule whose pattern fails to compile, or that matches the
// empty string, is a fatal configuration error, reported here before any
// scanning begins.
func assembleMasterPattern(rules []patAct, verbose bool) (*masterPattern, error) {
	ordered := orderRules(rules)

	var sb strings.Builder
	actions := make([]Action, len(ordered))
	var groupRule []int

	for i, r := range ordered {
		src := r.src
		if r.literal {
			src = regexp.QuoteMeta(src)
		} else if verbose {
			src = stripVerbose(src)
		}

		solo, err := regexp.Compile("^(?s:" + src + ")")
		if err != nil {
			return nil, fmt.Errorf("pattern %d (%q) does not compile: %w", i, r.src, err)
		}
		if solo.MatchString("") {
			return nil, fmt.Errorf("pattern %d (%q) matches the empty string", i, r.src)
		}

		groupRule = append(groupRule, i)
		for j := 0; j < solo.NumSubexp(); j++ {
			groupRule = append(groupRule, -1)
		}

		sb.WriteString("(" + src + ")")
		if i+1 < len(ordered) {
			sb.WriteRune('|')
		}
		actions[i] = r.act
	}

	full := "^(?s:" + sb.String() + ")"
	compiled, err := regexp.Compile(full)
	if err != nil {
		return nil, fmt.Errorf("composing token regexes: %w", err)
	}

	return &masterPattern{re: compiled, actions: actions, groupRule: groupRule}, nil
}
