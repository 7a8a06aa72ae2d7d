package classical

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Rules maps a single character to its replacement.
type Rules map[rune]rune

var (
	ruleSplit = regexp.MustCompile(`[,;]\s*`)
	ruleMatch = regexp.MustCompile(`([A-Za-z])\s*(?:->|=>|:)\s*([A-Za-z])`)
)

// ParseSubstitutionRules reads rules such as "A -> E, B=>N; C:D". Each rule is
// registered for both cases. Fragments that do not match are skipped.
func ParseSubstitutionRules(s string) Rules {
	rules := Rules{}
	for _, part := range ruleSplit.Split(s, -1) {
		m := ruleMatch.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		from, to := rune(m[1][0]), rune(m[2][0])
		rules[unicode.ToUpper(from)] = unicode.ToUpper(to)
		rules[unicode.ToLower(from)] = unicode.ToLower(to)
	}
	return rules
}

// ApplySubstitution replaces every character that has a rule and keeps the
// rest.
func ApplySubstitution(text string, rules Rules) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if to, ok := rules[r]; ok {
			b.WriteRune(to)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Pairs lists the rules as "from->to" strings sorted by source character.
func (r Rules) Pairs() []string {
	keys := make([]rune, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k) + "->" + string(r[k])
	}
	return out
}
