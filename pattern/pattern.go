// Package pattern compiles the glob patterns used for wildcard invalidation.
//
// Only '*' is special: it matches any run of characters, including none and
// including ':' separators. Every other character is literal, so key segments
// containing regexp metacharacters ("role.1", "a+b") match only themselves.
// A pattern must match the whole key, not a substring of it.
package pattern

import (
	"regexp"
	"strings"
)

// Wildcard is the only special character in a pattern.
const Wildcard = "*"

// Pattern is a compiled glob.
type Pattern struct {
	glob string
	re   *regexp.Regexp
}

// Compile translates glob into an anchored regular expression. It cannot
// fail: literal pieces are escaped with regexp.QuoteMeta before joining.
func Compile(glob string) *Pattern {
	parts := strings.Split(glob, Wildcard)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return &Pattern{
		glob: glob,
		re:   regexp.MustCompile("^" + strings.Join(parts, ".*") + "$"),
	}
}

// Match reports whether key matches the pattern in full.
func (p *Pattern) Match(key string) bool {
	if !p.HasWildcard() {
		return key == p.glob
	}
	return p.re.MatchString(key)
}

// HasWildcard reports whether the pattern can match more than one key.
func (p *Pattern) HasWildcard() bool { return HasWildcard(p.glob) }

func (p *Pattern) String() string { return p.glob }

// HasWildcard reports whether s contains a wildcard.
func HasWildcard(s string) bool {
	return strings.Contains(s, Wildcard)
}
