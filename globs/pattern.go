package globs

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultWeight is the weight of a pattern declared without one.
const DefaultWeight = 50

// MaxWeight is the highest weight a pattern can carry.
const MaxWeight = 100

var (
	// ErrEmptyPattern is returned when a pattern has no characters.
	ErrEmptyPattern = errors.New("empty glob pattern")
	// ErrInvalidPattern is returned when a wildcard pattern cannot be compiled.
	ErrInvalidPattern = errors.New("invalid glob pattern")
)

type patternKind int

const (
	kindExact patternKind = iota
	kindSuffix
	kindPrefix
	kindSubstring
	kindWildcard
)

// Pattern is a filename pattern owned by a mime type.
type Pattern struct {
	pattern       string
	typeName      string
	weight        int
	caseSensitive bool

	kind     patternKind
	literal  string
	compiled glob.Glob
}

// NewPattern creates a pattern for typeName. A weight outside 1..100 is
// replaced by DefaultWeight (below) or MaxWeight (above). Case-insensitive
// patterns are stored lower-cased.
func NewPattern(pattern, typeName string, weight int, caseSensitive bool) (*Pattern, error) {
	if pattern == "" {
		return nil, ErrEmptyPattern
	}
	switch {
	case weight <= 0:
		weight = DefaultWeight
	case weight > MaxWeight:
		weight = MaxWeight
	}
	if !caseSensitive {
		pattern = strings.ToLower(pattern)
	}

	p := &Pattern{
		pattern:       pattern,
		typeName:      typeName,
		weight:        weight,
		caseSensitive: caseSensitive,
	}
	if err := p.classify(); err != nil {
		return nil, err
	}
	return p, nil
}

// classify picks the cheapest way to evaluate the pattern.
func (p *Pattern) classify() error {
	s := p.pattern
	stars := strings.Count(s, "*")
	plain := !strings.ContainsAny(s, "?[")

	switch {
	case plain && stars == 0:
		p.kind = kindExact
		p.literal = s
	case plain && stars == 1 && s[0] == '*':
		p.kind = kindSuffix
		p.literal = s[1:]
	case plain && stars == 1 && s[len(s)-1] == '*':
		p.kind = kindPrefix
		p.literal = s[:len(s)-1]
	case plain && stars == 2 && len(s) > 2 && s[0] == '*' && s[len(s)-1] == '*':
		p.kind = kindSubstring
		p.literal = s[1 : len(s)-1]
	default:
		g, err := glob.Compile(toGlobSyntax(s))
		if err != nil {
			return fmt.Errorf("%w %q: %v", ErrInvalidPattern, s, err)
		}
		p.kind = kindWildcard
		p.compiled = g
	}
	return nil
}

// toGlobSyntax rewrites shell syntax for gobwas/glob. Braces are literal in
// shell patterns but alternation in gobwas. A bracket expression may mix
// ranges and single characters in the shell ("[1-9j]") while gobwas takes
// either one range or a plain list, so ranges are expanded into lists.
func toGlobSyntax(s string) string {
	if !strings.ContainsAny(s, "{}[") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		switch rs[i] {
		case '{', '}':
			b.WriteByte('\\')
			b.WriteRune(rs[i])
		case '[':
			end := slices.Index(rs[i+1:], ']')
			if end < 0 {
				b.WriteRune(rs[i])
				continue
			}
			writeClass(&b, rs[i+1:i+1+end])
			i += end + 1
		default:
			b.WriteRune(rs[i])
		}
	}
	return b.String()
}

func writeClass(b *strings.Builder, class []rune) {
	b.WriteByte('[')
	j := 0
	if len(class) > 0 && (class[0] == '!' || class[0] == '^') {
		b.WriteByte('!')
		j = 1
	}
	for ; j < len(class); j++ {
		if j+2 < len(class) && class[j+1] == '-' {
			for r := class[j]; r <= class[j+2]; r++ {
				b.WriteRune(r)
			}
			j += 2
			continue
		}
		b.WriteRune(class[j])
	}
	b.WriteByte(']')
}

// Pattern returns the pattern text (lower-cased when case-insensitive).
func (p *Pattern) Pattern() string { return p.pattern }

// TypeName returns the owning mime type.
func (p *Pattern) TypeName() string { return p.typeName }

// Weight returns the pattern weight.
func (p *Pattern) Weight() int { return p.weight }

// CaseSensitive reports whether the pattern is matched case-sensitively.
func (p *Pattern) CaseSensitive() bool { return p.caseSensitive }

// MatchFileName reports whether fileName (a base name, without directories)
// matches the pattern.
func (p *Pattern) MatchFileName(fileName string) bool {
	if !p.caseSensitive {
		fileName = strings.ToLower(fileName)
	}
	switch p.kind {
	case kindExact:
		return fileName == p.literal
	case kindSuffix:
		return strings.HasSuffix(fileName, p.literal)
	case kindPrefix:
		return strings.HasPrefix(fileName, p.literal)
	case kindSubstring:
		return strings.Contains(fileName, p.literal)
	default:
		return p.compiled.Match(fileName)
	}
}

// isFastPattern reports whether s has the shape "*.ext" with no other
// wildcard, bracket or dot.
func isFastPattern(s string) bool {
	return strings.HasPrefix(s, "*.") &&
		strings.LastIndexByte(s, '*') == 0 &&
		strings.LastIndexByte(s, '.') == 1 &&
		!strings.ContainsAny(s, "?[")
}

// IsSimpleSuffix reports whether the pattern is of the form "*.ext" with no
// further wildcards, returning "ext".
func IsSimpleSuffix(pattern string) (string, bool) {
	if !strings.HasPrefix(pattern, "*.") || len(pattern) < 3 {
		return "", false
	}
	rest := pattern[2:]
	if strings.ContainsAny(rest, "*?[") {
		return "", false
	}
	return rest, true
}
