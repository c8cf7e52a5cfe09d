// Package magic evaluates content-sniffing rules against byte buffers.
//
// A Rule is a predicate over a byte range (a literal string, a regular
// expression or a fixed-width integer) with optional child rules. A Rule
// matches when its predicate matches and, if it has children, at least one
// child matches as well. Rules built from malformed parameters never match.
package magic

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidRule is wrapped by Rule.Err for rules that can never match.
var ErrInvalidRule = errors.New("invalid magic rule")

// RuleType selects the predicate a Rule evaluates.
type RuleType int

const (
	Invalid RuleType = iota
	String
	RegExp
	Host16
	Host32
	Big16
	Big32
	Little16
	Little32
	Byte
)

var ruleTypeNames = [...]string{
	Invalid:  "invalid",
	String:   "string",
	RegExp:   "regexp",
	Host16:   "host16",
	Host32:   "host32",
	Big16:    "big16",
	Big32:    "big32",
	Little16: "little16",
	Little32: "little32",
	Byte:     "byte",
}

// ParseRuleType maps a definition-file type name to a RuleType.
func ParseRuleType(s string) (RuleType, bool) {
	for t, name := range ruleTypeNames {
		if t != int(Invalid) && name == s {
			return RuleType(t), true
		}
	}
	return Invalid, false
}

func (t RuleType) String() string {
	if t < 0 || int(t) >= len(ruleTypeNames) {
		return ruleTypeNames[Invalid]
	}
	return ruleTypeNames[t]
}

// size returns the width in bytes of numeric types, or 0.
func (t RuleType) size() int {
	switch t {
	case Byte:
		return 1
	case Host16, Big16, Little16:
		return 2
	case Host32, Big32, Little32:
		return 4
	}
	return 0
}

func (t RuleType) byteOrder() binary.ByteOrder {
	switch t {
	case Big16, Big32:
		return binary.BigEndian
	case Little16, Little32:
		return binary.LittleEndian
	}
	return binary.NativeEndian
}

// Rule is an immutable magic predicate with optional submatches.
type Rule struct {
	typ      RuleType
	value    string
	mask     string
	start    int
	end      int
	children []*Rule

	pattern     []byte
	patternMask []byte
	number      uint32
	numberMask  uint32
	re          *regexp.Regexp

	err error
}

// NewRule builds a rule searching data[start..end] (inclusive). Construction
// never fails: a rule with a malformed value, mask or range is returned in
// a permanently non-matching state and reports why through Err.
func NewRule(typ RuleType, value string, start, end int, mask string, children ...*Rule) *Rule {
	r := &Rule{
		typ:      typ,
		value:    value,
		mask:     mask,
		start:    start,
		end:      end,
		children: children,
	}
	r.err = r.compile()
	return r
}

func (r *Rule) compile() error {
	if r.value == "" {
		return r.invalid("empty value")
	}
	if r.start < 0 || r.end < r.start {
		return r.invalid("bad offset range %d:%d", r.start, r.end)
	}

	switch r.typ {
	case String:
		return r.compileString()
	case RegExp:
		re, err := regexp.Compile("(?ms)" + r.value)
		if err != nil {
			return r.invalid("%v", err)
		}
		r.re = re
		return nil
	}
	return r.compileNumber()
}

func (r *Rule) compileString() error {
	r.pattern = unescape(r.value)
	if len(r.pattern) == 0 {
		return r.invalid("empty value")
	}
	if r.mask == "" {
		return nil
	}
	if len(r.mask) < 4 || !strings.HasPrefix(r.mask, "0x") {
		return r.invalid("mask %q is not a 0x hex string", r.mask)
	}
	m, err := hex.DecodeString(r.mask[2:])
	if err != nil {
		return r.invalid("mask %q: %v", r.mask, err)
	}
	if len(m) > len(r.pattern) {
		return r.invalid("mask %q is longer than the value", r.mask)
	}
	for len(m) < len(r.pattern) {
		m = append(m, 0xff)
	}
	r.patternMask = m
	return nil
}

func (r *Rule) compileNumber() error {
	bits := r.typ.size() * 8
	if bits == 0 {
		return r.invalid("unknown type")
	}
	n, err := strconv.ParseUint(r.value, 0, bits)
	if err != nil {
		return r.invalid("value %q: %v", r.value, err)
	}
	r.number = uint32(n)
	r.numberMask = ^uint32(0) >> (32 - bits)
	if r.mask != "" {
		m, err := strconv.ParseUint(r.mask, 0, bits)
		if err != nil {
			return r.invalid("mask %q: %v", r.mask, err)
		}
		r.numberMask = uint32(m)
	}
	return nil
}

func (r *Rule) invalid(format string, args ...any) error {
	return fmt.Errorf("%w (%s %q): %s", ErrInvalidRule, r.typ, r.value, fmt.Sprintf(format, args...))
}

// Type returns the predicate type.
func (r *Rule) Type() RuleType { return r.typ }

// Value returns the value as declared, before escape decoding.
func (r *Rule) Value() string { return r.value }

// Mask returns the mask as declared, or "".
func (r *Rule) Mask() string { return r.mask }

// StartPos returns the first offset searched.
func (r *Rule) StartPos() int { return r.start }

// EndPos returns the last offset searched.
func (r *Rule) EndPos() int { return r.end }

// Submatches returns the child rules.
func (r *Rule) Submatches() []*Rule { return r.children }

// IsValid reports whether the rule can ever match.
func (r *Rule) IsValid() bool { return r.err == nil }

// Err describes why the rule is invalid, or returns nil.
func (r *Rule) Err() error { return r.err }

// Matches reports whether data satisfies the rule and, when the rule has
// submatches, at least one of them.
func (r *Rule) Matches(data []byte) bool {
	if r.err != nil || !r.matchOwn(data) {
		return false
	}
	if len(r.children) == 0 {
		return true
	}
	for _, c := range r.children {
		if c.Matches(data) {
			return true
		}
	}
	return false
}

func (r *Rule) matchOwn(data []byte) bool {
	switch r.typ {
	case String:
		return r.matchString(data)
	case RegExp:
		return r.matchRegExp(data)
	}
	return r.matchNumber(data)
}

func (r *Rule) matchString(data []byte) bool {
	n := len(r.pattern)
	for off := r.start; off <= r.end; off++ {
		if off+n > len(data) {
			return false
		}
		window := data[off : off+n]
		if r.patternMask == nil {
			if bytes.Equal(window, r.pattern) {
				return true
			}
			continue
		}
		if maskedEqual(window, r.pattern, r.patternMask) {
			return true
		}
	}
	return false
}

func maskedEqual(a, b, mask []byte) bool {
	for i := range mask {
		if a[i]&mask[i] != b[i]&mask[i] {
			return false
		}
	}
	return true
}

func (r *Rule) matchRegExp(data []byte) bool {
	if r.start > len(data) {
		return false
	}
	subject := data
	if r.end != r.start && r.end < len(data) {
		subject = data[:r.end]
	}
	return r.re.Match(subject[r.start:])
}

func (r *Rule) matchNumber(data []byte) bool {
	size := r.typ.size()
	last := min(len(data)-size, r.end)
	order := r.typ.byteOrder()
	want := r.number & r.numberMask
	for off := r.start; off <= last; off++ {
		if read(order, data[off:], size)&r.numberMask == want {
			return true
		}
	}
	return false
}

func read(order binary.ByteOrder, b []byte, size int) uint32 {
	switch size {
	case 1:
		return uint32(b[0])
	case 2:
		return uint32(order.Uint16(b))
	}
	return order.Uint32(b)
}

// ParseOffset parses "start" or "start:end" into an inclusive byte range.
func ParseOffset(s string) (start, end int, err error) {
	first, second, ranged := strings.Cut(strings.TrimSpace(s), ":")
	start, err = strconv.Atoi(first)
	if err != nil || start < 0 {
		return 0, 0, fmt.Errorf("%w: bad offset %q", ErrInvalidRule, s)
	}
	if !ranged {
		return start, start, nil
	}
	end, err = strconv.Atoi(second)
	if err != nil || end < start {
		return 0, 0, fmt.Errorf("%w: bad offset %q", ErrInvalidRule, s)
	}
	return start, end, nil
}

// unescape decodes the backslash escapes allowed in string values:
// \xHH, octal \N, \NN and \NNN, \n, \r, \t and \<char>.
func unescape(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			out = append(out, c)
			continue
		}
		i++
		c = s[i]
		switch {
		case c == 'x':
			var v byte
			for n := 0; n < 2 && i+1 < len(s); n++ {
				h, ok := fromHex(s[i+1])
				if !ok {
					break
				}
				v = v<<4 | h
				i++
			}
			out = append(out, v)
		case isOctal(c):
			v := c - '0'
			if i+1 < len(s) && isOctal(s[i+1]) {
				i++
				v = v<<3 | (s[i] - '0')
				if i+1 < len(s) && isOctal(s[i+1]) && s[i-1] <= '3' {
					i++
					v = v<<3 | (s[i] - '0')
				}
			}
			out = append(out, v)
		case c == 'n':
			out = append(out, '\n')
		case c == 'r':
			out = append(out, '\r')
		case c == 't':
			out = append(out, '\t')
		default:
			out = append(out, c)
		}
	}
	return out
}

func fromHex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func isOctal(c byte) bool { return '0' <= c && c <= '7' }
