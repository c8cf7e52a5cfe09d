package magic

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestParseRuleType(t *testing.T) {
	for _, name := range []string{"string", "regexp", "host16", "host32", "big16", "big32", "little16", "little32", "byte"} {
		typ, ok := ParseRuleType(name)
		if !ok {
			t.Errorf("ParseRuleType(%q) not recognized", name)
			continue
		}
		if typ.String() != name {
			t.Errorf("ParseRuleType(%q).String() = %q", name, typ.String())
		}
	}
	if _, ok := ParseRuleType("invalid"); ok {
		t.Error("ParseRuleType(invalid) should fail")
	}
	if _, ok := ParseRuleType("int64"); ok {
		t.Error("ParseRuleType(int64) should fail")
	}
}

func TestParseOffset(t *testing.T) {
	tests := []struct {
		in         string
		start, end int
		wantErr    bool
	}{
		{"0", 0, 0, false},
		{"257", 257, 257, false},
		{"0:64", 0, 64, false},
		{" 4:8 ", 4, 8, false},
		{"", 0, 0, true},
		{"x", 0, 0, true},
		{"-1", 0, 0, true},
		{"8:4", 0, 0, true},
		{"1:y", 0, 0, true},
	}
	for _, tt := range tests {
		start, end, err := ParseOffset(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOffset(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && (start != tt.start || end != tt.end) {
			t.Errorf("ParseOffset(%q) = %d:%d, want %d:%d", tt.in, start, end, tt.start, tt.end)
		}
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{`plain`, []byte("plain")},
		{`\x89PNG`, []byte{0x89, 'P', 'N', 'G'}},
		{`\x1`, []byte{0x01}},
		{`\xZ`, []byte{0x00, 'Z'}},
		{`\0\0`, []byte{0, 0}},
		{`\177ELF`, []byte{0x7f, 'E', 'L', 'F'}},
		{`\77`, []byte{077}},
		{`\477`, []byte{047, '7'}},
		{`a\nb\rc\td`, []byte("a\nb\rc\td")},
		{`\\ \" \q`, []byte(`\ " q`)},
		{`end\`, []byte(`end\`)},
	}
	for _, tt := range tests {
		if got := unescape(tt.in); !bytes.Equal(got, tt.want) {
			t.Errorf("unescape(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInvalidRules(t *testing.T) {
	tests := []struct {
		name string
		rule *Rule
	}{
		{"empty value", NewRule(String, "", 0, 0, "")},
		{"bad range", NewRule(String, "abc", 4, 2, "")},
		{"negative start", NewRule(String, "abc", -1, 2, "")},
		{"mask without prefix", NewRule(String, "abcd", 0, 0, "ffff")},
		{"mask too short", NewRule(String, "abcd", 0, 0, "0x")},
		{"mask not hex", NewRule(String, "abcd", 0, 0, "0xzz")},
		{"mask longer than value", NewRule(String, "ab", 0, 0, "0xffffff")},
		{"bad regexp", NewRule(RegExp, "(unclosed", 0, 0, "")},
		{"bad number", NewRule(Big16, "nope", 0, 0, "")},
		{"number too wide", NewRule(Byte, "0x100", 0, 0, "")},
		{"bad numeric mask", NewRule(Little32, "1", 0, 0, "zz")},
		{"unknown type", NewRule(Invalid, "1", 0, 0, "")},
	}
	data := bytes.Repeat([]byte("abcd"), 16)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.rule.IsValid() {
				t.Fatal("rule should be invalid")
			}
			if !errors.Is(tt.rule.Err(), ErrInvalidRule) {
				t.Errorf("Err() = %v, want ErrInvalidRule", tt.rule.Err())
			}
			if tt.rule.Matches(data) {
				t.Error("invalid rule must never match")
			}
		})
	}
}

func TestStringRule(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		start, end int
		mask       string
		data       []byte
		want       bool
	}{
		{"at offset", "%PDF-", 0, 0, "", []byte("%PDF-1.7"), true},
		{"wrong offset", "%PDF-", 1, 1, "", []byte("%PDF-1.7"), false},
		{"in range", "ustar", 250, 260, "", append(make([]byte, 257), "ustar"...), true},
		{"range exhausts buffer", "ustar", 0, 1000, "", []byte("xxustar"), true},
		{"short buffer", "GIF89a", 0, 0, "", []byte("GIF8"), false},
		{"start past buffer", "A", 10, 20, "", []byte("AAAA"), false},
		{"escaped", `\x89PNG`, 0, 0, "", []byte{0x89, 'P', 'N', 'G', 0x0d}, true},
		{"masked match", "AB", 0, 0, "0xdfdf", []byte("ab"), true},
		{"padded mask", "ABC", 0, 0, "0xdf", []byte("aBC"), true},
		{"padded mask strict tail", "ABC", 0, 0, "0xdf", []byte("abc"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRule(String, tt.value, tt.start, tt.end, tt.mask)
			if !r.IsValid() {
				t.Fatalf("rule invalid: %v", r.Err())
			}
			if got := r.Matches(tt.data); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMaskedBitsIgnored(t *testing.T) {
	// Only the high nibble of the first byte is significant.
	r := NewRule(String, `\x40Z`, 0, 0, "0xf0ff")
	for low := byte(0); low < 16; low++ {
		data := []byte{0x40 | low, 'Z'}
		if !r.Matches(data) {
			t.Errorf("Matches(%#x) = false, masked bits must not matter", data[0])
		}
	}
	if r.Matches([]byte{0x50, 'Z'}) {
		t.Error("unmasked bit change must break the match")
	}

	n := NewRule(Big16, "0x1234", 0, 0, "0xff00")
	if !n.Matches([]byte{0x12, 0x99}) {
		t.Error("numeric mask should ignore the low byte")
	}
	if n.Matches([]byte{0x13, 0x34}) {
		t.Error("numeric mask should compare the high byte")
	}
}

func TestNumberRules(t *testing.T) {
	tests := []struct {
		name       string
		typ        RuleType
		value      string
		start, end int
		data       []byte
		want       bool
	}{
		{"byte", Byte, "0x7f", 0, 0, []byte{0x7f}, true},
		{"byte octal", Byte, "0177", 0, 0, []byte{0x7f}, true},
		{"byte decimal", Byte, "127", 0, 0, []byte{0x7f}, true},
		{"big16", Big16, "0x0102", 0, 0, []byte{0x01, 0x02}, true},
		{"big16 wrong order", Big16, "0x0102", 0, 0, []byte{0x02, 0x01}, false},
		{"little16", Little16, "0x0102", 0, 0, []byte{0x02, 0x01}, true},
		{"big32", Big32, "0x1a45dfa3", 0, 0, []byte{0x1a, 0x45, 0xdf, 0xa3, 0x01}, true},
		{"little32", Little32, "0x04034b50", 0, 0, []byte("PK\x03\x04"), true},
		{"range scan", Big16, "0xcafe", 0, 4, []byte{0, 0, 0, 0xca, 0xfe}, true},
		{"range end inclusive", Big16, "0xcafe", 0, 2, []byte{0, 0, 0, 0xca, 0xfe}, false},
		{"short buffer", Big32, "0x1a45dfa3", 0, 0, []byte{0x1a, 0x45}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRule(tt.typ, tt.value, tt.start, tt.end, "")
			if !r.IsValid() {
				t.Fatalf("rule invalid: %v", r.Err())
			}
			if got := r.Matches(tt.data); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHostRuleMatchesNativeOrder(t *testing.T) {
	data := make([]byte, 4)
	binary.NativeEndian.PutUint16(data, 0x0102)
	binary.NativeEndian.PutUint16(data[2:], 0x0304)

	if !NewRule(Host16, "0x0102", 0, 0, "").Matches(data) {
		t.Errorf("host16 should read %v in native order", data[:2])
	}
	if !NewRule(Host16, "0x0304", 0, 2, "").Matches(data) {
		t.Errorf("host16 should find %v at offset 2", data[2:])
	}
}

func TestRegExpRule(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		start, end int
		data       string
		want       bool
	}{
		{"whole buffer", `^import Qt`, 0, 0, "// x\nimport QtQuick 2.0\n", true},
		{"bounded", `Item \{`, 0, 10, "import X\nItem {", false},
		{"bounded hit", `Item \{`, 0, 20, "import X\nItem {", true},
		{"dot matches newline", `a.b`, 0, 0, "a\nb", true},
		{"start offset", `^b`, 1, 1, "ab", true},
		{"start past data", `x`, 10, 10, "x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRule(RegExp, tt.value, tt.start, tt.end, "")
			if !r.IsValid() {
				t.Fatalf("rule invalid: %v", r.Err())
			}
			if got := r.Matches([]byte(tt.data)); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.data, got, tt.want)
			}
		})
	}
}

func TestSubmatches(t *testing.T) {
	webp := NewRule(String, "RIFF", 0, 0, "",
		NewRule(String, "WEBP", 8, 8, ""),
		NewRule(String, "WAVE", 8, 8, ""),
	)
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"first child", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), true},
		{"second child", []byte("RIFF\x00\x00\x00\x00WAVEfmt "), true},
		{"no child", []byte("RIFF\x00\x00\x00\x00AVI LIST"), false},
		{"parent fails", []byte("RIFX\x00\x00\x00\x00WEBP"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := webp.Matches(tt.data); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}

	nested := NewRule(String, "A", 0, 0, "",
		NewRule(String, "B", 1, 1, "",
			NewRule(String, "C", 2, 2, "")))
	if !nested.Matches([]byte("ABC")) {
		t.Error("nested chain should match ABC")
	}
	if nested.Matches([]byte("ABX")) {
		t.Error("nested chain must require the innermost rule")
	}

	withInvalid := NewRule(String, "A", 0, 0, "", NewRule(String, "", 0, 0, ""))
	if withInvalid.Matches([]byte("A")) {
		t.Error("a rule whose only child is invalid must not match")
	}
}
