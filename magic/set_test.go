package magic

import "testing"

func pngMatcher(priority int) *Matcher {
	return NewMatcher("image/png", priority, NewRule(String, `\x89PNG`, 0, 0, ""))
}

func TestNewMatcherClampsPriority(t *testing.T) {
	tests := []struct{ in, want int }{
		{50, 50},
		{-5, 0},
		{0, 0},
		{100, 100},
		{250, 100},
	}
	for _, tt := range tests {
		if got := NewMatcher("x/y", tt.in).Priority(); got != tt.want {
			t.Errorf("NewMatcher(priority %d).Priority() = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMatcherAlternatives(t *testing.T) {
	m := NewMatcher("image/gif", 50,
		NewRule(String, "GIF87a", 0, 0, ""),
		NewRule(String, "GIF89a", 0, 0, ""),
	)
	if !m.Matches([]byte("GIF87a....")) || !m.Matches([]byte("GIF89a....")) {
		t.Error("either alternative should match")
	}
	if m.Matches([]byte("GIF90a")) {
		t.Error("unexpected match")
	}
	if NewMatcher("x/empty", 50).Matches([]byte("anything")) {
		t.Error("a matcher without rules must not match")
	}
}

func TestFindByMagic(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

	t.Run("priority is accuracy", func(t *testing.T) {
		s := NewSet()
		s.Add(pngMatcher(50))
		name, acc := s.FindByMagic(png)
		if name != "image/png" || acc != 50 {
			t.Errorf("FindByMagic() = (%q, %d), want (image/png, 50)", name, acc)
		}
	})

	t.Run("higher priority wins", func(t *testing.T) {
		s := NewSet()
		s.Add(NewMatcher("application/octet-stream", 10, NewRule(Byte, "0x89", 0, 0, "")))
		s.Add(pngMatcher(80))
		s.Add(NewMatcher("image/x-png-variant", 60, NewRule(String, "PNG", 1, 1, "")))
		name, acc := s.FindByMagic(png)
		if name != "image/png" || acc != 80 {
			t.Errorf("FindByMagic() = (%q, %d), want (image/png, 80)", name, acc)
		}
	})

	t.Run("first wins ties", func(t *testing.T) {
		s := NewSet()
		s.Add(NewMatcher("video/webm", 50, NewRule(Big32, "0x1a45dfa3", 0, 0, "")))
		s.Add(NewMatcher("video/x-matroska", 50, NewRule(Big32, "0x1a45dfa3", 0, 0, "")))
		name, _ := s.FindByMagic([]byte{0x1a, 0x45, 0xdf, 0xa3})
		if name != "video/webm" {
			t.Errorf("FindByMagic() = %q, want the first registered matcher", name)
		}
	})

	t.Run("zero priority never wins", func(t *testing.T) {
		s := NewSet()
		s.Add(pngMatcher(0))
		if name, acc := s.FindByMagic(png); name != "" || acc != 0 {
			t.Errorf("FindByMagic() = (%q, %d), want no match", name, acc)
		}
	})

	t.Run("no match", func(t *testing.T) {
		s := NewSet()
		s.Add(pngMatcher(50))
		if name, acc := s.FindByMagic([]byte("plain text")); name != "" || acc != 0 {
			t.Errorf("FindByMagic() = (%q, %d), want no match", name, acc)
		}
	})
}

func TestSetRemoveType(t *testing.T) {
	s := NewSet()
	s.Add(pngMatcher(50))
	s.Add(pngMatcher(70))
	s.Add(NewMatcher("image/gif", 50, NewRule(String, "GIF8", 0, 0, "")))

	if got := len(s.ForType("image/png")); got != 2 {
		t.Fatalf("ForType(image/png) = %d matchers, want 2", got)
	}
	s.RemoveType("image/png")
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	if got := s.ForType("image/png"); got != nil {
		t.Errorf("ForType(image/png) = %v after RemoveType", got)
	}
	if got := s.ForType("image/gif"); len(got) != 1 {
		t.Errorf("ForType(image/gif) = %d matchers, want 1", len(got))
	}
}
