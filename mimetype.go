package mimekit

import (
	"slices"
	"strings"

	"github.com/gobeaver/mimekit/globs"
	"github.com/gobeaver/mimekit/registry"
)

// MimeType is a snapshot of a type taken at query time. The zero value is
// the invalid type returned for unknown names.
type MimeType struct {
	t         registry.Type
	parents   []string
	ancestors []string
	aliases   []string
}

// snapshot copies everything a MimeType answers from the provider.
func snapshot(p Provider, t registry.Type) MimeType {
	return MimeType{
		t:         t,
		parents:   p.Parents(t.Name),
		ancestors: p.AllAncestors(t.Name),
		aliases:   p.Aliases(t.Name),
	}
}

// Name returns the canonical name, or "" for the invalid type.
func (m MimeType) Name() string { return m.t.Name }

// IsValid reports whether the type was found in the database.
func (m MimeType) IsValid() bool { return m.t.Name != "" }

// Comment returns the untranslated description, falling back to the name.
func (m MimeType) Comment() string {
	if m.t.Comment != "" {
		return m.t.Comment
	}
	return m.t.Name
}

// LocalizedComment returns the description for lang ("de", "pt_BR"). A
// region-qualified language falls back to its base language, then to
// Comment.
func (m MimeType) LocalizedComment(lang string) string {
	if c, ok := m.t.LocalizedComments[lang]; ok {
		return c
	}
	if i := strings.IndexAny(lang, "_-@."); i > 0 {
		if c, ok := m.t.LocalizedComments[lang[:i]]; ok {
			return c
		}
	}
	return m.Comment()
}

// IconName returns the icon, defaulting to the name with '/' replaced by '-'.
func (m MimeType) IconName() string {
	if m.t.Icon != "" {
		return m.t.Icon
	}
	return strings.ReplaceAll(m.t.Name, "/", "-")
}

// GenericIconName returns the generic icon, defaulting to "<group>-x-generic".
func (m MimeType) GenericIconName() string {
	if m.t.GenericIcon != "" {
		return m.t.GenericIcon
	}
	group, _, ok := strings.Cut(m.t.Name, "/")
	if !ok || group == "" {
		return ""
	}
	return group + "-x-generic"
}

// GlobPatterns returns the patterns in declaration order.
func (m MimeType) GlobPatterns() []string { return slices.Clone(m.t.Patterns) }

// Suffixes returns the extensions of the simple "*.ext" patterns.
func (m MimeType) Suffixes() []string {
	var out []string
	for _, p := range m.t.Patterns {
		if ext, ok := globs.IsSimpleSuffix(p); ok {
			out = append(out, ext)
		}
	}
	return out
}

// PreferredSuffix returns the first suffix, or "".
func (m MimeType) PreferredSuffix() string {
	if s := m.Suffixes(); len(s) > 0 {
		return s[0]
	}
	return ""
}

// ParentMimeTypes returns the direct parents, explicit or inferred.
func (m MimeType) ParentMimeTypes() []string { return slices.Clone(m.parents) }

// AllAncestors returns every ancestor, breadth first, least specific last.
func (m MimeType) AllAncestors() []string { return slices.Clone(m.ancestors) }

// Aliases returns the alternate names resolving to this type.
func (m MimeType) Aliases() []string { return slices.Clone(m.aliases) }

// Inherits reports whether the type is name, one of its aliases, or
// descends from name. Alias resolution of name needs the database; use
// Database.Inherits for that.
func (m MimeType) Inherits(name string) bool {
	if !m.IsValid() {
		return false
	}
	return name == m.t.Name || slices.Contains(m.aliases, name) || slices.Contains(m.ancestors, name)
}

// FilterString returns a file-dialog filter such as "C source code (*.c)",
// or "" when the type has no patterns.
func (m MimeType) FilterString() string {
	if len(m.t.Patterns) == 0 {
		return ""
	}
	return m.Comment() + " (" + strings.Join(m.t.Patterns, " ") + ")"
}

func (m MimeType) String() string { return m.t.Name }

// Equal reports whether both values name the same type.
func (m MimeType) Equal(o MimeType) bool { return m.t.Name == o.t.Name }
