package mimekit

import (
	"path"
	"strings"
)

// TypeSelector picks mime types out of a database.
type TypeSelector interface {
	Match(t MimeType) bool
}

// SelectTypes returns the known types accepted by selector, sorted by name.
// A nil selector accepts every type.
func (db *Database) SelectTypes(selector TypeSelector) []MimeType {
	if selector == nil {
		selector = All()
	}
	var out []MimeType
	for _, t := range db.AllTypes() {
		if selector.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

type allSelector struct{}

func (allSelector) Match(MimeType) bool { return true }

// All accepts every type.
func All() TypeSelector {
	return allSelector{}
}

type nameSelector struct {
	pattern string
}

// NameGlob accepts types whose name matches a path.Match pattern such as
// "image/*". A malformed pattern accepts nothing.
func NameGlob(pattern string) TypeSelector {
	return &nameSelector{pattern: strings.ToLower(pattern)}
}

func (s *nameSelector) Match(t MimeType) bool {
	matched, err := path.Match(s.pattern, t.Name())
	return err == nil && matched
}

type prefixSelector struct {
	prefix string
}

// NamePrefix accepts types whose name starts with prefix.
func NamePrefix(prefix string) TypeSelector {
	return &prefixSelector{prefix: strings.ToLower(prefix)}
}

func (s *prefixSelector) Match(t MimeType) bool {
	return strings.HasPrefix(t.Name(), s.prefix)
}

type inheritsSelector struct {
	name string
}

// InheritsFrom accepts name and every type deriving from it. Ancestors are
// compared by canonical name; an alias only selects the type it belongs to.
func InheritsFrom(name string) TypeSelector {
	return &inheritsSelector{name: name}
}

func (s *inheritsSelector) Match(t MimeType) bool {
	return t.Inherits(s.name)
}

type suffixSelector struct {
	suffix string
}

// WithSuffix accepts types that list suffix among their simple suffixes.
func WithSuffix(suffix string) TypeSelector {
	return &suffixSelector{suffix: strings.ToLower(strings.TrimPrefix(suffix, "."))}
}

func (s *suffixSelector) Match(t MimeType) bool {
	for _, suf := range t.Suffixes() {
		if strings.ToLower(suf) == s.suffix {
			return true
		}
	}
	return false
}

type andSelector struct {
	selectors []TypeSelector
}

// And accepts types accepted by all selectors.
func And(selectors ...TypeSelector) TypeSelector {
	return &andSelector{selectors: selectors}
}

func (s *andSelector) Match(t MimeType) bool {
	for _, sel := range s.selectors {
		if !sel.Match(t) {
			return false
		}
	}
	return true
}

type orSelector struct {
	selectors []TypeSelector
}

// Or accepts types accepted by any selector.
func Or(selectors ...TypeSelector) TypeSelector {
	return &orSelector{selectors: selectors}
}

func (s *orSelector) Match(t MimeType) bool {
	for _, sel := range s.selectors {
		if sel.Match(t) {
			return true
		}
	}
	return false
}

type notSelector struct {
	selector TypeSelector
}

// Not inverts selector.
func Not(selector TypeSelector) TypeSelector {
	return &notSelector{selector: selector}
}

func (s *notSelector) Match(t MimeType) bool {
	return !s.selector.Match(t)
}

// SelectorFunc adapts a function to a TypeSelector.
type SelectorFunc func(MimeType) bool

func (f SelectorFunc) Match(t MimeType) bool { return f(t) }
