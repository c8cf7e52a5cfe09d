// Package registry keeps the set of known mime types together with their
// aliases and parent links, and answers "is-a" questions over them.
package registry

import (
	"maps"
	"slices"
	"strings"
)

const (
	// DefaultType is the type of arbitrary binary content and the implicit
	// ancestor of every file type.
	DefaultType = "application/octet-stream"
	// PlainText is the implicit ancestor of every text/* type.
	PlainText = "text/plain"
)

// Groups whose types are not files and so have no implicit parent.
var nonFileGroups = map[string]bool{
	"inode": true,
	"all":   true,
	"fonts": true,
	"print": true,
	"uri":   true,
}

// Type is the descriptive record of a mime type.
type Type struct {
	Name              string
	Comment           string
	LocalizedComments map[string]string // language -> comment
	Icon              string
	GenericIcon       string
	Patterns          []string // glob patterns in declaration order
}

func (t *Type) clone() Type {
	c := *t
	c.LocalizedComments = maps.Clone(t.LocalizedComments)
	c.Patterns = slices.Clone(t.Patterns)
	return c
}

// Registry owns types, aliases and parent links. It is not safe for
// concurrent use; the database serializes access.
type Registry struct {
	types     map[string]*Type
	order     []string
	aliases   map[string]string   // alias -> canonical name
	aliasesOf map[string][]string // canonical name -> aliases
	parents   map[string][]string // name -> explicit parents
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		types:     make(map[string]*Type),
		aliases:   make(map[string]string),
		aliasesOf: make(map[string][]string),
		parents:   make(map[string][]string),
	}
}

// Add registers t. It returns false, leaving the registry untouched, when a
// type with the same name is already known or the name is empty.
func (r *Registry) Add(t *Type) bool {
	if t == nil || t.Name == "" {
		return false
	}
	if _, ok := r.types[t.Name]; ok {
		return false
	}
	c := t.clone()
	r.types[t.Name] = &c
	r.order = append(r.order, t.Name)
	return true
}

// Has reports whether name, or the type it aliases, is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.types[r.ResolveAlias(name)]
	return ok
}

// Lookup returns a copy of the type registered under name or its alias.
func (r *Registry) Lookup(name string) (Type, bool) {
	t, ok := r.types[r.ResolveAlias(name)]
	if !ok {
		return Type{}, false
	}
	return t.clone(), true
}

// Names returns canonical type names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Count returns the number of registered types.
func (r *Registry) Count() int {
	return len(r.types)
}

// AddAlias maps alias to canonical. The first mapping of an alias wins.
func (r *Registry) AddAlias(alias, canonical string) {
	if alias == "" || canonical == "" || alias == canonical {
		return
	}
	if _, ok := r.aliases[alias]; ok {
		return
	}
	r.aliases[alias] = canonical
	r.aliasesOf[canonical] = append(r.aliasesOf[canonical], alias)
}

// ResolveAlias returns the canonical name for name, or name itself.
func (r *Registry) ResolveAlias(name string) string {
	if canonical, ok := r.aliases[name]; ok {
		return canonical
	}
	return name
}

// Aliases returns the aliases declared for the canonical form of name.
func (r *Registry) Aliases(name string) []string {
	return slices.Clone(r.aliasesOf[r.ResolveAlias(name)])
}

// AddParent records an explicit child -> parent edge.
func (r *Registry) AddParent(child, parent string) {
	if child == "" || parent == "" {
		return
	}
	if !slices.Contains(r.parents[child], parent) {
		r.parents[child] = append(r.parents[child], parent)
	}
}

// Parents returns the direct parents of name. Without explicit parents the
// fallback parent applies.
func (r *Registry) Parents(name string) []string {
	name = r.ResolveAlias(name)
	if ps := r.parents[name]; len(ps) > 0 {
		return slices.Clone(ps)
	}
	if fb := FallbackParent(name); fb != "" {
		return []string{fb}
	}
	return nil
}

// FallbackParent returns the implicit parent of a type that declares none:
// text/plain for text/* types, application/octet-stream for other file
// types, and "" for non-file groups and the default type itself.
func FallbackParent(name string) string {
	group, _, _ := strings.Cut(name, "/")
	if group == "text" && name != PlainText {
		return PlainText
	}
	if !nonFileGroups[group] && name != DefaultType {
		return DefaultType
	}
	return ""
}

// Inherits reports whether name is ancestor or descends from it. Every name
// inherits from itself. Cycles in the parent graph are tolerated.
func (r *Registry) Inherits(name, ancestor string) bool {
	name = r.ResolveAlias(name)
	ancestor = r.ResolveAlias(ancestor)
	if name == ancestor {
		return true
	}

	seen := map[string]bool{name: true}
	stack := []string{name}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range r.Parents(cur) {
			p = r.ResolveAlias(p)
			if p == ancestor {
				return true
			}
			if !seen[p] {
				seen[p] = true
				stack = append(stack, p)
			}
		}
	}
	return false
}

// AllAncestors returns every ancestor of name breadth-first, each once.
// application/octet-stream, being the least specific, always comes last.
func (r *Registry) AllAncestors(name string) []string {
	name = r.ResolveAlias(name)
	seen := map[string]bool{name: true}
	var out []string
	queue := []string{name}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, p := range r.Parents(cur) {
			p = r.ResolveAlias(p)
			if seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
			queue = append(queue, p)
		}
	}
	if i := slices.Index(out, DefaultType); i >= 0 && i != len(out)-1 {
		out = append(slices.Delete(out, i, i+1), DefaultType)
	}
	return out
}

// AddPattern appends a glob pattern to the type's pattern list.
func (r *Registry) AddPattern(name, pattern string) {
	t, ok := r.types[r.ResolveAlias(name)]
	if !ok || slices.Contains(t.Patterns, pattern) {
		return
	}
	t.Patterns = append(t.Patterns, pattern)
}

// ResetPatterns clears the type's pattern list.
func (r *Registry) ResetPatterns(name string) {
	if t, ok := r.types[r.ResolveAlias(name)]; ok {
		t.Patterns = nil
	}
}
