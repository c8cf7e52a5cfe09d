package mimekit

import (
	"slices"

	"github.com/gobeaver/mimekit/globs"
	"github.com/gobeaver/mimekit/loader"
	"github.com/gobeaver/mimekit/magic"
	"github.com/gobeaver/mimekit/registry"
)

// Well-known type names.
const (
	DefaultType = registry.DefaultType
	PlainText   = registry.PlainText
	ZeroSize    = "application/x-zerosize"
)

// Types that exist after every load, whatever the sources define.
var wellKnownTypes = []registry.Type{
	{Name: DefaultType, Comment: "unknown"},
	{Name: PlainText, Comment: "plain text document"},
}

// DefinitionProvider keeps types, globs and magic in memory, populated from
// definition documents.
type DefinitionProvider struct {
	reg      *registry.Registry
	globs    *globs.Set
	magic    *magic.Set
	patterns map[string][]*globs.Pattern
}

// NewDefinitionProvider creates an empty provider.
func NewDefinitionProvider() *DefinitionProvider {
	return &DefinitionProvider{
		reg:      registry.New(),
		globs:    globs.NewSet(),
		magic:    magic.NewSet(),
		patterns: make(map[string][]*globs.Pattern),
	}
}

// Load runs l and then makes sure the well-known types exist.
func (p *DefinitionProvider) Load(l *loader.Loader) error {
	err := l.Load(p)
	for _, t := range wellKnownTypes {
		if !p.reg.Has(t.Name) {
			p.reg.Add(&t)
		}
	}
	return err
}

func (p *DefinitionProvider) AddType(t *registry.Type) bool {
	return p.reg.Add(t)
}

func (p *DefinitionProvider) AddGlobPattern(pattern, typeName string, weight int, caseSensitive bool) error {
	gp, err := globs.NewPattern(pattern, typeName, weight, caseSensitive)
	if err != nil {
		return err
	}
	p.addPattern(gp)
	return nil
}

func (p *DefinitionProvider) addPattern(gp *globs.Pattern) {
	name := gp.TypeName()
	for _, existing := range p.patterns[name] {
		if existing.Pattern() == gp.Pattern() {
			return
		}
	}
	p.patterns[name] = append(p.patterns[name], gp)
	p.globs.Add(gp)
	p.reg.AddPattern(name, gp.Pattern())
}

func (p *DefinitionProvider) AddParent(child, parent string) { p.reg.AddParent(child, parent) }

func (p *DefinitionProvider) AddAlias(alias, canonical string) { p.reg.AddAlias(alias, canonical) }

func (p *DefinitionProvider) AddMagicMatcher(m *magic.Matcher) { p.magic.Add(m) }

func (p *DefinitionProvider) Lookup(name string) (registry.Type, bool) { return p.reg.Lookup(name) }

func (p *DefinitionProvider) ResolveAlias(name string) string { return p.reg.ResolveAlias(name) }

func (p *DefinitionProvider) Parents(name string) []string { return p.reg.Parents(name) }

func (p *DefinitionProvider) Aliases(name string) []string { return p.reg.Aliases(name) }

func (p *DefinitionProvider) Inherits(name, ancestor string) bool {
	return p.reg.Inherits(name, ancestor)
}

func (p *DefinitionProvider) AllAncestors(name string) []string { return p.reg.AllAncestors(name) }

func (p *DefinitionProvider) Names() []string { return p.reg.Names() }

func (p *DefinitionProvider) FindByFileName(fileName string) globs.Result {
	return p.globs.Match(fileName)
}

func (p *DefinitionProvider) FindByMagic(data []byte) (string, int) {
	return p.magic.FindByMagic(data)
}

func (p *DefinitionProvider) ReplaceGlobPatterns(name string, patterns []*globs.Pattern) error {
	name = p.reg.ResolveAlias(name)
	if !p.reg.Has(name) {
		return ErrNotFound
	}
	p.globs.RemoveType(name)
	p.reg.ResetPatterns(name)
	delete(p.patterns, name)
	for _, gp := range patterns {
		if gp.TypeName() != name {
			gp, _ = globs.NewPattern(gp.Pattern(), name, gp.Weight(), gp.CaseSensitive())
		}
		p.addPattern(gp)
	}
	return nil
}

func (p *DefinitionProvider) ReplaceMagicMatchers(name string, matchers []*magic.Matcher) error {
	name = p.reg.ResolveAlias(name)
	if !p.reg.Has(name) {
		return ErrNotFound
	}
	p.magic.RemoveType(name)
	for _, m := range matchers {
		if m.TypeName() != name {
			m = magic.NewMatcher(name, m.Priority(), m.Rules()...)
		}
		p.magic.Add(m)
	}
	return nil
}

func (p *DefinitionProvider) GlobPatterns(name string) []*globs.Pattern {
	return slices.Clone(p.patterns[p.reg.ResolveAlias(name)])
}

func (p *DefinitionProvider) MagicMatchers(name string) []*magic.Matcher {
	return p.magic.ForType(p.reg.ResolveAlias(name))
}
