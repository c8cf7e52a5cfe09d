package mimekit

import (
	"github.com/gobeaver/mimekit/globs"
	"github.com/gobeaver/mimekit/loader"
	"github.com/gobeaver/mimekit/magic"
	"github.com/gobeaver/mimekit/registry"
)

// Provider is a mime type backend. Providers are not safe for concurrent use
// on their own; Database serializes every call.
type Provider interface {
	// Sink receives definitions from the loader and from Add* calls.
	loader.Sink

	// Load populates the provider. It is called at most once.
	Load(l *loader.Loader) error

	// Lookup returns the type named name or aliased by name.
	Lookup(name string) (registry.Type, bool)
	ResolveAlias(name string) string
	Parents(name string) []string
	Aliases(name string) []string
	Inherits(name, ancestor string) bool
	AllAncestors(name string) []string
	// Names returns canonical type names in registration order.
	Names() []string

	// FindByFileName matches a base file name against glob patterns.
	FindByFileName(fileName string) globs.Result
	// FindByMagic returns the best magic match with its priority, or ("", 0).
	FindByMagic(data []byte) (string, int)

	// ReplaceGlobPatterns drops the type's patterns and installs patterns.
	ReplaceGlobPatterns(name string, patterns []*globs.Pattern) error
	// ReplaceMagicMatchers drops the type's matchers and installs matchers.
	ReplaceMagicMatchers(name string, matchers []*magic.Matcher) error
	// GlobPatterns returns the type's patterns in declaration order.
	GlobPatterns(name string) []*globs.Pattern
	// MagicMatchers returns the type's matchers in load order.
	MagicMatchers(name string) []*magic.Matcher
}
