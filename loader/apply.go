package loader

import (
	"github.com/rs/zerolog"

	"github.com/gobeaver/mimekit/magic"
	"github.com/gobeaver/mimekit/registry"
)

// Sink receives parsed definitions. Database providers implement it.
type Sink interface {
	// AddType registers a type and reports whether it was new. Definitions
	// whose type already exists are skipped entirely.
	AddType(t *registry.Type) bool
	AddGlobPattern(pattern, typeName string, weight int, caseSensitive bool) error
	AddParent(child, parent string)
	AddAlias(alias, canonical string)
	AddMagicMatcher(m *magic.Matcher)
}

// Apply feeds defs into sink in document order. Malformed globs and rules
// are logged and never abort the remaining definitions. It returns the
// number of definitions that introduced a new type.
func Apply(sink Sink, defs []Definition, source string, log zerolog.Logger) int {
	added := 0
	for _, def := range defs {
		t := &registry.Type{
			Name:              def.Name,
			Comment:           def.Comment,
			LocalizedComments: def.LocalizedComments,
			Icon:              def.Icon,
			GenericIcon:       def.GenericIcon,
		}
		if !sink.AddType(t) {
			log.Debug().Str("source", source).Str("type", def.Name).Msg("type already defined, skipping")
			continue
		}
		added++
		ApplyBody(sink, def, source, log)
	}
	return added
}

// ApplyBody feeds the globs, parents, aliases and magic of def into sink
// without registering the type itself. Customizations use it on types whose
// globs and magic were cleared beforehand.
func ApplyBody(sink Sink, def Definition, source string, log zerolog.Logger) {
	for _, g := range def.Globs {
		if err := sink.AddGlobPattern(g.Pattern, def.Name, g.Weight, g.CaseSensitive); err != nil {
			log.Warn().Err(err).Str("source", source).Str("type", def.Name).Str("pattern", g.Pattern).Msg("ignoring glob")
		}
	}
	for _, p := range def.Parents {
		sink.AddParent(def.Name, p)
	}
	for _, a := range def.Aliases {
		sink.AddAlias(a, def.Name)
	}
	for _, md := range def.Magic {
		m := md.Matcher(def.Name)
		for _, r := range m.Rules() {
			warnInvalid(r, def.Name, source, log)
		}
		sink.AddMagicMatcher(m)
	}
}

func warnInvalid(r *magic.Rule, typeName, source string, log zerolog.Logger) {
	if err := r.Err(); err != nil {
		log.Warn().Err(err).Str("source", source).Str("type", typeName).Msg("magic rule will never match")
	}
	for _, c := range r.Submatches() {
		warnInvalid(c, typeName, source, log)
	}
}
