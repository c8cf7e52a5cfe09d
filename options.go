package mimekit

import (
	"github.com/rs/zerolog"

	"github.com/gobeaver/mimekit/loader"
)

// DefaultContentWindow is how many leading bytes are examined for content
// matching.
const DefaultContentWindow = 16384

// Option represents a configuration option
type Option func(*Options)

// Options contains everything New needs to build a Database
type Options struct {
	// Provider backs the database. Nil means a fresh DefinitionProvider.
	Provider Provider

	// DisableBuiltin skips the embedded freedesktop definitions
	DisableBuiltin bool

	// Sources are loaded after the builtin definitions, ordered by ID
	Sources []loader.Source

	// DefinitionDirs are scanned for definition files at load time
	DefinitionDirs []string

	// SystemDefinitions adds the XDG mime/packages directories
	SystemDefinitions bool

	// ContentWindow caps the bytes read for content matching
	ContentWindow int

	// Cache memoizes detection results. Nil disables caching.
	Cache ResultCache

	// Logger receives load diagnostics
	Logger zerolog.Logger
}

func defaultOptions() Options {
	return Options{
		ContentWindow: DefaultContentWindow,
		Logger:        zerolog.Nop(),
	}
}

// WithProvider sets the backing provider
func WithProvider(p Provider) Option {
	return func(o *Options) {
		o.Provider = p
	}
}

// WithoutBuiltin skips the embedded definitions
func WithoutBuiltin() Option {
	return func(o *Options) {
		o.DisableBuiltin = true
	}
}

// WithSources adds definition sources
func WithSources(sources ...loader.Source) Option {
	return func(o *Options) {
		o.Sources = append(o.Sources, sources...)
	}
}

// WithDefinitionFiles adds definition files by path
func WithDefinitionFiles(paths ...string) Option {
	return func(o *Options) {
		for _, p := range paths {
			o.Sources = append(o.Sources, loader.NewFileSource(p))
		}
	}
}

// WithDefinitionDirs adds directories whose definition files are loaded
func WithDefinitionDirs(dirs ...string) Option {
	return func(o *Options) {
		o.DefinitionDirs = append(o.DefinitionDirs, dirs...)
	}
}

// WithSystemDefinitions loads the shared-mime-info packages installed on the
// host
func WithSystemDefinitions() Option {
	return func(o *Options) {
		o.SystemDefinitions = true
	}
}

// WithContentWindow sets how many leading bytes content matching examines.
// Non-positive values keep the default.
func WithContentWindow(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.ContentWindow = n
		}
	}
}

// WithResultCache memoizes detection results in c
func WithResultCache(c ResultCache) Option {
	return func(o *Options) {
		o.Cache = c
	}
}

// WithLogger sets the logger for load diagnostics
func WithLogger(log zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = log
	}
}
