package mimekit

import (
	"errors"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gobeaver/mimekit/definitions"
	"github.com/gobeaver/mimekit/globs"
	"github.com/gobeaver/mimekit/internal/logging"
	"github.com/gobeaver/mimekit/loader"
	"github.com/gobeaver/mimekit/magic"
	"github.com/gobeaver/mimekit/registry"
)

// State is the load state of a Database.
type State int32

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// Database answers mime type queries. It loads its sources once, on the
// first query, and is safe for concurrent use: queries share a read lock,
// loading and mutations take the write lock.
type Database struct {
	mu         sync.RWMutex
	state      State
	provider   Provider
	builtin    loader.Source
	sources    []loader.Source
	dirs       []string
	system     bool
	window     int
	cache      ResultCache
	log        zerolog.Logger
	loadErr    error
	customized map[string]struct{}
}

// New creates a database. Nothing is read until the first query or
// EnsureLoaded.
func New(opts ...Option) *Database {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	db := &Database{
		provider:   o.Provider,
		sources:    slices.Clone(o.Sources),
		dirs:       slices.Clone(o.DefinitionDirs),
		system:     o.SystemDefinitions,
		window:     o.ContentWindow,
		cache:      o.Cache,
		log:        logging.Component(o.Logger, "mimekit"),
		customized: make(map[string]struct{}),
	}
	if db.provider == nil {
		db.provider = NewDefinitionProvider()
	}
	if !o.DisableBuiltin {
		db.builtin = loader.NewBytesSource(definitions.ID, definitions.FreeDesktop)
	}
	return db
}

// NewFromConfig creates a database from cfg. Extra options are applied after
// the ones derived from cfg.
func NewFromConfig(cfg *Config, opts ...Option) (*Database, error) {
	provider, err := CreateProvider(cfg)
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithProvider(provider),
		WithDefinitionFiles(splitList(cfg.DefinitionFiles)...),
		WithDefinitionDirs(splitList(cfg.DefinitionDirs)...),
		WithContentWindow(cfg.ContentWindow),
		WithLogger(logging.New(os.Stderr, cfg.LogLevel)),
	}
	if cfg.DisableBuiltin {
		base = append(base, WithoutBuiltin())
	}
	if cfg.SystemDefinitions {
		base = append(base, WithSystemDefinitions())
	}
	if cfg.ResultCacheSize > 0 {
		base = append(base, WithResultCache(NewMemoryResultCache(cfg.ResultCacheSize)))
	}
	return New(append(base, opts...)...), nil
}

var (
	defaultOnce sync.Once
	defaultDB   *Database
)

// Default returns the process-wide database configured from the
// environment. The first call loads it and applies the customization file
// named by the configuration, if any. Problems are reported by LoadError.
func Default() *Database {
	defaultOnce.Do(func() {
		cfg, err := GetConfig()
		if err != nil {
			defaultDB = New()
			defaultDB.recordErr(err)
			defaultDB.EnsureLoaded()
			return
		}

		db, err := NewFromConfig(cfg)
		if err != nil {
			db = New()
			db.recordErr(err)
		}
		db.EnsureLoaded()
		if cfg.CustomizationFile != "" {
			if err := db.LoadCustomizationsFile(cfg.CustomizationFile); err != nil && !errors.Is(err, os.ErrNotExist) {
				db.recordErr(err)
			}
		}
		defaultDB = db
	})
	return defaultDB
}

// AddSource adds a definition source. Sources can only be added before the
// database loads.
func (db *Database) AddSource(src loader.Source) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.state != StateUninitialized {
		return ErrAlreadyLoaded
	}
	db.sources = append(db.sources, src)
	return nil
}

// State returns the load state.
func (db *Database) State() State {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.state
}

// EnsureLoaded loads the database if needed and returns LoadError.
func (db *Database) EnsureLoaded() error {
	db.ensureLoaded()
	return db.LoadError()
}

// LoadError returns the errors met while loading, joined. The database is
// usable either way.
func (db *Database) LoadError() error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.loadErr
}

func (db *Database) recordErr(err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.loadErr = errors.Join(db.loadErr, err)
}

func (db *Database) ensureLoaded() {
	db.mu.RLock()
	ready := db.state == StateReady
	db.mu.RUnlock()
	if ready {
		return
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if db.state == StateReady {
		return
	}
	db.load()
}

// load runs with the write lock held.
func (db *Database) load() {
	db.state = StateLoading

	var errs []error
	sources := slices.Clone(db.sources)
	for _, dir := range db.dirs {
		found, err := loader.DirSources(dir)
		if err != nil {
			errs = append(errs, &loader.SourceError{ID: dir, Op: "list", Err: err})
			continue
		}
		sources = append(sources, found...)
	}
	if db.system {
		found, err := loader.SystemSources()
		if err != nil {
			errs = append(errs, err)
		}
		sources = append(sources, found...)
	}
	db.sources = sources

	l := &loader.Loader{
		Builtin: db.builtin,
		Sources: sources,
		Logger:  db.log,
	}
	errs = append(errs, db.provider.Load(l))
	db.loadErr = errors.Join(append([]error{db.loadErr}, errs...)...)
	db.state = StateReady

	db.log.Debug().Int("sources", len(l.Order())).Int("types", len(db.provider.Names())).Msg("mime database loaded")
}

// purge drops cached results. Callers hold the write lock.
func (db *Database) purge() {
	if db.cache != nil {
		db.cache.Purge()
	}
}

// ============================================================================
// Mutations
// ============================================================================

// AddType registers a new type. The name must have the form group/subtype
// and must not already exist.
func (db *Database) AddType(t registry.Type) error {
	if !validName(t.Name) {
		return &TypeError{Op: "add type", Name: t.Name, Err: ErrInvalidName}
	}
	db.ensureLoaded()
	db.mu.Lock()
	defer db.mu.Unlock()

	t.Patterns = nil
	if !db.provider.AddType(&t) {
		return &TypeError{Op: "add type", Name: t.Name, Err: ErrTypeExists}
	}
	db.purge()
	return nil
}

// AddGlobPattern adds a pattern to an existing type.
func (db *Database) AddGlobPattern(pattern, typeName string, weight int, caseSensitive bool) error {
	db.ensureLoaded()
	db.mu.Lock()
	defer db.mu.Unlock()

	name, err := db.knownLocked("add glob", typeName)
	if err != nil {
		return err
	}
	if err := db.provider.AddGlobPattern(pattern, name, weight, caseSensitive); err != nil {
		return &TypeError{Op: "add glob", Name: name, Err: err}
	}
	db.purge()
	return nil
}

// AddParent links child to parent. The child must exist; the parent may be
// defined later.
func (db *Database) AddParent(child, parent string) error {
	if !validName(parent) {
		return &TypeError{Op: "add parent", Name: parent, Err: ErrInvalidName}
	}
	db.ensureLoaded()
	db.mu.Lock()
	defer db.mu.Unlock()

	name, err := db.knownLocked("add parent", child)
	if err != nil {
		return err
	}
	db.provider.AddParent(name, db.provider.ResolveAlias(parent))
	db.purge()
	return nil
}

// AddAlias makes alias resolve to canonical. An alias already mapped keeps
// its first mapping.
func (db *Database) AddAlias(alias, canonical string) error {
	if !validName(alias) {
		return &TypeError{Op: "add alias", Name: alias, Err: ErrInvalidName}
	}
	db.ensureLoaded()
	db.mu.Lock()
	defer db.mu.Unlock()

	name, err := db.knownLocked("add alias", canonical)
	if err != nil {
		return err
	}
	if _, ok := db.provider.Lookup(alias); ok {
		return &TypeError{Op: "add alias", Name: alias, Err: ErrTypeExists}
	}
	db.provider.AddAlias(alias, name)
	db.purge()
	return nil
}

// AddMagicMatcher adds a matcher for an existing type.
func (db *Database) AddMagicMatcher(m *magic.Matcher) error {
	db.ensureLoaded()
	db.mu.Lock()
	defer db.mu.Unlock()

	name, err := db.knownLocked("add magic", m.TypeName())
	if err != nil {
		return err
	}
	if name != m.TypeName() {
		m = magic.NewMatcher(name, m.Priority(), m.Rules()...)
	}
	db.provider.AddMagicMatcher(m)
	db.purge()
	return nil
}

func (db *Database) knownLocked(op, name string) (string, error) {
	t, ok := db.provider.Lookup(name)
	if !ok {
		return "", &TypeError{Op: op, Name: name, Err: ErrNotFound}
	}
	return t.Name, nil
}

// ============================================================================
// Customization
// ============================================================================

// SetGlobPatternsForType replaces the type's patterns. Every pattern gets
// the default weight and matches case-insensitively. Nothing changes if a
// pattern is invalid.
func (db *Database) SetGlobPatternsForType(name string, patterns []string) error {
	db.ensureLoaded()
	db.mu.Lock()
	defer db.mu.Unlock()

	canonical, err := db.knownLocked("set globs", name)
	if err != nil {
		return err
	}
	built := make([]*globs.Pattern, 0, len(patterns))
	for _, p := range patterns {
		gp, err := globs.NewPattern(p, canonical, globs.DefaultWeight, false)
		if err != nil {
			return &TypeError{Op: "set globs", Name: canonical, Err: err}
		}
		built = append(built, gp)
	}
	return db.replaceGlobsLocked(canonical, built)
}

func (db *Database) replaceGlobsLocked(name string, patterns []*globs.Pattern) error {
	if err := db.provider.ReplaceGlobPatterns(name, patterns); err != nil {
		return &TypeError{Op: "set globs", Name: name, Err: err}
	}
	db.customized[name] = struct{}{}
	db.purge()
	return nil
}

// SetMagicRulesForType replaces the type's magic. Each priority becomes one
// matcher holding its rules.
func (db *Database) SetMagicRulesForType(name string, rules map[int][]*magic.Rule) error {
	db.ensureLoaded()
	db.mu.Lock()
	defer db.mu.Unlock()

	canonical, err := db.knownLocked("set magic", name)
	if err != nil {
		return err
	}
	var matchers []*magic.Matcher
	for _, priority := range slices.Sorted(maps.Keys(rules)) {
		matchers = append(matchers, magic.NewMatcher(canonical, priority, rules[priority]...))
	}
	return db.replaceMagicLocked(canonical, matchers)
}

func (db *Database) replaceMagicLocked(name string, matchers []*magic.Matcher) error {
	if err := db.provider.ReplaceMagicMatchers(name, matchers); err != nil {
		return &TypeError{Op: "set magic", Name: name, Err: err}
	}
	db.customized[name] = struct{}{}
	db.purge()
	return nil
}

// GlobPatternsForType returns the type's patterns in declaration order.
func (db *Database) GlobPatternsForType(name string) []string {
	db.ensureLoaded()
	db.mu.RLock()
	defer db.mu.RUnlock()

	var out []string
	for _, gp := range db.provider.GlobPatterns(name) {
		out = append(out, gp.Pattern())
	}
	return out
}

// MagicRulesForType returns the type's top-level rules grouped by matcher
// priority.
func (db *Database) MagicRulesForType(name string) map[int][]*magic.Rule {
	db.ensureLoaded()
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make(map[int][]*magic.Rule)
	for _, m := range db.provider.MagicMatchers(name) {
		out[m.Priority()] = append(out[m.Priority()], m.Rules()...)
	}
	return out
}
