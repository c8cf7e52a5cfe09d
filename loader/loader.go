package loader

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// SourceError reports a source that could not be read or parsed.
type SourceError struct {
	ID  string
	Op  string // "open", "parse" or "list"
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("mime definitions %s %s: %v", e.Op, e.ID, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// ParseError reports a structurally invalid document.
type ParseError struct {
	Element string
	Message string
}

func (e *ParseError) Error() string {
	if e.Element == "" {
		return e.Message
	}
	return fmt.Sprintf("<%s>: %s", e.Element, e.Message)
}

// Read opens and parses src.
func Read(src Source) ([]Definition, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, &SourceError{ID: src.ID(), Op: "open", Err: err}
	}
	defer rc.Close()

	defs, err := Parse(rc)
	if err != nil {
		return nil, &SourceError{ID: src.ID(), Op: "parse", Err: err}
	}
	return defs, nil
}

// Loader applies a builtin source followed by additional sources. The
// builtin source always loads first; the others load in lexicographic ID
// order, so first-seen definitions and equal-priority magic ties resolve
// the same way on every run.
type Loader struct {
	Builtin Source
	Sources []Source
	Logger  zerolog.Logger
}

// Order returns the sources in load order.
func (l *Loader) Order() []Source {
	var out []Source
	if l.Builtin != nil {
		out = append(out, l.Builtin)
	}
	for _, s := range SortSources(l.Sources) {
		if l.Builtin != nil && s.ID() == l.Builtin.ID() {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Load applies every source into sink. A source that fails to open or parse
// contributes nothing; the failures are joined into the returned error and
// the remaining sources still load.
func (l *Loader) Load(sink Sink) error {
	var errs []error
	for _, src := range l.Order() {
		defs, err := Read(src)
		if err != nil {
			l.Logger.Warn().Err(err).Str("source", src.ID()).Msg("skipping definition source")
			errs = append(errs, err)
			continue
		}
		n := Apply(sink, defs, src.ID(), l.Logger)
		l.Logger.Debug().Str("source", src.ID()).Int("definitions", len(defs)).Int("added", n).Msg("loaded definitions")
	}
	return errors.Join(errs...)
}
