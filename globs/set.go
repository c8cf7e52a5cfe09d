// Package globs matches file names against the glob patterns declared by
// mime type definitions.
//
// Patterns of the form "*.ext" with the default weight and no case
// sensitivity go into an extension index. Every other pattern is kept in one
// of two ordered lists, split at the default weight, and evaluated in turn.
package globs

import (
	"slices"
	"strings"
)

// Set holds every glob pattern of a database. A Set is not safe for
// concurrent use; callers serialize access.
type Set struct {
	fast map[string][]string // lower-cased extension -> type names
	high []*Pattern          // weight > DefaultWeight
	low  []*Pattern          // weight <= DefaultWeight
}

// NewSet creates an empty pattern set.
func NewSet() *Set {
	return &Set{fast: make(map[string][]string)}
}

// AddGlob compiles pattern and adds it for typeName.
func (s *Set) AddGlob(pattern, typeName string, weight int, caseSensitive bool) error {
	p, err := NewPattern(pattern, typeName, weight, caseSensitive)
	if err != nil {
		return err
	}
	s.Add(p)
	return nil
}

// Add inserts p. Adding the same pattern twice for the same type is a no-op.
func (s *Set) Add(p *Pattern) {
	if p.weight == DefaultWeight && !p.caseSensitive && isFastPattern(p.pattern) {
		ext := p.pattern[2:]
		if !slices.Contains(s.fast[ext], p.typeName) {
			s.fast[ext] = append(s.fast[ext], p.typeName)
		}
		return
	}
	if p.weight > DefaultWeight {
		if !hasPattern(s.high, p) {
			s.high = append(s.high, p)
		}
		return
	}
	if !hasPattern(s.low, p) {
		s.low = append(s.low, p)
	}
}

func hasPattern(list []*Pattern, p *Pattern) bool {
	for _, q := range list {
		if q.typeName == p.typeName && q.pattern == p.pattern {
			return true
		}
	}
	return false
}

// RemoveType strips every pattern owned by typeName.
func (s *Set) RemoveType(typeName string) {
	for ext, types := range s.fast {
		types = slices.DeleteFunc(types, func(t string) bool { return t == typeName })
		if len(types) == 0 {
			delete(s.fast, ext)
		} else {
			s.fast[ext] = types
		}
	}
	owned := func(p *Pattern) bool { return p.typeName == typeName }
	s.high = slices.DeleteFunc(s.high, owned)
	s.low = slices.DeleteFunc(s.low, owned)
}

// Len returns the number of stored (pattern, type) entries.
func (s *Set) Len() int {
	n := len(s.high) + len(s.low)
	for _, types := range s.fast {
		n += len(types)
	}
	return n
}

// Match evaluates fileName, a base name without directories.
//
// High-weight patterns are tried first and win outright when any of them
// matches; lower matches then only show up in All. Otherwise the extension
// index and the low-weight list are merged, so that "*.tar.bz2" can still
// beat "*.bz2".
func (s *Set) Match(fileName string) Result {
	var r Result
	s.matchList(&r, s.high, fileName)
	if len(r.Types) > 0 {
		var rest Result
		s.matchLow(&rest, fileName)
		for _, typeName := range rest.All {
			if !slices.Contains(r.All, typeName) {
				r.All = append(r.All, typeName)
			}
		}
		return r
	}
	s.matchLow(&r, fileName)
	return r
}

func (s *Set) matchLow(r *Result, fileName string) {
	if dot := strings.LastIndexByte(fileName, '.'); dot != -1 {
		ext := strings.ToLower(fileName[dot+1:])
		pattern := "*." + ext
		for _, typeName := range s.fast[ext] {
			r.add(typeName, DefaultWeight, pattern, fileName[dot+1:])
		}
	}
	s.matchList(r, s.low, fileName)
}

func (s *Set) matchList(r *Result, list []*Pattern, fileName string) {
	for _, p := range list {
		if p.MatchFileName(fileName) {
			r.add(p.typeName, p.weight, p.pattern, suffixOf(fileName, p.pattern))
		}
	}
}

// Result is the outcome of matching one file name.
type Result struct {
	// Types holds the winning candidates in match order.
	Types []string
	// All holds every type that matched any pattern, winners included.
	All []string
	// Suffix is the file name's own suffix for the last winning "*.ext"
	// pattern, e.g. "tar.bz2" for "backup.tar.bz2". Empty when that winner
	// is not a simple suffix pattern.
	Suffix string

	weight     int
	patternLen int
}

func (r *Result) add(typeName string, weight int, pattern, suffix string) {
	if !slices.Contains(r.All, typeName) {
		r.All = append(r.All, typeName)
	}
	if weight < r.weight {
		return
	}
	replace := weight > r.weight
	if !replace {
		switch {
		case len(pattern) < r.patternLen:
			return
		case len(pattern) > r.patternLen:
			replace = true
		}
	}
	if replace {
		r.Types = r.Types[:0]
		r.weight = weight
		r.patternLen = len(pattern)
	}
	if !slices.Contains(r.Types, typeName) {
		r.Types = append(r.Types, typeName)
		r.Suffix = suffix
	}
}

// suffixOf returns the part of fileName covered by the extension of a simple
// "*.ext" pattern, keeping the file name's own case.
func suffixOf(fileName, pattern string) string {
	ext, ok := IsSimpleSuffix(pattern)
	if !ok || len(ext) > len(fileName) {
		return ""
	}
	return fileName[len(fileName)-len(ext):]
}
