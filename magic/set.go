package magic

import "slices"

// Set holds every matcher of a database in insertion order. Insertion order
// decides ties between matchers of equal priority. A Set is not safe for
// concurrent use.
type Set struct {
	matchers []*Matcher
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{}
}

// Add appends m.
func (s *Set) Add(m *Matcher) {
	s.matchers = append(s.matchers, m)
}

// RemoveType drops every matcher owned by typeName.
func (s *Set) RemoveType(typeName string) {
	s.matchers = slices.DeleteFunc(s.matchers, func(m *Matcher) bool {
		return m.typeName == typeName
	})
}

// ForType returns the matchers owned by typeName in insertion order.
func (s *Set) ForType(typeName string) []*Matcher {
	var out []*Matcher
	for _, m := range s.matchers {
		if m.typeName == typeName {
			out = append(out, m)
		}
	}
	return out
}

// Len returns the number of matchers.
func (s *Set) Len() int { return len(s.matchers) }

// FindByMagic returns the type of the highest-priority matcher that matches
// data, with that priority as accuracy. The first matcher wins among equal
// priorities. It returns ("", 0) when nothing matches with a priority above 0.
func (s *Set) FindByMagic(data []byte) (typeName string, accuracy int) {
	for _, m := range s.matchers {
		if m.priority <= accuracy {
			continue
		}
		if m.Matches(data) {
			typeName, accuracy = m.typeName, m.priority
		}
	}
	return typeName, accuracy
}
