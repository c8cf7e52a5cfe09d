package magic

// DefaultPriority is the priority of a magic block declared without one.
const DefaultPriority = 50

// Matcher is one magic block of a mime type: a priority and a set of
// alternative rule trees.
type Matcher struct {
	typeName string
	priority int
	rules    []*Rule
}

// NewMatcher creates a matcher for typeName. The priority is clamped to
// 0..100.
func NewMatcher(typeName string, priority int, rules ...*Rule) *Matcher {
	return &Matcher{
		typeName: typeName,
		priority: max(0, min(priority, 100)),
		rules:    rules,
	}
}

// TypeName returns the owning mime type.
func (m *Matcher) TypeName() string { return m.typeName }

// Priority returns the matcher priority, used as the match accuracy.
func (m *Matcher) Priority() int { return m.priority }

// Rules returns the top-level rule trees.
func (m *Matcher) Rules() []*Rule { return m.rules }

// Matches reports whether any top-level rule tree matches data.
func (m *Matcher) Matches(data []byte) bool {
	for _, r := range m.rules {
		if r.Matches(data) {
			return true
		}
	}
	return false
}
