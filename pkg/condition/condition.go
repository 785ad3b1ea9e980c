// Package condition provides configuration-driven activation predicates.
//
// A Condition is a pure predicate over a configuration snapshot. Conditions
// compose with AllOf and are evaluated once per configuration load, never on
// a request path.
package condition

// Settings is a read-only view of a configuration snapshot.
//
// Lookup returns the string form of the value stored under key, and whether
// the key is present at all. Implementations must not mutate the snapshot.
type Settings interface {
	Lookup(key string) (value string, ok bool)
}

// Condition reports whether a feature should be considered active for the
// given configuration snapshot.
type Condition interface {
	Matches(s Settings) bool
}

// Func adapts an ordinary function to the Condition interface.
type Func func(Settings) bool

// Matches implements Condition.
func (f Func) Matches(s Settings) bool { return f(s) }

// Property matches a single configuration setting against an expected value.
//
// The consulted key is Prefix + "." + Name, or Name alone when Prefix is
// empty. A present value matches only when it equals HavingValue exactly;
// comparison is case-sensitive, so "TRUE" or "1" never match "true". A
// missing key resolves to MatchIfMissing.
type Property struct {
	Prefix         string
	Name           string
	HavingValue    string
	MatchIfMissing bool
}

// Key returns the fully qualified settings key the condition consults.
func (p Property) Key() string {
	if p.Prefix == "" {
		return p.Name
	}
	return p.Prefix + "." + p.Name
}

// Matches implements Condition.
func (p Property) Matches(s Settings) bool {
	v, ok := s.Lookup(p.Key())
	if !ok {
		return p.MatchIfMissing
	}
	return v == p.HavingValue
}

// AllOf combines conditions with logical AND, short-circuiting on the first
// condition that does not match. With no conditions it matches.
func AllOf(conds ...Condition) Condition {
	return allOf(conds)
}

type allOf []Condition

func (cs allOf) Matches(s Settings) bool {
	for _, c := range cs {
		if !c.Matches(s) {
			return false
		}
	}
	return true
}

// MapSettings is an in-memory Settings backed by a plain map. Keys absent
// from the map report ok == false.
type MapSettings map[string]string

// Lookup implements Settings.
func (m MapSettings) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}
