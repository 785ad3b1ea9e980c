package config

import (
	"github.com/knadh/koanf/v2"
)

// Snapshot is an immutable view of the merged configuration keys taken at
// load time. It implements condition.Settings.
//
// Values are rendered as strings: a YAML or TOML bool true reads as "true",
// an integer 8080 as "8080". Activation predicates compare these rendered
// strings exactly, so `enabled: true` and `enabled: "true"` behave the
// same while `enabled: "TRUE"` does not match.
type Snapshot struct {
	k *koanf.Koanf
}

// Lookup returns the string form of the value at key and whether the key
// is present. Absent keys return ("", false); present keys always report
// true even when the rendered value is empty.
func (s *Snapshot) Lookup(key string) (string, bool) {
	if s == nil || s.k == nil || !s.k.Exists(key) {
		return "", false
	}
	return s.k.String(key), true
}

// Has reports whether key is present in the snapshot.
func (s *Snapshot) Has(key string) bool {
	return s != nil && s.k != nil && s.k.Exists(key)
}

// Keys returns all flattened keys in sorted order.
func (s *Snapshot) Keys() []string {
	if s == nil || s.k == nil {
		return nil
	}
	return s.k.Keys()
}
