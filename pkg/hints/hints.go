// Package hints records which types need reflective access at runtime.
//
// Restricted runtimes (ahead-of-time compiled binaries, dead-code eliminated
// builds) strip reflective metadata for types that appear unused. A Hints
// container collects the types a program will introspect so build tooling
// can keep their metadata alive. Registration happens once during
// initialization; the container is not safe for concurrent use.
package hints

import (
	"reflect"
	"sort"
)

// TypeReference identifies a type by package path and name. It carries no
// behavior of the referenced type.
type TypeReference struct {
	Package string `json:"package"`
	Name    string `json:"name"`
}

// TypeReferenceOf returns the reference for a named reflect type.
func TypeReferenceOf(t reflect.Type) TypeReference {
	return TypeReference{Package: t.PkgPath(), Name: t.Name()}
}

// String returns the canonical "package.Name" form.
func (r TypeReference) String() string {
	if r.Package == "" {
		return r.Name
	}
	return r.Package + "." + r.Name
}

// MemberCategory selects a class of type members that reflective access is
// requested for.
type MemberCategory string

const (
	// MemberPublicFields covers exported struct fields.
	MemberPublicFields MemberCategory = "public_fields"

	// MemberDeclaredFields covers all struct fields, exported or not.
	MemberDeclaredFields MemberCategory = "declared_fields"

	// MemberPublicMethods covers the exported method set.
	MemberPublicMethods MemberCategory = "public_methods"

	// MemberDeclaredMethods covers all methods, exported or not.
	MemberDeclaredMethods MemberCategory = "declared_methods"
)

// AllMemberCategories returns every member category.
func AllMemberCategories() []MemberCategory {
	return []MemberCategory{
		MemberPublicFields,
		MemberDeclaredFields,
		MemberPublicMethods,
		MemberDeclaredMethods,
	}
}

var categoryRank = map[MemberCategory]int{
	MemberPublicFields:    0,
	MemberDeclaredFields:  1,
	MemberPublicMethods:   2,
	MemberDeclaredMethods: 3,
}

// ReflectionHints accumulates reflective-access requests keyed by type
// reference. Registering the same reference again merges the category sets.
type ReflectionHints struct {
	types map[TypeReference]map[MemberCategory]struct{}
}

// RegisterType requests reflective access to the given member categories of
// the referenced type.
func (h *ReflectionHints) RegisterType(ref TypeReference, categories ...MemberCategory) {
	if h.types == nil {
		h.types = make(map[TypeReference]map[MemberCategory]struct{})
	}
	set, ok := h.types[ref]
	if !ok {
		set = make(map[MemberCategory]struct{}, len(categories))
		h.types[ref] = set
	}
	for _, c := range categories {
		set[c] = struct{}{}
	}
}

// Types returns every registered reference sorted by canonical form.
func (h *ReflectionHints) Types() []TypeReference {
	refs := make([]TypeReference, 0, len(h.types))
	for ref := range h.types {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].String() < refs[j].String() })
	return refs
}

// Categories returns the categories registered for ref in canonical order,
// or nil when the reference is unknown.
func (h *ReflectionHints) Categories(ref TypeReference) []MemberCategory {
	set, ok := h.types[ref]
	if !ok {
		return nil
	}
	cats := make([]MemberCategory, 0, len(set))
	for c := range set {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		ri, rj := categoryRank[cats[i]], categoryRank[cats[j]]
		if ri != rj {
			return ri < rj
		}
		return cats[i] < cats[j]
	})
	return cats
}

// Len returns the number of registered type references.
func (h *ReflectionHints) Len() int {
	return len(h.types)
}

// Hints is the root metadata container handed to registrars.
type Hints struct {
	reflection ReflectionHints
}

// New returns an empty hints container.
func New() *Hints {
	return &Hints{}
}

// Reflection returns the reflection hint registry.
func (h *Hints) Reflection() *ReflectionHints {
	return &h.reflection
}
