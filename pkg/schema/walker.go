package schema

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

// ErrIntrospection indicates a type graph could not be introspected. The
// walk fails fast and callers must not register partial results.
var ErrIntrospection = errors.New("type introspection failed")

const defaultMaxDepth = 32

// Options bound a nested-type walk.
type Options struct {
	packages map[string]struct{}
	maxDepth int
}

// Option adjusts walk options.
type Option func(*Options)

// WithPackages adds package paths to the allowed set. The root type's own
// package is always allowed.
func WithPackages(pkgs ...string) Option {
	return func(o *Options) {
		for _, p := range pkgs {
			o.packages[p] = struct{}{}
		}
	}
}

// WithMaxDepth bounds how many levels of named types the walk may collect
// below the root before failing with ErrIntrospection.
func WithMaxDepth(depth int) Option {
	return func(o *Options) {
		o.maxDepth = depth
	}
}

// NestedTypes walks the exported structure of root and returns every named
// type reachable from it, deduplicated and sorted by package-qualified name.
// The root type itself is excluded from the result.
//
// Two enumeration sources are consulted for every type: exported struct
// fields, and exported methods of both the type and its pointer type.
// Composite kinds (pointers, slices, arrays, maps, channels, funcs) are
// unwrapped to their element types. Only named types inside the allowed
// package set are collected and descended into; the set defaults to the
// root type's own package and is widened with WithPackages.
//
// The walk terminates on cyclic graphs: a type already collected is never
// expanded again.
func NestedTypes(root reflect.Type, opts ...Option) ([]reflect.Type, error) {
	base, err := namedBase(root)
	if err != nil {
		return nil, err
	}

	o := Options{
		packages: map[string]struct{}{base.PkgPath(): {}},
		maxDepth: defaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&o)
	}

	w := &walker{
		opts:    o,
		rootKey: typeKey(base),
		visited: make(map[string]reflect.Type),
	}
	if err := w.expand(base, 1); err != nil {
		return nil, err
	}

	out := make([]reflect.Type, 0, len(w.visited))
	for _, t := range w.visited {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return typeKey(out[i]) < typeKey(out[j]) })
	return out, nil
}

// namedBase dereferences pointers and requires a named struct or
// interface root.
func namedBase(root reflect.Type) (reflect.Type, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root type", ErrIntrospection)
	}
	t := root
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return nil, fmt.Errorf("%w: root %s is not a named type", ErrIntrospection, root)
	}
	if t.Kind() != reflect.Struct && t.Kind() != reflect.Interface {
		return nil, fmt.Errorf("%w: root %s is not a struct or interface type", ErrIntrospection, root)
	}
	return t, nil
}

func typeKey(t reflect.Type) string {
	return t.PkgPath() + "." + t.Name()
}

type walker struct {
	opts    Options
	rootKey string
	visited map[string]reflect.Type
}

// visit considers one candidate type. Named types inside the allowed
// package set are collected and expanded; unnamed composites are unwrapped
// in place. depth counts levels of collected types, not unwrap steps.
func (w *walker) visit(t reflect.Type, depth int) error {
	if t.Name() == "" || t.PkgPath() == "" {
		return w.unwrap(t, depth)
	}
	if _, ok := w.opts.packages[t.PkgPath()]; !ok {
		return nil
	}
	key := typeKey(t)
	if key == w.rootKey {
		return nil
	}
	if _, seen := w.visited[key]; seen {
		return nil
	}
	if depth > w.opts.maxDepth {
		return fmt.Errorf("%w: depth %d exceeds limit %d at %s", ErrIntrospection, depth, w.opts.maxDepth, key)
	}

	w.visited[key] = t
	return w.expand(t, depth+1)
}

// unwrap descends through composite kinds to their element types.
func (w *walker) unwrap(t reflect.Type, depth int) error {
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Chan:
		return w.visit(t.Elem(), depth)
	case reflect.Map:
		if err := w.visit(t.Key(), depth); err != nil {
			return err
		}
		return w.visit(t.Elem(), depth)
	case reflect.Func:
		for i := 0; i < t.NumIn(); i++ {
			if err := w.visit(t.In(i), depth); err != nil {
				return err
			}
		}
		for i := 0; i < t.NumOut(); i++ {
			if err := w.visit(t.Out(i), depth); err != nil {
				return err
			}
		}
	}
	return nil
}

// expand enumerates both candidate sources of a named type: its exported
// structure and its exported method set.
func (w *walker) expand(t reflect.Type, depth int) error {
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			if err := w.visit(f.Type, depth); err != nil {
				return err
			}
		}
	} else if err := w.unwrap(t, depth); err != nil {
		return err
	}

	if err := w.visitMethods(t, depth); err != nil {
		return err
	}
	if t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface {
		if err := w.visitMethods(reflect.PointerTo(t), depth); err != nil {
			return err
		}
	}
	return nil
}

// visitMethods walks the parameter and result types of the exported method
// set. For concrete receivers the signature's first parameter is the
// receiver itself; it is filtered out as the root or as already visited.
func (w *walker) visitMethods(t reflect.Type, depth int) error {
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !m.IsExported() {
			continue
		}
		sig := m.Type
		for j := 0; j < sig.NumIn(); j++ {
			if err := w.visit(sig.In(j), depth); err != nil {
				return err
			}
		}
		for j := 0; j < sig.NumOut(); j++ {
			if err := w.visit(sig.Out(j), depth); err != nil {
				return err
			}
		}
	}
	return nil
}
