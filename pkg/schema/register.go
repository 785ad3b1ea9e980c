package schema

import (
	"reflect"

	"github.com/viant/x"

	"github.com/fyrsmithlabs/mcpd/pkg/hints"
)

// RegisterHints collects every named type reachable from root and requests
// reflective access to all member categories for each. Collection completes
// before the first registration, so a failed walk registers nothing.
func RegisterHints(h *hints.Hints, root reflect.Type, opts ...Option) error {
	types, err := NestedTypes(root, opts...)
	if err != nil {
		return err
	}
	for _, t := range types {
		h.Reflection().RegisterType(hints.TypeReferenceOf(t), hints.AllMemberCategories()...)
	}
	return nil
}

// RegisterTypes collects every named type reachable from root and registers
// each with the runtime type registry, keyed by package path and name.
func RegisterTypes(reg *x.Registry, root reflect.Type, opts ...Option) error {
	types, err := NestedTypes(root, opts...)
	if err != nil {
		return err
	}
	for _, t := range types {
		reg.Register(x.NewType(t, x.WithName(t.Name()), x.WithPkgPath(t.PkgPath())))
	}
	return nil
}
