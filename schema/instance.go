package schema

import "go.hackerguild.com/wexpr"

// typeRef is a reference to a named type: unresolved it holds only the
// name, after [Schema] resolution it holds a non-owning link to the type.
type typeRef struct {
	name     string
	resolved *Type
}

func (r *typeRef) resolve(s *Schema) *Error {
	if r.resolved != nil {
		return nil
	}

	t := s.TypeWithName(r.name)
	if t == nil {
		return newError(ErrorInternal, NewTwine("[schema]"),
			"failed to resolve type: "+r.name, nil, nil)
	}

	r.resolved = t

	return nil
}

// TypeInstance is a use-site of a named type, applied to a property slot,
// to every array element, or to map keys/values.
type TypeInstance struct {
	description string
	ref         *typeRef
	optional    bool
}

// newTypeInstance reads a type-instance definition from its schema
// expression: description, type (name), and optional ("true").
func newTypeInstance(expr *wexpr.Expression) *TypeInstance {
	ti := &TypeInstance{}

	if desc := expr.MapGet("description"); desc != nil {
		ti.description = desc.Value()
	}

	if name := expr.MapGet("type"); name != nil {
		ti.ref = &typeRef{name: name.Value()}
	}

	if opt := expr.MapGet("optional"); opt != nil && opt.Value() == "true" {
		ti.optional = true
	}

	return ti
}

// Description returns the documentation attached to the instance.
func (ti *TypeInstance) Description() string {
	return ti.description
}

// Optional reports whether a null or missing expression passes without
// further checks.
func (ti *TypeInstance) Optional() bool {
	return ti.optional
}

func (ti *TypeInstance) resolve(s *Schema) *Error {
	if ti.ref == nil {
		return newError(ErrorInternal, NewTwine("[schema]"),
			"type instance is missing its type", nil, nil)
	}

	return ti.ref.resolve(s)
}

// validate checks expression against the instance's type. Optional
// instances short-circuit on null or missing expressions.
func (ti *TypeInstance) validate(objectPath *Twine, expression *wexpr.Expression) *Error {
	if ti.optional && (expression == nil || expression.Type() == wexpr.TypeNull) {
		return nil
	}

	return ti.ref.resolved.validate(objectPath, expression)
}
