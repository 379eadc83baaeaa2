package schema

import (
	"fmt"
	"regexp"

	"go.hackerguild.com/wexpr"
)

// Type is a named validation rule set.
//
// A type constrains the shapes an expression may take (its primitive set),
// may inherit disjunctively from parent types (the expression must satisfy
// at least one), and may add per-shape rules: a regex for values, an
// element rule for arrays, and property/key rules for maps.
type Type struct {
	name        string
	description string

	// primitive is the declared set; [Type.effectivePrimitive] derives the
	// usable set from parents when nothing was declared.
	primitive PrimitiveType
	parents   []*typeRef

	valueRegexString string
	valueRegex       *regexp.Regexp

	arrayAllElements *TypeInstance

	mapProperties    map[string]*TypeInstance
	mapPropertyNames []string
	mapAllProperties *TypeInstance
	mapKeyType       *TypeInstance

	mapAllowAdditionalProperties bool
}

// newTypeFromExpression reads a type definition from its schema expression.
func newTypeFromExpression(name string, expr *wexpr.Expression) (*Type, error) {
	t := &Type{
		name:          name,
		mapProperties: make(map[string]*TypeInstance),
	}

	if desc := expr.MapGet("description"); desc != nil {
		t.description = desc.Value()
	}

	if prim := expr.MapGet("primitiveType"); prim != nil {
		t.primitive = primitiveTypeFromString(prim.Value())
	}

	if parents := expr.MapGet("type"); parents != nil {
		switch parents.Type() {
		case wexpr.TypeValue:
			t.parents = append(t.parents, &typeRef{name: parents.Value()})

		case wexpr.TypeArray:
			for i := 0; i < parents.ArrayCount(); i++ {
				t.parents = append(t.parents, &typeRef{name: parents.ArrayAt(i).Value()})
			}
		}
	}

	if regexExpr := expr.MapGet("valueRegex"); regexExpr != nil {
		t.valueRegexString = regexExpr.Value()

		// anchored: the whole value must match
		compiled, err := regexp.Compile("^(?:" + t.valueRegexString + ")$")
		if err != nil {
			return nil, fmt.Errorf("type %q: compiling valueRegex: %w", name, err)
		}

		t.valueRegex = compiled
	}

	if allElems := expr.MapGet("arrayAllElements"); allElems != nil {
		t.arrayAllElements = newTypeInstance(allElems)
	}

	if props := expr.MapGet("mapProperties"); props != nil {
		for i := 0; i < props.MapCount(); i++ {
			key := props.MapKeyAt(i)

			t.mapProperties[key] = newTypeInstance(props.MapValueAt(i))
			t.mapPropertyNames = append(t.mapPropertyNames, key)
		}
	}

	if keyType := expr.MapGet("mapKeyType"); keyType != nil {
		t.mapKeyType = newTypeInstance(keyType)
	}

	if allProps := expr.MapGet("mapAllProperties"); allProps != nil {
		t.mapAllProperties = newTypeInstance(allProps)
	}

	if allow := expr.MapGet("mapAllowAdditionalProperties"); allow != nil && allow.Value() == "true" {
		t.mapAllowAdditionalProperties = true
	}

	return t, nil
}

// Name returns the type's name.
func (t *Type) Name() string {
	return t.name
}

// Description returns the type's documentation.
func (t *Type) Description() string {
	return t.description
}

// resolve links every type name mentioned by this type to its definition.
func (t *Type) resolve(s *Schema) *Error {
	for _, ref := range t.parents {
		if err := ref.resolve(s); err != nil {
			return err
		}
	}

	for _, name := range t.mapPropertyNames {
		if err := t.mapProperties[name].resolve(s); err != nil {
			return err
		}
	}

	for _, ti := range []*TypeInstance{t.arrayAllElements, t.mapKeyType, t.mapAllProperties} {
		if ti == nil {
			continue
		}

		if err := ti.resolve(s); err != nil {
			return err
		}
	}

	return nil
}

// effectivePrimitive returns the declared primitive set, or the union of
// the parents' effective sets when nothing was declared.
func (t *Type) effectivePrimitive() PrimitiveType {
	if t.primitive != PrimitiveUnknown {
		return t.primitive
	}

	p := PrimitiveUnknown
	for _, ref := range t.parents {
		if ref.resolved != nil {
			p |= ref.resolved.effectivePrimitive()
		}
	}

	return p
}

// validate checks expression against the type, returning a chain of every
// failure found, or nil when the expression conforms.
func (t *Type) validate(objectPath *Twine, expression *wexpr.Expression) *Error {
	primitive := t.effectivePrimitive()

	exprType := wexpr.TypeInvalid
	if expression != nil {
		exprType = expression.Type()
	}

	if !primitive.Matches(exprType) {
		msg := fmt.Sprintf("expression didn't match primitive type: was %s but expected %s",
			exprType, primitive)

		return newError(ErrorInternal, objectPath, msg, nil, nil)
	}

	// disjunctive parents: at least one must accept the expression
	if len(t.parents) > 0 {
		var attempts *Error

		matched := false

		for _, ref := range t.parents {
			err := ref.resolved.validate(objectPath, expression)
			if err == nil {
				matched = true

				break
			}

			attempts = chain(attempts, err)
		}

		if !matched {
			return newError(ErrorInternal, objectPath,
				"does not match possible types; reasons for each possible type follow",
				attempts, nil)
		}
	}

	switch exprType {
	case wexpr.TypeArray:
		return t.validateArray(objectPath, expression)
	case wexpr.TypeMap:
		return t.validateMap(objectPath, expression)
	case wexpr.TypeValue:
		return t.validateValue(objectPath, expression)
	}

	return nil
}

func (t *Type) validateValue(objectPath *Twine, expression *wexpr.Expression) *Error {
	if t.valueRegex == nil {
		return nil
	}

	value := expression.Value()
	if t.valueRegex.MatchString(value) {
		return nil
	}

	msg := fmt.Sprintf("value %q does not meet required regex %q", value, t.valueRegexString)

	return newError(ErrorInternal, objectPath, msg, nil, nil)
}

func (t *Type) validateArray(objectPath *Twine, expression *wexpr.Expression) *Error {
	if t.arrayAllElements == nil {
		return nil
	}

	var errs *Error

	for i := 0; i < expression.ArrayCount(); i++ {
		elementPath := objectPath.Append(fmt.Sprintf("[%d]", i))

		if err := t.arrayAllElements.validate(elementPath, expression.ArrayAt(i)); err != nil {
			errs = chain(errs, err)
		}
	}

	return errs
}

func (t *Type) validateMap(objectPath *Twine, expression *wexpr.Expression) *Error {
	var errs *Error

	for _, name := range t.mapPropertyNames {
		propertyPath := appendPath(objectPath, name)

		err := t.mapProperties[name].validate(propertyPath, expression.MapGet(name))
		if err != nil {
			errs = chain(errs, newError(ErrorInternal, propertyPath,
				"error when validating map property: "+name, err, nil))
		}
	}

	if t.mapKeyType != nil || t.mapAllProperties != nil {
		for i := 0; i < expression.MapCount(); i++ {
			key := expression.MapKeyAt(i)
			keyPath := appendPath(objectPath, key)

			if t.mapKeyType != nil {
				// keys validate as synthesized value expressions
				if err := t.mapKeyType.validate(keyPath, wexpr.NewValue(key)); err != nil {
					errs = chain(errs, err)
				}
			}

			if t.mapAllProperties != nil {
				if err := t.mapAllProperties.validate(keyPath, expression.MapValueAt(i)); err != nil {
					errs = chain(errs, err)
				}
			}
		}
	}

	if t.mapAllProperties == nil && !t.mapAllowAdditionalProperties {
		for i := 0; i < expression.MapCount(); i++ {
			key := expression.MapKeyAt(i)

			if _, known := t.mapProperties[key]; !known {
				errs = chain(errs, newError(ErrorInternal, objectPath,
					"map has additional property which wasn't allowed: "+key, nil, nil))
			}
		}
	}

	return errs
}
