package schema

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.hackerguild.com/wexpr"
)

// MetaSchemaID is the only meta-schema recognized in a document's $schema
// key.
const MetaSchemaID = "https://wexpr.hackerguild.com/versions/1.schema.wexpr"

// Sentinel errors returned by [Load].
var (
	// ErrLoad indicates the schema document could not be loaded or parsed.
	ErrLoad = errors.New("loading schema")
	// ErrRemoteSchema indicates a schema id resolved to an http/https URL,
	// which is not supported; map the id to a local path via
	// [Callbacks.PathForSchemaID].
	ErrRemoteSchema = errors.New("remote schema fetch not supported")
)

// Callbacks customizes schema loading.
type Callbacks struct {
	// PathForSchemaID maps a schema id to a local file path. When nil, or
	// when it returns "", the id itself is used as the path.
	PathForSchemaID func(id string) string
}

// Schema is a loaded, fully resolved schema document. Construct with
// [Load]; a Schema is immutable afterward and safe for concurrent
// validation.
type Schema struct {
	id          string
	title       string
	description string

	types     map[string]*Type
	typeNames []string

	rootType *Type

	// referenced maps a module prefix to a schema loaded for module::name
	// lookups.
	referenced map[string]*Schema
}

// Load reads, parses, and resolves the schema document identified by id.
// The id is mapped to a file path through cb; referenced schemas are loaded
// through the same callbacks.
func Load(id string, cb *Callbacks) (*Schema, error) {
	path := id
	if cb != nil && cb.PathForSchemaID != nil {
		if p := cb.PathForSchemaID(id); p != "" {
			path = p
		}
	}

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return nil, fmt.Errorf("%w: %w: %s", ErrLoad, ErrRemoteSchema, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	root, err := wexpr.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	if root.Type() != wexpr.TypeMap {
		return nil, fmt.Errorf("%w: schema document root must be a map", ErrLoad)
	}

	if meta := root.MapGet("$schema"); meta != nil && meta.Value() != MetaSchemaID {
		return nil, fmt.Errorf("%w: unrecognized meta-schema %q", ErrLoad, meta.Value())
	}

	s := &Schema{
		id:         id,
		types:      make(map[string]*Type),
		referenced: make(map[string]*Schema),
	}

	if idExpr := root.MapGet("$id"); idExpr != nil {
		s.id = idExpr.Value()
	}

	if title := root.MapGet("title"); title != nil {
		s.title = title.Value()
	}

	if desc := root.MapGet("description"); desc != nil {
		s.description = desc.Value()
	}

	if refs := root.MapGet("referencedSchemas"); refs != nil {
		for i := 0; i < refs.MapCount(); i++ {
			prefix := refs.MapKeyAt(i)

			ref, refErr := Load(refs.MapValueAt(i).Value(), cb)
			if refErr != nil {
				return nil, fmt.Errorf("%w: referenced schema %q: %w", ErrLoad, prefix, refErr)
			}

			s.referenced[prefix] = ref
		}
	}

	// first pass: instantiate every declared type
	if typesExpr := root.MapGet("$types"); typesExpr != nil {
		for i := 0; i < typesExpr.MapCount(); i++ {
			name := typesExpr.MapKeyAt(i)

			t, typeErr := newTypeFromExpression(name, typesExpr.MapValueAt(i))
			if typeErr != nil {
				return nil, fmt.Errorf("%w: %w", ErrLoad, typeErr)
			}

			s.types[name] = t
			s.typeNames = append(s.typeNames, name)
		}
	}

	// second pass: resolve every name against this schema or a referenced one
	for _, name := range s.typeNames {
		if resolveErr := s.types[name].resolve(s); resolveErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoad, resolveErr)
		}
	}

	if rootTypeExpr := root.MapGet("rootType"); rootTypeExpr != nil {
		name := rootTypeExpr.Value()

		s.rootType = s.TypeWithName(name)
		if s.rootType == nil {
			return nil, fmt.Errorf("%w: failed to resolve root type: %s", ErrLoad, name)
		}
	}

	return s, nil
}

// ID returns the schema's id ($id when declared, the load id otherwise).
func (s *Schema) ID() string {
	return s.id
}

// Title returns the schema's title.
func (s *Schema) Title() string {
	return s.title
}

// Description returns the schema's description.
func (s *Schema) Description() string {
	return s.description
}

// TypeWithName returns the named type, or nil when unknown. Names of the
// form module::name look inside the referenced schema registered under
// module.
func (s *Schema) TypeWithName(name string) *Type {
	if module, rest, found := strings.Cut(name, "::"); found {
		ref, ok := s.referenced[module]
		if !ok {
			return nil
		}

		return ref.TypeWithName(rest)
	}

	return s.types[name]
}

// ValidateExpression checks an expression tree against the schema's root
// type. It returns nil on success and an [*Error] chain describing every
// failure otherwise.
func (s *Schema) ValidateExpression(expr *wexpr.Expression) error {
	if s.rootType == nil {
		return newError(ErrorInternal, NewTwine("/"), "schema has no root type", nil, nil)
	}

	if err := s.rootType.validate(NewTwine("/"), expr); err != nil {
		return err
	}

	return nil
}
