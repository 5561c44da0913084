package schema

import (
	"fmt"
	"strings"

	language "github.com/hanpama/mongograph/internal/language"
)

// BuildFromSDL parses an SDL document and builds the metadata schema from it.
//
// Two mongograph-specific directives are recognized and stripped:
//
//	directive @computed(needs: [String!]) on FIELD_DEFINITION
//	directive @collection(name: String!) on OBJECT
func BuildFromSDL(sdl string) (*Schema, error) {
	// Add schema definition if missing
	if !strings.Contains(sdl, "schema {") {
		sdl = "schema { query: Query }\n" + sdl
	}
	doc, err := language.ParseSchema("schema.graphql", sdl)
	if err != nil {
		return nil, fmt.Errorf("parse sdl: %w", err)
	}

	s := &Schema{Types: map[string]*Type{}}
	for _, t := range builtinScalars {
		s.Types[t.Name] = t
	}
	if doc.Schema != nil {
		for _, op := range doc.Schema {
			for _, ot := range op.OperationTypes {
				if ot.Operation == language.Query {
					s.QueryType = ot.Type
				}
			}
		}
	}
	if s.QueryType == "" {
		s.QueryType = "Query"
	}

	for _, def := range doc.Definitions {
		switch def.Kind {
		case language.Object:
			t, err := buildObject(def)
			if err != nil {
				return nil, err
			}
			s.Types[t.Name] = t
		case language.Scalar:
			s.Types[def.Name] = &Type{Name: def.Name, Kind: TypeKindScalar, Description: def.Description}
		case language.Enum:
			s.Types[def.Name] = &Type{Name: def.Name, Kind: TypeKindEnum, Description: def.Description}
		}
	}
	return s, nil
}

func buildObject(def *language.Definition) (*Type, error) {
	t := &Type{Name: def.Name, Kind: TypeKindObject, Description: def.Description}
	if d := def.Directives.ForName("collection"); d != nil {
		arg := d.Arguments.ForName("name")
		if arg == nil || arg.Value == nil || arg.Value.Raw == "" {
			return nil, fmt.Errorf("type %s: @collection requires a name argument", def.Name)
		}
		t.Collection = arg.Value.Raw
	}
	for _, fd := range def.Fields {
		f, err := buildField(def.Name, fd)
		if err != nil {
			return nil, err
		}
		t.Fields = append(t.Fields, f)
	}
	return t, nil
}

func buildField(typeName string, def *language.FieldDefinition) (*Field, error) {
	f := &Field{
		Name:        def.Name,
		Description: def.Description,
		Type:        buildTypeRef(def.Type),
	}
	if d := def.Directives.ForName("computed"); d != nil {
		f.Computed = true
		if arg := d.Arguments.ForName("needs"); arg != nil && arg.Value != nil {
			for _, child := range arg.Value.Children {
				if child.Value == nil || child.Value.Raw == "" {
					return nil, fmt.Errorf("field %s.%s: @computed needs entries must be non-empty strings", typeName, def.Name)
				}
				f.Dependencies = append(f.Dependencies, child.Value.Raw)
			}
		}
	}
	return f, nil
}

func buildTypeRef(t *language.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return NonNullType(buildTypeRef(&language.Type{NamedType: t.NamedType, Elem: t.Elem}))
	}
	if t.NamedType != "" {
		return NamedType(t.NamedType)
	}
	return ListType(buildTypeRef(t.Elem))
}

var builtinScalars = []*Type{
	{Name: "String", Kind: TypeKindScalar},
	{Name: "Int", Kind: TypeKindScalar},
	{Name: "Float", Kind: TypeKindScalar},
	{Name: "Boolean", Kind: TypeKindScalar},
	{Name: "ID", Kind: TypeKindScalar},
}
