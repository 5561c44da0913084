package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const testSDL = `
type Query {
	user: User
}

type User @collection(name: "users") {
	id: ID!
	name: String!
	address: Address
	displayName: String @computed(needs: ["name", "address.city"])
	tags: [String!]
}

type Address {
	city: String
	zip: String
}
`

func TestBuildFromSDL(t *testing.T) {
	s, err := BuildFromSDL(testSDL)
	require.NoError(t, err)

	require.Equal(t, "Query", s.QueryType)
	require.NotNil(t, s.GetQueryType())

	user := s.GetType("User")
	require.NotNil(t, user)
	require.Equal(t, TypeKindObject, user.Kind)
	require.Equal(t, "users", user.Collection)

	name := user.GetField("name")
	require.NotNil(t, name)
	if diff := cmp.Diff(NonNullType(NamedType("String")), name.Type); diff != "" {
		t.Fatalf("name type mismatch (-want +got):\n%s", diff)
	}
	require.False(t, name.Computed)

	display := user.GetField("displayName")
	require.NotNil(t, display)
	require.True(t, display.Computed)
	require.Equal(t, []string{"name", "address.city"}, display.Dependencies)

	tags := user.GetField("tags")
	require.NotNil(t, tags)
	require.True(t, tags.Type.IsList())
	require.Equal(t, "String", tags.Type.GetNamedType())

	// Builtins are registered even when the SDL does not mention them all
	require.NotNil(t, s.GetType("Boolean"))
}

func TestBuildFromSDLWithoutSchemaBlock(t *testing.T) {
	s, err := BuildFromSDL(`type Query { a: String }`)
	require.NoError(t, err)
	require.Equal(t, "Query", s.QueryType)
}

func TestBuildFromSDLCollectionMissingName(t *testing.T) {
	_, err := BuildFromSDL(`
type Query { a: String }
type Broken @collection { a: String }
`)
	require.Error(t, err)
}

func TestBuildFromSDLInvalid(t *testing.T) {
	_, err := BuildFromSDL(`type {`)
	require.Error(t, err)
}
