package schema

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const typeDefs = `
scalar JSON

enum Color {
  RED
  GREEN
  BLUE @deprecated(reason: "too cold")
}

interface Node {
  id: ID!
}

type User implements Node {
  id: ID!
  name: String
}

type Post implements Node {
  id: ID!
  title: String
}

union SearchResult = User | Post

input AddInput {
  a: Int!
  b: Int = 10
}

type Query {
  hello(name: String = "world"): String
  favorite: Color
  node: Node
  search: [SearchResult!]!
  echo(value: JSON): JSON
  old: String @deprecated
}

type Mutation {
  add(input: AddInput!): Int
}
`

type post struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (post) Typename() string { return "Post" }

func resolvers() Resolvers {
	return Resolvers{
		"Query": Fields{
			"hello": func(p graphql.ResolveParams) (interface{}, error) {
				return fmt.Sprintf("hello %v", p.Args["name"]), nil
			},
			"favorite": func(p graphql.ResolveParams) (interface{}, error) {
				return "GREEN", nil
			},
			"node": func(p graphql.ResolveParams) (interface{}, error) {
				return map[string]interface{}{"__typename": "User", "id": "1", "name": "Ada"}, nil
			},
			"search": func(p graphql.ResolveParams) (interface{}, error) {
				return []interface{}{
					map[string]interface{}{"__typename": "User", "id": "1", "name": "Ada"},
					post{ID: "2", Title: "Notes"},
				}, nil
			},
			"echo": func(p graphql.ResolveParams) (interface{}, error) {
				return p.Args["value"], nil
			},
		},
		"Mutation": Fields{
			"add": func(p graphql.ResolveParams) (interface{}, error) {
				in := p.Args["input"].(map[string]interface{})
				return in["a"].(int) + in["b"].(int), nil
			},
		},
	}
}

type SchemaTestSuite struct {
	suite.Suite
}

func (s *SchemaTestSuite) run(schema *graphql.Schema, query string) string {
	res := graphql.Do(graphql.Params{Schema: *schema, RequestString: query})
	require.Empty(s.T(), res.Errors, query)

	out, err := json.Marshal(res.Data)
	require.NoError(s.T(), err)

	return string(out)
}

func (s *SchemaTestSuite) TestBuildInline() {
	schema, err := Build(typeDefs, resolvers())
	require.NoError(s.T(), err)

	assert.JSONEq(s.T(), `{"hello":"hello world"}`, s.run(schema, `{ hello }`))
	assert.JSONEq(s.T(), `{"hello":"hello Ada"}`, s.run(schema, `{ hello(name: "Ada") }`))
	assert.JSONEq(s.T(), `{"favorite":"GREEN"}`, s.run(schema, `{ favorite }`))
	assert.JSONEq(s.T(),
		`{"node":{"id":"1","name":"Ada"}}`,
		s.run(schema, `{ node { id ... on User { name } } }`))
	assert.JSONEq(s.T(),
		`{"search":[{"name":"Ada"},{"title":"Notes"}]}`,
		s.run(schema, `{ search { ... on User { name } ... on Post { title } } }`))
	assert.JSONEq(s.T(),
		`{"echo":{"a":1,"b":["x",true]}}`,
		s.run(schema, `{ echo(value: {a: 1, b: ["x", true]}) }`))
	assert.JSONEq(s.T(), `{"add":11}`, s.run(schema, `mutation { add(input: {a: 1}) }`))
}

func (s *SchemaTestSuite) TestBuildDeprecation() {
	schema, err := Build(typeDefs, resolvers())
	require.NoError(s.T(), err)

	fields := schema.QueryType().Fields()
	assert.Equal(s.T(), defaultDeprecationReason, fields["old"].DeprecationReason)
	assert.Empty(s.T(), fields["hello"].DeprecationReason)

	color, ok := schema.Type("Color").(*graphql.Enum)
	require.True(s.T(), ok)

	for _, v := range color.Values() {
		if v.Name == "BLUE" {
			assert.Equal(s.T(), "too cold", v.DeprecationReason)
		}
	}
}

func (s *SchemaTestSuite) TestTypeResolverOption() {
	schema, err := Build(typeDefs, resolvers(), WithTypeResolver("Node", func(value interface{}) string {
		return "Post"
	}))
	require.NoError(s.T(), err)

	assert.JSONEq(s.T(),
		`{"node":{"id":"1"}}`,
		s.run(schema, `{ node { id ... on User { name } } }`))
}

func (s *SchemaTestSuite) TestScalarOption() {
	upper := graphql.NewScalar(graphql.ScalarConfig{
		Name:         "JSON",
		Serialize:    func(value interface{}) interface{} { return "serialized" },
		ParseValue:   func(value interface{}) interface{} { return value },
		ParseLiteral: literal,
	})

	schema, err := Build(typeDefs, resolvers(), WithScalar(upper))
	require.NoError(s.T(), err)

	assert.JSONEq(s.T(), `{"echo":"serialized"}`, s.run(schema, `{ echo(value: 1) }`))
}

func (s *SchemaTestSuite) TestNilResolversUseDefaultResolver() {
	schema, err := Build(`type Query { greeting: String }`, Resolvers{})
	require.NoError(s.T(), err)

	res := graphql.Do(graphql.Params{
		Schema:        *schema,
		RequestString: `{ greeting }`,
		RootObject:    map[string]interface{}{"greeting": "hi"},
	})
	require.Empty(s.T(), res.Errors)
	assert.Equal(s.T(), map[string]interface{}{"greeting": "hi"}, res.Data)
}

func (s *SchemaTestSuite) TestResolverErrors() {
	noop := func(p graphql.ResolveParams) (interface{}, error) { return nil, nil }

	_, err := Build(typeDefs, Resolvers{"Missing": Fields{"x": noop}})
	assert.EqualError(s.T(), err, "Missing defined in resolvers, but not in schema")

	_, err = Build(typeDefs, Resolvers{"Query": Fields{"nope": noop}})
	assert.EqualError(s.T(), err, "Query.nope defined in resolvers, but not in schema")

	_, err = Build(typeDefs, Resolvers{"Node": Fields{"id": noop}})
	assert.EqualError(s.T(), err, "Node defined in resolvers, but it is not an object type")
}

func (s *SchemaTestSuite) TestInvalidTypeDefs() {
	_, err := Build(`type Query { broken: Unknown }`, Resolvers{})
	assert.Error(s.T(), err)

	_, err = Build(`type Query {`, Resolvers{})
	assert.Error(s.T(), err)
}

func (s *SchemaTestSuite) TestTypename() {
	assert.Equal(s.T(), "User", Typename(map[string]interface{}{"__typename": "User"}))
	assert.Equal(s.T(), "Post", Typename(post{}))
	assert.Empty(s.T(), Typename(42))
	assert.Empty(s.T(), Typename(map[string]interface{}{"__typename": 1}))
}

func TestSchemaTestSuite(t *testing.T) {
	suite.Run(t, new(SchemaTestSuite))
}
