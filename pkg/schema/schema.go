// Package schema turns type definitions and a resolver map into an
// executable graphql-go schema.
//
// Type definitions are inline SDL or a path to a schema file. Files may
// pull definitions from other files with graphql-import style comments:
//
//	# import * from "common.graphql"
//	# import User, Post from "./types/blog.graphql"
//	# import Query.posts, Mutation.* from "./types/blog.graphql"
//
// Fields of root types are merged across files. A path may also be a
// glob ("schema/**/*.graphql"); every match is loaded and the results
// are merged into one document.
package schema

import (
	"github.com/graphql-go/graphql"
	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2"
)

// Resolvers maps an object type name to the resolvers of its fields.
type Resolvers map[string]Fields

// Fields maps a field name to its resolver.
type Fields map[string]graphql.FieldResolveFn

// TypeResolveFn returns the name of the concrete object type of a value
// returned for an interface or union field.
type TypeResolveFn func(value interface{}) string

// Typenamer is implemented by values that know their GraphQL type name.
type Typenamer interface {
	Typename() string
}

// Typename is the default TypeResolveFn. It reads the "__typename" key
// of map values and calls Typename on Typenamer values.
func Typename(value interface{}) string {
	switch v := value.(type) {
	case Typenamer:
		return v.Typename()
	case map[string]interface{}:
		name, _ := v["__typename"].(string)
		return name
	default:
		return ""
	}
}

type config struct {
	scalars       map[string]*graphql.Scalar
	typeResolvers map[string]TypeResolveFn
	loader        *Loader
}

// Option configures Build.
type Option func(*config)

// WithScalar implements the custom scalar of the same name.
func WithScalar(scalar *graphql.Scalar) Option {
	return func(c *config) {
		c.scalars[scalar.Name()] = scalar
	}
}

// WithTypeResolver sets how values of the named interface or union are
// mapped onto object types.
func WithTypeResolver(abstract string, fn TypeResolveFn) Option {
	return func(c *config) {
		c.typeResolvers[abstract] = fn
	}
}

// WithLoader replaces the file system access used for schema files.
func WithLoader(loader *Loader) Option {
	return func(c *config) {
		c.loader = loader
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{
		scalars:       map[string]*graphql.Scalar{},
		typeResolvers: map[string]TypeResolveFn{},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.loader == nil {
		cfg.loader = OSLoader()
	}

	return cfg
}

// Build creates an executable schema from type definitions and resolvers.
func Build(typeDefs string, resolvers Resolvers, opts ...Option) (*graphql.Schema, error) {
	cfg := newConfig(opts)

	sources, err := cfg.loader.Load(typeDefs)
	if err != nil {
		return nil, err
	}

	doc, loadErr := gqlparser.LoadSchema(sources...)
	if loadErr != nil {
		return nil, errors.Wrap(loadErr, "invalid type definitions")
	}

	return newBuilder(doc, resolvers, cfg).build()
}
