package server

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/caesium-cloud/gqlambda/internal/transport"
)

// Request is what a context provider sees of an invocation.
type Request struct {
	Event events.APIGatewayProxyRequest
	// Invocation is the Lambda invocation metadata, nil outside the
	// Lambda runtime.
	Invocation *lambdacontext.LambdaContext
}

// ContextProviderFunc computes the context value of one request.
type ContextProviderFunc func(ctx context.Context, req Request) (interface{}, error)

// Context is either a static value or a provider computing one value
// per request. The zero Context is the static value nil.
type Context struct {
	value    interface{}
	provider ContextProviderFunc
}

// StaticContext hands value to every request.
func StaticContext(value interface{}) Context {
	return Context{value: value}
}

// ContextFunc calls fn once per request.
func ContextFunc(fn ContextProviderFunc) Context {
	return Context{provider: fn}
}

func (c Context) resolve(ctx context.Context, req Request) (interface{}, error) {
	if c.provider == nil {
		return c.value, nil
	}
	return c.provider(ctx, req)
}

// ContextValue returns the context value of the request a resolver runs
// for. Resolvers pass their graphql.ResolveParams.Context.
func ContextValue(ctx context.Context) interface{} {
	return transport.Value(ctx)
}
