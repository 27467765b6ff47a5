// Package server adapts a GraphQL schema to AWS Lambda handlers for API
// Gateway proxy events.
//
//	srv, err := server.New(server.Props{
//		TypeDefs:  "schema.graphql",
//		Resolvers: resolvers,
//		Context: server.ContextFunc(func(ctx context.Context, req server.Request) (interface{}, error) {
//			return loadUser(ctx, req.Event.Headers["Authorization"])
//		}),
//	})
//	if err != nil {
//		log.Fatal("server construction failure", "error", err)
//	}
//	lambda.Start(srv.GraphQLHandler)
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/caesium-cloud/gqlambda/internal/metrics"
	"github.com/caesium-cloud/gqlambda/internal/transport"
	"github.com/caesium-cloud/gqlambda/pkg/log"
	"github.com/caesium-cloud/gqlambda/pkg/options"
	"github.com/caesium-cloud/gqlambda/pkg/playground"
	"github.com/caesium-cloud/gqlambda/pkg/schema"
	"github.com/caesium-cloud/gqlambda/pkg/tracing"
	"github.com/graphql-go/graphql"
	"github.com/pkg/errors"
)

const (
	corsHeader = "Access-Control-Allow-Origin"

	graphqlHandlerName    = "graphql"
	playgroundHandlerName = "playground"
)

// ErrNoSchema is returned by New when neither a schema nor type
// definitions with resolvers are given.
var ErrNoSchema = errors.New("schema or type definitions with resolvers required")

// Props configure a Server. Exactly one schema source is used: Schema
// when set, else TypeDefs with Resolvers.
type Props struct {
	// Schema is a ready executable schema. No file system access
	// happens when it is set.
	Schema *graphql.Schema

	// TypeDefs is inline SDL, or a path (or glob) to .graphql files.
	TypeDefs string
	// Resolvers binds field resolvers to TypeDefs. It must be non-nil,
	// though it may be empty.
	Resolvers     schema.Resolvers
	SchemaOptions []schema.Option

	Options    *options.Options
	Context    Context
	RootValue  map[string]interface{}
	Playground *playground.Handler
}

type executeFunc func(context.Context, events.APIGatewayProxyRequest, transport.Options) (events.APIGatewayProxyResponse, error)

// Server holds the resolved schema and options shared by every
// invocation.
type Server struct {
	options    options.Options
	schema     *graphql.Schema
	context    Context
	root       map[string]interface{}
	playground *playground.Handler
	execute    executeFunc
}

// New resolves the options, context provider and schema of props.
func New(props Props) (*Server, error) {
	s := &Server{
		options:    options.Merge(props.Options),
		context:    props.Context,
		root:       props.RootValue,
		playground: props.Playground,
		execute:    transport.Handle,
	}

	switch {
	case props.Schema != nil:
		s.schema = props.Schema
	case props.TypeDefs != "" && props.Resolvers != nil:
		built, err := schema.Build(props.TypeDefs, props.Resolvers, props.SchemaOptions...)
		if err != nil {
			return nil, err
		}
		s.schema = built
	default:
		return nil, ErrNoSchema
	}

	tracing.Instrument(s.schema)

	if s.playground == nil {
		s.playground = playground.New(playground.DefaultTitle, playground.DefaultEndpoint)
	}

	return s, nil
}

// Options returns the merged options.
func (s *Server) Options() options.Options {
	return s.options
}

// Schema returns the executable schema.
func (s *Server) Schema() *graphql.Schema {
	return s.schema
}

// RootValue returns the root value handed to top level resolvers.
func (s *Server) RootValue() map[string]interface{} {
	return s.root
}

// Playground returns the playground handler.
func (s *Server) Playground() *playground.Handler {
	return s.playground
}

// GraphQLHandler executes the GraphQL request carried by event.
func (s *Server) GraphQLHandler(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()

	req := Request{Event: event}
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		req.Invocation = lc
	}

	logger := log.With("request_id", requestID(req))

	value, err := s.context.resolve(ctx, req)
	if err != nil {
		logger.Errorw("context creation failure", "error", err)
		metrics.ContextFailuresTotal.WithLabelValues(graphqlHandlerName).Inc()
		return events.APIGatewayProxyResponse{}, err
	}

	traced := s.options.Tracing.Enabled(func(name string) bool {
		return transport.HasHeader(event, name)
	})
	if traced {
		metrics.TracedRequestsTotal.WithLabelValues(string(s.options.Tracing.Mode)).Inc()
	}

	resp, err := s.execute(ctx, event, transport.Options{
		Schema:    s.schema,
		Tracing:   traced,
		Context:   value,
		RootValue: s.root,
	})
	if err != nil {
		logger.Errorw("graphql execution failure", "error", err)
		return resp, err
	}

	transport.SetHeader(&resp, corsHeader, "*")

	observe(graphqlHandlerName, resp.StatusCode, start)
	logger.Debugw("graphql request served", "status", resp.StatusCode, "tracing", traced)

	return resp, nil
}

// PlaygroundHandler serves the playground page.
func (s *Server) PlaygroundHandler(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()

	resp, err := s.playground.Handle(ctx, event)
	if err != nil {
		return resp, errors.Wrap(err, "render playground")
	}

	observe(playgroundHandlerName, resp.StatusCode, start)

	return resp, nil
}

func observe(handler string, status int, start time.Time) {
	if status == 0 {
		status = http.StatusOK
	}
	metrics.InvocationsTotal.WithLabelValues(handler, strconv.Itoa(status)).Inc()
	metrics.InvocationDurationSeconds.WithLabelValues(handler).Observe(time.Since(start).Seconds())
}

func requestID(req Request) string {
	if req.Invocation != nil && req.Invocation.AwsRequestID != "" {
		return req.Invocation.AwsRequestID
	}
	return req.Event.RequestContext.RequestID
}
