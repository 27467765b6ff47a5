// Package app assembles the deployable server from the environment.
package app

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/caesium-cloud/gqlambda/pkg/env"
	"github.com/caesium-cloud/gqlambda/pkg/options"
	"github.com/caesium-cloud/gqlambda/pkg/playground"
	"github.com/caesium-cloud/gqlambda/pkg/schema"
	"github.com/caesium-cloud/gqlambda/pkg/server"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// GraphQLHandler selects the GraphQL endpoint handler.
	GraphQLHandler = "graphql"
	// PlaygroundHandler selects the playground page handler.
	PlaygroundHandler = "playground"
)

// HandlerFunc is the Lambda handler signature for API Gateway proxy
// events.
type HandlerFunc func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// Invocation is the context value resolvers of the deployed server see.
type Invocation struct {
	Stage     string `json:"stage"`
	RequestID string `json:"requestId"`
}

// NewServer builds a server from the type definitions and root value
// named by vars. Fields resolve from the root value.
func NewServer(vars env.Environment) (*server.Server, error) {
	root, err := LoadRootValue(vars.RootValue)
	if err != nil {
		return nil, err
	}

	stage := vars.Stage

	return server.New(server.Props{
		TypeDefs:  vars.TypeDefs,
		Resolvers: schema.Resolvers{},
		RootValue: root,
		Options:   &options.Options{Tracing: vars.Tracing},
		Context: server.ContextFunc(func(ctx context.Context, req server.Request) (interface{}, error) {
			inv := Invocation{
				Stage:     req.Event.RequestContext.Stage,
				RequestID: req.Event.RequestContext.RequestID,
			}
			if inv.Stage == "" {
				inv.Stage = stage
			}
			if req.Invocation != nil {
				inv.RequestID = req.Invocation.AwsRequestID
			}
			return inv, nil
		}),
		Playground: playground.New("", vars.PlaygroundEndpoint),
	})
}

// LoadRootValue decodes a YAML or JSON object file. An empty path
// yields no root value.
func LoadRootValue(path string) (map[string]interface{}, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read root value")
	}

	root := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrapf(err, "failed to decode root value %s", path)
	}

	return root, nil
}

// Handler returns the handler of srv selected by name.
func Handler(srv *server.Server, name string) (HandlerFunc, error) {
	switch name {
	case "", GraphQLHandler:
		return srv.GraphQLHandler, nil
	case PlaygroundHandler:
		return srv.PlaygroundHandler, nil
	default:
		return nil, errors.Errorf("unknown handler %q", name)
	}
}
