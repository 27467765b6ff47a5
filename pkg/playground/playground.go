// Package playground serves the interactive GraphQL explorer for a
// Lambda deployed endpoint.
package playground

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/aws/aws-lambda-go/events"
	"github.com/caesium-cloud/gqlambda/internal/transport"
)

const (
	// DefaultEndpoint is the GraphQL endpoint of a default serverless
	// deployment stage.
	DefaultEndpoint = "/dev/graphql"
	// DefaultTitle is the page title.
	DefaultTitle = "GraphQL Playground"
)

// Handler renders the playground pointed at a fixed GraphQL endpoint.
type Handler struct {
	endpoint string
	page     http.HandlerFunc
}

// New creates a Handler whose UI queries endpoint.
func New(title, endpoint string) *Handler {
	if title == "" {
		title = DefaultTitle
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	return &Handler{
		endpoint: endpoint,
		page:     playground.Handler(title, endpoint),
	}
}

// Endpoint returns the GraphQL endpoint the UI talks to.
func (h *Handler) Endpoint() string {
	return h.endpoint
}

// ServeHTTP renders the page.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.page.ServeHTTP(w, r)
}

// Handle renders the page for an API Gateway event.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req, err := transport.NewHTTPRequest(ctx, event)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return transport.FromRecorder(rec), nil
}
