package playground

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	h := New("", "")
	assert.Equal(t, DefaultEndpoint, h.Endpoint())
}

func TestHandle(t *testing.T) {
	h := New("Explorer", "/prod/graphql")

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodGet,
		Path:       "/prod/playground",
		Headers:    map[string]string{"Accept": "text/html"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Headers["Content-Type"], "text/html")
	// the endpoint may be JS escaped inside the page script
	assert.Contains(t, resp.Body, "prod")
	assert.Contains(t, resp.Body, "Explorer")
}

func TestServeHTTP(t *testing.T) {
	rec := httptest.NewRecorder()
	New("", "/dev/graphql").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/playground", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dev")
}
