package transport

import (
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// HasHeader reports whether the event carries the named header, compared
// case-insensitively, whatever its value.
func HasHeader(event events.APIGatewayProxyRequest, name string) bool {
	for k := range event.Headers {
		if strings.EqualFold(k, name) {
			return true
		}
	}

	for k := range event.MultiValueHeaders {
		if strings.EqualFold(k, name) {
			return true
		}
	}

	return false
}

// SetHeader sets a response header, replacing every existing spelling
// of it.
func SetHeader(resp *events.APIGatewayProxyResponse, name, value string) {
	for k := range resp.Headers {
		if strings.EqualFold(k, name) {
			delete(resp.Headers, k)
		}
	}

	for k := range resp.MultiValueHeaders {
		if strings.EqualFold(k, name) {
			delete(resp.MultiValueHeaders, k)
		}
	}

	if resp.Headers == nil {
		resp.Headers = map[string]string{}
	}

	resp.Headers[name] = value
}
