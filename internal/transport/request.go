package transport

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// Request is a single GraphQL operation request.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

type rawRequest struct {
	Query         string          `json:"query"`
	OperationName string          `json:"operationName"`
	Variables     json.RawMessage `json:"variables"`
}

// HTTPError is a request framing failure answered with a plain HTTP
// response instead of a GraphQL result.
type HTTPError struct {
	StatusCode int
	Message    string
	Headers    map[string]string
}

func (e *HTTPError) Error() string {
	return e.Message
}

func httpError(status int, message string, headers map[string]string) *HTTPError {
	return &HTTPError{StatusCode: status, Message: message, Headers: headers}
}

// Decode extracts the GraphQL requests of an API Gateway event. batch
// reports whether the body held an array of requests.
func Decode(event events.APIGatewayProxyRequest) (reqs []Request, batch bool, err error) {
	switch strings.ToUpper(event.HTTPMethod) {
	case http.MethodGet:
		req, err := decodeQuery(event)
		if err != nil {
			return nil, false, err
		}
		return []Request{req}, false, nil
	case http.MethodPost:
		return decodeBody(event)
	default:
		return nil, false, httpError(
			http.StatusMethodNotAllowed,
			"Apollo Server supports only GET/POST requests.",
			map[string]string{"Allow": "GET, POST"},
		)
	}
}

func decodeQuery(event events.APIGatewayProxyRequest) (Request, error) {
	params := map[string]string{}
	for k, v := range event.MultiValueQueryStringParameters {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	for k, v := range event.QueryStringParameters {
		params[k] = v
	}

	if params["query"] == "" {
		return Request{}, httpError(http.StatusBadRequest, "GET query missing.", nil)
	}

	req := Request{
		Query:         params["query"],
		OperationName: params["operationName"],
	}

	if raw := params["variables"]; raw != "" {
		vars, err := decodeVariables(json.RawMessage(raw))
		if err != nil {
			return Request{}, err
		}
		req.Variables = vars
	}

	return req, nil
}

func decodeBody(event events.APIGatewayProxyRequest) ([]Request, bool, error) {
	body := []byte(event.Body)

	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, false, httpError(http.StatusBadRequest, "POST body is not valid base64.", nil)
		}
		body = decoded
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, false, httpError(http.StatusInternalServerError, "POST body missing.", nil)
	}

	var raws []rawRequest
	batch := body[0] == '['

	if batch {
		if err := json.Unmarshal(body, &raws); err != nil {
			return nil, false, httpError(http.StatusBadRequest, "POST body is not valid JSON.", nil)
		}
	} else {
		var raw rawRequest
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, false, httpError(http.StatusBadRequest, "POST body is not valid JSON.", nil)
		}
		raws = []rawRequest{raw}
	}

	reqs := make([]Request, 0, len(raws))
	for _, raw := range raws {
		vars, err := decodeVariables(raw.Variables)
		if err != nil {
			return nil, false, err
		}
		reqs = append(reqs, Request{
			Query:         raw.Query,
			OperationName: raw.OperationName,
			Variables:     vars,
		})
	}

	return reqs, batch, nil
}

// decodeVariables accepts a JSON object, null, or a string holding a
// JSON object.
func decodeVariables(raw json.RawMessage) (map[string]interface{}, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, httpError(http.StatusBadRequest, "Variables are invalid JSON.", nil)
		}
		return decodeVariables(json.RawMessage(s))
	}

	var vars map[string]interface{}
	if err := json.Unmarshal(raw, &vars); err != nil {
		return nil, httpError(http.StatusBadRequest, "Variables are invalid JSON.", nil)
	}

	return vars, nil
}
