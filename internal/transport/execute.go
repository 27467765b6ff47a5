package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/caesium-cloud/gqlambda/pkg/tracing"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"
	"github.com/pkg/errors"
)

const contentTypeJSON = "application/json"

// Options are the execution inputs of one invocation.
type Options struct {
	Schema    *graphql.Schema
	Tracing   bool
	Context   interface{}
	RootValue map[string]interface{}
}

// Result is the outcome of one GraphQL operation.
type Result struct {
	Data       interface{}                `json:"data,omitempty"`
	Errors     []gqlerrors.FormattedError `json:"errors,omitempty"`
	Extensions map[string]interface{}     `json:"extensions,omitempty"`

	// executed is false when parsing or validation stopped the request.
	executed bool
}

// Executed reports whether the operation reached execution.
func (r *Result) Executed() bool {
	return r.executed
}

// MarshalJSON keeps a null data member once execution has started.
func (r *Result) MarshalJSON() ([]byte, error) {
	type plain Result

	if !r.executed {
		return json.Marshal((*plain)(r))
	}

	return json.Marshal(struct {
		Data interface{} `json:"data"`
		*plain
	}{r.Data, (*plain)(r)})
}

// Handle serves an API Gateway event as a GraphQL request.
func Handle(ctx context.Context, event events.APIGatewayProxyRequest, opts Options) (events.APIGatewayProxyResponse, error) {
	if opts.Schema == nil {
		return events.APIGatewayProxyResponse{}, errors.New("no executable schema")
	}

	reqs, batch, err := Decode(event)
	if err != nil {
		return errorResponse(err)
	}

	queryOnly := strings.EqualFold(event.HTTPMethod, http.MethodGet)

	results := make([]*Result, 0, len(reqs))
	for _, req := range reqs {
		res, err := Execute(ctx, opts, req, queryOnly)
		if err != nil {
			return errorResponse(err)
		}
		results = append(results, res)
	}

	var (
		body   []byte
		status = http.StatusOK
	)

	if batch {
		body, err = json.Marshal(results)
	} else {
		if res := results[0]; !res.Executed() && len(res.Errors) > 0 {
			status = http.StatusBadRequest
		}
		body, err = json.Marshal(results[0])
	}

	if err != nil {
		return events.APIGatewayProxyResponse{}, errors.Wrap(err, "encode graphql response")
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": contentTypeJSON},
		Body:       string(body),
	}, nil
}

func errorResponse(err error) (events.APIGatewayProxyResponse, error) {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return events.APIGatewayProxyResponse{}, err
	}

	headers := map[string]string{"Content-Type": "text/plain; charset=utf-8"}
	for k, v := range httpErr.Headers {
		headers[k] = v
	}

	return events.APIGatewayProxyResponse{
		StatusCode: httpErr.StatusCode,
		Headers:    headers,
		Body:       httpErr.Message,
	}, nil
}

// Execute parses, validates and executes one request. When queryOnly is
// set an operation other than a query fails with a 405 HTTPError.
func Execute(ctx context.Context, opts Options, req Request, queryOnly bool) (*Result, error) {
	var trace *tracing.Trace
	if opts.Tracing {
		trace = tracing.New()
		ctx = tracing.WithTrace(ctx, trace)
	}

	if strings.TrimSpace(req.Query) == "" {
		return finish(trace, &Result{Errors: []gqlerrors.FormattedError{
			gqlerrors.NewFormattedError("Must provide query string."),
		}}), nil
	}

	ctx = WithValue(ctx, opts.Context)

	done := trace.Parsing()
	doc, err := parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{
			Body: []byte(req.Query),
			Name: "GraphQL request",
		}),
	})
	done()

	if err != nil {
		return finish(trace, &Result{Errors: gqlerrors.FormatErrors(err)}), nil
	}

	if queryOnly {
		if op := operation(doc, req.OperationName); op != "" && op != ast.OperationTypeQuery {
			return nil, httpError(
				http.StatusMethodNotAllowed,
				"GET supports only query operation",
				map[string]string{"Allow": "POST"},
			)
		}
	}

	done = trace.Validation()
	validation := graphql.ValidateDocument(opts.Schema, doc, nil)
	done()

	if !validation.IsValid {
		return finish(trace, &Result{Errors: validation.Errors}), nil
	}

	params := graphql.ExecuteParams{
		Schema:        *opts.Schema,
		AST:           doc,
		OperationName: req.OperationName,
		Args:          req.Variables,
		Context:       ctx,
	}
	if opts.RootValue != nil {
		params.Root = opts.RootValue
	}

	res := graphql.Execute(params)

	return finish(trace, &Result{
		Data:     res.Data,
		Errors:   res.Errors,
		executed: true,
	}), nil
}

func finish(trace *tracing.Trace, res *Result) *Result {
	if report := trace.Finish(); report != nil {
		res.Extensions = map[string]interface{}{tracing.ExtensionKey: report}
	}
	return res
}

// operation returns the type of the operation selected by name, or of
// the first operation when name is empty.
func operation(doc *ast.Document, name string) string {
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}

		if name == "" || (op.Name != nil && op.Name.Value == name) {
			return op.Operation
		}
	}

	return ""
}
