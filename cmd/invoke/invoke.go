package invoke

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/caesium-cloud/gqlambda/internal/app"
	"github.com/caesium-cloud/gqlambda/pkg/env"
	"github.com/caesium-cloud/gqlambda/pkg/options"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	usage   = "invoke"
	short   = "Run one GraphQL request through the Lambda handler"
	long    = "This command frames a GraphQL request as an API Gateway proxy event, runs it through the configured handler and prints the response body"
	example = `gqlambda invoke -q '{ hello }'
gqlambda invoke -f query.graphql -v '{"id": 1}' --trace`
)

var (
	// Cmd is the invoke command.
	Cmd = &cobra.Command{
		Use:        usage,
		Short:      short,
		Long:       long,
		Aliases:    []string{"i"},
		SuggestFor: []string{"query", "exec", "call"},
		Example:    example,
		Args:       cobra.NoArgs,
		RunE:       invoke,
	}
)

type request struct {
	query     string
	file      string
	variables string
	operation string
	method    string
	headers   []string
	trace     bool
}

var (
	req       request
	typeDefs  string
	rootValue string
	handler   string
	verbose   bool
)

func init() {
	Cmd.Flags().StringVarP(&req.query, "query", "q", "", "GraphQL query document")
	Cmd.Flags().StringVarP(&req.file, "file", "f", "", "File holding the GraphQL query document")
	Cmd.Flags().StringVarP(&req.variables, "variables", "v", "", "Variables as a JSON object")
	Cmd.Flags().StringVarP(&req.operation, "operation", "o", "", "Operation name")
	Cmd.Flags().StringVarP(&req.method, "method", "X", http.MethodPost, "HTTP method of the event (GET or POST)")
	Cmd.Flags().StringSliceVarP(&req.headers, "header", "H", nil, "Request header as 'Name: value' (repeatable)")
	Cmd.Flags().BoolVar(&req.trace, "trace", false, "Send the "+options.TracingHeader+" header")
	Cmd.Flags().StringVar(&typeDefs, "type-defs", "", "Type definitions or schema path (default: GQLAMBDA_TYPE_DEFS)")
	Cmd.Flags().StringVar(&rootValue, "root-value", "", "Root value file (default: GQLAMBDA_ROOT_VALUE)")
	Cmd.Flags().StringVar(&handler, "handler", "", "Handler to invoke (default: GQLAMBDA_HANDLER)")
	Cmd.Flags().BoolVar(&verbose, "verbose", false, "Print the response status and headers")
}

func invoke(cmd *cobra.Command, args []string) error {
	vars := env.Variables()
	if typeDefs != "" {
		vars.TypeDefs = typeDefs
	}
	if rootValue != "" {
		vars.RootValue = rootValue
	}
	if handler != "" {
		vars.Handler = handler
	}

	srv, err := app.NewServer(vars)
	if err != nil {
		return err
	}

	h, err := app.Handler(srv, vars.Handler)
	if err != nil {
		return err
	}

	event, err := newEvent(req, vars.Stage, srv.Playground().Endpoint())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = lambdacontext.NewContext(ctx, &lambdacontext.LambdaContext{
		AwsRequestID: event.RequestContext.RequestID,
	})

	resp, err := h(ctx, event)
	if err != nil {
		return errors.Wrap(err, "handler failure")
	}

	out := cmd.OutOrStdout()
	if verbose {
		fmt.Fprintf(out, "%d %s\n", resp.StatusCode, http.StatusText(resp.StatusCode))
		for k, v := range resp.Headers {
			fmt.Fprintf(out, "%s: %s\n", k, v)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("request failed with status %d", resp.StatusCode)
	}

	return nil
}

func newEvent(r request, stage, path string) (events.APIGatewayProxyRequest, error) {
	query := r.query
	if r.file != "" {
		data, err := os.ReadFile(r.file)
		if err != nil {
			return events.APIGatewayProxyRequest{}, errors.Wrap(err, "failed to read query file")
		}
		query = string(data)
	}

	event := events.APIGatewayProxyRequest{
		HTTPMethod: strings.ToUpper(r.method),
		Path:       path,
		Headers:    map[string]string{},
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID: uuid.NewString(),
			Stage:     stage,
		},
	}

	for _, h := range r.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return event, errors.Errorf("invalid header %q", h)
		}
		event.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	if r.trace {
		event.Headers[options.TracingHeader] = "1"
	}

	if event.HTTPMethod == http.MethodGet {
		event.QueryStringParameters = map[string]string{"query": query}
		if r.operation != "" {
			event.QueryStringParameters["operationName"] = r.operation
		}
		if r.variables != "" {
			event.QueryStringParameters["variables"] = r.variables
		}
		return event, nil
	}

	body := map[string]interface{}{"query": query}
	if r.operation != "" {
		body["operationName"] = r.operation
	}
	if r.variables != "" {
		if !json.Valid([]byte(r.variables)) {
			return event, errors.New("variables are not valid JSON")
		}
		body["variables"] = json.RawMessage(r.variables)
	}

	data, err := json.Marshal(body)
	if err != nil {
		return event, errors.Wrap(err, "failed to encode request")
	}

	event.Headers["Content-Type"] = "application/json"
	event.Body = string(data)

	return event, nil
}
