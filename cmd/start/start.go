package start

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/caesium-cloud/gqlambda/internal/app"
	"github.com/caesium-cloud/gqlambda/internal/metrics"
	"github.com/caesium-cloud/gqlambda/pkg/env"
	"github.com/caesium-cloud/gqlambda/pkg/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const (
	usage   = "start"
	short   = "Start the Lambda runtime loop"
	long    = "This command serves API Gateway proxy events with the handler selected by GQLAMBDA_HANDLER"
	example = "GQLAMBDA_TYPE_DEFS=schema.graphql gqlambda start"
)

var (
	// Cmd is the start command.
	Cmd = &cobra.Command{
		Use:        usage,
		Short:      short,
		Long:       long,
		Aliases:    []string{"s"},
		SuggestFor: []string{"launch", "boot", "up", "run", "begin"},
		Example:    example,
		RunE:       start,
	}
)

func start(cmd *cobra.Command, args []string) error {
	vars := env.Variables()

	h, err := handler(vars, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	log.Info("starting lambda runtime", "handler", vars.Handler, "type_defs", vars.TypeDefs, "tracing", vars.Tracing.Mode)

	// blocks for the lifetime of the execution environment
	lambda.Start(h)

	return nil
}

// handler registers the invocation metrics with reg and builds the
// handler selected by vars.
func handler(vars env.Environment, reg prometheus.Registerer) (app.HandlerFunc, error) {
	metrics.Register(reg)

	srv, err := app.NewServer(vars)
	if err != nil {
		return nil, err
	}

	return app.Handler(srv, vars.Handler)
}
