package env

import (
	"github.com/caesium-cloud/gqlambda/pkg/log"
	"github.com/caesium-cloud/gqlambda/pkg/options"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

var variables = new(Environment)

// Process the environment variables set for gqlambda.
func Process() error {
	if err := envconfig.Process("gqlambda", variables); err != nil {
		return errors.Wrap(err, "failed to process environment variables")
	}

	// set the log level
	if err := log.SetLevel(variables.LogLevel); err != nil {
		return errors.Wrap(err, "failed to set log level")
	}

	return nil
}

// Variables returns the processed environment variables.
func Variables() Environment {
	return *variables
}

// Environment defines the environment variables used
// by gqlambda.
type Environment struct {
	LogLevel           string          `default:"info" split_words:"true"`
	Port               int             `default:"8080" split_words:"true"`
	TypeDefs           string          `default:"schema.graphql" split_words:"true"`
	RootValue          string          `default:"" split_words:"true"` // yaml or json file
	Tracing            options.Tracing `default:"http-header" split_words:"true"`
	PlaygroundEndpoint string          `default:"/dev/graphql" split_words:"true"`
	Handler            string          `default:"graphql" split_words:"true"` // graphql or playground
	Stage              string          `default:"dev" split_words:"true"`
}
