package env

import (
	"testing"

	"github.com/caesium-cloud/gqlambda/pkg/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type EnvTestSuite struct {
	suite.Suite
}

func (s *EnvTestSuite) SetupTest() {
	variables = new(Environment)
}

func (s *EnvTestSuite) TestProcess() {
	assert.Nil(s.T(), Process())
	assert.NotNil(s.T(), Variables())
	assert.Equal(s.T(), "info", Variables().LogLevel)
	assert.Equal(s.T(), 8080, Variables().Port)
	assert.Equal(s.T(), "schema.graphql", Variables().TypeDefs)
	assert.Equal(s.T(), options.HTTPHeader, Variables().Tracing.Mode)
	assert.Equal(s.T(), "/dev/graphql", Variables().PlaygroundEndpoint)
	assert.Equal(s.T(), "graphql", Variables().Handler)
}

func (s *EnvTestSuite) TestProcessOverrides() {
	s.T().Setenv("GQLAMBDA_TYPE_DEFS", "schema/*.graphql")
	s.T().Setenv("GQLAMBDA_TRACING", "true")
	s.T().Setenv("GQLAMBDA_PLAYGROUND_ENDPOINT", "/prod/graphql")
	s.T().Setenv("GQLAMBDA_LOG_LEVEL", "debug")

	assert.Nil(s.T(), Process())
	assert.Equal(s.T(), "schema/*.graphql", Variables().TypeDefs)
	assert.Equal(s.T(), options.Enabled, Variables().Tracing.Mode)
	assert.Equal(s.T(), "/prod/graphql", Variables().PlaygroundEndpoint)

	s.T().Setenv("GQLAMBDA_LOG_LEVEL", "info")
	assert.Nil(s.T(), Process())
}

func (s *EnvTestSuite) TestProcessInvalidTypeFailure() {
	s.T().Setenv("GQLAMBDA_PORT", "not_a_port")
	assert.NotNil(s.T(), Process())
}

func (s *EnvTestSuite) TestProcessInvalidTracingFailure() {
	s.T().Setenv("GQLAMBDA_TRACING", "sometimes")
	assert.NotNil(s.T(), Process())
}

func (s *EnvTestSuite) TestProcessInvalidLogLevelFailure() {
	s.T().Setenv("GQLAMBDA_LOG_LEVEL", "bogus")
	assert.NotNil(s.T(), Process())
}

func TestEnvTestSuite(t *testing.T) {
	suite.Run(t, new(EnvTestSuite))
}
