package tracing

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type TracingTestSuite struct {
	suite.Suite
}

// ticker returns a clock advancing one millisecond per reading.
func ticker() func() time.Time {
	current := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time {
		t := current
		current = current.Add(time.Millisecond)
		return t
	}
}

func (s *TracingTestSuite) TestReport() {
	t := NewWithClock(ticker()) // 0ms

	done := t.Parsing() // 1ms
	done()              // 2ms

	done = t.Validation() // 3ms
	done()                // 4ms

	begin := t.Now() // 5ms
	t.Field(Resolver{Path: []interface{}{"hello"}, ParentType: "Query", FieldName: "hello", ReturnType: "String"}, begin) // 6ms

	report := t.Finish() // 7ms

	want := &Report{
		Version:    Version,
		StartTime:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		EndTime:    time.Date(2026, 1, 2, 3, 4, 5, int(7*time.Millisecond), time.UTC),
		Duration:   int64(7 * time.Millisecond),
		Parsing:    Phase{StartOffset: int64(time.Millisecond), Duration: int64(time.Millisecond)},
		Validation: Phase{StartOffset: int64(3 * time.Millisecond), Duration: int64(time.Millisecond)},
		Execution: Execution{Resolvers: []Resolver{{
			Path:        []interface{}{"hello"},
			ParentType:  "Query",
			FieldName:   "hello",
			ReturnType:  "String",
			StartOffset: int64(5 * time.Millisecond),
			Duration:    int64(time.Millisecond),
		}}},
	}

	if diff := cmp.Diff(want, report); diff != "" {
		s.T().Fatalf("report mismatch (-want +got):\n%s", diff)
	}

	out, err := json.Marshal(report)
	require.NoError(s.T(), err)

	var decoded map[string]interface{}
	require.NoError(s.T(), json.Unmarshal(out, &decoded))
	assert.EqualValues(s.T(), 1, decoded["version"])
	assert.Contains(s.T(), decoded, "startTime")
	assert.Contains(s.T(), decoded["execution"], "resolvers")
}

func (s *TracingTestSuite) TestNilTrace() {
	var t *Trace

	assert.NotPanics(s.T(), func() {
		t.Parsing()()
		t.Validation()()
		t.Field(Resolver{}, time.Now())
	})
	assert.Nil(s.T(), t.Finish())
	assert.True(s.T(), t.Now().IsZero())
}

func (s *TracingTestSuite) TestContext() {
	assert.Nil(s.T(), FromContext(context.Background()))

	t := New()
	assert.Same(s.T(), t, FromContext(WithTrace(context.Background(), t)))
}

func (s *TracingTestSuite) schema() *graphql.Schema {
	user := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"name": &graphql.Field{Type: graphql.String},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"users": &graphql.Field{
					Type: graphql.NewList(user),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						return []interface{}{
							map[string]interface{}{"name": "Ada"},
							map[string]interface{}{"name": "Grace"},
						}, nil
					},
				},
			},
		}),
	})
	require.NoError(s.T(), err)

	return &schema
}

func (s *TracingTestSuite) TestInstrument() {
	schema := s.schema()
	Instrument(schema)
	Instrument(schema)

	t := New()
	res := graphql.Do(graphql.Params{
		Schema:        *schema,
		RequestString: `{ users { name } }`,
		Context:       WithTrace(context.Background(), t),
	})
	require.Empty(s.T(), res.Errors)

	report := t.Finish()
	require.Len(s.T(), report.Execution.Resolvers, 3)

	paths := map[string]Resolver{}
	for _, r := range report.Execution.Resolvers {
		out, err := json.Marshal(r.Path)
		require.NoError(s.T(), err)
		paths[string(out)] = r
	}

	require.Contains(s.T(), paths, `["users"]`)
	assert.Equal(s.T(), "Query", paths[`["users"]`].ParentType)
	assert.Equal(s.T(), "[User]", paths[`["users"]`].ReturnType)

	require.Contains(s.T(), paths, `["users",1,"name"]`)
	assert.Equal(s.T(), "User", paths[`["users",1,"name"]`].ParentType)
	assert.Equal(s.T(), "name", paths[`["users",1,"name"]`].FieldName)
}

func (s *TracingTestSuite) TestInstrumentWithoutTrace() {
	schema := s.schema()
	Instrument(schema)

	res := graphql.Do(graphql.Params{Schema: *schema, RequestString: `{ users { name } }`})
	require.Empty(s.T(), res.Errors)

	out, err := json.Marshal(res.Data)
	require.NoError(s.T(), err)
	assert.JSONEq(s.T(), `{"users":[{"name":"Ada"},{"name":"Grace"}]}`, string(out))
}

func TestTracingTestSuite(t *testing.T) {
	suite.Run(t, new(TracingTestSuite))
}
