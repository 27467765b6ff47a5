package tracing

import (
	"strings"
	"sync"

	"github.com/graphql-go/graphql"
)

var instrumented sync.Map

// Instrument wraps the resolvers of every object field in schema so they
// report to the Trace found in the resolver context. Fields resolve as
// before when no trace is present. Instrumenting a schema twice is a
// no-op. The schema is modified in place.
func Instrument(schema *graphql.Schema) {
	if schema == nil {
		return
	}

	for name, typ := range schema.TypeMap() {
		if strings.HasPrefix(name, "__") {
			continue
		}

		obj, ok := typ.(*graphql.Object)
		if !ok {
			continue
		}

		for _, field := range obj.Fields() {
			if _, loaded := instrumented.LoadOrStore(field, struct{}{}); loaded {
				continue
			}
			field.Resolve = wrap(field.Resolve)
		}
	}
}

func wrap(next graphql.FieldResolveFn) graphql.FieldResolveFn {
	if next == nil {
		next = graphql.DefaultResolveFn
	}

	return func(p graphql.ResolveParams) (interface{}, error) {
		t := FromContext(p.Context)
		if t == nil {
			return next(p)
		}

		begin := t.Now()
		value, err := next(p)

		r := Resolver{
			Path:      path(p.Info.Path),
			FieldName: p.Info.FieldName,
		}
		if p.Info.ParentType != nil {
			r.ParentType = p.Info.ParentType.Name()
		}
		if p.Info.ReturnType != nil {
			r.ReturnType = p.Info.ReturnType.String()
		}

		t.Field(r, begin)

		return value, err
	}
}

func path(p *graphql.ResponsePath) []interface{} {
	var keys []interface{}
	for ; p != nil; p = p.Prev {
		keys = append(keys, p.Key)
	}

	for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
		keys[i], keys[j] = keys[j], keys[i]
	}

	return keys
}
