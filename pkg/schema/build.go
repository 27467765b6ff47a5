package schema

import (
	"sort"
	"strconv"
	"strings"

	"github.com/graphql-go/graphql"
	gqlast "github.com/graphql-go/graphql/language/ast"
	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/ast"
)

const defaultDeprecationReason = "No longer supported"

var builtinScalars = map[string]*graphql.Scalar{
	"Int":     graphql.Int,
	"Float":   graphql.Float,
	"String":  graphql.String,
	"Boolean": graphql.Boolean,
	"ID":      graphql.ID,
}

type builder struct {
	doc        *ast.Schema
	resolvers  Resolvers
	cfg        *config
	types      map[string]graphql.Type
	objects    map[string]*graphql.Object
	interfaces map[string]*graphql.Interface
}

func newBuilder(doc *ast.Schema, resolvers Resolvers, cfg *config) *builder {
	b := &builder{
		doc:        doc,
		resolvers:  resolvers,
		cfg:        cfg,
		types:      map[string]graphql.Type{},
		objects:    map[string]*graphql.Object{},
		interfaces: map[string]*graphql.Interface{},
	}

	for name, scalar := range builtinScalars {
		b.types[name] = scalar
	}

	return b
}

func (b *builder) build() (*graphql.Schema, error) {
	if err := b.checkResolvers(); err != nil {
		return nil, err
	}

	names := b.userTypes()

	for _, name := range names {
		def := b.doc.Types[name]

		switch def.Kind {
		case ast.Scalar:
			b.types[name] = b.scalar(def)
		case ast.Enum:
			b.types[name] = b.enum(def)
		case ast.InputObject:
			b.types[name] = b.inputObject(def)
		case ast.Interface:
			iface := b.iface(def)
			b.interfaces[name] = iface
			b.types[name] = iface
		case ast.Object:
			obj := b.object(def)
			b.objects[name] = obj
			b.types[name] = obj
		}
	}

	// unions list their members eagerly, so they come after every object
	for _, name := range names {
		if def := b.doc.Types[name]; def.Kind == ast.Union {
			b.types[name] = b.union(def)
		}
	}

	cfg := graphql.SchemaConfig{}

	if b.doc.Query != nil {
		cfg.Query = b.objects[b.doc.Query.Name]
	}
	if b.doc.Mutation != nil {
		cfg.Mutation = b.objects[b.doc.Mutation.Name]
	}
	if b.doc.Subscription != nil {
		cfg.Subscription = b.objects[b.doc.Subscription.Name]
	}

	// orphan types stay reachable through introspection
	for _, name := range names {
		cfg.Types = append(cfg.Types, b.types[name])
	}

	s, err := graphql.NewSchema(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "build executable schema")
	}

	return &s, nil
}

func (b *builder) userTypes() []string {
	names := make([]string, 0, len(b.doc.Types))

	for name, def := range b.doc.Types {
		if def.BuiltIn || strings.HasPrefix(name, "__") || builtinScalars[name] != nil {
			continue
		}
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (b *builder) checkResolvers() error {
	typeNames := make([]string, 0, len(b.resolvers))
	for name := range b.resolvers {
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)

	for _, typeName := range typeNames {
		def := b.doc.Types[typeName]
		if def == nil || def.BuiltIn {
			return errors.Errorf("%s defined in resolvers, but not in schema", typeName)
		}

		if def.Kind != ast.Object {
			return errors.Errorf("%s defined in resolvers, but it is not an object type", typeName)
		}

		for fieldName := range b.resolvers[typeName] {
			if def.Fields.ForName(fieldName) == nil {
				return errors.Errorf("%s.%s defined in resolvers, but not in schema", typeName, fieldName)
			}
		}
	}

	return nil
}

func (b *builder) object(def *ast.Definition) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name:        def.Name,
		Description: def.Description,
		Interfaces: graphql.InterfacesThunk(func() []*graphql.Interface {
			ifaces := make([]*graphql.Interface, 0, len(def.Interfaces))
			for _, name := range def.Interfaces {
				if iface := b.interfaces[name]; iface != nil {
					ifaces = append(ifaces, iface)
				}
			}
			return ifaces
		}),
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return b.fields(def, b.resolvers[def.Name])
		}),
	})
}

func (b *builder) iface(def *ast.Definition) *graphql.Interface {
	return graphql.NewInterface(graphql.InterfaceConfig{
		Name:        def.Name,
		Description: def.Description,
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return b.fields(def, nil)
		}),
		ResolveType: b.resolveType(def.Name),
	})
}

func (b *builder) union(def *ast.Definition) *graphql.Union {
	members := make([]*graphql.Object, 0, len(def.Types))
	for _, name := range def.Types {
		if obj := b.objects[name]; obj != nil {
			members = append(members, obj)
		}
	}

	return graphql.NewUnion(graphql.UnionConfig{
		Name:        def.Name,
		Description: def.Description,
		Types:       members,
		ResolveType: b.resolveType(def.Name),
	})
}

func (b *builder) resolveType(abstract string) graphql.ResolveTypeFn {
	fn := b.cfg.typeResolvers[abstract]
	if fn == nil {
		fn = Typename
	}

	return func(p graphql.ResolveTypeParams) *graphql.Object {
		return b.objects[fn(p.Value)]
	}
}

func (b *builder) fields(def *ast.Definition, resolvers Fields) graphql.Fields {
	fields := graphql.Fields{}

	for _, f := range def.Fields {
		if strings.HasPrefix(f.Name, "__") {
			continue
		}

		fields[f.Name] = &graphql.Field{
			Name:              f.Name,
			Description:       f.Description,
			Type:              b.output(f.Type),
			Args:              b.args(f.Arguments),
			Resolve:           resolvers[f.Name],
			DeprecationReason: deprecation(f.Directives),
		}
	}

	return fields
}

func (b *builder) args(defs ast.ArgumentDefinitionList) graphql.FieldConfigArgument {
	if len(defs) == 0 {
		return nil
	}

	args := graphql.FieldConfigArgument{}
	for _, a := range defs {
		args[a.Name] = &graphql.ArgumentConfig{
			Type:         b.input(a.Type),
			DefaultValue: defaultValue(a.DefaultValue),
			Description:  a.Description,
		}
	}

	return args
}

func (b *builder) inputObject(def *ast.Definition) *graphql.InputObject {
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name:        def.Name,
		Description: def.Description,
		Fields: graphql.InputObjectConfigFieldMapThunk(func() graphql.InputObjectConfigFieldMap {
			fields := graphql.InputObjectConfigFieldMap{}
			for _, f := range def.Fields {
				fields[f.Name] = &graphql.InputObjectFieldConfig{
					Type:         b.input(f.Type),
					DefaultValue: defaultValue(f.DefaultValue),
					Description:  f.Description,
				}
			}
			return fields
		}),
	})
}

func (b *builder) enum(def *ast.Definition) *graphql.Enum {
	values := graphql.EnumValueConfigMap{}
	for _, v := range def.EnumValues {
		values[v.Name] = &graphql.EnumValueConfig{
			Value:             v.Name,
			Description:       v.Description,
			DeprecationReason: deprecation(v.Directives),
		}
	}

	return graphql.NewEnum(graphql.EnumConfig{
		Name:        def.Name,
		Description: def.Description,
		Values:      values,
	})
}

func (b *builder) scalar(def *ast.Definition) *graphql.Scalar {
	if s := b.cfg.scalars[def.Name]; s != nil {
		return s
	}

	return graphql.NewScalar(graphql.ScalarConfig{
		Name:        def.Name,
		Description: def.Description,
		Serialize:   identity,
		ParseValue:  identity,
		ParseLiteral: func(valueAST gqlast.Value) interface{} {
			return literal(valueAST)
		},
	})
}

func (b *builder) typeRef(t *ast.Type) graphql.Type {
	var ref graphql.Type
	if t.Elem != nil {
		ref = graphql.NewList(b.typeRef(t.Elem))
	} else {
		ref = b.types[t.NamedType]
	}

	if t.NonNull {
		ref = graphql.NewNonNull(ref)
	}

	return ref
}

func (b *builder) output(t *ast.Type) graphql.Output {
	out, _ := b.typeRef(t).(graphql.Output)
	return out
}

func (b *builder) input(t *ast.Type) graphql.Input {
	in, _ := b.typeRef(t).(graphql.Input)
	return in
}

func deprecation(directives ast.DirectiveList) string {
	d := directives.ForName("deprecated")
	if d == nil {
		return ""
	}

	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw
	}

	return defaultDeprecationReason
}

func defaultValue(v *ast.Value) interface{} {
	if v == nil {
		return nil
	}

	value, err := v.Value(nil)
	if err != nil {
		return nil
	}

	return normalize(value)
}

// normalize maps gqlparser's int64 onto the int graphql-go coerces Int to.
func normalize(value interface{}) interface{} {
	switch v := value.(type) {
	case int64:
		return int(v)
	case []interface{}:
		for i := range v {
			v[i] = normalize(v[i])
		}
		return v
	case map[string]interface{}:
		for k := range v {
			v[k] = normalize(v[k])
		}
		return v
	default:
		return value
	}
}

func identity(value interface{}) interface{} {
	return value
}

// literal converts an inline query value for a pass-through scalar.
func literal(valueAST gqlast.Value) interface{} {
	switch v := valueAST.(type) {
	case *gqlast.IntValue:
		if i, err := strconv.ParseInt(v.Value, 10, 64); err == nil {
			return i
		}
		return nil
	case *gqlast.FloatValue:
		if f, err := strconv.ParseFloat(v.Value, 64); err == nil {
			return f
		}
		return nil
	case *gqlast.StringValue:
		return v.Value
	case *gqlast.BooleanValue:
		return v.Value
	case *gqlast.EnumValue:
		return v.Value
	case *gqlast.ListValue:
		values := make([]interface{}, 0, len(v.Values))
		for _, item := range v.Values {
			values = append(values, literal(item))
		}
		return values
	case *gqlast.ObjectValue:
		fields := make(map[string]interface{}, len(v.Fields))
		for _, field := range v.Fields {
			fields[field.Name.Value] = literal(field.Value)
		}
		return fields
	default:
		return nil
	}
}
