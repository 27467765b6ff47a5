package schema

import (
	"bufio"
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"
)

// ErrNoSchemaFile matches, through errors.Is, the error returned when
// file based type definitions point at a path that does not exist.
var ErrNoSchemaFile = errors.New("no schema found")

// NoSchemaError names the resolved path that holds no schema.
type NoSchemaError struct {
	Path string
}

func (e *NoSchemaError) Error() string {
	return "no schema found for path: " + e.Path
}

// Is reports whether target is ErrNoSchemaFile.
func (e *NoSchemaError) Is(target error) bool {
	return target == ErrNoSchemaFile
}

// InlineSourceName names the source of inline type definitions.
const InlineSourceName = "typeDefs"

var (
	fileSuffixes = []string{".graphql", ".gql"}
	importLine   = regexp.MustCompile(`^\s*#\s*import\s+(.+?)\s+from\s+["']([^"']+)["']`)
	rootTypes    = map[string]bool{"Query": true, "Mutation": true, "Subscription": true}
)

// Loader reads schema files. The function fields make the file system
// replaceable in tests.
type Loader struct {
	ReadFile func(name string) ([]byte, error)
	Stat     func(name string) (fs.FileInfo, error)
	Glob     func(pattern string) ([]string, error)
}

// OSLoader returns a Loader backed by the local file system.
func OSLoader() *Loader {
	return &Loader{
		ReadFile: os.ReadFile,
		Stat:     os.Stat,
		Glob: func(pattern string) ([]string, error) {
			return doublestar.FilepathGlob(pattern)
		},
	}
}

// IsPath reports whether typeDefs names a schema file rather than
// holding inline SDL.
func IsPath(typeDefs string) bool {
	trimmed := strings.TrimSpace(typeDefs)
	for _, suffix := range fileSuffixes {
		if strings.HasSuffix(trimmed, suffix) {
			return true
		}
	}
	return false
}

// Load turns type definitions into parser sources. Inline SDL is
// returned as is. A path, or a glob pattern, is resolved to absolute
// files whose imports are expanded. Every match is merged into a single
// source named after the resolved path.
func (l *Loader) Load(typeDefs string) ([]*ast.Source, error) {
	if !IsPath(typeDefs) {
		return []*ast.Source{{Name: InlineSourceName, Input: typeDefs}}, nil
	}

	path, err := filepath.Abs(strings.TrimSpace(typeDefs))
	if err != nil {
		return nil, errors.Wrapf(err, "resolve schema path %s", typeDefs)
	}

	files, err := l.files(path)
	if err != nil {
		return nil, err
	}

	imp := newImporter(l)
	combined := &ast.SchemaDocument{}

	for _, file := range files {
		doc, err := imp.resolve(file)
		if err != nil {
			return nil, err
		}
		include(combined, doc)
	}

	return []*ast.Source{{Name: path, Input: format(combined)}}, nil
}

func (l *Loader) files(path string) ([]string, error) {
	if !hasMeta(path) {
		if _, err := l.Stat(path); err != nil {
			return nil, &NoSchemaError{Path: path}
		}
		return []string{path}, nil
	}

	matches, err := l.Glob(path)
	if err != nil {
		return nil, errors.Wrapf(err, "expand schema pattern %s", path)
	}

	if len(matches) == 0 {
		return nil, &NoSchemaError{Path: path}
	}

	sort.Strings(matches)

	return matches, nil
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}

// Import reads the schema file at path and returns its SDL with every
// `# import` statement resolved.
func (l *Loader) Import(path string) (string, error) {
	doc, err := newImporter(l).resolve(path)
	if err != nil {
		return "", err
	}

	return format(doc), nil
}

func format(doc *ast.SchemaDocument) string {
	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatSchemaDocument(doc)
	return buf.String()
}

// include adds everything doc defines to combined.
func include(combined, doc *ast.SchemaDocument) {
	merge(combined, doc.Definitions, doc.Extensions)
	mergeDirectives(combined, doc.Directives)

	if len(combined.Schema) == 0 {
		combined.Schema = append(combined.Schema, doc.Schema...)
	}
	combined.SchemaExtension = append(combined.SchemaExtension, doc.SchemaExtension...)
}

func mergeDirectives(doc *ast.SchemaDocument, directives ast.DirectiveDefinitionList) {
	for _, directive := range directives {
		if doc.Directives.ForName(directive.Name) == nil {
			doc.Directives = append(doc.Directives, directive)
		}
	}
}

type importStatement struct {
	names []string
	from  string
}

func (s importStatement) all() bool {
	return len(s.names) == 1 && s.names[0] == "*"
}

type importer struct {
	loader   *Loader
	resolved map[string]*ast.SchemaDocument
	visiting map[string]bool
}

func newImporter(l *Loader) *importer {
	return &importer{
		loader:   l,
		resolved: map[string]*ast.SchemaDocument{},
		visiting: map[string]bool{},
	}
}

func (imp *importer) resolve(path string) (*ast.SchemaDocument, error) {
	if doc, ok := imp.resolved[path]; ok {
		return doc, nil
	}

	data, err := imp.loader.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NoSchemaError{Path: path}
		}
		return nil, errors.Wrapf(err, "read schema %s", path)
	}

	doc, parseErr := parser.ParseSchema(&ast.Source{Name: path, Input: string(data)})
	if parseErr != nil {
		return nil, errors.Wrapf(parseErr, "parse schema %s", path)
	}

	imp.visiting[path] = true
	defer delete(imp.visiting, path)

	for _, stmt := range imports(data) {
		target := stmt.from
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}

		if imp.visiting[target] {
			continue
		}

		imported, err := imp.resolve(target)
		if err != nil {
			return nil, errors.Wrapf(err, "import from %s", path)
		}

		if stmt.all() {
			merge(doc, imported.Definitions, imported.Extensions)
		} else {
			defs, err := closure(stmt.names, imported)
			if err != nil {
				return nil, errors.Wrapf(err, "import into %s", path)
			}
			merge(doc, defs, nil)
		}

		mergeDirectives(doc, imported.Directives)
	}

	imp.resolved[path] = doc

	return doc, nil
}

func imports(data []byte) []importStatement {
	var stmts []importStatement

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		m := importLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}

		var names []string
		for _, name := range strings.Split(m[1], ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}

		stmts = append(stmts, importStatement{names: names, from: m[2]})
	}

	return stmts
}

// merge adds imported definitions to doc. Definitions already present
// in doc win, except that root operation types gain the fields they
// lack.
func merge(doc *ast.SchemaDocument, defs, extensions ast.DefinitionList) {
	for _, def := range defs {
		existing := doc.Definitions.ForName(def.Name)
		if existing == nil {
			if rootTypes[def.Name] {
				// root types gain fields later, keep the source document intact
				def = copyDefinition(def, def.Fields)
			}
			doc.Definitions = append(doc.Definitions, def)
			continue
		}

		if rootTypes[def.Name] && existing.Kind == ast.Object && def.Kind == ast.Object {
			for _, field := range def.Fields {
				if existing.Fields.ForName(field.Name) == nil {
					existing.Fields = append(existing.Fields, field)
				}
			}
		}
	}

	for _, ext := range extensions {
		if !contains(doc.Extensions, ext) {
			doc.Extensions = append(doc.Extensions, ext)
		}
	}
}

func contains(defs ast.DefinitionList, def *ast.Definition) bool {
	for _, d := range defs {
		if d == def {
			return true
		}
	}
	return false
}

func copyDefinition(def *ast.Definition, fields ast.FieldList) *ast.Definition {
	cp := *def
	cp.Fields = append(ast.FieldList(nil), fields...)
	return &cp
}

// closure collects the named definitions of doc and every definition
// they reference. A name of the form Type.field or Type.* selects fields
// of a root type, which is imported with only those fields.
func closure(names []string, doc *ast.SchemaDocument) (ast.DefinitionList, error) {
	var (
		defs    ast.DefinitionList
		seen    = map[string]bool{}
		partial = map[string]*ast.Definition{}
		queue   []string
	)

	for _, name := range names {
		typeName, fieldName, ok := strings.Cut(name, ".")
		if !ok {
			queue = append(queue, name)
			continue
		}

		def := doc.Definitions.ForName(typeName)
		if def == nil {
			return nil, errors.Errorf("type %s not found", typeName)
		}
		if !rootTypes[typeName] {
			return nil, errors.Errorf("field import %s: %s is not a root type", name, typeName)
		}

		fields := def.Fields
		if fieldName != "*" {
			field := def.Fields.ForName(fieldName)
			if field == nil {
				return nil, errors.Errorf("field %s not found", name)
			}
			fields = ast.FieldList{field}
		}

		selected, ok := partial[typeName]
		if !ok {
			selected = copyDefinition(def, nil)
			partial[typeName] = selected
			defs = append(defs, selected)
		}

		for _, field := range fields {
			if selected.Fields.ForName(field.Name) == nil {
				selected.Fields = append(selected.Fields, field)
				queue = append(queue, fieldReferences(field)...)
			}
		}
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		if seen[name] {
			continue
		}
		seen[name] = true

		def := doc.Definitions.ForName(name)
		if def == nil {
			if builtinScalars[name] != nil {
				continue
			}
			return nil, errors.Errorf("type %s not found", name)
		}

		if selected, ok := partial[name]; ok {
			// referenced as a whole type, so every field is needed
			selected.Fields = append(ast.FieldList(nil), def.Fields...)
		} else {
			defs = append(defs, def)
		}
		queue = append(queue, references(def)...)
	}

	return defs, nil
}

func references(def *ast.Definition) []string {
	refs := append([]string(nil), def.Interfaces...)
	refs = append(refs, def.Types...)

	for _, field := range def.Fields {
		refs = append(refs, fieldReferences(field)...)
	}

	return refs
}

func fieldReferences(field *ast.FieldDefinition) []string {
	refs := []string{namedType(field.Type)}
	for _, arg := range field.Arguments {
		refs = append(refs, namedType(arg.Type))
	}
	return refs
}

func namedType(t *ast.Type) string {
	for t.Elem != nil {
		t = t.Elem
	}
	return t.NamedType
}
