package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/probelabs/apiprobe/transport"
)

// SchemaStore resolves and compiles JSON Schema definitions from a
// file system laid out as "{name}.json" for unscoped schemas and
// "{version}/{name}.json" for version-scoped ones. Compiled schemas
// are cached per resolved path.
type SchemaStore struct {
	fsys fs.FS

	mu    sync.Mutex
	cache map[string]*jsonschema.Schema
}

// NewSchemaStore creates a store over the given file system.
func NewSchemaStore(fsys fs.FS) *SchemaStore {
	return &SchemaStore{
		fsys:  fsys,
		cache: make(map[string]*jsonschema.Schema),
	}
}

// Resolve returns the compiled schema for name. When version is
// non-empty the version-scoped path is tried first, falling back to
// the unscoped one; with no version the unscoped path is used
// directly. A schema missing on every candidate path is
// ErrSchemaNotFound.
func (s *SchemaStore) Resolve(name, version string) (*jsonschema.Schema, error) {
	candidates := []string{name + ".json"}
	if version != "" {
		candidates = []string{path.Join(version, name+".json"), name + ".json"}
	}

	for _, p := range candidates {
		data, err := fs.ReadFile(s.fsys, p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading schema %s: %w", p, err)
		}
		return s.compile(p, data)
	}

	return nil, fmt.Errorf("%w: %q (version %q)", ErrSchemaNotFound, name, version)
}

func (s *SchemaStore) compile(p string, data []byte) (*jsonschema.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if compiled, ok := s.cache[p]; ok {
		return compiled, nil
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	url := "schema:///" + p
	if err := c.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("loading schema %s: %w", p, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", p, err)
	}

	s.cache[p] = compiled
	return compiled, nil
}

// Schema validates the result body against a compiled JSON Schema.
type Schema struct {
	schema *jsonschema.Schema
	name   string
}

// NewSchema resolves name/version from the store at construction so a
// missing schema surfaces as a setup error, never a skipped check.
func NewSchema(store *SchemaStore, name, version string) (Schema, error) {
	compiled, err := store.Resolve(name, version)
	if err != nil {
		return Schema{}, err
	}
	return Schema{schema: compiled, name: name}, nil
}

// Name returns "schema:<name>".
func (s Schema) Name() string { return "schema:" + s.name }

// Validate checks the decoded body against the schema.
func (s Schema) Validate(result *transport.Result) Outcome {
	if len(result.Body) == 0 {
		return Fail("response body is empty")
	}

	var decoded any
	if err := json.Unmarshal(result.Body, &decoded); err != nil {
		return Fail(fmt.Sprintf("body is not valid JSON: %v", err))
	}

	if err := s.schema.Validate(decoded); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			var violations []string
			flattenCauses(ve, &violations)
			return Fail(violations...)
		}
		return Fail(err.Error())
	}
	return Pass()
}

// flattenCauses collects leaf validation errors in document order.
func flattenCauses(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*out = append(*out, fmt.Sprintf("%s: %s", loc, ve.Message))
		return
	}
	for _, cause := range ve.Causes {
		flattenCauses(cause, out)
	}
}

var _ Validator = Schema{}
