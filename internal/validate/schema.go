package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// SchemaOptions controls structural schema validation of the YAML ledger
// form.
type SchemaOptions struct {
	// SchemaPath is the path to a JSON Schema file. If empty or missing,
	// schema validation degrades to warnings and the caller should rely on
	// the structural checks in Tasks/List.
	SchemaPath string
}

// SchemaResult extends Result with whether schema validation actually ran.
type SchemaResult struct {
	Result
	UsedSchema bool
}

// YAMLContent validates raw YAML ledger content against a JSON Schema. A
// missing or broken schema file is a warning, not an error: the ledger
// must stay editable even when the schema is absent.
func YAMLContent(content []byte, opts SchemaOptions) *SchemaResult {
	r := &SchemaResult{Result: Result{Valid: true}}

	if opts.SchemaPath == "" {
		r.warnf("no schema file configured, skipping schema validation")
		return r
	}

	absPath, err := filepath.Abs(opts.SchemaPath)
	if err != nil {
		r.warnf("invalid schema path: %v", err)
		return r
	}
	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			r.warnf("schema file not found: %s", absPath)
		} else {
			r.warnf("failed to read schema file: %v", err)
		}
		return r
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	schema, err := compiler.Compile(absPath)
	if err != nil {
		r.warnf("invalid schema file: %v", err)
		return r
	}

	r.UsedSchema = true

	var doc any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		r.errorf("parse ledger yaml: %v", err)
		return r
	}
	if doc == nil {
		r.warnf("ledger content is empty")
		return r
	}

	if err := schema.Validate(doc); err != nil {
		r.Valid = false
		appendSchemaErrors(&r.Result, err)
	}

	return r
}

func appendSchemaErrors(r *Result, err error) {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		r.Errors = append(r.Errors, err.Error())
		return
	}
	collectSchemaErrors(r, ve)
}

func collectSchemaErrors(r *Result, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		loc := jsonPointerToPath(err.InstanceLocation)
		if loc == "" {
			r.Errors = append(r.Errors, err.Message)
		} else {
			r.Errors = append(r.Errors, fmt.Sprintf("%s: %s", loc, err.Message))
		}
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(r, cause)
	}
}

// jsonPointerToPath converts a JSON Pointer (RFC 6901) to a dot-notation
// path: "#/critical/0/id" becomes "critical[0].id".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	parts := strings.Split(ptr, "/")
	path := ""
	for _, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		if path == "" {
			path = part
		} else {
			path += "." + part
		}
	}
	return path
}
