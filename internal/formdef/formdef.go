// Package formdef reads form definitions from files and describes their shape
// as JSON Schema for builders and linters.
package formdef

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/formcraft/formcraft-backend/types"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

const SchemaID = "https://formcraft.dev/schemas/form-definition.json"

// Schema returns the JSON Schema of a form definition, fully inlined.
func Schema() *jsonschema.Schema {
	r := jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
	s := r.Reflect(&types.FormDraft{})
	s.ID = jsonschema.ID(SchemaID)
	s.Title = "Form definition"
	return s
}

// Decode reads a definition. Files ending in .yaml or .yml are parsed as YAML,
// everything else as JSON. Unknown keys are an error in both formats.
func Decode(name string, data []byte) (*types.FormDraft, error) {
	var draft types.FormDraft
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&draft); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&draft); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
	}
	return &draft, nil
}

// Problem is one lint finding. FieldID is empty for form-level problems.
type Problem struct {
	FieldID string
	Message string
}

func (p Problem) String() string {
	if p.FieldID == "" {
		return p.Message
	}
	return fmt.Sprintf("field %q: %s", p.FieldID, p.Message)
}

// Lint checks a definition the way the API does on create and reports every
// field problem rather than only the first.
func Lint(draft *types.FormDraft) []Problem {
	var problems []Problem
	if strings.TrimSpace(draft.Name) == "" {
		problems = append(problems, Problem{Message: "name is required"})
	}

	parsed := make(types.Fields, 0, len(draft.Fields))
	for _, spec := range draft.Fields {
		f, err := types.ParseField(spec)
		if err != nil {
			problems = append(problems, schemaProblem(spec.ID, err))
			continue
		}
		parsed = append(parsed, f)
	}
	if err := types.ValidateFieldSet(parsed); err != nil {
		problems = append(problems, schemaProblem("", err))
	}
	return problems
}

func schemaProblem(fieldID string, err error) Problem {
	if se, ok := err.(*types.SchemaError); ok {
		return Problem{FieldID: se.FieldID, Message: se.Reason}
	}
	return Problem{FieldID: fieldID, Message: err.Error()}
}
