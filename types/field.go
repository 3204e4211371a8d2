package types

import (
	"encoding/json"
	"fmt"
	"regexp"
)

type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeEmail    FieldType = "email"
	FieldTypeNumber   FieldType = "number"
	FieldTypePassword FieldType = "password"
	FieldTypeTel      FieldType = "tel"
	FieldTypeURL      FieldType = "url"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeDate     FieldType = "date"
	FieldTypeFile     FieldType = "file"
)

// AllFieldTypes lists the closed set of field kinds in builder order.
var AllFieldTypes = []FieldType{
	FieldTypeText, FieldTypeTextarea, FieldTypeEmail, FieldTypeNumber,
	FieldTypePassword, FieldTypeTel, FieldTypeURL, FieldTypeSelect,
	FieldTypeCheckbox, FieldTypeRadio, FieldTypeDate, FieldTypeFile,
}

// IsValid checks if the type is one of the supported field kinds
func (t FieldType) IsValid() bool {
	for _, known := range AllFieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsTextLike reports whether length and pattern rules apply to the type.
func (t FieldType) IsTextLike() bool {
	switch t {
	case FieldTypeText, FieldTypeTextarea, FieldTypeEmail, FieldTypePassword, FieldTypeTel, FieldTypeURL:
		return true
	default:
		return false
	}
}

func (t FieldType) String() string {
	return string(t)
}

// ValidationSpec is the wire form of a field's rule set.
type ValidationSpec struct {
	Required  bool     `json:"required,omitempty" yaml:"required,omitempty"`
	MinLength *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Pattern   string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// FieldSpec is the JSON shape of a field as stored and as sent by the builder.
// Options is a pointer so an explicit empty list survives a round trip.
type FieldSpec struct {
	ID          string          `json:"id" yaml:"id" jsonschema:"required,minLength=1"`
	Type        FieldType       `json:"type" yaml:"type" jsonschema:"required,enum=text,enum=textarea,enum=email,enum=number,enum=password,enum=tel,enum=url,enum=select,enum=checkbox,enum=radio,enum=date,enum=file"`
	Label       string          `json:"label" yaml:"label"`
	Placeholder string          `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Options     *[]string       `json:"options,omitempty" yaml:"options,omitempty"`
	Validation  *ValidationSpec `json:"validation,omitempty" yaml:"validation,omitempty"`
}

// SchemaError reports a structurally invalid field definition.
type SchemaError struct {
	FieldID string
	Reason  string
}

func (e *SchemaError) Error() string {
	if e.FieldID == "" {
		return fmt.Sprintf("invalid field: %s", e.Reason)
	}
	return fmt.Sprintf("invalid field %q: %s", e.FieldID, e.Reason)
}

// Field is one entry of a form's field schema. The set of implementations is
// closed; each kind carries only the rules that apply to it.
type Field interface {
	FieldID() string
	IsRequired() bool
	Kind() FieldType
	Spec() FieldSpec
	clone() Field
}

// FieldBase holds the attributes shared by every kind.
type FieldBase struct {
	ID          string
	Label       string
	Placeholder string
	Description string
	Required    bool
}

func (b FieldBase) FieldID() string  { return b.ID }
func (b FieldBase) IsRequired() bool { return b.Required }

func (b FieldBase) spec(t FieldType) FieldSpec {
	s := FieldSpec{
		ID:          b.ID,
		Type:        t,
		Label:       b.Label,
		Placeholder: b.Placeholder,
		Description: b.Description,
	}
	if b.Required {
		s.Validation = &ValidationSpec{Required: true}
	}
	return s
}

type TextRules struct {
	MinLength *int
	MaxLength *int
	Pattern   string

	re *regexp.Regexp
}

// Regexp returns the compiled pattern, or nil when no pattern is set.
func (r TextRules) Regexp() (*regexp.Regexp, error) {
	if r.Pattern == "" {
		return nil, nil
	}
	if r.re != nil {
		return r.re, nil
	}
	return regexp.Compile(r.Pattern)
}

// TextField covers text, textarea, email, password, tel and url.
type TextField struct {
	FieldBase
	Type  FieldType
	Rules TextRules
}

func (f *TextField) Kind() FieldType { return f.Type }

func (f *TextField) Spec() FieldSpec {
	s := f.FieldBase.spec(f.Type)
	if f.Rules.MinLength != nil || f.Rules.MaxLength != nil || f.Rules.Pattern != "" {
		if s.Validation == nil {
			s.Validation = &ValidationSpec{}
		}
		s.Validation.MinLength = copyInt(f.Rules.MinLength)
		s.Validation.MaxLength = copyInt(f.Rules.MaxLength)
		s.Validation.Pattern = f.Rules.Pattern
	}
	return s
}

func (f *TextField) clone() Field {
	c := *f
	c.Rules.MinLength = copyInt(f.Rules.MinLength)
	c.Rules.MaxLength = copyInt(f.Rules.MaxLength)
	return &c
}

type NumberRules struct {
	Min *float64
	Max *float64
}

type NumberField struct {
	FieldBase
	Rules NumberRules
}

func (f *NumberField) Kind() FieldType { return FieldTypeNumber }

func (f *NumberField) Spec() FieldSpec {
	s := f.FieldBase.spec(FieldTypeNumber)
	if f.Rules.Min != nil || f.Rules.Max != nil {
		if s.Validation == nil {
			s.Validation = &ValidationSpec{}
		}
		s.Validation.Min = copyFloat(f.Rules.Min)
		s.Validation.Max = copyFloat(f.Rules.Max)
	}
	return s
}

func (f *NumberField) clone() Field {
	c := *f
	c.Rules.Min = copyFloat(f.Rules.Min)
	c.Rules.Max = copyFloat(f.Rules.Max)
	return &c
}

// ChoiceField is a select or radio group. Options is never nil.
type ChoiceField struct {
	FieldBase
	Type    FieldType
	Options []string
}

func (f *ChoiceField) Kind() FieldType { return f.Type }

func (f *ChoiceField) Spec() FieldSpec {
	s := f.FieldBase.spec(f.Type)
	opts := copyStrings(f.Options)
	if opts == nil {
		opts = []string{}
	}
	s.Options = &opts
	return s
}

func (f *ChoiceField) clone() Field {
	c := *f
	c.Options = copyStrings(f.Options)
	if c.Options == nil {
		c.Options = []string{}
	}
	return &c
}

// CheckboxField is a single checkbox when Options is nil, a checkbox group otherwise.
type CheckboxField struct {
	FieldBase
	Options []string
}

func (f *CheckboxField) Kind() FieldType { return FieldTypeCheckbox }

func (f *CheckboxField) Spec() FieldSpec {
	s := f.FieldBase.spec(FieldTypeCheckbox)
	if f.Options != nil {
		opts := copyStrings(f.Options)
		s.Options = &opts
	}
	return s
}

func (f *CheckboxField) clone() Field {
	c := *f
	c.Options = copyStrings(f.Options)
	return &c
}

type DateField struct {
	FieldBase
}

func (f *DateField) Kind() FieldType { return FieldTypeDate }
func (f *DateField) Spec() FieldSpec { return f.FieldBase.spec(FieldTypeDate) }
func (f *DateField) clone() Field    { c := *f; return &c }

type FileField struct {
	FieldBase
}

func (f *FileField) Kind() FieldType { return FieldTypeFile }
func (f *FileField) Spec() FieldSpec { return f.FieldBase.spec(FieldTypeFile) }
func (f *FileField) clone() Field    { c := *f; return &c }

// ParseField builds the typed field for a wire definition. Rules that do not
// apply to the field's kind are dropped rather than rejected.
func ParseField(spec FieldSpec) (Field, error) {
	if !spec.Type.IsValid() {
		return nil, &SchemaError{FieldID: spec.ID, Reason: fmt.Sprintf("unknown field type %q", spec.Type)}
	}

	var v ValidationSpec
	if spec.Validation != nil {
		v = *spec.Validation
	}
	base := FieldBase{
		ID:          spec.ID,
		Label:       spec.Label,
		Placeholder: spec.Placeholder,
		Description: spec.Description,
		Required:    v.Required,
	}

	switch {
	case spec.Type.IsTextLike():
		rules := TextRules{
			MinLength: copyInt(v.MinLength),
			MaxLength: copyInt(v.MaxLength),
			Pattern:   v.Pattern,
		}
		if rules.Pattern != "" {
			re, err := regexp.Compile(rules.Pattern)
			if err != nil {
				return nil, &SchemaError{FieldID: spec.ID, Reason: fmt.Sprintf("pattern does not compile: %v", err)}
			}
			rules.re = re
		}
		return &TextField{FieldBase: base, Type: spec.Type, Rules: rules}, nil

	case spec.Type == FieldTypeNumber:
		return &NumberField{FieldBase: base, Rules: NumberRules{
			Min: copyFloat(v.Min),
			Max: copyFloat(v.Max),
		}}, nil

	case spec.Type == FieldTypeSelect || spec.Type == FieldTypeRadio:
		if spec.Options == nil {
			return nil, &SchemaError{FieldID: spec.ID, Reason: fmt.Sprintf("%s field requires options", spec.Type)}
		}
		opts := copyStrings(*spec.Options)
		if opts == nil {
			opts = []string{}
		}
		return &ChoiceField{FieldBase: base, Type: spec.Type, Options: opts}, nil

	case spec.Type == FieldTypeCheckbox:
		f := &CheckboxField{FieldBase: base}
		if spec.Options != nil {
			f.Options = copyStrings(*spec.Options)
			if f.Options == nil {
				f.Options = []string{}
			}
		}
		return f, nil

	case spec.Type == FieldTypeDate:
		return &DateField{FieldBase: base}, nil

	default:
		return &FileField{FieldBase: base}, nil
	}
}

// ValidateFieldDefinition checks a single field definition in isolation.
func ValidateFieldDefinition(spec FieldSpec) error {
	_, err := ParseField(spec)
	return err
}

// Fields is an ordered field schema. Array position is the display order.
type Fields []Field

// ParseFields parses every definition and validates the set as a whole.
func ParseFields(specs []FieldSpec) (Fields, error) {
	fields := make(Fields, 0, len(specs))
	for _, spec := range specs {
		f, err := ParseField(spec)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	if err := ValidateFieldSet(fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// ValidateFieldSet enforces non-empty ids that are unique within the form.
func ValidateFieldSet(fields Fields) error {
	seen := make(map[string]struct{}, len(fields))
	for i, f := range fields {
		id := f.FieldID()
		if id == "" {
			return &SchemaError{Reason: fmt.Sprintf("field at position %d has an empty id", i)}
		}
		if _, dup := seen[id]; dup {
			return &SchemaError{FieldID: id, Reason: "duplicate field id"}
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Specs converts the schema back to its wire form.
func (fs Fields) Specs() []FieldSpec {
	specs := make([]FieldSpec, 0, len(fs))
	for _, f := range fs {
		specs = append(specs, f.Spec())
	}
	return specs
}

// Clone returns a deep copy sharing no mutable state with fs.
func (fs Fields) Clone() Fields {
	if fs == nil {
		return nil
	}
	out := make(Fields, len(fs))
	for i, f := range fs {
		out[i] = f.clone()
	}
	return out
}

// Lookup returns the field with the given id.
func (fs Fields) Lookup(id string) (Field, bool) {
	for _, f := range fs {
		if f.FieldID() == id {
			return f, true
		}
	}
	return nil, false
}

func (fs Fields) MarshalJSON() ([]byte, error) {
	return json.Marshal(fs.Specs())
}

// UnmarshalJSON parses each field. Set-level rules are checked by the caller
// through ValidateFieldSet so stored schemas always load.
func (fs *Fields) UnmarshalJSON(data []byte) error {
	var specs []FieldSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return err
	}
	out := make(Fields, 0, len(specs))
	for _, spec := range specs {
		f, err := ParseField(spec)
		if err != nil {
			return err
		}
		out = append(out, f)
	}
	*fs = out
	return nil
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
