// Package submission validates visitor payloads against a form's field schema.
// Both entry points are pure: no I/O and no state between calls.
package submission

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/formcraft/formcraft-backend/types"
)

const (
	MsgRequired      = "This field is required"
	MsgInvalidFormat = "Invalid format"
	MsgInvalidNumber = "Must be a valid number"
)

// Result is the outcome of Validate. Data holds the normalized payload and is
// only set when Valid is true.
type Result struct {
	Valid  bool                   `json:"valid"`
	Errors map[string]string      `json:"errors,omitempty"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

// Validate checks payload against fields in field order. Each field reports at
// most one message: required short-circuits, otherwise the last failing rule
// wins. Keys that match no field are dropped from Data.
func Validate(fields types.Fields, payload map[string]interface{}) Result {
	errs := make(map[string]string)
	data := make(map[string]interface{}, len(fields))

	for _, f := range fields {
		id := f.FieldID()
		value, present := payload[id]

		if isEmpty(value, present) {
			if f.IsRequired() {
				errs[id] = MsgRequired
				continue
			}
			if present && value != nil {
				data[id] = value
			}
			continue
		}

		normalized, msg := checkField(f, value)
		if msg != "" {
			errs[id] = msg
			continue
		}
		data[id] = normalized
	}

	if len(errs) > 0 {
		return Result{Valid: false, Errors: errs}
	}
	return Result{Valid: true, Data: data}
}

// MissingRequiredFields returns the ids of required fields whose value is
// missing, null, an empty string or false, in field order.
func MissingRequiredFields(fields types.Fields, payload map[string]interface{}) []string {
	var missing []string
	for _, f := range fields {
		if !f.IsRequired() {
			continue
		}
		value, present := payload[f.FieldID()]
		if !present || value == nil {
			missing = append(missing, f.FieldID())
			continue
		}
		switch v := value.(type) {
		case string:
			if v == "" {
				missing = append(missing, f.FieldID())
			}
		case bool:
			if !v {
				missing = append(missing, f.FieldID())
			}
		}
	}
	return missing
}

func isEmpty(value interface{}, present bool) bool {
	if !present || value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return v == ""
	case []interface{}:
		return len(v) == 0
	case []string:
		return len(v) == 0
	}
	return false
}

func checkField(f types.Field, value interface{}) (interface{}, string) {
	switch field := f.(type) {
	case *types.TextField:
		return checkText(field.Rules, value)
	case *types.NumberField:
		return checkNumber(field.Rules, value)
	case *types.ChoiceField:
		s, ok := scalarString(value)
		if !ok {
			return nil, MsgInvalidFormat
		}
		return s, ""
	case *types.CheckboxField:
		switch value.(type) {
		case bool, string, []interface{}, []string:
			return value, ""
		}
		return nil, MsgInvalidFormat
	case *types.DateField:
		s, ok := value.(string)
		if !ok {
			return nil, MsgInvalidFormat
		}
		return s, ""
	case *types.FileField:
		switch value.(type) {
		case map[string]interface{}, []interface{}, string:
			return value, ""
		}
		return nil, MsgInvalidFormat
	}
	return value, ""
}

func checkText(rules types.TextRules, value interface{}) (interface{}, string) {
	s, ok := scalarString(value)
	if !ok {
		return nil, MsgInvalidFormat
	}

	msg := ""
	if re, err := rules.Regexp(); err != nil {
		msg = MsgInvalidFormat
	} else if re != nil && !re.MatchString(s) {
		msg = MsgInvalidFormat
	}

	// zero bounds are unset
	n := utf8.RuneCountInString(s)
	if rules.MinLength != nil && *rules.MinLength > 0 && n < *rules.MinLength {
		msg = fmt.Sprintf("At least %d characters required", *rules.MinLength)
	}
	if rules.MaxLength != nil && *rules.MaxLength > 0 && n > *rules.MaxLength {
		msg = fmt.Sprintf("Maximum %d characters allowed", *rules.MaxLength)
	}
	if msg != "" {
		return nil, msg
	}
	return s, ""
}

func checkNumber(rules types.NumberRules, value interface{}) (interface{}, string) {
	n, ok := toNumber(value)
	if !ok {
		return nil, MsgInvalidNumber
	}

	msg := ""
	if rules.Min != nil && n < *rules.Min {
		msg = "Minimum value is " + formatNumber(*rules.Min)
	}
	if rules.Max != nil && n > *rules.Max {
		msg = "Maximum value is " + formatNumber(*rules.Max)
	}
	if msg != "" {
		return nil, msg
	}
	return n, ""
}

// scalarString renders strings, numbers and booleans as text. Arrays and
// objects are not text.
func scalarString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		return formatNumber(v), true
	case json.Number:
		return v.String(), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	}
	return "", false
}

func toNumber(value interface{}) (float64, bool) {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
