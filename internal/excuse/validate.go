package excuse

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// FieldError is a single violated field constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field violation found in one input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages(), ", ")
}

// Messages returns one message per violated field, in field order.
func (e *ValidationError) Messages() []string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return msgs
}

// Has reports whether field was among the violations.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

type validator struct {
	raw    map[string]any
	fields []FieldError
}

func (v *validator) fail(field, format string, args ...any) {
	v.fields = append(v.fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

// str reads key as a string. Absent, null and empty values report ok=false;
// the caller decides whether that is a violation.
func (v *validator) str(key string, required bool) (string, bool) {
	val, present := v.raw[key]
	if !present || val == nil {
		if required {
			v.fail(key, "%s is required", key)
		}
		return "", false
	}
	s, isStr := val.(string)
	if !isStr {
		v.fail(key, "%s must be a string", key)
		return "", false
	}
	if s == "" {
		if required {
			v.fail(key, "%s is required", key)
		}
		return "", false
	}
	return s, true
}

func enumField[T ~string](v *validator, key string, required bool, set []T) T {
	s, ok := v.str(key, required)
	if !ok {
		return ""
	}
	if !contains(set, T(s)) {
		v.fail(key, "%s must be one of %s (got %q)", key, joinValues(set), s)
		return ""
	}
	return T(s)
}

func joinValues[T ~string](set []T) string {
	parts := make([]string, len(set))
	for i, s := range set {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// Validate checks raw decoded JSON against the request schema. Every
// violated field is reported; tone defaults to casual when absent.
func Validate(raw map[string]any) (Request, error) {
	v := &validator{raw: raw}

	req := Request{
		Scenario:           enumField(v, "scenario", true, Scenarios),
		Relationship:       enumField(v, "relationship", true, Relationships),
		Timing:             enumField(v, "timing", true, Timings),
		Transport:          enumField(v, "transport", false, Transports),
		BelievabilityLevel: enumField(v, "believabilityLevel", true, BelievabilityLevels),
		Tone:               enumField(v, "tone", false, Tones),
	}

	if pc, ok := v.str("personalContext", false); ok {
		if n := utf8.RuneCountInString(pc); n > MaxPersonalContext {
			v.fail("personalContext", "personalContext must be at most %d characters (got %d)", MaxPersonalContext, n)
		} else {
			req.PersonalContext = pc
		}
	}

	if err := v.err(); err != nil {
		return Request{}, err
	}
	if req.Tone == "" {
		req.Tone = ToneCasual
	}
	return req, nil
}

// DecodeRequest parses a JSON body and validates it.
func DecodeRequest(body []byte) (Request, error) {
	raw, err := decodeObject(body)
	if err != nil {
		return Request{}, err
	}
	return Validate(raw)
}

// ValidateInteraction checks a tracking payload.
func ValidateInteraction(raw map[string]any) (Interaction, error) {
	v := &validator{raw: raw}

	genID, _ := v.str("generationId", true)
	in := Interaction{
		GenerationID: genID,
		ActionType:   enumField(v, "actionType", true, ActionTypes),
		FormatType:   enumField(v, "formatType", false, FormatTypes),
	}
	if err := v.err(); err != nil {
		return Interaction{}, err
	}
	return in, nil
}

// DecodeInteraction parses a JSON tracking body and validates it.
func DecodeInteraction(body []byte) (Interaction, error) {
	raw, err := decodeObject(body)
	if err != nil {
		return Interaction{}, err
	}
	return ValidateInteraction(raw)
}

func decodeObject(body []byte) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ValidationError{Fields: []FieldError{{
			Field:   "body",
			Message: "request body must be a JSON object",
		}}}
	}
	return raw, nil
}
