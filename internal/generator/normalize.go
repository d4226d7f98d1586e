package generator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/alibi/internal/excuse"
)

// ErrNoVariants is matched by a NormalizationError for an empty array.
var ErrNoVariants = errors.New("no excuse variants")

// Reason says why a completion could not be normalized.
type Reason string

const (
	ReasonInvalidJSON    Reason = "invalid_json"
	ReasonNotArray       Reason = "not_array"
	ReasonEmpty          Reason = "empty"
	ReasonInvalidElement Reason = "invalid_element"
)

type NormalizationError struct {
	Reason Reason
	Err    error
}

func (e *NormalizationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("normalize completion: %s", e.Reason)
	}
	return fmt.Sprintf("normalize completion: %s: %v", e.Reason, e.Err)
}

func (e *NormalizationError) Unwrap() error { return e.Err }

var (
	fencedBlock = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*\r?\n?(.*?)```")
	strayFence  = regexp.MustCompile("```[A-Za-z0-9_-]*")
)

// StripFences removes markdown code fences the model sometimes wraps its
// JSON in. When a complete fenced block is present its body wins over any
// surrounding chatter.
func StripFences(raw string) string {
	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(strayFence.ReplaceAllString(raw, ""))
}

// Normalize parses the model's raw text into excuse variants. It requires a
// non-empty JSON array of objects; element fields are decoded leniently.
func Normalize(raw string) ([]excuse.Variant, error) {
	cleaned := StripFences(raw)

	var probe any
	if err := json.Unmarshal([]byte(cleaned), &probe); err != nil {
		return nil, &NormalizationError{Reason: ReasonInvalidJSON, Err: err}
	}
	if _, ok := probe.([]any); !ok {
		return nil, &NormalizationError{Reason: ReasonNotArray, Err: fmt.Errorf("got %T", probe)}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &elements); err != nil {
		return nil, &NormalizationError{Reason: ReasonInvalidJSON, Err: err}
	}
	if len(elements) == 0 {
		return nil, &NormalizationError{Reason: ReasonEmpty, Err: ErrNoVariants}
	}

	variants := make([]excuse.Variant, len(elements))
	for i, el := range elements {
		trimmed := bytes.TrimSpace(el)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return nil, &NormalizationError{Reason: ReasonInvalidElement, Err: fmt.Errorf("element %d is not an object", i)}
		}
		var w wireVariant
		if err := json.Unmarshal(trimmed, &w); err != nil {
			return nil, &NormalizationError{Reason: ReasonInvalidElement, Err: fmt.Errorf("element %d: %w", i, err)}
		}
		variants[i] = w.variant(i)
	}
	return variants, nil
}

// wireVariant decodes one element without rejecting off-type fields: the
// model is not trusted to keep to the documented types.
type wireVariant struct {
	ID                 lenientString  `json:"id"`
	MainExcuse         lenientString  `json:"mainExcuse"`
	BelievabilityScore lenientScore   `json:"believabilityScore"`
	BelievabilityLabel lenientString  `json:"believabilityLabel"`
	Formats            lenientFormats `json:"formats"`
}

func (w wireVariant) variant(i int) excuse.Variant {
	v := excuse.Variant{
		ID:                 string(w.ID),
		MainExcuse:         string(w.MainExcuse),
		BelievabilityScore: int(w.BelievabilityScore),
		BelievabilityLabel: string(w.BelievabilityLabel),
		Formats: excuse.Formats{
			Text: string(w.Formats.Text),
			Email: excuse.EmailFormat{
				Subject: string(w.Formats.Email.Subject),
				Body:    string(w.Formats.Email.Body),
			},
			Verbal: string(w.Formats.Verbal),
		},
	}
	if v.ID == "" {
		v.ID = fmt.Sprintf("variation-%d", i+1)
	}
	if v.BelievabilityLabel == "" {
		v.BelievabilityLabel = excuse.LabelForScore(v.BelievabilityScore)
	}
	return v
}

// lenientScore accepts 8, 8.0, 7.6 and "8". Anything else decodes to 0.
type lenientScore int

func (s *lenientScore) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*s = lenientScore(math.Round(f))
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
			*s = lenientScore(math.Round(f))
			return nil
		}
	}
	*s = 0
	return nil
}

// lenientString takes a JSON string as is and formats numbers and booleans
// as text. null, arrays and objects decode to "".
type lenientString string

func (s *lenientString) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		*s = ""
		return nil
	}
	switch t := v.(type) {
	case string:
		*s = lenientString(t)
	case json.Number:
		*s = lenientString(t.String())
	case bool:
		*s = lenientString(strconv.FormatBool(t))
	default:
		*s = ""
	}
	return nil
}

type lenientFormats struct {
	Text   lenientString `json:"text"`
	Email  lenientEmail  `json:"email"`
	Verbal lenientString `json:"verbal"`
}

// UnmarshalJSON leaves every format empty when formats is not an object.
func (f *lenientFormats) UnmarshalJSON(b []byte) error {
	type plain lenientFormats
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		*f = lenientFormats{}
		return nil
	}
	*f = lenientFormats(p)
	return nil
}

// lenientEmail accepts the documented object or a bare string body. Any
// other shape decodes to an empty email.
type lenientEmail struct {
	Subject lenientString `json:"subject"`
	Body    lenientString `json:"body"`
}

func (e *lenientEmail) UnmarshalJSON(b []byte) error {
	var body string
	if err := json.Unmarshal(b, &body); err == nil {
		*e = lenientEmail{Body: lenientString(body)}
		return nil
	}
	type plain lenientEmail
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		*e = lenientEmail{}
		return nil
	}
	*e = lenientEmail(p)
	return nil
}
